// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/huangsam/healthtab/internal/contract"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/sirupsen/logrus"
)

// tableFormats lists the selectors accepted by the table tools.
var tableFormats = []string{"raw", "daily", "pivoted", "time_series"}

// NewMCPServer initializes and configures the healthtab MCP server without starting it.
// This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config, mgr contract.CacheManager, log logrus.FieldLogger) *server.MCPServer {
	s := server.NewMCPServer(
		"Healthtab Export Server",
		"1.0.0",
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg: baseCfg,
		mgr:     mgr,
		log:     log,
	}

	inputPath := mcp.WithString("input_path", mcp.Description("Path to the export.xml file (defaults to the path given at startup)."))

	// --- 1. Tool: get_record_summary ---
	s.AddTool(mcp.NewTool("get_record_summary",
		mcp.WithDescription("Summarize every record type in a health export: count, mean, min, max and unit."),
		inputPath,
	), h.handleGetRecordSummary)

	// --- 2. Tool: get_table ---
	s.AddTool(mcp.NewTool("get_table",
		mcp.WithDescription("Return one derived table of a health export as JSON rows."),
		mcp.WithString("format", mcp.Description("Table to build."), mcp.Enum(tableFormats...), mcp.Required()),
		inputPath,
		mcp.WithNumber("limit", mcp.Description("Limit the number of rows returned.")),
	), h.handleGetTable)

	// --- 3. Tool: export_table ---
	s.AddTool(mcp.NewTool("export_table",
		mcp.WithDescription("Write one derived table of a health export to a file."),
		mcp.WithString("format", mcp.Description("Table to export."), mcp.Enum(tableFormats...), mcp.Required()),
		mcp.WithString("output_file", mcp.Description("Destination file."), mcp.Required()),
		mcp.WithString("output", mcp.Description("File encoding. Defaults to csv."), mcp.Enum("csv", "json", "parquet", "xlsx", "text")),
		inputPath,
	), h.handleExportTable)

	// --- 4. Tool: list_workouts ---
	s.AddTool(mcp.NewTool("list_workouts",
		mcp.WithDescription("List the workouts of a health export."),
		inputPath,
		mcp.WithNumber("limit", mcp.Description("Limit the number of workouts returned.")),
	), h.handleListWorkouts)

	return s
}

// StartMCPServer serves the healthtab MCP server over stdio.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, mgr contract.CacheManager, log logrus.FieldLogger) error {
	s := NewMCPServer(baseCfg, mgr, log)
	return server.ServeStdio(s)
}
