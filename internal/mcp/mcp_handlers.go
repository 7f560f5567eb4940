package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/huangsam/healthtab/core"
	"github.com/huangsam/healthtab/internal/contract"
	"github.com/huangsam/healthtab/schema"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/sirupsen/logrus"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg *contract.Config
	mgr     contract.CacheManager
	log     logrus.FieldLogger
}

// configFor clones the base config and applies the input_path argument.
func (h *toolHandler) configFor(request mcp.CallToolRequest) (*contract.Config, error) {
	cfg := h.baseCfg.Clone()
	if p := request.GetString("input_path", ""); p != "" {
		abs, err := filepath.Abs(p)
		if err != nil {
			return nil, fmt.Errorf("invalid input_path %q: %w", p, err)
		}
		cfg.InputPath = abs
	}
	if cfg.InputPath == "" {
		return nil, fmt.Errorf("input_path is required")
	}
	return cfg, nil
}

// importFor parses the export named by the request.
func (h *toolHandler) importFor(ctx context.Context, cfg *contract.Config) (*core.Pipeline, error) {
	return core.Import(ctx, cfg, h.mgr, h.log)
}

// jsonResult renders v as an indented JSON text result.
func jsonResult(v any) (*mcp.CallToolResult, error) {
	jsonData, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleGetRecordSummary(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg, err := h.configFor(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	p, err := h.importFor(ctx, cfg)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("import failed: %v", err)), nil
	}
	summary, err := p.Summary()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("summary failed: %v", err)), nil
	}

	return jsonResult(summary.Records())
}

func (h *toolHandler) handleGetTable(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg, err := h.configFor(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	format, err := contract.ValidateFormat(request.GetString("format", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	p, err := h.importFor(ctx, cfg)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("import failed: %v", err)), nil
	}
	table, err := p.Table(format)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to build %s table: %v", format, err)), nil
	}
	if l := request.GetInt("limit", 0); l > 0 {
		table = table.Head(l)
	}

	return jsonResult(table.Records())
}

func (h *toolHandler) handleExportTable(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg, err := h.configFor(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	format := request.GetString("format", "")
	if _, err := contract.ValidateFormat(format); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	dest := request.GetString("output_file", "")
	if dest == "" {
		return mcp.NewToolResultError("output_file is required"), nil
	}
	// stdout carries the protocol, so every export goes to a file
	cfg.Output = schema.CSVOut
	if o := request.GetString("output", ""); o != "" {
		if cfg.Output, err = contract.ValidateOutputMode(o); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
	}
	cfg.OutputFile = dest

	p, err := h.importFor(ctx, cfg)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("import failed: %v", err)), nil
	}
	n, err := p.Export(format, dest)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("export failed: %v", err)), nil
	}
	if n == 0 {
		return mcp.NewToolResultText("No data to export"), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Exported %d rows to %s", n, dest)), nil
}

func (h *toolHandler) handleListWorkouts(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg, err := h.configFor(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	p, err := h.importFor(ctx, cfg)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("import failed: %v", err)), nil
	}
	workouts, err := p.WorkoutsTable()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to build workouts: %v", err)), nil
	}
	if l := request.GetInt("limit", 0); l > 0 {
		workouts = workouts.Head(l)
	}

	return jsonResult(workouts.Records())
}
