// Package main provides a performance benchmarking tool for the healthtab CLI.
// It generates synthetic exports of increasing size, measures execution times
// across command types, running each test multiple times, treating the first
// successful cached run as cold and averaging the rest as warm, and writes CSV
// output for performance analysis and documentation.
//
// Prerequisites:
// - healthtab binary installed and available in PATH
//
// Usage: go run benchmark/main.go [work-dir]
//
//	work-dir: Directory for generated exports, outputs and the benchmark cache
package main

import (
	"encoding/csv"
	"fmt"
	"math/rand/v2"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/beevik/etree"
)

// BenchmarkResult holds the result of a benchmark run (no-cache average, cold run and average of warm runs).
type BenchmarkResult struct {
	Export      string
	Command     string
	NoCacheTime string
	ColdTime    string
	WarmTime    string
}

// BenchmarkConfig holds configuration for the benchmark run.
type BenchmarkConfig struct {
	WorkDir     string
	Timeout     time.Duration
	NoCacheRuns int
	CacheRuns   int
	ExportSizes []int // Records per generated export
	Commands    map[string][]string
}

// benchmarkTypes are the record types written into generated exports.
var benchmarkTypes = []struct {
	Type string
	Unit string
	Max  float64
}{
	{"HKQuantityTypeIdentifierHeartRate", "count/min", 180},
	{"HKQuantityTypeIdentifierStepCount", "count", 2000},
	{"HKQuantityTypeIdentifierActiveEnergyBurned", "kcal", 50},
	{"HKQuantityTypeIdentifierDistanceWalkingRunning", "km", 2},
	{"HKQuantityTypeIdentifierBodyMass", "kg", 90},
}

func main() {
	// Parse command line arguments
	if len(os.Args) != 2 {
		fmt.Printf("Usage: %s [work-dir]\n", os.Args[0])
		os.Exit(1)
	}
	workDir := os.Args[1]

	config := BenchmarkConfig{
		WorkDir:     workDir,
		Timeout:     5 * time.Minute,
		NoCacheRuns: 3,
		CacheRuns:   4,
		ExportSizes: []int{10_000, 100_000, 500_000},
		Commands: map[string][]string{
			"daily":       {"export", "--format", "daily"},
			"time_series": {"export", "--format", "time_series"},
			"convert":     {"convert"},
		},
	}

	if err := checkPrerequisites(config); err != nil {
		fmt.Printf("Prerequisites check failed: %v\n", err)
		os.Exit(1)
	}

	results := runBenchmarks(config)

	if err := saveResults(results); err != nil {
		fmt.Printf("Failed to save results: %v\n", err)
		os.Exit(1)
	}

	printSummary(results)
}

// checkPrerequisites verifies that the healthtab binary exists and the work dir is usable
func checkPrerequisites(config BenchmarkConfig) error {
	if _, err := exec.LookPath("healthtab"); err != nil {
		return fmt.Errorf("healthtab binary not found in PATH")
	}
	return os.MkdirAll(config.WorkDir, 0o755)
}

// generateExport writes a synthetic export.xml with n records spread over the types above.
func generateExport(path string, n int) error {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)
	root := doc.CreateElement("HealthData")
	root.CreateAttr("locale", "en_US")

	rng := rand.New(rand.NewPCG(1, uint64(n)))
	start := time.Date(2023, 1, 1, 0, 0, 0, 0, time.FixedZone("", -8*3600))
	const layout = "2006-01-02 15:04:05 -0700"

	for i := range n {
		t := benchmarkTypes[i%len(benchmarkTypes)]
		at := start.Add(time.Duration(i) * 90 * time.Second)
		rec := root.CreateElement("Record")
		rec.CreateAttr("type", t.Type)
		rec.CreateAttr("sourceName", "Benchmark")
		rec.CreateAttr("unit", t.Unit)
		rec.CreateAttr("startDate", at.Format(layout))
		rec.CreateAttr("endDate", at.Add(time.Minute).Format(layout))
		rec.CreateAttr("value", strconv.FormatFloat(rng.Float64()*t.Max, 'f', 2, 64))
	}
	for i := range n / 1000 {
		at := start.Add(time.Duration(i) * 24 * time.Hour)
		w := root.CreateElement("Workout")
		w.CreateAttr("workoutActivityType", "HKWorkoutActivityTypeRunning")
		w.CreateAttr("duration", "30")
		w.CreateAttr("totalDistance", "5")
		w.CreateAttr("totalEnergyBurned", "300")
		w.CreateAttr("startDate", at.Format(layout))
		w.CreateAttr("endDate", at.Add(30*time.Minute).Format(layout))
	}

	doc.Indent(1)
	return doc.WriteToFile(path)
}

// runBenchmarks executes all benchmark tests across generated exports
func runBenchmarks(config BenchmarkConfig) []BenchmarkResult {
	var results []BenchmarkResult

	fmt.Printf("Starting benchmark: %d exports, %v timeout, no-cache: %d runs, cache: %d runs\n",
		len(config.ExportSizes), config.Timeout, config.NoCacheRuns, config.CacheRuns)

	for _, size := range config.ExportSizes {
		name := fmt.Sprintf("export_%d.xml", size)
		exportPath := filepath.Join(config.WorkDir, name)
		fmt.Printf("Generating %s\n", name)
		if err := generateExport(exportPath, size); err != nil {
			fmt.Printf("Warning: failed to generate %s: %v\n", name, err)
			continue
		}

		for _, command := range []string{"daily", "time_series", "convert"} {
			results = append(results, runBenchmarkSuite(config, name, exportPath, command))
		}
	}

	return results
}

// runBenchmarkSuite runs both no-cache and cache benchmarks for a command
func runBenchmarkSuite(config BenchmarkConfig, name, exportPath, command string) BenchmarkResult {
	fmt.Printf("Running %s on %s\n", command, name)

	cacheDB := filepath.Join(config.WorkDir, "benchmark_cache.db")
	_ = os.Remove(cacheDB)

	// Helper to run a benchmark phase
	runPhase := func(cacheBackend string, numRuns int, phaseName string) (coldTime float64, avgTime string) {
		fmt.Printf("  %s phase (%d runs)\n", phaseName, numRuns)
		cold, times := runBenchmark(config, exportPath, command, cacheBackend, cacheDB, numRuns)
		if len(times) == 0 {
			avgTime = "TIMEOUT"
		} else {
			var sum float64
			for _, t := range times {
				sum += t
			}
			avg := sum / float64(len(times))
			avgTime = fmt.Sprintf("%.3fs", avg)
		}
		return cold, avgTime
	}

	// Phase 1: No-cache runs
	_, noCacheAvg := runPhase("none", config.NoCacheRuns, "No-cache")

	// Phase 2: Cache runs
	coldTime, warmAvg := runPhase("sqlite", config.CacheRuns, "Cache")

	coldTimeStr := "TIMEOUT"
	if coldTime > 0 {
		coldTimeStr = fmt.Sprintf("%.3fs", coldTime)
	}

	fmt.Printf("  No-cache average: %s, Cold time: %s, Warm average: %s\n", noCacheAvg, coldTimeStr, warmAvg)

	return BenchmarkResult{
		Export:      name,
		Command:     command,
		NoCacheTime: noCacheAvg,
		ColdTime:    coldTimeStr,
		WarmTime:    warmAvg,
	}
}

// runBenchmark executes a healthtab command multiple times with specified cache backend and returns cold time and warm times
func runBenchmark(config BenchmarkConfig, exportPath, command, cacheBackend, cacheDB string, numRuns int) (coldTime float64, warmTimes []float64) {
	// Prepare command arguments
	args := append([]string{}, config.Commands[command]...)
	args = append(args, exportPath, "--cache-backend", cacheBackend)
	if cacheBackend == "sqlite" {
		args = append(args, "--cache-db-connect", cacheDB)
	}
	outDir := filepath.Join(config.WorkDir, "out")
	if command == "convert" {
		args = append(args, "--output-dir", outDir)
	} else {
		args = append(args, "--output-file", filepath.Join(outDir, command+".csv"))
	}
	_ = os.MkdirAll(outDir, 0o755)

	var times []float64
	for run := 1; run <= numRuns; run++ {
		start := time.Now()

		cmd := exec.Command("healthtab", args...)
		cmd.Dir = config.WorkDir

		done := make(chan bool)
		var output []byte
		var cmdErr error

		go func() {
			output, cmdErr = cmd.CombinedOutput()
			done <- true
		}()

		select {
		case <-done:
			if cmdErr == nil && isSuccess(output) {
				times = append(times, time.Since(start).Seconds())
			}
		case <-time.After(config.Timeout):
			// Timeout - don't add to times
		}
	}

	if len(times) > 0 {
		coldTime = times[0]
		warmTimes = times[1:]
	}
	return
}

// isSuccess checks if command output indicates at least one table was written
func isSuccess(output []byte) bool {
	return strings.Contains(string(output), "Exported")
}

// saveResults writes benchmark results to a timestamped CSV file
func saveResults(results []BenchmarkResult) error {
	timestamp := time.Now().Format("20060102_150405")
	filename := filepath.Join(os.TempDir(), fmt.Sprintf("healthtab_benchmark_%s.csv", timestamp))

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			fmt.Printf("Warning: failed to close file %s: %v\n", filename, closeErr)
		}
	}()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	// Write header
	if err := writer.Write([]string{"export", "cmd", "no_cache_avg", "cold_time", "warm_avg"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	// Write results
	for _, result := range results {
		if err := writer.Write([]string{result.Export, result.Command, result.NoCacheTime, result.ColdTime, result.WarmTime}); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	fmt.Printf("Results saved to %s\n", filename)
	return nil
}

// printSummary displays the final benchmark results summary
func printSummary(results []BenchmarkResult) {
	fmt.Printf("Benchmark complete\n")

	printCommandSummary(results, "daily", "Daily Export:")
	printCommandSummary(results, "time_series", "Time Series Export:")
	printCommandSummary(results, "convert", "Convert:")

	fmt.Printf("Benchmark script completed successfully\n")
}

// printCommandSummary displays results for a specific command type
func printCommandSummary(results []BenchmarkResult, command, title string) {
	fmt.Printf("%s\n", title)
	for _, result := range results {
		if result.Command == command {
			fmt.Printf("  %-20s: No-cache: %s, Cold: %s, Warm: %s\n", result.Export, result.NoCacheTime, result.ColdTime, result.WarmTime)
		}
	}
}
