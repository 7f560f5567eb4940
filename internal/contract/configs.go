package contract

import (
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/huangsam/healthtab/schema"
)

// Default values for configuration.
const (
	DefaultPrecision = -1 // shortest round-trip representation
	MaxPrecision     = 6
	DefaultDelimiter = ","
	DefaultOutputDir = "."
	DefaultLogLevel  = "info"
	MaxResultLimit   = 100000
)

// Config holds the runtime configuration for a conversion.
// This struct is the "final, validated" config.
type Config struct {
	InputPath  string
	Format     schema.TableFormat
	Output     schema.OutputMode
	OutputFile string
	OutputDir  string
	Precision  int  // Negative means shortest representation
	Delimiter  rune // Field delimiter for CSV output
	Limit      int  // Row limit for terminal output (0 = all rows)
	Width      int  // Terminal width override (0 = auto-detect)
	UseColors  bool // Enable colored labels in terminal output

	Log LogConfig

	CacheBackend   schema.DatabaseBackend
	CacheDBConnect string // Please use env var as this is plaintext

	HistoryBackend   schema.DatabaseBackend
	HistoryDBConnect string // Please use env var as this is plaintext
}

// ProfileConfig holds profiling settings.
type ProfileConfig struct {
	Enabled bool
	Prefix  string
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// This is set manually from positional args, so no tag
	InputPathStr string

	// --- Fields from rootCmd.PersistentFlags() ---
	Output           string `mapstructure:"output"`
	OutputFile       string `mapstructure:"output-file"`
	Precision        int    `mapstructure:"precision"`
	Delimiter        string `mapstructure:"delimiter"`
	Limit            int    `mapstructure:"limit"`
	Width            int    `mapstructure:"width"`
	Color            string `mapstructure:"color"`
	LogLevel         string `mapstructure:"log-level"`
	LogFormat        string `mapstructure:"log-format"`
	LogFile          string `mapstructure:"log-file"`
	CacheBackend     string `mapstructure:"cache-backend"`
	CacheDBConnect   string `mapstructure:"cache-db-connect"`
	HistoryBackend   string `mapstructure:"history-backend"`
	HistoryDBConnect string `mapstructure:"history-db-connect"`

	// --- Fields from exportCmd.Flags() ---
	Format string `mapstructure:"format"`

	// --- Fields from convertCmd.Flags() ---
	OutputDir string `mapstructure:"output-dir"`
}

// Clone returns a copy of the Config struct.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// Params returns the config values worth recording alongside an import run.
func (c *Config) Params() map[string]any {
	return map[string]any{
		"format":    string(c.Format),
		"output":    string(c.Output),
		"precision": c.Precision,
		"delimiter": string(c.Delimiter),
	}
}

// ProcessAndValidate performs all parsing and validation on the raw inputs
// and updates the final Config struct.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := validateBackendConfigs(cfg, input); err != nil {
		return err
	}
	return resolveInputPath(cfg, input)
}

// ValidateFormat checks an export selector. Selectors match exactly.
func ValidateFormat(format string) (schema.TableFormat, error) {
	f := schema.TableFormat(format)
	if _, ok := schema.ValidTableFormats[f]; !ok {
		return "", fmt.Errorf("%w: %q. must be raw, daily, pivoted, time_series", ErrUnsupportedFormat, format)
	}
	return f, nil
}

// ValidateOutputMode checks an output encoding name.
func ValidateOutputMode(output string) (schema.OutputMode, error) {
	mode := schema.OutputMode(output)
	if _, ok := schema.ValidOutputModes[mode]; !ok {
		return "", fmt.Errorf("invalid output format '%s'. must be csv, text, json, parquet, xlsx", output)
	}
	return mode, nil
}

// ValidateDatabaseConnectionString validates the format of database connection strings
// for MySQL and PostgreSQL backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.NoneBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("a connection string is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("a connection string is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	}
	return nil
}

// ParseBackend normalizes a backend name. Empty means disabled.
func ParseBackend(name string) (schema.DatabaseBackend, error) {
	if name == "" {
		return schema.NoneBackend, nil
	}
	backend := schema.DatabaseBackend(strings.ToLower(name))
	if _, ok := schema.ValidDatabaseBackends[backend]; !ok {
		return "", fmt.Errorf("invalid backend '%s'. must be sqlite, mysql, postgresql, none", name)
	}
	return backend, nil
}

// validateBackendConfigs validates cache and history backend configurations.
func validateBackendConfigs(cfg *Config, input *ConfigRawInput) error {
	var err error

	// --- Cache Backend Validation ---
	if cfg.CacheBackend, err = ParseBackend(input.CacheBackend); err != nil {
		return fmt.Errorf("cache: %w", err)
	}
	cfg.CacheDBConnect = input.CacheDBConnect
	if err := ValidateDatabaseConnectionString(cfg.CacheBackend, cfg.CacheDBConnect); err != nil {
		return err
	}

	// --- History Backend Validation ---
	if cfg.HistoryBackend, err = ParseBackend(input.HistoryBackend); err != nil {
		return fmt.Errorf("history: %w", err)
	}
	cfg.HistoryDBConnect = input.HistoryDBConnect
	if err := ValidateDatabaseConnectionString(cfg.HistoryBackend, cfg.HistoryDBConnect); err != nil {
		return err
	}

	// Cache and history must not share one SQLite file
	if cfg.CacheBackend == schema.SQLiteBackend && cfg.HistoryBackend == schema.SQLiteBackend {
		cachePath := cfg.CacheDBConnect
		if cachePath == "" {
			cachePath = GetCacheDBFilePath()
		}
		historyPath := cfg.HistoryDBConnect
		if historyPath == "" {
			historyPath = GetHistoryDBFilePath()
		}
		if cachePath == historyPath {
			return fmt.Errorf("cache and history storage must use different SQLite database files. Both resolve to %q", cachePath)
		}
	}

	return nil
}

// validateSimpleInputs processes and validates all non-path related fields.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	// --- 0. Transfer simple non-validated fields from input -> cfg ---
	cfg.OutputFile = input.OutputFile
	cfg.Width = input.Width
	cfg.OutputDir = input.OutputDir
	if cfg.OutputDir == "" {
		cfg.OutputDir = DefaultOutputDir
	}

	colors, err := ParseBoolString(input.Color)
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	// --- 1. Format Validation ---
	if input.Format == "" {
		cfg.Format = schema.PivotedFormat
	} else if cfg.Format, err = ValidateFormat(strings.ToLower(strings.TrimSpace(input.Format))); err != nil {
		return err
	}

	// --- 2. Output Validation ---
	if input.Output == "" {
		cfg.Output = schema.CSVOut
	} else if cfg.Output, err = ValidateOutputMode(strings.ToLower(input.Output)); err != nil {
		return err
	}

	// --- 3. Precision Validation ---
	if input.Precision > MaxPrecision {
		return fmt.Errorf("precision cannot exceed %d (received %d)", MaxPrecision, input.Precision)
	}
	cfg.Precision = input.Precision
	if cfg.Precision < 0 {
		cfg.Precision = DefaultPrecision
	}

	// --- 4. Delimiter Validation ---
	delim := input.Delimiter
	if delim == "" {
		delim = DefaultDelimiter
	}
	if delim == `\t` {
		delim = "\t"
	}
	r, size := utf8.DecodeRuneInString(delim)
	if size != len(delim) || r == utf8.RuneError || r == '"' || r == '\r' || r == '\n' {
		return fmt.Errorf("delimiter must be a single character other than quote or newline (received %q)", input.Delimiter)
	}
	cfg.Delimiter = r

	// --- 5. Limit Validation ---
	if input.Limit < 0 || input.Limit > MaxResultLimit {
		return fmt.Errorf("limit must be between 0 and %d (received %d)", MaxResultLimit, input.Limit)
	}
	cfg.Limit = input.Limit

	// --- 6. Logging ---
	cfg.Log.Level = input.LogLevel
	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
	switch strings.ToLower(input.LogFormat) {
	case "", "text":
		cfg.Log.JSON = false
	case "json":
		cfg.Log.JSON = true
	default:
		return fmt.Errorf("invalid log format '%s'. must be text, json", input.LogFormat)
	}
	cfg.Log.File = input.LogFile

	return nil
}

// ProcessProfilingConfig enables profiling when a prefix is given.
func ProcessProfilingConfig(profile *ProfileConfig, profilePrefix string) {
	if profilePrefix != "" {
		profile.Enabled = true
		profile.Prefix = profilePrefix
	}
}

// resolveInputPath makes the export path absolute. Existence is checked by the pipeline.
func resolveInputPath(cfg *Config, input *ConfigRawInput) error {
	if input.InputPathStr == "" {
		cfg.InputPath = ""
		return nil
	}
	abs, err := filepath.Abs(input.InputPathStr)
	if err != nil {
		return fmt.Errorf("failed to resolve input path %q: %w", input.InputPathStr, err)
	}
	cfg.InputPath = abs
	return nil
}
