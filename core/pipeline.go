package core

import (
	"context"
	"fmt"
	"os"

	"github.com/huangsam/healthtab/core/agg"
	"github.com/huangsam/healthtab/core/extract"
	"github.com/huangsam/healthtab/core/pivot"
	"github.com/huangsam/healthtab/internal/contract"
	"github.com/huangsam/healthtab/internal/outwriter"
	"github.com/huangsam/healthtab/schema"
	"github.com/sirupsen/logrus"
)

// Pipeline owns one export document, the records parsed from it and the
// tables derived from those records. Derived tables are memoized until the
// next Parse. A Pipeline is not safe for concurrent use.
type Pipeline struct {
	path   string
	log    logrus.FieldLogger
	cache  contract.CacheStore
	render *contract.Config

	parsed bool
	output *schema.ExtractOutput
	tables map[string]*schema.Table
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the logger for parse, aggregate and export messages.
func WithLogger(log logrus.FieldLogger) Option {
	return func(p *Pipeline) { p.log = log }
}

// WithCache stores extraction results keyed by document contents.
func WithCache(store contract.CacheStore) Option {
	return func(p *Pipeline) { p.cache = store }
}

// WithOutput sets the encoding options used by Export.
func WithOutput(cfg *contract.Config) Option {
	return func(p *Pipeline) { p.render = cfg }
}

// NewPipeline creates a pipeline for the export at path.
// It fails with contract.ErrNotFound when path is not an existing file.
func NewPipeline(path string, opts ...Option) (*Pipeline, error) {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return nil, fmt.Errorf("%w: export file %s", contract.ErrNotFound, path)
	}

	p := &Pipeline{
		path: path,
		log:  contract.DiscardLogger(),
		render: &contract.Config{
			Output:    schema.CSVOut,
			Precision: contract.DefaultPrecision,
			Delimiter: ',',
		},
		tables: make(map[string]*schema.Table),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Path returns the export document path.
func (p *Pipeline) Path() string { return p.path }

// Parse loads the whole document and extracts measurements and workouts.
// It replaces any previous result and clears memoized tables.
func (p *Pipeline) Parse(ctx context.Context) ([]schema.MeasurementRecord, error) {
	p.log.Infof("Parsing XML from %s", p.path)

	output, err := cachedExtract(ctx, p.path, p.cache, p.log)
	if err != nil {
		return nil, err
	}

	p.output = output
	p.parsed = true
	p.tables = make(map[string]*schema.Table)
	return output.Records, nil
}

// Parsed reports whether Parse has succeeded at least once.
func (p *Pipeline) Parsed() bool { return p.parsed }

// Records returns the flat record set in document order.
func (p *Pipeline) Records() []schema.MeasurementRecord {
	if p.output == nil {
		return nil
	}
	return p.output.Records
}

// Workouts returns the parsed workouts in document order.
func (p *Pipeline) Workouts() []schema.WorkoutRecord {
	if p.output == nil {
		return nil
	}
	return p.output.Workouts
}

// Counts returns what the last Parse kept and skipped.
func (p *Pipeline) Counts() schema.ImportCounts {
	if p.output == nil {
		return schema.ImportCounts{}
	}
	return schema.ImportCounts{
		Records:         len(p.output.Records),
		Workouts:        len(p.output.Workouts),
		SkippedRecords:  p.output.SkippedRecords,
		SkippedWorkouts: p.output.SkippedWorkouts,
	}
}

// memo returns the cached table for name or builds and caches it.
func (p *Pipeline) memo(name string, build func() (*schema.Table, error)) (*schema.Table, error) {
	if !p.parsed {
		return nil, fmt.Errorf("%w: %s requested before parse", contract.ErrPrecondition, name)
	}
	if t, ok := p.tables[name]; ok {
		return t, nil
	}
	t, err := build()
	if err != nil {
		return nil, err
	}
	p.tables[name] = t
	return t, nil
}

// Raw returns the flat record set as a table.
func (p *Pipeline) Raw() (*schema.Table, error) {
	return p.memo(string(schema.RawFormat), func() (*schema.Table, error) {
		return RawTable(p.Records())
	})
}

// DailyMetrics returns the per-day aggregation of mapped metrics.
func (p *Pipeline) DailyMetrics() (*schema.Table, error) {
	return p.memo(string(schema.DailyFormat), func() (*schema.Table, error) {
		return agg.DailyMetrics(p.Records(), p.log)
	})
}

// Pivoted returns the sequential pivot.
func (p *Pipeline) Pivoted() (*schema.Table, error) {
	return p.memo(string(schema.PivotedFormat), func() (*schema.Table, error) {
		return pivot.Sequential(p.Records(), p.log)
	})
}

// TimeSeries returns the timestamp pivot.
func (p *Pipeline) TimeSeries() (*schema.Table, error) {
	return p.memo(string(schema.TimeSeriesFormat), func() (*schema.Table, error) {
		return pivot.TimeSeries(p.Records(), p.log)
	})
}

// Summary returns the record type summary.
func (p *Pipeline) Summary() (*schema.Table, error) {
	return p.memo(agg.SummaryTableName, func() (*schema.Table, error) {
		return agg.Summary(p.Records())
	})
}

// WorkoutsTable returns the workouts as a table.
func (p *Pipeline) WorkoutsTable() (*schema.Table, error) {
	return p.memo(WorkoutsTableName, func() (*schema.Table, error) {
		return WorkoutTable(p.Workouts())
	})
}

// Table returns the derived table for an export selector.
func (p *Pipeline) Table(format schema.TableFormat) (*schema.Table, error) {
	switch format {
	case schema.RawFormat:
		return p.Raw()
	case schema.DailyFormat:
		return p.DailyMetrics()
	case schema.PivotedFormat:
		return p.Pivoted()
	case schema.TimeSeriesFormat:
		return p.TimeSeries()
	default:
		return nil, fmt.Errorf("%w: %q", contract.ErrUnsupportedFormat, format)
	}
}

// Export writes the table for format to dest and returns the rows written.
// An unknown selector fails before anything else. An empty record set or an
// empty table logs a warning, writes nothing and returns 0 with a nil error.
// An empty dest writes to stdout.
func (p *Pipeline) Export(format, dest string) (int, error) {
	f, err := contract.ValidateFormat(format)
	if err != nil {
		return 0, err
	}
	if !p.parsed {
		return 0, fmt.Errorf("%w: export requested before parse", contract.ErrPrecondition)
	}
	if len(p.Records()) == 0 {
		p.log.WithField("format", f).Warn("No data to export")
		return 0, nil
	}

	table, err := p.Table(f)
	if err != nil {
		return 0, err
	}
	if table.Empty() {
		p.log.WithField("format", f).Warn("No data to export")
		return 0, nil
	}

	if err := outwriter.WriteTableFile(dest, table, p.render); err != nil {
		return 0, fmt.Errorf("failed to export %s: %w", f, err)
	}

	target := dest
	if target == "" {
		target = "stdout"
	}
	p.log.Infof("Exported %d rows to %s", table.Len(), target)
	return table.Len(), nil
}

// extractFile loads and walks the document at path.
func extractFile(ctx context.Context, path string, log logrus.FieldLogger) (*schema.ExtractOutput, error) {
	doc, err := extract.LoadDocument(path)
	if err != nil {
		return nil, err
	}
	return extract.Extract(ctx, doc.Root(), log)
}
