package keepstyle

import "go.uber.org/zap"

// Options holds configuration shared by the restore, verify, describe and
// report operations.
type Options struct {
	logger *zap.Logger

	// verify
	sampleRows      int
	sampleCols      int
	rowHeightSample int

	// restore
	outputPath         string
	tempSuffix         string
	conditionalFormats bool

	// describe
	describeSheets int

	// report
	bulletStyle    string
	defaultProduct string
	formats        LineFormats
	header         HeaderToken
	outputDir      string
	tester         string
	dryRun         bool
}

func defaultOptions() *Options {
	return &Options{
		logger:             zap.NewNop(),
		sampleRows:         3,
		sampleCols:         5,
		rowHeightSample:    10,
		tempSuffix:         "_TEMP",
		conditionalFormats: true,
		describeSheets:     3,
		bulletStyle:        "List Bullet",
		defaultProduct:     "Hello Britannica",
		formats:            DefaultLineFormats(),
		header:             DefaultHeaderToken(),
		outputDir:          ".",
	}
}

func buildOptions(opts []Option) *Options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Option configures an operation.
type Option func(*Options)

// WithLogger sets the logger used for progress and fallback messages.
func WithLogger(l *zap.Logger) Option {
	return func(o *Options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithStyleSample sets how many leading rows and columns the verifier
// compares cell by cell (default: 3 rows, 5 columns).
func WithStyleSample(rows, cols int) Option {
	return func(o *Options) {
		o.sampleRows = rows
		o.sampleCols = cols
	}
}

// WithRowHeightSample sets how many explicitly sized rows are compared (default: 10).
func WithRowHeightSample(n int) Option {
	return func(o *Options) { o.rowHeightSample = n }
}

// WithOutputPath sets where a restored workbook or a generated report is written.
func WithOutputPath(path string) Option {
	return func(o *Options) { o.outputPath = path }
}

// WithTempSuffix sets the suffix of the side-by-side restore output (default: "_TEMP").
func WithTempSuffix(suffix string) Option {
	return func(o *Options) { o.tempSuffix = suffix }
}

// WithConditionalFormats controls whether conditional formatting is carried over (default: true).
func WithConditionalFormats(enabled bool) Option {
	return func(o *Options) { o.conditionalFormats = enabled }
}

// WithDescribeSheets limits how many sheets Describe reports on (default: 3).
func WithDescribeSheets(n int) Option {
	return func(o *Options) { o.describeSheets = n }
}

// WithBulletStyle sets the paragraph style name used for bulleted lines.
func WithBulletStyle(name string) Option {
	return func(o *Options) { o.bulletStyle = name }
}

// WithDefaultProduct sets the product name used when the input names none.
func WithDefaultProduct(name string) Option {
	return func(o *Options) { o.defaultProduct = name }
}

// WithLineFormats sets the templates used to render structured entries.
func WithLineFormats(f LineFormats) Option {
	return func(o *Options) { o.formats = f.withDefaults() }
}

// WithHeaderToken overrides the introductory sentence and its date token.
func WithHeaderToken(h HeaderToken) Option {
	return func(o *Options) { o.header = h }
}

// WithOutputDir sets the directory for generated reports when no explicit
// output path is given.
func WithOutputDir(dir string) Option {
	return func(o *Options) { o.outputDir = dir }
}

// WithTester overrides the tester name otherwise taken from the input or the OS user.
func WithTester(name string) Option {
	return func(o *Options) { o.tester = name }
}

// WithDryRun populates the report in memory without writing it.
func WithDryRun(dry bool) Option {
	return func(o *Options) { o.dryRun = dry }
}
