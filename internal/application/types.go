package application

import (
	"context"
	"fmt"
	"io"
	"iter"

	"github.com/felixgeelhaar/covtable/internal/domain"
)

type OutputFormat string

const (
	OutputText  OutputFormat = "text"
	OutputJSON  OutputFormat = "json"
	OutputBrief OutputFormat = "brief"
)

// ReportFormat names a coverage export format.
type ReportFormat string

const (
	// FormatAuto sniffs the file content.
	FormatAuto    ReportFormat = "auto"
	FormatLLVMCov ReportFormat = "llvm-cov"
	FormatLCOV    ReportFormat = "lcov"
)

// ParseReportFormat validates a format name. The empty string is auto.
func ParseReportFormat(value string) (ReportFormat, error) {
	switch ReportFormat(value) {
	case "", FormatAuto:
		return FormatAuto, nil
	case FormatLLVMCov, FormatLCOV:
		return ReportFormat(value), nil
	default:
		return "", fmt.Errorf("unsupported report format: %s", value)
	}
}

// ColorMode controls whether the text table carries ANSI escapes.
type ColorMode string

const (
	// ColorAlways always emits escapes.
	ColorAlways ColorMode = "always"
	// ColorAuto emits escapes only on a terminal with NO_COLOR unset.
	ColorAuto ColorMode = "auto"
	// ColorNever writes a plain table.
	ColorNever ColorMode = "never"
)

const (
	DefaultConfigPath  = ".covtable.yaml"
	DefaultReportPath  = "test_coverage.json"
	DefaultHistoryPath = ".cover/covtable-history.json"
	DefaultWidth       = 61
)

// Config represents validated, application-ready configuration.
type Config struct {
	Report     string
	Format     ReportFormat
	SourceDir  string
	Width      int
	Thresholds domain.Thresholds
	Exclude    []string
	History    string
}

// DefaultConfig reproduces the behavior of running with no config file.
func DefaultConfig() Config {
	return Config{
		Report:     DefaultReportPath,
		Format:     FormatAuto,
		SourceDir:  domain.DefaultSourceDir,
		Width:      DefaultWidth,
		Thresholds: domain.DefaultThresholds(),
		History:    DefaultHistoryPath,
	}
}

type ConfigLoader interface {
	Load(path string) (Config, error)
	Exists(path string) (bool, error)
}

// ReportLoader reads a coverage export from disk.
type ReportLoader interface {
	Load(path string, format ReportFormat) (domain.Report, error)
}

// PathMatcher decides whether a relative path matches any exclude pattern.
type PathMatcher interface {
	Match(path string, patterns []string) bool
}

// Table is a lazily produced coverage table. Rows must be consumed once.
type Table struct {
	Width      int
	Thresholds domain.Thresholds
	Rows       iter.Seq2[domain.Row, error]
}

// WriteOptions selects how a Table is rendered.
type WriteOptions struct {
	Format  OutputFormat
	Color   ColorMode
	Summary bool
}

type Reporter interface {
	Write(w io.Writer, table Table, opts WriteOptions) error
}

type HistoryStore interface {
	Load() (domain.History, error)
	Save(h domain.History) error
	Append(entry domain.HistoryEntry) error
}

// FileWatcher provides change notifications for a single file.
type FileWatcher interface {
	WatchFile(path string) error
	Events(ctx context.Context) <-chan struct{}
	Close() error
}

// Logger is the subset of zap's SugaredLogger the service uses.
type Logger interface {
	Debugf(template string, args ...any)
}

// Overrides are command-line values that take precedence over the config
// file. Zero values leave the config untouched.
type Overrides struct {
	Report    string
	Format    ReportFormat
	SourceDir string
	Width     int
	History   string
}

type PrintOptions struct {
	ConfigPath string
	Overrides  Overrides
	Output     OutputFormat
	Color      ColorMode
	Summary    bool
}

type RecordOptions struct {
	ConfigPath string
	Overrides  Overrides
	Commit     string
	Branch     string
}

type TrendOptions struct {
	ConfigPath string
	Overrides  Overrides
}

type TrendResult struct {
	Current  domain.Totals
	Previous *domain.HistoryEntry
	Trend    domain.Trend
	Entries  int
}

type BadgeOptions struct {
	ConfigPath string
	Overrides  Overrides
}

type BadgeResult struct {
	Percent float64
	Color   domain.Color
}

type WatchOptions struct {
	Print PrintOptions
}

// WatchCallback is invoked after every table render in watch mode.
type WatchCallback func(runNumber int, err error)
