package application

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/felixgeelhaar/covtable/internal/domain"
)

type Service struct {
	ConfigLoader ConfigLoader
	ReportLoader ReportLoader
	Reporter     Reporter
	Matcher      PathMatcher
	OpenHistory  func(path string) HistoryStore
	Logger       Logger
	Out          io.Writer

	// WorkDir and Now default to os.Getwd and time.Now.
	WorkDir func() (string, error)
	Now     func() time.Time
}

// SetLogger replaces the diagnostic logger.
func (s *Service) SetLogger(logger Logger) {
	s.Logger = logger
}

// LoadConfig returns the defaults, overlaid with the config file when it
// exists, overlaid with the command-line overrides.
func (s *Service) LoadConfig(path string, overrides Overrides) (Config, error) {
	cfg := DefaultConfig()
	if path != "" && s.ConfigLoader != nil {
		exists, err := s.ConfigLoader.Exists(path)
		if err != nil {
			return Config{}, err
		}
		if exists {
			loaded, err := s.ConfigLoader.Load(path)
			if err != nil {
				return Config{}, fmt.Errorf("load config %s: %w", path, err)
			}
			cfg = loaded
			s.logger().Debugf("loaded config from %s", path)
		} else {
			s.logger().Debugf("no config at %s, using defaults", path)
		}
	}

	if overrides.Report != "" {
		cfg.Report = overrides.Report
	}
	if overrides.Format != "" {
		cfg.Format = overrides.Format
	}
	if overrides.SourceDir != "" {
		cfg.SourceDir = overrides.SourceDir
	}
	if overrides.Width > 0 {
		cfg.Width = overrides.Width
	}
	if overrides.History != "" {
		cfg.History = overrides.History
	}

	if err := cfg.Thresholds.Validate(); err != nil {
		return Config{}, err
	}
	if cfg.Width <= 0 {
		return Config{}, fmt.Errorf("column width must be positive, got %d", cfg.Width)
	}
	return cfg, nil
}

// Table loads the report and returns its filtered rows as a lazy sequence.
// Load, parse and structural failures are returned immediately. Path
// failures and context cancellation surface while iterating.
func (s *Service) Table(ctx context.Context, cfg Config) (Table, error) {
	report, err := s.ReportLoader.Load(cfg.Report, cfg.Format)
	if err != nil {
		return Table{}, err
	}
	entries, err := report.Files()
	if err != nil {
		return Table{}, fmt.Errorf("%s: %w", cfg.Report, err)
	}
	root, err := s.workDir()
	if err != nil {
		return Table{}, fmt.Errorf("resolve working directory: %w", err)
	}
	s.logger().Debugf("loaded %d file entries from %s", len(entries), cfg.Report)

	rows := func(yield func(domain.Row, error) bool) {
		kept := 0
		defer func() { s.logger().Debugf("%d entries under %s/", kept, cfg.SourceDir) }()
		for src, err := range domain.SelectSources(entries, root, cfg.SourceDir) {
			if err == nil {
				err = ctx.Err()
			}
			if err != nil {
				yield(domain.Row{}, err)
				return
			}
			if s.excluded(src.RelPath, cfg.Exclude) {
				s.logger().Debugf("excluded %s", src.RelPath)
				continue
			}
			kept++
			if !yield(domain.NewRow(src, cfg.Thresholds), nil) {
				return
			}
		}
	}

	return Table{Width: cfg.Width, Thresholds: cfg.Thresholds, Rows: rows}, nil
}

// Print writes the coverage table for the configured report.
func (s *Service) Print(ctx context.Context, opts PrintOptions) error {
	cfg, err := s.LoadConfig(opts.ConfigPath, opts.Overrides)
	if err != nil {
		return err
	}
	table, err := s.Table(ctx, cfg)
	if err != nil {
		return err
	}
	return s.Reporter.Write(s.out(), table, WriteOptions{
		Format:  opts.Output,
		Color:   opts.Color,
		Summary: opts.Summary,
	})
}

// Record appends the current source totals to the history file.
func (s *Service) Record(ctx context.Context, opts RecordOptions) error {
	cfg, err := s.LoadConfig(opts.ConfigPath, opts.Overrides)
	if err != nil {
		return err
	}
	totals, err := s.totals(ctx, cfg)
	if err != nil {
		return err
	}
	store, err := s.history(cfg)
	if err != nil {
		return err
	}
	entry := domain.NewHistoryEntry(s.now(), cfg.SourceDir, totals)
	entry.Commit = opts.Commit
	entry.Branch = opts.Branch
	if err := store.Append(entry); err != nil {
		return fmt.Errorf("record history %s: %w", cfg.History, err)
	}
	s.logger().Debugf("recorded %.1f%% across %d files to %s", entry.Percent, entry.Files, cfg.History)
	return nil
}

// Trend compares the current totals against the latest recorded entry.
func (s *Service) Trend(ctx context.Context, opts TrendOptions) (TrendResult, error) {
	cfg, err := s.LoadConfig(opts.ConfigPath, opts.Overrides)
	if err != nil {
		return TrendResult{}, err
	}
	totals, err := s.totals(ctx, cfg)
	if err != nil {
		return TrendResult{}, err
	}
	store, err := s.history(cfg)
	if err != nil {
		return TrendResult{}, err
	}
	h, err := store.Load()
	if err != nil {
		return TrendResult{}, fmt.Errorf("load history %s: %w", cfg.History, err)
	}

	result := TrendResult{Current: totals, Entries: len(h.Entries)}
	if latest := h.LatestEntry(); latest != nil {
		prev := *latest
		result.Previous = &prev
		result.Trend = domain.CalculateTrend(prev.Percent, totals.Percent())
	} else {
		result.Trend = domain.Trend{Direction: domain.TrendStable}
	}
	return result, nil
}

// Badge returns the overall source percentage and its color band.
func (s *Service) Badge(ctx context.Context, opts BadgeOptions) (BadgeResult, error) {
	cfg, err := s.LoadConfig(opts.ConfigPath, opts.Overrides)
	if err != nil {
		return BadgeResult{}, err
	}
	totals, err := s.totals(ctx, cfg)
	if err != nil {
		return BadgeResult{}, err
	}
	percent := totals.Percent()
	return BadgeResult{Percent: percent, Color: cfg.Thresholds.Classify(percent)}, nil
}

// Watch prints the table, then prints it again each time the report file is
// rewritten, until ctx is cancelled.
func (s *Service) Watch(ctx context.Context, opts WatchOptions, watcher FileWatcher, callback WatchCallback) error {
	cfg, err := s.LoadConfig(opts.Print.ConfigPath, opts.Print.Overrides)
	if err != nil {
		return err
	}
	if err := watcher.WatchFile(cfg.Report); err != nil {
		return fmt.Errorf("failed to watch %s: %w", cfg.Report, err)
	}

	runNumber := 1
	runErr := s.Print(ctx, opts.Print)
	if callback != nil {
		callback(runNumber, runErr)
	}

	events := watcher.Events(ctx)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case _, ok := <-events:
			if !ok {
				return nil
			}
			runNumber++
			s.logger().Debugf("%s changed, rendering run #%d", cfg.Report, runNumber)
			runErr := s.Print(ctx, opts.Print)
			if callback != nil {
				callback(runNumber, runErr)
			}
		}
	}
}

// CollectRows drains a table into a slice, stopping at the first error.
func CollectRows(table Table) ([]domain.Row, error) {
	var rows []domain.Row
	if table.Rows == nil {
		return rows, nil
	}
	for row, err := range table.Rows {
		if err != nil {
			return rows, err
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (s *Service) totals(ctx context.Context, cfg Config) (domain.Totals, error) {
	table, err := s.Table(ctx, cfg)
	if err != nil {
		return domain.Totals{}, err
	}
	rows, err := CollectRows(table)
	if err != nil {
		return domain.Totals{}, err
	}
	return domain.Summarize(rows), nil
}

func (s *Service) history(cfg Config) (HistoryStore, error) {
	if s.OpenHistory == nil {
		return nil, errors.New("history store not configured")
	}
	return s.OpenHistory(cfg.History), nil
}

func (s *Service) excluded(rel string, patterns []string) bool {
	if s.Matcher == nil || len(patterns) == 0 {
		return false
	}
	return s.Matcher.Match(rel, patterns)
}

func (s *Service) workDir() (string, error) {
	if s.WorkDir != nil {
		return s.WorkDir()
	}
	return os.Getwd()
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *Service) out() io.Writer {
	if s.Out != nil {
		return s.Out
	}
	return os.Stdout
}

func (s *Service) logger() Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return nopLogger{}
}

type nopLogger struct{}

func (nopLogger) Debugf(string, ...any) {}
