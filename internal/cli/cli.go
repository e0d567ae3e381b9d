package cli

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/felixgeelhaar/covtable/internal/application"
	"github.com/felixgeelhaar/covtable/internal/infrastructure/badge"
	"github.com/felixgeelhaar/covtable/internal/infrastructure/config"
	"github.com/felixgeelhaar/covtable/internal/infrastructure/history"
	"github.com/felixgeelhaar/covtable/internal/infrastructure/parsers"
	"github.com/felixgeelhaar/covtable/internal/infrastructure/paths"
	"github.com/felixgeelhaar/covtable/internal/infrastructure/report"
	"github.com/felixgeelhaar/covtable/internal/infrastructure/watcher"
	"github.com/felixgeelhaar/covtable/internal/infrastructure/wizard"
	"github.com/felixgeelhaar/covtable/internal/logging"
)

type Service interface {
	LoadConfig(path string, overrides application.Overrides) (application.Config, error)
	Print(ctx context.Context, opts application.PrintOptions) error
	Record(ctx context.Context, opts application.RecordOptions) error
	Trend(ctx context.Context, opts application.TrendOptions) (application.TrendResult, error)
	Badge(ctx context.Context, opts application.BadgeOptions) (application.BadgeResult, error)
	Watch(ctx context.Context, opts application.WatchOptions, watcher application.FileWatcher, callback application.WatchCallback) error
	SetLogger(logger application.Logger)
}

var initWizard = wizard.Run

// Run dispatches a command line. With no command, or when the first
// argument is a flag, the coverage table is printed.
func Run(args []string, stdout, stderr io.Writer, svc Service) int {
	command, rest := "print", []string(nil)
	if len(args) >= 2 {
		if strings.HasPrefix(args[1], "-") {
			rest = args[1:]
		} else {
			command, rest = args[1], args[2:]
		}
	}

	ctx := context.Background()

	switch command {
	case "print":
		fs := newFlagSet("print", stderr)
		common := commonFlags(fs)
		output := outputFlags(fs)
		color := colorFlags(fs)
		summary := fs.Bool("summary", false, "Append a totals line")
		if err := fs.Parse(rest); err != nil {
			return 2
		}
		common.apply(svc, stderr)
		err := svc.Print(ctx, application.PrintOptions{
			ConfigPath: common.configPath,
			Overrides:  common.overrides,
			Output:     *output,
			Color:      *color,
			Summary:    *summary,
		})
		return exitCode(err, 1, stderr)
	case "watch":
		fs := newFlagSet("watch", stderr)
		common := commonFlags(fs)
		output := outputFlags(fs)
		color := colorFlags(fs)
		summary := fs.Bool("summary", false, "Append a totals line")
		if err := fs.Parse(rest); err != nil {
			return 2
		}
		common.apply(svc, stderr)
		return runWatch(ctx, stdout, stderr, svc, application.PrintOptions{
			ConfigPath: common.configPath,
			Overrides:  common.overrides,
			Output:     *output,
			Color:      *color,
			Summary:    *summary,
		})
	case "init":
		fs := newFlagSet("init", stderr)
		common := commonFlags(fs)
		force := fs.Bool("force", false, "Overwrite existing config file")
		noInteractive := fs.Bool("no-interactive", false, "Skip the interactive init wizard")
		if err := fs.Parse(rest); err != nil {
			return 2
		}
		common.apply(svc, stderr)
		if !*force && common.configPath != "-" {
			if _, err := os.Stat(common.configPath); err == nil {
				return exitCode(fmt.Errorf("config %s already exists (use --force to overwrite)", common.configPath), 2, stderr)
			}
		}
		cfg, err := svc.LoadConfig(common.configPath, common.overrides)
		if err != nil {
			return exitCode(err, 2, stderr)
		}
		if !*noInteractive {
			var confirmed bool
			cfg, confirmed, err = initWizard(cfg, stdout, os.Stdin)
			if err != nil {
				return exitCode(err, 5, stderr)
			}
			if !confirmed {
				fmt.Fprintln(stdout, "Init canceled; no configuration written.")
				return 0
			}
		}
		if err := writeConfigFile(common.configPath, cfg, stdout, *force); err != nil {
			return exitCode(err, 2, stderr)
		}
		if common.configPath != "-" {
			fmt.Fprintf(stdout, "Config written to %s\n", common.configPath)
		}
		return 0
	case "record":
		fs := newFlagSet("record", stderr)
		common := commonFlags(fs)
		commit := fs.String("commit", "", "Git commit SHA (optional)")
		branch := fs.String("branch", "", "Git branch name (optional)")
		if err := fs.Parse(rest); err != nil {
			return 2
		}
		common.apply(svc, stderr)
		err := svc.Record(ctx, application.RecordOptions{
			ConfigPath: common.configPath,
			Overrides:  common.overrides,
			Commit:     *commit,
			Branch:     *branch,
		})
		if err != nil {
			return exitCode(err, 3, stderr)
		}
		fmt.Fprintln(stdout, "Coverage recorded to history")
		return 0
	case "trend":
		fs := newFlagSet("trend", stderr)
		common := commonFlags(fs)
		if err := fs.Parse(rest); err != nil {
			return 2
		}
		common.apply(svc, stderr)
		result, err := svc.Trend(ctx, application.TrendOptions{
			ConfigPath: common.configPath,
			Overrides:  common.overrides,
		})
		if err != nil {
			return exitCode(err, 3, stderr)
		}
		printTrendResult(result, stdout)
		return 0
	case "badge":
		fs := newFlagSet("badge", stderr)
		common := commonFlags(fs)
		output := fs.String("output", "coverage.svg", "Output file path")
		label := fs.String("label", badge.DefaultLabel, "Badge label text")
		style := badge.StyleFlat
		fs.Var((*styleValue)(&style), "style", "Badge style: flat|flat-square")
		if err := fs.Parse(rest); err != nil {
			return 2
		}
		common.apply(svc, stderr)
		result, err := svc.Badge(ctx, application.BadgeOptions{
			ConfigPath: common.configPath,
			Overrides:  common.overrides,
		})
		if err != nil {
			return exitCode(err, 3, stderr)
		}
		if err := writeBadgeFile(*output, result, *label, style); err != nil {
			return exitCode(err, 3, stderr)
		}
		fmt.Fprintf(stdout, "Badge written to %s (%.1f%%)\n", *output, result.Percent)
		return 0
	case "version":
		fmt.Fprintln(stdout, versionLine())
		return 0
	case "help":
		usage(stdout)
		return 0
	default:
		usage(stderr)
		return 2
	}
}

// BuildService wires the production adapters.
func BuildService(out *os.File, logger application.Logger) *application.Service {
	return &application.Service{
		ConfigLoader: config.Loader{},
		ReportLoader: parsers.NewRegistry(),
		Reporter:     report.Writer{},
		Matcher:      paths.GlobMatcher{},
		OpenHistory:  history.Open,
		Logger:       logger,
		Out:          out,
	}
}

var newLogger = func(w io.Writer, verbose bool) application.Logger {
	return logging.New(w, verbose)
}

func newFlagSet(name string, stderr io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	return fs
}

// sharedFlags are accepted by every table-producing command.
type sharedFlags struct {
	configPath string
	overrides  application.Overrides
	verbose    bool
}

func commonFlags(fs *flag.FlagSet) *sharedFlags {
	s := &sharedFlags{}
	fs.StringVar(&s.configPath, "config", application.DefaultConfigPath, "Config file path")
	fs.StringVar(&s.overrides.Report, "report", "", "Coverage report path (default "+application.DefaultReportPath+")")
	fs.Var((*formatValue)(&s.overrides.Format), "format", "Report format: auto|llvm-cov|lcov")
	fs.StringVar(&s.overrides.SourceDir, "sources", "", "Top-level source directory to keep")
	fs.IntVar(&s.overrides.Width, "width", 0, "Filename column width")
	fs.StringVar(&s.overrides.History, "history", "", "History file path (default "+application.DefaultHistoryPath+")")
	fs.BoolVar(&s.verbose, "verbose", false, "Log debug details to stderr")
	return s
}

func (s *sharedFlags) apply(svc Service, stderr io.Writer) {
	if s.verbose {
		svc.SetLogger(newLogger(stderr, true))
	}
}

func outputFlags(fs *flag.FlagSet) *application.OutputFormat {
	output := application.OutputText
	fs.Var((*outputValue)(&output), "output", "Output format: text|json|brief")
	fs.Var((*outputValue)(&output), "o", "Output format: text|json|brief")
	return &output
}

type outputValue application.OutputFormat

func (o *outputValue) String() string { return string(*o) }

func (o *outputValue) Set(value string) error {
	switch value {
	case string(application.OutputText), string(application.OutputJSON), string(application.OutputBrief):
		*o = outputValue(value)
		return nil
	default:
		return fmt.Errorf("invalid output format: %s", value)
	}
}

type formatValue application.ReportFormat

func (f *formatValue) String() string { return string(*f) }

func (f *formatValue) Set(value string) error {
	format, err := application.ParseReportFormat(value)
	if err != nil {
		return err
	}
	*f = formatValue(format)
	return nil
}

func colorFlags(fs *flag.FlagSet) *application.ColorMode {
	mode := application.ColorAlways
	fs.Var((*colorValue)(&mode), "color", "Row colors: always|auto|never")
	return &mode
}

type colorValue application.ColorMode

func (c *colorValue) String() string { return string(*c) }

func (c *colorValue) Set(value string) error {
	switch value {
	case string(application.ColorAlways), string(application.ColorAuto), string(application.ColorNever):
		*c = colorValue(value)
		return nil
	default:
		return fmt.Errorf("invalid color mode: %s", value)
	}
}

type styleValue badge.Style

func (s *styleValue) String() string { return string(*s) }

func (s *styleValue) Set(value string) error {
	switch badge.Style(value) {
	case badge.StyleFlat, badge.StyleFlatSquare:
		*s = styleValue(value)
		return nil
	default:
		return fmt.Errorf("invalid badge style: %s", value)
	}
}

func writeConfigFile(path string, cfg application.Config, stdout io.Writer, force bool) error {
	if path == "-" {
		return config.Write(stdout, cfg)
	}
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config %s already exists", path)
		}
	}
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return config.Write(file, cfg)
}

func usage(w io.Writer) {
	fmt.Fprintln(w, `covtable [command] [flags]

Commands:
  print    Print the colored coverage table (default)
  watch    Reprint the table whenever the report changes
  init     Write .covtable.yaml, optionally via an interactive wizard
  record   Record current source totals to history
  trend    Compare current totals with the last recorded entry
  badge    Generate an SVG coverage badge
  version  Print version information`)
}

// writeBadgeFile renders the badge before touching path, so a failed render
// leaves an existing badge in place.
func writeBadgeFile(path string, result application.BadgeResult, label string, style badge.Style) error {
	var buf bytes.Buffer
	err := badge.Generate(&buf, badge.Options{
		Label:   label,
		Percent: result.Percent,
		Color:   result.Color,
		Style:   style,
	})
	if err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0o644) // #nosec G306 - badges are published artifacts
}

func exitCode(err error, code int, stderr io.Writer) int {
	if err == nil {
		return 0
	}
	fmt.Fprintln(stderr, err)
	return code
}

func printTrendResult(result application.TrendResult, w io.Writer) {
	current := result.Current.Percent()
	if result.Previous == nil {
		fmt.Fprintf(w, "Coverage: %.1f%% (no history yet)\n", current)
	} else {
		fmt.Fprintf(w, "Coverage Trend: %.1f%% %s %.1f%% (%+.1f%%)\n",
			result.Previous.Percent, result.Trend.Direction.Symbol(), current, result.Trend.Delta)
		fmt.Fprintf(w, "Last recorded: %s", result.Previous.Timestamp.Format(time.RFC3339))
		if result.Previous.Commit != "" {
			fmt.Fprintf(w, " (%s)", result.Previous.Commit)
		}
		fmt.Fprintln(w)
	}
	fmt.Fprintf(w, "Lines: %d/%d across %d files\n", result.Current.Covered, result.Current.Count, result.Current.Files)
	fmt.Fprintf(w, "\nHistory: %d entries\n", result.Entries)
}

func runWatch(ctx context.Context, stdout, stderr io.Writer, svc Service, opts application.PrintOptions) int {
	w, err := watcher.New(
		watcher.WithDebounce(500*time.Millisecond),
		watcher.WithErrorHandler(func(err error) {
			fmt.Fprintf(stderr, "watch error: %v\n", err)
		}),
	)
	if err != nil {
		fmt.Fprintf(stderr, "failed to create watcher: %v\n", err)
		return 1
	}
	defer w.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			fmt.Fprintln(stdout, "\nStopping watch mode...")
			cancel()
		case <-ctx.Done():
		}
	}()

	fmt.Fprintln(stdout, "Watching for report changes... (Ctrl+C to stop)")
	fmt.Fprintln(stdout, "")

	callback := func(runNumber int, runErr error) {
		fmt.Fprintf(stdout, "--- Run #%d at %s ---\n\n", runNumber, time.Now().Format("15:04:05"))
		if runErr != nil {
			fmt.Fprintf(stderr, "Table failed: %v\n", runErr)
		}
	}

	if err := svc.Watch(ctx, application.WatchOptions{Print: opts}, w, callback); err != nil {
		if errors.Is(err, context.Canceled) {
			return 0
		}
		fmt.Fprintf(stderr, "watch error: %v\n", err)
		return 1
	}
	return 0
}
