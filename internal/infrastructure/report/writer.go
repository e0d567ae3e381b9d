package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/felixgeelhaar/covtable/internal/application"
	"github.com/felixgeelhaar/covtable/internal/domain"
	"github.com/mattn/go-isatty"
)

const headerColumns = " Cov'd  Total  Pct"

type Writer struct{}

func (Writer) Write(w io.Writer, table application.Table, opts application.WriteOptions) error {
	switch opts.Format {
	case application.OutputJSON:
		return writeJSON(w, table)
	case application.OutputBrief:
		return writeBrief(w, table)
	case application.OutputText, "":
		return writeText(w, table, opts)
	default:
		return fmt.Errorf("unsupported output format: %s", opts.Format)
	}
}

// writeText streams rows as they are produced. A row error stops the table
// where it is; lines already written stay written.
func writeText(w io.Writer, table application.Table, opts application.WriteOptions) error {
	width := tableWidth(table)
	colorize := colorEnabled(w, opts.Color)

	if _, err := fmt.Fprintf(w, "%s%s\n", padRight(head("Filename", width), width), headerColumns); err != nil {
		return err
	}

	var totals domain.Totals
	if table.Rows != nil {
		for row, err := range table.Rows {
			if err != nil {
				return err
			}
			totals.Add(row)
			line := formatLine(padRight(tail(row.Path, width), width), row.Covered, row.Count, row.Percent)
			if colorize {
				line = Escape(row.Color) + line + Reset()
			}
			if _, err := fmt.Fprintln(w, line); err != nil {
				return err
			}
		}
	}

	if opts.Summary {
		return writeSummary(w, totals, table, width, colorize)
	}
	return nil
}

func writeSummary(w io.Writer, totals domain.Totals, table application.Table, width int, colorize bool) error {
	label := fmt.Sprintf("Total (%d files)", totals.Files)
	line := formatLine(padRight(head(label, width), width), totals.Covered, totals.Count, totals.Percent())
	if colorize {
		bold := lipgloss.NewStyle().Bold(true)
		color := table.Thresholds.Classify(totals.Percent())
		line = Escape(color) + bold.Render(line) + Reset()
	}
	_, err := fmt.Fprintf(w, "%s\n%s\n", strings.Repeat("-", width+len(headerColumns)), line)
	return err
}

func formatLine(name string, covered, count int, percent float64) string {
	return fmt.Sprintf("%s %5d  %5d  %3.0f%%", name, covered, count, percent)
}

func writeJSON(w io.Writer, table application.Table) error {
	rows, err := application.CollectRows(table)
	if err != nil {
		return err
	}
	totals := domain.Summarize(rows)
	payload := struct {
		Rows   []domain.Row `json:"rows"`
		Totals struct {
			domain.Totals
			Percent float64 `json:"percent"`
		} `json:"totals"`
		Thresholds struct {
			Low     float64 `json:"low"`
			Caution float64 `json:"caution"`
		} `json:"thresholds"`
	}{Rows: rows}
	if payload.Rows == nil {
		payload.Rows = []domain.Row{}
	}
	payload.Totals.Totals = totals
	payload.Totals.Percent = domain.Round1(totals.Percent())
	payload.Thresholds.Low = table.Thresholds.Low
	payload.Thresholds.Caution = table.Thresholds.Caution

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(payload)
}

// writeBrief outputs a single-line summary.
// Format: XX.X% (covered/count lines) across N files | red: R, yellow: Y, green: G
func writeBrief(w io.Writer, table application.Table) error {
	rows, err := application.CollectRows(table)
	if err != nil {
		return err
	}
	totals := domain.Summarize(rows)
	bands := map[domain.Color]int{}
	for _, r := range rows {
		bands[r.Color]++
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%.1f%% (%d/%d lines) across %d files", totals.Percent(), totals.Covered, totals.Count, totals.Files))
	sb.WriteString(fmt.Sprintf(" | red: %d, yellow: %d, green: %d", bands[domain.Red], bands[domain.Yellow], bands[domain.Green]))
	sb.WriteString("\n")
	_, err = w.Write([]byte(sb.String()))
	return err
}

func tableWidth(table application.Table) int {
	if table.Width > 0 {
		return table.Width
	}
	return application.DefaultWidth
}

// tail keeps the last width runes of s.
func tail(s string, width int) string {
	n := utf8.RuneCountInString(s)
	if n <= width {
		return s
	}
	runes := []rune(s)
	return string(runes[n-width:])
}

// head keeps the first width runes of s.
func head(s string, width int) string {
	if utf8.RuneCountInString(s) <= width {
		return s
	}
	return string([]rune(s)[:width])
}

func padRight(s string, width int) string {
	return fmt.Sprintf("%-*s", width, s)
}

func colorEnabled(w io.Writer, mode application.ColorMode) bool {
	switch mode {
	case application.ColorNever:
		return false
	case application.ColorAuto:
		if os.Getenv("NO_COLOR") != "" {
			return false
		}
		file, ok := w.(*os.File)
		if !ok {
			return false
		}
		return isatty.IsTerminal(file.Fd()) || isatty.IsCygwinTerminal(file.Fd())
	default:
		return true
	}
}
