// Package lcov reads LCOV tracefiles such as the ones written by
// `llvm-cov export -format=lcov`.
//
// Each SF record becomes one file entry. Line totals come from LF/LH when
// present, otherwise from counting DA lines.
package lcov

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/felixgeelhaar/covtable/internal/domain"
	"github.com/felixgeelhaar/covtable/internal/pathutil"
)

// ErrMalformed reports a record line that cannot be parsed.
var ErrMalformed = errors.New("malformed lcov tracefile")

// Parser decodes LCOV tracefiles into a single-run report.
type Parser struct{}

// New creates a new LCOV parser.
func New() *Parser {
	return &Parser{}
}

type record struct {
	file           string
	covered, total int
}

func (r record) entry() domain.FileEntry {
	percent := 0.0
	if r.total > 0 {
		percent = float64(r.covered) / float64(r.total) * 100
	}
	return domain.FileEntry{
		Filename: r.file,
		Summary: domain.FileSummary{Lines: domain.LineSummary{
			Covered: r.covered,
			Count:   r.total,
			Percent: percent,
		}},
	}
}

// Load reads an LCOV tracefile. Records keep their order in the file.
func (p *Parser) Load(path string) (domain.Report, error) {
	cleanPath, err := pathutil.ValidatePath(path)
	if err != nil {
		return domain.Report{}, fmt.Errorf("invalid report path: %w", err)
	}

	file, err := os.Open(cleanPath) // #nosec G304 - path is validated above
	if err != nil {
		return domain.Report{}, fmt.Errorf("open lcov file: %w", err)
	}
	defer file.Close()

	files := []domain.FileEntry{}
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var current *record
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		switch {
		case strings.HasPrefix(line, "SF:"):
			if current != nil {
				files = append(files, current.entry())
			}
			current = &record{file: strings.TrimPrefix(line, "SF:")}

		case line == "end_of_record":
			if current != nil {
				files = append(files, current.entry())
			}
			current = nil

		case current == nil:
			// TN and other lines outside a record

		case strings.HasPrefix(line, "DA:"):
			// DA:line_number,execution_count[,checksum]
			parts := strings.Split(strings.TrimPrefix(line, "DA:"), ",")
			if len(parts) < 2 {
				return domain.Report{}, fmt.Errorf("%s:%d: %w: %q", path, lineNo, ErrMalformed, line)
			}
			count, err := strconv.ParseInt(parts[1], 10, 64)
			if err != nil {
				return domain.Report{}, fmt.Errorf("%s:%d: %w: %q", path, lineNo, ErrMalformed, line)
			}
			current.total++
			if count > 0 {
				current.covered++
			}

		case strings.HasPrefix(line, "LF:"):
			lf, err := strconv.Atoi(strings.TrimPrefix(line, "LF:"))
			if err != nil {
				return domain.Report{}, fmt.Errorf("%s:%d: %w: %q", path, lineNo, ErrMalformed, line)
			}
			current.total = lf

		case strings.HasPrefix(line, "LH:"):
			lh, err := strconv.Atoi(strings.TrimPrefix(line, "LH:"))
			if err != nil {
				return domain.Report{}, fmt.Errorf("%s:%d: %w: %q", path, lineNo, ErrMalformed, line)
			}
			current.covered = lh

			// Branch (BRDA, BRF, BRH) and function (FN, FNDA, FNF, FNH) lines are ignored.
		}
	}

	if err := scanner.Err(); err != nil {
		return domain.Report{}, fmt.Errorf("scan lcov file: %w", err)
	}

	// Tolerate a final record without end_of_record.
	if current != nil {
		files = append(files, current.entry())
	}

	return domain.Report{Data: []domain.RunData{{Files: files}}}, nil
}
