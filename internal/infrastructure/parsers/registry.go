// Package parsers picks the loader for a coverage report.
//
// The registry detects the export format unless one is configured, then
// hands the file to the matching parser.
package parsers

import (
	"fmt"
	"sort"
	"strings"

	"github.com/felixgeelhaar/covtable/internal/application"
	"github.com/felixgeelhaar/covtable/internal/domain"
	"github.com/felixgeelhaar/covtable/internal/infrastructure/llvmcov"
	"github.com/felixgeelhaar/covtable/internal/infrastructure/parsers/detector"
	"github.com/felixgeelhaar/covtable/internal/infrastructure/parsers/lcov"
)

// Parser decodes one export format.
type Parser interface {
	Load(path string) (domain.Report, error)
}

// Registry implements application.ReportLoader over all supported formats.
type Registry struct {
	detector *detector.Detector
	parsers  map[application.ReportFormat]Parser
}

// NewRegistry creates a new parser registry with all supported parsers.
func NewRegistry() *Registry {
	return &Registry{
		detector: detector.New(),
		parsers: map[application.ReportFormat]Parser{
			application.FormatLLVMCov: llvmcov.New(),
			application.FormatLCOV:    lcov.New(),
		},
	}
}

// Load reads path with the parser for format, detecting it first when
// format is auto or empty.
func (r *Registry) Load(path string, format application.ReportFormat) (domain.Report, error) {
	if format == "" || format == application.FormatAuto {
		detected, err := r.detector.DetectFormat(path)
		if err != nil {
			return domain.Report{}, fmt.Errorf("open coverage report: %w", err)
		}
		format = detected
	}

	parser, ok := r.parsers[format]
	if !ok {
		return domain.Report{}, fmt.Errorf("no parser available for format: %s (supported: %s)", format, joinFormats(r.SupportedFormats()))
	}
	return parser.Load(path)
}

// SupportedFormats returns the concrete formats in name order.
func (r *Registry) SupportedFormats() []application.ReportFormat {
	formats := make([]application.ReportFormat, 0, len(r.parsers))
	for format := range r.parsers {
		formats = append(formats, format)
	}
	sort.Slice(formats, func(i, j int) bool { return formats[i] < formats[j] })
	return formats
}

func joinFormats(formats []application.ReportFormat) string {
	names := make([]string, len(formats))
	for i, format := range formats {
		names[i] = string(format)
	}
	return strings.Join(names, ", ")
}

var _ application.ReportLoader = (*Registry)(nil)
