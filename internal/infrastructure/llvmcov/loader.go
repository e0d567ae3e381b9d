// Package llvmcov reads the JSON export written by `llvm-cov export` and
// `swift test --enable-code-coverage`.
//
// Only the line summary of each file record is decoded:
//
//	{"data":[{"files":[{"filename":"...","summary":{"lines":{"covered":1,"count":2,"percent":50}}}]}]}
package llvmcov

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/felixgeelhaar/covtable/internal/domain"
	"github.com/felixgeelhaar/covtable/internal/pathutil"
)

var (
	// ErrMalformed wraps JSON syntax and type errors.
	ErrMalformed = errors.New("malformed coverage report")
	// ErrStructure reports a missing key or index in an otherwise valid document.
	ErrStructure = errors.New("unexpected coverage report structure")
)

// Loader decodes llvm-cov JSON exports.
type Loader struct{}

// New creates a new llvm-cov export loader.
func New() Loader {
	return Loader{}
}

type exportDoc struct {
	Data *[]exportRun `json:"data"`
}

type exportRun struct {
	Files *[]exportFile `json:"files"`
}

type exportFile struct {
	Filename *string        `json:"filename"`
	Summary  *exportSummary `json:"summary"`
}

type exportSummary struct {
	Lines *domain.LineSummary `json:"lines"`
}

// Load reads path and returns the report with its first run's file records.
func (Loader) Load(path string) (domain.Report, error) {
	cleanPath, err := pathutil.ValidatePath(path)
	if err != nil {
		return domain.Report{}, fmt.Errorf("invalid report path: %w", err)
	}

	file, err := os.Open(cleanPath) // #nosec G304 - path is validated above
	if err != nil {
		return domain.Report{}, fmt.Errorf("open coverage report: %w", err)
	}
	defer file.Close()

	var doc exportDoc
	if err := json.NewDecoder(file).Decode(&doc); err != nil {
		return domain.Report{}, fmt.Errorf("%w: %s: %v", ErrMalformed, path, err)
	}

	return convert(doc, path)
}

func convert(doc exportDoc, path string) (domain.Report, error) {
	if doc.Data == nil {
		return domain.Report{}, fmt.Errorf("%w: %s: missing \"data\"", ErrStructure, path)
	}
	if len(*doc.Data) == 0 {
		return domain.Report{}, fmt.Errorf("%w: %s: empty \"data\": %w", ErrStructure, path, domain.ErrNoRunData)
	}
	first := (*doc.Data)[0]
	if first.Files == nil {
		return domain.Report{}, fmt.Errorf("%w: %s: missing \"data[0].files\"", ErrStructure, path)
	}

	files := make([]domain.FileEntry, 0, len(*first.Files))
	for i, f := range *first.Files {
		if f.Filename == nil {
			return domain.Report{}, fmt.Errorf("%w: %s: files[%d] has no \"filename\"", ErrStructure, path, i)
		}
		if f.Summary == nil || f.Summary.Lines == nil {
			return domain.Report{}, fmt.Errorf("%w: %s: files[%d] (%s) has no \"summary.lines\"", ErrStructure, path, i, *f.Filename)
		}
		files = append(files, domain.FileEntry{
			Filename: *f.Filename,
			Summary:  domain.FileSummary{Lines: *f.Summary.Lines},
		})
	}

	return domain.Report{Data: []domain.RunData{{Files: files}}}, nil
}
