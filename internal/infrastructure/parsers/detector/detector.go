// Package detector sniffs which export format a coverage report uses.
//
// Content is examined first, then the file extension. Anything that is not
// recognizably LCOV is treated as llvm-cov JSON so that a broken JSON file
// is reported as malformed JSON rather than as an unknown format.
package detector

import (
	"bufio"
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/felixgeelhaar/covtable/internal/application"
	"github.com/felixgeelhaar/covtable/internal/pathutil"
)

// Detector detects coverage report formats from file content.
type Detector struct{}

// New creates a new format detector.
func New() *Detector {
	return &Detector{}
}

// DetectFormat returns the concrete format of the report at path. It never
// returns application.FormatAuto.
func (d *Detector) DetectFormat(path string) (application.ReportFormat, error) {
	cleanPath, err := pathutil.ValidatePath(path)
	if err != nil {
		return application.FormatAuto, err
	}

	content, err := readHead(cleanPath, 4096)
	if err != nil {
		return application.FormatAuto, err
	}

	if format, ok := d.detectFromContent(content); ok {
		return format, nil
	}
	return d.detectFromExtension(path), nil
}

func (d *Detector) detectFromContent(content []byte) (application.ReportFormat, bool) {
	trimmed := bytes.TrimSpace(content)
	if bytes.HasPrefix(trimmed, []byte("{")) {
		return application.FormatLLVMCov, true
	}
	if isLCOV(trimmed) {
		return application.FormatLCOV, true
	}
	return "", false
}

func (d *Detector) detectFromExtension(path string) application.ReportFormat {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".info", ".lcov":
		return application.FormatLCOV
	default:
		return application.FormatLLVMCov
	}
}

// isLCOV reports whether content contains an SF line followed by DA or
// LF data.
func isLCOV(content []byte) bool {
	scanner := bufio.NewScanner(bytes.NewReader(content))
	var hasSF bool

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch {
		case strings.HasPrefix(line, "SF:"):
			hasSF = true
		case hasSF && (strings.HasPrefix(line, "DA:") || strings.HasPrefix(line, "LF:")):
			return true
		}
	}

	return false
}

// readHead reads the first n bytes of a file.
func readHead(path string, n int) ([]byte, error) {
	file, err := os.Open(path) // #nosec G304 - path is validated by caller
	if err != nil {
		return nil, err
	}
	defer file.Close()

	buf := make([]byte, n)
	nRead, err := io.ReadFull(file, buf)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return nil, err
	}

	return buf[:nRead], nil
}
