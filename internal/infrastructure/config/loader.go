package config

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/felixgeelhaar/covtable/internal/application"
	"github.com/felixgeelhaar/covtable/internal/domain"
	"github.com/felixgeelhaar/covtable/internal/infrastructure/paths"
	"github.com/felixgeelhaar/covtable/internal/pathutil"
)

type Loader struct{}

type fileConfig struct {
	Report     string          `yaml:"report,omitempty"`
	Format     string          `yaml:"format,omitempty"`
	Sources    string          `yaml:"sources,omitempty"`
	Width      int             `yaml:"width,omitempty"`
	Thresholds *fileThresholds `yaml:"thresholds,omitempty"`
	Exclude    []string        `yaml:"exclude,omitempty"`
	History    string          `yaml:"history,omitempty"`
}

type fileThresholds struct {
	Low     *float64 `yaml:"low,omitempty"`
	Caution *float64 `yaml:"caution,omitempty"`
}

func (l Loader) Exists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return false, err
}

// Load reads a YAML config. Keys that are absent keep their defaults.
func (l Loader) Load(path string) (application.Config, error) {
	cleanPath, err := pathutil.ValidatePath(path)
	if err != nil {
		return application.Config{}, err
	}
	raw, err := os.ReadFile(cleanPath) // #nosec G304 - path is validated above
	if err != nil {
		return application.Config{}, err
	}

	var fc fileConfig
	if err := yaml.Unmarshal(raw, &fc); err != nil {
		return application.Config{}, err
	}

	cfg := application.DefaultConfig()
	if fc.Report != "" {
		cfg.Report = fc.Report
	}
	format, err := application.ParseReportFormat(fc.Format)
	if err != nil {
		return application.Config{}, err
	}
	cfg.Format = format
	if fc.Sources != "" {
		cfg.SourceDir = fc.Sources
	}
	if fc.Width < 0 {
		return application.Config{}, fmt.Errorf("width must be positive, got %d", fc.Width)
	}
	if fc.Width > 0 {
		cfg.Width = fc.Width
	}
	low, caution := cfg.Thresholds.Low, cfg.Thresholds.Caution
	if fc.Thresholds != nil {
		if fc.Thresholds.Low != nil {
			low = *fc.Thresholds.Low
		}
		if fc.Thresholds.Caution != nil {
			caution = *fc.Thresholds.Caution
		}
	}
	thresholds, err := domain.NewThresholds(low, caution)
	if err != nil {
		return application.Config{}, err
	}
	cfg.Thresholds = thresholds
	if bad := paths.ValidPatterns(fc.Exclude); len(bad) > 0 {
		return application.Config{}, fmt.Errorf("invalid exclude pattern %q", bad[0])
	}
	cfg.Exclude = fc.Exclude
	if fc.History != "" {
		cfg.History = fc.History
	}

	return cfg, nil
}

// Write encodes cfg in the same schema Load reads.
func Write(w io.Writer, cfg application.Config) error {
	low, caution := cfg.Thresholds.Low, cfg.Thresholds.Caution
	out := fileConfig{
		Report:     cfg.Report,
		Format:     string(cfg.Format),
		Sources:    cfg.SourceDir,
		Width:      cfg.Width,
		Thresholds: &fileThresholds{Low: &low, Caution: &caution},
		Exclude:    cfg.Exclude,
		History:    cfg.History,
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(out); err != nil {
		return err
	}
	return enc.Close()
}

