package badge

import (
	"bytes"
	"strings"
	"testing"

	"github.com/felixgeelhaar/covtable/internal/domain"
)

func TestGenerateBadge(t *testing.T) {
	buf := new(bytes.Buffer)
	opts := Options{
		Label:   "coverage",
		Percent: 85.5,
		Color:   domain.Yellow,
		Style:   StyleFlat,
	}
	if err := Generate(buf, opts); err != nil {
		t.Fatalf("generate: %v", err)
	}
	output := buf.String()
	if !strings.Contains(output, "<svg") {
		t.Fatal("expected SVG element")
	}
	if !strings.Contains(output, "coverage") {
		t.Fatal("expected label in output")
	}
	if !strings.Contains(output, "85.5%") {
		t.Fatal("expected percentage in output")
	}
}

func TestGenerateBadgeColors(t *testing.T) {
	tests := []struct {
		color     domain.Color
		wantColor string
	}{
		{domain.Red, "#e05d44"},
		{domain.Yellow, "#dfb317"},
		{domain.Green, "#4c1"},
	}

	for _, tc := range tests {
		t.Run(tc.color.String(), func(t *testing.T) {
			buf := new(bytes.Buffer)
			if err := Generate(buf, Options{Percent: 50, Color: tc.color}); err != nil {
				t.Fatalf("generate: %v", err)
			}
			if !strings.Contains(buf.String(), tc.wantColor) {
				t.Fatalf("expected color %s for %s", tc.wantColor, tc.color)
			}
		})
	}
}

func TestGenerateBadgeFlatSquareStyle(t *testing.T) {
	buf := new(bytes.Buffer)
	if err := Generate(buf, Options{Percent: 75, Style: StyleFlatSquare}); err != nil {
		t.Fatalf("generate: %v", err)
	}
	if strings.Contains(buf.String(), "rx=\"3\"") {
		t.Fatal("flat-square should not have rounded corners")
	}
}

func TestGenerateBadgeDefaults(t *testing.T) {
	buf := new(bytes.Buffer)
	if err := Generate(buf, Options{Percent: 75}); err != nil {
		t.Fatalf("generate: %v", err)
	}
	output := buf.String()
	if !strings.Contains(output, "rx=\"3\"") {
		t.Fatal("expected flat style by default")
	}
	if !strings.Contains(output, ">coverage<") {
		t.Fatal("expected default label")
	}
}

func TestGenerateBadgeUnknownStyle(t *testing.T) {
	if err := Generate(new(bytes.Buffer), Options{Percent: 75, Style: "plastic"}); err == nil {
		t.Fatal("expected error for unknown style")
	}
}

func TestGenerateBadgeEscapesLabel(t *testing.T) {
	buf := new(bytes.Buffer)
	if err := Generate(buf, Options{Label: "<lines>", Percent: 10, Color: domain.Red}); err != nil {
		t.Fatalf("generate: %v", err)
	}
	if strings.Contains(buf.String(), "<lines>") {
		t.Fatal("expected label to be escaped")
	}
}

func TestFormatPercent(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{100, "100%"},
		{0, "0%"},
		{85.5, "85.5%"},
		{66.66666, "66.7%"},
		{79.96, "80%"},
	}
	for _, tt := range tests {
		if got := formatPercent(tt.in); got != tt.want {
			t.Errorf("formatPercent(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
