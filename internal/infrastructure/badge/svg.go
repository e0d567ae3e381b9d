package badge

import (
	"fmt"
	"html/template"
	"io"
	"unicode/utf8"

	"github.com/felixgeelhaar/covtable/internal/domain"
)

type Style string

const (
	StyleFlat       Style = "flat"
	StyleFlatSquare Style = "flat-square"
)

const DefaultLabel = "coverage"

// Options describes a badge. Color is the table band the percentage falls
// into, so the badge agrees with the row colors.
type Options struct {
	Label   string
	Percent float64
	Color   domain.Color
	Style   Style
}

const svgTemplate = `<svg xmlns="http://www.w3.org/2000/svg" xmlns:xlink="http://www.w3.org/1999/xlink" width="{{.Width}}" height="20" role="img" aria-label="{{.Label}}: {{.PercentText}}">
  <title>{{.Label}}: {{.PercentText}}</title>
  <linearGradient id="s" x2="0" y2="100%">
    <stop offset="0" stop-color="#bbb" stop-opacity=".1"/>
    <stop offset="1" stop-opacity=".1"/>
  </linearGradient>
  <clipPath id="r">
    <rect width="{{.Width}}" height="20" rx="{{.Rx}}" fill="#fff"/>
  </clipPath>
  <g clip-path="url(#r)">
    <rect width="{{.LabelWidth}}" height="20" fill="#555"/>
    <rect x="{{.LabelWidth}}" width="{{.ValueWidth}}" height="20" fill="{{.Color}}"/>
    <rect width="{{.Width}}" height="20" fill="url(#s)"/>
  </g>
  <g fill="#fff" text-anchor="middle" font-family="Verdana,Geneva,DejaVu Sans,sans-serif" text-rendering="geometricPrecision" font-size="110">
    <text aria-hidden="true" x="{{.LabelX}}" y="150" fill="#010101" fill-opacity=".3" transform="scale(.1)" textLength="{{.LabelTextWidth}}">{{.Label}}</text>
    <text x="{{.LabelX}}" y="140" transform="scale(.1)" fill="#fff" textLength="{{.LabelTextWidth}}">{{.Label}}</text>
    <text aria-hidden="true" x="{{.ValueX}}" y="150" fill="#010101" fill-opacity=".3" transform="scale(.1)" textLength="{{.ValueTextWidth}}">{{.PercentText}}</text>
    <text x="{{.ValueX}}" y="140" transform="scale(.1)" fill="#fff" textLength="{{.ValueTextWidth}}">{{.PercentText}}</text>
  </g>
</svg>`

var badgeTemplate = template.Must(template.New("badge").Parse(svgTemplate))

type templateData struct {
	Label          string
	PercentText    string
	Color          string
	Width          int
	LabelWidth     int
	ValueWidth     int
	LabelX         int
	ValueX         int
	LabelTextWidth int
	ValueTextWidth int
	Rx             int
}

// charWidth approximates Verdana 11px glyph width.
const charWidth = 7

func Generate(w io.Writer, opts Options) error {
	if opts.Label == "" {
		opts.Label = DefaultLabel
	}
	switch opts.Style {
	case "":
		opts.Style = StyleFlat
	case StyleFlat, StyleFlatSquare:
	default:
		return fmt.Errorf("unsupported badge style: %s", opts.Style)
	}

	percentText := formatPercent(opts.Percent)
	labelChars := utf8.RuneCountInString(opts.Label)
	valueChars := utf8.RuneCountInString(percentText)

	labelWidth := labelChars*charWidth + 10
	valueWidth := valueChars*charWidth + 10

	rx := 3
	if opts.Style == StyleFlatSquare {
		rx = 0
	}

	data := templateData{
		Label:          opts.Label,
		PercentText:    percentText,
		Color:          fillFor(opts.Color),
		Width:          labelWidth + valueWidth,
		LabelWidth:     labelWidth,
		ValueWidth:     valueWidth,
		LabelX:         labelWidth * 5,
		ValueX:         (labelWidth + valueWidth/2) * 10,
		LabelTextWidth: labelChars * charWidth * 10,
		ValueTextWidth: valueChars * charWidth * 10,
		Rx:             rx,
	}

	return badgeTemplate.Execute(w, data)
}

func formatPercent(p float64) string {
	p = domain.Round1(p)
	if p == float64(int(p)) {
		return fmt.Sprintf("%.0f%%", p)
	}
	return fmt.Sprintf("%.1f%%", p)
}

func fillFor(c domain.Color) string {
	switch c {
	case domain.Green:
		return "#4c1"
	case domain.Yellow:
		return "#dfb317"
	case domain.Red:
		return "#e05d44"
	default:
		return "#9f9f9f"
	}
}
