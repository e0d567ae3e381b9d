package domain

// Row is one printable line of the coverage table.
type Row struct {
	Path    string  `json:"path"`
	Covered int     `json:"covered"`
	Count   int     `json:"count"`
	Percent float64 `json:"percent"`
	Color   Color   `json:"color"`
}

// NewRow builds the display row for a filtered entry.
func NewRow(entry SourceEntry, thresholds Thresholds) Row {
	lines := entry.Summary.Lines
	return Row{
		Path:    entry.RelPath,
		Covered: lines.Covered,
		Count:   lines.Count,
		Percent: lines.Percent,
		Color:   thresholds.Classify(lines.Percent),
	}
}

// Totals aggregates line coverage across rows.
type Totals struct {
	Files   int `json:"files"`
	Covered int `json:"covered"`
	Count   int `json:"count"`
}

// Add accumulates a row.
func (t *Totals) Add(r Row) {
	t.Files++
	t.Covered += r.Covered
	t.Count += r.Count
}

// Percent returns covered/count as a percentage, or 0 for an empty total.
func (t Totals) Percent() float64 {
	if t.Count == 0 {
		return 0
	}
	return float64(t.Covered) / float64(t.Count) * 100
}

// Summarize totals a slice of rows.
func Summarize(rows []Row) Totals {
	var t Totals
	for _, r := range rows {
		t.Add(r)
	}
	return t
}
