package domain

// Report is a parsed llvm-cov export. Only the first run is used.
type Report struct {
	Data []RunData `json:"data"`
}

// RunData holds the per-file records of a single export run.
type RunData struct {
	Files []FileEntry `json:"files"`
}

// FileEntry is one source file's coverage statistics.
type FileEntry struct {
	Filename string      `json:"filename"`
	Summary  FileSummary `json:"summary"`
}

// FileSummary groups the summaries llvm-cov reports per file. Only line
// coverage is consumed.
type FileSummary struct {
	Lines LineSummary `json:"lines"`
}

// LineSummary is line coverage for one file. Percent is taken from the
// report as-is and never recomputed.
type LineSummary struct {
	Covered int     `json:"covered"`
	Count   int     `json:"count"`
	Percent float64 `json:"percent"`
}

// Files returns the file entries of the first run.
func (r Report) Files() ([]FileEntry, error) {
	if len(r.Data) == 0 {
		return nil, ErrNoRunData
	}
	return r.Data[0].Files, nil
}
