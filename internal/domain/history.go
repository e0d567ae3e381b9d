package domain

import (
	"math"
	"time"
)

// HistoryEntry is one recorded set of source totals.
type HistoryEntry struct {
	Timestamp time.Time `json:"timestamp"`
	Commit    string    `json:"commit,omitempty"`
	Branch    string    `json:"branch,omitempty"`
	SourceDir string    `json:"sourceDir"`
	Files     int       `json:"files"`
	Covered   int       `json:"covered"`
	Count     int       `json:"count"`
	Percent   float64   `json:"percent"`
}

// NewHistoryEntry captures totals at a point in time.
func NewHistoryEntry(at time.Time, sourceDir string, totals Totals) HistoryEntry {
	return HistoryEntry{
		Timestamp: at.UTC(),
		SourceDir: sourceDir,
		Files:     totals.Files,
		Covered:   totals.Covered,
		Count:     totals.Count,
		Percent:   Round1(totals.Percent()),
	}
}

// Trend represents the direction and magnitude of coverage change.
type Trend struct {
	Direction TrendDirection `json:"direction"`
	Delta     float64        `json:"delta"`
}

// TrendDirection indicates whether coverage is improving, declining, or stable.
type TrendDirection string

const (
	TrendUp     TrendDirection = "up"
	TrendDown   TrendDirection = "down"
	TrendStable TrendDirection = "stable"
)

// Symbol returns an arrow for terminal output.
func (d TrendDirection) Symbol() string {
	switch d {
	case TrendUp:
		return "↑"
	case TrendDown:
		return "↓"
	default:
		return "→"
	}
}

// History contains all recorded entries.
type History struct {
	Entries []HistoryEntry `json:"entries"`
}

// LatestEntry returns the most recent history entry, or nil if empty.
func (h *History) LatestEntry() *HistoryEntry {
	if len(h.Entries) == 0 {
		return nil
	}
	latestIndex := 0
	latestTime := h.Entries[0].Timestamp
	for i := 1; i < len(h.Entries); i++ {
		if h.Entries[i].Timestamp.After(latestTime) {
			latestIndex = i
			latestTime = h.Entries[i].Timestamp
		}
	}
	return &h.Entries[latestIndex]
}

// CalculateTrend computes the trend between two coverage values. Changes
// within half a point either way are stable.
func CalculateTrend(previous, current float64) Trend {
	delta := current - previous
	var direction TrendDirection

	switch {
	case delta > 0.5:
		direction = TrendUp
	case delta < -0.5:
		direction = TrendDown
	default:
		direction = TrendStable
	}

	return Trend{
		Direction: direction,
		Delta:     Round1(delta),
	}
}

// Round1 rounds to one decimal place.
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}
