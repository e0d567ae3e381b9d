package domain

import "fmt"

// Color is the display band a coverage percentage falls into.
type Color int

const (
	Red Color = iota
	Yellow
	Green
)

func (c Color) String() string {
	switch c {
	case Red:
		return "red"
	case Yellow:
		return "yellow"
	case Green:
		return "green"
	default:
		return fmt.Sprintf("Color(%d)", int(c))
	}
}

// MarshalText lets colors appear by name in JSON output.
func (c Color) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

const (
	DefaultLowThreshold     = 80.0
	DefaultCautionThreshold = 90.0
)

// Thresholds splits the percentage range into three bands.
// Values at or below Low are red, values at or below Caution are yellow,
// everything above is green.
type Thresholds struct {
	Low     float64
	Caution float64
}

// DefaultThresholds returns the 80/90 split.
func DefaultThresholds() Thresholds {
	return Thresholds{Low: DefaultLowThreshold, Caution: DefaultCautionThreshold}
}

// NewThresholds validates and returns a threshold pair.
func NewThresholds(low, caution float64) (Thresholds, error) {
	t := Thresholds{Low: low, Caution: caution}
	if err := t.Validate(); err != nil {
		return Thresholds{}, err
	}
	return t, nil
}

// Validate reports whether 0 <= Low <= Caution <= 100.
func (t Thresholds) Validate() error {
	if t.Low < 0 || t.Caution > 100 || t.Low > t.Caution {
		return fmt.Errorf("%w (got low=%.1f caution=%.1f)", ErrInvalidThreshold, t.Low, t.Caution)
	}
	return nil
}

// Classify maps a percentage to its color band. It is total: values outside
// 0-100 fall through the same comparisons.
func (t Thresholds) Classify(percent float64) Color {
	switch {
	case percent <= t.Low:
		return Red
	case percent <= t.Caution:
		return Yellow
	default:
		return Green
	}
}
