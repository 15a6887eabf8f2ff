package jobs

import "fmt"

// Measure distinguishes the completion measure a stage reports.
type Measure int

const (
	// MeasureNone marks indeterminate stages such as analysis.
	MeasureNone Measure = iota
	// MeasurePercent is used by byte- or duration-driven stages.
	MeasurePercent
	// MeasureFraction counts completed segments out of a total.
	MeasureFraction
)

// Progress is a stage tag plus a stage-local completion measure.
type Progress struct {
	Stage     Status
	Kind      Measure
	Percent   int
	Completed int
	Total     int
}

// Indeterminate builds a bare-stage progress value.
func Indeterminate(stage Status) Progress {
	return Progress{Stage: stage, Kind: MeasureNone}
}

// Percentage builds a percent progress value, clamped to [0, 100].
func Percentage(stage Status, percent int) Progress {
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	return Progress{Stage: stage, Kind: MeasurePercent, Percent: percent}
}

// Fraction builds a completed/total progress value.
func Fraction(stage Status, completed, total int) Progress {
	if completed < 0 {
		completed = 0
	}
	if total < 0 {
		total = 0
	}
	return Progress{Stage: stage, Kind: MeasureFraction, Completed: completed, Total: total}
}

// String renders the wire encoding consumed by polling clients:
// "uploading: 42%", "rendering: 3/10", or a bare "analyzing". Existing
// clients parse these strings, so the format must not drift.
func (p Progress) String() string {
	switch p.Kind {
	case MeasurePercent:
		return fmt.Sprintf("%s: %d%%", p.Stage, p.Percent)
	case MeasureFraction:
		return fmt.Sprintf("%s: %d/%d", p.Stage, p.Completed, p.Total)
	default:
		return string(p.Stage)
	}
}

// behind reports whether p represents less completed work than other
// within the same stage and measure.
func (p Progress) behind(other Progress) bool {
	if p.Stage != other.Stage || p.Kind != other.Kind {
		return false
	}
	switch p.Kind {
	case MeasurePercent:
		return p.Percent < other.Percent
	case MeasureFraction:
		return p.Completed < other.Completed
	default:
		return false
	}
}
