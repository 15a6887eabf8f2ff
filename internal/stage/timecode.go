package stage

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseTimecode converts "MM:SS" or "HH:MM:SS" into seconds. Fractional
// trailing seconds are accepted ("01:23.5").
func ParseTimecode(value string) (float64, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return 0, fmt.Errorf("empty timecode")
	}
	parts := strings.Split(trimmed, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, fmt.Errorf("timecode %q is not MM:SS or HH:MM:SS", value)
	}
	var total float64
	for _, part := range parts {
		n, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return 0, fmt.Errorf("timecode %q: %w", value, err)
		}
		if n < 0 {
			return 0, fmt.Errorf("timecode %q has negative component", value)
		}
		total = total*60 + n
	}
	return total, nil
}

// FormatTimecode renders whole seconds as "MM:SS", rolling minutes past
// 59 rather than adding an hours field, matching the transcript block
// format produced by the transcription stage.
func FormatTimecode(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	total := int(seconds)
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}
