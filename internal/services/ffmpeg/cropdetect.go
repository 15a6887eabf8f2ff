package ffmpeg

import (
	"regexp"
	"sort"
	"strconv"
)

var cropLinePattern = regexp.MustCompile(`crop=(\d+):(\d+):(\d+):(\d+)`)

// parseCropCenters extracts normalized horizontal centers from ffmpeg
// cropdetect output. Lines whose detected region is degenerate or wider
// than the frame are skipped.
func parseCropCenters(output string, frameWidth int) []float64 {
	if frameWidth <= 0 {
		return nil
	}
	matches := cropLinePattern.FindAllStringSubmatch(output, -1)
	centers := make([]float64, 0, len(matches))
	for _, match := range matches {
		w, err1 := strconv.Atoi(match[1])
		x, err2 := strconv.Atoi(match[3])
		if err1 != nil || err2 != nil {
			continue
		}
		if w <= 0 || x < 0 || x+w > frameWidth {
			continue
		}
		centers = append(centers, (float64(x)+float64(w)/2)/float64(frameWidth))
	}
	return centers
}

// medianCenter reduces detected centers to a single stable value,
// falling back to the frame midpoint when there are no samples.
func medianCenter(centers []float64) float64 {
	if len(centers) == 0 {
		return 0.5
	}
	sorted := append([]float64(nil), centers...)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}
