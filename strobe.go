package meter

import (
	"time"
)

// StrobeActive decides whether a fully lit segment is showing the strobe
// color at the given instant.  Each cycle lasts 1000/rate milliseconds and
// its trailing duration milliseconds are the strobe phase.
func StrobeActive(now time.Time, rateHz float64, durationMs float64, fullyLit bool) bool {
	if !fullyLit || rateHz <= 0 {
		return false
	}

	cycleMs := int64(1000.0 / rateHz)
	if cycleMs <= 0 {
		return false
	}

	onMs := int64(durationMs)
	if onMs > cycleMs {
		onMs = cycleMs
	}
	if onMs <= 0 {
		return false
	}

	position := now.UnixMilli() % cycleMs
	return position >= cycleMs-onMs
}
