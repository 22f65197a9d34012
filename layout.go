package meter

// This file contains the arithmetic that maps bandwidth onto LED counts and
// LED counts onto physical positions along the strip

import (
	"math"

	"github.com/dlnetworks/wled-bandwidth-meter/model"
)

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// InterpolationFactor is the progress through the smoothing window, always
// within [0,1].  A window of zero or less completes immediately.
func InterpolationFactor(elapsedMs float64, windowMs float64) float64 {
	if windowMs <= 0 || math.IsNaN(elapsedMs) {
		return 1.0
	}
	return clamp(elapsedMs/windowMs, 0, 1)
}

func Interpolate(start float64, current float64, t float64) float64 {
	return start + (current-start)*t
}

// SplitLEDs divides the strip between the two directions.  Download gets its
// percentage, rounded, and upload gets whatever remains.
func SplitLEDs(totalLEDs int, rxSplitPercent float64) (rxAvailable int, txAvailable int) {
	if math.IsNaN(rxSplitPercent) {
		rxSplitPercent = 50
	}
	pct := clamp(rxSplitPercent, 0, 100)
	rxAvailable = int(math.Round(float64(totalLEDs) * pct / 100.0))
	if rxAvailable > totalLEDs {
		rxAvailable = totalLEDs
	}
	return rxAvailable, totalLEDs - rxAvailable
}

// CalculateLEDs returns the number of lit LEDs for a bandwidth, it never
// exceeds the available budget and never goes below zero
func CalculateLEDs(bandwidthKbps float64, maxBandwidthKbps float64, available int) int {
	leds := math.Floor((bandwidthKbps / maxBandwidthKbps) * float64(available))
	switch {
	case math.IsNaN(leds) || leds <= 0:
		return 0
	case leds >= float64(available):
		return available
	default:
		return int(leds)
	}
}

// EffectiveSpeed is the scroll speed for one direction.  When scaling is on
// the utilization is quantized to whole frame fractions which stops low frame
// rates from stuttering as the interpolated bandwidth creeps.
func EffectiveSpeed(speed float64, kbps float64, maxKbps float64, fps float64, scale bool) float64 {
	if !scale {
		return speed
	}
	utilization := clamp(kbps/maxKbps, 0, 1)
	if math.IsNaN(utilization) {
		utilization = 0
	}
	if fps > 0 {
		utilization = math.Round(utilization*fps) / fps
	}
	return speed * utilization
}

// AdvanceOffset moves an animation phase along, the result stays in [0,1)
func AdvanceOffset(offset float64, speed float64, fps float64, deltaSeconds float64, ledsPerDirection int) float64 {
	if speed <= 0 || ledsPerDirection <= 0 {
		return offset
	}
	offset = math.Mod(offset+(speed*fps*deltaSeconds)/float64(ledsPerDirection), 1.0)
	if offset < 0 {
		offset += 1.0
	}
	return offset
}

// walk is a cyclic traversal of the strip
type walk struct {
	start int
	step  int
}

func walksFor(direction model.Direction, totalLEDs int, half int) (first walk, second walk) {
	switch direction {
	case model.Opposing:
		return walk{0, 1}, walk{totalLEDs - 1, -1}
	case model.Left:
		return walk{half - 1, -1}, walk{totalLEDs - 1, -1}
	case model.Right:
		return walk{0, 1}, walk{half, 1}
	default:
		return walk{half - 1, -1}, walk{half, 1}
	}
}

// fill takes count positions along the walk, skipping any that are already
// taken.  Within its own half a walk never meets a taken LED, the skipping
// only matters when a skewed split lets a segment spill over the midpoint.
func (w walk) fill(count int, totalLEDs int, taken []bool) (positions []int) {
	positions = make([]int, 0, count)
	idx := w.start
	for steps := 0; len(positions) < count && steps < totalLEDs; steps++ {
		pos := ((idx % totalLEDs) + totalLEDs) % totalLEDs
		if !taken[pos] {
			taken[pos] = true
			positions = append(positions, pos)
		}
		idx += w.step
	}
	return positions
}

// LEDPositions lays both segments out on the strip.  Download occupies the
// first physical half and upload the second unless swap is set.  The result
// is always indexed by logical direction.
func LEDPositions(txLEDs int, rxLEDs int, direction model.Direction, swap bool, totalLEDs int, ledsPerDirection int) (txPositions []int, rxPositions []int) {
	if totalLEDs <= 0 {
		return []int{}, []int{}
	}

	firstCount, secondCount := rxLEDs, txLEDs
	if swap {
		firstCount, secondCount = txLEDs, rxLEDs
	}

	firstWalk, secondWalk := walksFor(direction, totalLEDs, ledsPerDirection)

	taken := make([]bool, totalLEDs)
	second := secondWalk.fill(secondCount, totalLEDs, taken)
	first := firstWalk.fill(firstCount, totalLEDs, taken)

	if swap {
		return first, second
	}
	return second, first
}
