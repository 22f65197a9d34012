package meter

import (
	"testing"
	"time"
)

func TestStrobeActive(t *testing.T) {
	tests := []struct {
		ms       int64
		rateHz   float64
		duration float64
		lit      bool
		expect   bool
	}{
		// 3 Hz is a 333 ms cycle whose final 166 ms strobe
		{0, 3, 166, true, false},
		{166, 3, 166, true, false},
		{167, 3, 166, true, true},
		{332, 3, 166, true, true},
		{333, 3, 166, true, false},
		{333 + 200, 3, 166, true, true},
		{200, 3, 166, false, false},
		{200, 0, 166, true, false},
		{200, -1, 166, true, false},
		{200, 3, 0, true, false},
		// A cycle shorter than a millisecond never strobes
		{200, 2000, 1, true, false},
		// Durations beyond the cycle keep the strobe on
		{0, 10, 500, true, true},
		{99, 10, 500, true, true},
	}

	for _, test := range tests {
		now := time.UnixMilli(test.ms)
		if got := StrobeActive(now, test.rateHz, test.duration, test.lit); got != test.expect {
			t.Errorf("%d ms at %f Hz for %f ms lit %v gave %v", test.ms, test.rateHz, test.duration, test.lit, got)
		}
	}
}

func TestStrobeDeterministic(t *testing.T) {
	now := time.UnixMilli(1700000000123)
	first := StrobeActive(now, 7, 50, true)
	for i := 0; i != 100; i++ {
		if StrobeActive(now, 7, 50, true) != first {
			t.Fatal("strobe phase changed for a fixed instant")
		}
	}
}
