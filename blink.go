package meter

// This file contains the LED test mode, used to find the physical position
// of LEDs on a strip by blinking a chosen set of them

import (
	"strconv"
	"strings"
	"time"

	"github.com/go-stack/stack"
	"github.com/karlmutch/errors"

	"github.com/dlnetworks/wled-bandwidth-meter/model"
)

// ParseLEDNumbers expands a list such as "0-5,10,20-22" into LED indexes
func ParseLEDNumbers(spec string) (leds []int, err errors.Error) {
	leds = []int{}
	for _, part := range strings.Split(spec, ",") {
		part = strings.TrimSpace(part)

		if !strings.Contains(part, "-") {
			led, errGo := strconv.ParseUint(part, 10, 31)
			if errGo != nil {
				return nil, errors.Wrap(errGo).With("leds", spec).With("stack", stack.Trace().TrimRuntime())
			}
			leds = append(leds, int(led))
			continue
		}

		bounds := strings.Split(part, "-")
		if len(bounds) != 2 {
			return nil, errors.New("invalid led range").With("range", part).With("stack", stack.Trace().TrimRuntime())
		}
		start, errGo := strconv.ParseUint(strings.TrimSpace(bounds[0]), 10, 31)
		if errGo != nil {
			return nil, errors.Wrap(errGo).With("range", part).With("stack", stack.Trace().TrimRuntime())
		}
		end, errGo := strconv.ParseUint(strings.TrimSpace(bounds[1]), 10, 31)
		if errGo != nil {
			return nil, errors.Wrap(errGo).With("range", part).With("stack", stack.Trace().TrimRuntime())
		}
		for led := start; led <= end; led++ {
			leds = append(leds, int(led))
		}
	}
	return leds, nil
}

// BlinkFrame returns a frame just long enough to reach the highest LED, with
// the listed LEDs set to c and everything else dark
func BlinkFrame(leds []int, c model.Color) (frame []byte) {
	maxLED := -1
	for _, led := range leds {
		if led > maxLED {
			maxLED = led
		}
	}
	frame = make([]byte, (maxLED+1)*3)
	for _, led := range leds {
		setPixel(frame, led, c)
	}
	return frame
}

// Blink alternates the LEDs between red and off, spending period in each
// state, until quitC is closed
func Blink(sink FrameSink, leds []int, period time.Duration, quitC <-chan struct{}) (err errors.Error) {
	on := BlinkFrame(leds, model.Red)
	off := make([]byte, len(on))

	tick := time.NewTicker(period)
	defer tick.Stop()

	lit := true
	for iteration := 1; ; iteration++ {
		frame := off
		if lit {
			frame = on
			logger.Info("leds on", "iteration", iteration/2+1, "leds", len(leds))
		}
		if err = sink.Write(frame, 0); err != nil {
			return err
		}
		lit = !lit

		select {
		case <-tick.C:
		case <-quitC:
			return nil
		}
	}
}
