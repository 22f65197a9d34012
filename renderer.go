package meter

// This file contains the render engine.  It runs on its own schedule, takes a
// snapshot of the shared render state for every frame, paints the strip and
// hands the finished frame to a pixel transport.  It shares nothing with the
// update side other than the RenderState.

import (
	"math"
	"time"

	"github.com/karlmutch/errors"

	"github.com/dlnetworks/wled-bandwidth-meter/model"
)

const (
	// Pause between checks for a due frame
	idleSleep = 200 * time.Microsecond
)

type Renderer struct {
	state *RenderState
	sink  FrameSink

	// Animation phases in [0,1), owned by the render goroutine
	txOffset float64
	rxOffset float64

	tx         *GradientSet
	rx         *GradientSet
	generation uint64

	strobeSpec  string
	strobeColor model.Color

	now func() time.Time
}

// NewRenderer builds the initial gradients from the current state, a bad
// color specification at startup is returned to the caller
func NewRenderer(state *RenderState, sink FrameSink) (r *Renderer, err errors.Error) {
	r = &Renderer{
		state:       state,
		sink:        sink,
		strobeColor: model.Black,
		now:         time.Now,
	}

	snap := state.Snapshot()
	if err = r.rebuild(&snap); err != nil {
		return nil, err
	}
	return r, nil
}

// rebuild replaces both cached gradient sets.  The generation is recorded
// even on failure so that a bad color is reported once, the previous
// gradients remain in use until a good configuration arrives.
func (r *Renderer) rebuild(snap *Snapshot) (err errors.Error) {
	r.generation = snap.Generation

	tx, err := BuildGradient(snap.TxColor, snap.UseGradient, snap.Interpolation)
	if err != nil {
		return err.With("direction", "tx").With("generation", snap.Generation)
	}
	rx, err := BuildGradient(snap.RxColor, snap.UseGradient, snap.Interpolation)
	if err != nil {
		return err.With("direction", "rx").With("generation", snap.Generation)
	}
	r.tx, r.rx = tx, rx

	logger.Debug("gradients rebuilt", "generation", snap.Generation, "tx", snap.TxColor, "rx", snap.RxColor)
	return nil
}

// strobe returns the strobe color, black when the configured one is unusable
func (r *Renderer) strobe(spec string) model.Color {
	if spec != r.strobeSpec {
		r.strobeSpec = spec
		c, err := model.ParseColor(spec)
		if err != nil {
			c = model.Black
		}
		r.strobeColor = c
	}
	return r.strobeColor
}

// segment is everything needed to paint one logical direction of a frame
type segment struct {
	positions []int
	set       *GradientSet
	strobe    bool
	offset    float64
	scroll    model.AnimDirection
}

// RenderFrame renders one frame and sends it, deltaSeconds is the measured
// time since the previous frame
func (r *Renderer) RenderFrame(deltaSeconds float64) (err errors.Error) {
	snap := r.state.Snapshot()

	frame, err := r.render(&snap, deltaSeconds)
	if err != nil {
		return err
	}
	return r.sink.Write(frame, 0)
}

// render computes a complete frame from a snapshot
func (r *Renderer) render(snap *Snapshot, deltaSeconds float64) (frame []byte, err errors.Error) {
	if snap.Generation != r.generation {
		if err = r.rebuild(snap); err != nil {
			return nil, err
		}
	}

	now := r.now()

	rxKbps, txKbps := snap.CurrentRxKbps, snap.CurrentTxKbps
	if !snap.LastUpdate.IsZero() {
		elapsedMs := float64(now.Sub(snap.LastUpdate)) / float64(time.Millisecond)
		t := InterpolationFactor(elapsedMs, snap.InterpolationTimeMs)
		rxKbps = Interpolate(snap.StartRxKbps, snap.CurrentRxKbps, t)
		txKbps = Interpolate(snap.StartTxKbps, snap.CurrentTxKbps, t)
	}

	// The split decides how many LEDs each direction may light, the geometry
	// always pivots on the physical midpoint of the strip
	rxAvailable, txAvailable := SplitLEDs(snap.TotalLEDs, snap.RxSplitPercent)
	half := snap.TotalLEDs / 2

	rxLEDs := CalculateLEDs(rxKbps, snap.MaxBandwidthKbps, rxAvailable)
	txLEDs := CalculateLEDs(txKbps, snap.MaxBandwidthKbps, txAvailable)

	txStrobe, rxStrobe := false, false
	if snap.StrobeOnMax {
		txStrobe = StrobeActive(now, snap.StrobeRateHz, snap.StrobeDurationMs, txLEDs >= txAvailable)
		rxStrobe = StrobeActive(now, snap.StrobeRateHz, snap.StrobeDurationMs, rxLEDs >= rxAvailable)
	}

	txSpeed := EffectiveSpeed(snap.AnimationSpeed, txKbps, snap.MaxBandwidthKbps, snap.FPS, snap.ScaleAnimationSpeed)
	rxSpeed := EffectiveSpeed(snap.AnimationSpeed, rxKbps, snap.MaxBandwidthKbps, snap.FPS, snap.ScaleAnimationSpeed)
	r.txOffset = AdvanceOffset(r.txOffset, txSpeed, snap.FPS, deltaSeconds, half)
	r.rxOffset = AdvanceOffset(r.rxOffset, rxSpeed, snap.FPS, deltaSeconds, half)

	txPositions, rxPositions := LEDPositions(txLEDs, rxLEDs, snap.Direction, snap.Swap, snap.TotalLEDs, half)

	frame = make([]byte, snap.TotalLEDs*3)
	strobeColor := r.strobe(snap.StrobeColor)

	paint(frame, &segment{
		positions: txPositions,
		set:       r.tx,
		strobe:    txStrobe,
		offset:    r.txOffset,
		scroll:    snap.TxAnimDirection,
	}, snap.UseGradient, strobeColor, half)
	paint(frame, &segment{
		positions: rxPositions,
		set:       r.rx,
		strobe:    rxStrobe,
		offset:    r.rxOffset,
		scroll:    snap.RxAnimDirection,
	}, snap.UseGradient, strobeColor, half)

	return frame, nil
}

func setPixel(frame []byte, pos int, c model.Color) {
	frame[pos*3] = c.R
	frame[pos*3+1] = c.G
	frame[pos*3+2] = c.B
}

// paint fills the positions of one segment.  The strobe wins, then the hard
// edged palette, then the continuous curve, then the solid color.
func paint(frame []byte, seg *segment, useGradient bool, strobeColor model.Color, half int) {
	switch {
	case seg.strobe:
		for _, pos := range seg.positions {
			setPixel(frame, pos, strobeColor)
		}

	case !useGradient && len(seg.set.Palette) >= 2 && len(seg.positions) != 0:
		paintPalette(frame, seg)

	case seg.set.Curve != nil:
		for _, pos := range seg.positions {
			ratio := 0.0
			if half > 0 {
				ratio = float64(pos%half) / float64(half)
			}
			var at float64
			if seg.scroll == model.ScrollRight {
				at = math.Mod(1.0+ratio-seg.offset, 1.0)
			} else {
				at = math.Mod(ratio+seg.offset, 1.0)
			}
			setPixel(frame, pos, seg.set.Curve.At(at))
		}

	default:
		for _, pos := range seg.positions {
			setPixel(frame, pos, seg.set.Solid)
		}
	}
}

// paintPalette divides the lit LEDs into equal runs of each palette color
// and rotates the runs by the animation phase
func paintPalette(frame []byte, seg *segment) {
	palette := seg.set.Palette
	numLEDs := float64(len(seg.positions))

	shift := seg.offset * numLEDs
	if seg.scroll == model.ScrollRight {
		shift = -shift
	}
	runLen := numLEDs / float64(len(palette))

	for i, pos := range seg.positions {
		at := math.Mod(math.Mod(float64(i)+shift, numLEDs)+numLEDs, numLEDs)
		idx := int(at/runLen) % len(palette)
		setPixel(frame, pos, palette[idx])
	}
}

// Run paces frames against the frame rate held in the shared state, which
// is reread every iteration so it can change while running.  The measured
// elapsed time is used for animation so speeds stay real time under jitter.
// Failed frames are reported and dropped, the loop only exits on quitC.
func (r *Renderer) Run(errorC chan<- errors.Error, quitC <-chan struct{}) {
	logger.Debug("renderer started")
	defer logger.Debug("renderer stopped")

	lastFrame := time.Now()

	for {
		select {
		case <-quitC:
			return
		default:
		}

		if fps := r.state.FPS(); fps > 0 {
			frameDuration := time.Duration(float64(time.Second) / fps)

			now := time.Now()
			if elapsed := now.Sub(lastFrame); elapsed >= frameDuration {
				lastFrame = now
				if err := r.RenderFrame(elapsed.Seconds()); err != nil {
					select {
					case errorC <- err:
					default:
					}
				}
			}
		}

		time.Sleep(idleSleep)
	}
}
