package meter

// This file contains the single shared store through which the update side
// (bandwidth feed and configuration changes) communicates with the renderer.
// Writers mutate it under the lock, the renderer only ever sees copies.

import (
	"bytes"
	"sync"
	"time"

	"github.com/cnf/structhash"

	"github.com/dlnetworks/wled-bandwidth-meter/model"
)

// Snapshot is a mutually consistent copy of everything a render tick reads
type Snapshot struct {
	CurrentRxKbps float64
	CurrentTxKbps float64
	StartRxKbps   float64
	StartTxKbps   float64
	LastUpdate    time.Time // zero when no sample has arrived yet

	MaxBandwidthKbps    float64
	AnimationSpeed      float64
	ScaleAnimationSpeed bool
	TxAnimDirection     model.AnimDirection
	RxAnimDirection     model.AnimDirection
	InterpolationTimeMs float64

	TxColor       string
	RxColor       string
	UseGradient   bool
	Interpolation model.Interpolation

	Direction      model.Direction
	Swap           bool
	TotalLEDs      int
	RxSplitPercent float64
	FPS            float64

	StrobeOnMax      bool
	StrobeRateHz     float64
	StrobeDurationMs float64
	StrobeColor      string

	// Generation changes whenever a value that a built gradient depends on changes
	Generation uint64
}

// gradientIdentity is the subset of the configuration that cached gradients
// are derived from, its hash decides when the generation moves
type gradientIdentity struct {
	TxColor       string
	RxColor       string
	UseGradient   bool
	Interpolation int
	Direction     int
}

type RenderState struct {
	snap     Snapshot
	identity []byte
	sync.Mutex
}

// NewRenderState creates the shared state at generation zero with no
// bandwidth observed
func NewRenderState(cfg *model.Config) (state *RenderState) {
	state = &RenderState{}
	state.install(cfg)
	state.identity = state.hashIdentity()
	return state
}

func (state *RenderState) hashIdentity() []byte {
	return structhash.Md5(gradientIdentity{
		TxColor:       state.snap.TxColor,
		RxColor:       state.snap.RxColor,
		UseGradient:   state.snap.UseGradient,
		Interpolation: int(state.snap.Interpolation),
		Direction:     int(state.snap.Direction),
	}, 1)
}

// install copies the render relevant configuration, the string modes are
// converted here so that the renderer never parses them
func (state *RenderState) install(cfg *model.Config) {
	state.snap.MaxBandwidthKbps = cfg.MaxBandwidthKbps()
	state.snap.AnimationSpeed = cfg.AnimationSpeed
	state.snap.ScaleAnimationSpeed = cfg.ScaleAnimationSpeed
	state.snap.TxAnimDirection = model.ParseAnimDirection(cfg.TxAnimationDirection)
	state.snap.RxAnimDirection = model.ParseAnimDirection(cfg.RxAnimationDirection)
	state.snap.InterpolationTimeMs = cfg.InterpolationTimeMs

	state.snap.TxColor = cfg.TxColorSpec()
	state.snap.RxColor = cfg.RxColorSpec()
	state.snap.UseGradient = cfg.UseGradient
	state.snap.Interpolation = model.ParseInterpolation(cfg.Interpolation)

	state.snap.Direction = model.ParseDirection(cfg.Direction)
	state.snap.Swap = cfg.Swap
	state.snap.TotalLEDs = cfg.TotalLEDs
	state.snap.RxSplitPercent = cfg.RxSplitPercent
	state.snap.FPS = cfg.FPS

	state.snap.StrobeOnMax = cfg.StrobeOnMax
	state.snap.StrobeRateHz = cfg.StrobeRateHz
	state.snap.StrobeDurationMs = cfg.StrobeDurationMs
	state.snap.StrobeColor = cfg.StrobeColor
}

// ApplyConfig replaces all configuration derived values in one step, the
// generation is bumped only when the gradient identity changed.  The return
// value indicates whether the generation moved.
func (state *RenderState) ApplyConfig(cfg *model.Config) (bumped bool) {
	state.Lock()
	defer state.Unlock()

	state.install(cfg)

	identity := state.hashIdentity()
	if !bytes.Equal(identity, state.identity) {
		state.identity = identity
		state.snap.Generation++
		return true
	}
	return false
}

// UpdateBandwidth records a new measurement, the value being displayed at
// the moment becomes the start of the next interpolation
func (state *RenderState) UpdateBandwidth(rxKbps float64, txKbps float64, at time.Time) {
	state.Lock()
	defer state.Unlock()

	state.snap.StartRxKbps = state.snap.CurrentRxKbps
	state.snap.StartTxKbps = state.snap.CurrentTxKbps
	state.snap.CurrentRxKbps = rxKbps
	state.snap.CurrentTxKbps = txKbps
	state.snap.LastUpdate = at
}

// SeedBandwidth installs values that are displayed immediately with no
// interpolation, used for simulated load
func (state *RenderState) SeedBandwidth(rxKbps float64, txKbps float64) {
	state.Lock()
	defer state.Unlock()

	state.snap.StartRxKbps = rxKbps
	state.snap.StartTxKbps = txKbps
	state.snap.CurrentRxKbps = rxKbps
	state.snap.CurrentTxKbps = txKbps
}

// Snapshot copies the state out so that the caller can work without the lock
func (state *RenderState) Snapshot() (snap Snapshot) {
	state.Lock()
	snap = state.snap
	state.Unlock()
	return snap
}

func (state *RenderState) FPS() (fps float64) {
	state.Lock()
	fps = state.snap.FPS
	state.Unlock()
	return fps
}

func (state *RenderState) Generation() (gen uint64) {
	state.Lock()
	gen = state.snap.Generation
	state.Unlock()
	return gen
}
