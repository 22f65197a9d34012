package meter

// This file contains the update side of the meter.  Bandwidth samples and
// configuration changes arrive here and are folded into the shared render
// state, nothing on this side ever waits on the renderer.

import (
	"sync"
	"time"

	"github.com/karlmutch/errors"

	"github.com/dlnetworks/wled-bandwidth-meter/model"
)

const (
	// Interfaces that have not reported for this long are left out of totals
	staleSample = 5 * time.Second
)

type Updater struct {
	state  *RenderState
	cfg    *model.Config
	latest map[string]model.Sample
	sync.Mutex
}

func NewUpdater(state *RenderState, cfg *model.Config) (u *Updater) {
	u = &Updater{
		state:  state,
		cfg:    cfg.DeepCopy(),
		latest: map[string]model.Sample{},
	}
	u.cfg.Normalize()
	state.ApplyConfig(u.cfg)
	u.seedTest(nil)
	return u
}

// Config returns a copy of the configuration currently in effect
func (u *Updater) Config() (cfg *model.Config) {
	u.Lock()
	defer u.Unlock()
	return u.cfg.DeepCopy()
}

// testKbps is the simulated load for a test percentage
func testKbps(cfg *model.Config, percent float64) float64 {
	return cfg.MaxBandwidthKbps() * percent / 100.0
}

// override replaces measured values for the directions in test mode
func (u *Updater) override(rxKbps float64, txKbps float64) (float64, float64) {
	if u.cfg.TestRx {
		rxKbps = testKbps(u.cfg, u.cfg.TestRxPercent)
	}
	if u.cfg.TestTx {
		txKbps = testKbps(u.cfg, u.cfg.TestTxPercent)
	}
	return rxKbps, txKbps
}

// seedTest shows simulated load immediately for any direction whose test
// settings changed from prev, a nil prev seeds every direction in test mode
func (u *Updater) seedTest(prev *model.Config) {
	rxChanged := u.cfg.TestRx && (prev == nil || !prev.TestRx || prev.TestRxPercent != u.cfg.TestRxPercent || prev.MaxGbps != u.cfg.MaxGbps)
	txChanged := u.cfg.TestTx && (prev == nil || !prev.TestTx || prev.TestTxPercent != u.cfg.TestTxPercent || prev.MaxGbps != u.cfg.MaxGbps)
	if !rxChanged && !txChanged {
		return
	}

	snap := u.state.Snapshot()
	rxKbps, txKbps := snap.CurrentRxKbps, snap.CurrentTxKbps
	if rxChanged {
		rxKbps = testKbps(u.cfg, u.cfg.TestRxPercent)
	}
	if txChanged {
		txKbps = testKbps(u.cfg, u.cfg.TestTxPercent)
	}
	u.state.SeedBandwidth(rxKbps, txKbps)
}

// Observe folds one sample into the totals and publishes them
func (u *Updater) Observe(sample model.Sample) (rxKbps float64, txKbps float64) {
	if sample.At.IsZero() {
		sample.At = time.Now()
	}

	u.Lock()
	defer u.Unlock()

	u.latest[sample.Interface] = sample
	for iface, s := range u.latest {
		if sample.At.Sub(s.At) > staleSample {
			delete(u.latest, iface)
			continue
		}
		rxKbps += s.RxKbps
		txKbps += s.TxKbps
	}

	rxKbps, txKbps = u.override(rxKbps, txKbps)
	u.state.UpdateBandwidth(rxKbps, txKbps, sample.At)
	return rxKbps, txKbps
}

// ApplyConfig makes cfg the configuration in effect, the return value
// indicates whether cached gradients are now out of date
func (u *Updater) ApplyConfig(cfg *model.Config) (bumped bool) {
	u.Lock()
	defer u.Unlock()

	return u.apply(cfg.DeepCopy())
}

func (u *Updater) apply(cfg *model.Config) (bumped bool) {
	cfg.Normalize()

	prev := u.cfg
	u.cfg = cfg

	bumped = u.state.ApplyConfig(cfg)
	u.seedTest(prev)

	logger.Debug("configuration applied", "generation", u.state.Generation(), "rebuild", bumped)
	return bumped
}

// SetField changes a single option by its configuration key, the option is
// validated and clamped before anything is installed
func (u *Updater) SetField(field string, value interface{}) (err errors.Error) {
	u.Lock()
	defer u.Unlock()

	cfg := u.cfg.DeepCopy()
	if err = cfg.SetField(field, value); err != nil {
		return err
	}
	u.apply(cfg)
	return nil
}

// Run applies samples and configuration changes until quitC is closed
func (u *Updater) Run(sampleC <-chan model.Sample, configC <-chan *model.Config, quitC <-chan struct{}) {
	defer logger.Debug("updater stopped")

	for {
		select {
		case sample := <-sampleC:
			u.Observe(sample)
		case cfg := <-configC:
			if cfg != nil {
				u.ApplyConfig(cfg)
			}
		case <-quitC:
			return
		}
	}
}
