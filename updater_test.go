package meter

import (
	"testing"
	"time"

	"github.com/dlnetworks/wled-bandwidth-meter/model"
)

func TestObserveSumsInterfaces(t *testing.T) {
	cfg := model.DefaultConfig()
	state := NewRenderState(cfg)
	u := NewUpdater(state, cfg)

	at := time.Unix(1000, 0)
	u.Observe(model.Sample{Interface: "eth0", RxKbps: 100, TxKbps: 10, At: at})
	rx, tx := u.Observe(model.Sample{Interface: "eth1", RxKbps: 50, TxKbps: 5, At: at})
	if rx != 150 || tx != 15 {
		t.Errorf("totals %f/%f", rx, tx)
	}

	// A newer reading replaces the older one for the same interface
	rx, tx = u.Observe(model.Sample{Interface: "eth0", RxKbps: 200, TxKbps: 20, At: at.Add(time.Second)})
	if rx != 250 || tx != 25 {
		t.Errorf("totals %f/%f", rx, tx)
	}

	snap := state.Snapshot()
	if snap.CurrentRxKbps != 250 || snap.StartRxKbps != 150 || !snap.LastUpdate.Equal(at.Add(time.Second)) {
		t.Errorf("state not updated %+v", snap)
	}

	// Interfaces that stop reporting drop out of the totals
	rx, _ = u.Observe(model.Sample{Interface: "eth0", RxKbps: 1, At: at.Add(time.Minute)})
	if rx != 1 {
		t.Errorf("stale interface still counted, total %f", rx)
	}
}

func TestTestOverrides(t *testing.T) {
	cfg := model.DefaultConfig()
	cfg.TestRx = true
	cfg.TestRxPercent = 25
	state := NewRenderState(cfg)
	u := NewUpdater(state, cfg)

	quarter := cfg.MaxBandwidthKbps() / 4

	// Simulated load shows immediately
	if snap := state.Snapshot(); snap.CurrentRxKbps != quarter || snap.StartRxKbps != quarter {
		t.Errorf("test load not seeded %+v", snap)
	}

	rx, tx := u.Observe(model.Sample{RxKbps: 1, TxKbps: 2, At: time.Unix(1000, 0)})
	if rx != quarter || tx != 2 {
		t.Errorf("override gave %f/%f", rx, tx)
	}

	if err := u.SetField("test_tx", true); err != nil {
		t.Fatal(err.Error())
	}
	if snap := state.Snapshot(); snap.CurrentTxKbps != cfg.MaxBandwidthKbps() {
		t.Errorf("enabling upload test mode did not seed %+v", snap)
	}

	if err := u.SetField("test_rx_percent", 250.0); err != nil {
		t.Fatal(err.Error())
	}
	if u.Config().TestRxPercent != 100 {
		t.Errorf("percent not clamped %f", u.Config().TestRxPercent)
	}
}

func TestUpdaterConfig(t *testing.T) {
	cfg := model.DefaultConfig()
	state := NewRenderState(cfg)
	u := NewUpdater(state, cfg)

	if err := u.SetField("bogus", 1.0); err == nil {
		t.Error("unknown field accepted")
	}
	if err := u.SetField("fps", "fast"); err == nil {
		t.Error("wrong type accepted")
	}
	if u.Config().FPS != 60 {
		t.Error("rejected update changed the configuration")
	}

	if err := u.SetField("fps", 30.0); err != nil {
		t.Fatal(err.Error())
	}
	if state.FPS() != 30 {
		t.Errorf("render state at %f fps", state.FPS())
	}

	// Copies handed out are not live
	cpy := u.Config()
	cpy.FPS = 1
	if u.Config().FPS != 30 {
		t.Error("configuration copy aliases the updater")
	}

	next := u.Config()
	next.Color = "FF00FF"
	next.StrobeRateHz = 4
	next.StrobeDurationMs = 1000
	if !u.ApplyConfig(next) {
		t.Error("color change did not invalidate the gradients")
	}
	if snap := state.Snapshot(); snap.StrobeDurationMs != 250 {
		t.Errorf("applied configuration was not normalized %f", snap.StrobeDurationMs)
	}
}

func TestUpdaterRun(t *testing.T) {
	cfg := model.DefaultConfig()
	state := NewRenderState(cfg)
	u := NewUpdater(state, cfg)

	sampleC := make(chan model.Sample)
	configC := make(chan *model.Config)
	quitC := make(chan struct{})
	doneC := make(chan struct{})
	go func() {
		u.Run(sampleC, configC, quitC)
		close(doneC)
	}()

	sampleC <- model.Sample{Interface: "eth0", RxKbps: 42, At: time.Unix(1000, 0)}
	next := model.DefaultConfig()
	next.TotalLEDs = 300
	configC <- next

	close(quitC)
	<-doneC

	snap := state.Snapshot()
	if snap.CurrentRxKbps != 42 || snap.TotalLEDs != 300 {
		t.Errorf("updates were lost %+v", snap)
	}
}
