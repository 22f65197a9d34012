package model

import (
	"math"
	"testing"
)

func TestParseModes(t *testing.T) {
	if ParseDirection("Opposing") != Opposing || ParseDirection("left") != Left ||
		ParseDirection("right") != Right || ParseDirection("bogus") != Mirrored {
		t.Error("direction parsing did not map to the expected modes")
	}
	if ParseInterpolation("basis") != Basis || ParseInterpolation("Catmull-Rom") != CatmullRom ||
		ParseInterpolation("catmullrom") != CatmullRom || ParseInterpolation("") != Linear {
		t.Error("interpolation parsing did not map to the expected modes")
	}
	if ParseAnimDirection("right") != ScrollRight || ParseAnimDirection("left") != ScrollLeft ||
		ParseAnimDirection("up") != ScrollLeft {
		t.Error("animation direction parsing did not map to the expected modes")
	}
	for _, d := range []Direction{Mirrored, Opposing, Left, Right} {
		if ParseDirection(d.String()) != d {
			t.Errorf("%s did not survive a string round trip", d)
		}
	}
}

func TestNormalizeStrobe(t *testing.T) {
	cfg := DefaultConfig()
	cfg.StrobeRateHz = 3.0
	cfg.StrobeDurationMs = 400
	cfg.RxSplitPercent = 140
	cfg.Normalize()

	if math.Abs(cfg.StrobeDurationMs-1000.0/3.0) > 1e-9 {
		t.Errorf("strobe duration %f was not clamped to the cycle", cfg.StrobeDurationMs)
	}
	if cfg.RxSplitPercent != 100 {
		t.Errorf("split %f was not clamped", cfg.RxSplitPercent)
	}
}

func TestSetField(t *testing.T) {
	cfg := DefaultConfig()

	if err := cfg.SetField("strobe_rate_hz", 3.0); err != nil {
		t.Fatal(err.Error())
	}
	if err := cfg.SetField("strobe_duration_ms", 400.0); err != nil {
		t.Fatal(err.Error())
	}
	if math.Abs(cfg.StrobeDurationMs-333.3333333) > 1e-3 {
		t.Errorf("strobe duration %f not clamped", cfg.StrobeDurationMs)
	}

	if err := cfg.SetField("strobe_rate_hz", 10.0); err != nil {
		t.Fatal(err.Error())
	}
	if cfg.StrobeDurationMs != 100 {
		t.Errorf("raising the rate should shrink the duration, got %f", cfg.StrobeDurationMs)
	}

	if err := cfg.SetField("rx_split_percent", -5.0); err != nil || cfg.RxSplitPercent != 0 {
		t.Errorf("split not clamped, %f", cfg.RxSplitPercent)
	}
	if err := cfg.SetField("total_leds", 300.0); err != nil || cfg.TotalLEDs != 300 {
		t.Errorf("total leds not set, %d", cfg.TotalLEDs)
	}
	if err := cfg.SetField("tx_color", "FF0000,00FF00"); err != nil || cfg.TxColorSpec() != "FF0000,00FF00" {
		t.Errorf("tx color not set, %q", cfg.TxColor)
	}

	if err := cfg.SetField("swap", "yes"); err == nil {
		t.Error("string accepted for a boolean field")
	}
	if err := cfg.SetField("total_leds", 1.5); err == nil {
		t.Error("fractional led count accepted")
	}
	if err := cfg.SetField("nonsense", 1.0); err == nil {
		t.Error("unknown field accepted")
	}
}

func TestColorSpecFallback(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.TxColorSpec() != "0099FF" || cfg.RxColorSpec() != "0099FF" {
		t.Error("empty direction colors should use the shared color")
	}
	cfg.RxColor = "00FF00"
	if cfg.RxColorSpec() != "00FF00" {
		t.Error("rx color override ignored")
	}
}

func TestDeepCopy(t *testing.T) {
	cfg := DefaultConfig()
	cpy := cfg.DeepCopy()
	cpy.Color = "FFFFFF"
	if cfg.Color == cpy.Color {
		t.Error("copy shares state with the original")
	}
	if cpy.TotalLEDs != cfg.TotalLEDs || cpy.FPS != cfg.FPS {
		t.Error("copy lost values")
	}
}

func TestInterfaces(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Interface = "eth0, eth1,,"
	ifaces := cfg.Interfaces()
	if len(ifaces) != 2 || ifaces[0] != "eth0" || ifaces[1] != "eth1" {
		t.Errorf("unexpected interfaces %v", ifaces)
	}
}

func TestIsField(t *testing.T) {
	for _, name := range []string{"fps", "total_leds", "color", "test_rx_percent", "wled_ip"} {
		if !IsField(name) {
			t.Errorf("%s not recognized", name)
		}
	}
	for _, name := range []string{"", "FPS", "TotalLEDs", "nonsense"} {
		if IsField(name) {
			t.Errorf("%s accepted", name)
		}
	}
}

func TestTotalLEDsBounded(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.SetField("total_leds", 1e12); err == nil {
		t.Error("oversized strip accepted")
	}
	if err := cfg.SetField("total_leds", float64(MaxTotalLEDs)); err != nil {
		t.Error(err.Error())
	}

	cfg.TotalLEDs = MaxTotalLEDs * 4
	cfg.Normalize()
	if cfg.TotalLEDs != MaxTotalLEDs {
		t.Errorf("strip size %d was not capped", cfg.TotalLEDs)
	}
}

func TestNonFiniteValues(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatal(err.Error())
	}
	if err := cfg.SetField("fps", math.Inf(1)); err == nil {
		t.Error("infinite frame rate accepted")
	}

	cfg.MaxGbps = math.Inf(1)
	cfg.FPS = math.NaN()
	if err := cfg.Validate(); err == nil {
		t.Error("non finite values passed validation")
	}

	// Copies survive values that json cannot carry
	cpy := cfg.DeepCopy()
	if cpy.TotalLEDs != cfg.TotalLEDs || !math.IsInf(cpy.MaxGbps, 1) {
		t.Errorf("copy lost values %+v", cpy)
	}

	cpy.Normalize()
	if cpy.MaxGbps != 10 || cpy.FPS != 60 {
		t.Errorf("non finite values not reset to defaults %f %f", cpy.MaxGbps, cpy.FPS)
	}
	if err := cpy.Validate(); err != nil {
		t.Error(err.Error())
	}
}
