package meter

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/karlmutch/errors"

	"github.com/dlnetworks/wled-bandwidth-meter/model"
)

func tempDir(t *testing.T) (dir string, cleanup func()) {
	dir, errGo := ioutil.TempDir("", "ledmeter")
	if errGo != nil {
		t.Fatal(errGo)
	}
	return dir, func() { os.RemoveAll(dir) }
}

func TestLoadConfig(t *testing.T) {
	dir, cleanup := tempDir(t)
	defer cleanup()

	cfg, err := LoadConfig(filepath.Join(dir, "absent.yaml"))
	if err != nil {
		t.Fatal(err.Error())
	}
	if *cfg != *model.DefaultConfig() {
		t.Errorf("missing file did not give the defaults %+v", cfg)
	}

	path := filepath.Join(dir, "meter.yaml")
	body := `
max_gbps: 1
color: "FF0000,00FF00"
direction: opposing
total_leds: 300
strobe_rate_hz: 5
strobe_duration_ms: 900
`
	if errGo := ioutil.WriteFile(path, []byte(body), 0600); errGo != nil {
		t.Fatal(errGo)
	}

	if cfg, err = LoadConfig(path); err != nil {
		t.Fatal(err.Error())
	}
	if cfg.MaxGbps != 1 || cfg.Color != "FF0000,00FF00" || cfg.Direction != "opposing" || cfg.TotalLEDs != 300 {
		t.Errorf("file values not loaded %+v", cfg)
	}
	if cfg.FPS != 60 || cfg.WledIP != "led.local" {
		t.Errorf("defaults not kept for absent keys %+v", cfg)
	}
	if cfg.StrobeDurationMs != 200 {
		t.Errorf("strobe duration not normalized %f", cfg.StrobeDurationMs)
	}

	if errGo := ioutil.WriteFile(path, []byte("max_gbps: [not a number\n"), 0600); errGo != nil {
		t.Fatal(errGo)
	}
	if _, err = LoadConfig(path); err == nil {
		t.Error("malformed file was accepted")
	}

	if errGo := ioutil.WriteFile(path, []byte("fps: .inf\n"), 0600); errGo != nil {
		t.Fatal(errGo)
	}
	if _, err = LoadConfig(path); err == nil {
		t.Error("infinite frame rate was accepted")
	}
}

func TestWatchConfig(t *testing.T) {
	dir, cleanup := tempDir(t)
	defer cleanup()

	path := filepath.Join(dir, "meter.yaml")
	if errGo := ioutil.WriteFile(path, []byte("fps: 30\n"), 0600); errGo != nil {
		t.Fatal(errGo)
	}

	configC := make(chan *model.Config, 1)
	errorC := make(chan errors.Error, 1)
	quitC := make(chan struct{})
	defer close(quitC)

	if err := WatchConfig(path, configC, errorC, quitC); err != nil {
		t.Fatal(err.Error())
	}

	// Other files in the directory are ignored
	if errGo := ioutil.WriteFile(filepath.Join(dir, "other"), []byte("x"), 0600); errGo != nil {
		t.Fatal(errGo)
	}
	if errGo := ioutil.WriteFile(path, []byte("fps: 24\n"), 0600); errGo != nil {
		t.Fatal(errGo)
	}

	select {
	case cfg := <-configC:
		if cfg.FPS != 24 {
			t.Errorf("reloaded configuration at %f fps", cfg.FPS)
		}
	case err := <-errorC:
		t.Fatal(err.Error())
	case <-time.After(5 * time.Second):
		t.Fatal("configuration change was not seen")
	}
}
