package meter

import (
	"encoding/json"
	"io/ioutil"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dlnetworks/wled-bandwidth-meter/model"
)

func TestConfigAPI(t *testing.T) {
	cfg := model.DefaultConfig()
	state := NewRenderState(cfg)
	u := NewUpdater(state, cfg)

	srv := httptest.NewServer(NewConfigServer(u).Handler())
	defer srv.Close()

	resp, errGo := http.Get(srv.URL + "/api/config")
	if errGo != nil {
		t.Fatal(errGo)
	}
	got := &model.Config{}
	errGo = json.NewDecoder(resp.Body).Decode(got)
	resp.Body.Close()
	if errGo != nil {
		t.Fatal(errGo)
	}
	if *got != *cfg {
		t.Errorf("served configuration differs %+v", got)
	}

	tests := []struct {
		body   string
		status int
		reply  string
	}{
		{`{"field": "fps", "value": 30}`, http.StatusOK, "Configuration updated"},
		{`{"field": "rx_split_percent", "value": 150}`, http.StatusOK, "Configuration updated"},
		{`{"field": "color", "value": "FF0000,0000FF"}`, http.StatusOK, "Configuration updated"},
		{`{"field": "fps", "value": "fast"}`, http.StatusBadRequest, "Invalid value"},
		{`{"field": "total_leds", "value": 10.5}`, http.StatusBadRequest, "Invalid value"},
		{`{"field": "nonsense", "value": 1}`, http.StatusBadRequest, "Unknown field"},
		{`not json`, http.StatusBadRequest, "Invalid request body"},
	}
	for _, test := range tests {
		resp, errGo := http.Post(srv.URL+"/api/config", "application/json", strings.NewReader(test.body))
		if errGo != nil {
			t.Fatal(errGo)
		}
		reply, _ := ioutil.ReadAll(resp.Body)
		resp.Body.Close()

		if resp.StatusCode != test.status || !strings.Contains(string(reply), test.reply) {
			t.Errorf("%s gave %d %q", test.body, resp.StatusCode, string(reply))
		}
	}

	current := u.Config()
	if current.FPS != 30 || current.RxSplitPercent != 100 || current.Color != "FF0000,0000FF" {
		t.Errorf("updates not applied %+v", current)
	}
	if state.Generation() != 1 {
		t.Errorf("color change left the generation at %d", state.Generation())
	}

	req, _ := http.NewRequest(http.MethodDelete, srv.URL+"/api/config", nil)
	if resp, errGo = http.DefaultClient.Do(req); errGo != nil {
		t.Fatal(errGo)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("delete gave %d", resp.StatusCode)
	}
}
