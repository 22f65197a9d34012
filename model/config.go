package model

// This module defines the user facing configuration of the meter along with
// the closed set of modes that the string valued options are converted into
// when they are ingested

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strings"

	"github.com/go-stack/stack"
	"github.com/karlmutch/errors"
)

// MaxTotalLEDs is the largest strip the meter will drive
const MaxTotalLEDs = 65536

// Direction selects where on the strip the two halves are filled from
type Direction int

const (
	Mirrored Direction = iota // Both halves grow outward from the center
	Opposing                  // Both halves grow inward from the strip ends
	Left                      // Both halves grow toward lower indexes
	Right                     // Both halves grow toward higher indexes
)

func ParseDirection(s string) Direction {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "opposing":
		return Opposing
	case "left":
		return Left
	case "right":
		return Right
	default:
		return Mirrored
	}
}

func (d Direction) String() string {
	switch d {
	case Opposing:
		return "opposing"
	case Left:
		return "left"
	case Right:
		return "right"
	default:
		return "mirrored"
	}
}

// Interpolation selects the curve used between gradient control stops
type Interpolation int

const (
	Linear Interpolation = iota
	Basis
	CatmullRom
)

func ParseInterpolation(s string) Interpolation {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "basis":
		return Basis
	case "catmullrom", "catmull-rom":
		return CatmullRom
	default:
		return Linear
	}
}

func (i Interpolation) String() string {
	switch i {
	case Basis:
		return "basis"
	case CatmullRom:
		return "catmullrom"
	default:
		return "linear"
	}
}

// AnimDirection is the direction in which colors scroll along a segment.
// Only "right" scrolls right, anything else scrolls left.
type AnimDirection int

const (
	ScrollLeft AnimDirection = iota
	ScrollRight
)

func ParseAnimDirection(s string) AnimDirection {
	if strings.ToLower(strings.TrimSpace(s)) == "right" {
		return ScrollRight
	}
	return ScrollLeft
}

func (a AnimDirection) String() string {
	if a == ScrollRight {
		return "right"
	}
	return "left"
}

// Config mirrors the configuration file, field names are the keys used in
// the file and by the HTTP API
type Config struct {
	MaxGbps              float64 `yaml:"max_gbps" json:"max_gbps"`
	Color                string  `yaml:"color" json:"color"`
	TxColor              string  `yaml:"tx_color" json:"tx_color"`
	RxColor              string  `yaml:"rx_color" json:"rx_color"`
	Direction            string  `yaml:"direction" json:"direction"`
	Swap                 bool    `yaml:"swap" json:"swap"`
	RxSplitPercent       float64 `yaml:"rx_split_percent" json:"rx_split_percent"`
	StrobeOnMax          bool    `yaml:"strobe_on_max" json:"strobe_on_max"`
	StrobeRateHz         float64 `yaml:"strobe_rate_hz" json:"strobe_rate_hz"`
	StrobeDurationMs     float64 `yaml:"strobe_duration_ms" json:"strobe_duration_ms"`
	StrobeColor          string  `yaml:"strobe_color" json:"strobe_color"`
	AnimationSpeed       float64 `yaml:"animation_speed" json:"animation_speed"`
	ScaleAnimationSpeed  bool    `yaml:"scale_animation_speed" json:"scale_animation_speed"`
	TxAnimationDirection string  `yaml:"tx_animation_direction" json:"tx_animation_direction"`
	RxAnimationDirection string  `yaml:"rx_animation_direction" json:"rx_animation_direction"`
	InterpolationTimeMs  float64 `yaml:"interpolation_time_ms" json:"interpolation_time_ms"`
	WledIP               string  `yaml:"wled_ip" json:"wled_ip"`
	Interface            string  `yaml:"interface" json:"interface"`
	TotalLEDs            int     `yaml:"total_leds" json:"total_leds"`
	UseGradient          bool    `yaml:"use_gradient" json:"use_gradient"`
	Interpolation        string  `yaml:"interpolation" json:"interpolation"`
	FPS                  float64 `yaml:"fps" json:"fps"`
	HttpdEnabled         bool    `yaml:"httpd_enabled" json:"httpd_enabled"`
	HttpdIP              string  `yaml:"httpd_ip" json:"httpd_ip"`
	HttpdPort            int     `yaml:"httpd_port" json:"httpd_port"`
	TestTx               bool    `yaml:"test_tx" json:"test_tx"`
	TestRx               bool    `yaml:"test_rx" json:"test_rx"`
	TestTxPercent        float64 `yaml:"test_tx_percent" json:"test_tx_percent"`
	TestRxPercent        float64 `yaml:"test_rx_percent" json:"test_rx_percent"`
}

func DefaultConfig() (cfg *Config) {
	return &Config{
		MaxGbps:              10.0,
		Color:                "0099FF",
		Direction:            "mirrored",
		RxSplitPercent:       50.0,
		StrobeRateHz:         3.0,
		StrobeDurationMs:     166.0,
		StrobeColor:          "000000",
		AnimationSpeed:       1.0,
		TxAnimationDirection: "right",
		RxAnimationDirection: "left",
		InterpolationTimeMs:  1000.0,
		WledIP:               "led.local",
		Interface:            "en0",
		TotalLEDs:            1200,
		UseGradient:          true,
		Interpolation:        "linear",
		FPS:                  60.0,
		HttpdEnabled:         true,
		HttpdIP:              "localhost",
		HttpdPort:            8080,
		TestTxPercent:        100.0,
		TestRxPercent:        100.0,
	}
}

// DeepCopy deepcopies the configuration using json marshaling
func (cfg *Config) DeepCopy() (cpy *Config) {
	cpy = &Config{}

	byt, errGo := json.Marshal(cfg)
	if errGo != nil {
		// Only non finite floats fail to marshal, every field is a plain value
		*cpy = *cfg
		return cpy
	}
	json.Unmarshal(byt, cpy)
	return cpy
}

// floatFields visits every float option by its configuration key
func (cfg *Config) floatFields(visit func(name string, v reflect.Value)) {
	val := reflect.ValueOf(cfg).Elem()
	t := val.Type()
	for i := 0; i < t.NumField(); i++ {
		if t.Field(i).Type.Kind() == reflect.Float64 {
			visit(t.Field(i).Tag.Get("json"), val.Field(i))
		}
	}
}

// Validate rejects the values that cannot be corrected, infinities and NaNs
func (cfg *Config) Validate() (err errors.Error) {
	cfg.floatFields(func(name string, v reflect.Value) {
		if err == nil && !isFinite(v.Float()) {
			err = invalidValue(name, v.Float())
		}
	})
	return err
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// MaxBandwidthKbps converts the configured maximum to the unit used by the feed
func (cfg *Config) MaxBandwidthKbps() float64 {
	return cfg.MaxGbps * 1000.0 * 1000.0
}

// TxColorSpec returns the upload colors, the shared color applies when
// no upload specific color is set
func (cfg *Config) TxColorSpec() string {
	if cfg.TxColor == "" {
		return cfg.Color
	}
	return cfg.TxColor
}

func (cfg *Config) RxColorSpec() string {
	if cfg.RxColor == "" {
		return cfg.Color
	}
	return cfg.RxColor
}

// Interfaces splits the comma separated interface option
func (cfg *Config) Interfaces() (ifaces []string) {
	for _, iface := range strings.Split(cfg.Interface, ",") {
		if iface = strings.TrimSpace(iface); iface != "" {
			ifaces = append(ifaces, iface)
		}
	}
	return ifaces
}

// MaxStrobeDurationMs is the length of one strobe cycle, a strobe cannot
// remain on for longer than that
func MaxStrobeDurationMs(rateHz float64) float64 {
	if rateHz > 0 {
		return 1000.0 / rateHz
	}
	return 1000.0
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// Normalize corrects values that are out of range rather than rejecting them
func (cfg *Config) Normalize() {
	defaults := reflect.ValueOf(DefaultConfig()).Elem()
	cfg.floatFields(func(name string, v reflect.Value) {
		if !isFinite(v.Float()) {
			v.Set(defaults.FieldByIndex(fieldIndex[name]))
		}
	})

	cfg.RxSplitPercent = clamp(cfg.RxSplitPercent, 0, 100)
	cfg.TestTxPercent = clamp(cfg.TestTxPercent, 0, 100)
	cfg.TestRxPercent = clamp(cfg.TestRxPercent, 0, 100)
	cfg.StrobeDurationMs = clamp(cfg.StrobeDurationMs, 0, MaxStrobeDurationMs(cfg.StrobeRateHz))
	if cfg.TotalLEDs < 0 {
		cfg.TotalLEDs = 0
	}
	if cfg.TotalLEDs > MaxTotalLEDs {
		cfg.TotalLEDs = MaxTotalLEDs
	}
}

var (
	// fieldIndex maps configuration keys to struct fields
	fieldIndex = func() (index map[string][]int) {
		index = map[string][]int{}
		t := reflect.TypeOf(Config{})
		for i := 0; i < t.NumField(); i++ {
			index[t.Field(i).Tag.Get("json")] = t.Field(i).Index
		}
		return index
	}()
)

// IsField reports whether name is a configuration key that SetField accepts
func IsField(name string) bool {
	_, isPresent := fieldIndex[name]
	return isPresent
}

func invalidValue(field string, value interface{}) errors.Error {
	return errors.New("invalid value").With("field", field).With("value", fmt.Sprint(value)).With("stack", stack.Trace().TrimRuntime())
}

// SetField updates a single option identified by its configuration file key.
// Values arrive as decoded JSON so numbers are float64.
func (cfg *Config) SetField(field string, value interface{}) (err errors.Error) {
	str, isStr := value.(string)
	num, isNum := value.(float64)
	isNum = isNum && isFinite(num)
	flag, isBool := value.(bool)

	need := func(ok bool) errors.Error {
		if !ok {
			return invalidValue(field, value)
		}
		return nil
	}

	switch field {
	case "max_gbps":
		if err = need(isNum); err == nil {
			cfg.MaxGbps = num
		}
	case "color":
		if err = need(isStr); err == nil {
			cfg.Color = str
		}
	case "tx_color":
		if err = need(isStr); err == nil {
			cfg.TxColor = str
		}
	case "rx_color":
		if err = need(isStr); err == nil {
			cfg.RxColor = str
		}
	case "direction":
		if err = need(isStr); err == nil {
			cfg.Direction = str
		}
	case "swap":
		if err = need(isBool); err == nil {
			cfg.Swap = flag
		}
	case "rx_split_percent":
		if err = need(isNum); err == nil {
			cfg.RxSplitPercent = clamp(num, 0, 100)
		}
	case "strobe_on_max":
		if err = need(isBool); err == nil {
			cfg.StrobeOnMax = flag
		}
	case "strobe_rate_hz":
		if err = need(isNum); err == nil {
			cfg.StrobeRateHz = num
			if num > 0 {
				cfg.StrobeDurationMs = math.Min(cfg.StrobeDurationMs, MaxStrobeDurationMs(num))
			}
		}
	case "strobe_duration_ms":
		if err = need(isNum); err == nil {
			cfg.StrobeDurationMs = clamp(num, 0, MaxStrobeDurationMs(cfg.StrobeRateHz))
		}
	case "strobe_color":
		if err = need(isStr); err == nil {
			cfg.StrobeColor = str
		}
	case "animation_speed":
		if err = need(isNum); err == nil {
			cfg.AnimationSpeed = num
		}
	case "scale_animation_speed":
		if err = need(isBool); err == nil {
			cfg.ScaleAnimationSpeed = flag
		}
	case "tx_animation_direction":
		if err = need(isStr); err == nil {
			cfg.TxAnimationDirection = str
		}
	case "rx_animation_direction":
		if err = need(isStr); err == nil {
			cfg.RxAnimationDirection = str
		}
	case "interpolation_time_ms":
		if err = need(isNum); err == nil {
			cfg.InterpolationTimeMs = num
		}
	case "wled_ip":
		if err = need(isStr); err == nil {
			cfg.WledIP = str
		}
	case "interface":
		if err = need(isStr); err == nil {
			cfg.Interface = str
		}
	case "total_leds":
		if err = need(isNum && num >= 0 && num <= MaxTotalLEDs && num == math.Trunc(num)); err == nil {
			cfg.TotalLEDs = int(num)
		}
	case "use_gradient":
		if err = need(isBool); err == nil {
			cfg.UseGradient = flag
		}
	case "interpolation":
		if err = need(isStr); err == nil {
			cfg.Interpolation = str
		}
	case "fps":
		if err = need(isNum); err == nil {
			cfg.FPS = num
		}
	case "httpd_enabled":
		if err = need(isBool); err == nil {
			cfg.HttpdEnabled = flag
		}
	case "httpd_ip":
		if err = need(isStr); err == nil {
			cfg.HttpdIP = str
		}
	case "httpd_port":
		if err = need(isNum && num >= 0 && num <= math.MaxUint16 && num == math.Trunc(num)); err == nil {
			cfg.HttpdPort = int(num)
		}
	case "test_tx":
		if err = need(isBool); err == nil {
			cfg.TestTx = flag
		}
	case "test_rx":
		if err = need(isBool); err == nil {
			cfg.TestRx = flag
		}
	case "test_tx_percent":
		if err = need(isNum); err == nil {
			cfg.TestTxPercent = clamp(num, 0, 100)
		}
	case "test_rx_percent":
		if err = need(isNum); err == nil {
			cfg.TestRxPercent = clamp(num, 0, 100)
		}
	default:
		return errors.New("unknown field").With("field", field).With("stack", stack.Trace().TrimRuntime())
	}
	return err
}
