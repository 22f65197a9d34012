package model

import (
	"strings"
	"testing"
)

func TestParseColor(t *testing.T) {
	tests := []struct {
		in    string
		want  Color
		isBad bool
	}{
		{in: "FF0000", want: Color{0xFF, 0x00, 0x00}},
		{in: "0099ff", want: Color{0x00, 0x99, 0xFF}},
		{in: "#123456", want: Color{0x12, 0x34, 0x56}},
		{in: "", isBad: true},
		{in: "FFF", isBad: true},
		{in: "FF00000", isBad: true},
		{in: "GG0000", isBad: true},
		{in: "-10000", isBad: true},
	}

	for _, tc := range tests {
		got, err := ParseColor(tc.in)
		if tc.isBad {
			if err == nil {
				t.Errorf("%q expected an error, got %+v", tc.in, got)
				continue
			}
			if !strings.Contains(err.Error(), "invalid color") {
				t.Errorf("%q unexpected error text %s", tc.in, err.Error())
			}
			continue
		}
		if err != nil {
			t.Errorf("%q unexpected error %s", tc.in, err.Error())
			continue
		}
		if got != tc.want {
			t.Errorf("%q got %+v wanted %+v", tc.in, got, tc.want)
		}
	}
}

func TestParseColorList(t *testing.T) {
	colors, err := ParseColorList("FF0000, 00FF00 ,0000FF")
	if err != nil {
		t.Fatal(err.Error())
	}
	want := []Color{{0xFF, 0, 0}, {0, 0xFF, 0}, {0, 0, 0xFF}}
	if len(colors) != len(want) {
		t.Fatalf("got %d colors wanted %d", len(colors), len(want))
	}
	for i := range want {
		if colors[i] != want[i] {
			t.Errorf("color %d got %+v wanted %+v", i, colors[i], want[i])
		}
	}

	if _, err := ParseColorList("FF0000,nothex"); err == nil {
		t.Error("a bad entry should fail the whole list")
	}
	if _, err := ParseColorList(""); err == nil {
		t.Error("an empty specification is not a color")
	}
}

func TestColorfulRoundTrip(t *testing.T) {
	for _, c := range []Color{Black, Red, DefaultColor, {0x01, 0x7F, 0xFE}} {
		if got := FromColorful(c.Colorful()); got != c {
			t.Errorf("round trip of %s produced %s", c.Hex(), got.Hex())
		}
	}
}
