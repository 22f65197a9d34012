package model

// This module defines the 8 bit per channel color used for LED frames along
// with the parsing of the hex strings found in the configuration

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/go-stack/stack"
	"github.com/karlmutch/errors"

	"github.com/lucasb-eyer/go-colorful"
)

type Color struct {
	R, G, B uint8
}

var (
	Black = Color{0x00, 0x00, 0x00}
	Red   = Color{0xFF, 0x00, 0x00}

	// DefaultColor is used when a color list yields nothing usable
	DefaultColor = Color{0x00, 0x99, 0xFF}
)

// ParseColor accepts exactly six hex digits, optionally prefixed by a '#'
func ParseColor(hexStr string) (c Color, err errors.Error) {
	digits := strings.TrimPrefix(hexStr, "#")
	if len(digits) != 6 {
		return c, errors.New("invalid color, expected 6 hex digits").With("color", hexStr).With("stack", stack.Trace().TrimRuntime())
	}
	byt, errGo := hex.DecodeString(digits)
	if errGo != nil {
		return c, errors.New("invalid color, non hex digit").With("color", hexStr).With("cause", errGo.Error()).With("stack", stack.Trace().TrimRuntime())
	}
	return Color{R: byt[0], G: byt[1], B: byt[2]}, nil
}

// ParseColorList splits a comma separated color specification such as
// "FF0000, 00FF00,0000FF" into its colors.  Any bad entry fails the whole list.
func ParseColorList(spec string) (colors []Color, err errors.Error) {
	parts := strings.Split(spec, ",")
	colors = make([]Color, 0, len(parts))
	for i, part := range parts {
		c, err := ParseColor(strings.TrimSpace(part))
		if err != nil {
			return nil, err.With("spec", spec).With("index", i)
		}
		colors = append(colors, c)
	}
	return colors, nil
}

func (c Color) Hex() string {
	return fmt.Sprintf("%02X%02X%02X", c.R, c.G, c.B)
}

// Colorful converts to the floating point representation used for blending
func (c Color) Colorful() colorful.Color {
	return colorful.Color{
		R: float64(c.R) / 255.0,
		G: float64(c.G) / 255.0,
		B: float64(c.B) / 255.0,
	}
}

// FromColorful clamps a blended color back into the 8 bit space
func FromColorful(cc colorful.Color) (c Color) {
	c.R, c.G, c.B = cc.Clamped().RGB255()
	return c
}
