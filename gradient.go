package meter

// This file contains the gradient builder that turns the comma separated color
// specifications from the configuration into either a continuous cyclic
// color curve, used for smooth animation, or a palette of discrete colors
// used for hard edged segments

import (
	"math"
	"sort"

	"github.com/karlmutch/errors"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/dlnetworks/wled-bandwidth-meter/model"
)

const (
	// Fraction of each color slice, on each side, that is used to fade into
	// the neighboring color.  The remaining 80% is the plateau.
	transitionFraction = 0.1
)

type colorStop struct {
	pos float64
	col colorful.Color
}

// Gradient is a cyclic curve over the domain [0,1], the color at 0 and at 1
// are both the first input color
type Gradient struct {
	stops []colorStop
	mode  model.Interpolation
}

// GradientSet is everything the renderer needs to paint one direction
type GradientSet struct {
	Curve   *Gradient // nil when blending is disabled or there are fewer than 2 colors
	Palette []model.Color
	Solid   model.Color
}

// BuildGradient parses the color specification and derives the drawing
// primitives from it.  It holds no state and is safe to call from any
// goroutine.
func BuildGradient(spec string, useGradient bool, mode model.Interpolation) (set *GradientSet, err errors.Error) {
	colors, err := model.ParseColorList(spec)
	if err != nil {
		return nil, err
	}

	set = &GradientSet{
		Palette: colors,
		Solid:   model.DefaultColor,
	}
	if len(colors) != 0 {
		set.Solid = colors[0]
	}

	if len(colors) >= 2 && useGradient {
		set.Curve = newCyclicGradient(colors, mode)
	}
	return set, nil
}

// newCyclicGradient lays out 2N+2 stops, a pair bracketing the plateau of
// every color plus the first color pinned at both ends of the domain
func newCyclicGradient(colors []model.Color, mode model.Interpolation) (g *Gradient) {
	n := len(colors)
	slice := 1.0 / float64(n)
	transition := slice * transitionFraction

	g = &Gradient{
		stops: make([]colorStop, 0, 2*n+2),
		mode:  mode,
	}

	first := colors[0].Colorful()
	g.stops = append(g.stops, colorStop{pos: 0.0, col: first})

	for i, c := range colors {
		col := c.Colorful()
		start := float64(i) * slice
		end := float64(i+1) * slice
		g.stops = append(g.stops,
			colorStop{pos: start + transition, col: col},
			colorStop{pos: end - transition, col: col},
		)
	}

	g.stops = append(g.stops, colorStop{pos: 1.0, col: first})
	return g
}

// Domains returns the positions of the control stops in order
func (g *Gradient) Domains() (domains []float64) {
	domains = make([]float64, 0, len(g.stops))
	for _, s := range g.stops {
		domains = append(domains, s.pos)
	}
	return domains
}

func (g *Gradient) Mode() model.Interpolation {
	return g.mode
}

// At samples the curve, positions outside the domain take the color of the
// nearest end
func (g *Gradient) At(t float64) model.Color {
	last := len(g.stops) - 1
	if math.IsNaN(t) || t <= g.stops[0].pos {
		return model.FromColorful(g.stops[0].col)
	}
	if t >= g.stops[last].pos {
		return model.FromColorful(g.stops[last].col)
	}

	// First stop strictly beyond t, the segment is [idx-1, idx]
	idx := sort.Search(len(g.stops), func(i int) bool {
		return g.stops[i].pos > t
	})
	if idx == 0 {
		idx = 1
	}
	lo := idx - 1
	s1, s2 := g.stops[lo], g.stops[idx]

	if s2.pos == s1.pos {
		return model.FromColorful(s1.col)
	}
	local := (t - s1.pos) / (s2.pos - s1.pos)

	switch g.mode {
	case model.Basis:
		return model.FromColorful(g.spline(lo, local, basis))
	case model.CatmullRom:
		return model.FromColorful(g.spline(lo, local, catmullRom))
	default:
		return model.FromColorful(s1.col.BlendRgb(s2.col, local))
	}
}
