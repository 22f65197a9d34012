package meter

import (
	"github.com/lucasb-eyer/go-colorful"
)

// splineFunc evaluates a cubic segment between v1 and v2 at t in [0,1]
// using v0 and v3 as the outer control values
type splineFunc func(t, v0, v1, v2, v3 float64) float64

// basis is the uniform cubic B-spline, it smooths through the control values
// rather than passing through them
func basis(t, v0, v1, v2, v3 float64) float64 {
	t2 := t * t
	t3 := t2 * t
	return ((1-3*t+3*t2-t3)*v0 +
		(4-6*t2+3*t3)*v1 +
		(1+3*t+3*t2-3*t3)*v2 +
		t3*v3) / 6.0
}

// catmullRom is the uniform Catmull-Rom spline, it passes through v1 and v2
func catmullRom(t, v0, v1, v2, v3 float64) float64 {
	t2 := t * t
	t3 := t2 * t
	return 0.5 * (2*v1 +
		(-v0+v2)*t +
		(2*v0-5*v1+4*v2-v3)*t2 +
		(-v0+3*v1-3*v2+v3)*t3)
}

// spline blends the segment that starts at stop i.  Missing neighbors at the
// ends of the curve are reflected from the segment so the curve does not
// overshoot at the domain edges.
func (g *Gradient) spline(i int, t float64, f splineFunc) colorful.Color {
	n := len(g.stops)
	c1 := g.stops[i].col
	c2 := g.stops[i+1].col

	var c0, c3 colorful.Color
	if i > 0 {
		c0 = g.stops[i-1].col
	} else {
		c0 = colorful.Color{R: 2*c1.R - c2.R, G: 2*c1.G - c2.G, B: 2*c1.B - c2.B}
	}
	if i+2 < n {
		c3 = g.stops[i+2].col
	} else {
		c3 = colorful.Color{R: 2*c2.R - c1.R, G: 2*c2.G - c1.G, B: 2*c2.B - c1.B}
	}

	return colorful.Color{
		R: f(t, c0.R, c1.R, c2.R, c3.R),
		G: f(t, c0.G, c1.G, c2.G, c3.G),
		B: f(t, c0.B, c1.B, c2.B, c3.B),
	}
}
