// Package geo provides the static map projection, topology decoding, and
// point-in-polygon tests behind the county map. Everything here is pure math
// over WGS-84 coordinates and the fixed 960x600 canvas.
package geo

import "math"

// Canvas dimensions in logical units, and the edge margin inside which
// projected markers are considered not visible.
const (
	CanvasWidth  = 960.0
	CanvasHeight = 600.0
	EdgeMargin   = 10.0
)

// Point is a projected screen-space coordinate.
type Point struct {
	X float64
	Y float64
}

// Albers is an equal-area conic projection configured for the conterminous
// United States: standard parallels 29.5°N and 45.5°N, central meridian 96°W,
// latitude of origin 38.7°N. These are the parameters of the lower-48
// component of the usual composite US projection; hazard records outside the
// lower 48 are excluded by the continental bounding box before projection.
type Albers struct {
	scale      float64
	translateX float64
	translateY float64

	n    float64
	c    float64
	rho0 float64
	lam0 float64
}

// NewAlbersUSA returns the projection at the deployed map's configuration:
// scale 1000 centered on the 960x600 canvas.
func NewAlbersUSA() *Albers {
	return NewAlbers(1000, CanvasWidth/2, CanvasHeight/2)
}

// NewAlbers builds the conic projection with an explicit scale and translate.
func NewAlbers(scale, tx, ty float64) *Albers {
	const (
		phi1 = 29.5 * math.Pi / 180
		phi2 = 45.5 * math.Pi / 180
		phi0 = 38.7 * math.Pi / 180
		lam0 = -96.0 * math.Pi / 180
	)

	n := (math.Sin(phi1) + math.Sin(phi2)) / 2
	c := math.Cos(phi1)*math.Cos(phi1) + 2*n*math.Sin(phi1)

	return &Albers{
		scale:      scale,
		translateX: tx,
		translateY: ty,
		n:          n,
		c:          c,
		rho0:       math.Sqrt(c-2*n*math.Sin(phi0)) / n,
		lam0:       lam0,
	}
}

// Project maps a longitude/latitude pair to canvas coordinates. ok is false
// when the coordinate cannot be represented (radicand below zero near the
// antipode), which cannot happen for coordinates inside the continental box.
func (a *Albers) Project(lon, lat float64) (Point, bool) {
	phi := lat * math.Pi / 180
	lam := lon * math.Pi / 180

	rad := a.c - 2*a.n*math.Sin(phi)
	if rad < 0 {
		return Point{}, false
	}
	rho := math.Sqrt(rad) / a.n
	theta := a.n * (lam - a.lam0)

	x := rho * math.Sin(theta)
	y := a.rho0 - rho*math.Cos(theta)

	return Point{
		X: a.translateX + a.scale*x,
		Y: a.translateY - a.scale*y,
	}, true
}

// Visible reports whether a projected point lies on the canvas outside the
// edge margin. This is a visibility guard for markers, not a correctness rule.
func Visible(p Point) bool {
	return p.X >= EdgeMargin && p.X <= CanvasWidth-EdgeMargin &&
		p.Y >= EdgeMargin && p.Y <= CanvasHeight-EdgeMargin
}
