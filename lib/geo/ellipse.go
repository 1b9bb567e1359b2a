package geo

import (
	"math"
)

type Ellipse struct {
	Center *Point
	Rx     float64
	Ry     float64
}

func NewEllipse(center *Point, rx, ry float64) *Ellipse {
	return &Ellipse{
		Center: center,
		Rx:     rx,
		Ry:     ry,
	}
}

// RadialDistance is the normalized radius of p in the ellipse's frame:
//
//	sqrt((dx/rx)^2 + (dy/ry)^2)
//
// 0 at the center and 1 on the boundary. It is not a linear distance.
// Zero radii produce +Inf (or NaN when the offset on that axis is also 0).
func (e Ellipse) RadialDistance(p *Point) float64 {
	dx := p.X - e.Center.X
	dy := p.Y - e.Center.Y
	return math.Sqrt(dx*dx/(e.Rx*e.Rx) + dy*dy/(e.Ry*e.Ry))
}

// SamplePerimeter returns n points on the boundary at angles spaced evenly
// from 0 to 2π, both ends included.
func (e Ellipse) SamplePerimeter(n int) Points {
	if n <= 0 {
		return nil
	}
	if n == 1 {
		return Points{NewPoint(e.Center.X+e.Rx, e.Center.Y)}
	}
	step := 2 * math.Pi / float64(n-1)
	pts := make(Points, 0, n)
	for i := 0; i < n; i++ {
		a := float64(i) * step
		pts = append(pts, NewPoint(
			e.Center.X+e.Rx*math.Cos(a),
			e.Center.Y+e.Ry*math.Sin(a),
		))
	}
	return pts
}

func (e Ellipse) BoundingBox() *Box {
	rx := math.Abs(e.Rx)
	ry := math.Abs(e.Ry)
	return NewBox(NewPoint(e.Center.X-rx, e.Center.Y-ry), 2*rx, 2*ry)
}
