// Package dthit locates shapes near a point for select, erase and snap.
package dthit

import (
	"math"

	"oss.terrastruct.com/drawtex/dtshape"
	"oss.terrastruct.com/drawtex/lib/geo"
)

const (
	EraseThreshold = 0.2
	SnapThreshold  = 0.2
	// EllipseSamples is how many perimeter points snapping tries per ellipse.
	EllipseSamples = 100
)

// distance ranks NaN, from degenerate ellipses, as infinitely far.
func distance(p *geo.Point, s dtshape.Shape) float64 {
	d := s.HitDistance(p)
	if math.IsNaN(d) {
		return math.Inf(1)
	}
	return d
}

// SelectNearest returns the shape minimizing HitDistance with no cap. Ties go
// to areas over lines over text, then to scene order. It returns nil only
// when shapes is empty.
func SelectNearest(p *geo.Point, shapes []dtshape.Shape) dtshape.Shape {
	s, _ := nearest(p, shapes)
	return s
}

// EraseNearest is SelectNearest restricted to distances strictly under threshold.
func EraseNearest(p *geo.Point, shapes []dtshape.Shape, threshold float64) dtshape.Shape {
	s, d := nearest(p, shapes)
	if s == nil || !(d < threshold) {
		return nil
	}
	return s
}

type category int

const (
	categoryArea category = iota
	categoryLine
	categoryText
)

func categoryOf(s dtshape.Shape) category {
	switch s.Kind() {
	case dtshape.KindLine, dtshape.KindArrow:
		return categoryLine
	case dtshape.KindText:
		return categoryText
	default:
		return categoryArea
	}
}

// nearest scans shapes category by category, areas first.
func nearest(p *geo.Point, shapes []dtshape.Shape) (dtshape.Shape, float64) {
	var best dtshape.Shape
	bestDist := math.Inf(1)
	for _, cat := range []category{categoryArea, categoryLine, categoryText} {
		for _, s := range shapes {
			if categoryOf(s) != cat {
				continue
			}
			d := distance(p, s)
			if best == nil || d < bestDist {
				best = s
				bestDist = d
			}
		}
	}
	return best, bestDist
}

// SnapEndpoint moves p onto the closest candidate point of any ellipse or
// rectangle when one is within threshold. Ellipses offer EllipseSamples
// perimeter samples, rectangles their four corners. Other shapes are ignored.
// The returned point is always a fresh copy.
func SnapEndpoint(p *geo.Point, shapes []dtshape.Shape, threshold float64) (*geo.Point, bool) {
	var best *geo.Point
	bestDist := math.Inf(1)
	for _, s := range shapes {
		var candidates geo.Points
		switch s := s.(type) {
		case *dtshape.Ellipse:
			candidates = s.Geometry().SamplePerimeter(EllipseSamples)
		case *dtshape.Rectangle:
			candidates = s.Box().Corners()
		default:
			continue
		}
		for _, c := range candidates {
			if d := p.DistanceTo(c); d < bestDist {
				best = c
				bestDist = d
			}
		}
	}
	if best == nil || !(bestDist < threshold) {
		return p.Copy(), false
	}
	return best.Copy(), true
}
