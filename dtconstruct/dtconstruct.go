// Package dtconstruct derives secondary shapes at finalize time: the two
// sides of a cone and the filled head of an arrow.
package dtconstruct

import (
	"math"

	"oss.terrastruct.com/drawtex/dtshape"
	"oss.terrastruct.com/drawtex/lib/geo"
)

const (
	// ConeApexFactor scales the full ellipse height to the apex offset.
	ConeApexFactor = 3.
	// ConeSpread scales the base angle, pulling the base points toward the rim.
	ConeSpread = 0.4

	ArrowLength    = 0.2
	ArrowHalfWidth = 0.1
)

// Cone returns the left and right sides running from the base of e to a
// shared apex above it, or below it when inverted.
//
// With w and h the full width and height of e:
//
//	apex  = (cx, cy ± 3h)
//	a     = 0.4 * atan2(h, w/2)
//	base  = (cx ∓ w/2 cos a, y)
//
// where y is cy - h/2 sin a for an inverted cone but h/2 sin a, with no cy
// term, for an upright one. The upright base therefore sits near y=0
// wherever the ellipse is.
func Cone(e *dtshape.Ellipse, inverted bool) (left, right *dtshape.Line) {
	cx, cy := e.Center.X, e.Center.Y
	w, h := 2*e.Rx, 2*e.Ry

	apexY := cy + ConeApexFactor*h
	if inverted {
		apexY = cy - ConeApexFactor*h
	}
	a := math.Atan2(h, w/2) * ConeSpread

	baseY := h / 2 * math.Sin(a)
	if inverted {
		baseY = cy - h/2*math.Sin(a)
	}

	apex := geo.NewPoint(cx, apexY)
	left = dtshape.NewLine(geo.NewPoint(cx-w/2*math.Cos(a), baseY), apex, e.Paint)
	right = dtshape.NewLine(geo.NewPoint(cx+w/2*math.Cos(a), baseY), apex.Copy(), e.Paint)
	return left, right
}

// Arrowhead pulls the shaft's end back by ArrowLength and returns the filled
// triangle that covers the gap, its tip on the original end. Shafts no longer
// than ArrowLength are left alone and nil is returned.
func Arrowhead(shaft *dtshape.Line) *dtshape.Polygon {
	seg := shaft.Segment()
	if seg.Length() <= ArrowLength {
		return nil
	}

	angle := seg.Direction()
	tip := shaft.End.Copy()
	back := tip.AddVector(geo.NewVectorFromAngle(-ArrowLength, angle))
	offset := geo.NewVectorFromAngle(ArrowHalfWidth, angle).Normal()

	head := dtshape.NewPolygon(geo.Points{
		back.AddVector(offset),
		back.AddVector(offset.Multiply(-1)),
		tip,
	}, true, shaft.Paint)

	shaft.End = back.Copy()
	return head
}
