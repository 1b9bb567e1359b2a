package geo

import (
	"fmt"
	"math"
	"strings"
)

type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func NewPoint(x, y float64) *Point {
	return &Point{X: x, Y: y}
}

func (p1 *Point) Equals(p2 *Point) bool {
	if p1 == nil {
		return p2 == nil
	} else if p2 == nil {
		return false
	}
	return (p1.X == p2.X) && (p1.Y == p2.Y)
}

// ApproxEquals compares both coordinates within precision e
func (p1 *Point) ApproxEquals(p2 *Point, e float64) bool {
	if p1 == nil || p2 == nil {
		return p1 == p2
	}
	return PrecisionCompare(p1.X, p2.X, e) == 0 && PrecisionCompare(p1.Y, p2.Y, e) == 0
}

func (p *Point) Copy() *Point {
	return &Point{X: p.X, Y: p.Y}
}

func (p *Point) Translate(dx, dy float64) {
	p.X += dx
	p.Y += dy
}

type Points []*Point

func (ps Points) Copy() Points {
	out := make(Points, 0, len(ps))
	for _, p := range ps {
		out = append(out, p.Copy())
	}
	return out
}

func (ps Points) Translate(dx, dy float64) {
	for _, p := range ps {
		p.Translate(dx, dy)
	}
}

// BoundingBox returns the smallest axis aligned box containing every point, nil if empty.
func (ps Points) BoundingBox() *Box {
	if len(ps) == 0 {
		return nil
	}
	minX, minY := ps[0].X, ps[0].Y
	maxX, maxY := ps[0].X, ps[0].Y
	for _, p := range ps[1:] {
		minX = math.Min(minX, p.X)
		minY = math.Min(minY, p.Y)
		maxX = math.Max(maxX, p.X)
		maxY = math.Max(maxY, p.Y)
	}
	return NewBox(NewPoint(minX, minY), maxX-minX, maxY-minY)
}

func (p *Point) ToString() string {
	if p == nil {
		return ""
	}
	return fmt.Sprintf("(%v, %v)", p.X, p.Y)
}

func (points Points) ToString() string {
	strs := make([]string, 0, len(points))
	for _, p := range points {
		strs = append(strs, p.ToString())
	}
	return strings.Join(strs, ", ")
}

func (p *Point) DistanceTo(other *Point) float64 {
	return EuclideanDistance(p.X, p.Y, other.X, other.Y)
}

// https://stackoverflow.com/questions/849211/shortest-distance-between-a-point-and-a-line-segment
func (p *Point) DistanceToLine(p1, p2 *Point) float64 {
	a := p.X - p1.X
	b := p.Y - p1.Y
	c := p2.X - p1.X
	d := p2.Y - p1.Y

	dot := (a * c) + (b * d)
	len_sq := (c * c) + (d * d)

	param := -1.0

	if len_sq != 0 {
		param = dot / len_sq
	}

	var xx float64
	var yy float64

	if param < 0.0 {
		xx = p1.X
		yy = p1.Y
	} else if param > 1.0 {
		xx = p2.X
		yy = p2.Y
	} else {
		xx = p1.X + (param * c)
		yy = p1.Y + (param * d)
	}

	dx := p.X - xx
	dy := p.Y - yy

	return math.Sqrt((dx * dx) + (dy * dy))
}

// DistanceToInfiniteLine is the perpendicular distance from p to the line through p1 and p2.
// Unlike DistanceToLine the projection is not clamped to the segment.
//
//	|(p2 - p1) x (p1 - p)| / |p2 - p1|
//
// When p1 and p2 coincide the line is undefined and the distance to p1 is returned.
func (p *Point) DistanceToInfiniteLine(p1, p2 *Point) float64 {
	dir := p1.VectorTo(p2)
	norm := dir.Length()
	if norm == 0 {
		return p.DistanceTo(p1)
	}
	return math.Abs(dir.Cross(p.VectorTo(p1))) / norm
}

// Moves the given point by Vector
func (start *Point) AddVector(v Vector) *Point {
	return start.ToVector().Add(v).ToPoint()
}

// Creates a Vector of the size between start and endpoint, pointing to endpoint
func (start *Point) VectorTo(endpoint *Point) Vector {
	return endpoint.ToVector().Minus(start.ToVector())
}

// Creates a Vector pointing to point
func (endpoint *Point) ToVector() Vector {
	return []float64{endpoint.X, endpoint.Y}
}
