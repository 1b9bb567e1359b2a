package geo

import (
	"fmt"
	"math"
)

// Box is an axis aligned rectangle. Width and Height may be negative, in which
// case Origin is not the minimum corner; see Normalized.
type Box struct {
	Origin *Point
	Width  float64
	Height float64
}

func NewBox(origin *Point, width, height float64) *Box {
	return &Box{
		Origin: origin,
		Width:  width,
		Height: height,
	}
}

func (b *Box) Copy() *Box {
	if b == nil {
		return nil
	}
	return NewBox(b.Origin.Copy(), b.Width, b.Height)
}

// Opposite is the corner diagonally across from Origin
func (b *Box) Opposite() *Point {
	return NewPoint(b.Origin.X+b.Width, b.Origin.Y+b.Height)
}

// Corners walks the box starting at Origin, along the width first:
// (x0, y0), (x1, y0), (x1, y1), (x0, y1)
func (b *Box) Corners() Points {
	x0, y0 := b.Origin.X, b.Origin.Y
	x1, y1 := x0+b.Width, y0+b.Height
	return Points{
		NewPoint(x0, y0),
		NewPoint(x1, y0),
		NewPoint(x1, y1),
		NewPoint(x0, y1),
	}
}

// Normalized returns the same region with a non-negative width and height.
func (b *Box) Normalized() *Box {
	x, y := b.Origin.X, b.Origin.Y
	if b.Width < 0 {
		x += b.Width
	}
	if b.Height < 0 {
		y += b.Height
	}
	return NewBox(NewPoint(x, y), math.Abs(b.Width), math.Abs(b.Height))
}

func (b *Box) Contains(p *Point) bool {
	n := b.Normalized()
	return p.X >= n.Origin.X && p.X <= n.Origin.X+n.Width &&
		p.Y >= n.Origin.Y && p.Y <= n.Origin.Y+n.Height
}

func (b *Box) Union(other *Box) *Box {
	if b == nil {
		return other.Copy()
	}
	if other == nil {
		return b.Copy()
	}
	bn := b.Normalized()
	on := other.Normalized()
	return Points{bn.Origin, bn.Opposite(), on.Origin, on.Opposite()}.BoundingBox()
}

func (b *Box) ToString() string {
	if b == nil {
		return ""
	}
	return fmt.Sprintf("{Origin: %s, Width: %v, Height: %v}", b.Origin.ToString(), b.Width, b.Height)
}
