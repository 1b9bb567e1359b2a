// Package dtshape defines the closed set of drawable primitives.
//
// Every variant satisfies Shape, so hit-testing, movement and export never
// need to know which concrete variant they hold beyond Kind.
package dtshape

import (
	"math"
	"unicode/utf8"

	"oss.terrastruct.com/drawtex/lib/color"
	"oss.terrastruct.com/drawtex/lib/geo"
)

type Kind int

const (
	KindLine Kind = iota
	KindArrow
	KindEllipse
	KindRectangle
	KindText
	KindPolygon
)

func (k Kind) String() string {
	switch k {
	case KindLine:
		return "line"
	case KindArrow:
		return "arrow"
	case KindEllipse:
		return "ellipse"
	case KindRectangle:
		return "rectangle"
	case KindText:
		return "text"
	case KindPolygon:
		return "polygon"
	default:
		return "unknown"
	}
}

type Shape interface {
	Kind() Kind
	Color() color.Name
	Recolor(color.Name)
	// Bounds is the axis aligned box used for the selection overlay.
	Bounds() *geo.Box
	// HitDistance is the variant specific metric used by select and erase.
	// It is not a Euclidean distance for every variant.
	HitDistance(*geo.Point) float64
	Translate(dx, dy float64)
	Copy() Shape
}

type Line struct {
	Start *geo.Point
	End   *geo.Point
	Paint color.Name
}

func NewLine(start, end *geo.Point, c color.Name) *Line {
	return &Line{Start: start, End: end, Paint: c}
}

func (l *Line) Kind() Kind            { return KindLine }
func (l *Line) Color() color.Name     { return l.Paint }
func (l *Line) Recolor(c color.Name)  { l.Paint = c }
func (l *Line) Segment() *geo.Segment { return geo.NewSegment(l.Start, l.End) }

func (l *Line) Bounds() *geo.Box {
	return geo.Points{l.Start, l.End}.BoundingBox()
}

// HitDistance measures to the infinite line through both endpoints.
func (l *Line) HitDistance(p *geo.Point) float64 {
	return p.DistanceToInfiniteLine(l.Start, l.End)
}

func (l *Line) Translate(dx, dy float64) {
	l.Start.Translate(dx, dy)
	l.End.Translate(dx, dy)
}

func (l *Line) Copy() Shape {
	return &Line{Start: l.Start.Copy(), End: l.End.Copy(), Paint: l.Paint}
}

// Arrow is a shaft plus the filled head synthesized when it is finalized.
// Head stays nil for shafts too short to carry one.
type Arrow struct {
	Shaft *Line
	Head  *Polygon
}

func NewArrow(start, end *geo.Point, c color.Name) *Arrow {
	return &Arrow{Shaft: NewLine(start, end, c)}
}

func (a *Arrow) Kind() Kind        { return KindArrow }
func (a *Arrow) Color() color.Name { return a.Shaft.Paint }

func (a *Arrow) Recolor(c color.Name) {
	a.Shaft.Recolor(c)
	if a.Head != nil {
		a.Head.Recolor(c)
	}
}

func (a *Arrow) Bounds() *geo.Box {
	b := a.Shaft.Bounds()
	if a.Head != nil {
		b = b.Union(a.Head.Bounds())
	}
	return b
}

func (a *Arrow) HitDistance(p *geo.Point) float64 {
	d := a.Shaft.HitDistance(p)
	if a.Head != nil {
		d = math.Min(d, a.Head.HitDistance(p))
	}
	return d
}

func (a *Arrow) Translate(dx, dy float64) {
	a.Shaft.Translate(dx, dy)
	if a.Head != nil {
		a.Head.Translate(dx, dy)
	}
}

func (a *Arrow) Copy() Shape {
	out := &Arrow{Shaft: a.Shaft.Copy().(*Line)}
	if a.Head != nil {
		out.Head = a.Head.Copy().(*Polygon)
	}
	return out
}

// Ellipse is stored by its half-axes.
type Ellipse struct {
	Center *geo.Point
	Rx     float64
	Ry     float64
	Paint  color.Name
}

func NewEllipse(center *geo.Point, rx, ry float64, c color.Name) *Ellipse {
	return &Ellipse{Center: center, Rx: rx, Ry: ry, Paint: c}
}

func (e *Ellipse) Kind() Kind           { return KindEllipse }
func (e *Ellipse) Color() color.Name    { return e.Paint }
func (e *Ellipse) Recolor(c color.Name) { e.Paint = c }
func (e *Ellipse) Geometry() geo.Ellipse {
	return *geo.NewEllipse(e.Center, e.Rx, e.Ry)
}

func (e *Ellipse) Bounds() *geo.Box {
	return e.Geometry().BoundingBox()
}

// HitDistance is the normalized radial value: 0 at the center, 1 on the boundary.
func (e *Ellipse) HitDistance(p *geo.Point) float64 {
	return e.Geometry().RadialDistance(p)
}

func (e *Ellipse) Translate(dx, dy float64) {
	e.Center.Translate(dx, dy)
}

func (e *Ellipse) Copy() Shape {
	return &Ellipse{Center: e.Center.Copy(), Rx: e.Rx, Ry: e.Ry, Paint: e.Paint}
}

// Rectangle keeps the signed extent it was dragged out with.
type Rectangle struct {
	Anchor *geo.Point
	Width  float64
	Height float64
	Paint  color.Name
}

func NewRectangle(anchor *geo.Point, width, height float64, c color.Name) *Rectangle {
	return &Rectangle{Anchor: anchor, Width: width, Height: height, Paint: c}
}

func (r *Rectangle) Kind() Kind           { return KindRectangle }
func (r *Rectangle) Color() color.Name    { return r.Paint }
func (r *Rectangle) Recolor(c color.Name) { r.Paint = c }

func (r *Rectangle) Box() *geo.Box {
	return geo.NewBox(r.Anchor, r.Width, r.Height)
}

func (r *Rectangle) Bounds() *geo.Box {
	return r.Box().Normalized()
}

// HitDistance treats the four edges as infinite lines.
func (r *Rectangle) HitDistance(p *geo.Point) float64 {
	x0, y0 := r.Anchor.X, r.Anchor.Y
	x1, y1 := x0+r.Width, y0+r.Height
	return math.Min(
		math.Min(math.Abs(p.X-x0), math.Abs(p.X-x1)),
		math.Min(math.Abs(p.Y-y0), math.Abs(p.Y-y1)),
	)
}

func (r *Rectangle) Translate(dx, dy float64) {
	r.Anchor.Translate(dx, dy)
}

func (r *Rectangle) Copy() Shape {
	return &Rectangle{Anchor: r.Anchor.Copy(), Width: r.Width, Height: r.Height, Paint: r.Paint}
}

// Approximate glyph metrics in scene units for the text overlay.
const (
	TextCharWidth  = 0.15
	TextLineHeight = 0.3
)

type Text struct {
	Anchor  *geo.Point
	Content string
	Paint   color.Name
}

func NewText(anchor *geo.Point, content string, c color.Name) *Text {
	return &Text{Anchor: anchor, Content: content, Paint: c}
}

func (t *Text) Kind() Kind           { return KindText }
func (t *Text) Color() color.Name    { return t.Paint }
func (t *Text) Recolor(c color.Name) { t.Paint = c }

func (t *Text) Bounds() *geo.Box {
	w := float64(utf8.RuneCountInString(t.Content)) * TextCharWidth
	return geo.NewBox(geo.NewPoint(t.Anchor.X, t.Anchor.Y-TextLineHeight/2), w, TextLineHeight)
}

// HitDistance is the Euclidean distance to the anchor.
func (t *Text) HitDistance(p *geo.Point) float64 {
	return p.DistanceTo(t.Anchor)
}

func (t *Text) Translate(dx, dy float64) {
	t.Anchor.Translate(dx, dy)
}

func (t *Text) Copy() Shape {
	return &Text{Anchor: t.Anchor.Copy(), Content: t.Content, Paint: t.Paint}
}

type Polygon struct {
	Vertices geo.Points
	Filled   bool
	Paint    color.Name
}

func NewPolygon(vertices geo.Points, filled bool, c color.Name) *Polygon {
	return &Polygon{Vertices: vertices, Filled: filled, Paint: c}
}

func (p *Polygon) Kind() Kind           { return KindPolygon }
func (p *Polygon) Color() color.Name    { return p.Paint }
func (p *Polygon) Recolor(c color.Name) { p.Paint = c }

func (p *Polygon) Bounds() *geo.Box {
	return p.Vertices.BoundingBox()
}

// HitDistance is the minimum clamped distance over every edge, the last
// vertex closing back to the first.
func (p *Polygon) HitDistance(pt *geo.Point) float64 {
	switch len(p.Vertices) {
	case 0:
		return math.Inf(1)
	case 1:
		return pt.DistanceTo(p.Vertices[0])
	}
	d := math.Inf(1)
	for i, v := range p.Vertices {
		next := p.Vertices[(i+1)%len(p.Vertices)]
		d = math.Min(d, geo.NewSegment(v, next).DistanceTo(pt))
	}
	return d
}

func (p *Polygon) Translate(dx, dy float64) {
	p.Vertices.Translate(dx, dy)
}

func (p *Polygon) Copy() Shape {
	return &Polygon{Vertices: p.Vertices.Copy(), Filled: p.Filled, Paint: p.Paint}
}
