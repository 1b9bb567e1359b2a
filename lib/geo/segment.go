package geo

import (
	"fmt"
)

type Segment struct {
	Start *Point
	End   *Point
}

func NewSegment(from, to *Point) *Segment {
	return &Segment{from, to}
}

func (s Segment) Length() float64 {
	return s.Start.DistanceTo(s.End)
}

// Direction is the angle of Start -> End from the positive x axis
func (s Segment) Direction() float64 {
	return s.Start.VectorTo(s.End).Angle()
}

// DistanceTo is the distance from p to the closest point of the segment
func (s Segment) DistanceTo(p *Point) float64 {
	return p.DistanceToLine(s.Start, s.End)
}

func (s Segment) ToString() string {
	return fmt.Sprintf("%v -> %v", s.Start.ToString(), s.End.ToString())
}
