package geo

import (
	"math"
)

// A 2D Vector with components (x, y) based on the origin
type Vector []float64

// New Vector from components
func NewVector(components ...float64) Vector {
	return components
}

// NewVectorFromAngle makes a Vector of length pointing at angleInRadians,
// measured counter-clockwise from the positive x axis.
func NewVectorFromAngle(length float64, angleInRadians float64) Vector {
	return NewVector(
		length*math.Cos(angleInRadians),
		length*math.Sin(angleInRadians),
	)
}

func (a Vector) Add(b Vector) Vector {
	c := []float64{}
	for i := 0; i < len(a); i++ {
		c = append(c, a[i]+b[i])
	}
	return c
}

func (a Vector) Minus(b Vector) Vector {
	c := []float64{}
	for i := 0; i < len(a); i++ {
		c = append(c, a[i]-b[i])
	}
	return c
}

func (a Vector) Multiply(v float64) Vector {
	c := []float64{}
	for i := 0; i < len(a); i++ {
		c = append(c, a[i]*v)
	}
	return c
}

func (a Vector) Dot(b Vector) float64 {
	sum := 0.0
	for i := 0; i < len(a); i++ {
		sum += a[i] * b[i]
	}
	return sum
}

// Cross is the z component of the 3D cross product of two planar vectors.
func (a Vector) Cross(b Vector) float64 {
	return a[0]*b[1] - a[1]*b[0]
}

func (a Vector) Length() float64 {
	sum := 0.0
	for _, comp := range a {
		sum += comp * comp
	}
	return math.Sqrt(sum)
}

// Angle of the vector from the positive x axis, in (-π, π]
func (a Vector) Angle() float64 {
	return math.Atan2(a[1], a[0])
}

// Creates an unit Vector pointing in the same direction of this Vector
func (a Vector) Unit() Vector {
	return a.Multiply(1 / a.Length())
}

// Normal is the vector rotated 90 degrees counter-clockwise (left)
func (a Vector) Normal() Vector {
	return NewVector(-a[1], a[0])
}

func (a Vector) ToPoint() *Point {
	return &Point{a[0], a[1]}
}

func (a Vector) equals(b Vector) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if PrecisionCompare(a[i], b[i], 1e-9) != 0 {
			return false
		}
	}
	return true
}
