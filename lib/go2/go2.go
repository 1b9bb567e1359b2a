// Package go2 contains general utility helpers that should've been in Go. Maybe they'll be in Go 2.0.
package go2

import (
	"golang.org/x/exp/constraints"
)

func Pointer[T any](v T) *T {
	return &v
}

// Between reports whether lo <= v <= hi.
func Between[T constraints.Ordered](v, lo, hi T) bool {
	return lo <= v && v <= hi
}
