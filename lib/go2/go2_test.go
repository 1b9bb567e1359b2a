package go2

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBetween(t *testing.T) {
	t.Parallel()

	assert.True(t, Between(0., 0., 10.))
	assert.True(t, Between(10., 0., 10.))
	assert.False(t, Between(10.01, 0., 10.))
	assert.False(t, Between(1, 2, 3))
}

func TestPointer(t *testing.T) {
	t.Parallel()

	p := Pointer("x")
	assert.Equal(t, "x", *p)
	assert.NotSame(t, p, Pointer("x"))
}
