// Package color holds the fixed drawing palette.
package color

import (
	"fmt"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/mazznoer/csscolorparser"
)

// Name is a palette entry. Its string form is also a valid xcolor name.
type Name string

const (
	White   Name = "white"
	Black   Name = "black"
	Red     Name = "red"
	Green   Name = "green"
	Blue    Name = "blue"
	Cyan    Name = "cyan"
	Magenta Name = "magenta"
	Yellow  Name = "yellow"
)

// Palette in picker order.
var Palette = []Name{White, Black, Red, Green, Blue, Cyan, Magenta, Yellow}

var hexes = map[Name]string{
	White:   "#ffffff",
	Black:   "#000000",
	Red:     "#ff0000",
	Green:   "#00ff00",
	Blue:    "#0000ff",
	Cyan:    "#00ffff",
	Magenta: "#ff00ff",
	Yellow:  "#ffff00",
}

func (n Name) Valid() bool {
	_, ok := hexes[n]
	return ok
}

func (n Name) Hex() string {
	return hexes[n]
}

func (n Name) String() string {
	return string(n)
}

// Parse resolves s to a palette entry. Palette names match case-insensitively,
// any other CSS color maps to the perceptually nearest entry.
func Parse(s string) (Name, error) {
	s = strings.TrimSpace(s)
	if n := Name(strings.ToLower(s)); n.Valid() {
		return n, nil
	}

	c, err := csscolorparser.Parse(s)
	if err != nil {
		return "", fmt.Errorf("unknown color %q: %w", s, err)
	}
	return Nearest(colorful.Color{R: c.R, G: c.G, B: c.B}), nil
}

// Nearest returns the palette entry closest to c in CIE L*a*b*.
func Nearest(c colorful.Color) Name {
	best := Black
	bestDist := -1.
	for _, n := range Palette {
		pc, _ := colorful.Hex(hexes[n])
		d := c.DistanceLab(pc)
		if bestDist < 0 || d < bestDist {
			best = n
			bestDist = d
		}
	}
	return best
}
