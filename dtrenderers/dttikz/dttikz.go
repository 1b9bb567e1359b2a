// Package dttikz renders a scene as a TikZ picture.
//
// Commands are emitted in three passes over the scene: areas (ellipses,
// rectangles, polygons and arrow heads), then lines, then text nodes. Within
// a pass scene order is kept.
package dttikz

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"oss.terrastruct.com/xdefer"

	"oss.terrastruct.com/drawtex/dtshape"
	"oss.terrastruct.com/drawtex/lib/color"
	"oss.terrastruct.com/drawtex/lib/geo"
)

const (
	BEGIN = `\begin{tikzpicture}`
	END   = `\end{tikzpicture}`

	DEFAULT_PRECISION = 4
)

type RenderOpts struct {
	// Color is the palette selection at export time.
	Color color.Name
	// UseCurrentColor paints every command with Color instead of each
	// shape's own color.
	UseCurrentColor bool
	// Precision is the number of decimals coordinates are rounded to.
	Precision *int64
}

func Render(shapes []dtshape.Shape, opts *RenderOpts) (_ []byte, err error) {
	defer xdefer.Errorf(&err, "failed to render tikz")

	if opts == nil {
		opts = &RenderOpts{}
	}
	r := &renderer{
		opts:      opts,
		precision: DEFAULT_PRECISION,
		buf:       &bytes.Buffer{},
	}
	if opts.Precision != nil {
		r.precision = int(*opts.Precision)
	}
	if opts.UseCurrentColor && !opts.Color.Valid() {
		return nil, fmt.Errorf("current color %q is not in the palette", opts.Color)
	}

	r.buf.WriteString(BEGIN + "\n")
	for _, pass := range []func(dtshape.Shape) error{r.area, r.line, r.text} {
		for _, s := range shapes {
			if err := pass(s); err != nil {
				return nil, err
			}
		}
	}
	r.buf.WriteString(END)
	return r.buf.Bytes(), nil
}

type renderer struct {
	opts      *RenderOpts
	precision int
	buf       *bytes.Buffer
}

func (r *renderer) area(s dtshape.Shape) error {
	switch s := s.(type) {
	case *dtshape.Ellipse:
		c, err := r.color(s)
		if err != nil {
			return err
		}
		fmt.Fprintf(r.buf, "\\draw [color=%s] %s ellipse (%s and %s);\n", c, r.point(s.Center), r.num(s.Rx), r.num(s.Ry))
	case *dtshape.Rectangle:
		c, err := r.color(s)
		if err != nil {
			return err
		}
		b := s.Box()
		fmt.Fprintf(r.buf, "\\draw [color=%s] %s rectangle %s;\n", c, r.point(b.Origin), r.point(b.Opposite()))
	case *dtshape.Polygon:
		return r.polygon(s)
	case *dtshape.Arrow:
		if s.Head != nil {
			return r.polygon(s.Head)
		}
	}
	return nil
}

func (r *renderer) polygon(p *dtshape.Polygon) error {
	c, err := r.color(p)
	if err != nil {
		return err
	}
	cmd := `\draw`
	if p.Filled {
		cmd = `\fill`
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s [color=%s] ", cmd, c)
	for _, v := range p.Vertices {
		b.WriteString(r.point(v))
		b.WriteString(" -- ")
	}
	b.WriteString("cycle;\n")
	r.buf.WriteString(b.String())
	return nil
}

func (r *renderer) line(s dtshape.Shape) error {
	var l *dtshape.Line
	arrow := false
	switch s := s.(type) {
	case *dtshape.Line:
		l = s
	case *dtshape.Arrow:
		l = s.Shaft
		arrow = s.Head != nil
	default:
		return nil
	}

	c, err := r.color(s)
	if err != nil {
		return err
	}
	style := "color=" + string(c)
	if arrow {
		style = "->," + style
	}
	fmt.Fprintf(r.buf, "\\draw [%s] %s -- %s;\n", style, r.point(l.Start), r.point(l.End))
	return nil
}

func (r *renderer) text(s dtshape.Shape) error {
	t, ok := s.(*dtshape.Text)
	if !ok {
		return nil
	}
	c, err := r.color(t)
	if err != nil {
		return err
	}
	fmt.Fprintf(r.buf, "\\node at %s [%s] {%s};\n", r.point(t.Anchor), c, EscapeText(t.Content))
	return nil
}

func (r *renderer) color(s dtshape.Shape) (color.Name, error) {
	if r.opts.UseCurrentColor {
		return r.opts.Color, nil
	}
	c := s.Color()
	if !c.Valid() {
		return "", fmt.Errorf("%s has color %q which is not in the palette", s.Kind(), c)
	}
	return c, nil
}

func (r *renderer) point(p *geo.Point) string {
	return fmt.Sprintf("(%s, %s)", r.num(p.X), r.num(p.Y))
}

func (r *renderer) num(v float64) string {
	return FormatNumber(v, r.precision)
}

// FormatNumber rounds v to precision decimals and prints the shortest form,
// never -0.
func FormatNumber(v float64, precision int) string {
	v = geo.RoundDecimals(v, precision)
	if v == 0 {
		v = 0
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

var latexEscaper = strings.NewReplacer(
	`\`, `\textbackslash{}`,
	`{`, `\{`,
	`}`, `\}`,
	`$`, `\$`,
	`&`, `\&`,
	`#`, `\#`,
	`%`, `\%`,
	`_`, `\_`,
	`~`, `\textasciitilde{}`,
	`^`, `\textasciicircum{}`,
)

// EscapeText makes s safe as the literal body of a TikZ node.
func EscapeText(s string) string {
	return latexEscaper.Replace(s)
}
