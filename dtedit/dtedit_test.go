package dtedit_test

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	tassert "github.com/stretchr/testify/assert"
	"oss.terrastruct.com/diff"

	"oss.terrastruct.com/drawtex/dtedit"
	"oss.terrastruct.com/drawtex/dtrenderers/dttikz"
	"oss.terrastruct.com/drawtex/dtshape"
	"oss.terrastruct.com/drawtex/lib/color"
	"oss.terrastruct.com/drawtex/lib/geo"
	"oss.terrastruct.com/drawtex/lib/log"
)

func newController(t *testing.T) (context.Context, *dtedit.Controller) {
	ctx := log.WithTB(context.Background(), t, nil)
	return ctx, dtedit.New(nil)
}

func setTool(t *testing.T, ctx context.Context, c *dtedit.Controller, tool dtedit.Tool) {
	t.Helper()
	if err := c.SetTool(ctx, tool); err != nil {
		t.Fatal(err)
	}
}

func drag(t *testing.T, ctx context.Context, c *dtedit.Controller, x0, y0, x1, y1 float64) {
	t.Helper()
	if err := c.PointerDown(ctx, geo.NewPoint(x0, y0)); err != nil {
		t.Fatal(err)
	}
	if err := c.PointerMove(ctx, geo.NewPoint(x1, y1)); err != nil {
		t.Fatal(err)
	}
	if err := c.PointerUp(ctx, geo.NewPoint(x1, y1)); err != nil {
		t.Fatal(err)
	}
}

func export(t *testing.T, ctx context.Context, c *dtedit.Controller) string {
	t.Helper()
	out, err := c.Export(ctx, nil)
	if err != nil {
		t.Fatal(err)
	}
	return string(out)
}

func TestDrawLine(t *testing.T) {
	t.Parallel()

	ctx, c := newController(t)
	drag(t, ctx, c, 1, 1, 3, 1)

	diff.AssertStringEq(t, `\begin{tikzpicture}
\draw [color=black] (1, 1) -- (3, 1);
\end{tikzpicture}`, export(t, ctx, c))
	tassert.Equal(t, dtedit.StateIdle, c.State())
}

func TestDrawEllipse(t *testing.T) {
	t.Parallel()

	ctx, c := newController(t)
	setTool(t, ctx, c, dtedit.ToolEllipse)
	tassert.NoError(t, c.PointerDown(ctx, geo.NewPoint(2, 2)))

	live := c.Live().(*dtshape.Ellipse)
	tassert.Equal(t, 0.05, live.Rx)
	tassert.Equal(t, dtedit.StateDrawing, c.State())

	tassert.NoError(t, c.PointerMove(ctx, geo.NewPoint(4, 3)))
	tassert.NoError(t, c.PointerUp(ctx, geo.NewPoint(4, 3)))

	shapes := c.Scene.Shapes()
	if len(shapes) != 1 {
		t.Fatalf("expected 1 shape, got %d", len(shapes))
	}
	e := shapes[0].(*dtshape.Ellipse)
	tassert.Equal(t, 1., e.Rx)
	tassert.Equal(t, 0.5, e.Ry)
	tassert.True(t, e.Center.Equals(geo.NewPoint(3, 2)), e.Center.ToString())
	tassert.Contains(t, export(t, ctx, c), `\draw [color=black] (3, 2) ellipse (1 and 0.5);`)
}

func TestDragLeftwards(t *testing.T) {
	t.Parallel()

	ctx, c := newController(t)
	setTool(t, ctx, c, dtedit.ToolEllipse)
	drag(t, ctx, c, 4, 3, 2, 2)
	e := c.Scene.Shapes()[0].(*dtshape.Ellipse)
	// grows from the start point regardless of direction
	tassert.True(t, e.Center.Equals(geo.NewPoint(5, 3)), e.Center.ToString())

	setTool(t, ctx, c, dtedit.ToolRectangle)
	drag(t, ctx, c, 4, 3, 2, 2)
	r := c.Scene.Shapes()[1].(*dtshape.Rectangle)
	tassert.Equal(t, -2., r.Width)
	tassert.Equal(t, -1., r.Height)
}

func TestClickWithoutDrag(t *testing.T) {
	t.Parallel()

	ctx, c := newController(t)
	setTool(t, ctx, c, dtedit.ToolRectangle)
	tassert.NoError(t, c.PointerDown(ctx, geo.NewPoint(5, 5)))
	tassert.NoError(t, c.PointerUp(ctx, geo.NewPoint(5, 5)))

	setTool(t, ctx, c, dtedit.ToolLine)
	tassert.NoError(t, c.PointerDown(ctx, geo.NewPoint(1, 1)))
	tassert.NoError(t, c.PointerUp(ctx, geo.NewPoint(1, 1)))

	diff.AssertStringEq(t, `\begin{tikzpicture}
\draw [color=black] (5, 5) rectangle (5.1, 5.1);
\draw [color=black] (1, 1) -- (1, 1);
\end{tikzpicture}`, export(t, ctx, c))
}

func TestHistoryCap(t *testing.T) {
	t.Parallel()

	ctx, c := newController(t)
	for i := 0; i < 21; i++ {
		x := 0.1 * float64(i+1)
		drag(t, ctx, c, x, 1, x, 2)
	}
	tassert.Equal(t, 21, c.Scene.Len())
	tassert.Equal(t, 20, c.Scene.History.Len())

	last := c.Scene.Shapes()[20]
	tassert.NoError(t, c.Undo(ctx))
	tassert.Equal(t, 20, c.Scene.Len())
	tassert.Equal(t, 19, c.Scene.History.Len())
	tassert.False(t, c.Scene.Contains(last))
}

func TestUndoEmpty(t *testing.T) {
	t.Parallel()

	ctx, c := newController(t)
	redraws := 0
	c.OnRedraw = func() { redraws++ }
	tassert.NoError(t, c.Undo(ctx))
	tassert.Equal(t, 0, redraws)
}

func TestText(t *testing.T) {
	t.Parallel()

	ctx, c := newController(t)
	setTool(t, ctx, c, dtedit.ToolText)
	tassert.NoError(t, c.PointerDown(ctx, geo.NewPoint(1, 1)))
	tassert.NoError(t, c.PointerUp(ctx, geo.NewPoint(1, 1)))
	tassert.Equal(t, dtedit.StateTextEntry, c.State())

	txt := c.TextEntry().Shape
	tassert.True(t, c.Scene.Contains(txt))

	tassert.NoError(t, c.Key(ctx, dtedit.RuneKey('A')))
	tassert.Equal(t, "A", txt.Content)
	tassert.NoError(t, c.Key(ctx, dtedit.Key{Code: dtedit.KeyBackspace}))
	tassert.Equal(t, "", txt.Content)
	tassert.True(t, c.Scene.Contains(txt))

	// extra backspaces and control characters are ignored
	tassert.NoError(t, c.Key(ctx, dtedit.Key{Code: dtedit.KeyBackspace}))
	tassert.NoError(t, c.Key(ctx, dtedit.RuneKey('\x1b')))
	tassert.Equal(t, "", txt.Content)

	for _, r := range "hi there" {
		tassert.NoError(t, c.Key(ctx, dtedit.RuneKey(r)))
	}
	tassert.NoError(t, c.Key(ctx, dtedit.Key{Code: dtedit.KeyReturn}))
	tassert.Equal(t, dtedit.StateIdle, c.State())
	tassert.Nil(t, c.TextEntry())

	// keys after the commit go nowhere
	tassert.NoError(t, c.Key(ctx, dtedit.RuneKey('!')))
	tassert.Equal(t, "hi there", txt.Content)
	tassert.Contains(t, export(t, ctx, c), `\node at (1, 1) [black] {hi there};`)
}

func TestTextEmptyStays(t *testing.T) {
	t.Parallel()

	ctx, c := newController(t)
	setTool(t, ctx, c, dtedit.ToolText)
	tassert.NoError(t, c.PointerDown(ctx, geo.NewPoint(1, 1)))
	tassert.NoError(t, c.PointerUp(ctx, geo.NewPoint(1, 1)))
	tassert.NoError(t, c.Key(ctx, dtedit.Key{Code: dtedit.KeyReturn}))
	tassert.Equal(t, 1, c.Scene.Len())

	// a new text entry commits the previous one
	tassert.NoError(t, c.PointerDown(ctx, geo.NewPoint(2, 2)))
	tassert.NoError(t, c.Key(ctx, dtedit.RuneKey('b')))
	tassert.NoError(t, c.PointerUp(ctx, geo.NewPoint(2, 2)))
	tassert.NoError(t, c.PointerDown(ctx, geo.NewPoint(3, 3)))
	tassert.NoError(t, c.PointerUp(ctx, geo.NewPoint(3, 3)))
	tassert.Equal(t, 3, c.Scene.Len())
	tassert.Equal(t, "b", c.Scene.Shapes()[1].(*dtshape.Text).Content)
}

func TestMoveRoundTrip(t *testing.T) {
	t.Parallel()

	ctx, c := newController(t)
	setTool(t, ctx, c, dtedit.ToolRectangle)
	drag(t, ctx, c, 1, 1, 3, 2)

	setTool(t, ctx, c, dtedit.ToolSelect)
	tassert.NoError(t, c.PointerDown(ctx, geo.NewPoint(2, 1)))
	sel := c.Selection()
	if sel == nil {
		t.Fatal("expected a selection")
	}
	r := sel.Shape.(*dtshape.Rectangle)
	tassert.Equal(t, dtedit.StateMoving, c.State())

	tassert.NoError(t, c.PointerMove(ctx, geo.NewPoint(2.5, 1.7)))
	tassert.True(t, r.Anchor.ApproxEquals(geo.NewPoint(1.5, 1.7), 1e-9))
	tassert.True(t, sel.Overlay.Origin.ApproxEquals(geo.NewPoint(1.5, 1.7), 1e-9))

	tassert.NoError(t, c.PointerMove(ctx, geo.NewPoint(2, 1)))
	tassert.NoError(t, c.PointerUp(ctx, geo.NewPoint(2, 1)))
	tassert.True(t, r.Anchor.ApproxEquals(geo.NewPoint(1, 1), 1e-9), r.Anchor.ToString())
	tassert.Equal(t, 2., r.Width)
	tassert.Equal(t, dtedit.StateIdle, c.State())

	// moves are not undoable, the rectangle's creation is
	tassert.Equal(t, 1, c.Scene.History.Len())
}

func TestSelectToggle(t *testing.T) {
	t.Parallel()

	ctx, c := newController(t)
	drag(t, ctx, c, 1, 1, 3, 1)
	setTool(t, ctx, c, dtedit.ToolSelect)

	tassert.NoError(t, c.PointerDown(ctx, geo.NewPoint(9, 9)))
	tassert.NoError(t, c.PointerUp(ctx, geo.NewPoint(9, 9)))
	sel := c.Selection()
	if sel == nil {
		t.Fatal("select has no distance cap")
	}
	tassert.True(t, sel.Overlay.Origin.Equals(geo.NewPoint(1, 1)))
	tassert.Equal(t, 2., sel.Overlay.Width)
	tassert.Equal(t, 0., sel.Overlay.Height)

	tassert.NoError(t, c.PointerDown(ctx, geo.NewPoint(2, 1)))
	tassert.Nil(t, c.Selection())

	tassert.NoError(t, c.PointerDown(ctx, geo.NewPoint(2, 1)))
	tassert.NotNil(t, c.Selection())
	setTool(t, ctx, c, dtedit.ToolLine)
	tassert.Nil(t, c.Selection())
}

func TestSelectNothing(t *testing.T) {
	t.Parallel()

	ctx, c := newController(t)
	setTool(t, ctx, c, dtedit.ToolSelect)
	tassert.NoError(t, c.PointerDown(ctx, geo.NewPoint(2, 1)))
	tassert.Nil(t, c.Selection())
	tassert.NoError(t, c.RecolorSelected(ctx, color.Red))
}

func TestTextMovesOnlyFromInside(t *testing.T) {
	t.Parallel()

	ctx, c := newController(t)
	setTool(t, ctx, c, dtedit.ToolText)
	tassert.NoError(t, c.PointerDown(ctx, geo.NewPoint(1, 1)))
	tassert.NoError(t, c.PointerUp(ctx, geo.NewPoint(1, 1)))
	for _, r := range "label" {
		tassert.NoError(t, c.Key(ctx, dtedit.RuneKey(r)))
	}

	setTool(t, ctx, c, dtedit.ToolSelect)
	tassert.NoError(t, c.PointerDown(ctx, geo.NewPoint(5, 5)))
	tassert.NotNil(t, c.Selection())
	tassert.False(t, c.Selection().Moving)
	tassert.NoError(t, c.PointerMove(ctx, geo.NewPoint(6, 6)))
	txt := c.Selection().Shape.(*dtshape.Text)
	tassert.True(t, txt.Anchor.Equals(geo.NewPoint(1, 1)))

	tassert.NoError(t, c.PointerDown(ctx, geo.NewPoint(5, 5)))
	tassert.NoError(t, c.PointerDown(ctx, geo.NewPoint(1.1, 1)))
	tassert.True(t, c.Selection().Moving)
	tassert.NoError(t, c.PointerMove(ctx, geo.NewPoint(2.1, 2)))
	tassert.True(t, txt.Anchor.ApproxEquals(geo.NewPoint(2, 2), 1e-9), txt.Anchor.ToString())
}

func TestErase(t *testing.T) {
	t.Parallel()

	ctx, c := newController(t)
	drag(t, ctx, c, 1, 1, 3, 1)
	setTool(t, ctx, c, dtedit.ToolEllipse)
	drag(t, ctx, c, 6, 6, 8, 7)
	before := c.Scene.Shapes()

	setTool(t, ctx, c, dtedit.ToolErase)
	tassert.NoError(t, c.PointerDown(ctx, geo.NewPoint(5, 3)))
	tassert.NoError(t, c.PointerUp(ctx, geo.NewPoint(5, 3)))
	tassert.Equal(t, before, c.Scene.Shapes())

	tassert.NoError(t, c.PointerDown(ctx, geo.NewPoint(2, 1.1)))
	tassert.Equal(t, before[1:], c.Scene.Shapes())
	tassert.Equal(t, 2, c.Scene.History.Len())
}

func TestEraseArrow(t *testing.T) {
	t.Parallel()

	ctx, c := newController(t)
	setTool(t, ctx, c, dtedit.ToolArrow)
	drag(t, ctx, c, 1, 1, 3, 1)
	a := c.Scene.Shapes()[0].(*dtshape.Arrow)
	if a.Head == nil {
		t.Fatal("expected a head")
	}

	setTool(t, ctx, c, dtedit.ToolSelect)
	tassert.NoError(t, c.PointerDown(ctx, geo.NewPoint(2.9, 1)))
	tassert.Same(t, a, c.Selection().Shape)

	// undoing the selected shape drops the selection
	tassert.NoError(t, c.Undo(ctx))
	tassert.Equal(t, 0, c.Scene.Len())
	tassert.Nil(t, c.Selection())

	setTool(t, ctx, c, dtedit.ToolArrow)
	drag(t, ctx, c, 1, 1, 3, 1)

	// erasing near the head takes shaft and head together
	setTool(t, ctx, c, dtedit.ToolErase)
	tassert.NoError(t, c.PointerDown(ctx, geo.NewPoint(2.9, 1.05)))
	tassert.Equal(t, 0, c.Scene.Len())
}

func TestArrow(t *testing.T) {
	t.Parallel()

	ctx, c := newController(t)
	setTool(t, ctx, c, dtedit.ToolArrow)
	drag(t, ctx, c, 1, 1, 1.1, 1)
	drag(t, ctx, c, 1, 1, 3, 1)

	shapes := c.Scene.Shapes()
	short, long := shapes[0].(*dtshape.Arrow), shapes[1].(*dtshape.Arrow)
	tassert.Nil(t, short.Head)
	tassert.True(t, short.Shaft.End.Equals(geo.NewPoint(1.1, 1)))
	if long.Head == nil {
		t.Fatal("expected a head")
	}
	tassert.True(t, long.Shaft.End.ApproxEquals(geo.NewPoint(2.8, 1), 1e-9))

	diff.AssertStringEq(t, `\begin{tikzpicture}
\fill [color=black] (2.8, 1.1) -- (2.8, 0.9) -- (3, 1) -- cycle;
\draw [color=black] (1, 1) -- (1.1, 1);
\draw [->,color=black] (1, 1) -- (2.8, 1);
\end{tikzpicture}`, export(t, ctx, c))

	tassert.NoError(t, c.Undo(ctx))
	tassert.Equal(t, 1, c.Scene.Len())
}

func TestCone(t *testing.T) {
	t.Parallel()

	for _, tool := range []dtedit.Tool{dtedit.ToolCone, dtedit.ToolInvertedCone} {
		tool := tool
		t.Run(tool.String(), func(t *testing.T) {
			t.Parallel()

			ctx, c := newController(t)
			setTool(t, ctx, c, tool)
			tassert.NoError(t, c.PointerDown(ctx, geo.NewPoint(2, 2)))
			placeholder := c.Live().(*dtshape.Ellipse)
			tassert.Equal(t, 0.05, placeholder.Rx)
			tassert.Equal(t, 0.025, placeholder.Ry)
			tassert.NoError(t, c.PointerMove(ctx, geo.NewPoint(4, 3)))
			tassert.NoError(t, c.PointerUp(ctx, geo.NewPoint(4, 3)))

			shapes := c.Scene.Shapes()
			tassert.Len(t, shapes, 3)
			tassert.Equal(t, dtshape.KindEllipse, shapes[0].Kind())
			tassert.Equal(t, dtshape.KindLine, shapes[1].Kind())
			tassert.Equal(t, dtshape.KindLine, shapes[2].Kind())
			tassert.Equal(t, 1, c.Scene.History.Len())

			apexY := 5.
			if tool == dtedit.ToolInvertedCone {
				apexY = -1
			}
			tassert.True(t, shapes[1].(*dtshape.Line).End.ApproxEquals(geo.NewPoint(3, apexY), 1e-9))

			tassert.NoError(t, c.Undo(ctx))
			tassert.Equal(t, 0, c.Scene.Len())
		})
	}
}

func TestOutOfBounds(t *testing.T) {
	t.Parallel()

	ctx, c := newController(t)
	tassert.NoError(t, c.PointerDown(ctx, geo.NewPoint(11, 5)))
	tassert.Nil(t, c.Live())

	tassert.NoError(t, c.PointerDown(ctx, geo.NewPoint(1, 1)))
	tassert.NoError(t, c.PointerMove(ctx, geo.NewPoint(2, 2)))
	tassert.NoError(t, c.PointerMove(ctx, geo.NewPoint(-1, 12)))
	// release outside still finalizes, as last sized
	tassert.NoError(t, c.PointerUp(ctx, geo.NewPoint(-1, 12)))
	l := c.Scene.Shapes()[0].(*dtshape.Line)
	tassert.True(t, l.End.Equals(geo.NewPoint(2, 2)))
}

func TestSnap(t *testing.T) {
	t.Parallel()

	ctx, c := newController(t)
	setTool(t, ctx, c, dtedit.ToolRectangle)
	drag(t, ctx, c, 1, 1, 3, 3)

	setTool(t, ctx, c, dtedit.ToolLine)
	drag(t, ctx, c, 5, 5, 3.1, 3.05)
	tassert.True(t, c.Scene.Shapes()[1].(*dtshape.Line).End.Equals(geo.NewPoint(3.1, 3.05)))

	c.Session.Snap = true
	drag(t, ctx, c, 5, 5, 3.1, 3.05)
	tassert.True(t, c.Scene.Shapes()[2].(*dtshape.Line).End.Equals(geo.NewPoint(3, 3)))
}

func TestRecolorAndColorPolicy(t *testing.T) {
	t.Parallel()

	ctx, c := newController(t)
	drag(t, ctx, c, 1, 1, 3, 1)
	tassert.NoError(t, c.SetColor(ctx, color.Blue))
	drag(t, ctx, c, 1, 2, 3, 2)

	setTool(t, ctx, c, dtedit.ToolSelect)
	tassert.NoError(t, c.PointerDown(ctx, geo.NewPoint(2, 1)))
	tassert.NoError(t, c.PointerUp(ctx, geo.NewPoint(2, 1)))
	tassert.NoError(t, c.RecolorSelected(ctx, color.Red))

	diff.AssertStringEq(t, `\begin{tikzpicture}
\draw [color=red] (1, 1) -- (3, 1);
\draw [color=blue] (1, 2) -- (3, 2);
\end{tikzpicture}`, export(t, ctx, c))

	tassert.NoError(t, c.SetColor(ctx, color.Green))
	out, err := c.Export(ctx, &dttikz.RenderOpts{UseCurrentColor: true})
	tassert.NoError(t, err)
	tassert.Equal(t, 2, strings.Count(string(out), "color=green"))

	// recolor is not undoable: undo removes the newest line
	tassert.NoError(t, c.Undo(ctx))
	tassert.Equal(t, color.Red, c.Scene.Shapes()[0].Color())
}

func TestClear(t *testing.T) {
	t.Parallel()

	ctx, c := newController(t)
	drag(t, ctx, c, 1, 1, 3, 1)
	setTool(t, ctx, c, dtedit.ToolSelect)
	tassert.NoError(t, c.PointerDown(ctx, geo.NewPoint(2, 1)))
	c.Session.Bounds = geo.NewBox(geo.NewPoint(-5, -5), 20, 20)

	tassert.NoError(t, c.Clear(ctx))
	tassert.Equal(t, 0, c.Scene.Len())
	tassert.Equal(t, 0, c.Scene.History.Len())
	tassert.Nil(t, c.Selection())
	tassert.Equal(t, dtedit.DefaultBounds(), c.Session.Bounds)
	tassert.NoError(t, c.Undo(ctx))
}

func TestReentrant(t *testing.T) {
	t.Parallel()

	ctx, c := newController(t)
	var inner []error
	c.OnRedraw = func() {
		inner = append(inner, c.Undo(ctx))
	}
	drag(t, ctx, c, 1, 1, 3, 1)

	tassert.NotEmpty(t, inner)
	for _, err := range inner {
		tassert.ErrorIs(t, err, dtedit.ErrReentrant)
	}
	tassert.Equal(t, 1, c.Scene.Len())

	c.OnRedraw = nil
	tassert.NoError(t, c.Undo(ctx))
	tassert.Equal(t, 0, c.Scene.Len())
}

func TestSession(t *testing.T) {
	t.Parallel()

	s := dtedit.NewSession()
	tassert.NotEqual(t, uuid.Nil, s.ID)
	tassert.Equal(t, dtedit.ToolLine, s.Tool)
	tassert.Equal(t, color.Black, s.Color)
	tassert.NotEqual(t, s.ID, dtedit.NewSession().ID)
}
