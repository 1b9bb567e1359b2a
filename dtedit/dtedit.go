// Package dtedit is the editing state machine. A host feeds it pointer and key
// events already mapped to scene coordinates, and it draws, selects, moves,
// erases and undoes against a dtscene.Scene.
package dtedit

import (
	"context"
	"errors"
	"math"

	"cdr.dev/slog"

	"oss.terrastruct.com/drawtex/dtconstruct"
	"oss.terrastruct.com/drawtex/dthit"
	"oss.terrastruct.com/drawtex/dtrenderers/dttikz"
	"oss.terrastruct.com/drawtex/dtscene"
	"oss.terrastruct.com/drawtex/dtshape"
	"oss.terrastruct.com/drawtex/lib/color"
	"oss.terrastruct.com/drawtex/lib/geo"
	"oss.terrastruct.com/drawtex/lib/go2"
	"oss.terrastruct.com/drawtex/lib/log"
)

// ErrReentrant is returned when a controller operation is invoked while
// another one is still running, e.g. from inside OnRedraw.
var ErrReentrant = errors.New("controller operation invoked re-entrantly")

const (
	// initial extent of a freshly placed ellipse, as full width and height
	ellipseStartSize = 0.1
	// the cone placeholder starts flatter
	coneStartWidth  = 0.1
	coneStartHeight = 0.05
	rectStartSize   = 0.1
)

type State int

const (
	StateIdle State = iota
	StateDrawing
	StateMoving
	StateTextEntry
)

func (s State) String() string {
	switch s {
	case StateDrawing:
		return "drawing"
	case StateMoving:
		return "moving"
	case StateTextEntry:
		return "text-entry"
	default:
		return "idle"
	}
}

// Selection references at most one scene shape. Overlay is never part of
// the scene.
type Selection struct {
	Shape   dtshape.Shape
	Overlay *geo.Box
	Moving  bool
	Last    *geo.Point
}

type TextEntry struct {
	Shape  *dtshape.Text
	Buffer *TextBuffer
}

type Controller struct {
	Session *Session
	Scene   *dtscene.Scene

	// OnRedraw is called after every operation that changed what a host
	// would display.
	OnRedraw func()

	live     dtshape.Shape
	liveTool Tool
	anchor   *geo.Point

	selection *Selection
	text      *TextEntry

	busy bool
}

func New(s *Session) *Controller {
	if s == nil {
		s = NewSession()
	}
	return &Controller{
		Session: s,
		Scene:   dtscene.New(),
	}
}

func (c *Controller) State() State {
	switch {
	case c.live != nil && c.liveTool != ToolText:
		return StateDrawing
	case c.selection != nil && c.selection.Moving:
		return StateMoving
	case c.text != nil:
		return StateTextEntry
	default:
		return StateIdle
	}
}

// Live is the shape being drawn, nil outside of a drag.
func (c *Controller) Live() dtshape.Shape {
	return c.live
}

func (c *Controller) Selection() *Selection {
	return c.selection
}

func (c *Controller) TextEntry() *TextEntry {
	return c.text
}

func (c *Controller) enter(ctx context.Context, op string) (context.Context, func(), error) {
	if c.busy {
		return ctx, nil, ErrReentrant
	}
	c.busy = true
	ctx = log.WithFields(ctx, slog.F("session", c.Session.ID.String()), slog.F("op", op))
	return ctx, func() { c.busy = false }, nil
}

func (c *Controller) redraw() {
	if c.OnRedraw != nil {
		c.OnRedraw()
	}
}

func (c *Controller) inBounds(p *geo.Point) bool {
	b := c.Session.Bounds
	if b == nil {
		return true
	}
	b = b.Normalized()
	return go2.Between(p.X, b.Origin.X, b.Origin.X+b.Width) &&
		go2.Between(p.Y, b.Origin.Y, b.Origin.Y+b.Height)
}

func (c *Controller) PointerDown(ctx context.Context, p *geo.Point) error {
	ctx, exit, err := c.enter(ctx, "pointer-down")
	if err != nil {
		return err
	}
	defer exit()

	if !c.inBounds(p) {
		log.Debug(ctx, "ignoring pointer outside bounds", slog.F("point", p.ToString()))
		return nil
	}

	switch tool := c.Session.Tool; tool {
	case ToolSelect:
		c.toggleSelection(ctx, p)
	case ToolErase:
		c.erase(ctx, p)
	case ToolText:
		c.commitText(ctx)
		t := dtshape.NewText(p.Copy(), "", c.Session.Color)
		c.startLive(ctx, tool, t, p)
		c.text = &TextEntry{Shape: t, Buffer: &TextBuffer{}}
		log.Debug(ctx, "text entry started", slog.F("anchor", p.ToString()))
	default:
		c.startLive(ctx, tool, c.newShape(tool, p), p)
		log.Debug(ctx, "drawing started", slog.F("tool", tool.String()), slog.F("anchor", p.ToString()))
	}
	c.redraw()
	return nil
}

func (c *Controller) newShape(tool Tool, p *geo.Point) dtshape.Shape {
	col := c.Session.Color
	switch tool {
	case ToolArrow:
		return dtshape.NewArrow(p.Copy(), p.Copy(), col)
	case ToolEllipse:
		return dtshape.NewEllipse(p.Copy(), ellipseStartSize/2, ellipseStartSize/2, col)
	case ToolCone, ToolInvertedCone:
		return dtshape.NewEllipse(p.Copy(), coneStartWidth/2, coneStartHeight/2, col)
	case ToolRectangle:
		return dtshape.NewRectangle(p.Copy(), rectStartSize, rectStartSize, col)
	default:
		return dtshape.NewLine(p.Copy(), p.Copy(), col)
	}
}

func (c *Controller) startLive(ctx context.Context, tool Tool, s dtshape.Shape, p *geo.Point) {
	if c.live != nil {
		// a second press without a release still commits the first shape
		c.finalizeLive(ctx)
	}
	c.live = s
	c.liveTool = tool
	c.anchor = p.Copy()
}

func (c *Controller) PointerMove(ctx context.Context, p *geo.Point) error {
	ctx, exit, err := c.enter(ctx, "pointer-move")
	if err != nil {
		return err
	}
	defer exit()

	if !c.inBounds(p) {
		return nil
	}

	if sel := c.selection; sel != nil && sel.Moving {
		dx, dy := p.X-sel.Last.X, p.Y-sel.Last.Y
		sel.Shape.Translate(dx, dy)
		sel.Last = p.Copy()
		sel.Overlay = sel.Shape.Bounds()
		c.redraw()
		return nil
	}
	if c.live == nil {
		return nil
	}

	dx, dy := p.X-c.anchor.X, p.Y-c.anchor.Y
	switch s := c.live.(type) {
	case *dtshape.Ellipse:
		w, h := math.Abs(dx), math.Abs(dy)
		s.Rx, s.Ry = w/2, h/2
		s.Center = geo.NewPoint(c.anchor.X+w/2, c.anchor.Y)
	case *dtshape.Rectangle:
		s.Width, s.Height = dx, dy
	case *dtshape.Line:
		s.End = c.endpoint(ctx, p)
	case *dtshape.Arrow:
		s.Shaft.End = c.endpoint(ctx, p)
	case *dtshape.Text:
		return nil
	}
	c.redraw()
	return nil
}

func (c *Controller) endpoint(ctx context.Context, p *geo.Point) *geo.Point {
	if !c.Session.Snap {
		return p.Copy()
	}
	snapped, ok := dthit.SnapEndpoint(p, c.Scene.Shapes(), dthit.SnapThreshold)
	if ok {
		log.Debug(ctx, "snapped endpoint", slog.F("from", p.ToString()), slog.F("to", snapped.ToString()))
	}
	return snapped
}

// PointerUp finalizes the live shape as currently sized, wherever the
// pointer is, and ends any move.
func (c *Controller) PointerUp(ctx context.Context, p *geo.Point) error {
	ctx, exit, err := c.enter(ctx, "pointer-up")
	if err != nil {
		return err
	}
	defer exit()

	changed := false
	if c.selection != nil && c.selection.Moving {
		c.selection.Moving = false
		changed = true
	}
	if c.live != nil {
		c.finalizeLive(ctx)
		changed = true
	}
	if changed {
		c.redraw()
	}
	return nil
}

func (c *Controller) finalizeLive(ctx context.Context) {
	live, tool := c.live, c.liveTool
	c.live = nil
	c.anchor = nil

	var group []dtshape.Shape
	switch tool {
	case ToolCone, ToolInvertedCone:
		e := live.(*dtshape.Ellipse)
		left, right := dtconstruct.Cone(e, tool == ToolInvertedCone)
		group = []dtshape.Shape{e, left, right}
	case ToolArrow:
		a := live.(*dtshape.Arrow)
		a.Head = dtconstruct.Arrowhead(a.Shaft)
		group = []dtshape.Shape{a}
	default:
		group = []dtshape.Shape{live}
	}
	inserted := c.Scene.Finalize(group...)
	log.Debug(ctx, "finalized",
		slog.F("tool", tool.String()),
		slog.F("shapes", len(inserted)),
		slog.F("history", c.Scene.History.Len()),
	)
}

func (c *Controller) toggleSelection(ctx context.Context, p *geo.Point) {
	if c.selection != nil {
		c.selection = nil
		log.Debug(ctx, "deselected")
		return
	}
	s := dthit.SelectNearest(p, c.Scene.Shapes())
	if s == nil {
		return
	}
	bounds := s.Bounds()
	sel := &Selection{
		Shape:   s,
		Overlay: bounds,
		Moving:  true,
		Last:    p.Copy(),
	}
	if s.Kind() == dtshape.KindText {
		// text only drags when grabbed inside its box
		sel.Moving = bounds.Contains(p)
	}
	c.selection = sel
	log.Debug(ctx, "selected", slog.F("kind", s.Kind().String()), slog.F("moving", sel.Moving))
}

func (c *Controller) erase(ctx context.Context, p *geo.Point) {
	s := dthit.EraseNearest(p, c.Scene.Shapes(), dthit.EraseThreshold)
	if s == nil {
		return
	}
	c.Scene.Remove(s)
	c.forget(s)
	log.Debug(ctx, "erased", slog.F("kind", s.Kind().String()))
}

// forget drops controller references to shapes no longer in the scene.
func (c *Controller) forget(removed ...dtshape.Shape) {
	for _, s := range removed {
		if c.selection != nil && c.selection.Shape == s {
			c.selection = nil
		}
		if c.text != nil && dtshape.Shape(c.text.Shape) == s {
			c.text.Buffer.Commit()
			c.text = nil
		}
	}
}

func (c *Controller) Key(ctx context.Context, k Key) error {
	ctx, exit, err := c.enter(ctx, "key")
	if err != nil {
		return err
	}
	defer exit()

	if c.text == nil || c.Session.Tool != ToolText {
		return nil
	}

	changed := false
	switch k.Code {
	case KeyRune:
		changed = c.text.Buffer.Insert(k.Rune)
	case KeyBackspace:
		changed = c.text.Buffer.Backspace()
	case KeyReturn:
		c.commitText(ctx)
		c.redraw()
		return nil
	}
	if changed {
		c.text.Shape.Content = c.text.Buffer.String()
		c.redraw()
	}
	return nil
}

func (c *Controller) commitText(ctx context.Context) {
	if c.text == nil {
		return
	}
	content := c.text.Buffer.Commit()
	c.text.Shape.Content = content
	c.text = nil
	log.Debug(ctx, "text committed", slog.F("content", content))
}

// Undo removes the shapes of the newest history entry. Moves, erases and
// recolors are not recorded and cannot be undone.
func (c *Controller) Undo(ctx context.Context) error {
	ctx, exit, err := c.enter(ctx, "undo")
	if err != nil {
		return err
	}
	defer exit()

	removed := c.Scene.Undo()
	if len(removed) == 0 {
		return nil
	}
	c.forget(removed...)
	log.Debug(ctx, "undone", slog.F("shapes", len(removed)), slog.F("history", c.Scene.History.Len()))
	c.redraw()
	return nil
}

// Clear empties the scene, history and selection and resets the bounds.
func (c *Controller) Clear(ctx context.Context) error {
	ctx, exit, err := c.enter(ctx, "clear")
	if err != nil {
		return err
	}
	defer exit()

	c.Scene.Clear()
	c.live = nil
	c.anchor = nil
	c.selection = nil
	if c.text != nil {
		c.text.Buffer.Commit()
		c.text = nil
	}
	c.Session.Bounds = DefaultBounds()
	log.Debug(ctx, "cleared")
	c.redraw()
	return nil
}

// RecolorSelected repaints the selected shape. It is a no-op without a
// selection.
func (c *Controller) RecolorSelected(ctx context.Context, col color.Name) error {
	ctx, exit, err := c.enter(ctx, "recolor")
	if err != nil {
		return err
	}
	defer exit()

	if c.selection == nil {
		return nil
	}
	c.selection.Shape.Recolor(col)
	log.Debug(ctx, "recolored", slog.F("color", col.String()))
	c.redraw()
	return nil
}

// SetTool switches the active tool. Leaving Text commits the entry in
// progress and leaving Select drops the selection.
func (c *Controller) SetTool(ctx context.Context, t Tool) error {
	ctx, exit, err := c.enter(ctx, "set-tool")
	if err != nil {
		return err
	}
	defer exit()

	if t == c.Session.Tool {
		return nil
	}
	if t != ToolText {
		c.commitText(ctx)
	}
	if t != ToolSelect && c.selection != nil {
		c.selection = nil
		c.redraw()
	}
	log.Debug(ctx, "tool changed", slog.F("from", c.Session.Tool.String()), slog.F("to", t.String()))
	c.Session.Tool = t
	return nil
}

func (c *Controller) SetColor(ctx context.Context, col color.Name) error {
	ctx, exit, err := c.enter(ctx, "set-color")
	if err != nil {
		return err
	}
	defer exit()

	c.Session.Color = col
	log.Debug(ctx, "color changed", slog.F("color", col.String()))
	return nil
}

// Export renders the scene. opts.Color is always the session's current color.
func (c *Controller) Export(ctx context.Context, opts *dttikz.RenderOpts) ([]byte, error) {
	ctx, exit, err := c.enter(ctx, "export")
	if err != nil {
		return nil, err
	}
	defer exit()

	o := dttikz.RenderOpts{}
	if opts != nil {
		o = *opts
	}
	o.Color = c.Session.Color
	out, err := dttikz.Render(c.Scene.Shapes(), &o)
	if err != nil {
		return nil, err
	}
	log.Debug(ctx, "exported", slog.F("shapes", c.Scene.Len()), slog.F("bytes", len(out)))
	return out, nil
}
