// Package dtscript is a line oriented text encoding of host input events. It
// lets the editing controller be driven headless from a file:
//
//	# a cone and a caption
//	tool cone
//	drag 2 2 4 3
//	tool text
//	down 1 8
//	up 1 8
//	type A cone
//	key <return>
//	export
package dtscript

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"go.uber.org/multierr"
	"oss.terrastruct.com/xdefer"

	"oss.terrastruct.com/drawtex/dtedit"
	"oss.terrastruct.com/drawtex/dtrenderers/dttikz"
	"oss.terrastruct.com/drawtex/lib/color"
	"oss.terrastruct.com/drawtex/lib/geo"
)

type Op string

const (
	OpTool    Op = "tool"
	OpColor   Op = "color"
	OpSnap    Op = "snap"
	OpDown    Op = "down"
	OpMove    Op = "move"
	OpUp      Op = "up"
	OpDrag    Op = "drag"
	OpKey     Op = "key"
	OpType    Op = "type"
	OpUndo    Op = "undo"
	OpClear   Op = "clear"
	OpRecolor Op = "recolor"
	OpExport  Op = "export"
)

type Event struct {
	Line int
	Op   Op

	// Point is the pointer position, and the drag start for OpDrag.
	Point *geo.Point
	// To is the drag end.
	To *geo.Point

	Tool  dtedit.Tool
	Color color.Name
	Snap  bool
	Keys  []dtedit.Key
}

var namedKeys = map[string]dtedit.Key{
	"<backspace>": {Code: dtedit.KeyBackspace},
	"<return>":    {Code: dtedit.KeyReturn},
	"<enter>":     {Code: dtedit.KeyReturn},
	"<space>":     dtedit.RuneKey(' '),
}

// Parse reads every event in r. All malformed lines are reported together,
// each prefixed with name:line.
func Parse(name string, r io.Reader) ([]Event, error) {
	var events []Event
	var errs error

	sc := bufio.NewScanner(r)
	n := 0
	for sc.Scan() {
		n++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		ev, err := parseLine(line)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("%s:%d: %w", name, n, err))
			continue
		}
		ev.Line = n
		events = append(events, ev)
	}
	if err := sc.Err(); err != nil {
		errs = multierr.Append(errs, fmt.Errorf("%s: %w", name, err))
	}
	if errs != nil {
		return nil, errs
	}
	return events, nil
}

func parseLine(line string) (Event, error) {
	op, rest, _ := strings.Cut(line, " ")
	rest = strings.TrimSpace(rest)
	args := strings.Fields(rest)
	ev := Event{Op: Op(strings.ToLower(op))}

	var err error
	switch ev.Op {
	case OpTool:
		if rest == "" {
			return ev, fmt.Errorf("tool requires a name")
		}
		ev.Tool, err = dtedit.ParseTool(rest)
	case OpColor, OpRecolor:
		if rest == "" {
			return ev, fmt.Errorf("%s requires a color", ev.Op)
		}
		ev.Color, err = color.Parse(rest)
	case OpSnap:
		switch strings.ToLower(rest) {
		case "on", "true", "1":
			ev.Snap = true
		case "off", "false", "0":
		default:
			return ev, fmt.Errorf(`snap expects "on" or "off", got %q`, rest)
		}
	case OpDown, OpMove, OpUp:
		ev.Point, err = parsePoints(args, 1)
	case OpDrag:
		ev.Point, err = parsePoints(args, 2)
		if err == nil {
			ev.To = geo.NewPoint(mustFloat(args[2]), mustFloat(args[3]))
		}
	case OpKey:
		if len(args) != 1 {
			return ev, fmt.Errorf("key expects exactly one key, got %d", len(args))
		}
		k, ok := parseKey(args[0])
		if !ok {
			return ev, fmt.Errorf("unknown key %q", args[0])
		}
		ev.Keys = []dtedit.Key{k}
	case OpType:
		if rest == "" {
			return ev, fmt.Errorf("type requires text")
		}
		for _, r := range rest {
			ev.Keys = append(ev.Keys, dtedit.RuneKey(r))
		}
	case OpUndo, OpClear, OpExport:
		if len(args) != 0 {
			return ev, fmt.Errorf("%s takes no arguments", ev.Op)
		}
	default:
		return ev, fmt.Errorf("unknown command %q", op)
	}
	return ev, err
}

// parsePoints validates 2*n coordinates and returns the first point.
func parsePoints(args []string, n int) (*geo.Point, error) {
	if len(args) != 2*n {
		return nil, fmt.Errorf("expected %d coordinates, got %d", 2*n, len(args))
	}
	for _, a := range args {
		if _, err := strconv.ParseFloat(a, 64); err != nil {
			return nil, fmt.Errorf("invalid coordinate %q", a)
		}
	}
	return geo.NewPoint(mustFloat(args[0]), mustFloat(args[1])), nil
}

func mustFloat(s string) float64 {
	f, _ := strconv.ParseFloat(s, 64)
	return f
}

func parseKey(s string) (dtedit.Key, bool) {
	if k, ok := namedKeys[strings.ToLower(s)]; ok {
		return k, true
	}
	r := []rune(s)
	if len(r) != 1 {
		return dtedit.Key{}, false
	}
	return dtedit.RuneKey(r[0]), true
}

// Play feeds events to c in order and returns one TikZ document per export
// event. A script without an export gets one at the end.
func Play(ctx context.Context, c *dtedit.Controller, events []Event, opts *dttikz.RenderOpts) (_ [][]byte, err error) {
	defer xdefer.Errorf(&err, "failed to play events")

	var docs [][]byte
	for _, ev := range events {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("line %d: %w", ev.Line, err)
		}
		if ev.Op == OpExport {
			out, err := c.Export(ctx, opts)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", ev.Line, err)
			}
			docs = append(docs, out)
			continue
		}
		if err := apply(ctx, c, ev); err != nil {
			return nil, fmt.Errorf("line %d: %w", ev.Line, err)
		}
	}
	if len(docs) == 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out, err := c.Export(ctx, opts)
		if err != nil {
			return nil, err
		}
		docs = append(docs, out)
	}
	return docs, nil
}

func apply(ctx context.Context, c *dtedit.Controller, ev Event) error {
	switch ev.Op {
	case OpTool:
		return c.SetTool(ctx, ev.Tool)
	case OpColor:
		return c.SetColor(ctx, ev.Color)
	case OpRecolor:
		return c.RecolorSelected(ctx, ev.Color)
	case OpSnap:
		c.Session.Snap = ev.Snap
		return nil
	case OpDown:
		return c.PointerDown(ctx, ev.Point)
	case OpMove:
		return c.PointerMove(ctx, ev.Point)
	case OpUp:
		return c.PointerUp(ctx, ev.Point)
	case OpDrag:
		if err := c.PointerDown(ctx, ev.Point); err != nil {
			return err
		}
		if err := c.PointerMove(ctx, ev.To); err != nil {
			return err
		}
		return c.PointerUp(ctx, ev.To)
	case OpKey, OpType:
		for _, k := range ev.Keys {
			if err := c.Key(ctx, k); err != nil {
				return err
			}
		}
		return nil
	case OpUndo:
		return c.Undo(ctx)
	case OpClear:
		return c.Clear(ctx)
	}
	return fmt.Errorf("unknown command %q", ev.Op)
}
