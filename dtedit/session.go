package dtedit

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"oss.terrastruct.com/drawtex/lib/color"
	"oss.terrastruct.com/drawtex/lib/geo"
)

type Tool int

const (
	ToolLine Tool = iota
	ToolArrow
	ToolEllipse
	ToolRectangle
	ToolText
	ToolSelect
	ToolErase
	ToolCone
	ToolInvertedCone
)

var Tools = []Tool{
	ToolLine,
	ToolArrow,
	ToolEllipse,
	ToolRectangle,
	ToolText,
	ToolSelect,
	ToolErase,
	ToolCone,
	ToolInvertedCone,
}

var toolNames = map[Tool]string{
	ToolLine:         "line",
	ToolArrow:        "arrow",
	ToolEllipse:      "ellipse",
	ToolRectangle:    "rectangle",
	ToolText:         "text",
	ToolSelect:       "select",
	ToolErase:        "erase",
	ToolCone:         "cone",
	ToolInvertedCone: "inverted-cone",
}

var toolAliases = map[string]Tool{
	"arrow-line":       ToolArrow,
	"arrowline":        ToolArrow,
	"rect":             ToolRectangle,
	"upside-down-cone": ToolInvertedCone,
	"invertedcone":     ToolInvertedCone,
}

func (t Tool) String() string {
	if s, ok := toolNames[t]; ok {
		return s
	}
	return fmt.Sprintf("Tool(%d)", int(t))
}

// Draws reports whether pointer-down with t creates a live shape.
func (t Tool) Draws() bool {
	switch t {
	case ToolSelect, ToolErase, ToolText:
		return false
	}
	return true
}

// ParseTool accepts the tool name, case and space insensitively.
func ParseTool(s string) (Tool, error) {
	norm := strings.ToLower(strings.Join(strings.Fields(s), "-"))
	for t, name := range toolNames {
		if name == norm {
			return t, nil
		}
	}
	if t, ok := toolAliases[norm]; ok {
		return t, nil
	}
	return 0, fmt.Errorf("unknown tool %q", s)
}

// DefaultBounds is the visible region a fresh or cleared canvas shows.
func DefaultBounds() *geo.Box {
	return geo.NewBox(geo.NewPoint(0, 0), 10, 10)
}

// Session carries what a host would otherwise keep as process-wide state.
type Session struct {
	ID     uuid.UUID
	Tool   Tool
	Color  color.Name
	Snap   bool
	Bounds *geo.Box
}

func NewSession() *Session {
	return &Session{
		ID:     uuid.New(),
		Tool:   ToolLine,
		Color:  color.Black,
		Bounds: DefaultBounds(),
	}
}
