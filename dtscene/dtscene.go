// Package dtscene holds the ordered collection of finalized shapes and the
// bounded creation history used by undo.
package dtscene

import (
	"golang.org/x/exp/slices"

	"oss.terrastruct.com/drawtex/dtshape"
)

// Scene is ordered by insertion, which is both draw order and export order.
// Membership is by identity: a shape pointer is a member at most once.
type Scene struct {
	shapes  []dtshape.Shape
	History *History
}

func New() *Scene {
	return &Scene{
		History: NewHistory(HistoryCap),
	}
}

// Finalize appends every shape not already in the scene and records them as a
// single history entry. It returns the shapes actually inserted.
func (s *Scene) Finalize(shapes ...dtshape.Shape) []dtshape.Shape {
	var inserted []dtshape.Shape
	for _, sh := range shapes {
		if sh == nil || s.Contains(sh) {
			continue
		}
		s.shapes = append(s.shapes, sh)
		inserted = append(inserted, sh)
	}
	if len(inserted) > 0 {
		s.History.Push(inserted)
	}
	return inserted
}

// Remove deletes sh from the scene. The shaft or head of a member arrow
// removes the whole arrow. Non-members are ignored.
func (s *Scene) Remove(sh dtshape.Shape) bool {
	i := s.index(sh)
	if i == -1 {
		i = s.ownerIndex(sh)
	}
	if i == -1 {
		return false
	}
	s.shapes = slices.Delete(s.shapes, i, i+1)
	return true
}

// Undo pops the newest history entry and removes its shapes. Shapes that
// were already erased are skipped. It returns the shapes removed.
func (s *Scene) Undo() []dtshape.Shape {
	entry := s.History.Pop()
	var removed []dtshape.Shape
	for _, sh := range entry {
		if s.Remove(sh) {
			removed = append(removed, sh)
		}
	}
	return removed
}

// Shapes returns a copy of the scene in insertion order.
func (s *Scene) Shapes() []dtshape.Shape {
	return slices.Clone(s.shapes)
}

func (s *Scene) Contains(sh dtshape.Shape) bool {
	return s.index(sh) != -1
}

func (s *Scene) Len() int {
	return len(s.shapes)
}

// Clear empties both the scene and its history.
func (s *Scene) Clear() {
	s.shapes = nil
	s.History.Clear()
}

func (s *Scene) index(sh dtshape.Shape) int {
	if sh == nil {
		return -1
	}
	return slices.IndexFunc(s.shapes, func(member dtshape.Shape) bool {
		return member == sh
	})
}

func (s *Scene) ownerIndex(sh dtshape.Shape) int {
	switch part := sh.(type) {
	case *dtshape.Line:
		return slices.IndexFunc(s.shapes, func(member dtshape.Shape) bool {
			a, ok := member.(*dtshape.Arrow)
			return ok && a.Shaft == part
		})
	case *dtshape.Polygon:
		return slices.IndexFunc(s.shapes, func(member dtshape.Shape) bool {
			a, ok := member.(*dtshape.Arrow)
			return ok && a.Head == part
		})
	}
	return -1
}
