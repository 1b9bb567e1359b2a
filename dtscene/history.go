package dtscene

import "oss.terrastruct.com/drawtex/dtshape"

const HistoryCap = 20

// History is a bounded LIFO of finalized shape groups. Pushing beyond the
// capacity silently drops the oldest entry.
type History struct {
	cap     int
	entries [][]dtshape.Shape
}

func NewHistory(capacity int) *History {
	return &History{cap: capacity}
}

func (h *History) Push(entry []dtshape.Shape) {
	if h.cap <= 0 {
		return
	}
	h.entries = append(h.entries, entry)
	if len(h.entries) > h.cap {
		h.entries = append(h.entries[:0:0], h.entries[len(h.entries)-h.cap:]...)
	}
}

// Pop returns nil when empty.
func (h *History) Pop() []dtshape.Shape {
	if len(h.entries) == 0 {
		return nil
	}
	last := h.entries[len(h.entries)-1]
	h.entries = h.entries[:len(h.entries)-1]
	return last
}

func (h *History) Len() int {
	return len(h.entries)
}

func (h *History) Clear() {
	h.entries = nil
}
