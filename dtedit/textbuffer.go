package dtedit

import "unicode"

type KeyCode int

const (
	KeyRune KeyCode = iota
	KeyBackspace
	KeyReturn
)

type Key struct {
	Code KeyCode
	Rune rune
}

func RuneKey(r rune) Key {
	return Key{Code: KeyRune, Rune: r}
}

// TextBuffer accumulates typed runes until it is committed. Edits after the
// commit are ignored.
type TextBuffer struct {
	runes     []rune
	committed bool
}

func (b *TextBuffer) Insert(r rune) bool {
	if b.committed || !unicode.IsPrint(r) {
		return false
	}
	b.runes = append(b.runes, r)
	return true
}

func (b *TextBuffer) Backspace() bool {
	if b.committed || len(b.runes) == 0 {
		return false
	}
	b.runes = b.runes[:len(b.runes)-1]
	return true
}

func (b *TextBuffer) String() string {
	return string(b.runes)
}

func (b *TextBuffer) Commit() string {
	b.committed = true
	return b.String()
}

func (b *TextBuffer) Committed() bool {
	return b.committed
}
