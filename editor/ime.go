package editor

import "github.com/textedit/richcore/buffer"

// Compose pushes an in-progress IME composition string: it deletes the
// previous composition range without logging undo, inserts text at
// ime_start, and positions cursor/selection from cursorOffset/
// selectionLength, per §4.H "IME compose". A zero-length text signals
// commit: the composition range collapses and subsequent edits push
// undo normally again.
func (e *Editor) Compose(text string, cursorOffset, selectionLength int, style buffer.Style) {
	if e.imeLength > 0 {
		e.buf.DeleteRange(e.imeStart, e.imeStart+e.imeLength)
	} else {
		e.imeStart = e.cursor.CodepointIndex
	}
	pos := e.imeStart
	n := 0
	for _, r := range text {
		if ins := e.buf.InsertCodepoints(pos+n, style, []rune{r}); ins == 0 {
			break
		}
		n++
	}
	e.imeLength = n

	e.cursor.CodepointIndex = clampInt(e.imeStart+cursorOffset, 0, e.buf.Len())
	e.selection.CodepointIndex = clampInt(e.imeStart+cursorOffset+selectionLength, 0, e.buf.Len())
	e.clearDesired()
	e.moveToView = true

	if n == 0 {
		e.imeStart = 0
		e.imeLength = 0
	}
}
