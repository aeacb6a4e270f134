package editor

import (
	"golang.org/x/image/math/fixed"

	"github.com/textedit/richcore/linelayout"
)

// MousePress begins a drag selection at the document-space point (x,
// y), clearing any prior selection and placing the cursor at the
// closest codepoint, per §4.H "Mouse press".
func (e *Editor) MousePress(x, y fixed.Int26_6) {
	e.cursor.CodepointIndex = e.closestCodepoint(x, y)
	e.ClearSelection()
	e.clearDesired()
	e.dragging = true
}

// MouseMove extends the selection toward the closest codepoint to (x,
// y) while a button is held; it is a no-op outside a MousePress/
// MouseRelease drag, per §4.H "Mouse move".
func (e *Editor) MouseMove(x, y fixed.Int26_6) {
	if !e.dragging {
		return
	}
	e.cursor.CodepointIndex = e.closestCodepoint(x, y)
	e.clearDesired()
}

// MouseRelease ends the drag, preserving whatever selection resulted,
// per §4.H "Mouse release".
func (e *Editor) MouseRelease() {
	e.dragging = false
}

// closestCodepoint finds the codepoint whose glyph is closest to the
// document-space point (x, y): the line whose vertical extent contains
// y (clamped to the first/last line), then that line's closest
// codepoint to x via lineCodepointIndexAtX.
func (e *Editor) closestCodepoint(x, y fixed.Int26_6) int {
	if len(e.lines) == 0 {
		return 0
	}
	li := closestLineAtY(e.lines, y)
	return lineCodepointIndexAtX(e.lines[li], x)
}

func closestLineAtY(lines []linelayout.Line, y fixed.Int26_6) int {
	for i, l := range lines {
		if y < l.MaxY || i == len(lines)-1 {
			return i
		}
	}
	return len(lines) - 1
}

// Scroll nudges the scroll target by (dx, dy) pixels; it never touches
// the selection, per §4.H "Scroll" (scrolling is purely a viewport
// operation, distinct from cursor motion).
func (e *Editor) Scroll(dx, dy fixed.Int26_6) {
	e.scroll.TargetX += dx
	e.scroll.TargetY += dy
}

// ScrollAbsolute01 sets the scroll target along axis (0=X, 1=Y) to
// fraction t in [0,1] of the content extent: the widest line's width
// for X, the last line's MaxY for Y. The viewport size is not
// subtracted, so t is not a fraction of the scrollbar's travel. The
// resolver clamps the target to valid bounds on the next Draw.
func (e *Editor) ScrollAbsolute01(axis int, t float32) {
	if len(e.lines) == 0 {
		return
	}
	switch axis {
	case 0:
		width := e.lines[0].Width
		for _, l := range e.lines {
			if l.Width > width {
				width = l.Width
			}
		}
		e.scroll.TargetX = fixed.Int26_6(t * float32(width))
	default:
		last := e.lines[len(e.lines)-1]
		e.scroll.TargetY = fixed.Int26_6(t * float32(last.MaxY))
	}
}
