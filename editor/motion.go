package editor

import (
	"golang.org/x/image/math/fixed"

	"github.com/textedit/richcore/buffer"
	"github.com/textedit/richcore/linelayout"
	"github.com/textedit/richcore/shape"
)

// MoveCaret advances the cursor by one step of the given granularity in
// direction (+1 forward, -1 backward). extend controls whether the
// selection grows with the cursor or the existing selection is
// collapsed toward the motion direction instead, per §4.H "Move
// cursor".
func (e *Editor) MoveCaret(g Granularity, direction int, extend bool) {
	if direction == 0 {
		return
	}
	switch g {
	case ByCodepoint, ByGrapheme, ByWord:
		e.moveHorizontal(g, direction, extend)
	case ByLine:
		e.moveLines(direction, extend)
	case ByParagraph:
		e.moveParagraph(direction, extend)
	case ByPage:
		e.movePage(direction, extend)
	}
}

// Home moves the cursor to the start of its current line's codepoint
// range; End to its end, per §4.H "Home/End".
func (e *Editor) Home(extend bool) { e.snapToLineEdge(true, extend) }
func (e *Editor) End(extend bool)  { e.snapToLineEdge(false, extend) }

func (e *Editor) snapToLineEdge(home bool, extend bool) {
	li := e.cursor.LineIndex
	if li < 0 || li >= len(e.lines) {
		return
	}
	line := e.lines[li]
	if home {
		e.cursor.CodepointIndex = line.MinCP
	} else {
		e.cursor.CodepointIndex = line.MaxCP
	}
	e.afterMotion(extend)
	e.moveToView = true
}

func (e *Editor) hasSelection() bool {
	return e.cursor.CodepointIndex != e.selection.CodepointIndex
}

// collapseTowardDirection, on a non-extending motion over an existing
// selection, moves the cursor to whichever end the direction points
// at instead of stepping further, per §4.H.
func (e *Editor) collapseTowardDirection(direction int) bool {
	if !e.hasSelection() {
		return false
	}
	start, end := e.Selection()
	if direction < 0 {
		e.cursor.CodepointIndex = start
	} else {
		e.cursor.CodepointIndex = end
	}
	e.ClearSelection()
	return true
}

func (e *Editor) afterMotion(extend bool) {
	if !extend {
		e.ClearSelection()
	}
	e.clearDesired()
}

// moveHorizontal implements the codepoint/grapheme/word granularities.
func (e *Editor) moveHorizontal(g Granularity, direction int, extend bool) {
	if !extend && e.collapseTowardDirection(direction) {
		e.moveToView = true
		return
	}
	idx := e.cursor.CodepointIndex
	n := e.buf.Len()
	switch g {
	case ByCodepoint:
		idx = clampInt(idx+direction, 0, n)
	case ByGrapheme:
		idx = stepToFlag(e.buf, idx, direction, buffer.Grapheme)
	case ByWord:
		idx = stepToFlag(e.buf, idx, direction, buffer.Word)
	}
	e.cursor.CodepointIndex = idx
	e.afterMotion(extend)
	e.moveToView = true
}

// stepToFlag steps from idx in direction until it passes a codepoint
// whose cached break flags carry flag, or the buffer end.
func stepToFlag(buf *buffer.Buffer, idx, direction int, flag buffer.BreakFlags) int {
	n := buf.Len()
	i := idx
	for {
		i += direction
		if i <= 0 || i >= n {
			return clampInt(i, 0, n)
		}
		checkAt := i - 1
		if direction < 0 {
			checkAt = i
		}
		if checkAt >= 0 && checkAt < n && buf.At(checkAt).Break&flag != 0 {
			return i
		}
	}
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// moveLines implements vertical single-line motion, remapping the
// cursor to the closest codepoint at desired_x on the target line.
func (e *Editor) moveLines(direction int, extend bool) {
	if len(e.lines) == 0 {
		return
	}
	if !extend && e.collapseTowardDirection(direction) {
		return
	}
	li := clampInt(e.cursor.LineIndex, 0, len(e.lines)-1)
	if !e.keepDesiredX {
		e.cursor.DesiredX = e.cursorXOnLine(li)
	}
	li = clampInt(li+direction, 0, len(e.lines)-1)
	e.setLineCursor(li, extend)
	e.keepDesiredX = true
}

// moveParagraph skips empty lines, advances across at least one
// non-empty line, then stops before re-entering empty lines.
func (e *Editor) moveParagraph(direction int, extend bool) {
	if len(e.lines) == 0 {
		return
	}
	if !extend && e.collapseTowardDirection(direction) {
		return
	}
	li := clampInt(e.cursor.LineIndex, 0, len(e.lines)-1)
	for li+direction >= 0 && li+direction < len(e.lines) && isEmptyLine(e.lines[li+direction]) {
		li += direction
	}
	advanced := false
	for li+direction >= 0 && li+direction < len(e.lines) && !isEmptyLine(e.lines[li+direction]) {
		li += direction
		advanced = true
		next := li + direction
		if !advanced || next < 0 || next >= len(e.lines) || isEmptyLine(e.lines[next]) {
			break
		}
	}
	li = clampInt(li, 0, len(e.lines)-1)
	e.setLineCursor(li, extend)
}

func isEmptyLine(l linelayout.Line) bool {
	return len(l.Glyphs) == 0
}

// movePage moves desired_y by one viewport height and selects the
// closest line whose min_y is on the far side of it in the motion
// direction, per §4.H "Page".
func (e *Editor) movePage(direction int, extend bool) {
	if len(e.lines) == 0 {
		return
	}
	if !extend && e.collapseTowardDirection(direction) {
		return
	}
	li := clampInt(e.cursor.LineIndex, 0, len(e.lines)-1)
	if !e.keepDesiredY {
		e.cursor.DesiredY = e.lines[li].MinY
	}
	e.cursor.DesiredY += fixed.Int26_6(direction) * e.lastViewportHeight
	first, last := e.lines[0].MinY, e.lines[len(e.lines)-1].MaxY
	if e.cursor.DesiredY < first {
		e.cursor.DesiredY = first
	}
	if e.cursor.DesiredY > last {
		e.cursor.DesiredY = last
	}
	target := closestLineAtOrPast(e.lines, e.cursor.DesiredY, direction)
	e.setLineCursor(target, extend)
	e.keepDesiredY = true
}

func closestLineAtOrPast(lines []linelayout.Line, y fixed.Int26_6, direction int) int {
	best := 0
	if direction >= 0 {
		for i, l := range lines {
			if l.MinY >= y {
				return i
			}
			best = i
		}
		return best
	}
	for i := len(lines) - 1; i >= 0; i-- {
		if lines[i].MinY <= y {
			return i
		}
		best = i
	}
	return best
}

// setLineCursor remaps the cursor to the closest codepoint on line li
// at the cursor's desired_x, per line_codepoint_index_at_x.
func (e *Editor) setLineCursor(li int, extend bool) {
	li = clampInt(li, 0, len(e.lines)-1)
	line := e.lines[li]
	e.cursor.LineIndex = li
	e.cursor.CodepointIndex = lineCodepointIndexAtX(line, e.cursor.DesiredX)
	if !extend {
		e.ClearSelection()
	}
	e.moveToView = true
}

// lineCodepointIndexAtX finds the codepoint whose glyph centerline is
// first >= x; for RTL lines the snap target is the previous codepoint,
// per §4.H.
func lineCodepointIndexAtX(line linelayout.Line, x fixed.Int26_6) int {
	if len(line.Glyphs) == 0 {
		return line.MinCP
	}
	for i, g := range line.Glyphs {
		center := g.X + g.XAdvance/2
		if center >= x {
			if g.Direction == shape.RTL && i > 0 {
				return line.Glyphs[i-1].RuneIndex
			}
			return g.RuneIndex
		}
	}
	return line.Glyphs[len(line.Glyphs)-1].RuneIndex
}

// cursorXOnLine returns the cursor's current pixel column on line li,
// used to seed desired_x the first time vertical motion starts.
func (e *Editor) cursorXOnLine(li int) fixed.Int26_6 {
	if li < 0 || li >= len(e.lines) {
		return 0
	}
	line := e.lines[li]
	if line.HasCursor {
		return line.CursorPos.X
	}
	for _, g := range line.Glyphs {
		if g.RuneIndex == e.cursor.CodepointIndex {
			return g.X
		}
	}
	return 0
}
