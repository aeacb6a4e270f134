package editor

import (
	"golang.org/x/image/math/fixed"

	"github.com/textedit/richcore/arena"
	"github.com/textedit/richcore/buffer"
	"github.com/textedit/richcore/fontreg"
	"github.com/textedit/richcore/linelayout"
	"github.com/textedit/richcore/shape"
)

// defaultUndoCapacity is the number of snapshots the ring-backed undo
// log retains before the oldest ones start aging out on wraparound.
const defaultUndoCapacity = 64

// defaultFrameArenaCapacity is nominal; the frame arena in this package
// only gates lifetime bookkeeping (see types.go), never real byte sizes.
const defaultFrameArenaCapacity = 1

// New constructs an empty Editor with a fixed buffer capacity.
func New(capacity int) *Editor {
	return &Editor{
		buf:             buffer.New(capacity),
		fonts:           fontreg.New(),
		shaper:          shape.NewDriver(),
		frameArena:      arena.NewArena(defaultFrameArenaCapacity),
		undo:            newUndoLog(defaultUndoCapacity),
		DisplayNewlines: true,
	}
}

// Fonts returns the font registry so the caller can Register faces
// before the first Draw.
func (e *Editor) Fonts() *fontreg.Registry { return e.fonts }

// Buffer exposes the underlying character buffer for callers that need
// read-only introspection (e.g. SelectedText).
func (e *Editor) Buffer() *buffer.Buffer { return e.buf }

// Len returns the number of codepoints currently stored.
func (e *Editor) Len() int { return e.buf.Len() }

// Text returns the buffer's contents as a UTF-8 string.
func (e *Editor) Text() string { return e.buf.Text() }

// Selection reports the selected codepoint range as [start,end).
func (e *Editor) Selection() (start, end int) {
	start, end = e.cursor.CodepointIndex, e.selection.CodepointIndex
	if start > end {
		start, end = end, start
	}
	return start, end
}

// SelectedText returns the UTF-8 text of the current selection.
func (e *Editor) SelectedText() string {
	start, end := e.Selection()
	if start == end {
		return ""
	}
	return string(runesOf(e.buf, start, end))
}

func runesOf(buf *buffer.Buffer, start, end int) []rune {
	out := make([]rune, 0, end-start)
	for i := start; i < end; i++ {
		out = append(out, buf.At(i).Codepoint)
	}
	return out
}

// ClearSelection collapses the selection onto the cursor.
func (e *Editor) ClearSelection() {
	e.selection = e.cursor
}

// clearDesired drops the "keep desired column/row" flags, per §4.H
// "clear keep desired X/Y flags" on any edit.
func (e *Editor) clearDesired() {
	e.keepDesiredX = false
	e.keepDesiredY = false
}

// pushUndo records the pre-edit state. Called before any destructive
// operation (§4.I Push); a failed push (ring exhaustion or the header's
// token aging out between steps) is silent, the edit still proceeds.
func (e *Editor) pushUndo() {
	e.undo.push(e.buf, e.lines, e.scroll, e.cursor, e.selection)
}

// InsertCodepoint appends a single codepoint at the cursor, deleting any
// selection first, per §4.H "Insert codepoint".
func (e *Editor) InsertCodepoint(cp rune, style buffer.Style) {
	e.pushUndo()
	e.deleteSelectionNoUndo()
	e.buf.InsertChar(e.cursor.CodepointIndex, buffer.Character{Codepoint: cp, Style: style})
	e.cursor.CodepointIndex++
	e.ClearSelection()
	e.moveToView = true
	e.clearDesired()
}

// InsertText decodes and inserts UTF-8 text one codepoint at a time,
// deleting the current selection first as one undo step, per §4.H
// "Insert UTF-8 text".
func (e *Editor) InsertText(s string, style buffer.Style) {
	e.pushUndo()
	e.deleteSelectionNoUndo()
	pos := e.cursor.CodepointIndex
	n := 0
	for _, r := range s {
		if ins := e.buf.InsertCodepoints(pos+n, style, []rune{r}); ins == 0 {
			break
		}
		n++
	}
	e.cursor.CodepointIndex = pos + n
	e.ClearSelection()
	e.moveToView = true
	e.clearDesired()
}

// DeleteSelection removes the selected range, collapsing the cursor to
// its start, per §4.H "Delete selected range". It is a no-op with no
// selection.
func (e *Editor) DeleteSelection() {
	start, end := e.Selection()
	if start == end {
		return
	}
	e.pushUndo()
	e.deleteSelectionNoUndo()
	e.clearDesired()
}

// deleteSelectionNoUndo performs the delete without pushing its own undo
// step, for callers (Insert*) that already pushed one for the whole
// compound operation.
func (e *Editor) deleteSelectionNoUndo() {
	start, end := e.Selection()
	if start == end {
		return
	}
	e.buf.DeleteRange(start, end)
	e.cursor.CodepointIndex = start
	e.ClearSelection()
}

// ToggleStyle XORs flag over every codepoint's style in the current
// selection, per §4.H "Style toggle".
func (e *Editor) ToggleStyle(flag buffer.Style) {
	start, end := e.Selection()
	if start == end {
		return
	}
	e.pushUndo()
	for i := start; i < end; i++ {
		e.buf.SetStyle(i, e.buf.At(i).Style^flag)
	}
}

// Undo reverts to the previous snapshot, if any is still valid (§4.I).
func (e *Editor) Undo() bool {
	snap, ok := e.undo.undo(e.buf, e.lines, e.scroll, e.cursor, e.selection)
	if !ok {
		return false
	}
	e.applySnapshot(snap)
	return true
}

// Redo re-applies the next snapshot, if any is still valid (§4.I).
func (e *Editor) Redo() bool {
	snap, ok := e.undo.redo()
	if !ok {
		return false
	}
	e.applySnapshot(snap)
	return true
}

func (e *Editor) applySnapshot(snap undoSnapshot) {
	e.buf.DeleteRange(0, e.buf.Len())
	for i, c := range snap.text {
		e.buf.InsertChar(i, c)
	}
	e.lines = snap.lines
	e.scroll.TargetX = snap.scrollX
	e.scroll.TargetY = snap.scrollY
	e.cursor = snap.cursor
	e.selection = snap.selection
	e.buf.Changed()
}

// Draw re-shapes and re-lays-out the buffer, resolves scroll/alignment/
// visibility, and returns the externally visible draw list. It is the
// package's single per-frame entry point (§5 "exactly one draw per
// frame rebuilds the full layout"). cursor is the caret's draw position
// in viewport space, valid only when cursorOK is true (e.g. false for
// an empty layout); closestCPPlusOne is
// closest_codepoint_index_to_cursor_plus_one (§3, §4.F).
func (e *Editor) Draw(ppem fixed.Int26_6, vp Viewport) (commands []linelayout.Command, selections []linelayout.SelectionRect, thumb linelayout.ThumbExtent, cursor fixed.Point26_6, closestCPPlusOne int, cursorOK bool) {
	mark := e.frameArena.Open()
	defer e.frameArena.Close(mark)

	populateBreakFlags(e.buf)
	e.shaper.ShapeParagraph(e.buf, e.fonts, shape.LTR, ppem)

	e.lastViewportHeight = vp.Height
	e.build.Wrap = e.WrapEnabled
	e.build.FrameWidth = vp.Width
	e.build.PinnedAlignment = e.Alignment
	e.build.SetCursor(linelayout.Cursor{
		CodepointIndex: e.cursor.CodepointIndex,
		SelectionStart: min(e.cursor.CodepointIndex, e.selection.CodepointIndex),
		SelectionEnd:   max(e.cursor.CodepointIndex, e.selection.CodepointIndex),
	})
	e.lines = e.build.Build(e.buf, e.shaper.Runs())
	e.resolveCursorLine()

	flags := linelayout.Flags(0)
	if e.moveToView {
		flags |= linelayout.MoveViewportToIncludeCursor
	}
	e.moveToView = false

	e.commands, e.selections, e.thumb, e.cursorResult = linelayout.Resolve(e.lines, vp, &e.scroll, flags, e.CursorThickness)
	// The synthetic trailing newline is laid out so the cursor can snap
	// past the last character, but it is not buffer text and gets no
	// draw command.
	kept := e.commands[:0]
	for _, c := range e.commands {
		if c.RuneIndex < e.buf.Len() {
			kept = append(kept, c)
		}
	}
	e.commands = kept
	if !e.DisplayNewlines {
		e.hideNewlineGlyphs()
	}
	return e.commands, e.selections, e.thumb, e.cursorResult.Pos, e.cursorResult.ClosestCP, e.cursorResult.OK
}

// hideNewlineGlyphs zeroes the width of draw commands for the buffer's
// newline codepoints when DisplayNewlines is off, per S4 "scaled_width
// == 0" for hidden newline glyphs.
func (e *Editor) hideNewlineGlyphs() {
	for i := range e.commands {
		idx := e.commands[i].RuneIndex
		if idx >= 0 && idx < e.buf.Len() && e.buf.At(idx).Codepoint == '\n' {
			e.commands[i].Glyph.Width = 0
			e.commands[i].Glyph.XAdvance = 0
		}
	}
}

// resolveCursorLine updates cursor.LineIndex to the line containing the
// cursor codepoint, per §3 "line_index... updated by layout".
func (e *Editor) resolveCursorLine() {
	for i, l := range e.lines {
		if l.HasCursor {
			e.cursor.LineIndex = i
			return
		}
	}
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
