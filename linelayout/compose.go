package linelayout

import (
	"golang.org/x/image/math/fixed"

	"github.com/textedit/richcore/buffer"
	"github.com/textedit/richcore/shape"
)

// Builder runs Components E (Run Flow & Wrap) and F (Line Model &
// Flush) over a shaped run stream, producing laid-out Lines. Component
// G (the second-pass scroll/alignment/visibility resolution) lives in
// scroll.go and is invoked separately once all lines exist.
type Builder struct {
	// Wrap enables soft-wrap; when false a paragraph never breaks
	// except on LINE_HARD runs.
	Wrap bool
	// FrameWidth is the wrap width in pixels (fixed.Int26_6). Ignored
	// when Wrap is false.
	FrameWidth fixed.Int26_6
	// PinnedAlignment overrides the direction-derived alignment for
	// every line when non-nil.
	PinnedAlignment *Alignment

	lines []Line

	// per-paragraph composition state (§4.E).
	runningAdvance     fixed.Int26_6
	currentDirection   shape.Direction
	paragraphDirection shape.Direction
	scratch            []Glyph
	haveDirection      bool

	// building is the line currently accumulating glyphs, across
	// possibly several flushDirection/appendToLine calls, until
	// closeLine finalizes it.
	building *Line

	cursor Cursor
	// cursorLine indexes the most recently closed line that claimed
	// HasCursor, or -1. Every line whose codepoints are all <= the
	// cursor qualifies, so only the latest (closest-preceding) one may
	// keep the flag; closeLine revokes it from the previous holder.
	cursorLine int
}

// Build re-lays-out the full run stream from scratch and returns the
// resulting lines. buf supplies each codepoint's cached LineSoft break
// flag for the wrap scanner; hard breaks come from the runs' LineHard
// flag.
func (b *Builder) Build(buf *buffer.Buffer, runs []shape.Run) []Line {
	b.lines = nil
	b.runningAdvance = 0
	b.scratch = b.scratch[:0]
	b.haveDirection = false
	b.cursorLine = -1

	for _, run := range runs {
		if run.Flags&shape.ParagraphDirection != 0 {
			b.paragraphDirection = run.ParagraphDirection
		}
		if b.haveDirection && run.Direction != b.currentDirection {
			b.flushDirection(buf)
		}
		b.currentDirection = run.Direction
		b.haveDirection = true
		b.composeRun(run)
		if run.Flags&shape.LineHard != 0 {
			b.flushDirection(buf)
			b.closeLine(buf, true)
		}
	}
	// A trailing direction accumulation with no hard break (shouldn't
	// normally happen, since ShapeParagraph always ends LINE_HARD, but
	// guards against a run stream built some other way).
	if len(b.scratch) > 0 {
		b.flushDirection(buf)
		b.closeLine(buf, true)
	}
	stackLineOffsets(b.lines)
	return b.lines
}

// stackLineOffsets assigns each line's MinY/MaxY by stacking ascents
// and descents top to bottom, the same accumulation the teacher's
// calculateYOffsets performs over its own line slice.
func stackLineOffsets(lines []Line) {
	var y fixed.Int26_6
	var prevDescent fixed.Int26_6
	for i := range lines {
		y += prevDescent + lines[i].Ascent
		lines[i].MinY = y - lines[i].Ascent
		lines[i].MaxY = y + lines[i].Descent
		prevDescent = lines[i].Descent
	}
}

// composeRun appends one run's glyphs into the current-direction
// scratch buffer. LTR runs append to the tail; RTL runs prepend, so
// that by the time the direction is flushed the scratch holds glyphs
// in global visual left-to-right order regardless of how many
// script/font sub-runs the shaper split the direction into.
func (b *Builder) composeRun(run shape.Run) {
	converted := make([]Glyph, 0, len(run.Glyphs))
	var x fixed.Int26_6
	for _, g := range run.Glyphs {
		converted = append(converted, Glyph{
			Glyph:     g,
			X:         x,
			RuneIndex: g.ClusterIndex,
			FontID:    run.FontID,
			Direction: run.Direction,
		})
		x += g.XAdvance
	}
	if run.Direction == shape.RTL {
		b.scratch = append(converted, b.scratch...)
	} else {
		b.scratch = append(b.scratch, converted...)
	}
}

// scanOrder returns indices into scratch in natural reading order for
// the accumulated direction: ascending for LTR, descending for RTL
// (since break opportunities on an RTL run live at its visual right
// edge, which is scratch's high-index end: composeRun leaves scratch in
// visual left-to-right order).
func scanOrder(n int, dir shape.Direction) []int {
	order := make([]int, n)
	if dir == shape.RTL {
		for i := 0; i < n; i++ {
			order[i] = n - 1 - i
		}
	} else {
		for i := 0; i < n; i++ {
			order[i] = i
		}
	}
	return order
}

// flushDirection hands the accumulated current-direction scratch to the
// wrap scanner (if wrapping) or a single unconditional append
// (otherwise), emptying scratch either way.
func (b *Builder) flushDirection(buf *buffer.Buffer) {
	if len(b.scratch) == 0 {
		return
	}
	if !b.Wrap {
		b.appendToLine(b.scratch)
		b.scratch = b.scratch[:0]
		return
	}
	b.wrapScan(buf)
}

// wrapScan implements the §4.E wrap-decision scan: it walks scratch in
// natural-visual order, accumulating advances, and closes a line at the
// last soft break if the frame width is exceeded, else at the last
// shape break, else at the current glyph.
func (b *Builder) wrapScan(buf *buffer.Buffer) {
	for len(b.scratch) > 0 {
		order := scanOrder(len(b.scratch), b.currentDirection)
		lastSoft := -1
		lastShape := -1
		broke := -1
		for scanPos, idx := range order {
			g := b.scratch[idx]

			// Check overflow against a tentative advance before this
			// glyph's own break opportunity is recorded, so a break only
			// ever lands at a strictly prior opportunity; only when none
			// exists yet does the current glyph itself become the
			// (forced) break point.
			if b.runningAdvance+advanceMagnitude(g.XAdvance) > b.FrameWidth {
				switch {
				case lastSoft >= 0:
					broke = lastSoft
				case lastShape >= 0:
					broke = lastShape
				default:
					broke = scanPos
				}
				break
			}

			b.runningAdvance += advanceMagnitude(g.XAdvance)
			flags := buf.At(clampIndex(buf, g.RuneIndex)).Break
			if flags&buffer.LineSoft != 0 {
				lastSoft = scanPos
			}
			if g.Flags&shape.NoBreak == 0 {
				lastShape = scanPos
			}
		}
		if broke < 0 {
			// The whole scratch buffer fits; flush it all to one line
			// and carry the leftover running_advance into the next
			// direction segment of the same visual line.
			b.appendToLine(reorder(b.scratch, order))
			b.scratch = b.scratch[:0]
			return
		}
		prefixLen := broke + 1
		prefixIdx := order[:prefixLen]
		suffixIdx := order[prefixLen:]
		b.appendToLine(reorder(b.scratch, prefixIdx))
		b.closeLine(buf, false)
		b.runningAdvance = 0
		b.scratch = reorder(b.scratch, suffixIdx)
	}
}

// reorder returns the elements of scratch at the given indices, in
// index order, as a fresh slice in visual left-to-right order (the
// order appendToLine expects).
func reorder(scratch []Glyph, idx []int) []Glyph {
	sorted := append([]int(nil), idx...)
	// idx is in scan order, not visual order; sort ascending to recover
	// visual left-to-right order for the line appender.
	for i := 1; i < len(sorted); i++ {
		for j := i; j > 0 && sorted[j-1] > sorted[j]; j-- {
			sorted[j-1], sorted[j] = sorted[j], sorted[j-1]
		}
	}
	out := make([]Glyph, len(sorted))
	for i, k := range sorted {
		out[i] = scratch[k]
	}
	return out
}

func advanceMagnitude(a fixed.Int26_6) fixed.Int26_6 {
	if a < 0 {
		return -a
	}
	return a
}

func clampIndex(buf *buffer.Buffer, i int) int {
	if i < 0 {
		return 0
	}
	if n := buf.Len(); n > 0 && i >= n {
		return n - 1
	}
	return i
}

// appendToLine writes glyphs (already in visual left-to-right order)
// into the line currently being built, positioning each one at the
// line's running X offset.
func (b *Builder) appendToLine(glyphs []Glyph) {
	if b.building == nil {
		b.building = &Line{Direction: b.paragraphDirection}
	}
	x := b.building.Width
	for i := range glyphs {
		glyphs[i].X = x
		x += glyphs[i].Glyph.XAdvance
	}
	b.building.Glyphs = append(b.building.Glyphs, glyphs...)
	b.building.Width = x
}

// closeLine finalizes the line under construction (computing its
// glyph box and codepoint range) and starts a new one. hardBreak
// records whether this close was due to LINE_HARD (a real paragraph
// break) as opposed to a soft wrap; it only matters when no glyphs have
// been appended: a hard break still emits an empty line, a soft wrap
// emits nothing.
func (b *Builder) closeLine(buf *buffer.Buffer, hardBreak bool) {
	if b.building == nil {
		if !hardBreak {
			return
		}
		b.building = &Line{Direction: b.paragraphDirection}
	}
	line := b.computeLineModel(*b.building)
	if line.HasCursor {
		if b.cursorLine >= 0 {
			b.lines[b.cursorLine].HasCursor = false
		}
		b.cursorLine = len(b.lines)
	}
	b.lines = append(b.lines, line)
	b.building = nil
	b.runningAdvance = 0
}
