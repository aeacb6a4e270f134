package linelayout

import (
	"golang.org/x/image/math/fixed"
)

// Viewport is the visible rectangle in document space, in pixels.
type Viewport struct {
	Width, Height fixed.Int26_6
}

// Resolve implements the §4.F second pass / §4.G Draw-List Builder: it
// clamps scroll, optionally nudges the viewport to keep the cursor
// visible, applies per-line alignment, translates every glyph and
// selection rectangle into viewport space, marks visibility, compacts
// off-screen selections, and computes scrollbar thumb extents.
//
// cursorThickness is the width reserved for the caret when computing
// max_scroll_x (§4.F step 1).
func Resolve(lines []Line, vp Viewport, scroll *Scroll, flags Flags, cursorThickness fixed.Int26_6) (commands []Command, selections []SelectionRect, thumb ThumbExtent, cursor CursorResult) {
	textWidth := maxLineWidth(lines)
	maxScrollX := fixed.Int26_6(0)
	if m := textWidth - vp.Width + cursorThickness; m > 0 {
		maxScrollX = m
	}
	maxScrollY := fixed.Int26_6(0)
	if len(lines) > 0 {
		last := lines[len(lines)-1]
		if m := last.MinY - last.Ascent; m > 0 {
			maxScrollY = m
		}
	}

	scroll.TargetX = clampFixed(scroll.TargetX, 0, maxScrollX)
	scroll.TargetY = clampFixed(scroll.TargetY, 0, maxScrollY)

	if flags&MoveViewportToIncludeCursor != 0 {
		moveToIncludeCursor(lines, vp, scroll)
	}

	scroll.X, scroll.Y = scroll.TargetX, scroll.TargetY

	for lineIdx, line := range lines {
		offX := alignmentOffsetX(line, textWidth)
		translateX := -scroll.X + offX
		translateY := -scroll.Y

		for _, g := range line.Glyphs {
			pos := fixed.Point26_6{X: g.X + translateX, Y: line.MinY + line.Ascent + translateY}
			visible := glyphVisible(pos, g, vp)
			commands = append(commands, Command{
				Glyph:     g.Glyph,
				FontID:    g.FontID,
				Pos:       pos,
				RuneIndex: g.RuneIndex,
				LineIndex: lineIdx,
				Visible:   visible,
			})
		}

		for _, sel := range line.Selections {
			sel.Min.X += translateX
			sel.Max.X += translateX
			sel.Min.Y = line.MinY + translateY
			// Deferred per §4.F step 6: fill max_y from the line's
			// visual height rather than the selection scan's own Y,
			// which never tracked a vertical extent.
			sel.Max.Y = line.MaxY + translateY
			if selectionVisible(sel, vp) {
				selections = append(selections, sel)
			}
		}

		if line.HasCursor {
			cursor = CursorResult{
				Pos:       fixed.Point26_6{X: line.CursorPos.X + translateX, Y: line.MinY + line.Ascent + translateY},
				LineIndex: lineIdx,
				ClosestCP: line.ClosestCP,
				OK:        true,
			}
		}
	}

	thumb = computeThumb(scroll, vp, textWidth, maxScrollY, lines)
	return commands, selections, thumb, cursor
}

func maxLineWidth(lines []Line) fixed.Int26_6 {
	var w fixed.Int26_6
	for _, l := range lines {
		if l.Width > w {
			w = l.Width
		}
	}
	return w
}

func clampFixed(v, lo, hi fixed.Int26_6) fixed.Int26_6 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// alignmentOffsetX implements §4.F step 3.
func alignmentOffsetX(line Line, textWidth fixed.Int26_6) fixed.Int26_6 {
	switch line.Alignment {
	case AlignCenter:
		return (textWidth - line.Width) / 2
	case AlignEnd:
		return textWidth - line.Width
	default:
		return 0
	}
}

// moveToIncludeCursor adjusts scroll.Target{X,Y} by the minimal amount
// needed to bring the cursor's line fully inside the viewport.
func moveToIncludeCursor(lines []Line, vp Viewport, scroll *Scroll) {
	for _, line := range lines {
		if !line.HasCursor {
			continue
		}
		if line.MinY < scroll.TargetY {
			scroll.TargetY = line.MinY
		} else if line.MaxY > scroll.TargetY+vp.Height {
			scroll.TargetY = line.MaxY - vp.Height
		}
		x := line.CursorPos.X
		if x < scroll.TargetX {
			scroll.TargetX = x
		} else if x > scroll.TargetX+vp.Width {
			scroll.TargetX = x - vp.Width
		}
		return
	}
}

// glyphVisible reports whether a translated glyph's bounding box
// overlaps the viewport.
func glyphVisible(pos fixed.Point26_6, g Glyph, vp Viewport) bool {
	min := fixed.Point26_6{X: pos.X + g.XOffset + g.XBearing, Y: pos.Y + g.YOffset - g.YBearing}
	max := min.Add(fixed.Point26_6{X: g.Width, Y: -g.Height})
	return rectsOverlap(min, max, fixed.Point26_6{}, fixed.Point26_6{X: vp.Width, Y: vp.Height})
}

func selectionVisible(sel SelectionRect, vp Viewport) bool {
	return rectsOverlap(sel.Min, sel.Max, fixed.Point26_6{}, fixed.Point26_6{X: vp.Width, Y: vp.Height})
}

func rectsOverlap(aMin, aMax, bMin, bMax fixed.Point26_6) bool {
	if aMin.X > aMax.X {
		aMin.X, aMax.X = aMax.X, aMin.X
	}
	if aMin.Y > aMax.Y {
		aMin.Y, aMax.Y = aMax.Y, aMin.Y
	}
	return aMin.X <= bMax.X && aMax.X >= bMin.X && aMin.Y <= bMax.Y && aMax.Y >= bMin.Y
}

// computeThumb implements §4.F step 7: scroll-thumb extents in [0,1]
// from the viewport over the content.
func computeThumb(scroll *Scroll, vp Viewport, textWidth, maxScrollY fixed.Int26_6, lines []Line) ThumbExtent {
	contentHeight := maxScrollY + vp.Height
	if contentHeight <= 0 {
		return ThumbExtent{Start: 0, End: 1}
	}
	start := float32(scroll.Y) / float32(contentHeight)
	end := float32(scroll.Y+vp.Height) / float32(contentHeight)
	if end > 1 {
		end = 1
	}
	if start < 0 {
		start = 0
	}
	return ThumbExtent{Start: start, End: end}
}
