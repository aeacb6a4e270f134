package linelayout

import (
	"golang.org/x/image/math/fixed"

	"github.com/textedit/richcore/shape"
)

// Cursor and selection state the line model snaps against while
// closing a line (§4.F). Set before calling Build.
func (b *Builder) SetCursor(c Cursor) { b.cursor = c }

// computeLineModel walks a finished line's glyphs once, computing the
// glyph-box union, codepoint range, cursor snap and per-run selection
// rectangles described in §4.F.
func (b *Builder) computeLineModel(line Line) Line {
	if len(line.Glyphs) == 0 {
		line.MinCP, line.MaxCP = -1, -1
		if b.PinnedAlignment != nil {
			line.Alignment = *b.PinnedAlignment
		} else {
			line.Alignment = directionAlignment(line.Direction)
		}
		return line
	}

	line.MinCP = line.Glyphs[0].RuneIndex
	line.MaxCP = line.Glyphs[0].RuneIndex
	var box Box
	var ascent fixed.Int26_6

	var curSel *SelectionRect
	var curSelDir shape.Direction
	selStart, selEnd := b.cursor.SelectionStart, b.cursor.SelectionEnd
	if selStart > selEnd {
		selStart, selEnd = selEnd, selStart
	}
	hasSelection := selStart != selEnd

	bestCursorGlyph := -1

	for i, g := range line.Glyphs {
		if g.RuneIndex < line.MinCP {
			line.MinCP = g.RuneIndex
		}
		if g.RuneIndex > line.MaxCP {
			line.MaxCP = g.RuneIndex
		}
		// Bounding box relative to the glyph's dot, per the freetype
		// glyph-metrics convention: Min is (XBearing, -YBearing), Max
		// grows by (Width, -Height) from there. The dot itself sits at
		// the glyph's pen position (X,Y) plus its shaping offset.
		dotX := g.X + g.XOffset
		dotY := g.YOffset
		min := fixed.Point26_6{X: dotX + g.XBearing, Y: dotY - g.YBearing}
		max := min.Add(fixed.Point26_6{X: g.Width, Y: -g.Height})
		box.Union(min)
		box.Union(max)
		if a := -g.YBearing; a > ascent {
			ascent = a
		}

		if g.RuneIndex <= b.cursor.CodepointIndex &&
			(bestCursorGlyph == -1 || g.RuneIndex >= line.Glyphs[bestCursorGlyph].RuneIndex) {
			bestCursorGlyph = i
		}

		if hasSelection && g.RuneIndex >= selStart && g.RuneIndex < selEnd {
			if curSel == nil || g.Direction != curSelDir {
				if curSel != nil {
					line.Selections = append(line.Selections, *curSel)
				}
				curSel = &SelectionRect{
					Min:       fixed.Point26_6{X: g.X, Y: 0},
					Max:       fixed.Point26_6{X: g.X + g.XAdvance, Y: 0},
					LineIndex: len(b.lines),
				}
				curSelDir = g.Direction
			} else {
				if g.X < curSel.Min.X {
					curSel.Min.X = g.X
				}
				if end := g.X + g.XAdvance; end > curSel.Max.X {
					curSel.Max.X = end
				}
			}
		} else if curSel != nil {
			line.Selections = append(line.Selections, *curSel)
			curSel = nil
		}
	}
	if curSel != nil {
		line.Selections = append(line.Selections, *curSel)
	}

	line.GlyphBox = box
	line.Ascent = ascent
	if d := box.Max.Y - box.Min.Y - ascent; d > 0 {
		line.Descent = d
	}
	if bestCursorGlyph >= 0 {
		g := line.Glyphs[bestCursorGlyph]
		line.HasCursor = true
		line.ClosestCP = g.RuneIndex + 1
		if g.Direction == shape.RTL {
			line.CursorPos = fixed.Point26_6{X: g.X + g.XAdvance, Y: 0}
		} else {
			line.CursorPos = fixed.Point26_6{X: g.X, Y: 0}
		}
	}

	if b.PinnedAlignment != nil {
		line.Alignment = *b.PinnedAlignment
	} else {
		line.Alignment = directionAlignment(line.Direction)
	}
	return line
}

func directionAlignment(dir shape.Direction) Alignment {
	if dir == shape.RTL {
		return AlignEnd
	}
	return AlignStart
}
