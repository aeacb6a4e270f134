// Package linelayout implements Components E, F and G: bidi run composition
// and soft-wrap (Run Flow & Wrap), per-line glyph/selection/cursor
// computation (Line Model & Flush), and the second-pass scroll,
// alignment and visibility resolution that produces the externally
// visible Draw List.
package linelayout

import (
	"golang.org/x/image/math/fixed"

	"github.com/textedit/richcore/shape"
)

// Alignment is the caller-requested (or direction-derived) horizontal
// alignment of a line.
type Alignment uint8

const (
	AlignStart Alignment = iota
	AlignCenter
	AlignEnd
)

// Flags mark frame-scoped viewport behavior requests.
type Flags uint8

const (
	// MoveViewportToIncludeCursor asks the second pass to adjust scroll
	// so the cursor's bounding box lies inside the viewport.
	MoveViewportToIncludeCursor Flags = 1 << iota
)

// Glyph is one positioned glyph ready to draw, in final line-local
// visual order (left edge of the line is x=0).
type Glyph struct {
	shape.Glyph
	X, Y        fixed.Int26_6
	RuneIndex   int
	FontID      int
	Direction   shape.Direction
}

// Command is one entry of the externally visible draw list: a glyph
// positioned in viewport space, after scroll and alignment translation.
// Visible is only meaningful after the second pass runs.
type Command struct {
	Glyph       shape.Glyph
	FontID      int
	Pos         fixed.Point26_6
	RuneIndex   int
	LineIndex   int
	Visible     bool
}

// SelectionRect is one contiguous selection box within a single
// direction run of a single line.
type SelectionRect struct {
	Min, Max  fixed.Point26_6
	LineIndex int
}

// Box is an axis-aligned fixed-point rectangle; it mirrors
// fixed.Rectangle26_6 but with explicit Min/Max accumulation semantics
// starting from an "empty" box (detected by Empty()).
type Box struct {
	Min, Max fixed.Point26_6
	set      bool
}

// Empty reports whether the box has never had a point unioned into it.
func (b Box) Empty() bool { return !b.set }

// Union grows b to include p.
func (b *Box) Union(p fixed.Point26_6) {
	if !b.set {
		b.Min, b.Max = p, p
		b.set = true
		return
	}
	if p.X < b.Min.X {
		b.Min.X = p.X
	}
	if p.Y < b.Min.Y {
		b.Min.Y = p.Y
	}
	if p.X > b.Max.X {
		b.Max.X = p.X
	}
	if p.Y > b.Max.Y {
		b.Max.Y = p.Y
	}
}

// Line is one laid-out, wrapped, visually-ordered line of text.
type Line struct {
	Glyphs       []Glyph
	Direction    shape.Direction
	Alignment    Alignment
	Width        fixed.Int26_6
	MinY, MaxY   fixed.Int26_6
	Ascent       fixed.Int26_6
	Descent      fixed.Int26_6
	GlyphBox     Box
	MinCP, MaxCP int
	Selections   []SelectionRect
	// CursorPos is the line-local caret position; it is meaningful only
	// when HasCursor is set, which only the line containing the cursor
	// keeps.
	CursorPos fixed.Point26_6
	HasCursor bool
	// ClosestCP is closest_codepoint_index_to_cursor_plus_one (§3,
	// §4.F): one past the largest codepoint index on this line whose
	// visual position is <= the logical cursor. Only meaningful when
	// HasCursor is set.
	ClosestCP int
}

// Cursor is the logical editing position the layout engine draws a
// caret for and snaps selection highlighting around.
type Cursor struct {
	CodepointIndex int
	SelectionStart int
	SelectionEnd   int
}

// Scroll is the engine's scroll state, in pixels.
type Scroll struct {
	X, Y             fixed.Int26_6
	TargetX, TargetY fixed.Int26_6
}

// ThumbExtent is a scrollbar's visible range within [0,1].
type ThumbExtent struct {
	Start, End float32
}

// CursorResult is the draw list's cursor output (§3, §4.F): the
// caret's position in viewport space (after scroll/alignment
// translation) and closest_codepoint_index_to_cursor_plus_one, the
// largest codepoint index whose visual position is <= the logical
// cursor, plus one. OK is false when no line currently claims the
// cursor (e.g. an empty layout).
type CursorResult struct {
	Pos       fixed.Point26_6
	LineIndex int
	ClosestCP int
	OK        bool
}
