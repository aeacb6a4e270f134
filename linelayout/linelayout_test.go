package linelayout

import (
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/image/math/fixed"

	"github.com/textedit/richcore/buffer"
	"github.com/textedit/richcore/shape"
)

// glyph is a small helper for building synthetic shape.Glyph values in
// tests without going through a real shaper.
func glyph(advance fixed.Int26_6, clusterIndex, runeCount int, noBreak bool) shape.Glyph {
	flags := shape.GlyphFlags(0)
	if noBreak {
		flags |= shape.NoBreak
	}
	return shape.Glyph{XAdvance: advance, ClusterIndex: clusterIndex, RuneCount: runeCount, Flags: flags, Width: fixed.I(1), Height: fixed.I(1)}
}

func run(dir shape.Direction, start, end int, hard bool, glyphs ...shape.Glyph) shape.Run {
	flags := shape.RunFlags(0)
	if hard {
		flags |= shape.LineHard
	}
	return shape.Run{Direction: dir, Flags: flags, RuneStart: start, RuneEnd: end, Glyphs: glyphs}
}

func plainBuffer(n int) *buffer.Buffer {
	b := buffer.New(n)
	b.InsertCodepoints(0, buffer.Regular, make([]rune, n))
	return b
}

func TestBuildSingleLineNoWrap(t *testing.T) {
	runs := []shape.Run{
		run(shape.LTR, 0, 5, true, glyph(fixed.I(10), 0, 5, false)),
	}
	b := &Builder{}
	lines := b.Build(plainBuffer(5), runs)
	require.Len(t, lines, 1)
	require.Len(t, lines[0].Glyphs, 1)
	require.Equal(t, 0, lines[0].MinCP)
}

func TestBuildHardBreakStartsNewLine(t *testing.T) {
	runs := []shape.Run{
		run(shape.LTR, 0, 1, true, glyph(fixed.I(10), 0, 1, false)),
		run(shape.LTR, 1, 2, true, glyph(fixed.I(10), 1, 1, false)),
	}
	b := &Builder{}
	lines := b.Build(plainBuffer(2), runs)
	require.Len(t, lines, 2)
}

func TestBuildWrapsAtShapeBreakWhenNoSoftBreak(t *testing.T) {
	// Three glyphs, each its own cluster (breakable), each 10px wide; a
	// frame width of 25 should fit two and wrap before the third.
	runs := []shape.Run{
		run(shape.LTR, 0, 3, true,
			glyph(fixed.I(10), 0, 1, false),
			glyph(fixed.I(10), 1, 1, false),
			glyph(fixed.I(10), 2, 1, false),
		),
	}
	b := &Builder{Wrap: true, FrameWidth: fixed.I(25)}
	lines := b.Build(plainBuffer(3), runs)
	require.Len(t, lines, 2)
	require.Len(t, lines[0].Glyphs, 2)
	require.Len(t, lines[1].Glyphs, 1)
}

func TestBuildRespectsSoftBreakFlagOverShapeBreak(t *testing.T) {
	buf := plainBuffer(4)
	// Mark a soft-wrap opportunity after codepoint 0 only; a NoBreak-free
	// shape break exists after every glyph too, but the soft break must
	// win when both are available before the overflow point.
	buf.SetBreakFlags(0, buffer.LineSoft)
	runs := []shape.Run{
		run(shape.LTR, 0, 4, true,
			glyph(fixed.I(10), 0, 1, false),
			glyph(fixed.I(10), 1, 1, false),
			glyph(fixed.I(10), 2, 1, false),
			glyph(fixed.I(10), 3, 1, false),
		),
	}
	b := &Builder{Wrap: true, FrameWidth: fixed.I(25)}
	lines := b.Build(buf, runs)
	require.Len(t, lines, 3)
	require.Len(t, lines[0].Glyphs, 1, "must break at the soft opportunity, not the third shape break")
}

func TestBuildNoWrapIgnoresFrameWidth(t *testing.T) {
	runs := []shape.Run{
		run(shape.LTR, 0, 3, true,
			glyph(fixed.I(100), 0, 1, false),
			glyph(fixed.I(100), 1, 1, false),
			glyph(fixed.I(100), 2, 1, false),
		),
	}
	b := &Builder{Wrap: false, FrameWidth: fixed.I(25)}
	lines := b.Build(plainBuffer(3), runs)
	require.Len(t, lines, 1)
	require.Len(t, lines[0].Glyphs, 3)
}

func TestBuildRTLComposesVisualLeftToRight(t *testing.T) {
	// Two RTL sub-runs emitted in logical (reading) order: the shaper
	// yields run A (runes 0-1) then run B (runes 1-2) because a script
	// change split them, but visually (LTR screen order) B must render
	// to the LEFT of A since the paragraph reads right to left.
	runs := []shape.Run{
		run(shape.RTL, 0, 1, false, glyph(fixed.I(10), 0, 1, false)),
		run(shape.RTL, 1, 2, true, glyph(fixed.I(10), 1, 1, false)),
	}
	b := &Builder{}
	lines := b.Build(plainBuffer(2), runs)
	require.Len(t, lines, 1)
	require.Len(t, lines[0].Glyphs, 2)
	require.Equal(t, 1, lines[0].Glyphs[0].RuneIndex, "second logical run ends up visually first (leftmost)")
	require.Equal(t, 0, lines[0].Glyphs[1].RuneIndex)
}

func TestBuildEmptyBufferProducesOneLine(t *testing.T) {
	runs := []shape.Run{
		run(shape.LTR, 0, 1, true, glyph(0, 0, 1, false)),
	}
	b := &Builder{}
	lines := b.Build(plainBuffer(1), runs)
	require.Len(t, lines, 1, "line_count >= 1 always after a build, even over only the synthetic newline")
}

func TestCursorSnapsToLeadingEdgeOnLTR(t *testing.T) {
	runs := []shape.Run{
		run(shape.LTR, 0, 3, true,
			glyph(fixed.I(10), 0, 1, false),
			glyph(fixed.I(10), 1, 1, false),
			glyph(fixed.I(10), 2, 1, false),
		),
	}
	b := &Builder{}
	b.SetCursor(Cursor{CodepointIndex: 1})
	lines := b.Build(plainBuffer(3), runs)
	require.True(t, lines[0].HasCursor)
	require.Equal(t, fixed.I(10), lines[0].CursorPos.X)
}

func TestSelectionProducesOneRectWithinSingleRun(t *testing.T) {
	runs := []shape.Run{
		run(shape.LTR, 0, 4, true,
			glyph(fixed.I(10), 0, 1, false),
			glyph(fixed.I(10), 1, 1, false),
			glyph(fixed.I(10), 2, 1, false),
			glyph(fixed.I(10), 3, 1, false),
		),
	}
	b := &Builder{}
	b.SetCursor(Cursor{SelectionStart: 1, SelectionEnd: 3})
	lines := b.Build(plainBuffer(4), runs)
	require.Len(t, lines[0].Selections, 1)
	require.Equal(t, fixed.I(10), lines[0].Selections[0].Min.X)
	require.Equal(t, fixed.I(30), lines[0].Selections[0].Max.X)
}

func TestResolveMarksOffscreenGlyphsNotVisible(t *testing.T) {
	runs := []shape.Run{
		run(shape.LTR, 0, 2, true,
			glyph(fixed.I(1000), 0, 1, false),
			glyph(fixed.I(10), 1, 1, false),
		),
	}
	b := &Builder{}
	lines := b.Build(plainBuffer(2), runs)

	scroll := &Scroll{}
	vp := Viewport{Width: fixed.I(50), Height: fixed.I(50)}
	commands, _, _, _ := Resolve(lines, vp, scroll, 0, 0)
	require.Len(t, commands, 2)
	require.True(t, commands[0].Visible)
	require.False(t, commands[1].Visible, "glyph at x=1000 must be off the 50px-wide viewport")
}

func TestResolveClampsScrollToContentBounds(t *testing.T) {
	runs := []shape.Run{
		run(shape.LTR, 0, 1, true, glyph(fixed.I(10), 0, 1, false)),
	}
	b := &Builder{}
	lines := b.Build(plainBuffer(1), runs)

	scroll := &Scroll{TargetX: fixed.I(9999), TargetY: fixed.I(9999)}
	vp := Viewport{Width: fixed.I(100), Height: fixed.I(100)}
	Resolve(lines, vp, scroll, 0, 0)
	require.Equal(t, fixed.Int26_6(0), scroll.X, "content narrower than the viewport clamps max_scroll_x to 0")
	require.Equal(t, fixed.Int26_6(0), scroll.Y)
}
