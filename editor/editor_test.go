package editor

import (
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/math/fixed"

	gioopentype "github.com/textedit/richcore/font/opentype"

	"github.com/textedit/richcore/buffer"
	"github.com/textedit/richcore/fontreg"
)

func mustFace(t *testing.T, ttf []byte) fontreg.Face {
	t.Helper()
	f, err := gioopentype.Parse(ttf)
	require.NoError(t, err)
	return f
}

func newTestEditor(t *testing.T) *Editor {
	t.Helper()
	e := New(256)
	_, ok := e.Fonts().Register(mustFace(t, goregular.TTF), false, false)
	require.True(t, ok)
	return e
}

func TestInsertCodepointAdvancesCursor(t *testing.T) {
	e := New(64)
	e.InsertCodepoint('a', buffer.Regular)
	e.InsertCodepoint('b', buffer.Regular)
	require.Equal(t, "ab", e.Text())
	require.Equal(t, 2, e.cursor.CodepointIndex)
}

func TestInsertTextReplacesSelection(t *testing.T) {
	e := New(64)
	e.InsertText("hello world", buffer.Regular)
	e.cursor.CodepointIndex = 0
	e.selection.CodepointIndex = 5
	e.InsertText("goodbye", buffer.Regular)
	require.Equal(t, "goodbye world", e.Text())
	start, end := e.Selection()
	require.Equal(t, start, end)
}

func TestDeleteSelectionIsNoOpWithoutSelection(t *testing.T) {
	e := New(64)
	e.InsertText("abc", buffer.Regular)
	before := e.Text()
	e.DeleteSelection()
	require.Equal(t, before, e.Text())
}

func TestDeleteSelectionRemovesRange(t *testing.T) {
	e := New(64)
	e.InsertText("abcdef", buffer.Regular)
	e.cursor.CodepointIndex = 1
	e.selection.CodepointIndex = 4
	e.DeleteSelection()
	require.Equal(t, "aef", e.Text())
	start, end := e.Selection()
	require.Equal(t, 1, start)
	require.Equal(t, 1, end)
}

func TestToggleStyleXORsSelectionRange(t *testing.T) {
	e := New(64)
	e.InsertText("abc", buffer.Regular)
	e.cursor.CodepointIndex = 0
	e.selection.CodepointIndex = 3
	e.ToggleStyle(buffer.Bold)
	for i := 0; i < 3; i++ {
		require.Equal(t, buffer.Bold, e.buf.At(i).Style)
	}
	e.ToggleStyle(buffer.Bold)
	for i := 0; i < 3; i++ {
		require.Equal(t, buffer.Regular, e.buf.At(i).Style)
	}
}

func TestSelectedTextRoundTripsOverWholeBuffer(t *testing.T) {
	e := New(64)
	e.InsertText("round trip", buffer.Regular)
	e.cursor.CodepointIndex = 0
	e.selection.CodepointIndex = e.Len()
	sel := e.SelectedText()
	require.Equal(t, e.Text(), sel)

	before := sel
	e.DeleteSelection()
	e.InsertText(before, buffer.Regular)
	require.Equal(t, before, e.Text())
}

func TestDrawProducesNonEmptyCommandsForPlainText(t *testing.T) {
	e := newTestEditor(t)
	e.InsertText("hello", buffer.Regular)

	cmds, sels, _, _, closestCP, cursorOK := e.Draw(fixed.I(16), Viewport{Width: fixed.I(400), Height: fixed.I(200)})
	require.NotEmpty(t, cmds)
	require.Empty(t, sels)
	require.NotEmpty(t, e.lines)
	require.True(t, cursorOK)
	require.Equal(t, e.Len()+1, closestCP)
}

func TestDrawHidesNewlineGlyphsWhenDisplayNewlinesOff(t *testing.T) {
	e := newTestEditor(t)
	e.DisplayNewlines = false
	e.InsertText("a\nb", buffer.Regular)

	cmds, _, _, _, _, _ := e.Draw(fixed.I(16), Viewport{Width: fixed.I(400), Height: fixed.I(200)})
	for _, c := range cmds {
		if c.RuneIndex < e.Len() && e.buf.At(c.RuneIndex).Codepoint == '\n' {
			require.Zero(t, c.Glyph.Width)
		}
	}
}

func TestDrawIdempotentWithoutInterveningEdits(t *testing.T) {
	e := newTestEditor(t)
	e.InsertText("idempotent draw", buffer.Regular)
	vp := Viewport{Width: fixed.I(300), Height: fixed.I(200)}

	cmds1, sels1, thumb1, cursor1, closestCP1, ok1 := e.Draw(fixed.I(16), vp)
	cmds2, sels2, thumb2, cursor2, closestCP2, ok2 := e.Draw(fixed.I(16), vp)

	require.Equal(t, len(cmds1), len(cmds2))
	for i := range cmds1 {
		require.Equal(t, cmds1[i].Pos, cmds2[i].Pos)
		require.Equal(t, cmds1[i].RuneIndex, cmds2[i].RuneIndex)
	}
	require.Equal(t, sels1, sels2)
	require.Equal(t, thumb1, thumb2)
	require.Equal(t, cursor1, cursor2)
	require.Equal(t, closestCP1, closestCP2)
	require.Equal(t, ok1, ok2)
}

func TestDrawCommandRuneIndicesStayInBounds(t *testing.T) {
	e := newTestEditor(t)
	e.InsertText("bounds check", buffer.Regular)
	cmds, _, _, _, _, _ := e.Draw(fixed.I(16), Viewport{Width: fixed.I(300), Height: fixed.I(200)})
	for _, c := range cmds {
		require.True(t, c.RuneIndex >= 0 && c.RuneIndex < e.Len())
	}
	for _, l := range e.lines {
		require.LessOrEqual(t, l.MinCP, l.MaxCP)
	}
}
