package shape

import (
	"testing"

	nsareg "eliasnaur.com/font/noto/sans/arabic/regular"
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

func regularRegistry(t *testing.T) *fontreg.Registry {
	r := fontreg.New()
	_, ok := r.Register(mustFace(t, goregular.TTF), false, false)
	require.True(t, ok)
	return r
}

func TestShapeParagraphAlwaysEndsLineHard(t *testing.T) {
	reg := regularRegistry(t)
	b := buffer.New(64)
	b.InsertCodepoints(0, buffer.Regular, []rune("hello world"))

	d := NewDriver()
	d.ShapeParagraph(b, reg, LTR, fixed.I(16))

	runs := d.Runs()
	require.NotEmpty(t, runs)
	last := runs[len(runs)-1]
	require.NotZero(t, last.Flags&LineHard, "final run must be LINE_HARD, including over the synthetic trailing newline")
}

func TestShapeParagraphEmptyBufferStillYieldsHardBreak(t *testing.T) {
	reg := regularRegistry(t)
	b := buffer.New(8)

	d := NewDriver()
	d.ShapeParagraph(b, reg, LTR, fixed.I(16))

	runs := d.Runs()
	require.NotEmpty(t, runs, "even an empty buffer shapes the synthetic trailing newline")
	require.NotZero(t, runs[0].Flags&LineHard)
}

func TestShapeParagraphMidDocumentNewlineIsHardBreak(t *testing.T) {
	reg := regularRegistry(t)
	b := buffer.New(64)
	b.InsertCodepoints(0, buffer.Regular, []rune("first\nsecond"))

	d := NewDriver()
	d.ShapeParagraph(b, reg, LTR, fixed.I(16))

	var hardBreaks int
	for _, r := range d.Runs() {
		if r.Flags&LineHard != 0 {
			hardBreaks++
		}
	}
	require.Equal(t, 2, hardBreaks, "one for the explicit newline, one for the synthetic trailing newline")
}

func TestShapeParagraphStyleChangeSplitsRuns(t *testing.T) {
	reg := regularRegistry(t)
	b := buffer.New(64)
	b.InsertCodepoints(0, buffer.Regular, []rune("plain"))
	b.InsertCodepoints(5, buffer.Bold, []rune("bold"))

	d := NewDriver()
	d.ShapeParagraph(b, reg, LTR, fixed.I(16))

	require.GreaterOrEqual(t, len(d.Runs()), 2, "a style change must force a shape boundary")
}

func TestNextRunPullsInOrderThenExhausts(t *testing.T) {
	reg := regularRegistry(t)
	b := buffer.New(64)
	b.InsertCodepoints(0, buffer.Regular, []rune("ab"))

	d := NewDriver()
	d.ShapeParagraph(b, reg, LTR, fixed.I(16))

	var pulled []Run
	for {
		run, ok := d.NextRun()
		if !ok {
			break
		}
		pulled = append(pulled, run)
	}
	require.Equal(t, d.Runs(), pulled)

	_, ok := d.NextRun()
	require.False(t, ok)
}

func TestShapeParagraphResolvesRTLParagraphDirection(t *testing.T) {
	reg := fontreg.New()
	_, ok := reg.Register(mustFace(t, nsareg.TTF), false, false)
	require.True(t, ok)

	b := buffer.New(64)
	// Arabic "hello" (سلام) is strongly RTL.
	b.InsertCodepoints(0, buffer.Regular, []rune("سلام"))

	d := NewDriver()
	d.ShapeParagraph(b, reg, RTL, fixed.I(16))

	runs := d.Runs()
	require.NotEmpty(t, runs)
	require.Equal(t, RTL, runs[0].ParagraphDirection)
	require.NotZero(t, runs[0].Flags&ParagraphDirection)
}
