// Package shape implements Component D: the shaping driver. It walks a
// character buffer, segments it by style/script/bidi-run/font-coverage,
// invokes the HarfBuzz shaper, and yields bidi-segmented runs in visual
// paragraph order, mirroring the spec's shape_begin/shape_codepoint/
// shape_manual_break/shape_push_font/shape_pop_font/shape_end/shape_run
// ABI as a single ShapeParagraph call plus a pull iterator over the
// result.
package shape

import (
	"github.com/go-text/typesetting/di"
	gotext "github.com/go-text/typesetting/font"
	"github.com/go-text/typesetting/language"
	"github.com/go-text/typesetting/shaping"
	"golang.org/x/image/math/fixed"
	"golang.org/x/text/unicode/bidi"

	"github.com/textedit/richcore/buffer"
	"github.com/textedit/richcore/fontreg"
)

// Direction is a paragraph or run's writing direction.
type Direction uint8

const (
	LTR Direction = iota
	RTL
)

func fromDi(d di.Direction) Direction {
	if d == di.DirectionRTL {
		return RTL
	}
	return LTR
}

func (d Direction) toDi() di.Direction {
	if d == RTL {
		return di.DirectionRTL
	}
	return di.DirectionLTR
}

// RunFlags mirrors the per-run flag set the spec's shape_run carries.
type RunFlags uint8

const (
	// LineHard marks a run ending at a mandatory line break.
	LineHard RunFlags = 1 << iota
	// ParagraphDirection marks a run starting a new paragraph, whose
	// resolved base direction is recorded in Run.ParagraphDirection.
	ParagraphDirection
)

// GlyphFlags mirrors the spec's per-glyph flag set.
type GlyphFlags uint8

const (
	// NoBreak marks a glyph that may not be followed by a soft wrap
	// point (it is not the last glyph of its cluster).
	NoBreak GlyphFlags = 1 << iota
)

// Glyph is one positioned glyph within a Run, in shaping (logical,
// left-to-right-within-run) glyph order.
type Glyph struct {
	GlyphID            gotext.GID
	ClusterIndex       int
	RuneCount          int
	XAdvance, YAdvance fixed.Int26_6
	XOffset, YOffset   fixed.Int26_6
	// XBearing/YBearing/Width/Height describe the glyph's visual
	// bounding box relative to its dot, exactly as shaping.Glyph
	// reports them (see freetype's glyph-metrics diagram).
	XBearing, YBearing fixed.Int26_6
	Width, Height      fixed.Int26_6
	Flags              GlyphFlags
}

// Run is one bidi/style/script/font-coverage segment of shaped text.
type Run struct {
	Direction          Direction
	ParagraphDirection Direction
	Flags              RunFlags
	FontID             int
	Glyphs             []Glyph
	// RuneStart/RuneEnd index into the buffer this run was shaped from.
	RuneStart, RuneEnd int
}

// Driver shapes a Buffer's contents against a Registry and exposes the
// resulting runs through a pull iterator, in visual paragraph order.
type Driver struct {
	shaper  shaping.HarfbuzzShaper
	bidi    bidi.Paragraph
	runs    []Run
	cursor  int
	scratch []shaping.Input
}

// NewDriver constructs an empty shaping driver.
func NewDriver() *Driver {
	return &Driver{}
}

// ShapeParagraph re-shapes buf's entire contents into a fresh run stream,
// discarding any previous result. direction is the caller's base
// direction hint (text.Alignment / paragraph context); the actual
// direction of each run is resolved per-paragraph from the Unicode
// bidi algorithm.
//
// Segmentation follows §4.D: the buffer is walked once, a manual shape
// break is taken on every style change and after every newline (so each
// paragraph ends in its own LINE_HARD run), and the font preference
// permutation for the new style is consulted so the topmost-preferred
// registered font is tried first for that segment. A synthetic
// trailing newline is appended so the final run is always
// LINE_HARD-terminated, removing the empty-tail special case from
// every consumer.
func (d *Driver) ShapeParagraph(buf *buffer.Buffer, reg *fontreg.Registry, direction Direction, ppem fixed.Int26_6) {
	d.runs = d.runs[:0]
	d.cursor = 0

	n := buf.Len()
	runes := make([]rune, n+1)
	styles := make([]buffer.Style, n+1)
	for i := 0; i < n; i++ {
		c := buf.At(i)
		runes[i] = c.Codepoint
		styles[i] = c.Style
	}
	// The appended newline always shapes in whatever style the last
	// character carried (or Regular, for an empty buffer); its only
	// purpose is to force a trailing LINE_HARD run.
	runes[n] = '\n'
	if n > 0 {
		styles[n] = styles[n-1]
	}

	segStart := 0
	for i := 1; i <= n; i++ {
		if i == n || styles[i] != styles[segStart] || runes[i-1] == '\n' {
			d.shapeStyleSegment(reg, direction, ppem, runes, segStart, i, styles[segStart])
			segStart = i
		}
	}
	d.shapeStyleSegment(reg, direction, ppem, runes, segStart, n+1, styles[segStart])

	d.markParagraphStarts(runes)
}

// shapeStyleSegment shapes runes[start:end] — all of one buffer style —
// splitting further on bidi runs, script boundaries and font coverage,
// and appends the resulting Runs.
func (d *Driver) shapeStyleSegment(reg *fontreg.Registry, direction Direction, ppem fixed.Int26_6, runes []rune, start, end int, style buffer.Style) {
	if start >= end {
		return
	}
	faces, fontIDs := d.fallbackFaces(reg, style)
	if len(faces) == 0 {
		return
	}

	seg := runes[start:end]
	base := shaping.Input{
		Text:      runes,
		RunStart:  start,
		RunEnd:    end,
		Direction: direction.toDi(),
		Size:      ppem,
		Face:      faces[0],
	}

	for _, bidiInput := range d.splitBidi(base, seg, start) {
		for _, scriptInput := range splitByScript(bidiInput) {
			for _, faceInput := range shaping.SplitByFontGlyphs(scriptInput, faces) {
				out := d.shaper.Shape(faceInput)
				d.appendRun(out, fromDi(faceInput.Direction), runes, fontIDFor(faces, fontIDs, faceInput.Face))
			}
		}
	}
}

// fallbackFaces returns the style's registered fonts ordered so index 0
// is the highest-preference (topmost-of-stack) font, matching the
// "pushed in ascending order, topmost tried first" rule in §4.C/§4.D,
// plus a parallel slice of the registry id each face came from.
func (d *Driver) fallbackFaces(reg *fontreg.Registry, style buffer.Style) ([]gotext.Face, []int) {
	pref := reg.Preference(style)
	faces := make([]gotext.Face, len(pref))
	ids := make([]int, len(pref))
	for i, id := range pref {
		j := len(pref) - 1 - i
		faces[j] = reg.Face(id).Face()
		ids[j] = id
	}
	return faces, ids
}

// fontIDFor recovers which registered font produced a shaped sub-input
// by matching it back against the fallback slice it was split from.
func fontIDFor(faces []gotext.Face, ids []int, used gotext.Face) int {
	for i, f := range faces {
		if f == used {
			return ids[i]
		}
	}
	return -1
}

// splitBidi runs the Unicode bidi algorithm over seg and returns one
// shaping.Input per bidi run, with Direction set to that run's resolved
// direction.
func (d *Driver) splitBidi(base shaping.Input, seg []rune, offset int) []shaping.Input {
	if base.Direction.Axis() != di.Horizontal || len(seg) == 0 {
		return []shaping.Input{base}
	}
	def := bidi.LeftToRight
	if base.Direction.Progression() == di.TowardTopLeft {
		def = bidi.RightToLeft
	}
	d.bidi.SetString(string(seg), bidi.DefaultDirection(def))
	order, err := d.bidi.Order()
	if err != nil {
		return []shaping.Input{base}
	}
	var out []shaping.Input
	runStart := base.RunStart
	for i := 0; i < order.NumRuns(); i++ {
		run := order.Run(i)
		_, endRune := run.Pos()
		in := base
		in.RunStart = runStart
		in.RunEnd = offset + endRune + 1
		if run.Direction() == bidi.RightToLeft {
			in.Direction = di.DirectionRTL
		} else {
			in.Direction = di.DirectionLTR
		}
		out = append(out, in)
		runStart = in.RunEnd
	}
	return out
}

// splitByScript further divides a shaping.Input on Unicode script
// boundaries, letting runs of Common script merge into their neighbor.
func splitByScript(input shaping.Input) []shaping.Input {
	if input.RunStart == input.RunEnd {
		return []shaping.Input{input}
	}
	var out []shaping.Input
	current := input
	firstNonCommon := input.RunStart
	for i := firstNonCommon; i < input.RunEnd; i++ {
		if language.LookupScript(input.Text[i]) != language.Common {
			firstNonCommon = i
			break
		}
	}
	current.Script = language.LookupScript(input.Text[firstNonCommon])
	for i := firstNonCommon + 1; i < input.RunEnd; i++ {
		s := language.LookupScript(input.Text[i])
		if s == language.Common || s == current.Script {
			continue
		}
		current.RunEnd = i
		out = append(out, current)
		current = input
		current.RunStart = i
		current.Script = s
	}
	current.RunEnd = input.RunEnd
	out = append(out, current)
	return out
}

// appendRun converts a shaping.Output to a Run and appends it. A run is
// LINE_HARD either because it reaches the synthetic trailing newline or
// because the buffer character just before its end is itself a newline
// the caller inserted mid-document, separating paragraphs.
func (d *Driver) appendRun(out shaping.Output, dir Direction, runes []rune, fontID int) {
	glyphs := make([]Glyph, len(out.Glyphs))
	for i, g := range out.Glyphs {
		flags := GlyphFlags(0)
		if i+1 < len(out.Glyphs) && out.Glyphs[i+1].ClusterIndex == g.ClusterIndex {
			flags |= NoBreak
		}
		glyphs[i] = Glyph{
			GlyphID:      g.GlyphID,
			ClusterIndex: g.ClusterIndex,
			RuneCount:    g.RuneCount,
			XAdvance:     g.XAdvance,
			YAdvance:     g.YAdvance,
			XOffset:      g.XOffset,
			YOffset:      g.YOffset,
			XBearing:     g.XBearing,
			YBearing:     g.YBearing,
			Width:        g.Width,
			Height:       g.Height,
			Flags:        flags,
		}
	}
	runeEnd := out.Runes.Offset + out.Runes.Count
	flags := RunFlags(0)
	if runeEnd >= len(runes) || (runeEnd > 0 && runes[runeEnd-1] == '\n') {
		flags |= LineHard
	}
	d.runs = append(d.runs, Run{
		Direction: dir,
		Flags:     flags,
		FontID:    fontID,
		Glyphs:    glyphs,
		RuneStart: out.Runes.Offset,
		RuneEnd:   runeEnd,
	})
}

// markParagraphStarts sets ParagraphDirection on the first run of each
// paragraph (the run following a hard break, plus the very first run)
// by resolving that paragraph's base direction with the bidi algorithm.
func (d *Driver) markParagraphStarts(runes []rune) {
	paraStart := 0
	atParagraphStart := true
	for i := range d.runs {
		if atParagraphStart {
			d.runs[i].Flags |= ParagraphDirection
			d.runs[i].ParagraphDirection = paragraphDirection(runes, paraStart, d.runs[i].RuneEnd)
			atParagraphStart = false
		}
		if d.runs[i].Flags&LineHard != 0 {
			paraStart = d.runs[i].RuneEnd
			atParagraphStart = true
		}
	}
}

// paragraphDirection resolves a paragraph's base direction via the
// Unicode bidi algorithm's default heuristic (first strong directional
// character), defaulting to LTR.
func paragraphDirection(runes []rune, start, end int) Direction {
	if start >= end || end > len(runes) {
		return LTR
	}
	var p bidi.Paragraph
	p.SetString(string(runes[start:end]))
	dir, err := p.Direction()
	if err != nil {
		return LTR
	}
	if dir == bidi.RightToLeft {
		return RTL
	}
	return LTR
}

// Reset rewinds the pull iterator to the beginning of the run stream
// without reshaping.
func (d *Driver) Reset() { d.cursor = 0 }

// NextRun yields the next run in visual-paragraph order, or ok=false
// once the stream is exhausted. Runs within a single bidi paragraph are
// already logically contiguous; true visual reordering of RTL/LTR runs
// within a line happens downstream in package linelayout, which needs the
// logical run sequence plus each run's Direction to do it per spec §4.E.
func (d *Driver) NextRun() (run Run, ok bool) {
	if d.cursor >= len(d.runs) {
		return Run{}, false
	}
	run = d.runs[d.cursor]
	d.cursor++
	return run, true
}

// Runs returns the full shaped run stream for the last ShapeParagraph
// call, in logical order.
func (d *Driver) Runs() []Run {
	return d.runs
}
