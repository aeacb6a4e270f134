// Package editor implements Components H and I: cursor/selection editing
// commands, IME composition, and the ring-backed undo log, on top of the
// buffer/fontreg/shape/linelayout packages. Editor is the package's entry
// point, analogous to widget.Editor in the teacher but exposing plain
// methods instead of a windowing-event dispatch loop (routing keyboard/
// pointer events into those methods is a host concern, per Non-goals).
package editor

import (
	"golang.org/x/image/math/fixed"

	"github.com/textedit/richcore/arena"
	"github.com/textedit/richcore/buffer"
	"github.com/textedit/richcore/fontreg"
	"github.com/textedit/richcore/linelayout"
	"github.com/textedit/richcore/shape"
)

// Granularity selects how far MoveCaret steps per call.
type Granularity uint8

const (
	ByCodepoint Granularity = iota
	ByGrapheme
	ByWord
	ByLine
	ByParagraph
	ByPage
)

// position mirrors the spec's cursor/selection data model: a codepoint
// index plus the line it last resolved to and the desired column/row
// horizontal and vertical motion read back.
type position struct {
	CodepointIndex int
	LineIndex      int
	DesiredX       fixed.Int26_6
	DesiredY       fixed.Int26_6
}

// Editor owns a character buffer, font registry, shaping driver and line
// layout builder, and exposes the editing/cursor/undo operations of
// §4.H-§4.I. Configure exported fields before the first Draw call, the
// same way widget.Editor is configured by setting fields directly.
type Editor struct {
	// Alignment pins every line's alignment when non-nil; nil leaves it
	// direction-derived (§4.E "RTL -> right-aligned, else left-aligned").
	Alignment *linelayout.Alignment
	// WrapEnabled toggles soft-wrap (EDITOR_COMMAND_TOGGLE_LINE_WRAP in
	// the original); off, frame width is ignored for wrap purposes only.
	WrapEnabled bool
	// DisplayNewlines toggles whether the synthetic newline glyph paints
	// with nonzero width (S4: "scaled_width==0" when hidden).
	DisplayNewlines bool
	// CursorThickness reserves horizontal room for the caret when
	// computing max_scroll_x (§4.F step 1).
	CursorThickness fixed.Int26_6

	buf    *buffer.Buffer
	fonts  *fontreg.Registry
	shaper *shape.Driver
	build  linelayout.Builder

	// frameArena is opened and closed once per Draw, giving the
	// per-frame draw list a scoped lifetime to rewind per §3
	// "Lifetimes", even though Go's GC does not require the rewind to
	// reclaim memory; it preserves the externally observable contract
	// that a draw list is only valid until the next frame.
	frameArena *arena.Arena

	lines        []linelayout.Line
	commands     []linelayout.Command
	selections   []linelayout.SelectionRect
	thumb        linelayout.ThumbExtent
	cursorResult linelayout.CursorResult

	cursor, selection position
	keepDesiredX      bool
	keepDesiredY      bool

	scroll             linelayout.Scroll
	moveToView         bool
	lastViewportHeight fixed.Int26_6

	imeStart  int
	imeLength int

	undo undoLog

	dragging bool
}

// Viewport is the frame's visible rectangle, set by the caller before
// each Draw.
type Viewport = linelayout.Viewport
