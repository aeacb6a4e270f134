// Package buffer implements Component B: the ordered sequence of styled
// characters the editor operates on, plus the style and break-flag
// vocabulary shared by every other component.
package buffer

// Style is a 2-bit mask over the four canonical text styles.
type Style uint8

const (
	Regular Style = 0
	Bold    Style = 1 << (iota - 1)
	Italic
	BoldItalic = Bold | Italic
)

// StyleCount is the number of canonical styles; Font Registry preference
// permutations are indexed [0,StyleCount).
const StyleCount = 4

// BreakFlags caches shaper-derived break opportunities for a codepoint.
// It is populated during layout; it is never editing state, so mutating
// it does not mark the buffer changed.
type BreakFlags uint8

const (
	// Grapheme marks a legal grapheme-cluster boundary after this codepoint.
	Grapheme BreakFlags = 1 << iota
	// Word marks a legal word boundary after this codepoint.
	Word
	// LineSoft marks a legal soft line-wrap opportunity after this codepoint.
	LineSoft
	// LineHard marks a mandatory line break after this codepoint.
	LineHard
	// ParagraphDirection is set on the first codepoint of a paragraph and
	// records that the paragraph's base direction has been resolved; the
	// resolved direction itself lives on the shaped run, not here.
	ParagraphDirection
)

// Character is a single styled logical atom.
type Character struct {
	Codepoint rune
	Style     Style
	Break     BreakFlags
}

// Buffer is an ordered sequence of Characters with capacity fixed at
// construction. Indices into the buffer are dense [0,Len()).
//
// Insert and delete shift the tail in place, exactly as the spec
// describes: there is no gap or rope structure backing this, because
// the spec models the buffer as directly index-addressable storage
// (cursor/selection motion and layout both work in codepoint indices,
// not byte offsets), and a shifting array is the simplest structure
// that preserves that invariant while staying O(1) to index.
type Buffer struct {
	chars    []Character
	capacity int
	changed  bool
}

// New constructs an empty Buffer with the given fixed capacity.
func New(capacity int) *Buffer {
	return &Buffer{chars: make([]Character, 0, capacity), capacity: capacity}
}

// Len returns the number of characters currently stored.
func (b *Buffer) Len() int { return len(b.chars) }

// Cap returns the buffer's fixed capacity.
func (b *Buffer) Cap() int { return b.capacity }

// At returns the character at index i.
func (b *Buffer) At(i int) Character { return b.chars[i] }

// Slice returns the characters in [start,end) as a read-only view.
// Callers must not retain it across a mutation.
func (b *Buffer) Slice(start, end int) []Character { return b.chars[start:end] }

// SetBreakFlags updates the cached break flags for index i without
// marking the buffer changed; break flags are a shaping cache; Component D
// populates them and Component H reads them, but neither counts as an
// edit to the logical content.
func (b *Buffer) SetBreakFlags(i int, flags BreakFlags) {
	b.chars[i].Break = flags
}

// SetStyle updates the style of the character at index i, unlike
// SetBreakFlags this does mark the buffer changed: style is logical
// content the style-toggle command edits, not a shaping cache.
func (b *Buffer) SetStyle(i int, s Style) {
	b.chars[i].Style = s
	b.changed = true
}

// Changed reports, and clears, whether the logical content has changed
// since the last call.
func (b *Buffer) Changed() bool {
	c := b.changed
	b.changed = false
	return c
}

// InsertChar inserts a single styled character at pos, shifting the tail
// right by one. It is a silent no-op, per OutOfCapacity, if the buffer
// is already at capacity.
func (b *Buffer) InsertChar(pos int, ch Character) {
	if len(b.chars) >= b.capacity {
		return
	}
	if pos < 0 {
		pos = 0
	}
	if pos > len(b.chars) {
		pos = len(b.chars)
	}
	b.chars = append(b.chars, Character{})
	copy(b.chars[pos+1:], b.chars[pos:])
	b.chars[pos] = ch
	b.changed = true
}

// InsertCodepoints inserts runes with the given style starting at pos.
// It inserts as many as fit within capacity and silently drops the rest
// (no partial character is ever malformed, but the tail of a too-long
// insert is simply discarded, matching OutOfCapacity semantics).
func (b *Buffer) InsertCodepoints(pos int, style Style, cps []rune) (inserted int) {
	room := b.capacity - len(b.chars)
	if room <= 0 {
		return 0
	}
	if len(cps) > room {
		cps = cps[:room]
	}
	if pos < 0 {
		pos = 0
	}
	if pos > len(b.chars) {
		pos = len(b.chars)
	}
	b.chars = append(b.chars, make([]Character, len(cps))...)
	copy(b.chars[pos+len(cps):], b.chars[pos:len(b.chars)-len(cps)])
	for i, cp := range cps {
		b.chars[pos+i] = Character{Codepoint: cp, Style: style}
	}
	if len(cps) > 0 {
		b.changed = true
	}
	return len(cps)
}

// DeleteRange removes characters in [start,end), shifting the tail left.
// Indices are clamped to [0,Len()]; an empty or inverted range is a no-op.
func (b *Buffer) DeleteRange(start, end int) {
	if start > end {
		start, end = end, start
	}
	if start < 0 {
		start = 0
	}
	if end > len(b.chars) {
		end = len(b.chars)
	}
	if start >= end {
		return
	}
	b.chars = append(b.chars[:start], b.chars[end:]...)
	b.changed = true
}

// Runes returns the buffer's codepoints as a fresh []rune slice, suitable
// for feeding to a shaping driver. The caller owns the returned slice.
func (b *Buffer) Runes() []rune {
	out := make([]rune, len(b.chars))
	for i, c := range b.chars {
		out[i] = c.Codepoint
	}
	return out
}

// Text returns the buffer's contents as a UTF-8 string.
func (b *Buffer) Text() string {
	rs := b.Runes()
	return string(rs)
}
