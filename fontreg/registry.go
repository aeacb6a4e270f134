// Package fontreg implements Component C: a small fixed registry of
// fonts and, for each of the four canonical buffer.Style values, a
// preference permutation over the registered fonts that the shaping
// driver pushes onto the shaper's fallback stack.
package fontreg

import (
	"sort"

	"github.com/benoitkugler/textlayout/fonts"
	gotext "github.com/go-text/typesetting/font"

	"github.com/textedit/richcore/buffer"
)

// MaxFonts bounds the registry the way the rest of the core bounds
// everything else: a small fixed capacity rather than an unbounded slice.
const MaxFonts = 16

// Face is a shapeable font: a handle the shaping driver can push onto
// go-text's fallback stack. It mirrors the FontFace/Face split the
// rest of the pack's text stack uses, so a caller that already has a
// parsed opentype.Face can register it directly.
type Face interface {
	Face() gotext.Face
}

// entry is one registered font together with its style flags.
type entry struct {
	face   Face
	bold   bool
	italic bool
}

// Registry holds the registered fonts and their precomputed
// per-style preference permutations.
type Registry struct {
	entries []entry
	// prefs[s] is a permutation of indices into entries, ascending by
	// preference score, computed lazily whenever the registry is
	// modified after being read.
	prefs [buffer.StyleCount][]int
	stale bool
}

// New constructs an empty registry.
func New() *Registry {
	return &Registry{stale: true}
}

// Register adds a font with explicit style flags, typically sourced
// from the font's own metadata (a font designed as the "Bold Italic"
// member of a family sets both). Register is a no-op once the registry
// is at MaxFonts.
func (r *Registry) Register(f Face, bold, italic bool) (id int, ok bool) {
	if len(r.entries) >= MaxFonts {
		return 0, false
	}
	r.entries = append(r.entries, entry{face: f, bold: bold, italic: italic})
	r.stale = true
	return len(r.entries) - 1, true
}

// RegisterDetect adds a font and derives its bold/italic flags from the
// font file's own metadata via fonts.Face.LoadSummary, for callers that
// don't already know the style of what they're loading (e.g. scanning a
// directory of font files at startup). If the face can't be summarized,
// it registers as regular (false, false) rather than failing the whole
// registration — the preference scoring degrades gracefully to "ties
// preserve registration order" for that font.
func (r *Registry) RegisterDetect(f Face, summary fonts.Face) (id int, ok bool) {
	bold, italic := false, false
	if summary != nil {
		if sum, err := summary.LoadSummary(); err == nil {
			bold, italic = sum.IsBold, sum.IsItalic
		}
	}
	return r.Register(f, bold, italic)
}

// Len reports how many fonts are registered.
func (r *Registry) Len() int { return len(r.entries) }

// Face returns the face for a registered font id.
func (r *Registry) Face(id int) Face { return r.entries[id].face }

// score is the §4.C preference scoring rule: matching bold contributes
// +1, matching italic contributes +1, mismatch on either contributes -1
// for that style.
func score(e entry, wantBold, wantItalic bool) int {
	s := 0
	if e.bold == wantBold {
		s++
	} else {
		s--
	}
	if e.italic == wantItalic {
		s++
	} else {
		s--
	}
	return s
}

// recompute rebuilds all four preference permutations by a stable sort
// on score, ascending, so that pushing a style's permutation in order
// leaves the highest-scoring font on top of the shaper's fallback
// stack (see Preference).
func (r *Registry) recompute() {
	for s := buffer.Style(0); int(s) < buffer.StyleCount; s++ {
		wantBold := s&buffer.Bold != 0
		wantItalic := s&buffer.Italic != 0

		idx := make([]int, len(r.entries))
		for i := range idx {
			idx[i] = i
		}
		sort.SliceStable(idx, func(a, b int) bool {
			return score(r.entries[idx[a]], wantBold, wantItalic) < score(r.entries[idx[b]], wantBold, wantItalic)
		})
		r.prefs[s] = idx
	}
	r.stale = false
}

// Preference returns the registered font ids for the given style,
// ordered ascending by preference score. The shaping driver pushes
// them onto the fallback stack in this order, so the last id in the
// slice — the highest-scoring font for this style — ends up on top
// and is tried first.
func (r *Registry) Preference(s buffer.Style) []int {
	if r.stale {
		r.recompute()
	}
	return r.prefs[s]
}
