package editor

import (
	"unicode"
	"unicode/utf8"

	"github.com/rivo/uniseg"

	"github.com/textedit/richcore/buffer"
)

// populateBreakFlags walks buf's codepoints and caches the Grapheme,
// Word and LineSoft break opportunities the layout engine's wrap
// scanner and the ByGrapheme/ByWord cursor-motion granularities read
// back (§3, §4.D, §4.H). LineHard and ParagraphDirection are resolved
// by the shaping driver from bidi/paragraph structure, not here.
//
// Grapheme boundaries come from uniseg's UAX #29 grapheme-cluster
// segmenter. uniseg v0.2.0 (the version pinned in go.mod) has no
// word/sentence segmentation at all — that landed in v0.3.0 — so Word
// boundaries are approximated the same way the teacher's own
// widget.Editor.moveWord hand-rolls them: a transition into or out of
// whitespace marks a break, matching the same unicode.IsSpace rule
// LineSoft already uses below.
func populateBreakFlags(buf *buffer.Buffer) {
	n := buf.Len()
	if n == 0 {
		return
	}
	runes := buf.Runes()
	str := string(runes)

	// Drop flags cached from an earlier layout; characters keep their
	// Break field across edits.
	for i := 0; i < n; i++ {
		buf.SetBreakFlags(i, buf.At(i).Break&^(buffer.Grapheme|buffer.Word|buffer.LineSoft))
	}

	markGraphemeEnds(buf, str)
	markWordBreaks(buf, runes)

	for i, r := range runes {
		if unicode.IsSpace(r) {
			buf.SetBreakFlags(i, buf.At(i).Break|buffer.LineSoft)
		}
	}
}

// markGraphemeEnds walks str grapheme cluster by grapheme cluster via
// uniseg.FirstGraphemeClusterInString, setting Grapheme on the buffer
// index of each cluster's last rune. v0.2.0's signature returns exactly
// three values (cluster, rest, newState) — it predates the v0.4.0
// monospace-width fourth return.
func markGraphemeEnds(buf *buffer.Buffer, str string) {
	pos := 0
	state := -1
	for rest := str; rest != ""; {
		cluster, remainder, newState := uniseg.FirstGraphemeClusterInString(rest, state)
		if cluster == "" {
			break
		}
		state = newState
		pos += utf8.RuneCountInString(cluster)
		if idx := pos - 1; idx >= 0 && idx < buf.Len() {
			buf.SetBreakFlags(idx, buf.At(idx).Break|buffer.Grapheme)
		}
		rest = remainder
	}
}

// markWordBreaks marks buffer.Word on every index where a whitespace/
// non-whitespace transition occurs, plus the buffer's final index, so
// ByWord motion (§4.H) has a break opportunity at both ends of every
// run of non-space codepoints.
func markWordBreaks(buf *buffer.Buffer, runes []rune) {
	n := len(runes)
	for i := 0; i < n-1; i++ {
		if unicode.IsSpace(runes[i]) != unicode.IsSpace(runes[i+1]) {
			buf.SetBreakFlags(i, buf.At(i).Break|buffer.Word)
		}
	}
	if n > 0 {
		buf.SetBreakFlags(n-1, buf.At(n-1).Break|buffer.Word)
	}
}
