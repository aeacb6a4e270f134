package editor

import (
	"golang.org/x/image/math/fixed"

	"github.com/textedit/richcore/arena"
	"github.com/textedit/richcore/buffer"
	"github.com/textedit/richcore/linelayout"
)

// undoSnapshot is one ring-allocated undo entry: a full copy of the
// text, the last laid-out lines, scroll targets and cursor/selection,
// per §3 "Undo snapshot".
//
// The original ring-allocates the header, text copy and line copy as
// three separate regions of one byte-addressed ring; here the ring is
// typed over a single self-contained struct (one Alloc(1) per push)
// since arena.Ring[T] is homogeneous — Go's GC owns the struct's own
// slice fields, so there is no separate byte-budget to track for them.
// The externally observable behavior — a push can still be silently
// dropped, and old snapshots still age out exactly when the ring
// wraps past them — is unchanged.
type undoSnapshot struct {
	text             []buffer.Character
	lines            []linelayout.Line
	scrollX, scrollY fixed.Int26_6
	cursor, selection position
}

// undoLog implements §4.I: a doubly-linked list of snapshots off a
// sentinel, represented here as an append-only, truncatable slice of
// ring tokens. Slice append (push) and reslicing (truncating the redo
// tail) already give the two operations an explicit prev/next-pointer
// list exists to provide, so the list itself needs no pointer fields;
// only the per-snapshot body needs the ring, for its eviction-by-
// wraparound behavior.
type undoLog struct {
	ring     *arena.Ring[undoSnapshot]
	order    []arena.Token
	baseMark arena.Token

	// hasCursor/cursorIdx mirror undo_cursor: hasCursor false means
	// "none" (live state). hasCursor true with cursorIdx==-1 means the
	// cursor sits at the sentinel, i.e. before the oldest live
	// snapshot (either the list is empty, or undo has walked off the
	// front); 0..len(order)-1 addresses a real snapshot.
	hasCursor bool
	cursorIdx int

	// liveSnapshot captures the post-op state at the moment undo_cursor
	// first leaves "none", the one state push never snapshots itself
	// (pushes are always pre-edit). redo walking past the tail of order
	// returns here instead of failing, satisfying §4.I invariant 8 ("push;
	// op; undo; redo returns to post-op state") for a single edit.
	hasLive      bool
	liveSnapshot undoSnapshot
}

func newUndoLog(capacity int) undoLog {
	r := arena.NewRing[undoSnapshot](capacity)
	return undoLog{ring: r, baseMark: r.Mark()}
}

// push snapshots the editor's pre-edit state. If undo_cursor is
// currently set (the user is mid-undo), it first truncates the redo
// tail at undo_cursor.prev and rewinds the ring to undo_cursor's token,
// discarding every snapshot from the cursor onward, per §4.I Push.
func (l *undoLog) push(buf *buffer.Buffer, lines []linelayout.Line, scroll linelayout.Scroll, cursor, selection position) {
	if l.hasCursor {
		keep := l.cursorIdx
		if keep < 0 {
			keep = 0
		}
		rewindTo := l.baseMark
		if keep < len(l.order) {
			rewindTo = l.order[keep]
		}
		l.order = l.order[:keep]
		l.ring.Rewind(rewindTo)
	}

	mark := l.ring.Mark()
	tok, region, ok := l.ring.Alloc(1)
	if !ok {
		l.ring.Rewind(mark)
		return
	}
	region[0] = undoSnapshot{
		text:      append([]buffer.Character(nil), buf.Slice(0, buf.Len())...),
		lines:     append([]linelayout.Line(nil), lines...),
		scrollX:   scroll.TargetX,
		scrollY:   scroll.TargetY,
		cursor:    cursor,
		selection: selection,
	}
	if !l.ring.Valid(tok) {
		// The header's own token aged out between Alloc and now (only
		// possible if a self-wrap raced the allocation); drop silently,
		// per §4.I Push — the edit itself still proceeds.
		l.ring.Rewind(mark)
		return
	}
	l.order = append(l.order, tok)
	l.hasCursor = false
	// The previous liveSnapshot (if any) described the state before this
	// new edit, not after it; the next undo() recaptures it fresh from
	// whatever is live once this edit lands.
	l.hasLive = false
	l.liveSnapshot = undoSnapshot{}
}

// undo moves undo_cursor to the tail (if live) or its predecessor
// (if already mid-undo), and returns the snapshot there if it is still
// valid, per §4.I Undo. On the live-to-historical transition it first
// captures buf/lines/scroll/cursor/selection as the redo target, since
// push only ever snapshots pre-edit state.
func (l *undoLog) undo(buf *buffer.Buffer, lines []linelayout.Line, scroll linelayout.Scroll, cursor, selection position) (undoSnapshot, bool) {
	if l.hasCursor {
		l.cursorIdx--
	} else {
		if len(l.order) > 0 {
			l.liveSnapshot = undoSnapshot{
				text:      append([]buffer.Character(nil), buf.Slice(0, buf.Len())...),
				lines:     append([]linelayout.Line(nil), lines...),
				scrollX:   scroll.TargetX,
				scrollY:   scroll.TargetY,
				cursor:    cursor,
				selection: selection,
			}
			l.hasLive = true
		}
		l.hasCursor = true
		l.cursorIdx = len(l.order) - 1
	}
	return l.deref()
}

// redo moves undo_cursor to its successor, a no-op if undo_cursor is
// currently "none" (live), per §4.I Redo. Walking past the tail of
// order returns to the liveSnapshot undo captured on its first step,
// rather than failing.
func (l *undoLog) redo() (undoSnapshot, bool) {
	if !l.hasCursor {
		return undoSnapshot{}, false
	}
	l.cursorIdx++
	if l.cursorIdx >= len(l.order) {
		// Walked past the tail; the cursor returns to "none" (live)
		// rather than tracking an address one past the end.
		l.hasCursor = false
		l.cursorIdx = 0
		if l.hasLive {
			snap := l.liveSnapshot
			l.hasLive = false
			l.liveSnapshot = undoSnapshot{}
			return snap, true
		}
		return undoSnapshot{}, false
	}
	return l.deref()
}

func (l *undoLog) deref() (undoSnapshot, bool) {
	if l.cursorIdx < 0 || l.cursorIdx >= len(l.order) {
		return undoSnapshot{}, false
	}
	tok := l.order[l.cursorIdx]
	if !l.ring.Valid(tok) {
		return undoSnapshot{}, false
	}
	return l.ring.Deref(tok, 1)[0], true
}
