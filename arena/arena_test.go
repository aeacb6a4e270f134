package arena

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestArenaAllocAndRewind(t *testing.T) {
	a := NewArena(16)
	m := a.Open()
	off, ok := a.Alloc(8)
	require.True(t, ok)
	require.Equal(t, 0, off)

	off2, ok := a.Alloc(8)
	require.True(t, ok)
	require.Equal(t, 8, off2)

	_, ok = a.Alloc(1)
	require.False(t, ok, "allocation beyond capacity must fail, not partially succeed")

	a.Close(m)
	require.Equal(t, 0, a.Used())

	// The arena is reusable after rewinding.
	off3, ok := a.Alloc(16)
	require.True(t, ok)
	require.Equal(t, 0, off3)
}

func TestArenaNestedLifetimes(t *testing.T) {
	a := NewArena(32)
	outer := a.Open()
	a.Alloc(4)
	inner := a.Open()
	a.Alloc(4)
	a.Close(inner)
	require.Equal(t, 4, a.Used())
	a.Close(outer)
	require.Equal(t, 0, a.Used())
}

func TestRingWrapsAndInvalidatesOldest(t *testing.T) {
	r := NewRing[int](4)

	tok1, region1, ok := r.Alloc(2)
	require.True(t, ok)
	region1[0], region1[1] = 1, 2
	require.True(t, r.Valid(tok1))

	tok2, region2, ok := r.Alloc(2)
	require.True(t, ok)
	region2[0], region2[1] = 3, 4
	require.True(t, r.Valid(tok1))
	require.True(t, r.Valid(tok2))

	// This allocation doesn't fit before the end of the slab (4 elements
	// used, 2 requested), so it must wrap and invalidate tok1.
	tok3, region3, ok := r.Alloc(2)
	require.True(t, ok)
	region3[0], region3[1] = 5, 6
	require.False(t, r.Valid(tok1), "oldest token must be invalidated by wraparound")
	require.True(t, r.Valid(tok2), "tok3 wrapped into tok1's slots [0,2); tok2's slots [2,4) are untouched")
	require.True(t, r.Valid(tok3))
}

func TestRingRewindDiscardsRedoTail(t *testing.T) {
	r := NewRing[string](8)
	tokA, regionA, _ := r.Alloc(2)
	regionA[0] = "a"
	mark := r.Mark()
	tokB, _, _ := r.Alloc(2)
	require.True(t, r.Valid(tokB))

	r.Rewind(mark)
	require.True(t, r.Valid(tokA))

	// Re-allocating after a rewind reuses the space tokB occupied: tokC
	// starts at the mark. (tokB read as invalid right after the rewind;
	// once tokC is issued it is indistinguishable from tokC.)
	tokC, regionC, ok := r.Alloc(2)
	require.True(t, ok)
	regionC[0] = "c"
	require.Equal(t, mark.ptr, tokC.ptr)
}

func TestRingAllocLargerThanCapacityFails(t *testing.T) {
	r := NewRing[byte](4)
	_, _, ok := r.Alloc(5)
	require.False(t, ok)
}
