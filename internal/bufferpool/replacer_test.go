package bufferpool

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLRUKReplacer_EvictPrefersInfiniteDistance(t *testing.T) {
	r := NewLRUKReplacer(3, 2)

	for _, id := range []int{0, 1, 2} {
		r.RecordAccess(id, AccessLookup)
		r.SetEvictable(id, true)
	}

	// Give frames 0 and 1 a second access so their K-distance becomes
	// finite; frame 2 keeps a single access (infinite K-distance).
	time.Sleep(time.Millisecond)
	r.RecordAccess(0, AccessLookup)
	r.RecordAccess(1, AccessLookup)

	victim, ok := r.Evict()
	require.True(t, ok)
	assert.Equal(t, 2, victim)
	assert.Equal(t, 2, r.Size())
}

func TestLRUKReplacer_TieBreaksInfiniteByOldestAccess(t *testing.T) {
	r := NewLRUKReplacer(2, 2)

	r.RecordAccess(0, AccessLookup)
	r.SetEvictable(0, true)

	time.Sleep(time.Millisecond)

	r.RecordAccess(1, AccessLookup)
	r.SetEvictable(1, true)

	// Both have a single access (infinite K-distance); frame 0 is older.
	victim, ok := r.Evict()
	require.True(t, ok)
	assert.Equal(t, 0, victim)
}

func TestLRUKReplacer_SkipsNonEvictable(t *testing.T) {
	r := NewLRUKReplacer(2, 2)

	r.RecordAccess(0, AccessLookup)
	r.RecordAccess(1, AccessLookup)
	r.SetEvictable(1, true)

	victim, ok := r.Evict()
	require.True(t, ok)
	assert.Equal(t, 1, victim)
}

func TestLRUKReplacer_EvictEmptyReturnsFalse(t *testing.T) {
	r := NewLRUKReplacer(2, 2)
	_, ok := r.Evict()
	assert.False(t, ok)
}

func TestLRUKReplacer_SetEvictableIdempotentAndSize(t *testing.T) {
	r := NewLRUKReplacer(2, 2)
	r.RecordAccess(0, AccessLookup)

	r.SetEvictable(0, true)
	r.SetEvictable(0, true) // idempotent
	assert.Equal(t, 1, r.Size())

	r.SetEvictable(0, false)
	assert.Equal(t, 0, r.Size())
}

func TestLRUKReplacer_SetEvictableUnknownFramePanics(t *testing.T) {
	r := NewLRUKReplacer(2, 2)
	assert.Panics(t, func() { r.SetEvictable(5, true) })
}

func TestLRUKReplacer_RemoveNonEvictablePanics(t *testing.T) {
	r := NewLRUKReplacer(2, 2)
	r.RecordAccess(0, AccessLookup)
	assert.Panics(t, func() { r.Remove(0) })
}

func TestLRUKReplacer_RemoveUnknownIsNoop(t *testing.T) {
	r := NewLRUKReplacer(2, 2)
	assert.NotPanics(t, func() { r.Remove(99) })
}

func TestLRUKReplacer_EvictableAboveCapacityPanics(t *testing.T) {
	r := NewLRUKReplacer(1, 2)
	r.RecordAccess(0, AccessLookup)
	r.RecordAccess(1, AccessLookup)
	r.SetEvictable(0, true)
	assert.Panics(t, func() { r.SetEvictable(1, true) })
}
