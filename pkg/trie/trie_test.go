package trie

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTrie_EmptyKeyWritesRoot(t *testing.T) {
	t0 := New[uint32]()
	t1 := t0.Put([]byte(""), 5)
	t2 := t1.Put([]byte("ab"), 7)

	v, ok := t1.Get([]byte(""))
	assert.True(t, ok)
	assert.EqualValues(t, 5, v)

	v, ok = t2.Get([]byte(""))
	assert.True(t, ok)
	assert.EqualValues(t, 5, v)

	v, ok = t2.Get([]byte("ab"))
	assert.True(t, ok)
	assert.EqualValues(t, 7, v)

	_, ok = t1.Get([]byte("ab"))
	assert.False(t, ok)
}

func TestTrie_RemovePrunesChildlessAncestors(t *testing.T) {
	t0 := New[int]()
	t1 := t0.Put([]byte("abc"), 1)
	t2 := t1.Put([]byte("ab"), 2)
	t3 := t2.Remove([]byte("abc"))

	v, ok := t3.Get([]byte("ab"))
	assert.True(t, ok)
	assert.Equal(t, 2, v)

	_, ok = t3.Get([]byte("abc"))
	assert.False(t, ok)

	// t2 is untouched by the removal on t3.
	v, ok = t2.Get([]byte("abc"))
	assert.True(t, ok)
	assert.Equal(t, 1, v)
}

func TestTrie_GetMissingKey(t *testing.T) {
	tr := New[string]().Put([]byte("x"), "hello")
	_, ok := tr.Get([]byte("y"))
	assert.False(t, ok)
	_, ok = tr.Get([]byte("xx"))
	assert.False(t, ok)
}

func TestTrie_PutOverwritesInteriorNode(t *testing.T) {
	tr := New[int]().Put([]byte("ab"), 1)
	tr = tr.Put([]byte("a"), 2)

	v, ok := tr.Get([]byte("a"))
	assert.True(t, ok)
	assert.Equal(t, 2, v)

	v, ok = tr.Get([]byte("ab"))
	assert.True(t, ok)
	assert.Equal(t, 1, v)
}

func TestTrie_RemoveAbsentKeyIsNoop(t *testing.T) {
	tr := New[int]().Put([]byte("a"), 1)
	tr2 := tr.Remove([]byte("zzz"))

	v, ok := tr2.Get([]byte("a"))
	assert.True(t, ok)
	assert.Equal(t, 1, v)
}

func TestTrie_PutThenRemoveRoundTrip(t *testing.T) {
	base := New[int]().Put([]byte("x"), 1).Put([]byte("y"), 2)
	modified := base.Put([]byte("z"), 3).Remove([]byte("z"))

	for _, k := range [][]byte{[]byte("x"), []byte("y")} {
		want, wantOk := base.Get(k)
		got, gotOk := modified.Get(k)
		assert.Equal(t, wantOk, gotOk)
		assert.Equal(t, want, got)
	}
	_, ok := modified.Get([]byte("z"))
	assert.False(t, ok)
}

func TestTrie_SharingDoesNotMutateOriginal(t *testing.T) {
	t1 := New[int]().Put([]byte("shared"), 1)
	t2 := t1.Put([]byte("shared/extra"), 2)

	v, ok := t1.Get([]byte("shared"))
	assert.True(t, ok)
	assert.Equal(t, 1, v)

	_, ok = t1.Get([]byte("shared/extra"))
	assert.False(t, ok)

	v, ok = t2.Get([]byte("shared"))
	assert.True(t, ok)
	assert.Equal(t, 1, v)
}
