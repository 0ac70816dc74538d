package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStorageManager_ReadPageZeroFillsSparseFile(t *testing.T) {
	fs := LocalFileSet{Dir: t.TempDir(), Base: "segment"}
	sm := NewStorageManager()

	buf := make([]byte, PageSize)
	for i := range buf {
		buf[i] = 0xaa
	}

	require.NoError(t, sm.ReadPage(fs, 0, buf))
	for _, b := range buf {
		assert.Equal(t, byte(0), b)
	}
}

func TestStorageManager_WriteThenReadRoundTrips(t *testing.T) {
	fs := LocalFileSet{Dir: t.TempDir(), Base: "segment"}
	sm := NewStorageManager()

	pg, err := NewPage(make([]byte, PageSize), 3)
	require.NoError(t, err)
	_, err = pg.InsertTuple([]byte("roundtrip"))
	require.NoError(t, err)

	require.NoError(t, sm.WritePage(fs, 3, pg.Buf))

	out := make([]byte, PageSize)
	require.NoError(t, sm.ReadPage(fs, 3, out))
	assert.Equal(t, pg.Buf, out)
}

func TestStorageManager_LocatesAcrossSegments(t *testing.T) {
	fs := LocalFileSet{Dir: t.TempDir(), Base: "segment"}
	sm := NewStorageManager()

	pagesPerSeg := int32(SegmentSize / PageSize)
	firstOfSecondSegment := pagesPerSeg

	pg, err := NewPage(make([]byte, PageSize), uint32(firstOfSecondSegment))
	require.NoError(t, err)
	require.NoError(t, sm.WritePage(fs, firstOfSecondSegment, pg.Buf))

	out := make([]byte, PageSize)
	require.NoError(t, sm.ReadPage(fs, firstOfSecondSegment, out))
	assert.Equal(t, pg.Buf, out)
}
