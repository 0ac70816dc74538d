package diskio

import "github.com/novadb/novastore/internal/storage"

// StorageGateway adapts a StorageManager bound to one FileSet into the
// Gateway interface the scheduler dispatches against.
type StorageGateway struct {
	sm *storage.StorageManager
	fs storage.FileSet
}

func NewStorageGateway(sm *storage.StorageManager, fs storage.FileSet) *StorageGateway {
	return &StorageGateway{sm: sm, fs: fs}
}

func (g *StorageGateway) ReadPage(pageID uint32, buf []byte) error {
	return g.sm.ReadPage(g.fs, int32(pageID), buf)
}

func (g *StorageGateway) WritePage(pageID uint32, buf []byte) error {
	return g.sm.WritePage(g.fs, int32(pageID), buf)
}
