package bufferpool

import "github.com/novadb/novastore/internal/storage"

// GuardIntent selects what a PageGuard does at construction and drop
// time: Basic takes no frame lock, Read/Write take the frame's
// reader/writer lock for the guard's lifetime.
type GuardIntent int

const (
	GuardBasic GuardIntent = iota
	GuardRead
	GuardWrite
)

// PageGuard is a scoped, move-only handle to a pinned page. Dropping it
// releases the frame lock (if any) and unpins the page, marking it
// dirty if the intent was Write or MarkDirty was called explicitly.
type PageGuard struct {
	pool   *BufferPoolManager
	frame  *frame
	pageID uint32
	intent GuardIntent
	dirty  bool
	valid  bool
}

func newPageGuard(pool *BufferPoolManager, pageID uint32, f *frame, intent GuardIntent) *PageGuard {
	switch intent {
	case GuardRead:
		f.rw.RLock()
	case GuardWrite:
		f.rw.Lock()
	}
	return &PageGuard{pool: pool, frame: f, pageID: pageID, intent: intent, valid: true}
}

// Page returns the guarded page.
func (g *PageGuard) Page() *storage.Page { return g.frame.page }

// MarkDirty flags the guarded page dirty on drop even under basic or
// read intent.
func (g *PageGuard) MarkDirty() { g.dirty = true }

// Move transfers ownership to a newly returned guard, leaving the
// receiver inert; calling Drop on the receiver afterward is a no-op.
func (g *PageGuard) Move() *PageGuard {
	moved := *g
	g.valid = false
	return &moved
}

// Drop releases the frame lock held for Read/Write intent and unpins
// the page, propagating the dirty bit. It is idempotent: calling Drop
// on an already-dropped or moved-from guard does nothing.
func (g *PageGuard) Drop() {
	if g == nil || !g.valid {
		return
	}
	g.valid = false

	dirty := g.dirty || g.intent == GuardWrite
	g.pool.UnpinPage(g.pageID, dirty)

	switch g.intent {
	case GuardRead:
		g.frame.rw.RUnlock()
	case GuardWrite:
		g.frame.rw.Unlock()
	}
}

// FetchPageBasic fetches pageID with no frame lock.
func (p *BufferPoolManager) FetchPageBasic(pageID uint32, accessType AccessType) (*PageGuard, bool) {
	f, ok := p.fetchFrame(pageID, accessType)
	if !ok {
		return nil, false
	}
	return newPageGuard(p, pageID, f, GuardBasic), true
}

// FetchPageRead fetches pageID and holds the frame's read lock.
func (p *BufferPoolManager) FetchPageRead(pageID uint32, accessType AccessType) (*PageGuard, bool) {
	f, ok := p.fetchFrame(pageID, accessType)
	if !ok {
		return nil, false
	}
	return newPageGuard(p, pageID, f, GuardRead), true
}

// FetchPageWrite fetches pageID and holds the frame's write lock.
func (p *BufferPoolManager) FetchPageWrite(pageID uint32, accessType AccessType) (*PageGuard, bool) {
	f, ok := p.fetchFrame(pageID, accessType)
	if !ok {
		return nil, false
	}
	return newPageGuard(p, pageID, f, GuardWrite), true
}

// NewPageGuarded allocates a fresh page and returns it under a write
// guard, since a freshly allocated page is always about to be written.
func (p *BufferPoolManager) NewPageGuarded() (*PageGuard, bool) {
	pageID, f, ok := p.newPageFrame()
	if !ok {
		return nil, false
	}
	return newPageGuard(p, pageID, f, GuardWrite), true
}
