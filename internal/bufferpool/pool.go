package bufferpool

import (
	"errors"
	"log/slog"
	"sync"

	"github.com/novadb/novastore/internal/diskio"
	"github.com/novadb/novastore/internal/storage"
)

const (
	logDebugPrefix = "bufferpool: "

	// DefaultCapacity is the frame count used when the caller does not
	// specify one.
	DefaultCapacity = 128

	// DefaultK is the LRU-K history depth used when the caller does not
	// specify one.
	DefaultK = 2
)

// InvalidPageID is the sentinel page id: NewPage returns it when no page
// could be allocated, and a frame holding no page carries it.
const InvalidPageID uint32 = ^uint32(0)

// ErrPagePinned describes a delete refused because the page is still
// pinned. DeletePage itself reports that case by returning false.
var ErrPagePinned = errors.New("bufferpool: page is pinned")

// frame holds a single page and its bookkeeping inside the pool. Its
// rw lock serializes readers/writers of the frame's bytes independently
// of the pool-wide latch that protects bookkeeping.
type frame struct {
	rw     sync.RWMutex
	pageID uint32
	page   *storage.Page
	dirty  bool
	pin    int32
}

// BufferPoolManager owns a fixed array of frames, a free list, and a
// page id -> frame index map. It coordinates an LRU-K replacer and a
// disk scheduler to service page faults.
type BufferPoolManager struct {
	sm        *storage.StorageManager
	fs        storage.FileSet
	scheduler *diskio.Scheduler

	mu         sync.Mutex
	frames     []*frame
	pageTable  map[uint32]int
	freeList   []int
	replacer   *LRUKReplacer
	nextPageID uint32
}

// NewBufferPoolManager creates a pool of capacity frames (DefaultCapacity
// if <= 0) backed by fs through sm, dispatching I/O through scheduler,
// using an LRU-K replacer with history depth k (DefaultK if <= 0).
func NewBufferPoolManager(sm *storage.StorageManager, fs storage.FileSet, scheduler *diskio.Scheduler, capacity, k int) *BufferPoolManager {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	if k <= 0 {
		k = DefaultK
	}

	frames := make([]*frame, capacity)
	freeList := make([]int, capacity)
	for i := range frames {
		frames[i] = &frame{pageID: InvalidPageID}
		freeList[i] = i
	}

	return &BufferPoolManager{
		sm:        sm,
		fs:        fs,
		scheduler: scheduler,
		frames:    frames,
		pageTable: make(map[uint32]int),
		freeList:  freeList,
		replacer:  NewLRUKReplacer(capacity, k),
	}
}

// newFrameLocked obtains a frame to host a page: the front of the free
// list if non-empty, otherwise an LRU-K victim. A dirty victim is
// written back through the scheduler before reuse; if that write fails
// the victim is restored as evictable and newFrameLocked reports
// failure rather than losing data. Caller must hold mu.
func (p *BufferPoolManager) newFrameLocked() (int, bool) {
	if len(p.freeList) > 0 {
		idx := p.freeList[0]
		p.freeList = p.freeList[1:]
		return idx, true
	}

	victimIdx, ok := p.replacer.Evict()
	if !ok {
		return -1, false
	}
	victim := p.frames[victimIdx]

	if victim.dirty {
		fut := p.scheduler.WritePage(victim.pageID, victim.page.Buf)
		if err := fut.Wait(); err != nil {
			slog.Debug(logDebugPrefix+"eviction writeback failed, keeping victim resident",
				"pageID", victim.pageID, "err", err)
			p.replacer.RecordAccess(victimIdx, AccessUnknown)
			p.replacer.SetEvictable(victimIdx, true)
			return -1, false
		}
		victim.dirty = false
	}

	delete(p.pageTable, victim.pageID)
	victim.pageID = InvalidPageID
	victim.page = nil
	victim.pin = 0

	return victimIdx, true
}

// newPageFrame allocates a fresh page id and installs it into a frame,
// returning the frame for callers that need direct access (e.g. guards).
func (p *BufferPoolManager) newPageFrame() (uint32, *frame, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	idx, ok := p.newFrameLocked()
	if !ok {
		return InvalidPageID, nil, false
	}

	pageID := p.nextPageID
	p.nextPageID++

	buf := make([]byte, storage.PageSize)
	pg, err := storage.NewPage(buf, pageID)
	if err != nil {
		p.freeList = append(p.freeList, idx)
		return InvalidPageID, nil, false
	}

	f := p.frames[idx]
	f.pageID = pageID
	f.page = pg
	f.dirty = false
	f.pin = 1

	p.pageTable[pageID] = idx
	p.replacer.RecordAccess(idx, AccessUnknown)
	p.replacer.SetEvictable(idx, false)

	slog.Debug(logDebugPrefix+"new page", "pageID", pageID, "frameIdx", idx)
	return pageID, f, true
}

// NewPage allocates a fresh page id, installs it into a pinned frame,
// and returns it. It returns ok=false iff no frame could be obtained.
func (p *BufferPoolManager) NewPage() (uint32, bool) {
	pageID, _, ok := p.newPageFrame()
	return pageID, ok
}

// fetchFrame resolves pageID to a pinned frame, reading it from disk via
// the scheduler on a miss. Because the pool latch is held across the
// disk wait, two concurrent misses for the same page id naturally
// serialize into a single read: the second caller blocks on mu and
// observes a page-table hit once the first completes.
func (p *BufferPoolManager) fetchFrame(pageID uint32, accessType AccessType) (*frame, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if idx, ok := p.pageTable[pageID]; ok {
		f := p.frames[idx]
		f.pin++
		p.replacer.RecordAccess(idx, accessType)
		if f.pin == 1 {
			p.replacer.SetEvictable(idx, false)
		}
		return f, true
	}

	idx, ok := p.newFrameLocked()
	if !ok {
		return nil, false
	}

	buf := make([]byte, storage.PageSize)
	fut := p.scheduler.ReadPage(pageID, buf)
	if err := fut.Wait(); err != nil {
		slog.Debug(logDebugPrefix+"fetch read failed", "pageID", pageID, "err", err)
		p.freeList = append(p.freeList, idx)
		return nil, false
	}

	pg, err := storage.WrapPage(buf)
	if err != nil {
		p.freeList = append(p.freeList, idx)
		return nil, false
	}
	if pg.IsUninitialized() {
		pg, _ = storage.NewPage(buf, pageID)
	}

	f := p.frames[idx]
	f.pageID = pageID
	f.page = pg
	f.dirty = false
	f.pin = 1

	p.pageTable[pageID] = idx
	p.replacer.RecordAccess(idx, accessType)
	p.replacer.SetEvictable(idx, false)

	slog.Debug(logDebugPrefix+"fetched page from disk", "pageID", pageID, "frameIdx", idx)
	return f, true
}

// FetchPage returns the page for pageID, pinning it, loading it from
// disk through the scheduler on a miss. It returns ok=false iff no
// frame could be obtained.
func (p *BufferPoolManager) FetchPage(pageID uint32, accessType AccessType) (*storage.Page, bool) {
	f, ok := p.fetchFrame(pageID, accessType)
	if !ok {
		return nil, false
	}
	return f.page, true
}

// UnpinPage decrements pageID's pin count and ORs isDirty into its dirty
// flag. It returns false if the page is not resident or already unpinned.
func (p *BufferPoolManager) UnpinPage(pageID uint32, isDirty bool) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	idx, ok := p.pageTable[pageID]
	if !ok {
		return false
	}
	f := p.frames[idx]
	if f.pin <= 0 {
		return false
	}

	f.pin--
	if isDirty {
		f.dirty = true
	}
	if f.pin == 0 {
		p.replacer.SetEvictable(idx, true)
	}

	slog.Debug(logDebugPrefix+"unpin", "pageID", pageID, "pin", f.pin, "dirty", f.dirty)
	return true
}

// FlushPage writes pageID's frame through the scheduler and clears its
// dirty flag, even if it was already clean. It returns false if the
// page is not resident or the write fails.
func (p *BufferPoolManager) FlushPage(pageID uint32) bool {
	if pageID == InvalidPageID {
		return false
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	idx, ok := p.pageTable[pageID]
	if !ok {
		return false
	}
	f := p.frames[idx]

	fut := p.scheduler.WritePage(pageID, f.page.Buf)
	if err := fut.Wait(); err != nil {
		slog.Debug(logDebugPrefix+"flush failed", "pageID", pageID, "err", err)
		return false
	}
	f.dirty = false
	return true
}

// FlushAllPages writes every resident page through the scheduler, dirty
// or not, matching FlushPage's per-page contract.
func (p *BufferPoolManager) FlushAllPages() {
	p.mu.Lock()
	defer p.mu.Unlock()

	for pageID, idx := range p.pageTable {
		f := p.frames[idx]
		fut := p.scheduler.WritePage(pageID, f.page.Buf)
		if err := fut.Wait(); err != nil {
			slog.Debug(logDebugPrefix+"flush-all failed for page", "pageID", pageID, "err", err)
			continue
		}
		f.dirty = false
	}
}

// DeletePage removes pageID from the pool. It returns true if the page
// was not resident (vacuous success) or was removed; it returns false
// if the page is pinned. A deleted dirty page's bytes are not written
// back.
func (p *BufferPoolManager) DeletePage(pageID uint32) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	idx, ok := p.pageTable[pageID]
	if !ok {
		return true
	}
	f := p.frames[idx]
	if f.pin != 0 {
		return false
	}

	delete(p.pageTable, pageID)
	p.replacer.Remove(idx)

	f.pageID = InvalidPageID
	f.page = nil
	f.dirty = false
	f.pin = 0

	p.freeList = append(p.freeList, idx)

	slog.Debug(logDebugPrefix+"deleted page", "pageID", pageID, "frameIdx", idx)
	return true
}
