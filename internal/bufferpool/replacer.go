package bufferpool

import (
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// AccessType hints at why a frame was touched. The LRU-K policy below
// ignores it; the field exists so callers and future policies can use it.
type AccessType int

const (
	AccessUnknown AccessType = iota
	AccessLookup
	AccessScan
	AccessIndex
)

func (a AccessType) String() string {
	switch a {
	case AccessLookup:
		return "lookup"
	case AccessScan:
		return "scan"
	case AccessIndex:
		return "index"
	default:
		return "unknown"
	}
}

// replacerNode tracks a frame's access history, newest timestamp first,
// capped at K entries, plus whether the pool currently allows eviction.
type replacerNode struct {
	history   []int64
	evictable bool
}

// LRUKReplacer chooses eviction victims among frames marked evictable
// using the backward K-distance policy: the frame whose K-th most recent
// access is furthest in the past is evicted first, with frames that have
// fewer than K recorded accesses treated as having infinite distance and
// broken by classical LRU among themselves.
type LRUKReplacer struct {
	mu sync.Mutex

	capacity      int
	k             int
	nodes         map[int]*replacerNode
	evictableSize int
}

// NewLRUKReplacer creates a replacer using a K-access history whose count
// of evictable frames may not exceed capacity.
func NewLRUKReplacer(capacity, k int) *LRUKReplacer {
	if k <= 0 {
		k = 2
	}
	return &LRUKReplacer{
		capacity: capacity,
		k:        k,
		nodes:    make(map[int]*replacerNode),
	}
}

// RecordAccess appends the current timestamp to frameID's history,
// creating the node (non-evictable) on first access.
func (r *LRUKReplacer) RecordAccess(frameID int, accessType AccessType) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UnixNano()
	n, ok := r.nodes[frameID]
	if !ok {
		n = &replacerNode{}
		r.nodes[frameID] = n
	}

	n.history = append([]int64{now}, n.history...)
	if len(n.history) > r.k {
		n.history = n.history[:r.k]
	}

	slog.Debug(logDebugPrefix+"record access", "frameID", frameID, "accessType", accessType)
}

// SetEvictable toggles whether frameID may be chosen by Evict. Calling it
// on a frame with no recorded access, or raising the evictable count
// above capacity, is a programming error and panics.
func (r *LRUKReplacer) SetEvictable(frameID int, evictable bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	n, ok := r.nodes[frameID]
	if !ok {
		panic(fmt.Sprintf("bufferpool: set_evictable on unknown frame %d", frameID))
	}
	if n.evictable == evictable {
		return
	}
	n.evictable = evictable
	if evictable {
		r.evictableSize++
		if r.evictableSize > r.capacity {
			panic(fmt.Sprintf("bufferpool: evictable count %d exceeds capacity %d", r.evictableSize, r.capacity))
		}
	} else {
		r.evictableSize--
	}
}

// Remove drops frameID's access history entirely. Removing an unknown
// frame is a no-op; removing a non-evictable frame is a programming error.
func (r *LRUKReplacer) Remove(frameID int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	n, ok := r.nodes[frameID]
	if !ok {
		return
	}
	if !n.evictable {
		panic(fmt.Sprintf("bufferpool: remove of non-evictable frame %d", frameID))
	}
	delete(r.nodes, frameID)
	r.evictableSize--
}

// Evict picks the victim frame with the largest backward K-distance
// among evictable frames and removes its history. It returns ok=false
// when no evictable frame exists.
func (r *LRUKReplacer) Evict() (int, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.evictableSize == 0 {
		return 0, false
	}

	now := time.Now().UnixNano()

	victimID := -1
	var victimInf bool
	var victimDist int64
	var victimOldest int64

	for frameID, n := range r.nodes {
		if !n.evictable {
			continue
		}

		inf := len(n.history) < r.k
		oldest := n.history[len(n.history)-1]
		var dist int64
		if !inf {
			dist = now - n.history[r.k-1]
		}

		if victimID == -1 || betterVictim(inf, dist, oldest, victimInf, victimDist, victimOldest) {
			victimID, victimInf, victimDist, victimOldest = frameID, inf, dist, oldest
		}
	}

	if victimID == -1 {
		return 0, false
	}

	delete(r.nodes, victimID)
	r.evictableSize--

	slog.Debug(logDebugPrefix+"evicted frame", "frameID", victimID, "infiniteDistance", victimInf)
	return victimID, true
}

// betterVictim reports whether candidate a should be preferred over the
// current best b: infinite K-distance beats finite, earliest oldest
// access wins among infinites, largest K-distance wins among finites.
func betterVictim(aInf bool, aDist, aOldest int64, bInf bool, bDist, bOldest int64) bool {
	if aInf != bInf {
		return aInf
	}
	if aInf {
		return aOldest < bOldest
	}
	return aDist > bDist
}

// Size returns the number of frames currently marked evictable.
func (r *LRUKReplacer) Size() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.evictableSize
}
