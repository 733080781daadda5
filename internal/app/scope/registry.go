package scope

import "sync"

const shardCount = 32

// registry is the process-wide mapping from unit to slot, sharded to keep
// first-access contention between parallel goroutines low.
type registry struct {
	shards [shardCount]shard
}

type shard struct {
	sync.RWMutex
	slots map[Unit]*Slot
}

func newRegistry() *registry {
	r := &registry{}
	for i := range r.shards {
		r.shards[i].slots = make(map[Unit]*Slot)
	}

	return r
}

func (r *registry) shard(u Unit) *shard {
	return &r.shards[uint64(u.ID)%shardCount]
}

// load returns the unit's slot, or nil if it has none.
func (r *registry) load(u Unit) *Slot {
	sh := r.shard(u)
	sh.RLock()
	s := sh.slots[u]
	sh.RUnlock()

	return s
}

// loadOrCreate returns the unit's slot, allocating an empty one on first use.
func (r *registry) loadOrCreate(u Unit) (*Slot, bool) {
	if s := r.load(u); s != nil {
		return s, false
	}

	sh := r.shard(u)
	sh.Lock()
	defer sh.Unlock()

	if s, ok := sh.slots[u]; ok {
		return s, false
	}

	s := NewSlot()
	sh.slots[u] = s

	return s, true
}

// swap installs next as the unit's slot and returns the previous one.
// A nil next removes the entry.
func (r *registry) swap(u Unit, next *Slot) *Slot {
	sh := r.shard(u)
	sh.Lock()
	prev := sh.slots[u]

	if next == nil {
		delete(sh.slots, u)
	} else {
		sh.slots[u] = next
	}
	sh.Unlock()

	return prev
}

func (r *registry) len() int {
	n := 0
	for i := range r.shards {
		sh := &r.shards[i]
		sh.RLock()
		n += len(sh.slots)
		sh.RUnlock()
	}

	return n
}

func (r *registry) reset() {
	for i := range r.shards {
		sh := &r.shards[i]
		sh.Lock()
		clear(sh.slots)
		sh.Unlock()
	}
}
