// Partition methods are called under the shared gate with the partition
// mutex held, except free() and iterate() which belong to the collector
// and run under the exclusive gate.

package term

import "sync"
import "sync/atomic"

// Partition is a per-worker bucket of node storage. Slots are carved
// out of fixed size slabs and recycled through a freelist, following
// the flist allocator discipline. Slots never move; a freed slot bumps
// its generation so that stale handles are caught on dereference.
//
// The slab directory is allocated at full length up front and entries
// are installed by index, never appended: node() chases the directory
// lock-free on every dereference, and a reader holding a published
// handle must never observe a slice header in flux. The entry for a
// handle's slab is written before the handle leaves the structural
// index, so the lock chain through the index shard orders the two.
type Partition struct {
	nalloc int64 // 64-bit aligned, live nodes in this partition

	poolid   int
	slabsize int64
	maxslots int64

	mu       sync.Mutex
	nslabs   int64        // directory entries installed so far
	slabs    [][]termnode // fixed length, nil until installed
	freelist []uint64
}

func newpartition(poolid int, slabsize, maxslots int64) *Partition {
	ndirs := (maxslots + slabsize - 1) / slabsize
	return &Partition{
		poolid:   poolid,
		slabsize: slabsize,
		maxslots: maxslots,
		slabs:    make([][]termnode, ndirs),
	}
}

func (part *Partition) node(slot uint64) *termnode {
	return &part.slabs[slot/uint64(part.slabsize)][slot%uint64(part.slabsize)]
}

// alloc carve out a free slot, growing the partition by one slab when
// the freelist drains. Returns false when the partition is at its
// configured limit; the pool is expected to collect and retry.
func (part *Partition) alloc() (slot uint64, ok bool) {
	part.mu.Lock()
	defer part.mu.Unlock()

	if len(part.freelist) == 0 {
		nslots := part.nslabs * part.slabsize
		if nslots >= part.maxslots {
			return 0, false
		}
		size := part.slabsize
		if remain := part.maxslots - nslots; remain < size {
			size = remain
		}
		part.slabs[part.nslabs] = make([]termnode, size)
		base := uint64(part.nslabs * part.slabsize)
		part.nslabs++
		for i := size - 1; i >= 0; i-- {
			part.freelist = append(part.freelist, base+uint64(i))
		}
	}
	slot = part.freelist[len(part.freelist)-1]
	part.freelist = part.freelist[:len(part.freelist)-1]
	nd := part.node(slot)
	nd.inuse, nd.marked = true, false
	atomic.AddInt64(&part.nalloc, 1)
	return slot, true
}

// free return a slot to the freelist and bump its generation. Exclusive
// gate only.
func (part *Partition) free(slot uint64) {
	nd := part.node(slot)
	if nd.inuse == false {
		panicerr("partition %v free(): slot %v not in use", part.poolid, slot)
	}
	nd.inuse, nd.marked = false, false
	nd.gen = uint16((uint64(nd.gen) + 1) & genmask)
	nd.sym, nd.args, nd.ival, nd.hash, nd.rc = nil, nil, 0, 0, 0
	part.freelist = append(part.freelist, slot)
	atomic.AddInt64(&part.nalloc, -1)
}

// iterate over in-use slots. Exclusive gate only.
func (part *Partition) iterate(fn func(slot uint64, nd *termnode)) {
	for i, slab := range part.slabs {
		base := uint64(int64(i) * part.slabsize)
		for j := range slab {
			if slab[j].inuse {
				fn(base+uint64(j), &slab[j])
			}
		}
	}
}

// allocated return the number of live nodes.
func (part *Partition) allocated() int64 {
	return atomic.LoadInt64(&part.nalloc)
}

// slots return the number of slots carved out so far.
func (part *Partition) slots() int64 {
	part.mu.Lock()
	defer part.mu.Unlock()
	n := int64(0)
	for _, slab := range part.slabs {
		n += int64(len(slab))
	}
	return n
}

func (part *Partition) release() {
	part.mu.Lock()
	defer part.mu.Unlock()
	part.slabs, part.freelist = nil, nil
	atomic.StoreInt64(&part.nalloc, 0)
}
