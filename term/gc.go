package term

import "sync/atomic"
import "time"

import "github.com/bnclabs/golog"
import "github.com/bnclabs/goterm/api"

// collector phases, visible through Stats() as "gc.phase".
const (
	gcIdle int64 = iota
	gcMarking
	gcSweeping
)

// markstack is the worklist for the mark phase, implements
// api.MarkStack.
type markstack struct {
	pool  *Pool
	stack []Term
}

// Push implement api.MarkStack interface.
func (ms *markstack) Push(t Term) {
	if t != 0 {
		ms.stack = append(ms.stack, t)
	}
}

// Collect force a collection cycle: acquire the gate in exclusive mode,
// mark every node reachable from protected handles and registered
// roots, sweep the rest back to the partition freelists and finalize
// function symbols whose reference count dropped to zero. Live nodes
// are never moved.
func (pool *Pool) Collect() {
	pool.gate.LockExclusive()
	defer pool.gate.UnlockExclusive()
	pool.docollect()
}

// docollect run one cycle. Exclusive gate only.
func (pool *Pool) docollect() {
	pool.assertopen()
	start := time.Now()

	// mark phase: seed from protected nodes and registered roots,
	// then trace. Construction completes under the shared gate, so
	// there are no half-built nodes to account for here.
	atomic.StoreInt64(&pool.gcphase, gcMarking)
	ms := &markstack{pool: pool}
	for _, part := range pool.partitions {
		poolid := part.poolid
		part.iterate(func(slot uint64, nd *termnode) {
			if nd.refcount() > 0 {
				ms.stack = append(ms.stack, maketerm(poolid, slot, nd.gen))
			}
		})
	}
	pool.roots.markall(ms)
	for len(ms.stack) > 0 {
		t := ms.stack[len(ms.stack)-1]
		ms.stack = ms.stack[:len(ms.stack)-1]
		nd := pool.fetch(t)
		if nd.marked {
			continue
		}
		nd.marked = true
		ms.stack = append(ms.stack, nd.args...)
	}

	// sweep phase: unmarked nodes go back to their freelist, each
	// returning the reference it owns on its symbol. Marks are cleared
	// on the way out.
	atomic.StoreInt64(&pool.gcphase, gcSweeping)
	reclaimed := int64(0)
	for _, part := range pool.partitions {
		part.iterate(func(slot uint64, nd *termnode) {
			if nd.marked {
				nd.marked = false
				return
			}
			pool.index.remove(nd.hash, maketerm(part.poolid, slot, nd.gen))
			atomic.AddInt64(&nd.sym.rc, -1)
			part.free(slot)
			reclaimed++
		})
	}
	symreclaimed := pool.symbols.sweep()
	atomic.StoreInt64(&pool.gcphase, gcIdle)

	pause := int64(time.Since(start))
	atomic.AddInt64(&pool.ncycles, 1)
	atomic.AddInt64(&pool.nreclaimed, reclaimed)
	pool.gcpause.Add(pause)
	pool.gcreclaim.Add(reclaimed)
	pool.retarget()

	fmsg := "%v gc: reclaimed %v terms, %v symbols in %v\n"
	log.Debugf(fmsg, pool.logprefix, reclaimed, symreclaimed, time.Duration(pause))
}

// Autocollect toggle collection under allocation pressure. When
// enabled, a construction that finds the live count at or above the gc
// watermark runs a cycle before allocating.
func (pool *Pool) Autocollect(enable bool) {
	if enable {
		atomic.StoreInt64(&pool.autocollect, 1)
		return
	}
	atomic.StoreInt64(&pool.autocollect, 0)
}

// maybecollect run a cycle if auto collection is armed and the live
// count crossed the watermark. Called without the gate held.
func (pool *Pool) maybecollect() {
	if atomic.LoadInt64(&pool.autocollect) == 0 {
		return
	}
	if pool.Size() < atomic.LoadInt64(&pool.gcwater) {
		return
	}
	pool.Collect()
}

// retarget move the gc watermark past the surviving live set, so that a
// workload whose live set legitimately exceeds the threshold does not
// collect on every construction. Exclusive gate only.
func (pool *Pool) retarget() {
	live := pool.Size()
	headroom := (pool.capacity - live) / 2
	if min := pool.capacity / 20; headroom < min {
		headroom = min
	}
	water := live + headroom
	if base := int64(pool.gcthreshold * float64(pool.capacity)); water < base {
		water = base
	}
	if water > pool.capacity {
		water = pool.capacity
	}
	atomic.StoreInt64(&pool.gcwater, water)
}

var _ api.MarkStack = &markstack{}
