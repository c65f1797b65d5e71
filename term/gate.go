package term

import "sync"

// Gate is a shared/exclusive lock separating term construction from
// collection. Construction and lookup hold the gate in shared mode,
// many holders at a time; the collector holds it in exclusive mode,
// alone. Exclusive acquisition blocks until every shared holder drains,
// and parks new shared holders until released, so a pending collection
// is never starved by a stream of allocators. Acquisition is an
// unconditional wait; there are no timeouts.
type Gate struct {
	mu        sync.Mutex
	granted   *sync.Cond
	nshared   int64
	nwaiting  int64
	exclusive bool
}

func (g *Gate) init() {
	g.granted = sync.NewCond(&g.mu)
}

// LockShared acquire the gate in shared mode, blocking while a
// collection cycle holds, or waits for, the exclusive mode.
func (g *Gate) LockShared() {
	g.mu.Lock()
	for g.exclusive || g.nwaiting > 0 {
		g.granted.Wait()
	}
	g.nshared++
	g.mu.Unlock()
}

// UnlockShared undo a single LockShared call. It is a run-time error if
// the gate is not held in shared mode.
func (g *Gate) UnlockShared() {
	g.mu.Lock()
	g.nshared--
	if g.nshared < 0 {
		g.mu.Unlock()
		panic("gate not locked in shared mode")
	}
	if g.nshared == 0 {
		g.granted.Broadcast()
	}
	g.mu.Unlock()
}

// LockExclusive acquire the gate in exclusive mode, blocking until all
// shared holders release.
func (g *Gate) LockExclusive() {
	g.mu.Lock()
	g.nwaiting++
	for g.exclusive || g.nshared > 0 {
		g.granted.Wait()
	}
	g.nwaiting--
	g.exclusive = true
	g.mu.Unlock()
}

// UnlockExclusive release the exclusive mode. It is a run-time error if
// the gate is not held in exclusive mode.
func (g *Gate) UnlockExclusive() {
	g.mu.Lock()
	if g.exclusive == false {
		g.mu.Unlock()
		panic("gate not locked in exclusive mode")
	}
	g.exclusive = false
	g.granted.Broadcast()
	g.mu.Unlock()
}

// IsSharedLocked return whether at least one shared holder is active.
// Diagnostics only, the answer can be stale by the time it is read.
func (g *Gate) IsSharedLocked() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.nshared > 0
}

// IsExclusiveLocked return whether the exclusive mode is held.
// Diagnostics only.
func (g *Gate) IsExclusiveLocked() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.exclusive
}
