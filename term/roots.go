package term

import "sync"

import "github.com/bnclabs/goterm/api"

// Registration is the handle returned by RegisterRoot. The registry
// owns the callback lifetime: a root is visited by every collection
// cycle between RegisterRoot and UnregisterRoot, nothing else keeps it
// alive and nothing visits it after.
type Registration struct {
	pool *Pool
	root api.Root
	id   uint64
}

// Close unregister the root, idempotent.
func (reg *Registration) Close() {
	reg.pool.UnregisterRoot(reg)
}

type rootset struct {
	mu     sync.Mutex
	nextid uint64
	roots  map[uint64]api.Root
}

func newrootset() *rootset {
	return &rootset{roots: make(map[uint64]api.Root)}
}

func (rs *rootset) register(pool *Pool, root api.Root) *Registration {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	rs.nextid++
	rs.roots[rs.nextid] = root
	return &Registration{pool: pool, root: root, id: rs.nextid}
}

func (rs *rootset) unregister(reg *Registration) {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	delete(rs.roots, reg.id)
}

// markall invoke every registered root's mark callback. Exclusive gate
// only.
func (rs *rootset) markall(stack api.MarkStack) {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	for _, root := range rs.roots {
		root.MarkRoots(stack)
	}
}

func (rs *rootset) count() (nroots, nlive int64) {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	for _, root := range rs.roots {
		nroots++
		nlive += int64(root.LiveCount())
	}
	return nroots, nlive
}

// funcroot adapt a pair of callbacks into an api.Root.
type funcroot struct {
	mark func(stack api.MarkStack)
	size func() int
}

func (fr *funcroot) MarkRoots(stack api.MarkStack) {
	fr.mark(stack)
}

func (fr *funcroot) LiveCount() int {
	if fr.size == nil {
		return 0
	}
	return fr.size()
}

// RegisterRoot add an external container of term handles to the set of
// collection roots. Terms reported by root.MarkRoots survive every
// cycle for as long as the registration is active. A root that omits a
// held term from MarkRoots breaks the reachability contract; the
// collector cannot detect the omission, the stale handle is caught
// later, loudly, by the generation check on its next dereference.
func (pool *Pool) RegisterRoot(root api.Root) *Registration {
	return pool.roots.register(pool, root)
}

// RegisterRootFunc is RegisterRoot for callers that have a mark
// callback and, optionally, a size callback rather than an api.Root
// value. size may be nil.
func (pool *Pool) RegisterRootFunc(
	mark func(stack api.MarkStack), size func() int) *Registration {

	return pool.RegisterRoot(&funcroot{mark: mark, size: size})
}

// UnregisterRoot remove a registration from future cycles. Safe to call
// more than once.
func (pool *Pool) UnregisterRoot(reg *Registration) {
	pool.roots.unregister(reg)
}
