package term

import "fmt"
import "sync/atomic"
import "time"

import "github.com/bnclabs/golog"
import s "github.com/bnclabs/gosettings"
import humanize "github.com/dustin/go-humanize"

import "github.com/bnclabs/goterm/api"
import "github.com/bnclabs/goterm/lib"

// Pool is a hash-consed store of term nodes. All construction, lookup
// and argument access runs under the shared mode of the pool's gate;
// collection runs under the exclusive mode. Every handle returned by
// the pool is protected and shall be released by the caller once done
// with it.
type Pool struct {
	// 64-bit aligned stats and knobs
	nmakes      int64
	nhits       int64
	ncycles     int64
	nreclaimed  int64
	gcwater     int64
	gcphase     int64
	autocollect int64
	seq         uint64

	name      string
	logprefix string

	// settings
	capacity    int64
	slabsize    int64
	gcthreshold float64

	gate       Gate
	symbols    *symtable
	index      *structindex
	partitions []*Partition
	roots      *rootset

	// reserved symbols and terms
	symint  Symbol
	symcons Symbol
	symnil  Symbol
	nilterm Term

	// gc statistics, mutated under the exclusive gate
	gcpause   lib.AverageInt64
	gcreclaim lib.AverageInt64
}

// NewPool create a new term pool with given settings, ref.
// Defaultsettings().
func NewPool(name string, setts s.Settings) *Pool {
	setts = Defaultsettings().Mixin(setts)
	validatesettings(setts)

	pool := &Pool{
		name:        name,
		logprefix:   fmt.Sprintf("[goterm-%v]", name),
		capacity:    setts.Int64("capacity"),
		slabsize:    setts.Int64("slabsize"),
		gcthreshold: setts.Float64("gc.threshold"),
		symbols:     newsymtable(),
		roots:       newrootset(),
	}
	pool.gate.init()
	pool.index = newstructindex(setts.Int64("index.shards"))

	npartitions := setts.Int64("partitions")
	maxslots := (pool.capacity + npartitions - 1) / npartitions
	slabsize := pool.slabsize
	if slabsize > maxslots {
		slabsize = maxslots
	}
	pool.partitions = make([]*Partition, npartitions)
	for i := range pool.partitions {
		pool.partitions[i] = newpartition(i, slabsize, maxslots)
	}

	pool.symint = pool.symbols.intern("<int>", 0)
	pool.symcons = pool.symbols.intern("<list>", 2)
	pool.symnil = pool.symbols.intern("<empty_list>", 0)
	// the canonical empty list, protected for the pool's lifetime.
	pool.nilterm = pool.makenode(pool.symnil, nil, 0)
	pool.nmakes, pool.nhits = 0, 0 // don't count bootstrap

	atomic.StoreInt64(&pool.gcwater, int64(pool.gcthreshold*float64(pool.capacity)))
	pool.Autocollect(setts.Bool("autocollect"))

	fmsg := "%v started with %v partitions, capacity %v\n"
	log.Infof(fmsg, pool.logprefix, npartitions, pool.capacity)
	return pool
}

// Name return pool name.
func (pool *Pool) Name() string {
	return pool.name
}

//---- symbols

// Symbol intern (name, arity) and return a protected handle to the
// canonical record, creating it on first use. Matching handles are
// released with ReleaseSymbol.
func (pool *Pool) Symbol(name string, arity int) Symbol {
	if arity < 0 {
		panicerr("negative arity %v for symbol %q", arity, name)
	}
	pool.gate.LockShared()
	defer pool.gate.UnlockShared()
	pool.assertopen()
	return pool.symbols.intern(name, arity)
}

// ProtectSymbol add a reference to the symbol record.
func (pool *Pool) ProtectSymbol(sym Symbol) {
	pool.gate.LockShared()
	defer pool.gate.UnlockShared()
	pool.symbols.protect(sym)
}

// ReleaseSymbol drop a reference to the symbol record. The record is
// finalized by a later collection cycle once its count is zero. An
// unmatched release panics.
func (pool *Pool) ReleaseSymbol(sym Symbol) {
	pool.gate.LockShared()
	defer pool.gate.UnlockShared()
	pool.symbols.release(sym)
}

//---- term construction

// MakeTerm construct, or look up, the application of sym to args and
// return a protected handle to the canonical node. Fails with
// ErrorArityMismatch when len(args) differ from the symbol's arity, and
// with ErrorInvalidList when sym is the list-cell symbol and the second
// argument is not a list; no node is created either way.
func (pool *Pool) MakeTerm(sym Symbol, args []Term) (Term, error) {
	if sym.IsNil() {
		panicerr("nil symbol")
	}
	if len(args) != sym.Arity() {
		return 0, api.ErrorArityMismatch
	}
	if sym.r == pool.symcons.r {
		if pool.IsList(args[1]) == false {
			return 0, api.ErrorInvalidList
		}
	}
	pool.maybecollect()
	return pool.makenode(sym, args, 0), nil
}

// MakeInt construct, or look up, the integer literal term for value.
func (pool *Pool) MakeInt(value int64) Term {
	pool.maybecollect()
	return pool.makenode(pool.symint, nil, value)
}

// EmptyList return a protected handle to the canonical empty list.
func (pool *Pool) EmptyList() Term {
	pool.gate.LockShared()
	defer pool.gate.UnlockShared()
	pool.assertopen()
	pool.fetch(pool.nilterm).protect()
	return pool.nilterm
}

// Cons construct, or look up, the list cell (head, tail). Fails with
// ErrorInvalidList when tail is not a list term.
func (pool *Pool) Cons(head, tail Term) (Term, error) {
	if pool.IsList(tail) == false {
		return 0, api.ErrorInvalidList
	}
	pool.maybecollect()
	return pool.makenode(pool.symcons, []Term{head, tail}, 0), nil
}

// makenode canonicalizing constructor behind the public variants.
// Arity is already validated. Looks up the structural index under the
// shared gate and allocates in one of the partitions on a miss; two
// threads racing to construct the same structure share one node, the
// loser's allocation never happens.
func (pool *Pool) makenode(sym Symbol, args []Term, ival int64) Term {
	pool.gate.LockShared()
	defer pool.gate.UnlockShared()
	pool.assertopen()

	h := lib.Mixhash(sym.r.hash, uint64(ival))
	for _, arg := range args {
		h = lib.Mixhash(h, pool.fetch(arg).hash)
	}

	match := func(t Term) bool {
		nd := pool.fetch(t)
		if nd.sym != sym.r || nd.ival != ival || len(nd.args) != len(args) {
			return false
		}
		for i, arg := range args {
			if nd.args[i] != arg {
				return false
			}
		}
		return true
	}
	alloc := func() Term {
		n := uint64(len(pool.partitions))
		part := pool.partitions[atomic.AddUint64(&pool.seq, 1)%n]
		slot, ok := part.alloc()
		if ok == false { // striping left this partition full, try the rest
			for _, part = range pool.partitions {
				if slot, ok = part.alloc(); ok {
					break
				}
			}
		}
		if ok == false {
			panic(api.ErrorPoolFull)
		}
		nd := part.node(slot)
		nd.sym, nd.ival, nd.hash, nd.args = sym.r, ival, h, nil
		if len(args) > 0 {
			nd.args = make([]Term, len(args))
			copy(nd.args, args)
		}
		atomic.StoreInt32(&nd.rc, 1)
		atomic.AddInt64(&sym.r.rc, 1)
		return maketerm(part.poolid, slot, nd.gen)
	}

	t, existing := pool.index.intern(h, match, alloc)
	if existing {
		pool.fetch(t).protect()
		atomic.AddInt64(&pool.nhits, 1)
	}
	atomic.AddInt64(&pool.nmakes, 1)
	return t
}

//---- term access

// TermSymbol return the function symbol of t. The returned handle
// borrows the term's reference: it is valid while t is live, callers
// keeping it longer shall ProtectSymbol it.
func (pool *Pool) TermSymbol(t Term) Symbol {
	pool.gate.LockShared()
	defer pool.gate.UnlockShared()
	return Symbol{r: pool.fetch(t).sym}
}

// Arity return the number of argument terms of t.
func (pool *Pool) Arity(t Term) int {
	pool.gate.LockShared()
	defer pool.gate.UnlockShared()
	return len(pool.fetch(t).args)
}

// Argument return a protected handle to the index-th argument of t.
// Fails with ErrorIndexOutofRange when index exceeds the arity.
func (pool *Pool) Argument(t Term, index int) (Term, error) {
	pool.gate.LockShared()
	defer pool.gate.UnlockShared()
	nd := pool.fetch(t)
	if index < 0 || index >= len(nd.args) {
		return 0, api.ErrorIndexOutofRange
	}
	arg := nd.args[index]
	pool.fetch(arg).protect()
	return arg, nil
}

// IsInt return whether t is an integer literal.
func (pool *Pool) IsInt(t Term) bool {
	pool.gate.LockShared()
	defer pool.gate.UnlockShared()
	return pool.fetch(t).sym == pool.symint.r
}

// IsList return whether t is a list cell or the empty list.
func (pool *Pool) IsList(t Term) bool {
	pool.gate.LockShared()
	defer pool.gate.UnlockShared()
	sym := pool.fetch(t).sym
	return sym == pool.symcons.r || sym == pool.symnil.r
}

// IsEmptyList return whether t is the empty list.
func (pool *Pool) IsEmptyList(t Term) bool {
	pool.gate.LockShared()
	defer pool.gate.UnlockShared()
	return pool.fetch(t).sym == pool.symnil.r
}

// IntValue return the payload of an integer literal, false when t is
// not one.
func (pool *Pool) IntValue(t Term) (int64, bool) {
	pool.gate.LockShared()
	defer pool.gate.UnlockShared()
	nd := pool.fetch(t)
	if nd.sym != pool.symint.r {
		return 0, false
	}
	return nd.ival, true
}

//---- handle lifetime

// Protect add a reference to the term node. A node with a positive
// count, and everything reachable from it, survives collection.
func (pool *Pool) Protect(t Term) {
	pool.gate.LockShared()
	defer pool.gate.UnlockShared()
	pool.fetch(t).protect()
}

// Release drop a reference to the term node. The node stays resident
// until a later cycle finds it unreachable. An unmatched release
// panics with ErrorReleaseUnderflow.
func (pool *Pool) Release(t Term) {
	pool.gate.LockShared()
	defer pool.gate.UnlockShared()
	pool.fetch(t).release()
}

//---- equality, ordering, hashing

// TermHash return the structural hash of t, O(1). Hashes key on symbol
// name and arity and fold in child hashes, so equal structures hash
// equal across runs and across pools.
func (pool *Pool) TermHash(t Term) uint64 {
	pool.gate.LockShared()
	defer pool.gate.UnlockShared()
	return pool.fetch(t).hash
}

// TermLess is a total order over live terms defined on structural
// content, deterministic across runs and pools, unlike handle order
// which depends on allocation history. Handle equality remains the
// equality predicate.
func (pool *Pool) TermLess(a, b Term) bool {
	pool.gate.LockShared()
	defer pool.gate.UnlockShared()
	return pool.compare(a, b) < 0
}

const (
	rankint = iota
	ranknil
	rankcons
	rankappl
)

func (pool *Pool) rankof(nd *termnode) int {
	switch nd.sym {
	case pool.symint.r:
		return rankint
	case pool.symnil.r:
		return ranknil
	case pool.symcons.r:
		return rankcons
	}
	return rankappl
}

func (pool *Pool) compare(a, b Term) int {
	if a == b {
		return 0
	}
	nda, ndb := pool.fetch(a), pool.fetch(b)
	ra, rb := pool.rankof(nda), pool.rankof(ndb)
	if ra != rb {
		return ra - rb
	}
	if ra == rankint {
		if nda.ival < ndb.ival {
			return -1
		}
		return 1
	}
	if nda.sym != ndb.sym {
		if nda.sym.name != ndb.sym.name {
			if nda.sym.name < ndb.sym.name {
				return -1
			}
			return 1
		}
		return nda.sym.arity - ndb.sym.arity
	}
	for i := range nda.args {
		if c := pool.compare(nda.args[i], ndb.args[i]); c != 0 {
			return c
		}
	}
	return 0
}

//---- diagnostics and maintenance

// Size return the number of live nodes across all partitions.
func (pool *Pool) Size() int64 {
	size := int64(0)
	for _, part := range pool.partitions {
		size += part.allocated()
	}
	return size
}

// Capacity return the number of node slots carved out so far, across
// all partitions.
func (pool *Pool) Capacity() int64 {
	pool.gate.LockShared()
	defer pool.gate.UnlockShared()
	pool.assertopen()
	slots := int64(0)
	for _, part := range pool.partitions {
		slots += part.slots()
	}
	return slots
}

// Stats return pool statistics.
func (pool *Pool) Stats() map[string]interface{} {
	pool.gate.LockShared()
	defer pool.gate.UnlockShared()
	pool.assertopen()

	stats := make(map[string]interface{})
	stats["n.live"] = pool.Size()
	stats["n.makes"] = atomic.LoadInt64(&pool.nmakes)
	stats["n.hits"] = atomic.LoadInt64(&pool.nhits)
	stats["n.capacity"] = pool.capacity
	slots := int64(0)
	for _, part := range pool.partitions {
		slots += part.slots()
	}
	stats["n.slots"] = slots
	stats["n.partitions"] = int64(len(pool.partitions))
	stats["symbols.live"] = pool.symbols.live()
	stats["index.entries"] = pool.index.entries()
	stats["gc.cycles"] = atomic.LoadInt64(&pool.ncycles)
	stats["gc.reclaimed"] = atomic.LoadInt64(&pool.nreclaimed)
	stats["gc.watermark"] = atomic.LoadInt64(&pool.gcwater)
	stats["gc.phase"] = atomic.LoadInt64(&pool.gcphase)
	nroots, nlive := pool.roots.count()
	stats["roots.count"] = nroots
	stats["roots.live"] = nlive
	return stats
}

// Log pool statistics via the configured logger.
func (pool *Pool) Log(humanized bool) {
	stats := pool.Stats()
	comma := func(key string) interface{} {
		if humanized {
			return humanize.Comma(stats[key].(int64))
		}
		return stats[key]
	}

	fmsg := "%v terms {live:%v slots:%v capacity:%v makes:%v hits:%v}\n"
	log.Infof(
		fmsg, pool.logprefix, comma("n.live"), comma("n.slots"),
		comma("n.capacity"), comma("n.makes"), comma("n.hits"))
	fmsg = "%v symbols {live:%v} roots {count:%v live:%v}\n"
	log.Infof(
		fmsg, pool.logprefix, comma("symbols.live"),
		comma("roots.count"), comma("roots.live"))
	fmsg = "%v gc {cycles:%v reclaimed:%v pause.mean:%v pause.max:%v}\n"
	log.Infof(
		fmsg, pool.logprefix, comma("gc.cycles"), comma("gc.reclaimed"),
		time.Duration(pool.gcpause.Mean()), time.Duration(pool.gcpause.Max()))
}

// Validate walk every partition and confirm the pool invariants: node
// arity matches its symbol, every argument is live, every live node is
// indexed, live counts tally. Panics on the first violation.
func (pool *Pool) Validate() {
	pool.gate.LockExclusive()
	defer pool.gate.UnlockExclusive()
	pool.assertopen()

	live := int64(0)
	for _, part := range pool.partitions {
		count := int64(0)
		part.iterate(func(slot uint64, nd *termnode) {
			count++
			if nd.sym == nil {
				panicerr("validate: slot %v in use without symbol", slot)
			} else if len(nd.args) != nd.sym.arity {
				fmsg := "validate: %v/%v node arity %v, symbol arity %v"
				panicerr(fmsg, part.poolid, slot, len(nd.args), nd.sym.arity)
			} else if t := maketerm(part.poolid, slot, nd.gen); !pool.index.contains(nd.hash, t) {
				panicerr("validate: %x not in structural index", t)
			}
			for _, arg := range nd.args {
				pool.fetch(arg)
			}
		})
		if allocated := part.allocated(); count != allocated {
			fmsg := "validate: partition %v counted %v, accounted %v"
			panicerr(fmsg, part.poolid, count, allocated)
		}
		live += count
	}
	if entries := pool.index.entries(); entries != live {
		panicerr("validate: index entries %v, live nodes %v", entries, live)
	}
}

// Close release the pool's storage. All outstanding handles become
// invalid; any further term operation panics.
func (pool *Pool) Close() {
	pool.Log(false /*humanized*/)

	pool.gate.LockExclusive()
	defer pool.gate.UnlockExclusive()
	pool.assertopen()
	for _, part := range pool.partitions {
		part.release()
	}
	pool.partitions, pool.index, pool.symbols = nil, nil, nil
	log.Infof("%v closed\n", pool.logprefix)
}

//---- gate, exposed for callers that need a stable window across
//---- multiple operations.

// LockShared acquire the pool gate in shared mode. Term operations
// already take the gate per call; explicit locking is for callers that
// need collection held off across a sequence of reads.
func (pool *Pool) LockShared() { pool.gate.LockShared() }

// UnlockShared release one shared hold.
func (pool *Pool) UnlockShared() { pool.gate.UnlockShared() }

// LockExclusive acquire the pool gate in exclusive mode.
func (pool *Pool) LockExclusive() { pool.gate.LockExclusive() }

// UnlockExclusive release the exclusive hold.
func (pool *Pool) UnlockExclusive() { pool.gate.UnlockExclusive() }

//---- local functions

// fetch the node behind a handle, panics on the nil term, on a closed
// pool and on stale handles whose slot was reclaimed and recycled.
func (pool *Pool) fetch(t Term) *termnode {
	if t == 0 {
		panicerr("nil term handle")
	}
	pool.assertopen()
	poolid := partitionof(t)
	if poolid >= len(pool.partitions) {
		panicerr("foreign handle %x to pool %q", t, pool.name)
	}
	nd := pool.partitions[poolid].node(slotof(t))
	if nd.inuse == false || nd.gen != generationof(t) {
		panicerr("stale term handle %x", t)
	}
	return nd
}

func (pool *Pool) assertopen() {
	if pool.partitions == nil {
		panic(api.ErrorPoolClosed)
	}
}
