package term

import "sync/atomic"

import "github.com/bnclabs/goterm/api"

// Term is an opaque handle to a pool resident node, ref.
// api.Term. Handles pack the owning partition, the node's slot within
// that partition and the slot's generation at the time the handle was
// issued. Generations catch handles that outlive their node.
type Term = api.Term

// handle layout, high to low:
//	[1 tag][15 generation][12 partition][36 slot]
const (
	slotbits = 36
	partbits = 12
	genbits  = 15

	slotmask = (uint64(1) << slotbits) - 1
	partmask = (uint64(1) << partbits) - 1
	genmask  = (uint64(1) << genbits) - 1

	termtag = uint64(1) << 63
)

func maketerm(partition int, slot uint64, gen uint16) Term {
	x := termtag
	x |= (uint64(gen) & genmask) << (slotbits + partbits)
	x |= (uint64(partition) & partmask) << slotbits
	x |= slot & slotmask
	return Term(x)
}

func slotof(t Term) uint64 {
	return uint64(t) & slotmask
}

func partitionof(t Term) int {
	return int((uint64(t) >> slotbits) & partmask)
}

func generationof(t Term) uint16 {
	return uint16((uint64(t) >> (slotbits + partbits)) & genmask)
}

// IsNil return whether t is the nil term, the zero value of Term. The
// nil term does not denote any node; it is distinct from the empty-list
// term.
func IsNil(t Term) bool {
	return t == 0
}

// termnode is a pool resident node. Immutable once constructed, except
// for the bookkeeping fields rc, marked, gen and inuse which are owned
// by the pool. rc is touched atomically under the shared gate; marked,
// gen and inuse only under the exclusive gate.
type termnode struct {
	rc     int32 // protection count, node is a gc root while rc > 0
	gen    uint16
	inuse  bool
	marked bool
	sym    *symrecord
	hash   uint64 // structural hash, fixed at construction
	ival   int64  // payload when sym is the pool's integer symbol
	args   []Term // length equals sym.arity
}

func (nd *termnode) protect() {
	atomic.AddInt32(&nd.rc, 1)
}

func (nd *termnode) release() {
	if atomic.AddInt32(&nd.rc, -1) < 0 {
		panic(api.ErrorReleaseUnderflow)
	}
}

func (nd *termnode) refcount() int32 {
	return atomic.LoadInt32(&nd.rc)
}
