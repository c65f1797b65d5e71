package term

import "sync"
import "sync/atomic"

import "github.com/bnclabs/goterm/lib"

// symrecord is an interned (name, arity) pair. Records are unique: two
// Symbol handles denote the same pair iff they wrap the same record.
type symrecord struct {
	rc    int64 // reference count, terms own one reference each
	name  string
	arity int
	index int32  // stable dispatch index, recycled after finalization
	hash  uint64 // seed for structural hashing, a pure function of (name, arity)
}

// Symbol is a handle to an interned function symbol. The zero value is
// the nil symbol. Handles compare equal, in the == sense, iff they
// denote the same interned record.
type Symbol struct {
	r *symrecord
}

// Name of the function symbol.
func (sym Symbol) Name() string {
	return sym.r.name
}

// Arity of the function symbol, the exact number of argument terms an
// application of it carries.
func (sym Symbol) Arity() int {
	return sym.r.arity
}

// Index is a small stable integer assigned when the symbol was first
// interned, usable for switch-dispatch without string comparison. The
// index is stable for the record's lifetime and recycled afterwards.
func (sym Symbol) Index() int {
	return int(sym.r.index)
}

// IsNil return whether sym is the nil symbol.
func (sym Symbol) IsNil() bool {
	return sym.r == nil
}

// SymbolLess is a total order over interned symbols, lexicographic on
// name and then on arity. Deterministic across runs, meant for sorted
// containers and consistency checks, not used by collection.
func SymbolLess(a, b Symbol) bool {
	if a.r.name != b.r.name {
		return a.r.name < b.r.name
	}
	return a.r.arity < b.r.arity
}

type symkey struct {
	name  string
	arity int
}

// symtable interns (name, arity) pairs. Lookups and interning run under
// the shared gate with the table mutex for serialization; sweeping runs
// under the exclusive gate.
type symtable struct {
	mu      sync.Mutex
	entries map[symkey]*symrecord
	records []*symrecord // index -> record, nil while index is free
	freeidx []int32
}

func newsymtable() *symtable {
	return &symtable{
		entries: make(map[symkey]*symrecord),
		records: make([]*symrecord, 0, 64),
	}
}

// intern return the canonical record for (name, arity), creating it on
// first use. The returned handle holds one reference. A record whose
// count has dropped to zero but is not yet swept is revived, never
// aliased.
func (tbl *symtable) intern(name string, arity int) Symbol {
	tbl.mu.Lock()
	defer tbl.mu.Unlock()

	key := symkey{name: name, arity: arity}
	if r, ok := tbl.entries[key]; ok {
		atomic.AddInt64(&r.rc, 1)
		return Symbol{r: r}
	}
	r := &symrecord{
		rc: 1, name: name, arity: arity,
		hash: lib.Mixstring(uint64(arity)+1, name),
	}
	if n := len(tbl.freeidx); n > 0 {
		r.index = tbl.freeidx[n-1]
		tbl.freeidx = tbl.freeidx[:n-1]
		tbl.records[r.index] = r
	} else {
		r.index = int32(len(tbl.records))
		tbl.records = append(tbl.records, r)
	}
	tbl.entries[key] = r
	return Symbol{r: r}
}

func (tbl *symtable) protect(sym Symbol) {
	atomic.AddInt64(&sym.r.rc, 1)
}

func (tbl *symtable) release(sym Symbol) {
	if atomic.AddInt64(&sym.r.rc, -1) < 0 {
		panic("symbol release underflow")
	}
}

// sweep remove records whose reference count is zero. Caller shall hold
// the exclusive gate; term sweep has already returned the references
// owned by reclaimed nodes.
func (tbl *symtable) sweep() (reclaimed int64) {
	tbl.mu.Lock()
	defer tbl.mu.Unlock()

	for key, r := range tbl.entries {
		if atomic.LoadInt64(&r.rc) > 0 {
			continue
		}
		delete(tbl.entries, key)
		tbl.records[r.index] = nil
		tbl.freeidx = append(tbl.freeidx, r.index)
		reclaimed++
	}
	return reclaimed
}

func (tbl *symtable) live() int64 {
	tbl.mu.Lock()
	defer tbl.mu.Unlock()
	return int64(len(tbl.entries))
}
