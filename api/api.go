// Package api define types and interfaces common to the term store and
// its consumers.
package api

// Term is an opaque handle to a pool resident term node. The zero value
// is the nil term. Two handles are equal, in the == sense, if and only if
// they denote the same canonical term.
type Term uint64

// MarkStack is the worklist handed to root callbacks during the mark
// phase of a collection cycle. Callbacks push every term handle they
// hold live; reachability takes care of the rest.
type MarkStack interface {
	// Push a live term handle onto the worklist. Pushing the nil term
	// is a no-op.
	Push(t Term)
}

// Root is implemented by any external container of term handles that
// lives outside the pool's own accounting. A registered root is visited
// once per collection cycle; failing to report a held term from
// MarkRoots is a correctness bug in the registrant, not in the
// collector.
type Root interface {
	// MarkRoots push every term handle currently held by this root,
	// including terms reachable only through the root's auxiliary
	// structures.
	MarkRoots(stack MarkStack)

	// LiveCount return the number of terms held by this root. Used for
	// diagnostics and collection heuristics, never for correctness.
	LiveCount() int
}
