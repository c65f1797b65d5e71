// Package term implements a concurrent, garbage collected, hash-consed
// store for symbolic terms. A term is either an integer literal, a list
// cell, or a function symbol applied to an ordered sequence of argument
// terms. Structurally equal terms are canonicalized to a single pool
// resident node, so handle equality implies structural equality and
// equality/hashing of composite terms is O(1).
//
// Pools are created with following settings:
//
//	capacity     : maximum number of live nodes in the pool.
//	partitions   : number of allocation partitions.
//	slabsize     : number of nodes allocated per partition slab.
//	autocollect  : enable collection under allocation pressure.
//	gc.threshold : live/capacity ratio that arms auto collection.
//	index.shards : number of locks striping the structural index.
//
// Term construction and lookup run under the shared mode of the pool's
// gate; collection runs under the exclusive mode. Handles returned by
// the pool are reference protected and must be released by the caller;
// external containers of handles participate in collection through the
// root registry.
package term
