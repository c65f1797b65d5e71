package term

import "sync"

// structindex is the shared hash-consing index over all partitions.
// Buckets are striped over shards, each shard with its own mutex, so
// that concurrent construction under the shared gate contends only per
// shard. The collector unlinks dead nodes under the exclusive gate.
type structindex struct {
	mask   uint64
	shards []indexshard
}

type indexshard struct {
	mu      sync.Mutex
	buckets map[uint64][]Term
}

func newstructindex(nshards int64) *structindex {
	n := int64(1)
	for n < nshards {
		n <<= 1
	}
	idx := &structindex{mask: uint64(n - 1), shards: make([]indexshard, n)}
	for i := range idx.shards {
		idx.shards[i].buckets = make(map[uint64][]Term)
	}
	return idx
}

// intern return the canonical term for the structure identified by
// hash/match, calling alloc to build a fresh node when no live node
// matches. Lookup and insert happen under one shard lock, so two
// threads racing to construct the same structure end up sharing one
// canonical instance.
func (idx *structindex) intern(
	hash uint64, match func(t Term) bool, alloc func() Term) (Term, bool) {

	shard := &idx.shards[hash&idx.mask]
	shard.mu.Lock()
	defer shard.mu.Unlock()

	for _, t := range shard.buckets[hash] {
		if match(t) {
			return t, true
		}
	}
	t := alloc()
	shard.buckets[hash] = append(shard.buckets[hash], t)
	return t, false
}

// remove unlink a dead node. Exclusive gate only.
func (idx *structindex) remove(hash uint64, t Term) {
	shard := &idx.shards[hash&idx.mask]
	bucket := shard.buckets[hash]
	for i, x := range bucket {
		if x == t {
			bucket[i] = bucket[len(bucket)-1]
			bucket = bucket[:len(bucket)-1]
			if len(bucket) == 0 {
				delete(shard.buckets, hash)
			} else {
				shard.buckets[hash] = bucket
			}
			return
		}
	}
	panicerr("index remove(): term %x not indexed under %x", t, hash)
}

// contains report whether t is indexed under hash. Diagnostics only,
// exclusive gate.
func (idx *structindex) contains(hash uint64, t Term) bool {
	shard := &idx.shards[hash&idx.mask]
	for _, x := range shard.buckets[hash] {
		if x == t {
			return true
		}
	}
	return false
}

func (idx *structindex) entries() int64 {
	n := int64(0)
	for i := range idx.shards {
		shard := &idx.shards[i]
		shard.mu.Lock()
		for _, bucket := range shard.buckets {
			n += int64(len(bucket))
		}
		shard.mu.Unlock()
	}
	return n
}
