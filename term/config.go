package term

import s "github.com/bnclabs/gosettings"

// Maxcapacity maximum number of term nodes manageable by a single pool.
// Can be used as default for settings-parameter `capacity`.
const Maxcapacity = int64(1) << 36

// Maxpartitions maximum number of allocation partitions allowed in a
// pool. Partition numbers are packed into 12 bits of the term handle.
const Maxpartitions = int64(1) << 12

// Maxgeneration number of times a node slot can be recycled before its
// generation counter wraps around.
const Maxgeneration = int64(1) << 15

// Defaultsettings for creating a term pool.
//
// "capacity" (int64, default: 1048576)
//	maximum number of live term nodes in the pool.
//
// "partitions" (int64, default: 8)
//	number of allocation partitions, allocations stripe across them.
//
// "slabsize" (int64, default: 4096)
//	number of node slots to allocate at a time in each partition.
//
// "autocollect" (bool, default: true)
//	collect garbage when live count crosses the gc threshold.
//
// "gc.threshold" (float64, default: 0.875)
//	fraction of capacity at which auto collection is armed.
//
// "index.shards" (int64, default: 64)
//	number of mutexes striping the structural index, rounded up to a
//	power of two.
func Defaultsettings() s.Settings {
	return s.Settings{
		"capacity":     int64(1024 * 1024),
		"partitions":   int64(8),
		"slabsize":     int64(4096),
		"autocollect":  true,
		"gc.threshold": float64(0.875),
		"index.shards": int64(64),
	}
}

func validatesettings(setts s.Settings) {
	capacity := setts.Int64("capacity")
	partitions := setts.Int64("partitions")
	slabsize := setts.Int64("slabsize")
	threshold := setts.Float64("gc.threshold")
	if capacity <= 0 || capacity > Maxcapacity {
		panicerr("capacity %v not within (0, %v]", capacity, Maxcapacity)
	} else if partitions <= 0 || partitions > Maxpartitions {
		panicerr("partitions %v not within (0, %v]", partitions, Maxpartitions)
	} else if slabsize <= 0 || slabsize > capacity {
		panicerr("slabsize %v not within (0, capacity]", slabsize)
	} else if threshold <= 0 || threshold > 1 {
		panicerr("gc.threshold %v not within (0, 1]", threshold)
	} else if shards := setts.Int64("index.shards"); shards <= 0 {
		panicerr("index.shards %v should be positive", shards)
	}
}
