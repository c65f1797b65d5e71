package lib

// Mixhash fold a 64-bit value into a running hash. Finalizer borrowed
// from splitmix64, cheap enough to apply per child while hashing a term
// node.
func Mixhash(seed, value uint64) uint64 {
	x := seed + value + 0x9e3779b97f4a7c15
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	return x ^ (x >> 31)
}

// Mixstring fold a string into a running hash, 8 bytes at a time.
func Mixstring(seed uint64, s string) uint64 {
	h, i := seed, 0
	for ; i+8 <= len(s); i += 8 {
		x := uint64(0)
		for j := 0; j < 8; j++ {
			x = (x << 8) | uint64(s[i+j])
		}
		h = Mixhash(h, x)
	}
	x := uint64(0)
	for ; i < len(s); i++ {
		x = (x << 8) | uint64(s[i])
	}
	return Mixhash(h, x)
}
