package circbuf

// AddMod returns (a + b) mod n. The sum is formed in 64 bits so it cannot
// wrap. n must be non-zero.
func AddMod(a, b, n uint32) uint32 {
	return uint32((uint64(a) + uint64(b)) % uint64(n))
}

// SubMod returns (a - b) mod n as a value in [0, n), including when a < b.
// n must be non-zero.
func SubMod(a, b, n uint32) uint32 {
	a %= n
	b %= n
	if a >= b {
		return a - b
	}
	return uint32(uint64(a) + uint64(n) - uint64(b))
}
