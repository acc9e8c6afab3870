package scene

const (
	fnvOffset uint32 = 0x811c9dc5
	fnvPrime  uint32 = 0x01000193

	lcgMul uint32 = 1664525
	lcgInc uint32 = 1013904223

	twoPow32 = 4294967296.0
)

// HashIdentity returns the 32-bit FNV-1a hash of identity, one code point at a time.
func HashIdentity(identity string) uint32 {
	h := fnvOffset
	for _, r := range identity {
		h ^= uint32(r)
		h *= fnvPrime
	}
	return h
}

// Random is a linear congruential generator seeded from an identity hash.
// The sequence it produces is part of the layout contract; do not change it.
type Random struct {
	seed uint32
}

// NewRandom creates a generator seeded with HashIdentity(identity).
func NewRandom(identity string) *Random {
	return &Random{seed: HashIdentity(identity)}
}

// Next advances the generator and returns a value in [0, 1).
func (r *Random) Next() float64 {
	r.seed = r.seed*lcgMul + lcgInc
	return float64(r.seed) / twoPow32
}

// Range returns a value in [lo, hi).
func (r *Random) Range(lo, hi float64) float64 {
	return lo + r.Next()*(hi-lo)
}

// Count draws floor(Range(lo, hi)).
func (r *Random) Count(lo, hi float64) int {
	return int(r.Range(lo, hi))
}
