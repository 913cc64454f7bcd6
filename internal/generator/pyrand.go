package generator

import "math"

// MT19937 parameters.
const (
	mtN         = 624
	mtM         = 397
	mtMatrixA   = 0x9908b0df
	mtUpperMask = 0x80000000
	mtLowerMask = 0x7fffffff
)

const twoPi = 2 * math.Pi

// Rand is a Mersenne Twister seeded and sampled the way CPython's random
// module does it, so a seed reproduces the same stream of integers, floats
// and gaussians.
type Rand struct {
	mt  [mtN]uint32
	mti int

	gaussNext    float64
	hasGaussNext bool
}

// NewRand returns a generator seeded with seed.
func NewRand(seed int64) *Rand {
	r := &Rand{}
	r.Seed(seed)
	return r
}

// Seed resets the generator. The absolute value of seed is split into
// 32-bit words, least significant first.
func (r *Rand) Seed(seed int64) {
	n := uint64(seed)
	if seed < 0 {
		n = uint64(-seed)
	}

	var key []uint32
	for n > 0 {
		key = append(key, uint32(n))
		n >>= 32
	}
	if len(key) == 0 {
		key = []uint32{0}
	}

	r.initByArray(key)
	r.hasGaussNext = false
}

func (r *Rand) initGenrand(s uint32) {
	r.mt[0] = s
	for i := 1; i < mtN; i++ {
		r.mt[i] = 1812433253*(r.mt[i-1]^(r.mt[i-1]>>30)) + uint32(i)
	}
	r.mti = mtN
}

func (r *Rand) initByArray(key []uint32) {
	r.initGenrand(19650218)

	i, j := 1, 0
	k := max(mtN, len(key))
	for ; k > 0; k-- {
		r.mt[i] = (r.mt[i] ^ ((r.mt[i-1] ^ (r.mt[i-1] >> 30)) * 1664525)) + key[j] + uint32(j)
		i++
		j++
		if i >= mtN {
			r.mt[0] = r.mt[mtN-1]
			i = 1
		}
		if j >= len(key) {
			j = 0
		}
	}
	for k = mtN - 1; k > 0; k-- {
		r.mt[i] = (r.mt[i] ^ ((r.mt[i-1] ^ (r.mt[i-1] >> 30)) * 1566083941)) - uint32(i)
		i++
		if i >= mtN {
			r.mt[0] = r.mt[mtN-1]
			i = 1
		}
	}

	r.mt[0] = 0x80000000
}

// Uint32 returns the next 32 bits of the stream.
func (r *Rand) Uint32() uint32 {
	if r.mti >= mtN {
		r.twist()
	}

	y := r.mt[r.mti]
	r.mti++

	y ^= y >> 11
	y ^= (y << 7) & 0x9d2c5680
	y ^= (y << 15) & 0xefc60000
	y ^= y >> 18
	return y
}

func (r *Rand) twist() {
	var kk int
	for ; kk < mtN-mtM; kk++ {
		y := (r.mt[kk] & mtUpperMask) | (r.mt[kk+1] & mtLowerMask)
		r.mt[kk] = r.mt[kk+mtM] ^ (y >> 1) ^ mag01(y)
	}
	for ; kk < mtN-1; kk++ {
		y := (r.mt[kk] & mtUpperMask) | (r.mt[kk+1] & mtLowerMask)
		r.mt[kk] = r.mt[kk+(mtM-mtN)] ^ (y >> 1) ^ mag01(y)
	}
	y := (r.mt[mtN-1] & mtUpperMask) | (r.mt[0] & mtLowerMask)
	r.mt[mtN-1] = r.mt[mtM-1] ^ (y >> 1) ^ mag01(y)

	r.mti = 0
}

func mag01(y uint32) uint32 {
	if y&1 == 0 {
		return 0
	}
	return mtMatrixA
}

// Float64 returns a float in [0.0, 1.0) with 53 bits of randomness.
func (r *Rand) Float64() float64 {
	a := r.Uint32() >> 5
	b := r.Uint32() >> 6
	return (float64(a)*67108864.0 + float64(b)) * (1.0 / 9007199254740992.0)
}

// Bits returns a uniform integer of k bits, 0 < k <= 32.
func (r *Rand) Bits(k int) uint32 {
	return r.Uint32() >> (32 - k)
}

// below returns a uniform integer in [0, n) by rejection sampling.
func (r *Rand) below(n uint32) uint32 {
	if n == 0 {
		return 0
	}
	k := bitLength(n)
	v := r.Bits(k)
	for v >= n {
		v = r.Bits(k)
	}
	return v
}

func bitLength(n uint32) int {
	k := 0
	for n > 0 {
		k++
		n >>= 1
	}
	return k
}

// IntRange returns a uniform integer in [a, b], both inclusive.
func (r *Rand) IntRange(a, b int) int {
	return a + int(r.below(uint32(b-a+1)))
}

// Gauss returns a normally distributed float with mean mu and standard
// deviation sigma. Values are produced in pairs; the second is cached for
// the next call.
func (r *Rand) Gauss(mu, sigma float64) float64 {
	z := r.gaussNext
	if !r.hasGaussNext {
		x2pi := r.Float64() * twoPi
		g2rad := math.Sqrt(-2.0 * math.Log(1.0-r.Float64()))
		z = math.Cos(x2pi) * g2rad
		r.gaussNext = math.Sin(x2pi) * g2rad
		r.hasGaussNext = true
	} else {
		r.hasGaussNext = false
	}

	// Explicit conversion keeps the product from being fused into an FMA.
	return mu + float64(z*sigma)
}
