package interp

import (
	"github.com/holiman/uint256"
	"golang.org/x/exp/constraints"
)

func laneMask(esize int) uint64 {
	if esize >= 64 {
		return ^uint64(0)
	}
	return uint64(1)<<esize - 1
}

func getLane(v *uint256.Int, esize, i int) uint64 {
	bit := esize * i
	return (v[bit/64] >> (bit % 64)) & laneMask(esize)
}

func setLane(v *uint256.Int, esize, i int, x uint64) {
	bit := esize * i
	w, sh := bit/64, bit%64
	m := laneMask(esize)
	v[w] = v[w]&^(m<<sh) | (x&m)<<sh
}

// signExtend interprets the low bits of x as a two's complement value.
func signExtend[T constraints.Unsigned](x T, bits int) int64 {
	shift := 64 - bits
	return int64(uint64(x)<<shift) >> shift
}

func clamp[T constraints.Integer](x, lo, hi T) (T, bool) {
	if x < lo {
		return lo, true
	}
	if x > hi {
		return hi, true
	}
	return x, false
}

// lanewise applies f to every esize-bit lane of a and b.
func lanewise(esize int, a, b *uint256.Int, f func(x, y uint64) uint64) uint256.Int {
	var out uint256.Int
	for i := 0; i < 128/esize; i++ {
		setLane(&out, esize, i, f(getLane(a, esize, i), getLane(b, esize, i)))
	}
	return out
}

// low64 returns v with everything above bit 63 cleared.
func low64(v *uint256.Int) uint256.Int {
	var out uint256.Int
	out.And(v, uint256.NewInt(^uint64(0)))
	return out
}

// low128 returns v with everything above bit 127 cleared.
func low128(v *uint256.Int) uint256.Int {
	return uint256.Int{v[0], v[1], 0, 0}
}
