package interp

import (
	"math"
	"math/big"
)

func fpSignBit(esize int) uint64 { return uint64(1) << (esize - 1) }

func fpQuietBit(esize int) uint64 {
	if esize == 32 {
		return 1 << 22
	}
	return 1 << 51
}

func fpDefaultNaN(esize int) uint64 {
	if esize == 32 {
		return 0x7fc00000
	}
	return 0x7ff8000000000000
}

func fpIsNaN(esize int, x uint64) bool {
	if esize == 32 {
		f := math.Float32frombits(uint32(x))
		return f != f
	}
	return math.IsNaN(math.Float64frombits(x))
}

func fpIsSNaN(esize int, x uint64) bool {
	return fpIsNaN(esize, x) && x&fpQuietBit(esize) == 0
}

func fpIsQNaN(esize int, x uint64) bool {
	return fpIsNaN(esize, x) && x&fpQuietBit(esize) != 0
}

func fpIsInf(esize int, x uint64) bool {
	if esize == 32 {
		return math.IsInf(float64(math.Float32frombits(uint32(x))), 0)
	}
	return math.IsInf(math.Float64frombits(x), 0)
}

func fpIsZero(esize int, x uint64) bool {
	return x&^fpSignBit(esize) == 0
}

// fpProcessNaNs picks the NaN result of an operation: the first signalling NaN
// (quietened), else the first quiet NaN, in operand order.
func fpProcessNaNs(esize int, ops ...uint64) (uint64, bool) {
	for _, op := range ops {
		if fpIsSNaN(esize, op) {
			return op | fpQuietBit(esize), true
		}
	}
	for _, op := range ops {
		if fpIsQNaN(esize, op) {
			return op, true
		}
	}
	return 0, false
}

func fpNeg(esize int, x uint64) uint64 {
	return x ^ fpSignBit(esize)
}

func fpMul(esize int, a, b uint64) uint64 {
	if r, ok := fpProcessNaNs(esize, a, b); ok {
		return r
	}
	var r uint64
	if esize == 32 {
		r = uint64(math.Float32bits(float32(math.Float32frombits(uint32(a)) * math.Float32frombits(uint32(b)))))
	} else {
		r = math.Float64bits(math.Float64frombits(a) * math.Float64frombits(b))
	}
	if fpIsNaN(esize, r) {
		return fpDefaultNaN(esize)
	}
	return r
}

// fpMulAdd returns addend + a*b with a single rounding.
func fpMulAdd(esize int, addend, a, b uint64) uint64 {
	r, done := fpProcessNaNs(esize, addend, a, b)
	if fpIsQNaN(esize, addend) && ((fpIsInf(esize, a) && fpIsZero(esize, b)) || (fpIsZero(esize, a) && fpIsInf(esize, b))) {
		return fpDefaultNaN(esize)
	}
	if done {
		return r
	}
	if esize == 32 {
		r = uint64(math.Float32bits(fma32(math.Float32frombits(uint32(a)), math.Float32frombits(uint32(b)), math.Float32frombits(uint32(addend)))))
	} else {
		r = math.Float64bits(math.FMA(math.Float64frombits(a), math.Float64frombits(b), math.Float64frombits(addend)))
	}
	if fpIsNaN(esize, r) {
		return fpDefaultNaN(esize)
	}
	return r
}

// fma32 computes a*b + c rounded once to single precision. The product of two
// singles is exact in double precision; the sum is formed exactly in a
// big.Float before the final rounding.
func fma32(a, b, c float32) float32 {
	p := float64(a) * float64(b)
	if p == 0 || math.IsInf(p, 0) || math.IsNaN(p) || math.IsInf(float64(c), 0) || math.IsNaN(float64(c)) {
		return float32(p + float64(c))
	}
	if c == 0 {
		return float32(p)
	}
	const prec = 1100
	x := new(big.Float).SetPrec(prec).SetFloat64(p)
	y := new(big.Float).SetPrec(prec).SetFloat64(float64(c))
	sum := new(big.Float).SetPrec(prec).Add(x, y)
	if sum.Sign() == 0 {
		return 0
	}
	f, _ := sum.Float32()
	return f
}
