package translate

import "github.com/colorfulnotion/a64jit/a64/ir"

// Registers reads and writes guest vector registers as IR values.
type Registers interface {
	// V reads vec at datasize (64 or 128) bits; a 64-bit read has a zero upper half.
	V(datasize int, vec Vec) ir.Value
	// SetV writes the low datasize bits of value to vec, clearing the rest.
	SetV(datasize int, vec Vec, value ir.Value)
	// Vpart reads the lower (part 0) or upper (part 1) datasize bits of vec,
	// zero-extended to a full vector.
	Vpart(datasize int, vec Vec, part int) ir.Value
}

// Emitter is the set of IR operations used by the multiply-by-element emitters.
type Emitter interface {
	Imm32(v uint32) ir.Value
	Add(a, b ir.Value) ir.Value
	Mul(a, b ir.Value) ir.Value
	SignExtendToWord(a ir.Value) ir.Value
	ZeroExtendToWord(a ir.Value) ir.Value

	VectorGetElement(esize int, v ir.Value, index int) ir.Value
	VectorSetElement(esize int, v ir.Value, index int, elem ir.Value) ir.Value
	VectorBroadcast(esize int, elem ir.Value) ir.Value
	VectorBroadcastLower(esize int, elem ir.Value) ir.Value
	VectorAdd(esize int, a, b ir.Value) ir.Value
	VectorSub(esize int, a, b ir.Value) ir.Value
	VectorMultiply(esize int, a, b ir.Value) ir.Value
	VectorSignExtend(esize int, a ir.Value) ir.Value
	VectorZeroExtend(esize int, a ir.Value) ir.Value
	VectorSignedSaturatedDoublingMultiplyReturnHigh(esize int, a, b ir.Value) ir.Value

	FPVectorMul(esize int, a, b ir.Value) ir.Value
	FPVectorMulAdd(esize int, addend, a, b ir.Value) ir.Value
	FPVectorNeg(esize int, a ir.Value) ir.Value
}

var _ Emitter = (*ir.Builder)(nil)

// BlockRegisters implements Registers with register file opcodes in the block
// being built.
type BlockRegisters struct {
	IR *ir.Builder
}

func (r BlockRegisters) V(datasize int, vec Vec) ir.Value {
	switch datasize {
	case 64:
		return r.IR.GetD(uint8(vec))
	case 128:
		return r.IR.GetQ(uint8(vec))
	}
	panic("translate: bad vector read size")
}

func (r BlockRegisters) SetV(datasize int, vec Vec, value ir.Value) {
	switch datasize {
	case 64:
		r.IR.SetD(uint8(vec), value)
	case 128:
		r.IR.SetQ(uint8(vec), value)
	default:
		panic("translate: bad vector write size")
	}
}

func (r BlockRegisters) Vpart(datasize int, vec Vec, part int) ir.Value {
	if datasize != 64 || part < 0 || part > 1 {
		panic("translate: bad vector part")
	}
	if part == 0 {
		return r.V(64, vec)
	}
	return r.IR.ZeroExtendToQuad(r.IR.VectorGetElement(64, r.V(128, vec), part))
}
