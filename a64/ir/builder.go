package ir

import "fmt"

// Builder appends instructions to a Block.
type Builder struct {
	Block *Block
}

// NewBuilder returns a builder over a fresh block at guest address loc.
func NewBuilder(loc uint64) *Builder {
	return &Builder{Block: NewBlock(loc)}
}

func (b *Builder) emit(op Opcode, esize int, typ Type, args ...Value) Value {
	return b.Block.append(Inst{Op: op, Esize: uint8(esize), Args: args, Type: typ})
}

func expect(op Opcode, v Value, want Type) {
	if v.Type() != want {
		panic(fmt.Sprintf("ir: %s operand %s has type %s, want %s", op, v, v.Type(), want))
	}
}

func expectEsize(op Opcode, esize int, allowed ...int) {
	for _, a := range allowed {
		if esize == a {
			return
		}
	}
	panic(fmt.Sprintf("ir: %s does not support esize %d", op, esize))
}

func (b *Builder) GetQ(reg uint8) Value {
	return b.emit(OpGetQ, 0, U128, Imm8(reg))
}

// GetD reads the low 64 bits of a vector register; the upper half of the
// result is zero.
func (b *Builder) GetD(reg uint8) Value {
	return b.emit(OpGetD, 0, U128, Imm8(reg))
}

func (b *Builder) SetQ(reg uint8, value Value) {
	expect(OpSetQ, value, U128)
	b.emit(OpSetQ, 0, Void, Imm8(reg), value)
}

// SetD writes the low 64 bits of value and clears the upper half of the register.
func (b *Builder) SetD(reg uint8, value Value) {
	expect(OpSetD, value, U128)
	b.emit(OpSetD, 0, Void, Imm8(reg), value)
}

func (b *Builder) Imm32(v uint32) Value {
	return Imm32(v)
}

// Add returns a + b modulo 2^32.
func (b *Builder) Add(a, c Value) Value {
	expect(OpAdd32, a, U32)
	expect(OpAdd32, c, U32)
	return b.emit(OpAdd32, 0, U32, a, c)
}

// Mul returns the low 32 bits of a * b.
func (b *Builder) Mul(a, c Value) Value {
	expect(OpMul32, a, U32)
	expect(OpMul32, c, U32)
	return b.emit(OpMul32, 0, U32, a, c)
}

func (b *Builder) SignExtendToWord(a Value) Value {
	switch a.Type() {
	case U32:
		return a
	case Void, U128:
		panic(fmt.Sprintf("ir: %s operand %s has type %s", OpSignExtendToWord, a, a.Type()))
	}
	return b.emit(OpSignExtendToWord, 0, U32, a)
}

func (b *Builder) ZeroExtendToWord(a Value) Value {
	switch a.Type() {
	case U32:
		return a
	case Void, U128:
		panic(fmt.Sprintf("ir: %s operand %s has type %s", OpZeroExtendToWord, a, a.Type()))
	}
	return b.emit(OpZeroExtendToWord, 0, U32, a)
}

func (b *Builder) ZeroExtendToQuad(a Value) Value {
	expect(OpZeroExtendToQuad, a, U64)
	return b.emit(OpZeroExtendToQuad, 0, U128, a)
}

func (b *Builder) VectorGetElement(esize int, v Value, index int) Value {
	expectEsize(OpVectorGetElement, esize, 8, 16, 32, 64)
	expect(OpVectorGetElement, v, U128)
	if index < 0 || index >= 128/esize {
		panic(fmt.Sprintf("ir: lane %d out of range for esize %d", index, esize))
	}
	return b.emit(OpVectorGetElement, esize, TypeOfWidth(esize), v, Imm8(uint8(index)))
}

func (b *Builder) VectorSetElement(esize int, v Value, index int, elem Value) Value {
	expectEsize(OpVectorSetElement, esize, 8, 16, 32, 64)
	expect(OpVectorSetElement, v, U128)
	expect(OpVectorSetElement, elem, TypeOfWidth(esize))
	if index < 0 || index >= 128/esize {
		panic(fmt.Sprintf("ir: lane %d out of range for esize %d", index, esize))
	}
	return b.emit(OpVectorSetElement, esize, U128, v, Imm8(uint8(index)), elem)
}

// VectorBroadcast replicates elem into every lane of a 128-bit vector.
func (b *Builder) VectorBroadcast(esize int, elem Value) Value {
	expectEsize(OpVectorBroadcast, esize, 8, 16, 32, 64)
	expect(OpVectorBroadcast, elem, TypeOfWidth(esize))
	return b.emit(OpVectorBroadcast, esize, U128, elem)
}

// VectorBroadcastLower replicates elem into the lanes of the low 64 bits and
// zeroes the upper half.
func (b *Builder) VectorBroadcastLower(esize int, elem Value) Value {
	expectEsize(OpVectorBroadcastLower, esize, 8, 16, 32, 64)
	expect(OpVectorBroadcastLower, elem, TypeOfWidth(esize))
	return b.emit(OpVectorBroadcastLower, esize, U128, elem)
}

func (b *Builder) vectorBinary(op Opcode, esize int, a, c Value) Value {
	expect(op, a, U128)
	expect(op, c, U128)
	return b.emit(op, esize, U128, a, c)
}

func (b *Builder) VectorAdd(esize int, a, c Value) Value {
	expectEsize(OpVectorAdd, esize, 8, 16, 32, 64)
	return b.vectorBinary(OpVectorAdd, esize, a, c)
}

func (b *Builder) VectorSub(esize int, a, c Value) Value {
	expectEsize(OpVectorSub, esize, 8, 16, 32, 64)
	return b.vectorBinary(OpVectorSub, esize, a, c)
}

func (b *Builder) VectorMultiply(esize int, a, c Value) Value {
	expectEsize(OpVectorMultiply, esize, 8, 16, 32, 64)
	return b.vectorBinary(OpVectorMultiply, esize, a, c)
}

// VectorSignExtend widens the lanes of the low 64 bits of a to 2*esize.
func (b *Builder) VectorSignExtend(esize int, a Value) Value {
	expectEsize(OpVectorSignExtend, esize, 8, 16, 32)
	expect(OpVectorSignExtend, a, U128)
	return b.emit(OpVectorSignExtend, esize, U128, a)
}

// VectorZeroExtend widens the lanes of the low 64 bits of a to 2*esize.
func (b *Builder) VectorZeroExtend(esize int, a Value) Value {
	expectEsize(OpVectorZeroExtend, esize, 8, 16, 32)
	expect(OpVectorZeroExtend, a, U128)
	return b.emit(OpVectorZeroExtend, esize, U128, a)
}

func (b *Builder) VectorSignedSaturatedDoublingMultiplyReturnHigh(esize int, a, c Value) Value {
	expectEsize(OpVectorSignedSaturatedDoublingMultiplyReturnHigh, esize, 16, 32)
	return b.vectorBinary(OpVectorSignedSaturatedDoublingMultiplyReturnHigh, esize, a, c)
}

func (b *Builder) FPVectorMul(esize int, a, c Value) Value {
	expectEsize(OpFPVectorMul, esize, 32, 64)
	return b.vectorBinary(OpFPVectorMul, esize, a, c)
}

// FPVectorMulAdd computes addend + a*c per lane with a single rounding.
func (b *Builder) FPVectorMulAdd(esize int, addend, a, c Value) Value {
	expectEsize(OpFPVectorMulAdd, esize, 32, 64)
	expect(OpFPVectorMulAdd, addend, U128)
	expect(OpFPVectorMulAdd, a, U128)
	expect(OpFPVectorMulAdd, c, U128)
	return b.emit(OpFPVectorMulAdd, esize, U128, addend, a, c)
}

func (b *Builder) FPVectorNeg(esize int, a Value) Value {
	expectEsize(OpFPVectorNeg, esize, 32, 64)
	expect(OpFPVectorNeg, a, U128)
	return b.emit(OpFPVectorNeg, esize, U128, a)
}

// ExceptionRaised ends the block by raising exc at guest address pc.
func (b *Builder) ExceptionRaised(pc uint64, exc Exception) {
	b.emit(OpExceptionRaised, 0, Void, Imm64(pc), Imm8(uint8(exc)))
}
