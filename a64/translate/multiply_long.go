package translate

import "github.com/colorfulnotion/a64jit/a64/ir"

// Signedness selects sign or zero extension of narrow lanes.
type Signedness uint8

const (
	Signed Signedness = iota
	Unsigned
)

func (s Signedness) String() string {
	if s == Signed {
		return "signed"
	}
	return "unsigned"
}

func extendOperands(e Emitter, sign Signedness, esize int, lhs, rhs ir.Value) (ir.Value, ir.Value) {
	if sign == Signed {
		return e.VectorSignExtend(esize, lhs), e.VectorSignExtend(esize, rhs)
	}
	return e.VectorZeroExtend(esize, lhs), e.VectorZeroExtend(esize, rhs)
}

// multiplyLong emits SMULL, SMLAL, SMLSL, UMULL, UMLAL and UMLSL (by
// element). Q selects the upper half of Vn (the "2" forms); the destination
// is always a full 128-bit vector of double-width lanes.
func multiplyLong(e Emitter, regs Registers, f Fields, extra ExtraBehavior, sign Signedness) error {
	if err := validateIntegerSize(f.Size); err != nil {
		return err
	}

	idxsize := indexDataSize(f.H)
	esize := esizeOf(f.Size)
	const datasize = 64
	index, vmhi := combineLong(f.Size, f.H, f.L, f.M)
	part := 0
	if f.Q {
		part = 1
	}

	operand1 := regs.Vpart(datasize, f.Vn, part)
	operand2 := regs.V(idxsize, VecOf(Concatenate(vmhi, f.Vmlo)))
	indexVector := e.VectorBroadcast(esize, e.VectorGetElement(esize, operand2, index))

	extendedOp1, extendedIndex := extendOperands(e, sign, esize, operand1, indexVector)
	result := e.VectorMultiply(2*esize, extendedOp1, extendedIndex)
	switch extra {
	case ExtraAccumulate:
		result = e.VectorAdd(2*esize, regs.V(2*datasize, f.Vd), result)
	case ExtraSubtract:
		result = e.VectorSub(2*esize, regs.V(2*datasize, f.Vd), result)
	}

	regs.SetV(2*datasize, f.Vd, result)
	return nil
}

// saturatingDoublingMultiplyHigh emits SQDMULH (by element).
func saturatingDoublingMultiplyHigh(e Emitter, regs Registers, f Fields) error {
	if err := validateIntegerSize(f.Size); err != nil {
		return err
	}

	idxsize := indexDataSize(f.H)
	esize := esizeOf(f.Size)
	datasize := datasizeOf(f.Q)
	index, vmhi := combineLong(f.Size, f.H, f.L, f.M)

	operand1 := regs.V(datasize, f.Vn)
	operand2 := regs.V(idxsize, VecOf(Concatenate(vmhi, f.Vmlo)))
	indexVector := e.VectorBroadcast(esize, e.VectorGetElement(esize, operand2, index))
	result := e.VectorSignedSaturatedDoublingMultiplyReturnHigh(esize, operand1, indexVector)

	regs.SetV(datasize, f.Vd, result)
	return nil
}
