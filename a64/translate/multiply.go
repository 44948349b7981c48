package translate

import "github.com/colorfulnotion/a64jit/a64/ir"

// ExtraBehavior selects what is done with the product.
type ExtraBehavior uint8

const (
	ExtraNone       ExtraBehavior = iota // Vd = product
	ExtraAccumulate                      // Vd = Vd + product
	ExtraSubtract                        // Vd = Vd - product
)

func (e ExtraBehavior) String() string {
	switch e {
	case ExtraNone:
		return "none"
	case ExtraAccumulate:
		return "accumulate"
	case ExtraSubtract:
		return "subtract"
	}
	return "unknown"
}

// Fields are the decoded operands shared by the indexed-element group.
type Fields struct {
	Q    bool
	Size Imm // 2 bits; bit 0 is the precision bit sz for floating-point forms
	L    Imm
	M    Imm
	Vmlo Imm
	H    Imm
	Vn   Vec
	Vd   Vec
}

// Sz returns the floating-point precision bit (double when set).
func (f Fields) Sz() bool {
	return f.Size.ZeroExtend()&1 == 1
}

// multiplyByElement emits MUL, MLA and MLS (by element).
func multiplyByElement(e Emitter, regs Registers, f Fields, extra ExtraBehavior) error {
	if err := validateIntegerSize(f.Size); err != nil {
		return err
	}

	index, vm := combine(f.Size, f.H, f.L, f.M, f.Vmlo)
	idxdsize := indexDataSize(f.H)
	esize := esizeOf(f.Size)
	datasize := datasizeOf(f.Q)

	operand1 := regs.V(datasize, f.Vn)
	operand2 := e.VectorBroadcast(esize, e.VectorGetElement(esize, regs.V(idxdsize, vm), index))

	result := e.VectorMultiply(esize, operand1, operand2)
	switch extra {
	case ExtraAccumulate:
		result = e.VectorAdd(esize, regs.V(datasize, f.Vd), result)
	case ExtraSubtract:
		result = e.VectorSub(esize, regs.V(datasize, f.Vd), result)
	}

	regs.SetV(datasize, f.Vd, result)
	return nil
}

// fpMultiplyByElement emits FMUL, FMLA and FMLS (by element, single and
// double precision).
func fpMultiplyByElement(e Emitter, regs Registers, f Fields, extra ExtraBehavior) error {
	sz := f.Sz()
	if err := validateFP(f.Q, sz, f.L); err != nil {
		return err
	}

	index, vm := combineFP(sz, f.H, f.L, f.M, f.Vmlo)
	idxdsize := indexDataSize(f.H)
	esize := 32
	if sz {
		esize = 64
	}
	datasize := datasizeOf(f.Q)

	element2 := e.VectorGetElement(esize, regs.V(idxdsize, vm), index)
	operand1 := regs.V(datasize, f.Vn)
	var operand2 ir.Value
	if f.Q {
		operand2 = e.VectorBroadcast(esize, element2)
	} else {
		operand2 = e.VectorBroadcastLower(esize, element2)
	}

	var result ir.Value
	switch extra {
	case ExtraNone:
		result = e.FPVectorMul(esize, operand1, operand2)
	case ExtraAccumulate:
		result = e.FPVectorMulAdd(esize, regs.V(datasize, f.Vd), operand1, operand2)
	case ExtraSubtract:
		// Vd + (-Vn)*elem: the multiplicand is negated, never the fused result.
		result = e.FPVectorMulAdd(esize, regs.V(datasize, f.Vd), e.FPVectorNeg(esize, operand1), operand2)
	}

	regs.SetV(datasize, f.Vd, result)
	return nil
}
