package translate

import "github.com/colorfulnotion/a64jit/a64/ir"

// Extension selects how byte lanes are widened before a dot product.
type Extension uint8

const (
	SignExtend Extension = iota
	ZeroExtend
)

func (x Extension) String() string {
	if x == SignExtend {
		return "sign"
	}
	return "zero"
}

func extendToWord(e Emitter, x Extension) func(v ir.Value) ir.Value {
	if x == SignExtend {
		return e.SignExtendToWord
	}
	return e.ZeroExtendToWord
}

// dotProduct emits SDOT and UDOT (by element). Each 32-bit lane i of Vd
// accumulates the four byte products of lane i of Vn with the indexed 32-bit
// group of Vm.
func dotProduct(e Emitter, regs Registers, f Fields, x Extension) error {
	if err := validateDotProductSize(f.Size); err != nil {
		return err
	}

	vm := VecOf(Concatenate(f.M, f.Vmlo))
	esize := esizeOf(f.Size)
	datasize := datasizeOf(f.Q)
	elements := datasize / esize
	index := int(Concatenate(f.H, f.L).ZeroExtend())
	extend := extendToWord(e, x)

	operand1 := regs.V(datasize, f.Vn)
	operand2 := regs.V(128, vm)
	result := regs.V(datasize, f.Vd)

	for i := 0; i < elements; i++ {
		sum := e.Imm32(0)
		for j := 0; j < 4; j++ {
			elem1 := extend(e.VectorGetElement(8, operand1, 4*i+j))
			elem2 := extend(e.VectorGetElement(8, operand2, 4*index+j))
			sum = e.Add(sum, e.Mul(elem1, elem2))
		}
		sum = e.Add(e.VectorGetElement(32, result, i), sum)
		result = e.VectorSetElement(32, result, i, sum)
	}

	regs.SetV(datasize, f.Vd, result)
	return nil
}
