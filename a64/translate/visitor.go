package translate

import (
	"fmt"

	"github.com/colorfulnotion/a64jit/a64/ir"
	"github.com/colorfulnotion/a64jit/log"
)

// Visitor binds the entry points of the group to one IR builder and register
// view. A Visitor belongs to a single translation unit and is not safe for
// concurrent use.
type Visitor struct {
	IR   Emitter
	Regs Registers

	// Err holds the reason the last entry point returned false.
	Err error
}

// NewVisitor returns a Visitor emitting into b.
func NewVisitor(b *ir.Builder) *Visitor {
	return &Visitor{IR: b, Regs: BlockRegisters{IR: b}}
}

func (v *Visitor) result(mnemonic string, f Fields, err error) bool {
	if err != nil {
		v.Err = fmt.Errorf("%s: %w", mnemonic, err)
		log.Debug(log.TranslateModule, "undefined encoding", "mnemonic", mnemonic, "size", f.Size, "q", f.Q, "L", f.L, "err", err)
		return false
	}
	v.Err = nil
	log.Trace(log.TranslateModule, "translated", "mnemonic", mnemonic, "vd", f.Vd, "vn", f.Vn)
	return true
}

func (v *Visitor) MLAElt(f Fields) bool {
	return v.result("MLA_elt", f, multiplyByElement(v.IR, v.Regs, f, ExtraAccumulate))
}

func (v *Visitor) MLSElt(f Fields) bool {
	return v.result("MLS_elt", f, multiplyByElement(v.IR, v.Regs, f, ExtraSubtract))
}

func (v *Visitor) MULElt(f Fields) bool {
	return v.result("MUL_elt", f, multiplyByElement(v.IR, v.Regs, f, ExtraNone))
}

func (v *Visitor) FMLAElt(f Fields) bool {
	return v.result("FMLA_elt", f, fpMultiplyByElement(v.IR, v.Regs, f, ExtraAccumulate))
}

func (v *Visitor) FMLSElt(f Fields) bool {
	return v.result("FMLS_elt", f, fpMultiplyByElement(v.IR, v.Regs, f, ExtraSubtract))
}

func (v *Visitor) FMULElt(f Fields) bool {
	return v.result("FMUL_elt", f, fpMultiplyByElement(v.IR, v.Regs, f, ExtraNone))
}

func (v *Visitor) SMLALElt(f Fields) bool {
	return v.result("SMLAL_elt", f, multiplyLong(v.IR, v.Regs, f, ExtraAccumulate, Signed))
}

func (v *Visitor) SMLSLElt(f Fields) bool {
	return v.result("SMLSL_elt", f, multiplyLong(v.IR, v.Regs, f, ExtraSubtract, Signed))
}

func (v *Visitor) SMULLElt(f Fields) bool {
	return v.result("SMULL_elt", f, multiplyLong(v.IR, v.Regs, f, ExtraNone, Signed))
}

func (v *Visitor) UMLALElt(f Fields) bool {
	return v.result("UMLAL_elt", f, multiplyLong(v.IR, v.Regs, f, ExtraAccumulate, Unsigned))
}

func (v *Visitor) UMLSLElt(f Fields) bool {
	return v.result("UMLSL_elt", f, multiplyLong(v.IR, v.Regs, f, ExtraSubtract, Unsigned))
}

func (v *Visitor) UMULLElt(f Fields) bool {
	return v.result("UMULL_elt", f, multiplyLong(v.IR, v.Regs, f, ExtraNone, Unsigned))
}

func (v *Visitor) SQDMULHElt(f Fields) bool {
	return v.result("SQDMULH_elt", f, saturatingDoublingMultiplyHigh(v.IR, v.Regs, f))
}

func (v *Visitor) SDOTElt(f Fields) bool {
	return v.result("SDOT_elt", f, dotProduct(v.IR, v.Regs, f, SignExtend))
}

func (v *Visitor) UDOTElt(f Fields) bool {
	return v.result("UDOT_elt", f, dotProduct(v.IR, v.Regs, f, ZeroExtend))
}
