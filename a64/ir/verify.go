package ir

import (
	"fmt"

	"github.com/colorfulnotion/a64jit/xlaterrors"
)

// Verify checks every instruction of b against its opcode's signature:
// operand count, lane width, operand and result types, immediate ranges and
// references to earlier instructions. Blocks built through Builder always pass.
func (b *Block) Verify() error {
	for i := range b.Insts {
		c := &instChecker{b: b, i: i, inst: b.Insts[i]}
		c.check()
		if c.err != nil {
			return c.err
		}
	}
	return nil
}

type instChecker struct {
	b    *Block
	i    int
	inst Inst
	err  error
}

func (c *instChecker) fail(format string, args ...any) {
	if c.err == nil {
		c.err = fmt.Errorf("inst %d %s: %s: %w", c.i, c.inst.Op, fmt.Sprintf(format, args...), xlaterrors.ErrCorruptBlock)
	}
}

func (c *instChecker) arity(n int) {
	if len(c.inst.Args) != n {
		c.fail("%d operands, want %d", len(c.inst.Args), n)
	}
}

func (c *instChecker) esize(allowed ...int) {
	for _, a := range allowed {
		if int(c.inst.Esize) == a {
			return
		}
	}
	c.fail("esize %d", c.inst.Esize)
}

func (c *instChecker) result(t Type) {
	if c.inst.Type != t {
		c.fail("result %s, want %s", c.inst.Type, t)
	}
}

// lane is the scalar type of one element at the instruction's esize.
func (c *instChecker) lane() Type {
	switch c.inst.Esize {
	case 8, 16, 32, 64:
		return TypeOfWidth(int(c.inst.Esize))
	}
	return Void
}

func (c *instChecker) lanes() uint64 {
	if c.inst.Esize == 0 {
		return 0
	}
	return 128 / uint64(c.inst.Esize)
}

// operand checks that argument j has one of the given types, either as an
// immediate that fits it or as a reference to an earlier result of that type.
func (c *instChecker) operand(j int, types ...Type) {
	if c.err != nil {
		return
	}
	v := c.inst.Args[j]
	ok := false
	for _, t := range types {
		ok = ok || v.typ == t
	}
	if !ok {
		c.fail("operand %d has type %s", j, v.typ)
		return
	}
	if v.IsImmediate() {
		if v.typ < U8 || v.typ > U64 {
			c.fail("operand %d: %s immediate", j, v.typ)
		} else if bits := v.typ.Bits(); bits < 64 && v.imm>>bits != 0 {
			c.fail("operand %d: immediate %#x overflows %s", j, v.imm, v.typ)
		}
		return
	}
	ref := v.Inst()
	if ref >= c.i {
		c.fail("forward reference %%%d", ref)
		return
	}
	if got := c.b.Insts[ref].Type; got != v.typ {
		c.fail("operand %d: %%%d is %s, not %s", j, ref, got, v.typ)
	}
}

// immediate checks that argument j is an immediate of type t below limit.
// A zero limit means any value of t.
func (c *instChecker) immediate(j int, t Type, limit uint64) {
	if c.err != nil {
		return
	}
	if !c.inst.Args[j].IsImmediate() {
		c.fail("operand %d must be an immediate", j)
		return
	}
	c.operand(j, t)
	if imm := c.inst.Args[j].imm; c.err == nil && limit != 0 && imm >= limit {
		c.fail("operand %d: %d out of range", j, imm)
	}
}

func (c *instChecker) check() {
	inst := c.inst
	switch inst.Op {
	case OpGetQ, OpGetD:
		c.esize(0)
		c.arity(1)
		c.result(U128)
		c.immediate(0, U8, 32)
	case OpSetQ, OpSetD:
		c.esize(0)
		c.arity(2)
		c.result(Void)
		c.immediate(0, U8, 32)
		c.operand(1, U128)
	case OpAdd32, OpMul32:
		c.esize(0)
		c.arity(2)
		c.result(U32)
		c.operand(0, U32)
		c.operand(1, U32)
	case OpSignExtendToWord, OpZeroExtendToWord:
		c.esize(0)
		c.arity(1)
		c.result(U32)
		c.operand(0, U8, U16, U64)
	case OpZeroExtendToQuad:
		c.esize(0)
		c.arity(1)
		c.result(U128)
		c.operand(0, U64)

	case OpVectorGetElement:
		c.esize(8, 16, 32, 64)
		c.arity(2)
		c.result(c.lane())
		c.operand(0, U128)
		c.immediate(1, U8, c.lanes())
	case OpVectorSetElement:
		c.esize(8, 16, 32, 64)
		c.arity(3)
		c.result(U128)
		c.operand(0, U128)
		c.immediate(1, U8, c.lanes())
		c.operand(2, c.lane())
	case OpVectorBroadcast, OpVectorBroadcastLower:
		c.esize(8, 16, 32, 64)
		c.arity(1)
		c.result(U128)
		c.operand(0, c.lane())
	case OpVectorAdd, OpVectorSub, OpVectorMultiply:
		c.binary(8, 16, 32, 64)
	case OpVectorSignExtend, OpVectorZeroExtend:
		c.unary(8, 16, 32)
	case OpVectorSignedSaturatedDoublingMultiplyReturnHigh:
		c.binary(16, 32)

	case OpFPVectorMul:
		c.binary(32, 64)
	case OpFPVectorMulAdd:
		c.esize(32, 64)
		c.arity(3)
		c.result(U128)
		c.operand(0, U128)
		c.operand(1, U128)
		c.operand(2, U128)
	case OpFPVectorNeg:
		c.unary(32, 64)

	case OpExceptionRaised:
		c.esize(0)
		c.arity(2)
		c.result(Void)
		c.immediate(0, U64, 0)
		c.immediate(1, U8, uint64(ExceptionReservedValue)+1)
		if c.err == nil && inst.Args[1].imm < uint64(ExceptionUnallocatedEncoding) {
			c.fail("exception %d", inst.Args[1].imm)
		}

	default:
		c.fail("unknown opcode")
	}
}

func (c *instChecker) unary(esizes ...int) {
	c.esize(esizes...)
	c.arity(1)
	c.result(U128)
	c.operand(0, U128)
}

func (c *instChecker) binary(esizes ...int) {
	c.esize(esizes...)
	c.arity(2)
	c.result(U128)
	c.operand(0, U128)
	c.operand(1, U128)
}
