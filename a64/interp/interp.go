package interp

import (
	"fmt"
	"math"

	"github.com/colorfulnotion/a64jit/a64/ir"
	"github.com/holiman/uint256"
)

// Run executes b against s. Execution stops after an OpExceptionRaised.
// Blocks that fail ir.Block.Verify are rejected before any state changes.
func Run(b *ir.Block, s *State) error {
	if err := b.Verify(); err != nil {
		return fmt.Errorf("interp: %w", err)
	}
	vals := make([]uint256.Int, len(b.Insts))
	arg := func(inst ir.Inst, i int) *uint256.Int {
		v := inst.Args[i]
		if v.IsImmediate() {
			return uint256.NewInt(v.Imm())
		}
		return &vals[v.Inst()]
	}
	reg := func(inst ir.Inst) (int, error) {
		r := inst.Args[0].Imm()
		if r > 31 {
			return 0, fmt.Errorf("%s: register %d out of range", inst.Op, r)
		}
		return int(r), nil
	}

	for idx, inst := range b.Insts {
		esize := int(inst.Esize)
		out := &vals[idx]
		switch inst.Op {
		case ir.OpGetQ, ir.OpGetD:
			r, err := reg(inst)
			if err != nil {
				return err
			}
			s.Reads++
			if inst.Op == ir.OpGetQ {
				*out = low128(&s.V[r])
			} else {
				*out = low64(&s.V[r])
			}
		case ir.OpSetQ, ir.OpSetD:
			r, err := reg(inst)
			if err != nil {
				return err
			}
			s.Writes++
			if inst.Op == ir.OpSetQ {
				s.V[r] = low128(arg(inst, 1))
			} else {
				s.V[r] = low64(arg(inst, 1))
			}

		case ir.OpAdd32:
			out.SetUint64(uint64(uint32(arg(inst, 0).Uint64()) + uint32(arg(inst, 1).Uint64())))
		case ir.OpMul32:
			out.SetUint64(uint64(uint32(arg(inst, 0).Uint64()) * uint32(arg(inst, 1).Uint64())))
		case ir.OpSignExtendToWord:
			from := inst.Args[0].Type().Bits()
			out.SetUint64(uint64(uint32(signExtend(arg(inst, 0).Uint64(), from))))
		case ir.OpZeroExtendToWord, ir.OpZeroExtendToQuad:
			out.Set(arg(inst, 0))

		case ir.OpVectorGetElement:
			out.SetUint64(getLane(arg(inst, 0), esize, int(inst.Args[1].Imm())))
		case ir.OpVectorSetElement:
			*out = *arg(inst, 0)
			setLane(out, esize, int(inst.Args[1].Imm()), arg(inst, 2).Uint64())
		case ir.OpVectorBroadcast, ir.OpVectorBroadcastLower:
			width := 128
			if inst.Op == ir.OpVectorBroadcastLower {
				width = 64
			}
			x := arg(inst, 0).Uint64()
			out.Clear()
			for i := 0; i < width/esize; i++ {
				setLane(out, esize, i, x)
			}

		case ir.OpVectorAdd:
			*out = lanewise(esize, arg(inst, 0), arg(inst, 1), func(x, y uint64) uint64 { return x + y })
		case ir.OpVectorSub:
			*out = lanewise(esize, arg(inst, 0), arg(inst, 1), func(x, y uint64) uint64 { return x - y })
		case ir.OpVectorMultiply:
			*out = lanewise(esize, arg(inst, 0), arg(inst, 1), func(x, y uint64) uint64 { return x * y })
		case ir.OpVectorSignExtend, ir.OpVectorZeroExtend:
			src := arg(inst, 0)
			var res uint256.Int
			for i := 0; i < 64/esize; i++ {
				x := getLane(src, esize, i)
				if inst.Op == ir.OpVectorSignExtend {
					x = uint64(signExtend(x, esize))
				}
				setLane(&res, 2*esize, i, x)
			}
			*out = res
		case ir.OpVectorSignedSaturatedDoublingMultiplyReturnHigh:
			*out = lanewise(esize, arg(inst, 0), arg(inst, 1), func(x, y uint64) uint64 {
				r, saturated := sqdmulh(esize, x, y)
				if saturated {
					s.QC = true
				}
				return r
			})

		case ir.OpFPVectorMul:
			*out = lanewise(esize, arg(inst, 0), arg(inst, 1), func(x, y uint64) uint64 { return fpMul(esize, x, y) })
		case ir.OpFPVectorMulAdd:
			addend, a, c := arg(inst, 0), arg(inst, 1), arg(inst, 2)
			var res uint256.Int
			for i := 0; i < 128/esize; i++ {
				setLane(&res, esize, i, fpMulAdd(esize, getLane(addend, esize, i), getLane(a, esize, i), getLane(c, esize, i)))
			}
			*out = res
		case ir.OpFPVectorNeg:
			src := arg(inst, 0)
			*out = lanewise(esize, src, src, func(x, _ uint64) uint64 { return fpNeg(esize, x) })

		case ir.OpExceptionRaised:
			s.Raised = true
			s.ExceptionPC = inst.Args[0].Imm()
			s.Exception = ir.Exception(inst.Args[1].Imm())
			return nil

		default:
			return fmt.Errorf("interp: unsupported opcode %s at %%%d", inst.Op, idx)
		}
	}
	return nil
}

// sqdmulh returns the high half of the doubled signed product of two esize-bit
// lanes, saturated to the signed range.
func sqdmulh(esize int, x, y uint64) (uint64, bool) {
	product := signExtend(x, esize) * signExtend(y, esize)
	high := product >> (esize - 1)
	maxv := int64(math.MaxInt64) >> (64 - esize)
	r, saturated := clamp(high, -maxv-1, maxv)
	return uint64(r) & laneMask(esize), saturated
}
