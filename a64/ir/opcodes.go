package ir

import "fmt"

type Opcode uint8

const (
	OpVoid Opcode = iota

	// A64 register file
	OpGetQ
	OpGetD
	OpSetQ
	OpSetD

	// Scalar
	OpAdd32
	OpMul32
	OpSignExtendToWord
	OpZeroExtendToWord
	OpZeroExtendToQuad

	// Vector
	OpVectorGetElement
	OpVectorSetElement
	OpVectorBroadcast
	OpVectorBroadcastLower
	OpVectorAdd
	OpVectorSub
	OpVectorMultiply
	OpVectorSignExtend
	OpVectorZeroExtend
	OpVectorSignedSaturatedDoublingMultiplyReturnHigh

	// Floating point
	OpFPVectorMul
	OpFPVectorMulAdd
	OpFPVectorNeg

	// Terminal
	OpExceptionRaised

	opcodeCount
)

var opcodeNames = map[Opcode]string{
	OpVoid:                 "Void",
	OpGetQ:                 "A64GetQ",
	OpGetD:                 "A64GetD",
	OpSetQ:                 "A64SetQ",
	OpSetD:                 "A64SetD",
	OpAdd32:                "Add32",
	OpMul32:                "Mul32",
	OpSignExtendToWord:     "SignExtendToWord",
	OpZeroExtendToWord:     "ZeroExtendToWord",
	OpZeroExtendToQuad:     "ZeroExtendToQuad",
	OpVectorGetElement:     "VectorGetElement",
	OpVectorSetElement:     "VectorSetElement",
	OpVectorBroadcast:      "VectorBroadcast",
	OpVectorBroadcastLower: "VectorBroadcastLower",
	OpVectorAdd:            "VectorAdd",
	OpVectorSub:            "VectorSub",
	OpVectorMultiply:       "VectorMultiply",
	OpVectorSignExtend:     "VectorSignExtend",
	OpVectorZeroExtend:     "VectorZeroExtend",
	OpVectorSignedSaturatedDoublingMultiplyReturnHigh: "VectorSignedSaturatedDoublingMultiplyReturnHigh",
	OpFPVectorMul:     "FPVectorMul",
	OpFPVectorMulAdd:  "FPVectorMulAdd",
	OpFPVectorNeg:     "FPVectorNeg",
	OpExceptionRaised: "A64ExceptionRaised",
}

func (op Opcode) String() string {
	if name, ok := opcodeNames[op]; ok {
		return name
	}
	return fmt.Sprintf("Opcode(%d)", uint8(op))
}

// WritesRegister reports whether op has an architectural side effect on the
// vector register file.
func (op Opcode) WritesRegister() bool {
	return op == OpSetQ || op == OpSetD
}

// Exception identifies the guest exception raised by OpExceptionRaised.
type Exception uint8

const (
	ExceptionUnallocatedEncoding Exception = iota + 1
	ExceptionReservedValue
)

func (e Exception) String() string {
	switch e {
	case ExceptionUnallocatedEncoding:
		return "UnallocatedEncoding"
	case ExceptionReservedValue:
		return "ReservedValue"
	default:
		return fmt.Sprintf("Exception(%d)", uint8(e))
	}
}
