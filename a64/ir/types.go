// Package ir holds the intermediate representation produced by the A64
// frontend. A Block is a flat list of instructions; every instruction result
// is addressed by its position in the block.
package ir

import "fmt"

// Type is the width class of an IR value.
type Type uint8

const (
	Void Type = iota
	U8
	U16
	U32
	U64
	U128
)

func (t Type) String() string {
	switch t {
	case Void:
		return "void"
	case U8:
		return "u8"
	case U16:
		return "u16"
	case U32:
		return "u32"
	case U64:
		return "u64"
	case U128:
		return "u128"
	default:
		return fmt.Sprintf("type(%d)", uint8(t))
	}
}

// Bits returns the width of t in bits.
func (t Type) Bits() int {
	switch t {
	case U8:
		return 8
	case U16:
		return 16
	case U32:
		return 32
	case U64:
		return 64
	case U128:
		return 128
	default:
		return 0
	}
}

// TypeOfWidth maps a scalar width in bits to its Type.
func TypeOfWidth(bits int) Type {
	switch bits {
	case 8:
		return U8
	case 16:
		return U16
	case 32:
		return U32
	case 64:
		return U64
	case 128:
		return U128
	default:
		panic(fmt.Sprintf("ir: no type of width %d", bits))
	}
}

// Value is an opaque handle to an immediate or to the result of an
// instruction in the block being built.
type Value struct {
	ref int32 // instruction index + 1; 0 for immediates
	imm uint64
	typ Type
}

// Imm8 returns an 8-bit immediate.
func Imm8(v uint8) Value { return Value{imm: uint64(v), typ: U8} }

// Imm32 returns a 32-bit immediate.
func Imm32(v uint32) Value { return Value{imm: uint64(v), typ: U32} }

// Imm64 returns a 64-bit immediate.
func Imm64(v uint64) Value { return Value{imm: v, typ: U64} }

func (v Value) Type() Type { return v.typ }

func (v Value) IsImmediate() bool { return v.ref == 0 }

// Inst returns the index of the producing instruction. Only valid when
// IsImmediate is false.
func (v Value) Inst() int { return int(v.ref) - 1 }

// Imm returns the immediate payload. Only valid when IsImmediate is true.
func (v Value) Imm() uint64 { return v.imm }

func (v Value) String() string {
	if v.IsImmediate() {
		return fmt.Sprintf("#%#x", v.imm)
	}
	return fmt.Sprintf("%%%d", v.Inst())
}

// Inst is a single IR instruction.
type Inst struct {
	Op    Opcode
	Esize uint8 // lane width in bits for vector opcodes, 0 otherwise
	Args  []Value
	Type  Type
}

// Block is the IR produced for one translation unit.
type Block struct {
	Location uint64
	Insts    []Inst
}

// NewBlock returns an empty block starting at guest address loc.
func NewBlock(loc uint64) *Block {
	return &Block{Location: loc, Insts: make([]Inst, 0, 16)}
}

func (b *Block) append(inst Inst) Value {
	b.Insts = append(b.Insts, inst)
	return Value{ref: int32(len(b.Insts)), typ: inst.Type}
}

// Len returns the number of instructions in the block.
func (b *Block) Len() int { return len(b.Insts) }
