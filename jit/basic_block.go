package jit

import (
	"fmt"
	"strings"

	"github.com/colorfulnotion/a64jit/a64/ir"
)

// How a translation unit ends.
const (
	FALLTHROUGH = 0 // every supplied word was translated
	EXCEPTION   = 1 // an undefined encoding raises an exception at run time
	UNHANDLED   = 2 // the next word belongs to another instruction group
)

type BasicBlock struct {
	Instructions []Instruction

	PC     uint64
	NextPC uint64 // guest address following the last translated word

	Termination int
	IR          *ir.Block
	Cached      bool
}

type Instruction struct {
	Word     uint32
	Pc       uint64
	Mnemonic string
	Err      error // set when the encoding is undefined
}

func NewBasicBlock(pc uint64) *BasicBlock {
	return &BasicBlock{
		Instructions: make([]Instruction, 0, 8),
		PC:           pc,
		NextPC:       pc,
	}
}

func (i *Instruction) String() string {
	if i.Err != nil {
		return fmt.Sprintf("%#x: %08x %s (undefined)", i.Pc, i.Word, i.Mnemonic)
	}
	return fmt.Sprintf("%#x: %08x %s", i.Pc, i.Word, i.Mnemonic)
}

func terminationName(t int) string {
	switch t {
	case FALLTHROUGH:
		return "fallthrough"
	case EXCEPTION:
		return "exception"
	case UNHANDLED:
		return "unhandled"
	}
	return fmt.Sprintf("termination(%d)", t)
}

func (bb *BasicBlock) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "unit %#x..%#x %s", bb.PC, bb.NextPC, terminationName(bb.Termination))
	if bb.Cached {
		sb.WriteString(" (cached)")
	}
	sb.WriteByte('\n')
	for i := range bb.Instructions {
		sb.WriteString("  ")
		sb.WriteString(bb.Instructions[i].String())
		sb.WriteByte('\n')
	}
	return sb.String()
}

func (bb *BasicBlock) add(inst Instruction) {
	bb.Instructions = append(bb.Instructions, inst)
	bb.NextPC = inst.Pc + 4
}
