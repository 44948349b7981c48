// Package interp executes A64 IR blocks against a vector register state. It
// is the reference semantics the translator is tested against.
package interp

import (
	"fmt"
	"strings"

	"github.com/colorfulnotion/a64jit/a64/ir"
	"github.com/holiman/uint256"
)

// State is the guest state visible to the indexed-element group.
type State struct {
	V  [32]uint256.Int
	QC bool // FPSR.QC, cumulative saturation

	Raised      bool
	Exception   ir.Exception
	ExceptionPC uint64

	Reads  int
	Writes int
}

// SetQ loads a 128-bit register from its two 64-bit halves.
func (s *State) SetQ(reg int, lo, hi uint64) {
	s.V[reg] = uint256.Int{lo, hi, 0, 0}
}

// Q returns the two 64-bit halves of a register.
func (s *State) Q(reg int) (lo, hi uint64) {
	return s.V[reg][0], s.V[reg][1]
}

// SetLanes fills the low lanes of reg with the given esize-bit values and
// clears the remainder of the register.
func (s *State) SetLanes(reg int, esize int, lanes ...uint64) {
	if len(lanes)*esize > 128 {
		panic(fmt.Sprintf("interp: %d lanes of %d bits exceed a register", len(lanes), esize))
	}
	s.V[reg].Clear()
	for i, x := range lanes {
		setLane(&s.V[reg], esize, i, x)
	}
}

// Lane returns lane i of reg at esize bits.
func (s *State) Lane(reg int, esize int, i int) uint64 {
	return getLane(&s.V[reg], esize, i)
}

// Lanes returns every esize-bit lane of reg.
func (s *State) Lanes(reg int, esize int) []uint64 {
	out := make([]uint64, 128/esize)
	for i := range out {
		out[i] = getLane(&s.V[reg], esize, i)
	}
	return out
}

func (s *State) String() string {
	var sb strings.Builder
	for i := range s.V {
		lo, hi := s.Q(i)
		if lo == 0 && hi == 0 {
			continue
		}
		fmt.Fprintf(&sb, "v%-2d = %016x_%016x\n", i, hi, lo)
	}
	if s.QC {
		sb.WriteString("fpsr.qc = 1\n")
	}
	if s.Raised {
		fmt.Fprintf(&sb, "exception %s @ %#x\n", s.Exception, s.ExceptionPC)
	}
	return sb.String()
}
