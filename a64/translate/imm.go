// Package translate turns the decoded fields of the A64 "vector x indexed
// element" multiply group into IR.
package translate

import "fmt"

// Imm is an instruction bit-field of a declared width. Values are taken as
// given; the decoder guarantees they fit.
type Imm struct {
	value uint32
	width uint
}

// NewImm returns a width-bit field holding value.
func NewImm(width uint, value uint32) Imm {
	return Imm{value: value, width: width}
}

func Imm1(v uint32) Imm { return NewImm(1, v) }
func Imm2(v uint32) Imm { return NewImm(2, v) }
func Imm4(v uint32) Imm { return NewImm(4, v) }

func (i Imm) Width() uint { return i.width }

func (i Imm) ZeroExtend() uint32 { return i.value }

// Bit reports whether the lowest bit of the field is set.
func (i Imm) Bit() bool { return i.value&1 == 1 }

// Is reports whether the field equals v.
func (i Imm) Is(v uint32) bool { return i.value == v }

func (i Imm) String() string {
	return fmt.Sprintf("0b%0*b", i.width, i.value)
}

// Concatenate joins fields, most significant first.
func Concatenate(parts ...Imm) Imm {
	var out Imm
	for _, p := range parts {
		out.value = out.value<<p.width | p.value
		out.width += p.width
	}
	return out
}

// Vec names one of the 32 architectural vector registers.
type Vec uint8

// VecOf converts an assembled register field to a Vec.
func VecOf(i Imm) Vec { return Vec(i.value) }

func (v Vec) String() string { return fmt.Sprintf("v%d", uint8(v)) }

// Size selector values.
const (
	sizeByte     = 0b00
	sizeHalfword = 0b01
	sizeWord     = 0b10
	sizeReserved = 0b11
)

func esizeOf(size Imm) int {
	return 8 << size.ZeroExtend()
}

func datasizeOf(q bool) int {
	if q {
		return 128
	}
	return 64
}
