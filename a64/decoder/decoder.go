// Package decoder recognises the A64 "vector x indexed element" multiply
// group and binds each word to its translate entry point.
package decoder

import (
	"fmt"
	"strings"

	"github.com/colorfulnotion/a64jit/a64/translate"
	"github.com/colorfulnotion/a64jit/log"
	"github.com/colorfulnotion/a64jit/xlaterrors"
)

// Handler is a translate entry point.
type Handler func(v *translate.Visitor, f translate.Fields) bool

// Matcher recognises one mnemonic of the group.
type Matcher struct {
	Name    string
	Pattern string
	Handler Handler

	mask   uint32
	expect uint32
	// long forms print a "2" suffix when they read the upper half of Vn
	long bool
}

// Matches reports whether word is an instance of m.
func (m *Matcher) Matches(word uint32) bool {
	return word&m.mask == m.expect
}

// Mnemonic returns the assembler mnemonic of word, with the "2" suffix for
// the upper-half long forms.
func (m *Matcher) Mnemonic(word uint32) string {
	if m.long && word&(1<<30) != 0 {
		return m.Name + "2"
	}
	return m.Name
}

func newMatcher(name, pattern string, long bool, h Handler) *Matcher {
	bits := strings.ReplaceAll(pattern, "_", "")
	if len(bits) != 32 {
		panic(fmt.Sprintf("decoder: pattern for %s has %d bits", name, len(bits)))
	}
	m := &Matcher{Name: name, Pattern: bits, Handler: h, long: long}
	for i, c := range bits {
		bit := uint32(1) << (31 - i)
		switch c {
		case '0':
			m.mask |= bit
		case '1':
			m.mask |= bit
			m.expect |= bit
		}
	}
	return m
}

var table = []*Matcher{
	newMatcher("MLA", "0Q101111zzLMmmmm0000H0nnnnnddddd", false, (*translate.Visitor).MLAElt),
	newMatcher("MLS", "0Q101111zzLMmmmm0100H0nnnnnddddd", false, (*translate.Visitor).MLSElt),
	newMatcher("MUL", "0Q001111zzLMmmmm1000H0nnnnnddddd", false, (*translate.Visitor).MULElt),
	newMatcher("FMLA", "0Q0011111zLMmmmm0001H0nnnnnddddd", false, (*translate.Visitor).FMLAElt),
	newMatcher("FMLS", "0Q0011111zLMmmmm0101H0nnnnnddddd", false, (*translate.Visitor).FMLSElt),
	newMatcher("FMUL", "0Q0011111zLMmmmm1001H0nnnnnddddd", false, (*translate.Visitor).FMULElt),
	newMatcher("SMLAL", "0Q001111zzLMmmmm0010H0nnnnnddddd", true, (*translate.Visitor).SMLALElt),
	newMatcher("SMLSL", "0Q001111zzLMmmmm0110H0nnnnnddddd", true, (*translate.Visitor).SMLSLElt),
	newMatcher("SMULL", "0Q001111zzLMmmmm1010H0nnnnnddddd", true, (*translate.Visitor).SMULLElt),
	newMatcher("UMLAL", "0Q101111zzLMmmmm0010H0nnnnnddddd", true, (*translate.Visitor).UMLALElt),
	newMatcher("UMLSL", "0Q101111zzLMmmmm0110H0nnnnnddddd", true, (*translate.Visitor).UMLSLElt),
	newMatcher("UMULL", "0Q101111zzLMmmmm1010H0nnnnnddddd", true, (*translate.Visitor).UMULLElt),
	newMatcher("SQDMULH", "0Q001111zzLMmmmm1100H0nnnnnddddd", false, (*translate.Visitor).SQDMULHElt),
	newMatcher("SDOT", "0Q001111zzLMmmmm1110H0nnnnnddddd", false, (*translate.Visitor).SDOTElt),
	newMatcher("UDOT", "0Q101111zzLMmmmm1110H0nnnnnddddd", false, (*translate.Visitor).UDOTElt),
}

// Table returns the matchers of the group in decode order.
func Table() []*Matcher {
	return table
}

// Lookup returns the matcher for word.
func Lookup(word uint32) (*Matcher, error) {
	for _, m := range table {
		if m.Matches(word) {
			return m, nil
		}
	}
	return nil, fmt.Errorf("%#08x: %w", word, xlaterrors.ErrNoMatch)
}

// Extract splits word into the operand fields of the group.
func Extract(word uint32) translate.Fields {
	field := func(lsb, width uint) uint32 {
		return word >> lsb & (1<<width - 1)
	}
	return translate.Fields{
		Q:    field(30, 1) == 1,
		Size: translate.Imm2(field(22, 2)),
		L:    translate.Imm1(field(21, 1)),
		M:    translate.Imm1(field(20, 1)),
		Vmlo: translate.Imm4(field(16, 4)),
		H:    translate.Imm1(field(11, 1)),
		Vn:   translate.Vec(field(5, 5)),
		Vd:   translate.Vec(field(0, 5)),
	}
}

// Decode looks up word and extracts its fields.
func Decode(word uint32) (*Matcher, translate.Fields, error) {
	m, err := Lookup(word)
	if err != nil {
		return nil, translate.Fields{}, err
	}
	f := Extract(word)
	log.Trace(log.DecodeModule, "decoded", "word", fmt.Sprintf("%#08x", word), "mnemonic", m.Mnemonic(word))
	return m, f, nil
}

// Translate decodes word and runs its entry point against v.
func Translate(v *translate.Visitor, word uint32) (bool, error) {
	m, f, err := Decode(word)
	if err != nil {
		return false, err
	}
	return m.Handler(v, f), nil
}
