package decoder

import (
	"encoding/binary"
	"fmt"
	"strings"

	"golang.org/x/arch/arm64/arm64asm"
)

// Disassemble returns the assembler text of word. Dot products are printed
// locally since arm64asm predates them.
func Disassemble(word uint32) (string, error) {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], word)
	inst, err := arm64asm.Decode(buf[:])
	if err == nil {
		return inst.String(), nil
	}
	m, lerr := Lookup(word)
	if lerr != nil {
		return "", err
	}
	if m.Name != "SDOT" && m.Name != "UDOT" {
		return "", fmt.Errorf("%s: %w", m.Mnemonic(word), err)
	}
	f := Extract(word)
	if !f.Size.Is(0b10) {
		return "", fmt.Errorf("%s: reserved size %s", m.Name, f.Size)
	}
	d, b := "2S", "8B"
	if f.Q {
		d, b = "4S", "16B"
	}
	vm := uint32(f.M.ZeroExtend())<<4 | f.Vmlo.ZeroExtend()
	index := f.H.ZeroExtend()<<1 | f.L.ZeroExtend()
	return fmt.Sprintf("%s V%d.%s, V%d.%s, V%d.4B[%d]", m.Name, f.Vd, d, f.Vn, b, vm, index), nil
}

// DisassembleCode lists little-endian instruction words with their offsets.
// Words that do not disassemble are printed as data.
func DisassembleCode(code []byte) string {
	var sb strings.Builder
	for offset := 0; offset+4 <= len(code); offset += 4 {
		word := binary.LittleEndian.Uint32(code[offset:])
		text, err := Disassemble(word)
		if err != nil {
			text = fmt.Sprintf(".inst %#08x", word)
		}
		sb.WriteString(fmt.Sprintf("0x%04x: %08x %s\n", offset, word, text))
	}
	return sb.String()
}
