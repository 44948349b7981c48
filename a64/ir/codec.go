package ir

import (
	"fmt"
	"math/bits"

	"github.com/colorfulnotion/a64jit/xlaterrors"
)

// Blocks are serialized with the variable-length natural number encoding:
// a prefix byte whose count of leading one bits gives the number of trailing
// little-endian bytes.

// CodecVersion leads every encoded block. Bump it whenever opcode numbering
// or the instruction layout changes so that persisted blocks are rejected.
const CodecVersion byte = 1

func appendNatural(buf []byte, x uint64) []byte {
	if x == 0 {
		return append(buf, 0)
	}
	for l := uint(0); l < 8; l++ {
		if x < 1<<(7*(l+1)) {
			base := uint64(256) - uint64(1)<<(8-l)
			buf = append(buf, byte(base+x>>(8*l)))
			for i := uint(0); i < l; i++ {
				buf = append(buf, byte(x>>(8*i)))
			}
			return buf
		}
	}
	buf = append(buf, 0xff)
	for i := 0; i < 8; i++ {
		buf = append(buf, byte(x>>(8*i)))
	}
	return buf
}

func readNatural(buf []byte) (uint64, int, error) {
	if len(buf) == 0 {
		return 0, 0, fmt.Errorf("natural: empty input: %w", xlaterrors.ErrCorruptBlock)
	}
	first := buf[0]
	l := bits.LeadingZeros8(^first)
	if len(buf) < 1+l {
		return 0, 0, fmt.Errorf("natural: need %d bytes, have %d: %w", 1+l, len(buf), xlaterrors.ErrCorruptBlock)
	}
	var low uint64
	for i := l - 1; i >= 0; i-- {
		low = low<<8 | uint64(buf[1+i])
	}
	if l == 8 {
		return low, 9, nil
	}
	high := uint64(first) - (uint64(256) - uint64(1)<<(8-l))
	return high<<(8*l) | low, 1 + l, nil
}

// Encode serializes b.
func Encode(b *Block) []byte {
	buf := make([]byte, 0, 16+8*len(b.Insts))
	buf = append(buf, CodecVersion)
	buf = appendNatural(buf, b.Location)
	buf = appendNatural(buf, uint64(len(b.Insts)))
	for _, inst := range b.Insts {
		buf = append(buf, byte(inst.Op), inst.Esize, byte(inst.Type))
		buf = appendNatural(buf, uint64(len(inst.Args)))
		for _, arg := range inst.Args {
			buf = append(buf, byte(arg.typ))
			buf = appendNatural(buf, uint64(arg.ref))
			if arg.ref == 0 {
				buf = appendNatural(buf, arg.imm)
			}
		}
	}
	return buf
}

type blockReader struct {
	buf []byte
	off int
}

func (r *blockReader) natural() (uint64, error) {
	x, n, err := readNatural(r.buf[r.off:])
	if err != nil {
		return 0, fmt.Errorf("offset %d: %w", r.off, err)
	}
	r.off += n
	return x, nil
}

func (r *blockReader) readByte() (byte, error) {
	if r.off >= len(r.buf) {
		return 0, fmt.Errorf("offset %d: truncated: %w", r.off, xlaterrors.ErrCorruptBlock)
	}
	c := r.buf[r.off]
	r.off++
	return c, nil
}

// Decode parses a block produced by Encode and verifies it. Any malformed or
// foreign input fails with ErrCorruptBlock.
func Decode(data []byte) (*Block, error) {
	r := &blockReader{buf: data}
	version, err := r.readByte()
	if err != nil {
		return nil, err
	}
	if version != CodecVersion {
		return nil, fmt.Errorf("codec version %d, want %d: %w", version, CodecVersion, xlaterrors.ErrCorruptBlock)
	}
	loc, err := r.natural()
	if err != nil {
		return nil, err
	}
	count, err := r.natural()
	if err != nil {
		return nil, err
	}
	if count > uint64(len(data)) {
		return nil, fmt.Errorf("instruction count %d exceeds input: %w", count, xlaterrors.ErrCorruptBlock)
	}
	b := &Block{Location: loc, Insts: make([]Inst, 0, count)}
	for i := uint64(0); i < count; i++ {
		var hdr [3]byte
		for j := range hdr {
			if hdr[j], err = r.readByte(); err != nil {
				return nil, err
			}
		}
		if Opcode(hdr[0]) >= opcodeCount || Type(hdr[2]) > U128 {
			return nil, fmt.Errorf("inst %d: bad header %x: %w", i, hdr, xlaterrors.ErrCorruptBlock)
		}
		nargs, err := r.natural()
		if err != nil {
			return nil, err
		}
		if nargs > 4 {
			return nil, fmt.Errorf("inst %d: %d operands: %w", i, nargs, xlaterrors.ErrCorruptBlock)
		}
		inst := Inst{Op: Opcode(hdr[0]), Esize: hdr[1], Type: Type(hdr[2]), Args: make([]Value, nargs)}
		for j := range inst.Args {
			typ, err := r.readByte()
			if err != nil {
				return nil, err
			}
			ref, err := r.natural()
			if err != nil {
				return nil, err
			}
			if ref > i {
				return nil, fmt.Errorf("inst %d: forward reference %%%d: %w", i, ref-1, xlaterrors.ErrCorruptBlock)
			}
			v := Value{ref: int32(ref), typ: Type(typ)}
			if ref == 0 {
				if v.imm, err = r.natural(); err != nil {
					return nil, err
				}
			}
			inst.Args[j] = v
		}
		b.Insts = append(b.Insts, inst)
	}
	if r.off != len(data) {
		return nil, fmt.Errorf("%d trailing bytes: %w", len(data)-r.off, xlaterrors.ErrCorruptBlock)
	}
	if err := b.Verify(); err != nil {
		return nil, err
	}
	return b, nil
}
