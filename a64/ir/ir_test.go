package ir

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/colorfulnotion/a64jit/xlaterrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleBlock() *Block {
	b := NewBuilder(0x4000)
	n := b.GetQ(1)
	m := b.GetD(2)
	lane := b.VectorGetElement(16, m, 3)
	prod := b.VectorMultiply(16, n, b.VectorBroadcast(16, lane))
	acc := b.VectorAdd(16, b.GetQ(0), prod)
	b.SetQ(0, acc)
	return b.Block
}

func TestBuilderTypes(t *testing.T) {
	b := NewBuilder(0)
	q := b.GetQ(5)
	assert.Equal(t, U128, q.Type())
	assert.False(t, q.IsImmediate())
	assert.Equal(t, 0, q.Inst())

	e := b.VectorGetElement(8, q, 15)
	assert.Equal(t, U8, e.Type())
	w := b.SignExtendToWord(e)
	assert.Equal(t, U32, w.Type())
	assert.Equal(t, w, b.SignExtendToWord(w), "extending a word is a no-op")

	sum := b.Add(b.Imm32(0), b.Mul(w, w))
	assert.Equal(t, U32, sum.Type())
	assert.Equal(t, 5, b.Block.Len(), "immediates emit nothing")
}

func TestBuilderRejectsMisuse(t *testing.T) {
	b := NewBuilder(0)
	q := b.GetQ(0)
	assert.Panics(t, func() { b.VectorGetElement(16, q, 8) })
	assert.Panics(t, func() { b.VectorBroadcast(32, Imm8(1)) })
	assert.Panics(t, func() { b.VectorSignedSaturatedDoublingMultiplyReturnHigh(8, q, q) })
	assert.Panics(t, func() { b.FPVectorMul(16, q, q) })
	assert.Panics(t, func() { b.Add(q, Imm32(1)) })
	assert.Panics(t, func() { b.SignExtendToWord(q) })
	assert.Panics(t, func() { TypeOfWidth(24) })
}

func TestNaturalEncoding(t *testing.T) {
	for _, x := range []uint64{0, 1, 127, 128, 300, 1 << 14, 1<<21 - 1, 1 << 35, 1<<56 - 1, 1 << 56, ^uint64(0)} {
		buf := appendNatural(nil, x)
		got, n, err := readNatural(buf)
		require.NoError(t, err)
		assert.Equal(t, x, got)
		assert.Equal(t, len(buf), n)
	}
	assert.Equal(t, []byte{0x7f}, appendNatural(nil, 127))
	assert.Equal(t, []byte{0x80, 0x80}, appendNatural(nil, 128))
}

func TestCodecRoundTrip(t *testing.T) {
	blk := sampleBlock()
	blk.Insts = append(blk.Insts, Inst{Op: OpExceptionRaised, Type: Void, Args: []Value{Imm64(0x4004), Imm8(uint8(ExceptionReservedValue))}})

	got, err := Decode(Encode(blk))
	require.NoError(t, err)
	assert.Equal(t, blk.Location, got.Location)
	assert.Equal(t, blk.String(), got.String())
	assert.Equal(t, blk.Insts, got.Insts)
}

func TestDecodeCorrupt(t *testing.T) {
	enc := Encode(sampleBlock())

	_, err := Decode(enc[:len(enc)-1])
	assert.True(t, errors.Is(err, xlaterrors.ErrCorruptBlock))

	_, err = Decode(append(append([]byte{}, enc...), 0))
	assert.True(t, errors.Is(err, xlaterrors.ErrCorruptBlock))

	bad := append([]byte{}, enc...)
	header := 1 + len(appendNatural(appendNatural(nil, 0x4000), 8))
	bad[header] = byte(opcodeCount)
	_, err = Decode(bad)
	assert.True(t, errors.Is(err, xlaterrors.ErrCorruptBlock))

	_, err = Decode(nil)
	assert.Error(t, err)

	stale := append([]byte{}, enc...)
	stale[0] = CodecVersion + 1
	_, err = Decode(stale)
	assert.ErrorIs(t, err, xlaterrors.ErrCorruptBlock)
}

func TestVerifyBuilderBlocks(t *testing.T) {
	blk := sampleBlock()
	b := &Builder{Block: blk}
	w := b.SignExtendToWord(b.VectorGetElement(8, b.GetQ(3), 15))
	b.SetD(4, b.VectorSetElement(32, b.GetQ(4), 3, b.Add(b.Imm32(7), b.Mul(w, w))))
	b.SetQ(5, b.FPVectorMulAdd(64, b.GetQ(5), b.FPVectorNeg(64, b.GetQ(6)), b.VectorBroadcast(64, b.VectorGetElement(64, b.GetQ(7), 1))))
	b.SetQ(6, b.VectorSignExtend(16, b.ZeroExtendToQuad(b.VectorGetElement(64, b.GetQ(8), 1))))
	b.ExceptionRaised(0x4004, ExceptionUnallocatedEncoding)
	require.NoError(t, blk.Verify())

	got, err := Decode(Encode(blk))
	require.NoError(t, err)
	assert.Equal(t, blk.Insts, got.Insts)
}

func TestDecodeRejectsInvalidInstructions(t *testing.T) {
	q := Value{ref: 1, typ: U128}
	getQ := Inst{Op: OpGetQ, Type: U128, Args: []Value{Imm8(1)}}
	tests := []struct {
		name string
		inst Inst
	}{
		{"vector add without esize", Inst{Op: OpVectorAdd, Type: U128, Args: []Value{q, q}}},
		{"exception without operands", Inst{Op: OpExceptionRaised, Type: Void}},
		{"unknown exception", Inst{Op: OpExceptionRaised, Type: Void, Args: []Value{Imm64(0), Imm8(9)}}},
		{"register out of range", Inst{Op: OpGetD, Type: U128, Args: []Value{Imm8(32)}}},
		{"register from a reference", Inst{Op: OpSetQ, Type: Void, Args: []Value{q, q}}},
		{"lane out of range", Inst{Op: OpVectorGetElement, Esize: 32, Type: U32, Args: []Value{q, Imm8(4)}}},
		{"wrong result type", Inst{Op: OpVectorGetElement, Esize: 16, Type: U32, Args: []Value{q, Imm8(0)}}},
		{"operand type mismatch", Inst{Op: OpAdd32, Type: U32, Args: []Value{Imm32(1), q}}},
		{"mislabelled reference", Inst{Op: OpAdd32, Type: U32, Args: []Value{Imm32(1), {ref: 1, typ: U32}}}},
		{"extra operand", Inst{Op: OpFPVectorNeg, Esize: 32, Type: U128, Args: []Value{q, q}}},
		{"saturating multiply on bytes", Inst{Op: OpVectorSignedSaturatedDoublingMultiplyReturnHigh, Esize: 8, Type: U128, Args: []Value{q, q}}},
		{"oversized immediate", Inst{Op: OpGetQ, Type: U128, Args: []Value{{imm: 0x101, typ: U8}}}},
		{"void opcode", Inst{Op: OpVoid}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			blk := &Block{Location: 0x10, Insts: []Inst{getQ, tc.inst}}
			assert.ErrorIs(t, blk.Verify(), xlaterrors.ErrCorruptBlock)
			_, err := Decode(Encode(blk))
			assert.ErrorIs(t, err, xlaterrors.ErrCorruptBlock)
		})
	}
}

func TestListing(t *testing.T) {
	out := sampleBlock().String()
	assert.Contains(t, out, "block @ 0x4000")
	assert.Contains(t, out, "%3    = VectorBroadcast.16 %2")
	assert.Contains(t, out, "A64SetQ #0x0, %6")
}

func TestTree(t *testing.T) {
	out := sampleBlock().Tree().String()
	assert.True(t, strings.HasPrefix(out, "block @ 0x4000"))
	assert.Contains(t, out, "A64SetQ #0x0, %6")
	assert.Contains(t, out, "%6 = VectorAdd.16 %5, %4")
	assert.Contains(t, out, "%2 = VectorGetElement.16 %1, #0x3")
}

func TestMarshalJSON(t *testing.T) {
	raw, err := json.Marshal(sampleBlock())
	require.NoError(t, err)
	var out jsonBlock
	require.NoError(t, json.Unmarshal(raw, &out))
	assert.Equal(t, "0x4000", out.Location)
	require.Len(t, out.Insts, 8)
	assert.Equal(t, "VectorMultiply", out.Insts[4].Op)
	assert.Equal(t, uint8(16), out.Insts[4].Esize)
	assert.Equal(t, []string{"%1", "#0x3"}, out.Insts[2].Args)
}
