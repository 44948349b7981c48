package jit

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/colorfulnotion/a64jit/a64/interp"
	"github.com/colorfulnotion/a64jit/a64/ir"
	"github.com/colorfulnotion/a64jit/xlaterrors"
)

const (
	mulV0_4S  = 0x4f828020 // mul v0.4s, v1.4s, v2.s[0]
	mlaV3_8H  = 0x6f520023 // mla v3.8h, v1.8h, v2.h[1]
	sdotV4_4S = 0x4f82e024 // sdot v4.4s, v1.16b, v2.4b[0]
	udot8H    = 0x6f42e024 // udot with size 01 (reserved)
	mulBytes  = 0x4f028020 // mul with size 00 (unallocated)
	nop       = 0xd503201f
)

func newTranslator(t *testing.T) (*Translator, *tracetest.SpanRecorder) {
	t.Helper()
	sr := tracetest.NewSpanRecorder()
	tr, err := NewTranslator(Config{TracerProvider: sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))})
	require.NoError(t, err)
	t.Cleanup(func() { tr.Close() })
	return tr, sr
}

func TestTranslateBlock(t *testing.T) {
	tr, sr := newTranslator(t)
	bb, err := tr.TranslateBlock(context.Background(), 0x1000, []uint32{mulV0_4S, mlaV3_8H, sdotV4_4S})
	require.NoError(t, err)
	assert.Equal(t, FALLTHROUGH, bb.Termination)
	assert.Equal(t, uint64(0x100c), bb.NextPC)
	require.Len(t, bb.Instructions, 3)
	assert.Equal(t, "MUL", bb.Instructions[0].Mnemonic)
	assert.Equal(t, "MLA", bb.Instructions[1].Mnemonic)
	assert.Equal(t, "SDOT", bb.Instructions[2].Mnemonic)
	assert.False(t, bb.Cached)

	spans := sr.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "TranslateBlock", spans[0].Name())
}

func TestUndefinedEncodingRaisesException(t *testing.T) {
	for _, tc := range []struct {
		name string
		word uint32
		exc  ir.Exception
		err  error
	}{
		{"unallocated", mulBytes, ir.ExceptionUnallocatedEncoding, xlaterrors.ErrUnallocatedEncoding},
		{"reserved", udot8H, ir.ExceptionReservedValue, xlaterrors.ErrReservedValue},
	} {
		t.Run(tc.name, func(t *testing.T) {
			tr, _ := newTranslator(t)
			bb, err := tr.TranslateBlock(context.Background(), 0x2000, []uint32{mulV0_4S, tc.word, mlaV3_8H})
			require.NoError(t, err)
			assert.Equal(t, EXCEPTION, bb.Termination)
			require.Len(t, bb.Instructions, 2)
			assert.ErrorIs(t, bb.Instructions[1].Err, tc.err)
			assert.Equal(t, uint64(0x2008), bb.NextPC)

			last := bb.IR.Insts[bb.IR.Len()-1]
			assert.Equal(t, ir.OpExceptionRaised, last.Op)
			assert.Equal(t, uint64(0x2004), last.Args[0].Imm())
			assert.Equal(t, uint64(tc.exc), last.Args[1].Imm())

			// The cached copy reports the same exception.
			again, err := tr.TranslateBlock(context.Background(), 0x2000, []uint32{mulV0_4S, tc.word, mlaV3_8H})
			require.NoError(t, err)
			assert.True(t, again.Cached)
			assert.Equal(t, EXCEPTION, again.Termination)
			require.Len(t, again.Instructions, 2)
			assert.ErrorIs(t, again.Instructions[1].Err, tc.err)
		})
	}
}

func TestUnitStopsAtForeignWord(t *testing.T) {
	tr, _ := newTranslator(t)
	bb, err := tr.TranslateBlock(context.Background(), 0, []uint32{mulV0_4S, nop, mlaV3_8H})
	require.NoError(t, err)
	assert.Equal(t, UNHANDLED, bb.Termination)
	assert.Len(t, bb.Instructions, 1)

	_, err = tr.TranslateBlock(context.Background(), 0, []uint32{nop})
	assert.ErrorIs(t, err, xlaterrors.ErrNoMatch)
	_, err = tr.TranslateBlock(context.Background(), 0, nil)
	assert.ErrorIs(t, err, xlaterrors.ErrNoMatch)
}

func TestCacheReuse(t *testing.T) {
	tr, _ := newTranslator(t)
	first, err := tr.TranslateBlock(context.Background(), 0x40, []uint32{mulV0_4S})
	require.NoError(t, err)
	second, err := tr.TranslateBlock(context.Background(), 0x40, []uint32{mulV0_4S})
	require.NoError(t, err)
	assert.True(t, second.Cached)
	assert.Equal(t, first.IR.String(), second.IR.String())

	hits, misses := tr.Cache().Stats()
	assert.Equal(t, uint64(1), hits)
	assert.Equal(t, uint64(1), misses)
}

func TestCanceledContext(t *testing.T) {
	tr, _ := newTranslator(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := tr.TranslateBlock(ctx, 0, []uint32{mulV0_4S})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRun(t *testing.T) {
	tr, sr := newTranslator(t)
	var s interp.State
	s.SetLanes(1, 32, 1, 2, 3, 4)
	s.SetLanes(2, 32, 5)
	bb, err := tr.Run(context.Background(), 0x80, []uint32{mulV0_4S}, &s)
	require.NoError(t, err)
	assert.Equal(t, FALLTHROUGH, bb.Termination)
	assert.Equal(t, []uint64{5, 10, 15, 20}, s.Lanes(0, 32))
	assert.Len(t, sr.Ended(), 2)

	s = interp.State{}
	_, err = tr.Run(context.Background(), 0x90, []uint32{udot8H}, &s)
	require.NoError(t, err)
	assert.True(t, s.Raised)
	assert.Equal(t, ir.ExceptionReservedValue, s.Exception)
	assert.Equal(t, uint64(0x90), s.ExceptionPC)
}

func TestInvalidCachedBlockIsRetranslated(t *testing.T) {
	zeroEsize := func(b *ir.Builder) {
		q := b.GetQ(1)
		b.SetQ(0, b.VectorAdd(32, q, q))
		b.Block.Insts[1].Esize = 0
	}
	bareException := func(b *ir.Builder) {
		b.Block.Insts = append(b.Block.Insts, ir.Inst{Op: ir.OpExceptionRaised, Type: ir.Void})
	}
	for name, corrupt := range map[string]func(*ir.Builder){"zero esize": zeroEsize, "bare exception": bareException} {
		t.Run(name, func(t *testing.T) {
			tr, _ := newTranslator(t)
			b := ir.NewBuilder(0x40)
			corrupt(b)
			require.NoError(t, tr.Cache().Put(0x40, []uint32{mulV0_4S}, b.Block))

			var s interp.State
			s.SetLanes(1, 32, 1, 2, 3, 4)
			s.SetLanes(2, 32, 5)
			bb, err := tr.Run(context.Background(), 0x40, []uint32{mulV0_4S}, &s)
			require.NoError(t, err)
			assert.False(t, bb.Cached)
			assert.Equal(t, FALLTHROUGH, bb.Termination)
			assert.Equal(t, []uint64{5, 10, 15, 20}, s.Lanes(0, 32))

			again, err := tr.TranslateBlock(context.Background(), 0x40, []uint32{mulV0_4S})
			require.NoError(t, err)
			assert.True(t, again.Cached)
		})
	}
}
