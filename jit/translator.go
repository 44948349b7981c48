// Package jit builds translation units from guest instruction words: each
// word is decoded, translated to IR and the finished block is cached.
package jit

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/colorfulnotion/a64jit/a64/decoder"
	"github.com/colorfulnotion/a64jit/a64/interp"
	"github.com/colorfulnotion/a64jit/a64/ir"
	"github.com/colorfulnotion/a64jit/a64/translate"
	"github.com/colorfulnotion/a64jit/log"
	"github.com/colorfulnotion/a64jit/storage"
	"github.com/colorfulnotion/a64jit/xlaterrors"
)

const tracerName = "github.com/colorfulnotion/a64jit/jit"

type Config struct {
	// CachePath is the translation cache directory; empty keeps it in memory.
	CachePath string
	// Trace logs the IR listing of every unit.
	Trace bool
	// TracerProvider defaults to the global otel provider.
	TracerProvider trace.TracerProvider
}

// Translator turns guest code into IR blocks. It is safe for concurrent use.
type Translator struct {
	cfg    Config
	cache  *storage.TranslationCache
	tracer trace.Tracer
}

func NewTranslator(cfg Config) (*Translator, error) {
	cache, err := storage.NewTranslationCache(cfg.CachePath)
	if err != nil {
		return nil, fmt.Errorf("jit: %w", err)
	}
	tp := cfg.TracerProvider
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	return &Translator{cfg: cfg, cache: cache, tracer: tp.Tracer(tracerName)}, nil
}

func (t *Translator) Close() error {
	return t.cache.Close()
}

// Cache exposes the translation cache.
func (t *Translator) Cache() *storage.TranslationCache {
	return t.cache
}

// exceptionFor maps an entry point failure to the guest exception it raises.
func exceptionFor(err error) ir.Exception {
	if errors.Is(err, xlaterrors.ErrReservedValue) {
		return ir.ExceptionReservedValue
	}
	return ir.ExceptionUnallocatedEncoding
}

func errorFor(exc ir.Exception) error {
	if exc == ir.ExceptionReservedValue {
		return xlaterrors.ErrReservedValue
	}
	return xlaterrors.ErrUnallocatedEncoding
}

// extent counts the leading words that belong to the group.
func extent(words []uint32) int {
	for i, w := range words {
		if _, err := decoder.Lookup(w); err != nil {
			return i
		}
	}
	return len(words)
}

// TranslateBlock translates words starting at guest address pc. The unit
// stops at the first word outside the group or after the first undefined
// encoding, which is translated into an exception.
func (t *Translator) TranslateBlock(ctx context.Context, pc uint64, words []uint32) (*BasicBlock, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	_, span := t.tracer.Start(ctx, "TranslateBlock", trace.WithAttributes(
		attribute.String("pc", fmt.Sprintf("%#x", pc)),
		attribute.Int("words", len(words)),
	))
	defer span.End()

	n := extent(words)
	if n == 0 {
		err := fmt.Errorf("jit: %#x: %w", pc, xlaterrors.ErrNoMatch)
		if len(words) == 0 {
			err = fmt.Errorf("jit: %#x: empty unit: %w", pc, xlaterrors.ErrNoMatch)
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "no translatable instruction")
		return nil, err
	}

	bb, err := t.lookup(pc, words, n)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	if bb == nil {
		bb = t.translate(pc, words, n)
		if err := t.cache.Put(pc, words[:n], bb.IR); err != nil {
			log.Warn(log.JITModule, "cache store failed", "pc", fmt.Sprintf("%#x", pc), "err", err)
		}
	}

	span.SetAttributes(
		attribute.Int("instructions", len(bb.Instructions)),
		attribute.Int("ir", bb.IR.Len()),
		attribute.Bool("cached", bb.Cached),
		attribute.String("termination", terminationName(bb.Termination)),
	)
	if t.cfg.Trace {
		log.Info(log.JITModule, "translated unit", "pc", fmt.Sprintf("%#x", pc), "unit", bb.String(), "ir", bb.IR.String())
	}
	return bb, nil
}

func (t *Translator) translate(pc uint64, words []uint32, n int) *BasicBlock {
	bb := NewBasicBlock(pc)
	b := ir.NewBuilder(pc)
	v := translate.NewVisitor(b)

	for i, w := range words[:n] {
		at := pc + uint64(4*i)
		m, f, err := decoder.Decode(w)
		if err != nil {
			// extent already checked every word
			panic(err)
		}
		inst := Instruction{Word: w, Pc: at, Mnemonic: m.Mnemonic(w)}
		if !m.Handler(v, f) {
			inst.Err = v.Err
			bb.add(inst)
			b.ExceptionRaised(at, exceptionFor(v.Err))
			bb.Termination = EXCEPTION
			log.Debug(log.JITModule, "undefined instruction", "pc", fmt.Sprintf("%#x", at), "word", fmt.Sprintf("%08x", w), "err", v.Err)
			bb.IR = b.Block
			return bb
		}
		bb.add(inst)
	}
	if n < len(words) {
		bb.Termination = UNHANDLED
	}
	bb.IR = b.Block
	return bb
}

// lookup rebuilds a unit from a cached IR block. It returns nil on a miss.
func (t *Translator) lookup(pc uint64, words []uint32, n int) (*BasicBlock, error) {
	block, found, err := t.cache.Get(pc, words[:n])
	if err != nil || !found {
		return nil, err
	}

	bb := NewBasicBlock(pc)
	bb.IR = block
	bb.Cached = true
	if n < len(words) {
		bb.Termination = UNHANDLED
	}

	var excPC uint64
	var exc ir.Exception
	raised := false
	if last := len(block.Insts) - 1; last >= 0 && block.Insts[last].Op == ir.OpExceptionRaised {
		raised = true
		excPC = block.Insts[last].Args[0].Imm()
		exc = ir.Exception(block.Insts[last].Args[1].Imm())
	}
	for i, w := range words[:n] {
		at := pc + uint64(4*i)
		m, _ := decoder.Lookup(w)
		inst := Instruction{Word: w, Pc: at, Mnemonic: m.Mnemonic(w)}
		if raised && at == excPC {
			inst.Err = fmt.Errorf("%s: %w", m.Mnemonic(w), errorFor(exc))
			bb.add(inst)
			bb.Termination = EXCEPTION
			break
		}
		bb.add(inst)
	}
	log.Trace(log.JITModule, "cache hit", "pc", fmt.Sprintf("%#x", pc), "instructions", len(bb.Instructions))
	return bb, nil
}

// Run translates words at pc and executes the unit against s.
func (t *Translator) Run(ctx context.Context, pc uint64, words []uint32, s *interp.State) (*BasicBlock, error) {
	bb, err := t.TranslateBlock(ctx, pc, words)
	if err != nil {
		return nil, err
	}
	_, span := t.tracer.Start(ctx, "ExecuteBlock", trace.WithAttributes(attribute.String("pc", fmt.Sprintf("%#x", pc))))
	defer span.End()
	if err := interp.Run(bb.IR, s); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "execution failed")
		return bb, fmt.Errorf("jit: execute %#x: %w", pc, err)
	}
	if s.Raised {
		span.SetAttributes(attribute.String("exception", s.Exception.String()))
	}
	return bb, nil
}
