//go:build unicorn
// +build unicorn

package jit

import (
	"context"
	"encoding/binary"
	"math"
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	uc "github.com/unicorn-engine/unicorn/bindings/go/unicorn"

	"github.com/colorfulnotion/a64jit/a64/decoder"
	"github.com/colorfulnotion/a64jit/a64/interp"
)

const (
	codeBase = 0x10000
	dataBase = 0x20000
)

// Q registers are wider than RegWrite supports, so the harness moves them
// through memory with LDR/STR (SIMD&FP, unsigned offset) around the word.
func ldrQ(rt, rn, imm12 uint32) uint32 { return 0x3dc00000 | imm12<<10 | rn<<5 | rt }
func strQ(rt, rn, imm12 uint32) uint32 { return 0x3d800000 | imm12<<10 | rn<<5 | rt }

func runOnUnicorn(t *testing.T, word uint32, s *interp.State) {
	t.Helper()
	mu, err := uc.NewUnicorn(uc.ARCH_ARM64, uc.MODE_ARM)
	require.NoError(t, err)
	defer mu.Close()

	require.NoError(t, mu.MemMap(codeBase, 0x1000))
	require.NoError(t, mu.MemMap(dataBase, 0x1000))

	var prog []uint32
	for i := uint32(0); i < 32; i++ {
		prog = append(prog, ldrQ(i, 0, i))
	}
	prog = append(prog, word)
	for i := uint32(0); i < 32; i++ {
		prog = append(prog, strQ(i, 0, i))
	}
	code := make([]byte, 4*len(prog))
	for i, w := range prog {
		binary.LittleEndian.PutUint32(code[4*i:], w)
	}
	require.NoError(t, mu.MemWrite(codeBase, code))

	data := make([]byte, 32*16)
	for i := 0; i < 32; i++ {
		lo, hi := s.Q(i)
		binary.LittleEndian.PutUint64(data[16*i:], lo)
		binary.LittleEndian.PutUint64(data[16*i+8:], hi)
	}
	require.NoError(t, mu.MemWrite(dataBase, data))
	require.NoError(t, mu.RegWrite(uc.ARM64_REG_X0, dataBase))
	require.NoError(t, mu.RegWrite(uc.ARM64_REG_CPACR_EL1, 3<<20))

	require.NoError(t, mu.Start(codeBase, codeBase+uint64(len(code))))

	out, err := mu.MemRead(dataBase, uint64(len(data)))
	require.NoError(t, err)
	for i := 0; i < 32; i++ {
		s.SetQ(i, binary.LittleEndian.Uint64(out[16*i:]), binary.LittleEndian.Uint64(out[16*i+8:]))
	}
}

func randomState(r *rand.Rand, fp bool) *interp.State {
	var s interp.State
	for i := 0; i < 32; i++ {
		if !fp {
			s.SetQ(i, r.Uint64(), r.Uint64())
			continue
		}
		var lanes [4]uint64
		for j := range lanes {
			lanes[j] = uint64(math.Float32bits(float32(r.Intn(2001)-1000) / 64))
		}
		s.SetLanes(i, 32, lanes[:]...)
	}
	return &s
}

func TestDifferentialUnicorn(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	tr, _ := newTranslator(t)

	for _, m := range decoder.Table() {
		// The default CPU model has no dot product extension.
		if m.Name == "SDOT" || m.Name == "UDOT" {
			continue
		}
		fp := strings.HasPrefix(m.Name, "F")
		for iter := 0; iter < 64; iter++ {
			f := uint32(r.Int63())
			w := uint32(0)
			for i, c := range m.Pattern {
				if c == '1' {
					w |= 1 << (31 - i)
				}
			}
			// Randomise every field, then force an allocated size.
			w |= f & 0x40ff0bff
			size := uint32(1 + r.Intn(2))
			if fp {
				size = 0b10
			}
			w = w&^(3<<22) | size<<22

			want := randomState(r, fp)
			got := *want
			bb, err := tr.Run(context.Background(), 0, []uint32{w}, want)
			require.NoError(t, err)
			require.Equal(t, FALLTHROUGH, bb.Termination, "%s %08x", m.Name, w)

			runOnUnicorn(t, w, &got)
			for i := 0; i < 32; i++ {
				wlo, whi := want.Q(i)
				glo, ghi := got.Q(i)
				require.Equal(t, [2]uint64{wlo, whi}, [2]uint64{glo, ghi}, "%s %08x v%d", m.Name, w, i)
			}
		}
	}
}
