package main

import (
	"encoding/binary"
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"github.com/colorfulnotion/a64jit/a64/interp"
)

// parseWords accepts hexadecimal instruction words with or without 0x.
func parseWords(args []string) ([]uint32, error) {
	words := make([]uint32, 0, len(args))
	for _, a := range args {
		for _, field := range strings.FieldsFunc(a, func(r rune) bool { return r == ',' || r == ' ' }) {
			w, err := strconv.ParseUint(strings.TrimPrefix(strings.ToLower(field), "0x"), 16, 32)
			if err != nil {
				return nil, fmt.Errorf("bad instruction word %q: %w", field, err)
			}
			words = append(words, uint32(w))
		}
	}
	return words, nil
}

func wordsToCode(words []uint32) []byte {
	code := make([]byte, 4*len(words))
	for i, w := range words {
		binary.LittleEndian.PutUint32(code[4*i:], w)
	}
	return code
}

// setRegister applies an assignment of the form vN=<128-bit hex>.
func setRegister(s *interp.State, assign string) error {
	name, value, ok := strings.Cut(assign, "=")
	if !ok {
		return fmt.Errorf("bad register assignment %q", assign)
	}
	name = strings.ToLower(strings.TrimSpace(name))
	if !strings.HasPrefix(name, "v") && !strings.HasPrefix(name, "q") {
		return fmt.Errorf("bad register %q", name)
	}
	reg, err := strconv.Atoi(name[1:])
	if err != nil || reg < 0 || reg > 31 {
		return fmt.Errorf("bad register %q", name)
	}
	digits := strings.ReplaceAll(strings.TrimPrefix(strings.ToLower(strings.TrimSpace(value)), "0x"), "_", "")
	x, ok := new(big.Int).SetString(digits, 16)
	if !ok || x.BitLen() > 128 {
		return fmt.Errorf("bad 128-bit value %q", value)
	}
	lo := new(big.Int).And(x, new(big.Int).SetUint64(^uint64(0))).Uint64()
	hi := new(big.Int).Rsh(x, 64).Uint64()
	s.SetQ(reg, lo, hi)
	return nil
}
