package translate

import "github.com/colorfulnotion/a64jit/xlaterrors"

// validateIntegerSize accepts the halfword and word lane sizes used by the
// integer, widening and saturating by-element forms.
func validateIntegerSize(size Imm) error {
	if !size.Is(sizeHalfword) && !size.Is(sizeWord) {
		return xlaterrors.ErrUnallocatedEncoding
	}
	return nil
}

// validateDotProductSize accepts only the word size; every other size is
// reserved for future dot product forms.
func validateDotProductSize(size Imm) error {
	if !size.Is(sizeWord) {
		return xlaterrors.ErrReservedValue
	}
	return nil
}

// validateFP rejects a double-precision index that uses L, and 64-bit wide
// double-precision operations.
func validateFP(q, sz bool, L Imm) error {
	if sz && L.Bit() {
		return xlaterrors.ErrUnallocatedEncoding
	}
	if sz && !q {
		return xlaterrors.ErrReservedValue
	}
	return nil
}
