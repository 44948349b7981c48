package translate

// combine assembles the lane index and Vm for the integer by-element forms.
// Halfword lanes take three index bits and restrict Vm to v0-v15.
func combine(size, H, L, M, Vmlo Imm) (int, Vec) {
	if size.Is(sizeHalfword) {
		return int(Concatenate(H, L, M).ZeroExtend()), VecOf(Vmlo)
	}
	return int(Concatenate(H, L).ZeroExtend()), VecOf(Concatenate(M, Vmlo))
}

// combineFP assembles the lane index and Vm for the floating-point forms.
func combineFP(sz bool, H, L, M, Vmlo Imm) (int, Vec) {
	vm := VecOf(Concatenate(M, Vmlo))
	if sz {
		return int(H.ZeroExtend()), vm
	}
	return int(Concatenate(H, L).ZeroExtend()), vm
}

// combineLong returns the lane index and the high bit of Vm for the widening
// and saturating forms. The high bit is forced to zero for halfword lanes.
func combineLong(size, H, L, M Imm) (int, Imm) {
	if size.Is(sizeHalfword) {
		return int(Concatenate(H, L, M).ZeroExtend()), Imm1(0)
	}
	return int(Concatenate(H, L).ZeroExtend()), M
}

// indexDataSize is the width of the Vm view the lane index addresses.
func indexDataSize(H Imm) int {
	if H.Bit() {
		return 128
	}
	return 64
}

// SplitIndex inverts combine for size halfword or word. ok is false when the
// pair is not encodable at that size.
func SplitIndex(size Imm, index int, vm Vec) (H, L, M, Vmlo Imm, ok bool) {
	switch size.ZeroExtend() {
	case sizeHalfword:
		if index < 0 || index > 7 || vm > 15 {
			return
		}
		return Imm1(uint32(index >> 2)), Imm1(uint32(index>>1) & 1), Imm1(uint32(index) & 1), Imm4(uint32(vm)), true
	case sizeWord:
		if index < 0 || index > 3 || vm > 31 {
			return
		}
		return Imm1(uint32(index >> 1)), Imm1(uint32(index) & 1), Imm1(uint32(vm >> 4)), Imm4(uint32(vm) & 0xf), true
	}
	return
}

// SplitIndexFP inverts combineFP. L is zero for double precision.
func SplitIndexFP(sz bool, index int, vm Vec) (H, L, M, Vmlo Imm, ok bool) {
	if vm > 31 || index < 0 {
		return
	}
	M, Vmlo = Imm1(uint32(vm>>4)), Imm4(uint32(vm)&0xf)
	if sz {
		if index > 1 {
			return
		}
		return Imm1(uint32(index)), Imm1(0), M, Vmlo, true
	}
	if index > 3 {
		return
	}
	return Imm1(uint32(index >> 1)), Imm1(uint32(index) & 1), M, Vmlo, true
}
