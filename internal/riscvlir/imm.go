package riscvlir

// Imm12Min/Imm12Max bound the signed 12-bit immediate range RV64's I-type
// and S-type/B-type encodings carry directly (spec §3's Immediate).
const (
	Imm12Min = -(1 << 11)
	Imm12Max = (1 << 11) - 1
)

// FitsSigned12 reports whether v fits a 12-bit signed immediate without
// splitting into a lui/addi pair.
func FitsSigned12(v int64) bool { return v >= Imm12Min && v <= Imm12Max }

// HiLo splits a 32-bit-range constant into the lui high-20 part and the
// addi low-12 part, accounting for the sign-extension of the low part
// (the low 12 bits are added as a signed value, so the high part must be
// biased by 1 when bit 11 of the low part is set).
func HiLo(v int64) (hi int64, lo int64) {
	lo = v & 0xFFF

	if lo >= 1<<11 {
		lo -= 1 << 12
	}

	hi = (v - lo) >> 12

	return hi, lo
}

// BranchDisplacementFits reports whether a B-type displacement (byte
// offset, must be even) stays within RISC-V's +-4 KiB window (spec §4.10).
func BranchDisplacementFits(byteOffset int64) bool {
	const window = 1 << 12 // +-4KiB, conservative (actual encoding is +-4095..4096)

	return byteOffset >= -window && byteOffset < window
}
