package crack

import (
	"gocrack/domain/series"
)

// Mask is the working guess of the keystream, one word per column
type Mask = series.Keystream

// ApplyMask decrypts ciphertext with a candidate mask. It always builds a
// fresh matrix; calling it twice with the same inputs yields identical output.
func ApplyMask(ct *series.Matrix, mask Mask) (*series.Matrix, error) {
	return mask.Apply(ct)
}

// Toggle returns the bit group flipped by a proposal on bit. The top bit
// index maxBit flips every bit at or above it; any other index flips only
// that bit.
func Toggle(bit, maxBit int) uint32 {
	if bit == maxBit {
		return ^uint32(0) << uint(bit)
	}
	return 1 << uint(bit)
}

func decryptColumn(dst []int32, ct *series.Matrix, c int, key uint32) {
	for r := range dst {
		dst[r] = series.XorSample(ct.At(r, c), key)
	}
}
