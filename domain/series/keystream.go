package series

import (
	"gocrack/domain/core"
)

// Keystream holds one 32-bit key per column. The same key is XORed into every
// row of that column.
type Keystream []uint32

// Clone returns an independent copy
func (k Keystream) Clone() Keystream {
	return append(Keystream(nil), k...)
}

// Xor returns k ^ o element-wise. Both keystreams must have the same length.
func (k Keystream) Xor(o Keystream) (Keystream, error) {
	if len(k) != len(o) {
		return nil, core.NewDimensionError("keystream", len(o), len(k))
	}
	out := make(Keystream, len(k))
	for i := range k {
		out[i] = k[i] ^ o[i]
	}
	return out, nil
}

// Apply XORs every row of m with the keystream and returns a new matrix.
// Encryption and decryption are the same operation.
func (k Keystream) Apply(m *Matrix) (*Matrix, error) {
	out, err := NewMatrix(m.days, m.measures)
	if err != nil {
		return nil, err
	}
	if err := k.ApplyInto(out, m); err != nil {
		return nil, err
	}
	return out, nil
}

// ApplyInto writes src XOR k into dst without allocating
func (k Keystream) ApplyInto(dst, src *Matrix) error {
	if len(k) != src.measures {
		return core.NewDimensionError("keystream", len(k), src.measures)
	}
	if !dst.SameShape(src) {
		return core.NewDimensionError("destination rows", dst.days, src.days)
	}
	for r := 0; r < src.days; r++ {
		in := src.Row(r)
		out := dst.Row(r)
		for c, v := range in {
			out[c] = XorSample(v, k[c])
		}
	}
	return nil
}

// XorSample applies a single key word to a sample, keeping the signed 32-bit
// interpretation of the result.
func XorSample(v int32, key uint32) int32 {
	return int32(uint32(v) ^ key)
}

// Encrypt produces ciphertext from plaintext under keystream k
func Encrypt(plain *Matrix, k Keystream) (*Matrix, error) {
	return k.Apply(plain)
}
