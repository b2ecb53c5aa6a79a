package census

import "math/bits"

// Hamming returns the number of bit positions in which a and b differ.
func Hamming(a, b uint32) int {
	return bits.OnesCount32(a ^ b)
}

// MaxDistance is the largest Hamming distance between two codes of the given
// width.
func MaxDistance(codeBits int) int {
	return codeBits
}
