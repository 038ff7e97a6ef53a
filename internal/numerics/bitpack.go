package numerics

import "github.com/n5hk/ltephy/internal/errs"

// PackBits packs a big-endian bit buffer (one byte per bit, 0 or 1) into a
// byte slice, most-significant bit first within each byte. Short final
// bytes are zero-padded in the low bits.
func PackBits(bits []byte) []byte {
	out := make([]byte, (len(bits)+7)/8)
	for i, b := range bits {
		if b != 0 {
			out[i/8] |= 0x80 >> uint(i%8)
		}
	}
	return out
}

// UnpackBits unpacks nbits big-endian bits (MSB first) out of packed,
// writing one byte (0 or 1) per bit into bits. bits must have length nbits.
func UnpackBits(packed []byte, nbits int, bits []byte) error {
	if len(bits) < nbits || (nbits+7)/8 > len(packed) {
		return errs.InvalidInput
	}
	for i := 0; i < nbits; i++ {
		if packed[i/8]&(0x80>>uint(i%8)) != 0 {
			bits[i] = 1
		} else {
			bits[i] = 0
		}
	}
	return nil
}
