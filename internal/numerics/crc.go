package numerics

// LTE CRC generator polynomials (36.212 §5.1.1), with the implicit leading
// 1 bit at the generator's own degree dropped, matching the constants
// carried in the original source's crc.h (LTE_CRC24A/B/16/8).
const (
	PolyCRC24A uint32 = 0x864CFB
	PolyCRC24B uint32 = 0x800063
	PolyCRC16  uint32 = 0x1021
	PolyCRC8   uint32 = 0x9B
)

// CRC is a configurable bit-serial cyclic redundancy generator/checker, the
// Go realization of the C library's single `crc(...)` entry point with a
// selectable polynomial and output width.
type CRC struct {
	poly  uint32
	width int
	mask  uint32
}

// NewCRC builds a CRC generator for the given polynomial (leading-1 bit
// dropped) and output width in bits (8, 16, or 24).
func NewCRC(poly uint32, width int) *CRC {
	return &CRC{poly: poly, width: width, mask: (uint32(1) << uint(width)) - 1}
}

// Compute runs the bit-serial LFSR division over a big-endian bit buffer
// (one byte per bit, 0 or 1) and returns the width-bit remainder.
func (c *CRC) Compute(bits []byte) uint32 {
	var reg uint32
	for _, b := range bits {
		msb := (reg >> uint(c.width-1)) & 1
		reg = (reg << 1) & c.mask
		var d uint32
		if b != 0 {
			d = 1
		}
		if msb^d != 0 {
			reg ^= c.poly
		}
	}
	return reg & c.mask
}

// Attach appends the CRC of data (as individual 0/1 bytes) to the end of
// data, returning a new slice of length len(data)+width.
func (c *CRC) Attach(data []byte) []byte {
	crc := c.Compute(data)
	out := make([]byte, len(data)+c.width)
	copy(out, data)
	for i := 0; i < c.width; i++ {
		if crc&(1<<uint(c.width-1-i)) != 0 {
			out[len(data)+i] = 1
		}
	}
	return out
}

// Check verifies that the last width bits of data equal the CRC of the
// bits preceding them. It never mutates data (the "non-destructive" variant
// called for in SPEC_FULL.md's Open Question resolutions): it reads a
// fresh copy of the payload instead of flipping bits in place.
func (c *CRC) Check(data []byte) bool {
	if len(data) < c.width {
		return false
	}
	payload := make([]byte, len(data)-c.width)
	copy(payload, data[:len(data)-c.width])
	want := c.Compute(payload)

	var got uint32
	for i := 0; i < c.width; i++ {
		got <<= 1
		if data[len(data)-c.width+i] != 0 {
			got |= 1
		}
	}
	return got == want
}

// Width reports the CRC's output width in bits.
func (c *CRC) Width() int { return c.width }
