// Package pcfich implements the control-format indicator channel of
// spec.md §4.9: a 2-bit CFI is block-coded into 32 bits via a fixed table
// lookup, QPSK-modulated onto the channel's 4 dedicated REGs, and decoded
// by minimum Hamming distance.
package pcfich

import (
	"github.com/n5hk/ltephy/internal/errs"
	"github.com/n5hk/ltephy/internal/modem"
	"github.com/n5hk/ltephy/internal/scrambling"
)

// cfiCodewords is 36.212 Table 5.3.4-1: CFI values 1, 2, 3 map to fixed
// 32-bit codewords; CFI 4 is reserved.
var cfiCodewords = map[int][32]byte{
	1: {0, 0, 1, 1, 0, 1, 1, 0, 1, 0, 0, 0, 1, 1, 1, 1, 0, 0, 1, 1, 0, 1, 1, 0, 1, 0, 0, 0, 1, 1, 1, 1},
	2: {1, 0, 0, 1, 1, 0, 0, 1, 0, 1, 1, 0, 1, 0, 1, 1, 1, 0, 0, 1, 1, 0, 0, 1, 0, 1, 1, 0, 1, 0, 1, 1},
	3: {1, 1, 0, 0, 0, 0, 1, 1, 0, 0, 1, 1, 1, 1, 0, 0, 1, 1, 0, 0, 0, 0, 1, 1, 0, 0, 1, 1, 1, 1, 0, 0},
}

// acceptDistance is the Hamming-distance threshold below which a decode is
// accepted, per spec.md §4.9.
const acceptDistance = 5

// Encode produces the 16 QPSK symbols for CFI value cfi (1..3), scrambled
// per cell and subframe.
func Encode(cfi, cellID, subframe int) ([]complex128, error) {
	codeword, ok := cfiCodewords[cfi]
	if !ok {
		return nil, errs.InvalidInput
	}
	bitsOut := append([]byte{}, codeword[:]...)

	scr := scrambling.New(scrambling.Config{Channel: scrambling.PCFICH, CellID: cellID, Subframe: subframe})
	scr.XorBits(bitsOut)

	mapper, err := modem.New(modem.QPSK)
	if err != nil {
		return nil, err
	}
	return mapper.Modulate(bitsOut)
}

// Decode demaps syms (16 QPSK symbols) back to bits, descrambles, and
// returns the CFI whose table codeword has minimum Hamming distance.
func Decode(syms []complex128, cellID, subframe int) (int, error) {
	mapper, err := modem.New(modem.QPSK)
	if err != nil {
		return 0, err
	}
	hard := mapper.HardDemap(syms)

	scr := scrambling.New(scrambling.Config{Channel: scrambling.PCFICH, CellID: cellID, Subframe: subframe})
	llrs := make([]float64, len(hard))
	for i, b := range hard {
		if b == 1 {
			llrs[i] = -1
		} else {
			llrs[i] = 1
		}
	}
	scr.SignFlipFloats(llrs)
	descrambled := make([]byte, len(llrs))
	for i, v := range llrs {
		if v < 0 {
			descrambled[i] = 1
		}
	}

	best, bestDist := 0, 33
	for cfi, codeword := range cfiCodewords {
		d := hammingDistance(descrambled, codeword[:])
		if d < bestDist {
			best, bestDist = cfi, d
		}
	}
	if bestDist >= acceptDistance {
		return 0, errs.NotFound
	}
	return best, nil
}

func hammingDistance(a []byte, b []byte) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var d int
	for i := 0; i < n; i++ {
		d += int(a[i] ^ b[i])
	}
	return d
}
