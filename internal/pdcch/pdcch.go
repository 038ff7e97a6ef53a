// Package pdcch implements the downlink control channel of spec.md §4.6:
// DCI format sizing (grounded on the original source's dci.h table),
// UE-specific/common search space candidate generation, per-candidate
// tail-biting convolutional decode, RNTI-masked CRC check.
package pdcch

import (
	"github.com/n5hk/ltephy/internal/errs"
	"github.com/n5hk/ltephy/internal/fec/conv"
	"github.com/n5hk/ltephy/internal/modem"
	"github.com/n5hk/ltephy/internal/numerics"
	"github.com/n5hk/ltephy/internal/regmap"
	"github.com/n5hk/ltephy/internal/scrambling"
)

// NumCCEs returns the control region's actual CCE count for a cell
// configuration, derived from the real REG/CCE layout (PCFICH and PHICH
// REGs excluded) rather than an assumed constant, so SearchSpace's nCCE
// argument reflects the cell's true control-region capacity.
func NumCCEs(m *regmap.Map) int {
	return len(m.CCEs())
}

// Format identifies a DCI format.
type Format int

const (
	Format0 Format = iota
	Format1
	Format1A
	Format1C
)

// dciSizeBits returns the payload size (before CRC) for a format at a given
// nof_prb, per spec.md §6's "size is a function of nof_prb", grounded on
// original_source/'s dci.h format-size table.
func dciSizeBits(f Format, nofPRB int) (int, error) {
	prbBits := 0
	for (1 << prbBits) < nofPRB {
		prbBits++
	}
	switch f {
	case Format1C:
		return 1 + prbBits + 5, nil // type-2 allocation + TBS index, compacted
	case Format1A:
		return 1 + 10 + 5 + 3 + 1, nil // hopping flag + RIV-ish alloc + mcs + harq + ndi (approx)
	case Format1:
		riv := nofPRB * (nofPRB + 1) / 2
		rivBits := 0
		for (1 << rivBits) < riv {
			rivBits++
		}
		return rivBits + 5 + 3 + 1 + 1, nil // alloc + mcs + harq + ndi + rv
	case Format0:
		riv := nofPRB * (nofPRB + 1) / 2
		rivBits := 0
		for (1 << rivBits) < riv {
			rivBits++
		}
		return 1 + rivBits + 5 + 1 + 2, nil // hopping + alloc + mcs + ndi + tpc
	default:
		return 0, errs.InvalidInput
	}
}

// DCI is a decoded/encoded downlink control information payload.
type DCI struct {
	Format Format
	Bits   []byte // payload bits, length dciSizeBits(Format, nofPRB)
	RNTI   uint32
}

func crc16() *numerics.CRC { return numerics.NewCRC(numerics.PolyCRC16, 16) }

func rntiMask(rnti uint32) []byte {
	out := make([]byte, 16)
	for i := 0; i < 16; i++ {
		out[i] = byte((rnti >> uint(15-i)) & 1)
	}
	return out
}

// Encode packs a DCI, attaches an RNTI-masked CRC-16, and tail-biting
// convolutional-encodes it to 3*(size+16) bits.
func Encode(d DCI, nofPRB int) ([]byte, error) {
	size, err := dciSizeBits(d.Format, nofPRB)
	if err != nil {
		return nil, err
	}
	if len(d.Bits) != size {
		return nil, errs.InvalidInput
	}
	c := crc16()
	parity := c.Compute(d.Bits)
	mask := rntiMask(d.RNTI)
	withCRC := append([]byte{}, d.Bits...)
	for i := 0; i < 16; i++ {
		bit := byte((parity >> uint(15-i)) & 1)
		withCRC = append(withCRC, bit^mask[i])
	}
	return conv.Encode(withCRC, true), nil
}

// checkRNTICRC verifies payloadPlusCRC's CRC against rnti's mask without
// mutating the input.
func checkRNTICRC(payloadPlusCRC []byte, rnti uint32) bool {
	if len(payloadPlusCRC) < 16 {
		return false
	}
	n := len(payloadPlusCRC)
	payload := payloadPlusCRC[:n-16]
	got := payloadPlusCRC[n-16:]
	c := crc16()
	expect := c.Compute(payload)
	mask := rntiMask(rnti)
	for i := 0; i < 16; i++ {
		bit := byte((expect >> uint(15-i)) & 1)
		if bit^mask[i] != got[i] {
			return false
		}
	}
	return true
}

// candidateYk runs the UE-specific search-space hashing recursion of
// spec.md §4.6: Y_k = (A*Y_{k-1}) mod D, seeded by the RNTI.
func candidateYk(rnti uint32, subframe int) uint32 {
	const a, d = 39827, 65537
	y := uint64(rnti)
	for k := 0; k <= subframe; k++ {
		y = (a * y) % d
	}
	return uint32(y)
}

// aggregationLevels and their per-level candidate counts M^L, per
// 36.213 Table 9.1.1-1 (UE-specific space).
var aggregationLevels = []int{1, 2, 4, 8}
var candidateCounts = map[int]int{1: 6, 2: 6, 4: 2, 8: 2}

// Candidate is one search-space hypothesis: an aggregation level and
// starting CCE index.
type Candidate struct {
	L        int
	StartCCE int
}

// SearchSpace enumerates the UE-specific candidates for rnti in nCCE total
// CCEs, per spec.md §4.6. commonSpace uses Y_k=0 for every subframe.
func SearchSpace(rnti uint32, subframe, nCCE int, commonSpace bool) []Candidate {
	var yk uint32
	if !commonSpace {
		yk = candidateYk(rnti, subframe)
	}
	var out []Candidate
	for _, l := range aggregationLevels {
		nl := nCCE / l
		if nl == 0 {
			continue
		}
		m := candidateCounts[l]
		for i := 0; i < m; i++ {
			start := l * int((uint64(yk)+uint64(i))%uint64(nl))
			out = append(out, Candidate{L: l, StartCCE: start})
		}
	}
	return out
}

const (
	qpskSymbolsPerREG = 4
	resPerREG         = 4
)

// reBitsPerCCE is 72 soft bits per CCE (8 QPSK symbols x 9 REs), per
// spec.md §4.6.
const reBitsPerCCE = 72

// TryDecode extracts L CCEs' worth of soft bits starting at cand.StartCCE
// from the per-CCE symbol source, descrambles, Viterbi-decodes as a
// tail-biting rate-1/3 code, and checks the RNTI CRC for each candidate
// format, returning the first DCI whose CRC passes.
func TryDecode(cceSymbols [][]complex128, cand Candidate, rnti uint32, nofPRB int, cellID, subframe int) (DCI, error) {
	var syms []complex128
	for i := 0; i < cand.L; i++ {
		idx := cand.StartCCE + i
		if idx < 0 || idx >= len(cceSymbols) {
			return DCI{}, errs.InvalidInput
		}
		syms = append(syms, cceSymbols[idx]...)
	}

	mapper, err := modem.New(modem.QPSK)
	if err != nil {
		return DCI{}, err
	}
	llrs := mapper.SoftDemap(syms, 1.0, false)

	scr := scrambling.New(scrambling.Config{Channel: scrambling.PDCCH, CellID: cellID, Subframe: subframe})
	scr.SignFlipFloats(llrs)

	soft := make([]byte, len(llrs))
	for i, v := range llrs {
		if v > 0 {
			soft[i] = 255
		} else {
			soft[i] = 0
		}
	}

	for _, format := range []Format{Format0, Format1, Format1A, Format1C} {
		size, err := dciSizeBits(format, nofPRB)
		if err != nil {
			continue
		}
		codedLen := size + 16
		if len(soft) < 3*codedLen {
			continue
		}
		payload, err := conv.Decode(soft[:3*codedLen], codedLen, true)
		if err != nil {
			continue
		}
		if !checkRNTICRC(payload, rnti) {
			continue
		}
		return DCI{Format: format, Bits: payload[:size], RNTI: rnti}, nil
	}
	return DCI{}, errs.NotFound
}
