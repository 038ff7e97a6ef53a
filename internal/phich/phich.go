// Package phich implements the HARQ indicator channel of spec.md §4.9: a
// 1-bit ACK/NACK repeated 3 times, BPSK-mapped, spread by an orthogonal
// sequence, scrambled, and code-division-multiplexed by addition onto a
// shared PHICH group.
package phich

import (
	"github.com/n5hk/ltephy/internal/errs"
	"github.com/n5hk/ltephy/internal/scrambling"
	"github.com/n5hk/ltephy/pkg/cell"
)

// orthoSeqNormal is 36.211 Table 6.9.1-2's length-4 orthogonal sequences
// indexed by nseq (0..7 under normal CP, only 0..3 meaningful without a
// second antenna port).
var orthoSeqNormal = [4][4]complex128{
	{1, 1, 1, 1},
	{1, -1, 1, -1},
	{1, 1, -1, -1},
	{1, -1, -1, 1},
}

// orthoSeqExtended is the length-2 table for Extended CP.
var orthoSeqExtended = [2][2]complex128{
	{1, 1},
	{1, -1},
}

// Encode produces the 3 x spreading-factor complex symbols (12 under Normal
// CP, 6 under Extended) of
// one PHICH transmission within a group, per spec.md §4.9.
func Encode(ack bool, nseq int, cp cell.CPType, cellID, subframe int) ([]complex128, error) {
	var bit float64 = -1
	if ack {
		bit = 1
	}

	var spread []complex128
	switch cp {
	case cell.Extended:
		if nseq < 0 || nseq >= len(orthoSeqExtended) {
			return nil, errs.InvalidInput
		}
		spread = orthoSeqExtended[nseq][:]
	default:
		if nseq < 0 || nseq >= len(orthoSeqNormal) {
			return nil, errs.InvalidInput
		}
		spread = orthoSeqNormal[nseq][:]
	}

	out := make([]complex128, 0, 3*len(spread))
	for rep := 0; rep < 3; rep++ {
		for _, w := range spread {
			out = append(out, complex(bit, 0)*w)
		}
	}

	scr := scrambling.New(scrambling.Config{Channel: scrambling.PHICH, CellID: cellID, Subframe: subframe})
	llrs := make([]float64, len(out))
	for i, s := range out {
		llrs[i] = real(s)
	}
	scr.SignFlipFloats(llrs)
	for i := range out {
		out[i] = complex(llrs[i], 0)
	}
	return out, nil
}

// AddToGroup code-division-multiplexes syms onto the shared group buffer
// group by addition, per spec.md §4.9's "added, not overwritten" rule.
func AddToGroup(group []complex128, syms []complex128) error {
	if len(group) != len(syms) {
		return errs.InvalidInput
	}
	for i := range group {
		group[i] += syms[i]
	}
	return nil
}

// Decode de-spreads a group's received symbols against nseq's orthogonal
// sequence, descrambles, hard-slices each of the 3 replicas, and majority
// votes, per spec.md §4.9.
func Decode(group []complex128, nseq int, cp cell.CPType, cellID, subframe int) (bool, error) {
	var spread []complex128
	switch cp {
	case cell.Extended:
		if nseq < 0 || nseq >= len(orthoSeqExtended) {
			return false, errs.InvalidInput
		}
		spread = orthoSeqExtended[nseq][:]
	default:
		if nseq < 0 || nseq >= len(orthoSeqNormal) {
			return false, errs.InvalidInput
		}
		spread = orthoSeqNormal[nseq][:]
	}
	sf := len(spread)
	if len(group) != 3*sf {
		return false, errs.InvalidInput
	}

	scr := scrambling.New(scrambling.Config{Channel: scrambling.PHICH, CellID: cellID, Subframe: subframe})
	llrs := make([]float64, len(group))
	for i, s := range group {
		llrs[i] = real(s)
	}
	scr.SignFlipFloats(llrs)

	var votes int
	for rep := 0; rep < 3; rep++ {
		var corr float64
		for i := 0; i < sf; i++ {
			corr += llrs[rep*sf+i] * real(spread[i])
		}
		if corr > 0 {
			votes++
		} else {
			votes--
		}
	}
	return votes > 0, nil
}

// NumGroups returns the count of PHICH groups, ⌈Ng*nof_prb/8⌉, per
// spec.md §4.9/REDESIGN FLAGS' canonical convention.
func NumGroups(ng float64, nofPRB int) int {
	v := ng * float64(nofPRB) / 8
	n := int(v)
	if float64(n) < v {
		n++
	}
	if n < 1 {
		n = 1
	}
	return n
}
