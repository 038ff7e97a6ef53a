package turbo

import "github.com/n5hk/ltephy/internal/errs"

// subblockCols is the fixed 32-column width of the 36.212 §5.1.4.1
// sub-block interleaver.
const subblockCols = 32

// subblockPerm is 36.212 Table 5.1.4-1's inter-column permutation, reused
// (per spec.md §4.8) for rate matching; the PDCCH REG interleaver in
// internal/regmap draws on the companion Table 5.1.4-2, a different but
// structurally equivalent column permutation from the same standard clause.
var subblockPerm = [subblockCols]int{
	0, 16, 8, 24, 4, 20, 12, 28,
	2, 18, 10, 26, 6, 22, 14, 30,
	1, 17, 9, 25, 5, 21, 13, 29,
	3, 19, 11, 27, 7, 23, 15, 31,
}

// bit is a rate-matching stream element: a payload bit plus a null flag
// for the sub-block interleaver's front-padding, per spec.md §4.8.
type bit struct {
	v    byte
	null bool
}

// subblockInterleave pads stream to a multiple of subblockCols with null
// markers at the front, writes it row-major into the column grid, then
// reads out column-major following subblockPerm.
func subblockInterleave(stream []byte) []bit {
	n := len(stream)
	rows := (n + subblockCols - 1) / subblockCols
	pad := rows*subblockCols - n

	padded := make([]bit, rows*subblockCols)
	for i := 0; i < pad; i++ {
		padded[i] = bit{null: true}
	}
	for i, v := range stream {
		padded[pad+i] = bit{v: v}
	}

	out := make([]bit, 0, len(padded))
	for _, col := range subblockPerm {
		for row := 0; row < rows; row++ {
			out = append(out, padded[row*subblockCols+col])
		}
	}
	return out
}

// CircularBuffer is the per-code-block HARQ soft-combining buffer of
// spec.md §3: w_size >= 3*K_max, built once per rv_idx=0 transmission and
// reused (read at different offsets, combined) across retransmissions.
type CircularBuffer struct {
	w         []bit // 3*R*32 entries: the 3K+12 coded bits plus null padding (interleaved d0, then bit-interleaved d1/d2)
	streamLen int    // len(enc.D0) == K+4, the tail-inclusive stream length
}

// BuildCircularBuffer runs the sub-block interleaver over enc's three
// streams and concatenates them into the circular buffer (3K+12 coded bits
// plus the interleavers' null padding).
func BuildCircularBuffer(enc Encoded) *CircularBuffer {
	streamLen := len(enc.D0)
	v0 := subblockInterleave(enc.D0)
	v1 := subblockInterleave(enc.D1)
	v2 := subblockInterleave(enc.D2)

	w := make([]bit, 0, len(v0)+len(v1)+len(v2))
	w = append(w, v0...)
	// d1/d2 are bit-interleaved: alternate parity-1, parity-2 per column.
	for i := range v1 {
		w = append(w, v1[i], v2[i])
	}
	return &CircularBuffer{w: w, streamLen: streamLen}
}

// NcbOffset returns the circular-buffer read start k0 for a redundancy
// version, per spec.md §4.8: k0 = R*(2*ceil(Ncb/(8R))*rv_idx + 2), where R
// is the sub-block interleaver's row count (Ncb spans 3 streams of R rows
// by subblockCols columns each, so R = Ncb/(3*subblockCols)).
func (c *CircularBuffer) NcbOffset(rvIdx int) int {
	ncb := len(c.w)
	r := ncb / (3 * subblockCols)
	if r == 0 {
		r = 1
	}
	ceilTerm := (ncb + 8*r - 1) / (8 * r)
	k0 := r * (2*ceilTerm*rvIdx + 2)
	return k0 % ncb
}

// ReadE reads E soft bits starting at the redundancy version's offset,
// wrapping circularly and skipping null markers, per spec.md §4.8.
func (c *CircularBuffer) ReadE(rvIdx, e int) ([]byte, error) {
	if len(c.w) == 0 {
		return nil, errs.InvalidInput
	}
	out := make([]byte, 0, e)
	pos := c.NcbOffset(rvIdx)
	guard := 0
	for len(out) < e {
		if guard > 4*len(c.w)+e {
			return nil, errs.ResourceExhausted
		}
		guard++
		b := c.w[pos]
		if !b.null {
			out = append(out, b.v)
		}
		pos = (pos + 1) % len(c.w)
	}
	return out, nil
}

// CombineLLR soft-combines newLLRs (read at rvIdx's circular positions)
// into an accumulator the same length as the circular buffer, by adding at
// matching positions (spec.md §4.8's HARQ soft combining). acc must be
// pre-sized to len(c.w) by the caller (typically via NewAccumulator).
func (c *CircularBuffer) CombineLLR(acc []float64, rvIdx int, newLLRs []float64) {
	pos := c.NcbOffset(rvIdx)
	i := 0
	guard := 0
	for i < len(newLLRs) {
		if guard > 4*len(c.w)+len(newLLRs) {
			return
		}
		guard++
		if !c.w[pos].null {
			acc[pos] += newLLRs[i]
			i++
		}
		pos = (pos + 1) % len(c.w)
	}
}

// NewAccumulator returns a zeroed LLR accumulator sized to this buffer.
func (c *CircularBuffer) NewAccumulator() []float64 {
	return make([]float64, len(c.w))
}

// ExtractStreamLLRs reads the three constituent-stream LLRs (sys, par1,
// par2, each length K+4, tail included) back out of a combined circular-buffer accumulator,
// inverting BuildCircularBuffer's layout and the sub-block interleaver.
func (c *CircularBuffer) ExtractStreamLLRs(acc []float64) (sys, par1, par2 []float64) {
	k := c.streamLen
	rows := (k + subblockCols - 1) / subblockCols
	v0len := rows * subblockCols
	v0 := acc[:v0len]
	rest := acc[v0len:]

	v1 := make([]float64, v0len)
	v2 := make([]float64, v0len)
	for i := 0; i < v0len; i++ {
		v1[i] = rest[2*i]
		v2[i] = rest[2*i+1]
	}

	sys = subblockDeinterleave(v0, k, v0len-k)
	par1 = subblockDeinterleave(v1, k, v0len-k)
	par2 = subblockDeinterleave(v2, k, v0len-k)
	return
}

// subblockDeinterleave inverts subblockInterleave's column read/row write
// for a float64 LLR buffer, dropping the pad nulls at the front.
func subblockDeinterleave(interleaved []float64, k, pad int) []float64 {
	rows := (k + pad) / subblockCols
	padded := make([]float64, rows*subblockCols)

	// Rebuild the write order: out[col-major position] -> padded[row*cols+col]
	idx := 0
	for _, col := range subblockPerm {
		for row := 0; row < rows; row++ {
			padded[row*subblockCols+col] = interleaved[idx]
			idx++
		}
	}
	return padded[pad:]
}
