// Package pdsch implements the shared-channel transport-block pipeline of
// spec.md §4.12: code-block segmentation with CRC-24A/24B, turbo coding,
// HARQ rate matching, scrambling, modulation, and RE mapping that skips
// CRS, PBCH, PSS/SSS and the control region.
package pdsch

import (
	"github.com/n5hk/ltephy/internal/errs"
	"github.com/n5hk/ltephy/internal/fec/turbo"
	"github.com/n5hk/ltephy/internal/harq"
	"github.com/n5hk/ltephy/internal/modem"
	"github.com/n5hk/ltephy/internal/numerics"
	"github.com/n5hk/ltephy/internal/refsignal"
	"github.com/n5hk/ltephy/internal/scrambling"
	"github.com/n5hk/ltephy/pkg/cell"
)

// maxCBSize is the turbo code's maximum code-block size Z, per 36.212
// Table 5.1.3-3 (6144 for the real standard); code blocks longer than this
// are segmented.
const maxCBSize = 6144

func crc24A() *numerics.CRC { return numerics.NewCRC(numerics.PolyCRC24A, 24) }
func crc24B() *numerics.CRC { return numerics.NewCRC(numerics.PolyCRC24B, 24) }

func crcBits(v uint32, width int) []byte {
	out := make([]byte, width)
	for i := 0; i < width; i++ {
		out[i] = byte((v >> uint(width-1-i)) & 1)
	}
	return out
}

// attachCRC appends the given CRC's remainder, as bits, to data.
func attachCRC(c *numerics.CRC, data []byte) []byte {
	bits := crcBits(c.Compute(data), c.Width())
	return append(append([]byte{}, data...), bits...)
}

// Segmentation holds the code blocks produced from one transport block, per
// spec.md §4.12 step 1-2: TB CRC-24A attached, then split into C code
// blocks of one equal size with filler bits F prepended to block 0 and,
// when C>1, a CRC-24B appended to each block. Block sizes are not taken
// from the K+/K- QPP size table.
type Segmentation struct {
	Blocks [][]byte // each block is payload+CRC bits, filler included
	Filler int
}

// Segment runs TB CRC attachment and code-block segmentation over a
// transport block's info bits.
func Segment(tb []byte) Segmentation {
	withTBCRC := attachCRC(crc24A(), tb)

	if len(withTBCRC) <= maxCBSize {
		return Segmentation{Blocks: [][]byte{withTBCRC}}
	}

	c := (len(withTBCRC) + maxCBSize - 24 - 1) / (maxCBSize - 24)
	perBlock := len(withTBCRC) / c
	if len(withTBCRC)%c != 0 {
		perBlock++
	}
	filler := perBlock*c - len(withTBCRC)

	padded := make([]byte, filler+len(withTBCRC))
	copy(padded[filler:], withTBCRC)

	blocks := make([][]byte, c)
	for i := 0; i < c; i++ {
		block := padded[i*perBlock : (i+1)*perBlock]
		blocks[i] = attachCRC(crc24B(), block)
	}
	return Segmentation{Blocks: blocks, Filler: filler}
}

// Desegment reverses Segment: strips each block's CRC-24B (if C>1), strips
// the leading filler bits from block 0, concatenates, and strips the TB's
// CRC-24A, returning the recovered transport block.
func Desegment(blocks [][]byte, filler int) ([]byte, error) {
	if len(blocks) == 0 {
		return nil, errs.InvalidInput
	}
	var concat []byte
	for i, b := range blocks {
		payload := b
		if len(blocks) > 1 {
			if len(b) < 24 {
				return nil, errs.InvalidInput
			}
			payload = b[:len(b)-24]
		}
		if i == 0 {
			if filler > len(payload) {
				return nil, errs.InvalidInput
			}
			payload = payload[filler:]
		}
		concat = append(concat, payload...)
	}
	if len(concat) < 24 {
		return nil, errs.InvalidInput
	}
	return concat[:len(concat)-24], nil
}

// EncodedBlock is one code block's rate-matched bit stream, ready for
// scrambling and modulation.
type EncodedBlock struct {
	Bits []byte
	Proc *harq.Process
}

// EncodeBlocks turbo-encodes each segmented code block and rate-matches it
// to e bits per block via a fresh HARQ process at rv_idx, per spec.md
// §4.12 step 3.
func EncodeBlocks(seg Segmentation, e []int, rvIdx int) ([]EncodedBlock, error) {
	if len(e) != len(seg.Blocks) {
		return nil, errs.InvalidInput
	}
	out := make([]EncodedBlock, len(seg.Blocks))
	for i, block := range seg.Blocks {
		proc := harq.NewProcess()
		proc.BeginTransmission(0, nil, rvIdx, 0)
		bits, err := proc.EncodeForTransmission(block, e[i])
		if err != nil {
			return nil, err
		}
		out[i] = EncodedBlock{Bits: bits, Proc: proc}
	}
	return out, nil
}

// Concatenate joins per-block rate-matched bit streams into the single
// G-bit codeword of spec.md §4.12 step 3.
func Concatenate(blocks []EncodedBlock) []byte {
	var out []byte
	for _, b := range blocks {
		out = append(out, b.Bits...)
	}
	return out
}

// ScrambleAndModulate applies the PDSCH scrambling sequence and maps the
// scrambled bits to the given constellation's symbols, per spec.md §4.12
// step 4-5.
func ScrambleAndModulate(bits []byte, c modem.Constellation, rnti uint32, q int, cellID, subframe int) ([]complex128, error) {
	scrambled := append([]byte{}, bits...)
	scr := scrambling.New(scrambling.Config{
		Channel:  scrambling.PDSCH,
		CellID:   cellID,
		Subframe: subframe,
		RNTI:     rnti,
		Q:        q,
	})
	scr.XorBits(scrambled)

	mapper, err := modem.New(c)
	if err != nil {
		return nil, err
	}
	return mapper.Modulate(scrambled)
}

// DemodulateAndDescramble reverses ScrambleAndModulate, returning per-bit
// LLRs (positive favors bit 1).
func DemodulateAndDescramble(syms []complex128, c modem.Constellation, rnti uint32, q int, cellID, subframe int, sigma2 float64) ([]float64, error) {
	mapper, err := modem.New(c)
	if err != nil {
		return nil, err
	}
	llrs := mapper.SoftDemap(syms, sigma2, false)

	scr := scrambling.New(scrambling.Config{
		Channel:  scrambling.PDSCH,
		CellID:   cellID,
		Subframe: subframe,
		RNTI:     rnti,
		Q:        q,
	})
	scr.SignFlipFloats(llrs)
	return llrs, nil
}

// AvailableREs enumerates the subframe's (row, col) PDSCH resource
// elements for a given cfi and cell, excluding CRS, the PBCH region (only
// in subframe 0), the PSS/SSS region (subframes 0 and 5), and the control
// region's first cfi symbols, per spec.md §4.12 step 5.
func AvailableREs(d cell.Descriptor, cfi, subframe, nofPorts int) []struct{ Row, Col int } {
	gen := refsignal.New(d)
	excluded := map[[2]int]bool{}
	for port := 0; port < nofPorts; port++ {
		for _, p := range gen.Pilots(port, 0) {
			excluded[[2]int{p.Symbol, p.Freq}] = true
		}
	}

	perSlot := d.NofSymbolsPerSlot()
	dc := d.DCIndex()

	if subframe == 0 {
		for sym := 0; sym < 4; sym++ {
			row := perSlot + sym
			for k := -36; k < 36; k++ {
				excluded[[2]int{row, dc + k}] = true
			}
		}
	}
	if subframe == 0 || subframe == 5 {
		for _, sym := range []int{perSlot - 2, perSlot - 1} {
			for k := -36; k < 36; k++ {
				excluded[[2]int{sym, dc + k}] = true
			}
		}
	}

	var out []struct{ Row, Col int }
	for row := 0; row < 2*perSlot; row++ {
		if row < cfi {
			continue
		}
		for col := 0; col < d.NofSubcarriers(); col++ {
			if excluded[[2]int{row, col}] {
				continue
			}
			out = append(out, struct{ Row, Col int }{row, col})
		}
	}
	return out
}

// MapToGrid writes syms into grid at the positions returned by
// AvailableREs, in order.
func MapToGrid(grid cell.Grid, syms []complex128, cfi, subframe, nofPorts int) error {
	positions := AvailableREs(grid.Cell, cfi, subframe, nofPorts)
	if len(positions) < len(syms) {
		return errs.ResourceExhausted
	}
	for i, s := range syms {
		grid.Set(positions[i].Row, positions[i].Col, s)
	}
	return nil
}

// ExtractFromGrid reads count received symbols back from grid's PDSCH REs.
func ExtractFromGrid(grid cell.Grid, count, cfi, subframe, nofPorts int) ([]complex128, error) {
	positions := AvailableREs(grid.Cell, cfi, subframe, nofPorts)
	if len(positions) < count {
		return nil, errs.ResourceExhausted
	}
	out := make([]complex128, count)
	for i := 0; i < count; i++ {
		out[i] = grid.At(positions[i].Row, positions[i].Col)
	}
	return out, nil
}

// DecodeBlocks deinterleaves the combined LLR stream back into per-block
// rate-matched LLRs, soft-combines them into each block's HARQ process,
// and turbo-decodes, per spec.md §4.12's decode direction.
func DecodeBlocks(procs []*harq.Process, llrs []float64, e []int, rvIdx int, blockKs []int) ([][]byte, []int, error) {
	if len(procs) != len(e) || len(e) != len(blockKs) {
		return nil, nil, errs.InvalidInput
	}
	decoded := make([][]byte, len(procs))
	iters := make([]int, len(procs))
	off := 0
	for i, proc := range procs {
		chunk := llrs[off : off+e[i]]
		off += e[i]

		c := crc24A()
		if len(blockKs) > 1 {
			c = crc24B()
		}
		proc.RVIdx = rvIdx
		out, it, err := proc.CombineAndDecode(chunk, turbo.CRCChecker(func(bits []byte) bool {
			return c.Check(bits)
		}), 8)
		if err != nil {
			return nil, nil, err
		}
		decoded[i] = out
		iters[i] = it
	}
	return decoded, iters, nil
}
