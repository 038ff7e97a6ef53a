// Package ofdm implements the OFDM modem of SPEC_FULL.md §4.2: per-symbol
// CP strip/add and DFT/IDFT, driven off the cell's symbol size table.
package ofdm

import (
	"fmt"

	"github.com/n5hk/ltephy/internal/errs"
	"github.com/n5hk/ltephy/internal/numerics"
	"github.com/n5hk/ltephy/pkg/cell"
)

// Config is the plain configuration struct for a Modem, replacing the
// teacher's ad-hoc obj_hl{init;ctrl_in;ctrl_out} wrapper per SPEC_FULL.md §9.
type Config struct {
	Cell cell.Descriptor
}

// Modem demodulates/modulates one subframe at a time. It allocates one
// symbol-sized scratch buffer at construction and reuses it; Demod still
// allocates the returned grid, and Mod the returned samples plus one IDFT
// output buffer per symbol.
type Modem struct {
	cfg    Config
	scratch []complex128
}

// New constructs a Modem for cfg.Cell.
func New(cfg Config) *Modem {
	return &Modem{cfg: cfg, scratch: make([]complex128, cfg.Cell.SymbolSize())}
}

// cpLengths returns the cyclic-prefix length (in samples) for each of the
// 2*NofSymbolsPerSlot OFDM symbols in a subframe, per spec.md §4.2: under
// Normal CP the first symbol of each slot is longer (160*sz/2048) and the
// rest are 144*sz/2048; under Extended CP every symbol is 512*sz/2048.
func cpLengths(d cell.Descriptor) []int {
	sz := d.SymbolSize()
	perSlot := d.NofSymbolsPerSlot()
	out := make([]int, 2*perSlot)
	for slot := 0; slot < 2; slot++ {
		for sym := 0; sym < perSlot; sym++ {
			idx := slot*perSlot + sym
			if d.CP == cell.Extended {
				out[idx] = 512 * sz / 2048
			} else if sym == 0 {
				out[idx] = 160 * sz / 2048
			} else {
				out[idx] = 144 * sz / 2048
			}
		}
	}
	return out
}

// SubframeLength returns the total number of time-domain samples in one
// subframe (sum of symbol size + CP length over all OFDM symbols).
func (m *Modem) SubframeLength() int {
	total := 0
	sz := m.cfg.Cell.SymbolSize()
	for _, cp := range cpLengths(m.cfg.Cell) {
		total += sz + cp
	}
	return total
}

// Demod runs the forward DFT over one subframe of time-domain samples,
// producing a frequency-domain resource grid. samples shorter than
// SubframeLength() is a fatal precondition error per spec.md §4.2.
func (m *Modem) Demod(samples []complex128) (cell.Grid, error) {
	need := m.SubframeLength()
	if len(samples) < need {
		return cell.Grid{}, fmt.Errorf("demod: need %d samples, got %d: %w", need, len(samples), errs.InvalidInput)
	}

	d := m.cfg.Cell
	sz := d.SymbolSize()
	grid := cell.NewGrid(d)
	plan := numerics.GetPlan(sz, numerics.Forward)

	off := 0
	for row, cp := range cpLengths(d) {
		off += cp // skip cyclic prefix
		symIn := samples[off : off+sz]
		off += sz

		plan.Run(symIn, m.scratch)
		mapToGrid(m.scratch, grid.Row(row), d.DCIndex(), d.NofSubcarriers())
	}
	return grid, nil
}

// Mod runs the inverse DFT over a resource grid, producing one subframe of
// time-domain samples with cyclic prefixes inserted.
func (m *Modem) Mod(grid cell.Grid) ([]complex128, error) {
	d := m.cfg.Cell
	if grid.Cell.NofPRB != d.NofPRB || grid.Cell.CP != d.CP {
		return nil, fmt.Errorf("mod: grid cell mismatch: %w", errs.InvalidInput)
	}
	sz := d.SymbolSize()
	plan := numerics.GetPlan(sz, numerics.Inverse)
	out := make([]complex128, m.SubframeLength())

	off := 0
	for row, cp := range cpLengths(d) {
		mapFromGrid(grid.Row(row), m.scratch, d.DCIndex(), d.NofSubcarriers())
		symOut := make([]complex128, sz)
		plan.Run(m.scratch, symOut)

		// Cyclic prefix: copy the tail of the symbol to the front.
		copy(out[off:off+cp], symOut[sz-cp:])
		off += cp
		copy(out[off:off+sz], symOut)
		off += sz
	}
	return out, nil
}

// mapToGrid mirrors the positive/negative frequency halves of a size-N DFT
// output so the DC bin lands at gridRow[dcIndex], per spec.md §4.2. The DC
// bin is not removed: it occupies grid column dcIndex like any subcarrier.
func mapToGrid(dftOut []complex128, gridRow []complex128, dcIndex, nofSC int) {
	sz := len(dftOut)
	half := nofSC / 2
	// Negative frequencies (k = -half..-1) live at the top of the DFT output.
	for k := 1; k <= half; k++ {
		gridRow[dcIndex-k] = dftOut[sz-k]
	}
	// Positive frequencies (k = 0..half-1) live at the bottom; k=0 is DC,
	// which the LTE grid never actually carries data on but which spec.md's
	// invariant still requires to "land" at dcIndex, so it is carried through
	// rather than zeroed (callers that rely on DC being null zero it explicitly).
	for k := 0; k < half; k++ {
		gridRow[dcIndex+k] = dftOut[k]
	}
}

// mapFromGrid is the inverse of mapToGrid: scatter grid subcarriers back
// into IDFT input bin order, zero-filling any unused guard bins.
func mapFromGrid(gridRow []complex128, idftIn []complex128, dcIndex, nofSC int) {
	for i := range idftIn {
		idftIn[i] = 0
	}
	sz := len(idftIn)
	half := nofSC / 2
	for k := 1; k <= half; k++ {
		idftIn[sz-k] = gridRow[dcIndex-k]
	}
	for k := 0; k < half; k++ {
		idftIn[k] = gridRow[dcIndex+k]
	}
}
