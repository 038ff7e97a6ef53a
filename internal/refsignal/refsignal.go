// Package refsignal generates the cell-specific reference signal (CRS) set
// of spec.md §3/§4.3: pilot positions and their expected QPSK-like values
// per (port, slot, cell_id).
package refsignal

import (
	"math"

	"github.com/n5hk/ltephy/internal/numerics"
	"github.com/n5hk/ltephy/pkg/cell"
)

// Pilot is one reference-signal resource element: its position in the
// subframe grid and its expected complex value.
type Pilot struct {
	Symbol int // row index in the subframe grid (0..2*NofSymbolsPerSlot-1)
	Freq   int // column index in the subframe grid
	Value  complex128
}

// vshiftOffset is the per-port v used in the frequency-shift formula of
// spec.md §3: {0,3,3,6} for ports {0,1,2,3}.
var vshiftOffset = [4]int{0, 3, 3, 6}

// Generator produces the pilot set for a cell.
type Generator struct {
	d cell.Descriptor
}

// New constructs a Generator for d.
func New(d cell.Descriptor) *Generator {
	return &Generator{d: d}
}

// symbolsForPort returns the OFDM symbol indices within a slot that carry
// CRS for the given port, per spec.md §3: symbols 0 and
// nof_symbols_per_slot-3 for ports 0/1, symbol 1 for ports 2/3.
func symbolsForPort(d cell.Descriptor, port int) []int {
	last := d.NofSymbolsPerSlot() - 3
	if port == 0 || port == 1 {
		return []int{0, last}
	}
	return []int{1}
}

// Pilots returns every CRS resource element for port across both slots of
// one subframe (subframeSlot0 is the even slot number 0..19 of the first
// slot in the subframe; the second slot is subframeSlot0+1).
func (g *Generator) Pilots(port int, subframeSlot0 int) []Pilot {
	d := g.d
	perSlot := d.NofSymbolsPerSlot()
	nCp := 0
	if d.CP == cell.Extended {
		nCp = 1
	}
	vshift := (d.ID%6 + vshiftOffset[port]) % 6

	var pilots []Pilot
	for slotOffset := 0; slotOffset < 2; slotOffset++ {
		ns := subframeSlot0 + slotOffset
		for _, l := range symbolsForPort(d, port) {
			cInit := uint32(1<<10)*uint32(7*(ns+1)+l+1)*uint32(2*d.ID+1) + uint32(2*d.ID) + uint32(nCp)
			mMax := 2 * d.NofPRB
			chips := numerics.GoldChips(cInit, 2*mMax)
			initOffset := (vshift + d.ID) % 6

			row := slotOffset*perSlot + l
			for m := 0; m < mMax; m++ {
				freq := initOffset + 6*m
				re := chips[2*m] / math.Sqrt2
				im := chips[2*m+1] / math.Sqrt2
				pilots = append(pilots, Pilot{
					Symbol: row,
					Freq:   freq,
					Value:  complex(re, im),
				})
			}
		}
	}
	return pilots
}
