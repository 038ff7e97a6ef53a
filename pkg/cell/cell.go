// Package cell holds the PHY core's data model: the immutable cell
// descriptor and the resource grid, shared by every other component.
package cell

import (
	"fmt"

	"github.com/n5hk/ltephy/internal/errs"
)

// CPType is the cyclic prefix length in use.
type CPType int

const (
	Normal CPType = iota
	Extended
)

// String implements fmt.Stringer so log lines read CPType=Normal, not a bare int.
func (c CPType) String() string {
	if c == Extended {
		return "Extended"
	}
	return "Normal"
}

// SymbolsPerSlot returns 7 for Normal CP, 6 for Extended.
func (c CPType) SymbolsPerSlot() int {
	if c == Extended {
		return 6
	}
	return 7
}

// symbolSizeByPRB maps nof_prb to OFDM symbol (IDFT/DFT) size, per
// SPEC_FULL.md §4.2.
var symbolSizeByPRB = map[int]int{
	6:   128,
	15:  256,
	25:  512,
	50:  1024,
	75:  1536,
	100: 2048,
}

// Descriptor is the immutable cell tuple of spec.md §3. Construct with New;
// the symbol size is looked up once there and cached on the struct, and the
// other derived quantities are computed by their accessors.
type Descriptor struct {
	ID       int // physical cell id, 0..503
	NofPRB   int // 6, 15, 25, 50, 75, or 100
	NofPorts int // 1, 2, or 4
	CP       CPType

	symbolSz int
}

// New validates and constructs a cell Descriptor. It is the only way to
// obtain one; derived fields are computed here so later accessors never
// fail.
func New(id, nofPRB, nofPorts int, cp CPType) (Descriptor, error) {
	if id < 0 || id > 503 {
		return Descriptor{}, fmt.Errorf("cell id %d out of range [0,503]: %w", id, errs.InvalidInput)
	}
	sz, ok := symbolSizeByPRB[nofPRB]
	if !ok {
		return Descriptor{}, fmt.Errorf("unsupported nof_prb %d: %w", nofPRB, errs.InvalidInput)
	}
	switch nofPorts {
	case 1, 2, 4:
	default:
		return Descriptor{}, fmt.Errorf("unsupported nof_ports %d: %w", nofPorts, errs.InvalidInput)
	}
	return Descriptor{ID: id, NofPRB: nofPRB, NofPorts: nofPorts, CP: cp, symbolSz: sz}, nil
}

// SymbolSize returns the OFDM (I)DFT size for this cell's PRB count.
func (d Descriptor) SymbolSize() int { return d.symbolSz }

// NofSymbolsPerSlot returns 7 (Normal CP) or 6 (Extended CP).
func (d Descriptor) NofSymbolsPerSlot() int { return d.CP.SymbolsPerSlot() }

// NIDCell1 returns N_id_1 = id/3.
func (d Descriptor) NIDCell1() int { return d.ID / 3 }

// NIDCell2 returns N_id_2 = id mod 3.
func (d Descriptor) NIDCell2() int { return d.ID % 3 }

// NofSubcarriers returns nof_prb*12, the width of the resource grid.
func (d Descriptor) NofSubcarriers() int { return d.NofPRB * 12 }

// DCIndex returns the grid column holding the DC subcarrier (the center).
func (d Descriptor) DCIndex() int { return d.NofPRB * 6 }
