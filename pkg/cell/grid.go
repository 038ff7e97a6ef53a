package cell

import "github.com/n5hk/ltephy/internal/errs"

// MatrixView is an index-arithmetic accessor over a single contiguous
// buffer, replacing the jagged void*** matrices of the original source per
// SPEC_FULL.md §9. Ownership of the backing buffer stays with the owning
// component.
type MatrixView struct {
	Data          []complex128
	Rows, Cols    int
	Stride        int // elements between the start of consecutive rows
}

// NewMatrixView allocates a fresh Rows x Cols matrix with Stride == Cols.
func NewMatrixView(rows, cols int) MatrixView {
	return MatrixView{
		Data:   make([]complex128, rows*cols),
		Rows:   rows,
		Cols:   cols,
		Stride: cols,
	}
}

// At returns the element at (row, col).
func (m MatrixView) At(row, col int) complex128 {
	return m.Data[row*m.Stride+col]
}

// Set writes the element at (row, col).
func (m MatrixView) Set(row, col int, v complex128) {
	m.Data[row*m.Stride+col] = v
}

// Row returns the slice backing one row, for use with vector ops that take
// a flat []complex128 (e.g. passing a single OFDM symbol to a DFT plan).
func (m MatrixView) Row(row int) []complex128 {
	start := row * m.Stride
	return m.Data[start : start+m.Cols]
}

// Grid is the per-subframe resource grid of spec.md §3: one row per OFDM
// symbol (2*NofSymbolsPerSlot rows per subframe), one column per
// subcarrier, DC centered at Descriptor.DCIndex().
type Grid struct {
	MatrixView
	Cell Descriptor
}

// NewGrid allocates a zeroed grid sized for one subframe of the given cell.
func NewGrid(d Descriptor) Grid {
	rows := 2 * d.NofSymbolsPerSlot()
	return Grid{MatrixView: NewMatrixView(rows, d.NofSubcarriers()), Cell: d}
}

// SubcarrierIndex maps a signed frequency index k (negative = below DC,
// 0 = DC, positive = above DC) to a grid column, mirroring the positive
// frequencies around the center per spec.md §4.2.
func (g Grid) SubcarrierIndex(k int) (int, error) {
	col := g.Cell.DCIndex() + k
	if col < 0 || col >= g.Cols {
		return 0, errs.InvalidInput
	}
	return col, nil
}
