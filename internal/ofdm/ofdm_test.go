package ofdm

import (
	"math/cmplx"
	"math/rand"
	"testing"

	"github.com/n5hk/ltephy/pkg/cell"
	"github.com/stretchr/testify/require"
)

func TestModDemodRoundTrip(t *testing.T) {
	for _, prb := range []int{6, 15, 25, 50, 75, 100} {
		d, err := cell.New(1, prb, 1, cell.Normal)
		require.NoError(t, err)

		modem := New(Config{Cell: d})
		grid := cell.NewGrid(d)

		rng := rand.New(rand.NewSource(int64(prb)))
		for i := range grid.Data {
			grid.Data[i] = complex(rng.NormFloat64(), rng.NormFloat64())
		}
		// DC is never populated with data on a real LTE cell.
		for row := 0; row < grid.Rows; row++ {
			grid.Set(row, d.DCIndex(), 0)
		}

		samples, err := modem.Mod(grid)
		require.NoError(t, err)
		require.Equal(t, modem.SubframeLength(), len(samples))

		got, err := modem.Demod(samples)
		require.NoError(t, err)

		for row := 0; row < grid.Rows; row++ {
			for col := 0; col < grid.Cols; col++ {
				want := grid.At(row, col)
				have := got.At(row, col)
				if abs(want-have) > 1e-5*(abs(want)+1) {
					t.Fatalf("row %d col %d: want %v got %v", row, col, want, have)
				}
			}
		}
	}
}

func abs(c complex128) float64 {
	return cmplx.Abs(c)
}

func TestDemodFailsOnShortInput(t *testing.T) {
	d, err := cell.New(1, 6, 1, cell.Normal)
	require.NoError(t, err)
	m := New(Config{Cell: d})
	_, err = m.Demod(make([]complex128, 10))
	require.Error(t, err)
}
