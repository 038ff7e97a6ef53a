package chest

import (
	"math"
	"math/cmplx"
	"testing"

	"github.com/n5hk/ltephy/internal/refsignal"
	"github.com/n5hk/ltephy/pkg/cell"
	"github.com/stretchr/testify/require"
)

func TestEstimateRecoversFlatChannel(t *testing.T) {
	d, err := cell.New(1, 25, 1, cell.Normal)
	require.NoError(t, err)

	gen := refsignal.New(d)
	rx := cell.NewGrid(d)
	h := complex(0.8, 0.3)
	for _, p := range gen.Pilots(0, 0) {
		rx.Set(p.Symbol, p.Freq, p.Value*h)
	}

	est := New(Config{Cell: d})
	ce := est.Estimate(rx, 0, 0)

	for row := 0; row < ce.Rows; row++ {
		for col := 0; col < ce.Cols; col++ {
			v := ce.At(row, col)
			if cmplx.Abs(v) == 0 {
				continue
			}
			require.False(t, math.IsNaN(real(v)) || math.IsNaN(imag(v)))
			require.InDelta(t, real(h), real(v), 0.2)
			require.InDelta(t, imag(h), imag(v), 0.2)
		}
	}
}

func TestEstimateNeverNaN(t *testing.T) {
	d, err := cell.New(1, 6, 2, cell.Normal)
	require.NoError(t, err)
	rx := cell.NewGrid(d) // all zero, no pilots set intentionally mismatched
	est := New(Config{Cell: d})
	ce := est.Estimate(rx, 1, 0)
	for _, v := range ce.Data {
		require.False(t, math.IsNaN(real(v)) || math.IsNaN(imag(v)))
		require.False(t, math.IsInf(real(v), 0) || math.IsInf(imag(v), 0))
	}
}
