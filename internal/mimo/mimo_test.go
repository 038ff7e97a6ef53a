package mimo

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSISORoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	x := make([]complex128, 20)
	h := make([]complex128, 20)
	for i := range x {
		x[i] = complex(rng.NormFloat64(), rng.NormFloat64())
		h[i] = complex(rng.NormFloat64()+2, rng.NormFloat64())
	}
	ports, err := Precode(x, 1)
	require.NoError(t, err)

	rx := make([]complex128, len(x))
	for i := range rx {
		rx[i] = ports[0][i] * h[i]
	}
	got, err := Predecode([][]complex128{rx}, [][]complex128{h}, 1, 0)
	require.NoError(t, err)
	for i := range x {
		require.InDelta(t, real(x[i]), real(got[i]), 1e-6)
		require.InDelta(t, imag(x[i]), imag(got[i]), 1e-6)
	}
}

func TestSFBC2RoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	x := make([]complex128, 8)
	for i := range x {
		x[i] = complex(rng.NormFloat64(), rng.NormFloat64())
	}
	ports, err := Precode(x, 2)
	require.NoError(t, err)
	require.Len(t, ports, 2)

	h0 := make([]complex128, len(x))
	h1 := make([]complex128, len(x))
	// The channel is flat across each subcarrier pair, as SFBC decoding
	// assumes.
	for i := 0; i < len(h0); i += 2 {
		h0[i] = complex(rng.NormFloat64()+1, rng.NormFloat64())
		h1[i] = complex(rng.NormFloat64()+1, rng.NormFloat64())
		h0[i+1], h1[i+1] = h0[i], h1[i]
	}
	rx := make([]complex128, len(x))
	for i := range rx {
		rx[i] = ports[0][i]*h0[i] + ports[1][i]*h1[i]
	}
	got, err := Predecode([][]complex128{rx}, [][]complex128{h0, h1}, 2, 0)
	require.NoError(t, err)
	for i := range x {
		require.InDelta(t, real(x[i]), real(got[i]), 1e-6)
		require.InDelta(t, imag(x[i]), imag(got[i]), 1e-6)
	}
}

func TestPrecode4PortShape(t *testing.T) {
	x := make([]complex128, 8)
	for i := range x {
		x[i] = complex(float64(i), 0)
	}
	ports, err := Precode(x, 4)
	require.NoError(t, err)
	require.Len(t, ports, 4)
	for _, p := range ports {
		require.Len(t, p, 8)
	}
}
