package testchannel

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAddAWGNPreservesLength(t *testing.T) {
	samples := make([]complex128, 128)
	for i := range samples {
		samples[i] = complex(1, 0)
	}
	out := AddAWGN(samples, 10, 1)
	require.Len(t, out, len(samples))
}

func TestAddAWGNIsDeterministicForSameSeed(t *testing.T) {
	samples := make([]complex128, 64)
	for i := range samples {
		samples[i] = complex(float64(i), 0)
	}
	a := AddAWGN(samples, 5, 42)
	b := AddAWGN(samples, 5, 42)
	require.Equal(t, a, b)
}

func TestAddCFORotatesPhaseLinearly(t *testing.T) {
	samples := make([]complex128, 10)
	for i := range samples {
		samples[i] = complex(1, 0)
	}
	out := AddCFO(samples, 1000, 1.92e6)
	require.InDelta(t, 1.0, math.Hypot(real(out[1]), imag(out[1])), 1e-9)
	step := 2 * math.Pi * 1000 / 1.92e6
	for i, v := range out {
		require.InDelta(t, step*float64(i), math.Atan2(imag(v), real(v)), 1e-9)
	}
}

func TestApplyMultipathSingleZeroTapIsIdentity(t *testing.T) {
	samples := []complex128{1, 2, 3, 4}
	out := ApplyMultipath(samples, []Tap{{DelaySamples: 0, Gain: 1}})
	require.Equal(t, samples, out)
}
