package modem

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestModulateHardDemapRoundTrip(t *testing.T) {
	for _, c := range []Constellation{BPSK, QPSK, QAM16, QAM64} {
		m, err := New(c)
		require.NoError(t, err)

		bps := c.BitsPerSymbol()
		bits := make([]byte, bps*20)
		for i := range bits {
			bits[i] = byte((i * 7) % 2)
		}
		syms, err := m.Modulate(bits)
		require.NoError(t, err)
		back := m.HardDemap(syms)
		require.Equal(t, bits, back)
	}
}

func TestSoftDemapSignMatchesHardDecision(t *testing.T) {
	m, err := New(QPSK)
	require.NoError(t, err)
	bits := []byte{0, 1, 1, 0}
	syms, err := m.Modulate(bits)
	require.NoError(t, err)

	llrs := m.SoftDemap(syms, 1.0, false)
	for i, b := range bits {
		if b == 1 {
			require.Greater(t, llrs[i], 0.0)
		} else {
			require.Less(t, llrs[i], 0.0)
		}
	}
}

func TestExactAndMaxLogAgreeInSign(t *testing.T) {
	m, err := New(QAM16)
	require.NoError(t, err)
	bits := make([]byte, 4)
	for i := range bits {
		bits[i] = byte(i % 2)
	}
	syms, err := m.Modulate(bits)
	require.NoError(t, err)

	exact := m.SoftDemap(syms, 0.5, true)
	approx := m.SoftDemap(syms, 0.5, false)
	for i := range exact {
		require.Equal(t, exact[i] > 0, approx[i] > 0)
	}
}
