package harq

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func checkerFor(info []byte) func([]byte) bool {
	return func(bits []byte) bool {
		if len(bits) != len(info) {
			return false
		}
		for i := range bits {
			if bits[i] != info[i] {
				return false
			}
		}
		return true
	}
}

func llrFromHard(bits []byte, mag float64) []float64 {
	out := make([]float64, len(bits))
	for i, b := range bits {
		if b == 1 {
			out[i] = mag
		} else {
			out[i] = -mag
		}
	}
	return out
}

func TestNewTransmissionDetectedByNDIToggle(t *testing.T) {
	p := NewProcess()
	require.True(t, p.IsNewTransmission(0))
	p.BeginTransmission(10, []int{1, 2, 3}, 0, 0)
	require.False(t, p.IsNewTransmission(0))
	require.True(t, p.IsNewTransmission(1))
}

func TestSinglePassHighSNRDecodesImmediately(t *testing.T) {
	info := make([]byte, 56)
	for i := range info {
		info[i] = byte((i*3 + 1) % 2)
	}
	p := NewProcess()
	p.BeginTransmission(5, []int{0, 1}, 0, 0)

	e := (len(info) + 4) * 3
	bits, err := p.EncodeForTransmission(info, e)
	require.NoError(t, err)

	rxLLR := llrFromHard(bits, 50)
	decoded, iters, err := p.CombineAndDecode(rxLLR, checkerFor(info), 8)
	require.NoError(t, err)
	require.Equal(t, info, decoded)
	require.GreaterOrEqual(t, iters, 1)
}

func TestRetransmissionCombinesAcrossRV(t *testing.T) {
	info := make([]byte, 56)
	for i := range info {
		info[i] = byte((i*5 + 1) % 2)
	}

	p := NewProcess()
	p.BeginTransmission(5, []int{0, 1}, 0, 0)
	e := (len(info) + 4) * 3 / 3 // one third of the codeword per grant

	bits0, err := p.EncodeForTransmission(info, e)
	require.NoError(t, err)
	// Simulate a very noisy first attempt that the CRC check rejects.
	noisyLLR := llrFromHard(bits0, 0.05)
	_, _, err = p.CombineAndDecode(noisyLLR, func([]byte) bool { return false }, 1)
	require.NoError(t, err)

	p.BeginTransmission(5, []int{0, 1}, 2, 0) // rv_idx=2 retransmission, NDI unchanged
	bits2, err := p.codeBlock.ReadE(p.RVIdx, e)
	require.NoError(t, err)
	cleanLLR := llrFromHard(bits2, 50)

	decoded, _, err := p.CombineAndDecode(cleanLLR, checkerFor(info), 8)
	require.NoError(t, err)
	require.Equal(t, info, decoded)
}
