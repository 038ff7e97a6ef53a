package turbo

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func llrFromBits(bits []byte, mag float64) []float64 {
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

func TestEncodeDecodeNoiselessSinglePass(t *testing.T) {
	info := make([]byte, 64)
	for i := range info {
		info[i] = byte((i*13 + 1) % 2)
	}
	enc := Encode(info)
	require.Equal(t, len(info)+4, len(enc.D0))

	sysLLR := llrFromBits(enc.D0[:len(info)], 100)
	par1LLR := llrFromBits(enc.D1[:len(info)], 100)
	par2LLR := llrFromBits(enc.D2[:len(info)], 100)

	check := func(bits []byte) bool {
		for i := range bits {
			if bits[i] != info[i] {
				return false
			}
		}
		return true
	}

	decoded, iters, err := Decode(sysLLR, par1LLR, par2LLR, len(info), check, 8)
	require.NoError(t, err)
	require.Equal(t, info, decoded)
	require.Equal(t, 1, iters)
}

func TestEncodeDecodeConvergesWithinCap(t *testing.T) {
	info := make([]byte, 128)
	for i := range info {
		info[i] = byte((i * 7) % 2)
	}
	enc := Encode(info)
	sysLLR := llrFromBits(enc.D0[:len(info)], 3)
	par1LLR := llrFromBits(enc.D1[:len(info)], 3)
	par2LLR := llrFromBits(enc.D2[:len(info)], 3)

	check := func(bits []byte) bool {
		for i := range bits {
			if bits[i] != info[i] {
				return false
			}
		}
		return true
	}
	decoded, iters, err := Decode(sysLLR, par1LLR, par2LLR, len(info), check, 8)
	require.NoError(t, err)
	require.LessOrEqual(t, iters, 8)
	require.Equal(t, info, decoded)
}
