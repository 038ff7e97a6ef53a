package scrambling

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestXorBitsIsInvolution(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(0, 500).Draw(t, "n")
		data := make([]byte, n)
		for i := range data {
			data[i] = byte(rapid.IntRange(0, 1).Draw(t, "bit"))
		}
		orig := append([]byte(nil), data...)

		s := New(Config{Channel: PDSCH, CellID: 167, Subframe: 3, RNTI: 0x1234, Q: 0})
		s.XorBits(data)
		s.XorBits(data)
		assert.Equal(t, orig, data)
	})
}

func TestSignFlipFloatsIsInvolution(t *testing.T) {
	data := []float64{1.5, -2.3, 0.7, -0.1, 4, -4, 2, 2}
	orig := append([]float64(nil), data...)
	s := New(Config{Channel: PBCH, CellID: 88})
	s.SignFlipFloats(data)
	s.SignFlipFloats(data)
	assert.Equal(t, orig, data)
}

func TestDifferentKeysDifferentStreams(t *testing.T) {
	data1 := make([]byte, 64)
	data2 := make([]byte, 64)
	New(Config{Channel: PDSCH, CellID: 1, Subframe: 0, RNTI: 1}).XorBits(data1)
	New(Config{Channel: PDSCH, CellID: 1, Subframe: 0, RNTI: 2}).XorBits(data2)
	assert.NotEqual(t, data1, data2)
}
