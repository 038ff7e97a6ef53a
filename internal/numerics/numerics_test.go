package numerics

import (
	"math"
	"math/cmplx"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestCRCAttachCheckRoundTrip(t *testing.T) {
	c := NewCRC(PolyCRC24A, 24)
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(0, 200).Draw(t, "n")
		bits := make([]byte, n)
		for i := range bits {
			bits[i] = byte(rapid.IntRange(0, 1).Draw(t, "bit"))
		}
		attached := c.Attach(bits)
		assert.True(t, c.Check(attached))

		if len(attached) > 0 {
			flipped := append([]byte(nil), attached...)
			flipped[0] ^= 1
			assert.False(t, c.Check(flipped))
		}
	})
}

func TestCRCCheckNonDestructive(t *testing.T) {
	c := NewCRC(PolyCRC16, 16)
	bits := []byte{1, 0, 1, 1, 0, 0, 1, 1, 0, 1}
	attached := c.Attach(bits)
	before := append([]byte(nil), attached...)
	require.True(t, c.Check(attached))
	assert.Equal(t, before, attached, "Check must never mutate its input")
}

func TestGoldSequenceDeterministic(t *testing.T) {
	a := GoldBits(12345, 100)
	b := GoldBits(12345, 100)
	assert.Equal(t, a, b)

	c := GoldBits(54321, 100)
	assert.NotEqual(t, a, c)
}

func TestGoldChipsAreBipolar(t *testing.T) {
	chips := GoldChips(1, 200)
	for _, c := range chips {
		assert.True(t, c == 1 || c == -1)
	}
}

func TestDFTRoundTrip(t *testing.T) {
	for _, n := range []int{128, 256, 512, 1024} {
		in := make([]complex128, n)
		for i := range in {
			in[i] = complex(math.Sin(float64(i)), math.Cos(float64(i)*0.5))
		}
		fwd := GetPlan(n, Forward)
		inv := GetPlan(n, Inverse)

		freq := make([]complex128, n)
		fwd.Run(in, freq)
		back := make([]complex128, n)
		inv.Run(freq, back)

		for i := range in {
			assert.InDelta(t, real(in[i]), real(back[i]), 1e-6)
			assert.InDelta(t, imag(in[i]), imag(back[i]), 1e-6)
		}
	}
}

func TestDFTMatchesDirectForSmallNonPow2(t *testing.T) {
	n := 6
	in := make([]complex128, n)
	for i := range in {
		in[i] = complex(float64(i+1), 0)
	}
	p := GetPlan(n, Forward)
	out := make([]complex128, n)
	p.Run(in, out)

	for k := 0; k < n; k++ {
		var want complex128
		for j := 0; j < n; j++ {
			angle := -2 * math.Pi * float64(k*j) / float64(n)
			want += in[j] * cmplx.Exp(complex(0, angle))
		}
		assert.InDelta(t, real(want), real(out[k]), 1e-9)
		assert.InDelta(t, imag(want), imag(out[k]), 1e-9)
	}
}

func TestBitPackUnpackRoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(0, 64).Draw(t, "n")
		bits := make([]byte, n)
		for i := range bits {
			bits[i] = byte(rapid.IntRange(0, 1).Draw(t, "bit"))
		}
		packed := PackBits(bits)
		out := make([]byte, n)
		require.NoError(t, UnpackBits(packed, n, out))
		assert.Equal(t, bits, out)
	})
}
