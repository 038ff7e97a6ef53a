package acq

import (
	"testing"

	"github.com/n5hk/ltephy/internal/numerics"
	"github.com/stretchr/testify/require"
)

func TestSearchFindsInjectedPSS(t *testing.T) {
	fftSize := 128
	d := New(fftSize, 1.92e6)
	nid2 := 1
	seq := pssSequence(nid2)

	// Build a time-domain window whose occupied subcarriers carry the PSS
	// sequence and whose remaining subcarriers are empty, mirroring how the
	// OFDM modem places a PSS symbol into the grid before IDFT.
	freq := make([]complex128, fftSize)
	half := pssLen / 2
	for k := -half; k <= half; k++ {
		if k == 0 {
			continue
		}
		idx := ((k % fftSize) + fftSize) % fftSize
		refIdx := k + half
		if k > 0 {
			refIdx--
		}
		freq[idx] = seq[refIdx]
	}
	plan := numerics.GetPlan(fftSize, numerics.Inverse)
	td := make([]complex128, fftSize)
	plan.Run(freq, td)

	samples := make([]complex128, fftSize+20)
	copy(samples[10:], td)

	peak, err := d.Search(samples)
	require.NoError(t, err)
	require.Equal(t, nid2, peak.NID2)
	require.Equal(t, StateTrack, d.State())
}

func TestSearchRejectsNoise(t *testing.T) {
	fftSize := 128
	d := New(fftSize, 1.92e6)
	samples := make([]complex128, fftSize*2)
	for i := range samples {
		samples[i] = complex(0.001*float64(i%3), 0)
	}
	_, err := d.Search(samples)
	require.Error(t, err)
}

func referenceBPSK(bits []int) []float64 {
	out := make([]float64, len(bits))
	for i, b := range bits {
		out[i] = 1 - 2*float64(b)
	}
	return out
}

// referenceSSS independently synthesizes the interleaved dual-m-sequence
// SSS for nid1/nid2/subframe following 36.211 §6.11.2's equations directly,
// without calling into the package's own mSequence/sssCandidate
// implementation, as ground truth for TestDisambiguateRecoversNID1.
func referenceSSS(nid1, nid2 int, subframeIs0 bool) []float64 {
	s := make([]int, 31)
	s[4] = 1
	for i := 0; i <= 25; i++ {
		s[i+5] = (s[i+2] + s[i]) % 2
	}
	sTilde := referenceBPSK(s)

	c := make([]int, 31)
	c[4] = 1
	for i := 0; i <= 25; i++ {
		c[i+5] = (c[i+3] + c[i]) % 2
	}
	cTilde := referenceBPSK(c)

	z := make([]int, 31)
	z[4] = 1
	for i := 0; i <= 25; i++ {
		z[i+5] = (z[i+4] + z[i+2] + z[i+1] + z[i]) % 2
	}
	zTilde := referenceBPSK(z)

	qPrime := nid1 / 30
	q := (nid1 + qPrime*(qPrime+1)/2) / 30
	mPrime := nid1 + q*(q+1)/2
	m0 := mPrime % 31
	m1 := (m0 + mPrime/31 + 1) % 31

	at := func(base []float64, n, m int) float64 { return base[(n+m)%31] }

	seq := make([]float64, 62)
	for n := 0; n < 31; n++ {
		s0 := at(sTilde, n, m0)
		s1 := at(sTilde, n, m1)
		c0 := at(cTilde, n, nid2)
		c1 := at(cTilde, n, nid2+3)
		z0 := at(zTilde, n, m0%8)
		z1 := at(zTilde, n, m1%8)
		if subframeIs0 {
			seq[2*n] = s0 * c0
			seq[2*n+1] = s1 * c1 * z0
		} else {
			seq[2*n] = s1 * c0
			seq[2*n+1] = s0 * c1 * z1
		}
	}
	return seq
}

func TestDisambiguateRecoversNID1(t *testing.T) {
	nid2 := 2
	nid1 := 55
	cand := referenceSSS(nid1, nid2, true)
	res, err := Disambiguate(cand, nid2)
	require.NoError(t, err)
	require.Equal(t, nid1, res.NID1)
	require.True(t, res.SubframeIs0)
}

func TestDetectCPPicksSharperPeak(t *testing.T) {
	require.Equal(t, 0, int(DetectCP(0.9, 0.1)))
	require.Equal(t, 1, int(DetectCP(0.1, 0.9)))
}
