// Package acq implements the cell search and synchronization state machine
// of spec.md §4.1-4.2: PSS-based N_id_2 and timing/CFO acquisition, SSS
// disambiguation of N_id_1 and subframe parity, and cyclic-prefix length
// detection, tracked through SEARCH/TRACK/LOST states.
package acq

import (
	"math"
	"math/cmplx"

	"github.com/n5hk/ltephy/internal/errs"
	"github.com/n5hk/ltephy/internal/numerics"
	"github.com/n5hk/ltephy/pkg/cell"
)

// State is the synchronizer's tracking state.
type State int

const (
	StateSearch State = iota
	StateTrack
	StateLost
)

func (s State) String() string {
	switch s {
	case StateSearch:
		return "SEARCH"
	case StateTrack:
		return "TRACK"
	case StateLost:
		return "LOST"
	default:
		return "UNKNOWN"
	}
}

// pssLen is the 62-subcarrier Zadoff-Chu PSS sequence length of 36.211 §6.11.1.
const pssLen = 62

var pssRootByNID2 = [3]int{25, 29, 34}

// pssSequence generates the frequency-domain Zadoff-Chu root sequence for
// one of the three N_id_2 hypotheses.
func pssSequence(nid2 int) []complex128 {
	u := pssRootByNID2[nid2]
	out := make([]complex128, pssLen)
	for n := 0; n < pssLen; n++ {
		var arg float64
		if n <= 30 {
			arg = math.Pi * float64(u) * float64(n*(n+1)) / 63.0
		} else {
			arg = math.Pi * float64(u) * float64((n+1)*(n+2)) / 63.0
		}
		out[n] = cmplx.Exp(complex(0, -arg))
	}
	return out
}

// Peak is a detected PSS correlation peak.
type Peak struct {
	NID2       int
	SampleIdx  int
	Metric     float64
	CFOHz      float64
}

// Detector runs PSS matched filtering for a given sample rate / FFT size.
type Detector struct {
	fftSize    int
	sampleRate float64
	sequences  [3][]complex128
	state      State
}

// New returns a Detector sized for the given OFDM FFT size and sample rate
// (used for CFO conversion from phase to Hz).
func New(fftSize int, sampleRate float64) *Detector {
	d := &Detector{fftSize: fftSize, sampleRate: sampleRate, state: StateSearch}
	for i := 0; i < 3; i++ {
		d.sequences[i] = pssSequence(i)
	}
	return d
}

func (d *Detector) State() State { return d.state }

// Search correlates samples (time domain) against all three PSS hypotheses
// using a frequency-domain matched filter, per spec.md §4.1, and returns the
// strongest peak above a ratio threshold against the mean metric.
func (d *Detector) Search(samples []complex128) (Peak, error) {
	if len(samples) < d.fftSize {
		return Peak{}, errs.InvalidInput
	}

	var best Peak
	best.Metric = -1
	var sum float64
	var count int

	plan := numerics.GetPlan(d.fftSize, numerics.Forward)
	window := make([]complex128, d.fftSize)
	freq := make([]complex128, d.fftSize)

	for start := 0; start+d.fftSize <= len(samples); start++ {
		copy(window, samples[start:start+d.fftSize])
		plan.Run(window, freq)

		for nid2 := 0; nid2 < 3; nid2++ {
			metric := d.correlate(freq, d.sequences[nid2])
			sum += metric
			count++
			if metric > best.Metric {
				best = Peak{NID2: nid2, SampleIdx: start, Metric: metric}
			}
		}
	}
	if count == 0 {
		return Peak{}, errs.NotFound
	}
	mean := sum / float64(count)
	if mean <= 0 || best.Metric < 3*mean {
		d.state = StateLost
		return Peak{}, errs.NotFound
	}

	best.CFOHz = d.estimateCFO(samples[best.SampleIdx:best.SampleIdx+d.fftSize], best.NID2)
	d.state = StateTrack
	return best, nil
}

// correlate computes the energy-normalized correlation between the DC-
// centered occupied subcarriers of freq and the reference PSS sequence.
func (d *Detector) correlate(freq []complex128, ref []complex128) float64 {
	n := d.fftSize
	half := pssLen / 2
	var acc complex128
	var energy float64
	for k := -half; k <= half; k++ {
		if k == 0 {
			continue
		}
		idx := ((k % n) + n) % n
		refIdx := k + half
		if k > 0 {
			refIdx--
		}
		if refIdx < 0 || refIdx >= len(ref) {
			continue
		}
		acc += freq[idx] * cmplx.Conj(ref[refIdx])
		energy += real(freq[idx])*real(freq[idx]) + imag(freq[idx])*imag(freq[idx])
	}
	if energy == 0 {
		return 0
	}
	return (real(acc)*real(acc) + imag(acc)*imag(acc)) / energy
}

// estimateCFO derives a fractional carrier-offset estimate from the phase
// difference between the two correlation halves of the PSS symbol window,
// per spec.md §4.1's CFO-on-PSS-window-only resolution.
func (d *Detector) estimateCFO(window []complex128, nid2 int) float64 {
	half := len(window) / 2
	var acc complex128
	for i := 0; i < half; i++ {
		acc += window[i] * cmplx.Conj(window[i+half])
	}
	phase := cmplx.Phase(acc)
	return phase * d.sampleRate / (2 * math.Pi * float64(half))
}

// SSSResult is the disambiguated cell-identity group and frame timing.
type SSSResult struct {
	NID1         int
	SubframeIs0  bool // true if this SSS belongs to subframe 0, false for 5
}

// sssSeqLen matches the PSS occupied-subcarrier count.
const sssSeqLen = 62

// mSequence generates the length-31 binary m-sequence defined by the
// degree-5 recursion x(i+5) = next(x, i) mod 2, seeded 0,0,0,0,1, per
// 36.211 §6.11.2's three base sequences (s~, c~, z~).
func mSequence(next func(x []int, i int) int) []int {
	x := make([]int, 31)
	x[4] = 1
	for i := 0; i <= 25; i++ {
		x[i+5] = next(x, i) % 2
	}
	return x
}

// bpsk maps a binary m-sequence to its ±1 BPSK representation.
func bpsk(bits []int) []float64 {
	out := make([]float64, len(bits))
	for i, b := range bits {
		out[i] = 1 - 2*float64(b)
	}
	return out
}

var (
	sTilde = bpsk(mSequence(func(x []int, i int) int { return x[i+2] + x[i] }))
	cTilde = bpsk(mSequence(func(x []int, i int) int { return x[i+3] + x[i] }))
	zTilde = bpsk(mSequence(func(x []int, i int) int { return x[i+4] + x[i+2] + x[i+1] + x[i] }))
)

// shift reads base cyclically starting at offset m.
func shift(base []float64, n, m int) float64 {
	return base[(n+m)%31]
}

// sssIndices computes (m0, m1) from N_id_1 per 36.211 §6.11.2's definition
// (the closed-form generator of Table 6.11.2.1-1).
func sssIndices(nid1 int) (m0, m1 int) {
	qPrime := nid1 / 30
	q := (nid1 + qPrime*(qPrime+1)/2) / 30
	mPrime := nid1 + q*(q+1)/2
	m0 = mPrime % 31
	m1 = (m0 + mPrime/31 + 1) % 31
	return
}

// sssCandidate synthesizes the interleaved dual-m-sequence SSS for one
// N_id_1/N_id_2 hypothesis and subframe timing, per 36.211 §6.11.2: two
// cyclically shifted copies of the s~ m-sequence, each scrambled by a
// N_id_2-shifted c~ sequence and (on the odd positions) a m0/m1-shifted z~
// sequence, with the two halves swapped between subframe 0 and subframe 5.
func sssCandidate(nid1, nid2 int, subframeIs0 bool) []float64 {
	m0, m1 := sssIndices(nid1)

	seq := make([]float64, sssSeqLen)
	for n := 0; n < 31; n++ {
		s0 := shift(sTilde, n, m0)
		s1 := shift(sTilde, n, m1)
		c0 := shift(cTilde, n, nid2)
		c1 := shift(cTilde, n, nid2+3)
		z0 := shift(zTilde, n, m0%8)
		z1 := shift(zTilde, n, m1%8)

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

// Disambiguate correlates an extracted real-valued SSS sequence (already
// channel-equalized and projected to BPSK) against all 168 N_id_1
// hypotheses for both subframe-0 and subframe-5 timing, returning the best
// match, per spec.md §4.2.
func Disambiguate(sss []float64, nid2 int) (SSSResult, error) {
	if len(sss) != sssSeqLen {
		return SSSResult{}, errs.InvalidInput
	}
	best := SSSResult{}
	bestScore := math.Inf(-1)
	for nid1 := 0; nid1 < 168; nid1++ {
		for _, sf0 := range []bool{true, false} {
			cand := sssCandidate(nid1, nid2, sf0)
			var score float64
			for i := range cand {
				score += cand[i] * sss[i]
			}
			if score > bestScore {
				bestScore = score
				best = SSSResult{NID1: nid1, SubframeIs0: sf0}
			}
		}
	}
	return best, nil
}

// DetectCP picks the cyclic-prefix hypothesis whose PSS correlation peak is
// sharper, comparing the Normal and Extended candidate window offsets,
// per spec.md §4.1.
func DetectCP(normalPeakMetric, extendedPeakMetric float64) cell.CPType {
	if extendedPeakMetric > normalPeakMetric {
		return cell.Extended
	}
	return cell.Normal
}
