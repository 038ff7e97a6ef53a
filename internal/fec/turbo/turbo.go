package turbo

import (
	"math"

	"github.com/n5hk/ltephy/internal/errs"
)

// Encoded holds the three systematic/parity streams produced by Encode,
// each still K bits long, plus the 12 tail bits distributed 4 per stream
// per spec.md §4.8.
type Encoded struct {
	D0, D1, D2 []byte // each len K+4
}

// K returns the number of information bits encoded (excluding tail).
func (e Encoded) K() int { return len(e.D0) - 4 }

// Encode runs the two RSC encoders (the second fed through the QPP
// interleaver) over info (0/1 bytes), returning the three rate-1/3 streams
// with trellis termination appended.
func Encode(info []byte) Encoded {
	k := len(info)
	perm := qppPermutation(k)
	interleaved := make([]byte, k)
	for i, p := range perm {
		interleaved[i] = info[p]
	}

	d0 := make([]byte, 0, k+4)
	d1 := make([]byte, 0, k+4)
	d2 := make([]byte, 0, k+4)

	var s1, s2 rscState
	for i := 0; i < k; i++ {
		var p1, p2 byte
		s1, p1 = rscStep(s1, info[i])
		s2, p2 = rscStep(s2, interleaved[i])
		d0 = append(d0, info[i])
		d1 = append(d1, p1)
		d2 = append(d2, p2)
	}

	sys1, par1 := terminate(s1)
	sys2, par2 := terminate(s2)
	tail := append(append(append(append([]byte{}, sys1[:]...), par1[:]...), sys2[:]...), par2[:]...)
	d0 = append(d0, tail[0:4]...)
	d1 = append(d1, tail[4:8]...)
	d2 = append(d2, tail[8:12]...)

	return Encoded{D0: d0, D1: d1, D2: d2}
}

const inf = math.MaxFloat64 / 2

// bcjr runs one max-log-MAP decode pass over a K-bit 8-state trellis that
// starts in state 0; the end state is left open because the tail bits are
// not passed in. It takes systematic LLRs sys, parity LLRs
// par, and a priori LLRs apriori (all length K), returning the extrinsic
// LLR contribution for each bit.
func bcjr(sys, par, apriori []float64) []float64 {
	k := len(sys)
	alpha := make([][numTurboStates]float64, k+1)
	beta := make([][numTurboStates]float64, k+1)
	for s := 1; s < numTurboStates; s++ {
		alpha[0][s] = -inf
	}

	gamma := func(i int, s int, x int) float64 {
		p := parityTable[s][x]
		u := float64(x) // 0/1 used directly; consistent max-log metric.
		pu := float64(p)
		return u*(apriori[i]+sys[i]) + pu*par[i]
	}

	for i := 0; i < k; i++ {
		var next [numTurboStates]float64
		for s := range next {
			next[s] = -inf
		}
		for s := 0; s < numTurboStates; s++ {
			if alpha[i][s] <= -inf {
				continue
			}
			for x := 0; x < 2; x++ {
				ns := nextStateTable[s][x]
				v := alpha[i][s] + gamma(i, s, x)
				if v > next[ns] {
					next[ns] = v
				}
			}
		}
		alpha[i+1] = next
	}

	for i := k - 1; i >= 0; i-- {
		var prev [numTurboStates]float64
		for s := range prev {
			prev[s] = -inf
		}
		for s := 0; s < numTurboStates; s++ {
			for x := 0; x < 2; x++ {
				ns := nextStateTable[s][x]
				if beta[i+1][ns] <= -inf {
					continue
				}
				v := beta[i+1][ns] + gamma(i, s, x)
				if v > prev[s] {
					prev[s] = v
				}
			}
		}
		beta[i] = prev
	}

	out := make([]float64, k)
	for i := 0; i < k; i++ {
		max0, max1 := -inf, -inf
		for s := 0; s < numTurboStates; s++ {
			if alpha[i][s] <= -inf {
				continue
			}
			for x := 0; x < 2; x++ {
				ns := nextStateTable[s][x]
				if beta[i+1][ns] <= -inf {
					continue
				}
				v := alpha[i][s] + gamma(i, s, x) + beta[i+1][ns]
				if x == 0 {
					if v > max0 {
						max0 = v
					}
				} else if v > max1 {
					max1 = v
				}
			}
		}
		out[i] = max1 - max0 - apriori[i] - sys[i]
	}
	return out
}

// CRCChecker reports whether a hard-decided bit vector (length K) passes
// the transport/code-block CRC, used for early iteration stopping.
type CRCChecker func(bits []byte) bool

// Decode runs the iterative max-log-MAP turbo decoder over LLR inputs
// (sysLLR, par1LLR, par2LLR, each length K), stopping early once check
// reports a pass, capped at maxIter iterations (spec.md caps at 8).
func Decode(sysLLR, par1LLR, par2LLR []float64, k int, check CRCChecker, maxIter int) ([]byte, int, error) {
	if len(sysLLR) != k || len(par1LLR) != k || len(par2LLR) != k {
		return nil, 0, errs.InvalidInput
	}
	perm := qppPermutation(k)
	invPerm := invertPermutation(perm)

	interleavedSys := permute(sysLLR, perm)
	la2 := make([]float64, k) // a priori for decoder 2, in interleaved order

	var hard []byte
	iterations := 0
	for iter := 0; iter < maxIter; iter++ {
		iterations++
		ext1 := bcjr(sysLLR, par1LLR, deinterleaveInto(la2, invPerm))
		la1Interleaved := permute(ext1, perm)
		ext2 := bcjr(interleavedSys, par2LLR, la1Interleaved)
		la2 = ext2

		post := make([]float64, k)
		ext2Deint := permute(ext2, invPerm)
		for i := 0; i < k; i++ {
			post[i] = sysLLR[i] + ext1[i] + ext2Deint[i]
		}
		hard = make([]byte, k)
		for i, v := range post {
			if v > 0 {
				hard[i] = 1
			}
		}
		if check != nil && check(hard) {
			break
		}
	}
	return hard, iterations, nil
}

func permute(x []float64, perm []int) []float64 {
	out := make([]float64, len(x))
	for i, p := range perm {
		out[i] = x[p]
	}
	return out
}

func deinterleaveInto(interleaved []float64, invPerm []int) []float64 {
	return permute(interleaved, invPerm)
}
