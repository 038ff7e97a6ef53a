// Package testchannel synthesizes AWGN, carrier-frequency offset, and
// simple multipath impairments for exercising the PHY pipeline end to end,
// grounded on original_source/'s ch_awgn.h channel model.
package testchannel

import (
	"math"
	"math/cmplx"
)

// rngState is a small deterministic PRNG (xorshift64) so tests get
// reproducible noise without depending on math/rand's global state or
// wall-clock seeding, which the harness forbids querying.
type rngState struct{ s uint64 }

func newRNG(seed uint64) *rngState {
	if seed == 0 {
		seed = 0x9E3779B97F4A7C15
	}
	return &rngState{s: seed}
}

func (r *rngState) next() uint64 {
	r.s ^= r.s << 13
	r.s ^= r.s >> 7
	r.s ^= r.s << 17
	return r.s
}

// uniform returns a float64 in [0,1).
func (r *rngState) uniform() float64 {
	return float64(r.next()>>11) / (1 << 53)
}

// gaussian draws one standard-normal sample via the Box-Muller transform.
func (r *rngState) gaussian() float64 {
	u1 := r.uniform()
	if u1 < 1e-300 {
		u1 = 1e-300
	}
	u2 := r.uniform()
	return math.Sqrt(-2*math.Log(u1)) * math.Cos(2*math.Pi*u2)
}

// AddAWGN returns a copy of samples with complex Gaussian noise added at
// the given Eb/N0-like linear SNR (signal power over noise power),
// mirroring the original source's per-sample noise injection.
func AddAWGN(samples []complex128, snrLinear float64, seed uint64) []complex128 {
	rng := newRNG(seed)
	var power float64
	for _, s := range samples {
		power += real(s)*real(s) + imag(s)*imag(s)
	}
	if len(samples) > 0 {
		power /= float64(len(samples))
	}
	noiseVar := power / snrLinear
	sigma := math.Sqrt(noiseVar / 2)

	out := make([]complex128, len(samples))
	for i, s := range samples {
		n := complex(sigma*rng.gaussian(), sigma*rng.gaussian())
		out[i] = s + n
	}
	return out
}

// AddCFO rotates samples by a constant-rate carrier frequency offset,
// cfoHz at the given sample rate.
func AddCFO(samples []complex128, cfoHz, sampleRate float64) []complex128 {
	out := make([]complex128, len(samples))
	step := 2 * math.Pi * cfoHz / sampleRate
	for i, s := range samples {
		out[i] = s * cmplx.Exp(complex(0, step*float64(i)))
	}
	return out
}

// Tap is one multipath channel coefficient at a sample delay.
type Tap struct {
	DelaySamples int
	Gain         complex128
}

// ApplyMultipath convolves samples with a short tap-delay-line channel,
// truncating the output to len(samples) so callers can treat it as an
// in-place-compatible impairment.
func ApplyMultipath(samples []complex128, taps []Tap) []complex128 {
	out := make([]complex128, len(samples))
	for _, tap := range taps {
		for i := range samples {
			srcIdx := i - tap.DelaySamples
			if srcIdx < 0 {
				continue
			}
			out[i] += samples[srcIdx] * tap.Gain
		}
	}
	return out
}

// FlatFadingGain returns a single complex gain with the given magnitude and
// a random phase, for injecting a static flat-fading channel into a
// transmit-diversity test scenario.
func FlatFadingGain(magnitude float64, seed uint64) complex128 {
	rng := newRNG(seed)
	phase := 2 * math.Pi * rng.uniform()
	return complex(magnitude*math.Cos(phase), magnitude*math.Sin(phase))
}
