// Package turbo implements the LTE turbo code of spec.md §4.8: two 8-state
// RSC constituent encoders with generator (1, 15/13) octal separated by a
// QPP interleaver, tail termination, rate matching, and an iterative
// max-log-MAP decoder with early CRC stopping.
package turbo

// rscState packs the 3-bit shift-register state of one constituent
// encoder: (c1,c2,c3) = (c_{k-1}, c_{k-2}, c_{k-3}).
type rscState byte

// rscStep advances one RSC encoder by one input bit x, per the transfer
// function G(D) = [1, (1+D+D^3)/(1+D^2+D^3)] of 36.212 §5.1.3.2.2. The
// systematic output is x itself; parity is the recursive output.
func rscStep(s rscState, x byte) (next rscState, parity byte) {
	c1 := byte(s) & 1
	c2 := (byte(s) >> 1) & 1
	c3 := (byte(s) >> 2) & 1
	c := x ^ c2 ^ c3
	parity = c ^ c1 ^ c3
	next = rscState(c | (c1 << 1) | (c2 << 2))
	return
}

// terminate runs 3 tail clocks, forcing the feedback input so the encoder
// reaches state 0, returning the 3 systematic and 3 parity tail bits.
func terminate(s rscState) (sys, par [3]byte) {
	for i := 0; i < 3; i++ {
		c2 := (byte(s) >> 1) & 1
		c3 := (byte(s) >> 2) & 1
		x := c2 ^ c3
		var p byte
		s, p = rscStep(s, x)
		sys[i] = x
		par[i] = p
	}
	return
}

const numTurboStates = 8

// nextStateTable[s][x] and parityTable[s][x] are the precomputed trellis
// used by the BCJR recursions.
var nextStateTable [numTurboStates][2]rscState
var parityTable [numTurboStates][2]byte

func init() {
	for s := 0; s < numTurboStates; s++ {
		for x := 0; x < 2; x++ {
			ns, p := rscStep(rscState(s), byte(x))
			nextStateTable[s][x] = ns
			parityTable[s][x] = p
		}
	}
}
