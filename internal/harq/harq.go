// Package harq implements the per-process HARQ state of spec.md §3: MCS,
// PRB allocation, redundancy-version tracking, NDI-driven new-data
// detection, and soft-combining across retransmissions via the turbo
// circular buffer of internal/fec/turbo.
package harq

import (
	"github.com/n5hk/ltephy/internal/errs"
	"github.com/n5hk/ltephy/internal/fec/turbo"
)

// Process is one HARQ process's mutable state, keyed externally by process
// ID (0..7 for FDD per spec.md).
type Process struct {
	MCS      int
	PRBAlloc []int
	RVIdx    int

	lastNDI   byte
	hasNDI    bool
	codeBlock *turbo.CircularBuffer
	accum     []float64
}

// NewProcess returns a HARQ process with no prior transmission recorded.
func NewProcess() *Process {
	return &Process{}
}

// IsNewTransmission reports whether an incoming grant's NDI bit indicates a
// new transport block rather than a retransmission of the one in flight,
// per spec.md §3: the process starts fresh whenever NDI toggles relative
// to the last grant it saw (or on its very first grant).
func (p *Process) IsNewTransmission(ndi byte) bool {
	if !p.hasNDI {
		return true
	}
	return ndi != p.lastNDI
}

// BeginTransmission records a grant (mcs, prbAlloc, rvIdx, ndi) for this
// process. A new transmission (per IsNewTransmission) discards any prior
// soft-combined state; a retransmission keeps it for combining.
func (p *Process) BeginTransmission(mcs int, prbAlloc []int, rvIdx int, ndi byte) {
	if p.IsNewTransmission(ndi) {
		p.codeBlock = nil
		p.accum = nil
	}
	p.MCS = mcs
	p.PRBAlloc = prbAlloc
	p.RVIdx = rvIdx
	p.lastNDI = ndi
	p.hasNDI = true
}

// EncodeForTransmission turbo-encodes info and rebuilds the rate-matching
// circular buffer on every call (a retransmission re-encodes too; the
// soft-combining accumulator is left as it is), and returns E bits read at
// the process's current rv_idx.
func (p *Process) EncodeForTransmission(info []byte, e int) ([]byte, error) {
	enc := turbo.Encode(info)
	p.codeBlock = turbo.BuildCircularBuffer(enc)
	return p.codeBlock.ReadE(p.RVIdx, e)
}

// CombineAndDecode soft-combines rxLLR (the channel LLRs for this
// transmission's E bits, in circular-buffer read order for RVIdx) into the
// process's running accumulator, then attempts a turbo decode against
// check. A failed decode (check never passes within maxIter) preserves the
// accumulator so the next retransmission's combine continues from it.
func (p *Process) CombineAndDecode(rxLLR []float64, check turbo.CRCChecker, maxIter int) ([]byte, int, error) {
	if p.codeBlock == nil {
		return nil, 0, errs.InvalidInput
	}
	if p.accum == nil {
		p.accum = p.codeBlock.NewAccumulator()
	}
	p.codeBlock.CombineLLR(p.accum, p.RVIdx, rxLLR)

	sys, par1, par2 := p.codeBlock.ExtractStreamLLRs(p.accum)
	k := len(sys) - 4
	return turbo.Decode(sys[:k], par1[:k], par2[:k], k, check, maxIter)
}

// ResetOnSuccess clears combining state after a successful decode, so the
// next BeginTransmission with a fresh NDI starts from an empty accumulator
// (spec.md §3's rv_idx=0 reset/re-encode behavior).
func (p *Process) ResetOnSuccess() {
	p.codeBlock = nil
	p.accum = nil
}
