// Package scrambling implements the per-channel Gold-sequence scrambler of
// spec.md §4.10. A Scrambler is stateless across calls within a subframe:
// each call regenerates its chip stream from (channel, subframe, cell_id,
// rnti, q) rather than carrying hidden state forward.
package scrambling

import "github.com/n5hk/ltephy/internal/numerics"

// Channel identifies which 36.211 §6.3.1 c_init formula to use.
type Channel int

const (
	PDSCH Channel = iota
	PBCH
	PCFICH
	PHICH
	PDCCH
)

// Config selects the scrambling key. RNTI and Q (codeword index, 0 or 1)
// are only meaningful for PDSCH.
type Config struct {
	Channel   Channel
	CellID    int
	Subframe  int // 0..9
	RNTI      uint32
	Q         int
	NCp       int // 0 Normal, 1 Extended; no channel's c_init reads it
}

// Scrambler produces the Gold-sequence chip/bit stream for one Config.
type Scrambler struct {
	cfg Config
}

// New constructs a Scrambler for cfg.
func New(cfg Config) *Scrambler {
	return &Scrambler{cfg: cfg}
}

// cInit computes the 36.211 §6.3.1 seed for the configured channel.
func (s *Scrambler) cInit() uint32 {
	c := s.cfg
	switch c.Channel {
	case PBCH:
		return uint32(c.CellID)
	case PCFICH:
		ns := 2 * c.Subframe
		return uint32(1<<9)*uint32(ns+1)*uint32(2*c.CellID+1) + uint32(2*c.CellID)
	case PHICH:
		ns := 2 * c.Subframe
		return uint32(1<<9)*uint32(ns+1)*uint32(2*c.CellID+1) + uint32(2*c.CellID)
	case PDCCH:
		ns := 2 * c.Subframe
		return uint32(1<<9)*uint32(ns+1)*uint32(2*c.CellID+1) + uint32(2*c.CellID)
	default: // PDSCH
		ns := 2 * c.Subframe
		q := uint32(c.Q)
		return (c.RNTI<<14 + q<<13 + uint32(ns)<<9 + uint32(c.CellID)) & ((1 << 31) - 1)
	}
}

// XorBits scrambles data (0/1 bytes) in place with XOR against the Gold
// sequence, i.e. applies the channel's Gold-PRS chip-for-chip.
func (s *Scrambler) XorBits(data []byte) {
	c := s.cInit()
	bits := numerics.GoldBits(c, len(data))
	for i := range data {
		data[i] ^= bits[i]
	}
}

// SignFlipFloats scrambles LLR-domain soft values by flipping sign wherever
// the scrambling bit is 1, the LLR-domain equivalent of XorBits.
func (s *Scrambler) SignFlipFloats(data []float64) {
	c := s.cInit()
	bits := numerics.GoldBits(c, len(data))
	for i := range data {
		if bits[i] == 1 {
			data[i] = -data[i]
		}
	}
}
