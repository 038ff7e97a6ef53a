// Package modem implements the four LTE constellations of spec.md §4.9
// (BPSK, QPSK, 16QAM, 64QAM) with Gray-coded maps, hard slicers, and soft
// (exact/max-log) LLR demappers.
package modem

import (
	"math"

	"github.com/n5hk/ltephy/internal/errs"
)

// Constellation is the sum type of supported modulation orders, dispatched
// by enum per SPEC_FULL.md §9 rather than a function-pointer table.
type Constellation int

const (
	BPSK Constellation = iota
	QPSK
	QAM16
	QAM64
)

// BitsPerSymbol returns the number of coded bits each constellation symbol
// carries.
func (c Constellation) BitsPerSymbol() int {
	switch c {
	case BPSK:
		return 1
	case QPSK:
		return 2
	case QAM16:
		return 4
	case QAM64:
		return 6
	default:
		return 0
	}
}

var invSqrt2 = 1 / math.Sqrt(2)
var invSqrt10 = 1 / math.Sqrt(10)
var invSqrt42 = 1 / math.Sqrt(42)

// table returns the full symbol table for c, indexed by the bit pattern
// formed MSB-first from its BitsPerSymbol() input bits (36.211 §7.1 Gray
// mapping).
func table(c Constellation) []complex128 {
	switch c {
	case BPSK:
		return []complex128{complex(invSqrt2, invSqrt2), complex(-invSqrt2, -invSqrt2)}
	case QPSK:
		return qpskTable()
	case QAM16:
		return qam16Table()
	case QAM64:
		return qam64Table()
	default:
		return nil
	}
}

func qpskTable() []complex128 {
	t := make([]complex128, 4)
	for i := 0; i < 4; i++ {
		b0 := (i >> 1) & 1
		b1 := i & 1
		re := signFor(b0) * invSqrt2
		im := signFor(b1) * invSqrt2
		t[i] = complex(re, im)
	}
	return t
}

func signFor(bit int) float64 {
	if bit == 0 {
		return 1
	}
	return -1
}

// grayLevel2 maps a 2-bit Gray code to the amplitude level {-3,-1,1,3}-ish
// ladder used by 16/64 QAM per 36.211 Table 7.1.3-1/7.1.4-1; b0 is the sign
// bit, b1 the magnitude bit.
func grayLevel2(b0, b1 int) float64 {
	sign := signFor(b0)
	if b1 == 0 {
		return sign * 1
	}
	return sign * 3
}

func qam16Table() []complex128 {
	t := make([]complex128, 16)
	for i := 0; i < 16; i++ {
		b := bits(i, 4)
		re := grayLevel2(b[0], b[2]) * invSqrt10
		im := grayLevel2(b[1], b[3]) * invSqrt10
		t[i] = complex(re, im)
	}
	return t
}

// grayLevel3 maps a 3-bit Gray pattern to the amplitude ladder
// {-7,-5,-3,-1,1,3,5,7} per 36.211 Table 7.1.4-1 for 64QAM.
func grayLevel3(b0, b1, b2 int) float64 {
	sign := signFor(b0)
	var mag float64
	switch {
	case b1 == 0 && b2 == 0:
		mag = 3
	case b1 == 0 && b2 == 1:
		mag = 1
	case b1 == 1 && b2 == 0:
		mag = 5
	default: // b1==1, b2==1
		mag = 7
	}
	return sign * mag
}

func qam64Table() []complex128 {
	t := make([]complex128, 64)
	for i := 0; i < 64; i++ {
		b := bits(i, 6)
		re := grayLevel3(b[0], b[2], b[4]) * invSqrt42
		im := grayLevel3(b[1], b[3], b[5]) * invSqrt42
		t[i] = complex(re, im)
	}
	return t
}

// bits returns the n MSB-first bits of v.
func bits(v, n int) []int {
	out := make([]int, n)
	for i := 0; i < n; i++ {
		out[i] = (v >> uint(n-1-i)) & 1
	}
	return out
}

// Mapper modulates/demaps for one fixed constellation.
type Mapper struct {
	c   Constellation
	tbl []complex128
	bps int
}

// New constructs a Mapper for constellation c.
func New(c Constellation) (*Mapper, error) {
	tbl := table(c)
	if tbl == nil {
		return nil, errs.InvalidInput
	}
	return &Mapper{c: c, tbl: tbl, bps: c.BitsPerSymbol()}, nil
}

// Modulate packs bits (0/1 bytes) into complex symbols, bps bits per symbol.
func (m *Mapper) Modulate(bits []byte) ([]complex128, error) {
	if len(bits)%m.bps != 0 {
		return nil, errs.InvalidInput
	}
	out := make([]complex128, len(bits)/m.bps)
	for i := range out {
		idx := 0
		for j := 0; j < m.bps; j++ {
			idx = (idx << 1) | int(bits[i*m.bps+j])
		}
		out[i] = m.tbl[idx]
	}
	return out, nil
}

// HardDemap slices each received symbol to the nearest constellation point
// and returns its bit pattern.
func (m *Mapper) HardDemap(rx []complex128) []byte {
	out := make([]byte, len(rx)*m.bps)
	for i, r := range rx {
		best, bestDist := 0, math.Inf(1)
		for idx, s := range m.tbl {
			d := sqDist(r, s)
			if d < bestDist {
				bestDist, best = d, idx
			}
		}
		for j := 0; j < m.bps; j++ {
			out[i*m.bps+j] = byte((best >> uint(m.bps-1-j)) & 1)
		}
	}
	return out
}

// SoftDemap computes per-bit LLRs for each received symbol with noise
// variance sigma2, either exactly (log-sum over all symbols, exact=true) or
// via the max-log approximation of spec.md §4.9. A positive LLR favors bit 1.
func (m *Mapper) SoftDemap(rx []complex128, sigma2 float64, exact bool) []float64 {
	out := make([]float64, len(rx)*m.bps)
	for i, r := range rx {
		for bitPos := 0; bitPos < m.bps; bitPos++ {
			if exact {
				out[i*m.bps+bitPos] = exactLLR(m.tbl, r, sigma2, bitPos, m.bps)
			} else {
				out[i*m.bps+bitPos] = maxLogLLR(m.tbl, r, sigma2, bitPos, m.bps)
			}
		}
	}
	return out
}

func sqDist(a, b complex128) float64 {
	d := a - b
	re, im := real(d), imag(d)
	return re*re + im*im
}

func maxLogLLR(tbl []complex128, r complex128, sigma2 float64, bitPos, bps int) float64 {
	min0, min1 := math.Inf(1), math.Inf(1)
	for idx, s := range tbl {
		bit := (idx >> uint(bps-1-bitPos)) & 1
		d := sqDist(r, s)
		if bit == 0 {
			if d < min0 {
				min0 = d
			}
		} else if d < min1 {
			min1 = d
		}
	}
	return (min0 - min1) / sigma2
}

func exactLLR(tbl []complex128, r complex128, sigma2 float64, bitPos, bps int) float64 {
	var sum0, sum1 float64
	for idx, s := range tbl {
		bit := (idx >> uint(bps-1-bitPos)) & 1
		p := math.Exp(-sqDist(r, s) / sigma2)
		if bit == 0 {
			sum0 += p
		} else {
			sum1 += p
		}
	}
	return math.Log(sum1) - math.Log(sum0)
}
