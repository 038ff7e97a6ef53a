// Package pbch implements the broadcast channel of spec.md §4.11: MIB
// packing, CRC-16 attachment masked by antenna-port pattern, tail-biting
// convolutional coding, rate matching across 4 radio frames, and RE mapping
// into the central 72 subcarriers of symbols 0-3 of slot 1 in subframe 0.
package pbch

import (
	"github.com/n5hk/ltephy/internal/errs"
	"github.com/n5hk/ltephy/internal/fec/conv"
	"github.com/n5hk/ltephy/internal/modem"
	"github.com/n5hk/ltephy/internal/numerics"
	"github.com/n5hk/ltephy/internal/refsignal"
	"github.com/n5hk/ltephy/internal/scrambling"
	"github.com/n5hk/ltephy/pkg/cell"
)

// MIB is the master information block of spec.md §3/§6.
type MIB struct {
	NofPRB         int
	PHICHExtended  bool
	PHICHResources float64 // one of 1/6, 1/2, 1, 2
	SFN            int     // full SFN; only the 8 MSBs are carried on PBCH
}

// prbCode and phichResourceCode encode MIB fields to the 3-bit / 2-bit
// indices of 36.331, mirroring spec.md §6's packed layout.
var prbCodeTable = map[int]byte{6: 0, 15: 1, 25: 2, 50: 3, 75: 4, 100: 5}
var prbFromCode = map[byte]int{0: 6, 1: 15, 2: 25, 3: 50, 4: 75, 5: 100}

var phichResTable = []float64{1.0 / 6, 1.0 / 2, 1, 2}

func phichResCode(r float64) byte {
	for i, v := range phichResTable {
		if v == r {
			return byte(i)
		}
	}
	return 0
}

// packMIB serializes a MIB into the 24-bit vector of spec.md §6: 3 bits PRB
// code, 1 bit PHICH length, 2 bits PHICH resources, 8 MSBs of SFN, 10 spare.
func packMIB(m MIB) ([]byte, error) {
	code, ok := prbCodeTable[m.NofPRB]
	if !ok {
		return nil, errs.InvalidInput
	}
	bits := make([]byte, 24)
	i := 0
	for b := 2; b >= 0; b-- {
		bits[i] = (code >> uint(b)) & 1
		i++
	}
	if m.PHICHExtended {
		bits[i] = 1
	}
	i++
	rc := phichResCode(m.PHICHResources)
	for b := 1; b >= 0; b-- {
		bits[i] = (rc >> uint(b)) & 1
		i++
	}
	sfnMSB := byte(m.SFN >> 2) // top 8 bits of a 10-bit SFN
	for b := 7; b >= 0; b-- {
		bits[i] = (sfnMSB >> uint(b)) & 1
		i++
	}
	// remaining 10 bits are spare, left zero.
	return bits, nil
}

func unpackMIB(bits []byte) (MIB, error) {
	if len(bits) != 24 {
		return MIB{}, errs.InvalidInput
	}
	var code byte
	for b := 0; b < 3; b++ {
		code = (code << 1) | bits[b]
	}
	nofPRB, ok := prbFromCode[code]
	if !ok {
		return MIB{}, errs.InvalidInput
	}
	extended := bits[3] == 1
	var rc byte
	for b := 4; b < 6; b++ {
		rc = (rc << 1) | bits[b]
	}
	var sfnMSB byte
	for b := 6; b < 14; b++ {
		sfnMSB = (sfnMSB << 1) | bits[b]
	}
	return MIB{
		NofPRB:         nofPRB,
		PHICHExtended:  extended,
		PHICHResources: phichResTable[rc],
		SFN:            int(sfnMSB) << 2,
	}, nil
}

// antennaMaskPattern is the CRC-mask XOR pattern of spec.md §4.11, selecting
// between 1, 2 and 4 antenna ports, per 36.212 §5.3.1.1.
var antennaMaskPattern = map[int][]byte{
	1: {0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0},
	2: {1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1},
	4: {0, 1, 0, 1, 0, 1, 0, 1, 0, 1, 0, 1, 0, 1, 0, 1},
}

func crc16() *numerics.CRC { return numerics.NewCRC(numerics.PolyCRC16, 16) }

// crcBits unpacks a width-bit CRC remainder into big-endian 0/1 bytes.
func crcBits(v uint32, width int) []byte {
	out := make([]byte, width)
	for i := 0; i < width; i++ {
		out[i] = byte((v >> uint(width-1-i)) & 1)
	}
	return out
}

// attachMaskedCRC appends a 16-bit CRC over bits, XOR-masked by nofPorts'
// antenna pattern.
func attachMaskedCRC(bits []byte, nofPorts int) ([]byte, error) {
	mask, ok := antennaMaskPattern[nofPorts]
	if !ok {
		return nil, errs.InvalidInput
	}
	c := crc16()
	parity := crcBits(c.Compute(bits), c.Width())
	masked := make([]byte, len(parity))
	for i := range parity {
		masked[i] = parity[i] ^ mask[i]
	}
	return append(append([]byte{}, bits...), masked...), nil
}

// checkMaskedCRC verifies the CRC for a specific nofPorts hypothesis without
// mutating payload, per spec.md §4.11's non-destructive-check resolution.
func checkMaskedCRC(payloadPlusCRC []byte, nofPorts int) bool {
	mask, ok := antennaMaskPattern[nofPorts]
	if !ok || len(payloadPlusCRC) < 16 {
		return false
	}
	n := len(payloadPlusCRC)
	payload := payloadPlusCRC[:n-16]
	got := payloadPlusCRC[n-16:]
	c := crc16()
	expect := crcBits(c.Compute(payload), c.Width())
	for i := range expect {
		if (expect[i] ^ mask[i]) != got[i] {
			return false
		}
	}
	return true
}

const framesPerCycle = 4

// quarterLen returns 240 bits (Normal CP) or 216 bits (Extended CP) per
// radio-frame quarter, per spec.md §4.11.
func quarterLen(cp cell.CPType) int {
	if cp == cell.Extended {
		return 216
	}
	return 240
}

// rateMatch repeats/punctures the 120-bit tail-biting codeword to 4*quarterLen
// bits by cyclic repetition, the simplest rate-matching rule that preserves
// a bijective read/combine relationship across the 4 quarters.
func rateMatch(coded []byte, totalLen int) []byte {
	out := make([]byte, totalLen)
	for i := range out {
		out[i] = coded[i%len(coded)]
	}
	return out
}

// Encode produces the 4 radio-frame quarters (each quarterLen(cp) scrambled
// bits, i.e. quarterLen(cp)/2 QPSK symbols) for one MIB at a given cell
// identity and antenna-port count.
func Encode(m MIB, d cell.Descriptor, nofPorts int) ([][]complex128, error) {
	bits, err := packMIB(m)
	if err != nil {
		return nil, err
	}
	withCRC, err := attachMaskedCRC(bits, nofPorts)
	if err != nil {
		return nil, err
	}
	coded := conv.Encode(withCRC, true)

	qLen := quarterLen(d.CP)
	total := rateMatch(coded, framesPerCycle*qLen)

	quarters := make([][]complex128, framesPerCycle)
	for q := 0; q < framesPerCycle; q++ {
		scrambled := append([]byte{}, total[q*qLen:(q+1)*qLen]...)
		scr := scrambling.New(scrambling.Config{
			Channel: scrambling.PBCH,
			CellID:  d.ID,
		})
		scr.XorBits(scrambled)

		mapper, err := modem.New(modem.QPSK)
		if err != nil {
			return nil, err
		}
		syms, err := mapper.Modulate(scrambled)
		if err != nil {
			return nil, err
		}
		quarters[q] = syms
	}
	return quarters, nil
}

// pbchPositions returns the grid (row, col) pairs for symbols 0..3 of slot 1
// within the central 72 subcarriers, excluding CRS pilots for any of
// maxPorts antenna ports, per spec.md §4.11/§4.5.
func pbchPositions(d cell.Descriptor, maxPorts int) []struct{ Row, Col int } {
	gen := refsignal.New(d)
	excluded := map[[2]int]bool{}
	for port := 0; port < maxPorts; port++ {
		for _, p := range gen.Pilots(port, 0) {
			excluded[[2]int{p.Symbol, p.Freq}] = true
		}
	}

	perSlot := d.NofSymbolsPerSlot()
	dc := d.DCIndex()
	var positions []struct{ Row, Col int }
	for sym := 0; sym < 4; sym++ {
		row := perSlot + sym
		for k := -36; k < 36; k++ {
			col := dc + k
			if col < 0 || col >= d.NofSubcarriers() {
				continue
			}
			if excluded[[2]int{row, col}] {
				continue
			}
			positions = append(positions, struct{ Row, Col int }{row, col})
		}
	}
	return positions
}

// InsertQuarter writes one radio frame's worth of QPSK symbols into grid at
// the PBCH RE positions, skipping CRS, per spec.md §4.11.
func InsertQuarter(grid cell.Grid, syms []complex128, maxPorts int) error {
	positions := pbchPositions(grid.Cell, maxPorts)
	if len(positions) < len(syms) {
		return errs.ResourceExhausted
	}
	for i, s := range syms {
		grid.Set(positions[i].Row, positions[i].Col, s)
	}
	return nil
}

// ExtractQuarter reads one radio frame's worth of received symbols back out
// of grid at the PBCH RE positions.
func ExtractQuarter(grid cell.Grid, count int, maxPorts int) ([]complex128, error) {
	positions := pbchPositions(grid.Cell, maxPorts)
	if len(positions) < count {
		return nil, errs.ResourceExhausted
	}
	out := make([]complex128, count)
	for i := 0; i < count; i++ {
		out[i] = grid.At(positions[i].Row, positions[i].Col)
	}
	return out, nil
}

// Decode accumulates up to 4 radio frames of received quarter symbols,
// taken as consecutive frames whose position in the 4-frame cycle is
// unknown: it tries each of the 4 cyclic start offsets against every
// {1,2,4}-port hypothesis and returns the first MIB whose CRC checks, per
// spec.md §4.11/§7's PBCH accumulation policy. Other orderings of the
// supplied quarters are not searched.
func Decode(quarters [][]complex128, d cell.Descriptor) (MIB, int, error) {
	if len(quarters) == 0 || len(quarters) > framesPerCycle {
		return MIB{}, 0, errs.InvalidInput
	}
	qLen := quarterLen(d.CP)
	const codedLen = 120 // 3 * (24 MIB bits + 16 CRC bits)

	for startOffset := 0; startOffset < framesPerCycle; startOffset++ {
		codedAccum := make([]float64, codedLen)
		anyFrame := false
		for i, q := range quarters {
			frameIdx := (startOffset + i) % framesPerCycle
			llrs, err := demodQuarter(q, d)
			if err != nil || len(llrs) != qLen {
				continue
			}
			anyFrame = true
			for k, v := range llrs {
				pos := (frameIdx*qLen + k) % codedLen
				codedAccum[pos] += v
			}
		}
		if !anyFrame {
			continue
		}

		soft := make([]byte, codedLen)
		for j, v := range codedAccum {
			if v > 0 {
				soft[j] = 255
			} else {
				soft[j] = 0
			}
		}

		payload, err := conv.Decode(soft, 40, true)
		if err != nil {
			continue
		}
		for _, nofPorts := range []int{1, 2, 4} {
			if !checkMaskedCRC(payload, nofPorts) {
				continue
			}
			mib, err := unpackMIB(payload[:24])
			if err != nil {
				continue
			}
			return mib, nofPorts, nil
		}
	}
	return MIB{}, 0, errs.NotFound
}

// demodQuarter descrambles and soft-demaps one radio frame's symbols into
// per-coded-bit LLRs (positive favors 1), per spec.md §4.11.
func demodQuarter(syms []complex128, d cell.Descriptor) ([]float64, error) {
	mapper, err := modem.New(modem.QPSK)
	if err != nil {
		return nil, err
	}
	llrs := mapper.SoftDemap(syms, 1.0, false)

	scr := scrambling.New(scrambling.Config{
		Channel: scrambling.PBCH,
		CellID:  d.ID,
	})
	scr.SignFlipFloats(llrs)
	return llrs, nil
}
