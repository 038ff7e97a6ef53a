package pdcch

import (
	"testing"

	"github.com/n5hk/ltephy/internal/modem"
	"github.com/n5hk/ltephy/internal/scrambling"
	"github.com/stretchr/testify/require"
)

func TestSearchSpaceWithinBounds(t *testing.T) {
	cands := SearchSpace(0x1234, 3, 44, false)
	require.NotEmpty(t, cands)
	for _, c := range cands {
		require.GreaterOrEqual(t, c.StartCCE, 0)
		require.LessOrEqual(t, c.StartCCE+c.L, 44)
	}
}

func TestEncodeDecodeRoundTripFormat1C(t *testing.T) {
	nofPRB := 25
	rnti := uint32(0xABCD)
	cellID, subframe := 17, 4

	size, err := dciSizeBits(Format1C, nofPRB)
	require.NoError(t, err)

	bits := make([]byte, size)
	for i := range bits {
		bits[i] = byte((i * 3) % 2)
	}
	coded, err := Encode(DCI{Format: Format1C, Bits: bits, RNTI: rnti}, nofPRB)
	require.NoError(t, err)

	const cceCapacity = 2 * reBitsPerCCE
	padded := make([]byte, cceCapacity)
	copy(padded, coded)

	scr := scrambling.New(scrambling.Config{Channel: scrambling.PDCCH, CellID: cellID, Subframe: subframe})
	scr.XorBits(padded)

	mapper, err := modem.New(modem.QPSK)
	require.NoError(t, err)
	syms, err := mapper.Modulate(padded)
	require.NoError(t, err)

	symsPerCCE := len(syms) / 2
	cceSymbols := [][]complex128{syms[:symsPerCCE], syms[symsPerCCE:]}
	cand := Candidate{L: 2, StartCCE: 0}

	dci, err := TryDecode(cceSymbols, cand, rnti, nofPRB, cellID, subframe)
	require.NoError(t, err)
	require.Equal(t, Format1C, dci.Format)
	require.Equal(t, bits, dci.Bits)
}

func TestTryDecodeRejectsWrongRNTI(t *testing.T) {
	nofPRB := 25
	cellID, subframe := 1, 0
	size, err := dciSizeBits(Format1C, nofPRB)
	require.NoError(t, err)
	bits := make([]byte, size)

	coded, err := Encode(DCI{Format: Format1C, Bits: bits, RNTI: 0x1111}, nofPRB)
	require.NoError(t, err)
	const cceCapacity = 2 * reBitsPerCCE
	padded := make([]byte, cceCapacity)
	copy(padded, coded)

	scr := scrambling.New(scrambling.Config{Channel: scrambling.PDCCH, CellID: cellID, Subframe: subframe})
	scr.XorBits(padded)

	mapper, err := modem.New(modem.QPSK)
	require.NoError(t, err)
	syms, err := mapper.Modulate(padded)
	require.NoError(t, err)

	symsPerCCE := len(syms) / 2
	cceSymbols := [][]complex128{syms[:symsPerCCE], syms[symsPerCCE:]}
	_, err = TryDecode(cceSymbols, Candidate{L: 2, StartCCE: 0}, 0x2222, nofPRB, cellID, subframe)
	require.Error(t, err)
}
