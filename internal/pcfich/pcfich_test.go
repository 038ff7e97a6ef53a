package pcfich

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeRoundTripNoiseless(t *testing.T) {
	for cfi := 1; cfi <= 3; cfi++ {
		syms, err := Encode(cfi, 42, 3)
		require.NoError(t, err)
		require.Len(t, syms, 16)

		got, err := Decode(syms, 42, 3)
		require.NoError(t, err)
		require.Equal(t, cfi, got)
	}
}

func TestDecodeUnrelatedSymbolsDoesNotPanic(t *testing.T) {
	syms := make([]complex128, 16)
	for i := range syms {
		syms[i] = complex(1, 1)
	}
	_, err := Decode(syms, 7, 0)
	// A constant-symbol stream may or may not cross the distance threshold;
	// the call must not panic either way.
	_ = err
}

func TestEncodeRejectsInvalidCFI(t *testing.T) {
	_, err := Encode(4, 1, 0)
	require.Error(t, err)
}
