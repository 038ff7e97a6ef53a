package conv

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTailBitingRoundTripExactSoft(t *testing.T) {
	input := make([]byte, 40)
	for i := range input {
		input[i] = byte(i % 2) // [0,1,0,1,...]
	}
	encoded := Encode(input, true)
	require.Len(t, encoded, 120)

	soft := make([]byte, len(encoded))
	for i, b := range encoded {
		if b == 1 {
			soft[i] = 255
		} else {
			soft[i] = 0
		}
	}

	decoded, err := Decode(soft, 40, true)
	require.NoError(t, err)
	require.Equal(t, input, decoded)
}

func TestNonTailBitingRoundTripNoisy(t *testing.T) {
	input := []byte{1, 0, 0, 1, 1, 0, 1, 0, 0, 0, 1, 1, 1, 0, 1, 0, 1, 1, 0, 0}
	encoded := Encode(input, false)

	soft := make([]byte, len(encoded))
	for i, b := range encoded {
		v := byte(40)
		if b == 1 {
			v = 215
		}
		// flip one bit's confidence slightly, still decodable
		if i == 3 {
			v = 128
		}
		soft[i] = v
	}
	decoded, err := Decode(soft, len(input), false)
	require.NoError(t, err)
	require.Equal(t, input, decoded)
}

func TestDecodeRejectsWrongLength(t *testing.T) {
	_, err := Decode(make([]byte, 10), 4, false)
	require.Error(t, err)
}
