package phich

import (
	"testing"

	"github.com/n5hk/ltephy/pkg/cell"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeRoundTripACK(t *testing.T) {
	syms, err := Encode(true, 1, cell.Normal, 5, 2)
	require.NoError(t, err)
	require.Len(t, syms, 12)

	ack, err := Decode(syms, 1, cell.Normal, 5, 2)
	require.NoError(t, err)
	require.True(t, ack)
}

func TestEncodeDecodeRoundTripNACK(t *testing.T) {
	syms, err := Encode(false, 2, cell.Normal, 5, 2)
	require.NoError(t, err)

	ack, err := Decode(syms, 2, cell.Normal, 5, 2)
	require.NoError(t, err)
	require.False(t, ack)
}

func TestCodeDivisionMultiplexTwoUsersSeparateOnDecode(t *testing.T) {
	group := make([]complex128, 12)
	a, err := Encode(true, 0, cell.Normal, 9, 4)
	require.NoError(t, err)
	b, err := Encode(false, 1, cell.Normal, 9, 4)
	require.NoError(t, err)
	require.NoError(t, AddToGroup(group, a))
	require.NoError(t, AddToGroup(group, b))

	ackA, err := Decode(group, 0, cell.Normal, 9, 4)
	require.NoError(t, err)
	require.True(t, ackA)

	ackB, err := Decode(group, 1, cell.Normal, 9, 4)
	require.NoError(t, err)
	require.False(t, ackB)
}

func TestNumGroups(t *testing.T) {
	require.Equal(t, 1, NumGroups(1.0/6, 6))
	require.Equal(t, 4, NumGroups(1, 25))
}
