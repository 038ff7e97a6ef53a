package regmap

import (
	"testing"

	"github.com/n5hk/ltephy/pkg/cell"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestREGEnumerationCount(t *testing.T) {
	d, err := cell.New(1, 25, 1, cell.Normal)
	require.NoError(t, err)
	m, err := New(Config{Cell: d, PhichResources: 1.0})
	require.NoError(t, err)

	maxSym := MaxCtrlSymbols(d.NofPRB)
	want := 0
	for sym := 0; sym < maxSym; sym++ {
		want += d.NofPRB * regsPerPRB(sym, d.NofPorts)
	}
	assert.Equal(t, want, len(m.AllREGs()))
}

func TestPCFICHAndPHICHDisjointSubset(t *testing.T) {
	d, err := cell.New(167, 50, 2, cell.Normal)
	require.NoError(t, err)
	m, err := New(Config{Cell: d, PhichResources: 1.0})
	require.NoError(t, err)

	all := map[REG]bool{}
	for _, r := range m.AllREGs() {
		all[r] = true
	}

	seen := map[REG]bool{}
	for _, r := range m.PCFICH() {
		require.True(t, all[r])
		require.False(t, seen[r], "PCFICH REGs must be pairwise disjoint")
		seen[r] = true
	}
	require.Len(t, m.PCFICH(), 4)

	for _, group := range m.PHICHGroups() {
		for _, r := range group {
			require.True(t, all[r])
			require.False(t, seen[r], "PHICH REGs must not overlap PCFICH or other PHICH groups")
			seen[r] = true
		}
	}
}

func TestCCEsAreNineRegAggregates(t *testing.T) {
	d, err := cell.New(1, 25, 1, cell.Normal)
	require.NoError(t, err)
	m, err := New(Config{Cell: d, PhichResources: 1.0})
	require.NoError(t, err)

	for _, c := range m.CCEs() {
		require.Len(t, c, 9)
	}
}
