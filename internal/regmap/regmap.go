// Package regmap implements REG/CCE indexing for the control region
// (PBCH excluded; PCFICH, PHICH, PDCCH) per spec.md §4.6.
package regmap

import (
	"github.com/n5hk/ltephy/internal/errs"
	"github.com/n5hk/ltephy/pkg/cell"
)

// REG identifies one resource-element group by its control-region symbol
// and its ordinal position within that symbol's PRBs (PRB-major,
// ascending), matching the "symbol-major, subcarrier-ascending" global
// ordering of spec.md §3.
type REG struct {
	Symbol int
	PRB    int
	Index  int // 0-based REG ordinal within this PRB at this symbol
}

// regsPerPRB follows 36.211 Table 6.2.4-1: REGs available per PRB for
// control symbols 0..3, with/without the extra symbol-1 pilots used by a
// 4-antenna-port cell (4 pilot REs leave 8 REs, i.e. 2 REGs).
func regsPerPRB(symbol int, nofPorts int) int {
	if symbol == 1 && nofPorts == 4 {
		return 2
	}
	if symbol == 0 {
		return 2
	}
	return 3
}

// Config describes one cell's control-region layout.
type Config struct {
	Cell            cell.Descriptor
	PhichResources  float64 // Ng in {1/6, 1/2, 1, 2}
	PhichExtended   bool
}

// MaxCtrlSymbols returns 4 if nof_prb<=10 else 3, per spec.md §3.
func MaxCtrlSymbols(nofPRB int) int {
	if nofPRB <= 10 {
		return 4
	}
	return 3
}

// Map is the initialized REG/CCE layout for one cell configuration: every
// control-region REG, with PCFICH and PHICH REGs marked assigned and the
// remainder available for PDCCH.
type Map struct {
	cfg      Config
	all      []REG
	assigned map[REG]string // "pcfich" / "phich" / "" (unassigned)
	pcfich   []REG
	phich    [][]REG // one slice of 3 REGs per PHICH group
	pdcchPool []REG
}

// New builds the REG enumeration and assigns PCFICH and PHICH groups.
func New(cfg Config) (*Map, error) {
	d := cfg.Cell
	maxSym := MaxCtrlSymbols(d.NofPRB)

	m := &Map{cfg: cfg, assigned: map[REG]string{}}
	for sym := 0; sym < maxSym; sym++ {
		perPRB := regsPerPRB(sym, d.NofPorts)
		for prb := 0; prb < d.NofPRB; prb++ {
			for idx := 0; idx < perPRB; idx++ {
				m.all = append(m.all, REG{Symbol: sym, PRB: prb, Index: idx})
			}
		}
	}

	if err := m.assignPCFICH(); err != nil {
		return nil, err
	}
	m.assignPHICH()
	m.buildPDCCHPool()
	return m, nil
}

// AllREGs returns every REG in the control region, in global order.
func (m *Map) AllREGs() []REG { return m.all }

// assignPCFICH marks the 4 PCFICH REGs at symbol 0, subcarrier offsets
// k_hat + i*(nof_prb/2)*6 mod (nof_prb*12), per spec.md §3.
func (m *Map) assignPCFICH() error {
	d := m.cfg.Cell
	nSC := d.NofPRB * 12
	kHat := 6 * (d.ID % (2 * d.NofPRB))
	for i := 0; i < 4; i++ {
		k := (kHat + i*(d.NofPRB/2)*6) % nSC
		prb := k / 12
		reg, err := m.firstFreeAt(0, prb)
		if err != nil {
			return err
		}
		m.assigned[reg] = "pcfich"
		m.pcfich = append(m.pcfich, reg)
	}
	return nil
}

// firstFreeAt returns the lowest-index unassigned REG at (symbol, prb).
func (m *Map) firstFreeAt(symbol, prb int) (REG, error) {
	for _, r := range m.all {
		if r.Symbol == symbol && r.PRB == prb {
			if _, taken := m.assigned[r]; !taken {
				return r, nil
			}
		}
	}
	return REG{}, errs.ResourceExhausted
}

// ngroups returns the number of PHICH groups, ceil(Ng*nof_prb/8), per
// spec.md §3 (the canonical formula selected by SPEC_FULL.md's Open
// Question resolution #1).
func (m *Map) ngroups() int {
	d := m.cfg.Cell
	n := m.cfg.PhichResources * float64(d.NofPRB)
	g := int(n / 8)
	if float64(g)*8 < n {
		g++
	}
	if g < 1 {
		g = 1
	}
	return g
}

// assignPHICH marks 3 REGs per PHICH group across symbols {0} (Normal
// length) or {0,1,2} (Extended), choosing free REGs not claimed by PCFICH.
func (m *Map) assignPHICH() {
	groups := m.ngroups()
	d := m.cfg.Cell
	symbolsUsed := 1
	if m.cfg.PhichExtended {
		symbolsUsed = 3
	}
	for g := 0; g < groups; g++ {
		var group []REG
		for i := 0; i < 3; i++ {
			sym := 0
			if symbolsUsed == 3 {
				sym = i
			}
			prb := (g*3 + i) % d.NofPRB
			reg, err := m.firstFreeAt(sym, prb)
			if err != nil {
				continue
			}
			m.assigned[reg] = "phich"
			group = append(group, reg)
		}
		if len(group) > 0 {
			m.phich = append(m.phich, group)
		}
	}
}

func (m *Map) buildPDCCHPool() {
	for _, r := range m.all {
		if _, taken := m.assigned[r]; !taken {
			m.pdcchPool = append(m.pdcchPool, r)
		}
	}
}

// PCFICH returns the 4 REGs carrying PCFICH.
func (m *Map) PCFICH() []REG { return m.pcfich }

// PHICHGroups returns one 3-REG slice per PHICH group.
func (m *Map) PHICHGroups() [][]REG { return m.phich }

// PDCCHPool returns the REGs remaining for PDCCH after PCFICH/PHICH, in the
// pre-interleave order (symbol-major, PRB-ascending).
func (m *Map) PDCCHPool() []REG { return m.pdcchPool }

// interleaverPerm is 36.212 Table 5.1.4-2's inter-column permutation for
// the 32-column sub-block interleaver, reused here (per spec.md §4.6) to
// permute the PDCCH REG pool.
var interleaverPerm = [32]int{
	1, 17, 9, 25, 5, 21, 13, 29,
	3, 19, 11, 27, 7, 23, 15, 31,
	0, 16, 8, 24, 4, 20, 12, 28,
	2, 18, 10, 26, 6, 22, 14, 30,
}

// InterleavedPDCCHPool returns the PDCCH REG pool after the sub-block
// interleaver and a cyclic shift of cell_id mod len(pool), per spec.md §4.6.
func (m *Map) InterleavedPDCCHPool() []REG {
	pool := m.pdcchPool
	n := len(pool)
	if n == 0 {
		return nil
	}
	cols := 32
	rows := (n + cols - 1) / cols

	// Write pool row-major into a rows*cols grid (padding with a sentinel),
	// read out column-major following interleaverPerm, then drop sentinels.
	const empty = -1
	grid := make([]int, rows*cols)
	for i := range grid {
		grid[i] = empty
	}
	for i := range pool {
		grid[i] = i
	}

	out := make([]REG, 0, n)
	for _, col := range interleaverPerm {
		for row := 0; row < rows; row++ {
			v := grid[row*cols+col]
			if v != empty {
				out = append(out, pool[v])
			}
		}
	}

	shift := m.cfg.Cell.ID % n
	shifted := make([]REG, n)
	for i := range out {
		shifted[i] = out[(i+shift)%n]
	}
	return shifted
}

// CCE is 9 consecutive interleaved REGs.
type CCE []REG

// CCEs groups the interleaved PDCCH pool into 9-REG CCEs, truncating any
// trailing partial group (which never carries a usable CCE).
func (m *Map) CCEs() []CCE {
	pool := m.InterleavedPDCCHPool()
	n := len(pool) / 9
	out := make([]CCE, n)
	for i := 0; i < n; i++ {
		out[i] = CCE(pool[9*i : 9*i+9])
	}
	return out
}
