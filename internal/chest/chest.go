// Package chest implements the channel estimator of spec.md §4.3: least
// squares at each pilot, a low-pass kernel across frequency on the
// pilot-bearing symbols, then linear interpolation across time between
// those symbols. No low-pass filter is applied in the time direction.
package chest

import (
	"math"

	"github.com/n5hk/ltephy/internal/refsignal"
	"github.com/n5hk/ltephy/pkg/cell"
)

// Config is the estimator's plain configuration struct.
type Config struct {
	Cell cell.Descriptor
	// FreqTaps sizes the frequency-direction smoothing kernel (odd, >=1).
	// TimeTaps is stored but not read by Estimate: the time direction is
	// linear interpolation between pilot-bearing symbols. Zero means "use
	// the default" (3 and 9 respectively).
	TimeTaps, FreqTaps int
}

// Estimator produces one channel estimate grid per antenna port.
type Estimator struct {
	cfg Config
	gen *refsignal.Generator
}

// New constructs an Estimator for cfg.
func New(cfg Config) *Estimator {
	if cfg.TimeTaps == 0 {
		cfg.TimeTaps = 3
	}
	if cfg.FreqTaps == 0 {
		cfg.FreqTaps = 9
	}
	return &Estimator{cfg: cfg, gen: refsignal.New(cfg.Cell)}
}

// Estimate returns the channel estimate grid for one port, given the
// received resource grid of one subframe and subframeSlot0 (the even slot
// index, 0..19, of that subframe's first slot).
//
// It never returns NaN/Inf for finite input: symbols with no pilots and no
// in-kernel neighbors fall back to the nearest pilot-bearing value.
func (e *Estimator) Estimate(rx cell.Grid, port, subframeSlot0 int) cell.Grid {
	d := e.cfg.Cell
	out := cell.NewGrid(d)
	pilots := e.gen.Pilots(port, subframeSlot0)

	// LS estimate at each pilot: out[sym][freq] = Y/X.
	ls := cell.NewGrid(d)
	mask := make([][]bool, ls.Rows)
	for i := range mask {
		mask[i] = make([]bool, ls.Cols)
	}
	for _, p := range pilots {
		y := rx.At(p.Symbol, p.Freq)
		h := y / p.Value
		ls.Set(p.Symbol, p.Freq, h)
		mask[p.Symbol][p.Freq] = true
	}

	// Frequency-direction interpolation on pilot-bearing symbols.
	freqFilled := cell.NewGrid(d)
	freqMask := make([][]bool, ls.Rows)
	for i := range freqMask {
		freqMask[i] = make([]bool, ls.Cols)
	}
	for row := 0; row < ls.Rows; row++ {
		if !rowHasPilot(mask[row]) {
			continue
		}
		interp1D(ls.Row(row), mask[row], freqFilled.Row(row), freqMask[row], e.cfg.FreqTaps)
	}

	// Time-direction interpolation across symbols, per subcarrier, using the
	// frequency-filled pilot-bearing rows as anchors; symbols with no
	// pilot-bearing neighbor fall back to nearest-neighbor.
	pilotRows := pilotRowIndices(mask)
	for col := 0; col < out.Cols; col++ {
		colVals := make([]complex128, len(pilotRows))
		colMask := make([]bool, len(pilotRows))
		for i, row := range pilotRows {
			if freqMask[row][col] {
				colVals[i] = freqFilled.At(row, col)
				colMask[i] = true
			}
		}
		full := make([]complex128, out.Rows)
		for row := 0; row < out.Rows; row++ {
			full[row] = nearestOrInterp(row, pilotRows, colVals, colMask)
		}
		for row := 0; row < out.Rows; row++ {
			out.Set(row, col, full[row])
		}
	}
	return out
}

func rowHasPilot(mask []bool) bool {
	for _, m := range mask {
		if m {
			return true
		}
	}
	return false
}

func pilotRowIndices(mask [][]bool) []int {
	var rows []int
	for i, m := range mask {
		if rowHasPilot(m) {
			rows = append(rows, i)
		}
	}
	return rows
}

// interp1D fills dst from src at points where mask is true, interpolating
// the rest with a truncated low-pass kernel of the given tap count
// (renormalized at the edges so DC gain stays 1, per spec.md §4.3).
func interp1D(src []complex128, mask []bool, dst []complex128, dstMask []bool, taps int) {
	known := make([]int, 0, len(src))
	for i, m := range mask {
		if m {
			known = append(known, i)
		}
	}
	if len(known) == 0 {
		return
	}
	half := taps / 2
	for i := range dst {
		var sum complex128
		var wsum float64
		for _, k := range known {
			dist := i - k
			if dist < -half || dist > half {
				continue
			}
			w := lpfWeight(dist, half)
			sum += src[k] * complex(w, 0)
			wsum += w
		}
		if wsum > 0 {
			dst[i] = sum / complex(wsum, 0)
			dstMask[i] = true
		}
	}
}

// lpfWeight is a raised-cosine tap for |dist| <= half; interp1D never asks
// for taps outside that range.
func lpfWeight(dist, half int) float64 {
	if half == 0 {
		return 1
	}
	x := float64(dist) / float64(half+1)
	return 0.5 * (1 + math.Cos(math.Pi*x))
}

// nearestOrInterp interpolates a single column's time dimension between the
// two bracketing pilot-bearing rows (spec.md §4.3); if row itself is
// pilot-bearing and known, returns it directly; otherwise falls back to the
// nearest known value if only one side is available.
func nearestOrInterp(row int, pilotRows []int, vals []complex128, known []bool) complex128 {
	var before, after = -1, -1
	for i, r := range pilotRows {
		if !known[i] {
			continue
		}
		if r <= row && (before == -1 || r > pilotRows[before]) {
			before = i
		}
		if r >= row && (after == -1 || r < pilotRows[after]) {
			after = i
		}
	}
	switch {
	case before == -1 && after == -1:
		return 0
	case before == -1:
		return vals[after]
	case after == -1:
		return vals[before]
	case pilotRows[before] == pilotRows[after]:
		return vals[before]
	default:
		rb, ra := pilotRows[before], pilotRows[after]
		frac := float64(row-rb) / float64(ra-rb)
		return vals[before]*complex(1-frac, 0) + vals[after]*complex(frac, 0)
	}
}
