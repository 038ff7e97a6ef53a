// Command ltephy-bench reads a raw IQ capture, runs cell search and MIB
// acquisition, and prints the recovered system information.
package main

import (
	"encoding/binary"
	"fmt"
	"math"
	"os"

	"github.com/charmbracelet/log"
	"github.com/n5hk/ltephy/internal/acq"
	"github.com/n5hk/ltephy/internal/logging"
	"github.com/n5hk/ltephy/internal/ofdm"
	"github.com/n5hk/ltephy/internal/pbch"
	"github.com/n5hk/ltephy/pkg/cell"
	"github.com/spf13/pflag"
)

// sampleFormat selects how raw bytes are interpreted as IQ samples.
type sampleFormat string

const (
	formatFloat32   sampleFormat = "float32"
	formatShort16   sampleFormat = "short16"
	formatComplex64 sampleFormat = "complex64"
)

func main() {
	var (
		inputPath  = pflag.StringP("input", "i", "", "raw IQ capture file")
		format     = pflag.StringP("format", "f", string(formatComplex64), "sample format: float32, short16, complex64")
		nofPRB     = pflag.IntP("nof-prb", "p", 25, "cell bandwidth in PRBs")
		sampleRate = pflag.Float64P("sample-rate", "r", 1.92e6, "capture sample rate in Hz")
		verbose    = pflag.BoolP("verbose", "v", false, "enable debug logging")
	)
	pflag.Parse()

	level := log.InfoLevel
	if *verbose {
		level = log.DebugLevel
	}
	logger := logging.New("ltephy-bench", level)

	if *inputPath == "" {
		logger.Error("missing required --input")
		pflag.Usage()
		os.Exit(2)
	}

	samples, err := readIQFile(*inputPath, sampleFormat(*format))
	if err != nil {
		logger.Error("failed to read IQ capture", "err", err)
		os.Exit(1)
	}
	logger.Info("loaded capture", "samples", len(samples))

	if err := run(logger, samples, *nofPRB, *sampleRate); err != nil {
		logger.Error("acquisition failed", "err", err)
		os.Exit(1)
	}
}

func run(logger logging.Logger, samples []complex128, nofPRB int, sampleRate float64) error {
	d, err := cell.New(0, nofPRB, 1, cell.Normal)
	if err != nil {
		return fmt.Errorf("provisional cell descriptor: %w", err)
	}

	detector := acq.New(d.SymbolSize(), sampleRate)
	peak, err := detector.Search(samples)
	if err != nil {
		return fmt.Errorf("PSS search: %w", err)
	}
	logger.Info("PSS acquired", "nid2", peak.NID2, "sample_idx", peak.SampleIdx, "cfo_hz", peak.CFOHz)

	modem := ofdm.New(ofdm.Config{Cell: d})
	need := modem.SubframeLength()
	if peak.SampleIdx+need > len(samples) {
		return fmt.Errorf("insufficient samples after PSS peak for one subframe")
	}
	grid, err := modem.Demod(samples[peak.SampleIdx : peak.SampleIdx+need])
	if err != nil {
		return fmt.Errorf("OFDM demod: %w", err)
	}

	quarter, err := pbch.ExtractQuarter(grid, 120, 4) // 240 bits = 120 QPSK symbols (Normal CP)
	if err != nil {
		return fmt.Errorf("PBCH RE extraction: %w", err)
	}
	mib, nofPorts, err := pbch.Decode([][]complex128{quarter}, d)
	if err != nil {
		return fmt.Errorf("PBCH decode: %w", err)
	}

	fmt.Printf("MIB: nof_prb=%d phich_extended=%v phich_resources=%.3f sfn=%d nof_ports=%d\n",
		mib.NofPRB, mib.PHICHExtended, mib.PHICHResources, mib.SFN, nofPorts)
	return nil
}

// readIQFile loads a raw interleaved-IQ file into complex128 samples, per
// spec.md §6's float32/short16/complex-float selectable format.
func readIQFile(path string, format sampleFormat) ([]complex128, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	switch format {
	case formatFloat32:
		n := len(data) / 8 // I,Q each float32
		out := make([]complex128, n)
		for i := 0; i < n; i++ {
			re := math.Float32frombits(binary.LittleEndian.Uint32(data[i*8:]))
			im := math.Float32frombits(binary.LittleEndian.Uint32(data[i*8+4:]))
			out[i] = complex(float64(re), float64(im))
		}
		return out, nil
	case formatShort16:
		n := len(data) / 4 // I,Q each int16
		out := make([]complex128, n)
		for i := 0; i < n; i++ {
			re := int16(binary.LittleEndian.Uint16(data[i*4:]))
			im := int16(binary.LittleEndian.Uint16(data[i*4+2:]))
			out[i] = complex(float64(re)/32768.0, float64(im)/32768.0)
		}
		return out, nil
	case formatComplex64:
		n := len(data) / 8
		out := make([]complex128, n)
		for i := 0; i < n; i++ {
			re := math.Float32frombits(binary.LittleEndian.Uint32(data[i*8:]))
			im := math.Float32frombits(binary.LittleEndian.Uint32(data[i*8+4:]))
			out[i] = complex(float64(re), float64(im))
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported sample format %q", format)
	}
}
