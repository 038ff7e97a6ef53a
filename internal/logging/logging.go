// Package logging supplies the single logger capability every component
// config embeds in place of the teacher's module-global verbose/PRINT_DEBUG
// flags (see SPEC_FULL.md §9).
package logging

import (
	"os"

	"github.com/charmbracelet/log"
)

// Logger is the capability type passed to components that want one. It is
// never a package-level global: a caller constructs one and passes it
// explicitly, scoped to the lifetime of that caller only. DSP component
// configs (ofdm.Config, scrambling.Config, chest.Config, regmap.Config)
// deliberately don't embed one — see DESIGN.md's internal/logging entry.
type Logger = *log.Logger

// New returns a logger tagged with component, writing to os.Stderr at the
// given level. A nil-safe default ("info", no component tag) is returned by
// Default for components that don't care to customize it.
func New(component string, level log.Level) Logger {
	l := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Level:           level,
	})
	return l.With("component", component)
}

// Default returns an info-level logger tagged with component, suitable for
// zero-value configs.
func Default(component string) Logger {
	return New(component, log.InfoLevel)
}

// Discard returns a logger that drops everything, for tests that don't want
// log noise.
func Discard(component string) Logger {
	return New(component, log.FatalLevel+1)
}
