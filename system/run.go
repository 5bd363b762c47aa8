package system

import (
	"time"

	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"

	"github.com/lodestar-engine/lodestar/statsd"
)

// Run executes every system in the order, strictly in insertion order. The
// invoke callback receives each system together with a logger carrying the
// system's name. The first error stops execution and is returned wrapped
// with the failing system's name; systems that already ran are not rolled
// back.
func Run[S any](order Order[S], logger zerolog.Logger, invoke func(system S, logger zerolog.Logger) error) error {
	allStart := time.Now()
	for _, sys := range order.systems {
		name := Name(sys)
		sysLogger := logger.With().Str("system", name).Logger()

		start := time.Now()
		if err := invoke(sys, sysLogger); err != nil {
			return eris.Wrapf(err, "system %s generated an error", name)
		}
		statsd.EmitFrameStat(start, name)
	}
	statsd.EmitFrameStat(allStart, "all_systems")
	return nil
}
