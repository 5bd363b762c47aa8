// Package statsd wraps the statsd methods the engine emits metrics through.
// It hides the datadog dependency so a future migration only needs to edit
// this single file.
package statsd

import (
	"time"

	ddstatsd "github.com/DataDog/datadog-go/v5/statsd"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog/log"
)

var client ddstatsd.ClientInterface = &ddstatsd.NoOpClient{}

func Client() ddstatsd.ClientInterface {
	return client
}

// EmitFrameStat emits the time elapsed since start for the given stage of a
// frame. Stages are individual system names plus the "all_systems" rollup.
func EmitFrameStat(start time.Time, stage string) {
	duration := time.Since(start)
	err := Client().Timing("frame", duration, []string{stage}, 1)
	if err != nil {
		log.Logger.Warn().Msgf("failed to emit frame stat: %v", err)
	}
}

// Init replaces the default no-op client with a real statsd client. Metrics
// are emitted under the "lodestar" namespace.
func Init(address string, tags []string) error {
	if address == "" {
		return eris.New("address must not be empty")
	}
	opts := []ddstatsd.Option{
		ddstatsd.WithNamespace("lodestar"),
	}
	if len(tags) > 0 {
		opts = append(opts, ddstatsd.WithTags(tags))
	}

	newClient, err := ddstatsd.New(address, opts...)
	if err != nil {
		return err
	}
	client = newClient
	return nil
}
