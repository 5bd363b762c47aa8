package lodestar

import (
	"testing"

	"github.com/rs/zerolog"
	"gotest.tools/v3/assert"
)

func TestWithConfigSkipsEnvironment(t *testing.T) {
	t.Setenv("LODESTAR_LOG_LEVEL", "trace")

	m, err := New(WithConfig(EngineConfig{LogLevel: "disabled", WindowTitle: "test"}))
	assert.NilError(t, err)
	assert.Equal(t, "disabled", m.Config().LogLevel)
	assert.Equal(t, "test", m.Config().WindowTitle)
}

func TestWithLoggerOverridesConfigLevel(t *testing.T) {
	m, err := New(WithLogger(zerolog.Nop()), WithConfig(EngineConfig{LogLevel: "info"}))
	assert.NilError(t, err)
	assert.Assert(t, m.hasLogger)
}
