package log_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"gotest.tools/v3/assert"

	"github.com/lodestar-engine/lodestar/log"
)

type fakeLoggable struct {
	systems    []string
	resources  []string
	components []string
}

func (f fakeLoggable) SystemNames() []string    { return f.systems }
func (f fakeLoggable) ResourceTypes() []string  { return f.resources }
func (f fakeLoggable) ComponentTypes() []string { return f.components }

func TestWorldLogsSystemsAndTypes(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	target := fakeLoggable{
		systems:    []string{"MoveSystem", "RenderSystem"},
		resources:  []string{"engine.Engine"},
		components: []string{"demo.Position"},
	}
	log.World(&logger, target, zerolog.InfoLevel)

	out := buf.String()
	assert.Assert(t, strings.Contains(out, `"total_systems":2`))
	assert.Assert(t, strings.Contains(out, "MoveSystem"))
	assert.Assert(t, strings.Contains(out, "engine.Engine"))
	assert.Assert(t, strings.Contains(out, "demo.Position"))
}

func TestSystemsRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf).Level(zerolog.InfoLevel)

	log.Systems(&logger, fakeLoggable{systems: []string{"OnlySystem"}}, zerolog.DebugLevel)
	assert.Equal(t, "", buf.String())

	log.Systems(&logger, fakeLoggable{systems: []string{"OnlySystem"}}, zerolog.InfoLevel)
	assert.Assert(t, strings.Contains(buf.String(), "OnlySystem"))
}

func TestNewLoggerFallsBackToInfo(t *testing.T) {
	logger := log.NewLogger("not-a-level")
	assert.Equal(t, zerolog.InfoLevel, logger.GetLevel())

	logger = log.NewLogger("debug")
	assert.Equal(t, zerolog.DebugLevel, logger.GetLevel())
}
