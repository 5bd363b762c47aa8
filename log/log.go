// Package log provides zerolog helpers for reporting engine state.
package log

import (
	"os"

	"github.com/rs/zerolog"
)

// Loggable is anything that can report its registered systems and stored
// types. The Manager implements it.
type Loggable interface {
	SystemNames() []string
	ResourceTypes() []string
	ComponentTypes() []string
}

func loadSystemsIntoEvent(event *zerolog.Event, target Loggable) *zerolog.Event {
	names := target.SystemNames()
	event.Int("total_systems", len(names))
	arrayLogger := zerolog.Arr()
	for _, name := range names {
		arrayLogger = arrayLogger.Str(name)
	}
	return event.Array("systems", arrayLogger)
}

func loadTypesIntoEvent(event *zerolog.Event, target Loggable) *zerolog.Event {
	resources := zerolog.Arr()
	for _, name := range target.ResourceTypes() {
		resources = resources.Str(name)
	}
	components := zerolog.Arr()
	for _, name := range target.ComponentTypes() {
		components = components.Str(name)
	}
	event.Array("resources", resources)
	return event.Array("components", components)
}

// Systems logs all registered system names in execution order.
func Systems(logger *zerolog.Logger, target Loggable, level zerolog.Level) {
	event := logger.WithLevel(level)
	event = loadSystemsIntoEvent(event, target)
	event.Send()
}

// Types logs all registered resource and component types.
func Types(logger *zerolog.Logger, target Loggable, level zerolog.Level) {
	event := logger.WithLevel(level)
	event = loadTypesIntoEvent(event, target)
	event.Send()
}

// World logs everything registered: systems, resources and components.
func World(logger *zerolog.Logger, target Loggable, level zerolog.Level) {
	event := logger.WithLevel(level)
	event = loadSystemsIntoEvent(event, target)
	event = loadTypesIntoEvent(event, target)
	event.Send()
}

// NewLogger builds the engine's console logger at the given level string.
// Unparseable levels fall back to info.
func NewLogger(level string) zerolog.Logger {
	parsed, err := zerolog.ParseLevel(level)
	if err != nil {
		parsed = zerolog.InfoLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(parsed).
		With().Timestamp().Logger()
}
