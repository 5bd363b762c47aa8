package lodestar

import (
	"github.com/JeremyLoy/config"
	"github.com/rotisserie/eris"
)

// EngineConfig carries the engine settings read from the environment.
// Every field has a fallback so a bare environment still runs.
type EngineConfig struct {
	LogLevel       string `config:"LODESTAR_LOG_LEVEL"`
	WindowTitle    string `config:"LODESTAR_WINDOW_TITLE"`
	WindowWidth    int    `config:"LODESTAR_WINDOW_WIDTH"`
	WindowHeight   int    `config:"LODESTAR_WINDOW_HEIGHT"`
	FramesInFlight int    `config:"LODESTAR_FRAMES_IN_FLIGHT"`
	StatsdAddress  string `config:"LODESTAR_STATSD_ADDRESS"`
}

func defaultConfig() EngineConfig {
	return EngineConfig{
		LogLevel:       "info",
		WindowTitle:    "Lodestar",
		WindowWidth:    1024,
		WindowHeight:   768,
		FramesInFlight: 2,
		StatsdAddress:  "",
	}
}

func loadConfig() (EngineConfig, error) {
	cfg := defaultConfig()
	if err := config.FromEnv().To(&cfg); err != nil {
		return cfg, eris.Wrap(err, "failed to load engine config")
	}
	return cfg, nil
}
