// Package lodestar ties the engine together: a Manager owns the World, the
// four system orders and the event-dispatch loop that drives them.
package lodestar

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"

	"github.com/lodestar-engine/lodestar/events"
	"github.com/lodestar-engine/lodestar/log"
	"github.com/lodestar-engine/lodestar/statsd"
	"github.com/lodestar-engine/lodestar/system"
	"github.com/lodestar-engine/lodestar/window"
	"github.com/lodestar-engine/lodestar/world"
	"github.com/lodestar-engine/lodestar/worldstage"
)

// Manager owns a World and the systems that run against it. Systems are
// registered while the manager is in the Init stage; Run executes the
// startup order once and then hands control to the platform event loop.
//
// Any error returned by a system is fatal: it stops the loop and propagates
// out of Run. A broken frame must not silently keep mutating GPU state.
type Manager struct {
	world *world.World

	startup     system.Order[system.Startup]
	frame       system.Order[system.Frame]
	windowEvent system.Order[system.WindowEvent]

	// handlers maps an event kind to the order that handles it. Kinds are
	// kept in a separate list because maps in Go are unordered.
	handlers     map[events.Event]system.Order[system.Handler]
	handlerKinds []events.Event

	stage     *worldstage.Manager
	logger    zerolog.Logger
	hasLogger bool
	cfg       *EngineConfig
}

func New(opts ...Option) (*Manager, error) {
	m := &Manager{
		handlers: map[events.Event]system.Order[system.Handler]{},
		stage:    worldstage.NewManager(),
	}
	for _, opt := range opts {
		opt(m)
	}

	if m.cfg == nil {
		cfg, err := loadConfig()
		if err != nil {
			return nil, err
		}
		m.cfg = &cfg
	}
	if !m.hasLogger {
		m.logger = log.NewLogger(m.cfg.LogLevel)
	}
	if m.cfg.StatsdAddress != "" {
		if err := statsd.Init(m.cfg.StatsdAddress, nil); err != nil {
			return nil, eris.Wrap(err, "failed to init statsd client")
		}
	}

	m.world = world.New(m.logger)
	return m, nil
}

func (m *Manager) World() *world.World { return m.world }

func (m *Manager) Config() EngineConfig { return *m.cfg }

func (m *Manager) Stage() worldstage.Stage { return m.stage.Current() }

// AddStartupSystems appends an order of systems that run once before the
// event loop starts.
func (m *Manager) AddStartupSystems(order system.Order[system.Startup]) *Manager {
	m.startup.ExtendInPlace(order)
	return m
}

// AddSystems appends an order of systems that run every frame.
func (m *Manager) AddSystems(order system.Order[system.Frame]) *Manager {
	m.frame.ExtendInPlace(order)
	return m
}

// AddWindowEventSystems appends an order of systems that run for every
// platform event.
func (m *Manager) AddWindowEventSystems(order system.Order[system.WindowEvent]) *Manager {
	m.windowEvent.ExtendInPlace(order)
	return m
}

// AddEventHandler registers the handler order for an event kind. The first
// registration for a kind wins; later ones are no-ops.
func (m *Manager) AddEventHandler(kind events.Event, order system.Order[system.Handler]) *Manager {
	if _, ok := m.handlers[kind]; ok {
		m.logger.Debug().Str("kind", fmt.Sprintf("%T", kind)).
			Msg("event handler already registered, keeping first")
		return m
	}
	m.handlers[kind] = order
	m.handlerKinds = append(m.handlerKinds, kind)
	return m
}

// AddResource registers a singleton resource on the manager's world. The
// first registration of a type wins.
func AddResource[T any](m *Manager, value T) *Manager {
	world.AddResource(m.world, value)
	return m
}

// AddComponent appends a component to the manager's world.
func AddComponent[T any](m *Manager, value T) *Manager {
	world.AddComponent(m.world, value)
	return m
}

// Run executes the startup systems once, then lets the event loop drive
// frames until it exits. Run can only be called once; a system error at any
// point aborts it.
func (m *Manager) Run(loop window.Loop) error {
	if !m.stage.CompareAndSwap(worldstage.Init, worldstage.Starting) {
		return ErrAlreadyRan
	}
	log.World(&m.logger, m, zerolog.InfoLevel)

	if err := m.runStartup(); err != nil {
		m.stage.Store(worldstage.ShutDown)
		return err
	}

	m.stage.Store(worldstage.Running)
	err := loop.Run(m.dispatch)

	m.stage.Store(worldstage.ShutDown)
	if err != nil {
		return eris.Wrap(err, "run loop aborted")
	}
	m.logger.Info().Msg("engine shut down")
	return nil
}

func (m *Manager) runStartup() error {
	return system.Run(m.startup, m.logger, func(sys system.Startup, logger zerolog.Logger) error {
		m.world.SetLogger(logger)
		defer m.world.SetLogger(m.logger)
		return sys(m.world)
	})
}

// dispatch handles one platform event: window-event systems first, then a
// drain, then the frame systems, then a final drain. A close request moves
// the stage to ShuttingDown before any system runs, so systems observing the
// stage can tell the loop is unwinding.
func (m *Manager) dispatch(ev window.Event) error {
	if _, ok := ev.(window.CloseRequested); ok {
		m.stage.CompareAndSwap(worldstage.Running, worldstage.ShuttingDown)
	}

	err := system.Run(m.windowEvent, m.logger, func(sys system.WindowEvent, logger zerolog.Logger) error {
		m.world.SetLogger(logger)
		defer m.world.SetLogger(m.logger)
		return sys(m.world, ev)
	})
	if err != nil {
		return err
	}
	if err := m.checkEvents(); err != nil {
		return err
	}

	err = system.Run(m.frame, m.logger, func(sys system.Frame, logger zerolog.Logger) error {
		m.world.SetLogger(logger)
		defer m.world.SetLogger(m.logger)
		return sys(m.world)
	})
	if err != nil {
		return err
	}
	return m.checkEvents()
}

// checkEvents drains the bus and dispatches each event to the handler order
// registered for its kind. Dispatch is fail-fast: the first handler error
// stops the remaining handlers and propagates; handlers that already ran are
// not rolled back. Events without a registered handler are dropped.
func (m *Manager) checkEvents() error {
	for _, raised := range m.world.DrainEvents() {
		order, ok := m.handlers[raised.Kind]
		if !ok {
			m.logger.Debug().Str("kind", fmt.Sprintf("%T", raised.Kind)).
				Msg("no handler registered for event")
			continue
		}

		payload := raised.Payload
		err := system.Run(order, m.logger, func(handler system.Handler, logger zerolog.Logger) error {
			m.world.SetLogger(logger)
			defer m.world.SetLogger(m.logger)
			return handler(m.world, payload)
		})
		if err != nil {
			return eris.Wrapf(err, "dispatch of %T failed", raised.Kind)
		}
	}
	return nil
}

// SystemNames lists every registered system in execution order: startup,
// window-event, frame, then event handlers grouped by kind.
func (m *Manager) SystemNames() []string {
	names := m.startup.Names()
	names = append(names, m.windowEvent.Names()...)
	names = append(names, m.frame.Names()...)
	for _, kind := range m.handlerKinds {
		names = append(names, m.handlers[kind].Names()...)
	}
	return names
}

func (m *Manager) ResourceTypes() []string { return m.world.ResourceTypes() }

func (m *Manager) ComponentTypes() []string { return m.world.ComponentTypes() }

var _ log.Loggable = (*Manager)(nil)
