package lodestar

import (
	"github.com/rotisserie/eris"

	"github.com/lodestar-engine/lodestar/events"
	"github.com/lodestar-engine/lodestar/store"
	"github.com/lodestar-engine/lodestar/system"
	"github.com/lodestar-engine/lodestar/world"
	"github.com/lodestar-engine/lodestar/worldstage"
)

// PartialManager is a detached bundle of systems, resources and components
// assembled by an independent feature module and merged into a Manager with
// Integrate. It has no World of its own.
//
// Merge semantics are deliberately asymmetric: component lists concatenate,
// resource conflicts fail hard, and event handlers are first-wins per kind.
type PartialManager struct {
	resources    []resourceEntry
	resourceKeys map[store.TypeKey]struct{}
	components   []func(*world.World)

	startup     system.Order[system.Startup]
	frame       system.Order[system.Frame]
	windowEvent system.Order[system.WindowEvent]

	handlers     []handlerEntry
	handlerKinds map[events.Event]struct{}
}

type resourceEntry struct {
	key store.TypeKey
	add func(*world.World)
}

type handlerEntry struct {
	kind  events.Event
	order system.Order[system.Handler]
}

func NewPartialManager() *PartialManager {
	return &PartialManager{
		resourceKeys: map[store.TypeKey]struct{}{},
		handlerKinds: map[events.Event]struct{}{},
	}
}

// PartialResource adds a resource to the bundle. The first value of a type
// wins within the bundle.
func PartialResource[T any](p *PartialManager, value T) *PartialManager {
	key := store.KeyOf[T]()
	if _, ok := p.resourceKeys[key]; ok {
		return p
	}
	p.resourceKeys[key] = struct{}{}
	p.resources = append(p.resources, resourceEntry{
		key: key,
		add: func(w *world.World) { world.AddResource(w, value) },
	})
	return p
}

// PartialComponent appends a component to the bundle. Multiple values of a
// type may exist.
func PartialComponent[T any](p *PartialManager, value T) *PartialManager {
	p.components = append(p.components, func(w *world.World) {
		world.AddComponent(w, value)
	})
	return p
}

// AddStartupSystems sets the bundle's startup order, replacing any previous
// one.
func (p *PartialManager) AddStartupSystems(order system.Order[system.Startup]) *PartialManager {
	p.startup = order
	return p
}

// AddSystems sets the bundle's per-frame order, replacing any previous one.
func (p *PartialManager) AddSystems(order system.Order[system.Frame]) *PartialManager {
	p.frame = order
	return p
}

// AddWindowEventSystems sets the bundle's window-event order, replacing any
// previous one.
func (p *PartialManager) AddWindowEventSystems(order system.Order[system.WindowEvent]) *PartialManager {
	p.windowEvent = order
	return p
}

// AddEventHandler registers a handler order for an event kind. The first
// registration for a kind wins within the bundle.
func (p *PartialManager) AddEventHandler(kind events.Event, order system.Order[system.Handler]) *PartialManager {
	if _, ok := p.handlerKinds[kind]; ok {
		return p
	}
	p.handlerKinds[kind] = struct{}{}
	p.handlers = append(p.handlers, handlerEntry{kind: kind, order: order})
	return p
}

// Integrate merges a bundle into the manager. Resource conflicts are
// detected before anything is applied, so a failed Integrate leaves the
// manager untouched. Components concatenate onto existing lists; system
// orders append to the manager's orders; event handlers follow the usual
// first-wins rule.
func (m *Manager) Integrate(p *PartialManager) error {
	if m.stage.Current() != worldstage.Init {
		return eris.New("cannot integrate after the manager has started")
	}
	for _, r := range p.resources {
		if m.world.Resources().Contains(r.key) {
			return eris.Wrapf(ErrAlreadyRegistered, "resource %s", r.key)
		}
	}

	for _, r := range p.resources {
		r.add(m.world)
	}
	for _, add := range p.components {
		add(m.world)
	}
	m.startup.ExtendInPlace(p.startup)
	m.frame.ExtendInPlace(p.frame)
	m.windowEvent.ExtendInPlace(p.windowEvent)
	for _, h := range p.handlers {
		m.AddEventHandler(h.kind, h.order)
	}
	return nil
}
