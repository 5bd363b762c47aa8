// Package world holds the state systems operate on: singleton resources,
// type-grouped components and the event bus.
//
// Components are grouped purely by their concrete type; there is no entity
// identity attaching components to one another. That is a deliberate scope
// limit, not a missing feature.
package world

import (
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/lodestar-engine/lodestar/events"
	"github.com/lodestar-engine/lodestar/store"
)

// World owns the resource and component stores plus the event bus. A *World
// is cheap to hand to closures and callbacks; all copies share the same
// underlying stores. Sharing does not make concurrent mutation safe by
// itself, the per-entry locks in the stores do.
type World struct {
	id         uuid.UUID
	resources  *store.Map
	components *store.ListMap
	bus        *events.Bus
	logger     zerolog.Logger
}

func New(logger zerolog.Logger) *World {
	id := uuid.New()
	logger = logger.With().Str("world_id", id.String()).Logger()
	return &World{
		id:         id,
		resources:  store.NewMap(),
		components: store.NewListMap(),
		bus:        events.NewBus(logger),
		logger:     logger,
	}
}

func (w *World) ID() uuid.UUID { return w.id }

func (w *World) Logger() *zerolog.Logger { return &w.logger }

func (w *World) SetLogger(logger zerolog.Logger) { w.logger = logger }

// Resources exposes the resource store for non-generic callers.
func (w *World) Resources() *store.Map { return w.resources }

// Components exposes the component store for non-generic callers.
func (w *World) Components() *store.ListMap { return w.components }

// RaiseEvent queues an event for dispatch at the next drain point.
func (w *World) RaiseEvent(kind events.Event, payload events.Payload) {
	w.bus.Raise(kind, payload)
}

// DrainEvents removes and returns all queued events in raise order.
func (w *World) DrainEvents() []events.Raised {
	return w.bus.Drain()
}

// PendingEvents returns the number of undrained events.
func (w *World) PendingEvents() int {
	return w.bus.Len()
}

// ResourceTypes returns the names of all registered resource types in
// registration order.
func (w *World) ResourceTypes() []string {
	keys := w.resources.Keys()
	names := make([]string, 0, len(keys))
	for _, key := range keys {
		names = append(names, key.String())
	}
	return names
}

// ComponentTypes returns the names of all component types with at least one
// value, in first-append order.
func (w *World) ComponentTypes() []string {
	keys := w.components.Keys()
	names := make([]string, 0, len(keys))
	for _, key := range keys {
		names = append(names, key.String())
	}
	return names
}

// AddResource registers a singleton resource. The first registration of a
// type wins; later calls for the same type are no-ops. It reports whether
// the resource was inserted.
func AddResource[T any](w *World, value T) bool {
	inserted := store.Add(w.resources, value)
	if !inserted {
		w.logger.Debug().Str("resource", store.KeyOf[T]().String()).
			Msg("resource already registered, keeping first value")
	}
	return inserted
}

// HasResource reports whether a resource of type T is registered.
func HasResource[T any](w *World) bool {
	return w.resources.Contains(store.KeyOf[T]())
}

// GetResource acquires shared access to the resource of type T.
func GetResource[T any](w *World) (*store.Ref[T], error) {
	return store.Get[T](w.resources)
}

// GetResourceMut acquires exclusive access to the resource of type T.
func GetResourceMut[T any](w *World) (*store.MutRef[T], error) {
	return store.GetMut[T](w.resources)
}

// ViewResource runs fn with shared access to the resource of type T.
func ViewResource[T any](w *World, fn func(*T) error) error {
	return store.View(w.resources, fn)
}

// UpdateResource runs fn with exclusive access to the resource of type T.
func UpdateResource[T any](w *World, fn func(*T) error) error {
	return store.Update(w.resources, fn)
}

// AddComponent appends a component of type T. Components always append; there
// is no replace or delete.
func AddComponent[T any](w *World, value T) {
	store.Append(w.components, value)
}

// Components returns a snapshot of all components of type T in insertion
// order.
func Components[T any](w *World) ([]T, error) {
	return store.Values[T](w.components)
}

// EachComponent runs fn with shared access to every component of type T.
func EachComponent[T any](w *World, fn func(*T) error) error {
	return store.Each(w.components, fn)
}

// UpdateComponents runs fn with exclusive access to every component of
// type T, one at a time, in insertion order.
func UpdateComponents[T any](w *World, fn func(*T) error) error {
	return store.EachMut(w.components, fn)
}
