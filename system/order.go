// Package system defines the four system kinds and the ordered lists they
// execute in.
package system

import (
	"path/filepath"
	"reflect"
	"runtime"
	"slices"

	"github.com/lodestar-engine/lodestar/events"
	"github.com/lodestar-engine/lodestar/window"
	"github.com/lodestar-engine/lodestar/world"
)

// Startup runs exactly once, before the event loop starts.
type Startup func(w *world.World) error

// Frame runs once per loop iteration, after window-event systems and the
// first event drain.
type Frame func(w *world.World) error

// WindowEvent runs for every platform event delivered by the loop.
type WindowEvent func(w *world.World, ev window.Event) error

// Handler runs when an application event of its registered kind is drained.
type Handler func(w *world.World, payload events.Payload) error

// Order is an append-only, totally ordered list of systems of one kind.
// Execution order is exactly insertion order; there is no dependency
// resolution and no reordering. After appends to the literal end of the
// list, it does not express a dependency edge.
type Order[S any] struct {
	systems []S
}

// Empty returns an Order with no systems.
func Empty[S any]() Order[S] {
	return Order[S]{}
}

// New returns an Order holding a single system.
func New[S any](system S) Order[S] {
	return Order[S]{systems: []S{system}}
}

// Chain builds an Order from systems in argument order:
// Chain(a, b, c) executes a, then b, then c.
func Chain[S any](systems ...S) Order[S] {
	return Order[S]{systems: slices.Clone(systems)}
}

// After returns a copy of the order with system appended at the end, so call
// sites can build chains fluently: New(a).After(b).After(c).
func (o Order[S]) After(system S) Order[S] {
	return Order[S]{systems: append(slices.Clone(o.systems), system)}
}

// Extend returns a copy of the order with all of other's systems appended.
func (o Order[S]) Extend(other Order[S]) Order[S] {
	return Order[S]{systems: append(slices.Clone(o.systems), other.systems...)}
}

// ExtendInPlace appends all of other's systems to this order.
func (o *Order[S]) ExtendInPlace(other Order[S]) {
	o.systems = append(o.systems, other.systems...)
}

// Systems returns the systems in execution order.
func (o Order[S]) Systems() []S {
	return o.systems
}

func (o Order[S]) Len() int {
	return len(o.systems)
}

// Names returns the function names of the systems in execution order.
func (o Order[S]) Names() []string {
	names := make([]string, 0, len(o.systems))
	for _, s := range o.systems {
		names = append(names, Name(s))
	}
	return names
}

// Name derives a system's name from its function symbol.
func Name(system any) string {
	return filepath.Base(runtime.FuncForPC(reflect.ValueOf(system).Pointer()).Name())
}
