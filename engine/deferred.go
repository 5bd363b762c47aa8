package engine

import (
	"github.com/rotisserie/eris"
)

// ErrNotInitialized is returned when a Deferred value is read before Set.
var ErrNotInitialized = eris.New("deferred value not initialized")

// Deferred holds a value that is bound after construction, typically a
// device-dependent handle created by a startup system.
type Deferred[T any] struct {
	value T
	set   bool
}

// Set binds the value. The first Set wins; later calls are ignored.
func (d *Deferred[T]) Set(value T) {
	if d.set {
		return
	}
	d.value = value
	d.set = true
}

// IsSet reports whether the value has been bound.
func (d *Deferred[T]) IsSet() bool {
	return d.set
}

// Get returns the bound value, or ErrNotInitialized before Set.
func (d *Deferred[T]) Get() (T, error) {
	if !d.set {
		var zero T
		return zero, ErrNotInitialized
	}
	return d.value, nil
}
