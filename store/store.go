// Package store provides the type-erased storage that backs a World.
//
// Values are keyed by their concrete type. A Map holds exactly one value per
// type (resources); a ListMap holds an ordered list of values per type
// (components). Every stored value sits behind its own read/write lock, so
// shared access to one type never contends with access to another, and a
// single caller may hold guards on several different types at once.
//
// There is no reentrancy protection: fetching a type exclusively while the
// same caller already holds its lock will deadlock.
package store

import (
	"reflect"
	"sync"

	"github.com/rotisserie/eris"
)

// ErrNotFound is returned when a type was never registered in a store.
var ErrNotFound = eris.New("type not registered in store")

// TypeKey identifies a concrete type. Two TypeKeys are equal iff they denote
// the same concrete type.
type TypeKey = reflect.Type

// KeyOf returns the TypeKey for T.
func KeyOf[T any]() TypeKey {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// cell is a single lock-wrapped value. The value is always a *T for the T the
// cell was created with.
type cell struct {
	mu    sync.RWMutex
	value any
}

// Map stores at most one value per concrete type.
type Map struct {
	mu    sync.RWMutex
	cells map[TypeKey]*cell
	order []TypeKey
}

func NewMap() *Map {
	return &Map{cells: map[TypeKey]*cell{}}
}

// Add registers value under its concrete type. The first registration wins:
// adding a second value of the same type is a no-op. It reports whether the
// value was inserted.
func Add[T any](m *Map, value T) bool {
	key := KeyOf[T]()
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.cells[key]; ok {
		return false
	}
	m.cells[key] = &cell{value: &value}
	m.order = append(m.order, key)
	return true
}

// Contains reports whether a value is registered under key.
func (m *Map) Contains(key TypeKey) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.cells[key]
	return ok
}

// Keys returns the registered TypeKeys in registration order.
func (m *Map) Keys() []TypeKey {
	m.mu.RLock()
	defer m.mu.RUnlock()
	keys := make([]TypeKey, len(m.order))
	copy(keys, m.order)
	return keys
}

func (m *Map) lookup(key TypeKey) (*cell, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.cells[key]
	return c, ok
}

// Get acquires shared access to the value of type T. The returned Ref must be
// released. Concurrent shared guards on the same type may coexist.
func Get[T any](m *Map) (*Ref[T], error) {
	c, ok := m.lookup(KeyOf[T]())
	if !ok {
		return nil, eris.Wrapf(ErrNotFound, "no resource of type %s", KeyOf[T]())
	}
	c.mu.RLock()
	return &Ref[T]{value: c.value.(*T), c: c}, nil
}

// GetMut acquires exclusive access to the value of type T. The returned
// MutRef must be released; it excludes all other guards on the same type.
func GetMut[T any](m *Map) (*MutRef[T], error) {
	c, ok := m.lookup(KeyOf[T]())
	if !ok {
		return nil, eris.Wrapf(ErrNotFound, "no resource of type %s", KeyOf[T]())
	}
	c.mu.Lock()
	return &MutRef[T]{value: c.value.(*T), c: c}, nil
}

// View runs fn with shared access to the value of type T.
func View[T any](m *Map, fn func(*T) error) error {
	ref, err := Get[T](m)
	if err != nil {
		return err
	}
	defer ref.Release()
	return fn(ref.Value())
}

// Update runs fn with exclusive access to the value of type T.
func Update[T any](m *Map, fn func(*T) error) error {
	ref, err := GetMut[T](m)
	if err != nil {
		return err
	}
	defer ref.Release()
	return fn(ref.Value())
}

// Ref is a shared guard over a stored value. The pointer obtained from Value
// must not be written through and must not outlive Release.
type Ref[T any] struct {
	value *T
	c     *cell
}

func (r *Ref[T]) Value() *T { return r.value }

func (r *Ref[T]) Release() { r.c.mu.RUnlock() }

// MutRef is an exclusive guard over a stored value. The pointer obtained from
// Value must not outlive Release.
type MutRef[T any] struct {
	value *T
	c     *cell
}

func (r *MutRef[T]) Value() *T { return r.value }

func (r *MutRef[T]) Release() { r.c.mu.Unlock() }
