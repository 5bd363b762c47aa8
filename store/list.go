package store

import (
	"sync"

	"github.com/rotisserie/eris"
)

// ListMap stores an ordered list of values per concrete type. Values are only
// ever appended; insertion order is preserved and duplicates are kept.
type ListMap struct {
	mu    sync.RWMutex
	cells map[TypeKey][]*cell
	order []TypeKey
}

func NewListMap() *ListMap {
	return &ListMap{cells: map[TypeKey][]*cell{}}
}

// Append adds value to the end of the list for its concrete type.
func Append[T any](l *ListMap, value T) {
	key := KeyOf[T]()
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.cells[key]; !ok {
		l.order = append(l.order, key)
	}
	l.cells[key] = append(l.cells[key], &cell{value: &value})
}

// Keys returns the TypeKeys that have at least one value, in first-append
// order.
func (l *ListMap) Keys() []TypeKey {
	l.mu.RLock()
	defer l.mu.RUnlock()
	keys := make([]TypeKey, len(l.order))
	copy(keys, l.order)
	return keys
}

// Count returns the number of values stored under key.
func (l *ListMap) Count(key TypeKey) int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.cells[key])
}

func (l *ListMap) list(key TypeKey) ([]*cell, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	cells, ok := l.cells[key]
	return cells, ok
}

// Values returns a snapshot of the values of type T in insertion order.
func Values[T any](l *ListMap) ([]T, error) {
	cells, ok := l.list(KeyOf[T]())
	if !ok {
		return nil, eris.Wrapf(ErrNotFound, "no components of type %s", KeyOf[T]())
	}
	out := make([]T, 0, len(cells))
	for _, c := range cells {
		c.mu.RLock()
		out = append(out, *c.value.(*T))
		c.mu.RUnlock()
	}
	return out, nil
}

// Each runs fn with shared access to every value of type T, in insertion
// order. The pointer passed to fn must not be written through.
func Each[T any](l *ListMap, fn func(*T) error) error {
	cells, ok := l.list(KeyOf[T]())
	if !ok {
		return eris.Wrapf(ErrNotFound, "no components of type %s", KeyOf[T]())
	}
	for _, c := range cells {
		c.mu.RLock()
		err := fn(c.value.(*T))
		c.mu.RUnlock()
		if err != nil {
			return err
		}
	}
	return nil
}

// EachMut runs fn with exclusive access to every value of type T, in
// insertion order. Values are locked one at a time.
func EachMut[T any](l *ListMap, fn func(*T) error) error {
	cells, ok := l.list(KeyOf[T]())
	if !ok {
		return eris.Wrapf(ErrNotFound, "no components of type %s", KeyOf[T]())
	}
	for _, c := range cells {
		c.mu.Lock()
		err := fn(c.value.(*T))
		c.mu.Unlock()
		if err != nil {
			return err
		}
	}
	return nil
}
