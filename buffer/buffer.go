// Package buffer tracks the lifecycle of GPU buffers across three slot
// categories: a singleton Temp staging buffer, named Standard buffers, and
// named Uniform buffer lists holding one buffer per in-flight frame.
// Textures adds a fourth category for named sampled images, managed with the
// same replace-in-place rules.
//
// The manager is generic over the buffer handle type and the two name
// enumerations, and talks to the device only through an Allocator. A buffer
// handle and its backing memory are always allocated and freed together;
// every replace frees the old buffer before the slot is overwritten, so a
// slot never holds a leaked or doubly-owned buffer.
package buffer

import (
	"github.com/rotisserie/eris"
)

var (
	// ErrNotFound is returned when a named slot was never allocated.
	ErrNotFound = eris.New("buffer slot not allocated")

	// ErrSameBufferCopy is returned when a copy names the same logical
	// buffer as both source and destination.
	ErrSameBufferCopy = eris.New("copy source and destination are the same buffer")
)

// Usage and MemoryProps are passed through to the allocator untouched; their
// bit meanings belong to the device boundary.
type (
	Usage       uint32
	MemoryProps uint32
)

// Allocator creates, destroys and copies buffers on behalf of a Manager.
type Allocator[B any] interface {
	// Allocate creates a buffer with bound memory satisfying the given
	// usage and memory property flags.
	Allocate(size uint64, usage Usage, props MemoryProps) (B, error)

	// Free destroys the buffer and its memory in one call.
	Free(b B)

	// CopyHostData maps the buffer's memory, copies data into it and
	// unmaps. The buffer must be host-visible.
	CopyHostData(dst B, data []byte) error

	// CopyBuffer performs a device-side copy of size bytes through a
	// one-shot command buffer and blocks until the device is idle.
	CopyBuffer(src, dst B, size uint64) error
}

// Manager tracks buffers by slot. B is the buffer handle type, S the
// Standard name enumeration, U the Uniform name enumeration.
type Manager[B comparable, S comparable, U comparable] struct {
	alloc    Allocator[B]
	temp     *B
	standard map[S]B
	uniform  map[U][]B
}

func NewManager[B comparable, S comparable, U comparable](alloc Allocator[B]) *Manager[B, S, U] {
	return &Manager[B, S, U]{
		alloc:    alloc,
		standard: map[S]B{},
		uniform:  map[U][]B{},
	}
}

// AllocateTemp allocates the singleton staging buffer. At most one temp
// buffer exists: a live one is freed before the new one is created.
func (m *Manager[B, S, U]) AllocateTemp(size uint64, usage Usage, props MemoryProps) (B, error) {
	m.FreeTemp()
	buf, err := m.alloc.Allocate(size, usage, props)
	if err != nil {
		var zero B
		return zero, eris.Wrap(err, "failed to allocate temp buffer")
	}
	m.temp = &buf
	return buf, nil
}

// AllocateStandard allocates the buffer for a Standard name. An existing
// buffer under the same name is freed first, so the slot is replaced in
// place and never double-allocated.
func (m *Manager[B, S, U]) AllocateStandard(name S, size uint64, usage Usage, props MemoryProps) (B, error) {
	if old, ok := m.standard[name]; ok {
		m.alloc.Free(old)
		delete(m.standard, name)
	}
	buf, err := m.alloc.Allocate(size, usage, props)
	if err != nil {
		var zero B
		return zero, eris.Wrapf(err, "failed to allocate standard buffer %v", name)
	}
	m.standard[name] = buf
	return buf, nil
}

// AllocateUniform appends a new buffer to a Uniform name's list, one call
// per in-flight frame.
func (m *Manager[B, S, U]) AllocateUniform(name U, size uint64, usage Usage, props MemoryProps) (B, error) {
	buf, err := m.alloc.Allocate(size, usage, props)
	if err != nil {
		var zero B
		return zero, eris.Wrapf(err, "failed to allocate uniform buffer %v", name)
	}
	m.uniform[name] = append(m.uniform[name], buf)
	return buf, nil
}

// HasTemp reports whether the temp buffer is live.
func (m *Manager[B, S, U]) HasTemp() bool {
	return m.temp != nil
}

// TempBuffer returns the live temp buffer.
func (m *Manager[B, S, U]) TempBuffer() (B, error) {
	if m.temp == nil {
		var zero B
		return zero, eris.Wrap(ErrNotFound, "no temp buffer")
	}
	return *m.temp, nil
}

// StandardBuffer returns the buffer allocated under name. A name that was
// never allocated is a hard error, never a silent default.
func (m *Manager[B, S, U]) StandardBuffer(name S) (B, error) {
	buf, ok := m.standard[name]
	if !ok {
		var zero B
		return zero, eris.Wrapf(ErrNotFound, "standard buffer %v", name)
	}
	return buf, nil
}

// UniformBuffers returns all buffers allocated under name, in allocation
// order.
func (m *Manager[B, S, U]) UniformBuffers(name U) ([]B, error) {
	bufs, ok := m.uniform[name]
	if !ok {
		return nil, eris.Wrapf(ErrNotFound, "uniform buffers %v", name)
	}
	return bufs, nil
}

// FreeTemp frees the temp buffer. Freeing an absent temp buffer is a safe
// no-op.
func (m *Manager[B, S, U]) FreeTemp() {
	if m.temp == nil {
		return
	}
	m.alloc.Free(*m.temp)
	m.temp = nil
}

// FreeStandard frees the buffer under name and clears the slot.
func (m *Manager[B, S, U]) FreeStandard(name S) error {
	buf, ok := m.standard[name]
	if !ok {
		return eris.Wrapf(ErrNotFound, "standard buffer %v", name)
	}
	m.alloc.Free(buf)
	delete(m.standard, name)
	return nil
}

// FreeUniforms frees every buffer under name and clears the slot.
func (m *Manager[B, S, U]) FreeUniforms(name U) error {
	bufs, ok := m.uniform[name]
	if !ok {
		return eris.Wrapf(ErrNotFound, "uniform buffers %v", name)
	}
	for _, buf := range bufs {
		m.alloc.Free(buf)
	}
	delete(m.uniform, name)
	return nil
}

// FreeAll frees every tracked buffer: temp, standard and uniform.
func (m *Manager[B, S, U]) FreeAll() {
	m.FreeTemp()
	for name, buf := range m.standard {
		m.alloc.Free(buf)
		delete(m.standard, name)
	}
	for name, bufs := range m.uniform {
		for _, buf := range bufs {
			m.alloc.Free(buf)
		}
		delete(m.uniform, name)
	}
}
