package buffer

import (
	"github.com/rotisserie/eris"
)

type slotKind int

const (
	slotTemp slotKind = iota
	slotStandard
	slotUniform
)

// Slot names one logical buffer tracked by a Manager. Slots are built with
// the Manager's TempSlot, StandardSlot and UniformSlot methods so the type
// parameters are inferred from the receiver.
type Slot[S comparable, U comparable] struct {
	kind     slotKind
	standard S
	uniform  U
	frame    int
}

// TempSlot names the singleton staging buffer.
func (m *Manager[B, S, U]) TempSlot() Slot[S, U] {
	return Slot[S, U]{kind: slotTemp}
}

// StandardSlot names the buffer allocated under a Standard name.
func (m *Manager[B, S, U]) StandardSlot(name S) Slot[S, U] {
	return Slot[S, U]{kind: slotStandard, standard: name}
}

// UniformSlot names one frame's buffer in a Uniform name's list.
func (m *Manager[B, S, U]) UniformSlot(name U, frame int) Slot[S, U] {
	return Slot[S, U]{kind: slotUniform, uniform: name, frame: frame}
}

func (m *Manager[B, S, U]) resolve(slot Slot[S, U]) (B, error) {
	switch slot.kind {
	case slotTemp:
		return m.TempBuffer()
	case slotStandard:
		return m.StandardBuffer(slot.standard)
	default:
		bufs, err := m.UniformBuffers(slot.uniform)
		if err != nil {
			var zero B
			return zero, err
		}
		if slot.frame < 0 || slot.frame >= len(bufs) {
			var zero B
			return zero, eris.Wrapf(ErrNotFound, "uniform buffer %v has no frame %d", slot.uniform, slot.frame)
		}
		return bufs[slot.frame], nil
	}
}

// CopyHostData copies raw host bytes into the buffer named by dst via a
// direct memory-mapped copy. The destination must be host-visible.
func (m *Manager[B, S, U]) CopyHostData(dst Slot[S, U], data []byte) error {
	buf, err := m.resolve(dst)
	if err != nil {
		return err
	}
	if err := m.alloc.CopyHostData(buf, data); err != nil {
		return eris.Wrap(err, "host data copy failed")
	}
	return nil
}

// Copy performs a device-side copy of size bytes from the buffer named by
// src to the buffer named by dst. Copying a slot onto itself is rejected
// before any device work happens. The copy is synchronous: it goes through
// a one-shot command buffer and blocks until the device is idle.
func (m *Manager[B, S, U]) Copy(src, dst Slot[S, U], size uint64) error {
	if src == dst {
		return eris.Wrap(ErrSameBufferCopy, "copy rejected")
	}
	srcBuf, err := m.resolve(src)
	if err != nil {
		return err
	}
	dstBuf, err := m.resolve(dst)
	if err != nil {
		return err
	}
	// Distinct slots can still alias one buffer handle; reject that too.
	if srcBuf == dstBuf {
		return eris.Wrap(ErrSameBufferCopy, "copy rejected")
	}
	if err := m.alloc.CopyBuffer(srcBuf, dstBuf, size); err != nil {
		return eris.Wrap(err, "device copy failed")
	}
	return nil
}
