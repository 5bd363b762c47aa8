// Package worldstage tracks which lifecycle stage the engine is in.
package worldstage

import (
	"sync/atomic"
)

type Stage string

const (
	Init         Stage = "Init"         // Systems, resources and components are being registered
	Starting     Stage = "Starting"     // Startup systems are running
	Running      Stage = "Running"      // The event loop is driving frames
	ShuttingDown Stage = "ShuttingDown" // The event loop was asked to exit
	ShutDown     Stage = "ShutDown"     // The event loop has exited
)

type Manager struct {
	current *atomic.Value
}

func NewManager() *Manager {
	m := &Manager{
		current: &atomic.Value{},
	}
	m.Store(Init)
	return m
}

func (m *Manager) CompareAndSwap(oldStage, newStage Stage) (swapped bool) {
	return m.current.CompareAndSwap(oldStage, newStage)
}

func (m *Manager) Current() Stage {
	return m.current.Load().(Stage)
}

func (m *Manager) Store(val Stage) {
	m.current.Store(val)
}

func (m *Manager) Swap(newStage Stage) (oldStage Stage) {
	return m.current.Swap(newStage).(Stage)
}
