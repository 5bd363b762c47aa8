package lodestar_test

import (
	"testing"

	"gotest.tools/v3/assert"

	lodestar "github.com/lodestar-engine/lodestar"
	"github.com/lodestar-engine/lodestar/events"
	"github.com/lodestar-engine/lodestar/system"
	"github.com/lodestar-engine/lodestar/window"
	"github.com/lodestar-engine/lodestar/world"
)

type Foo struct {
	Value int
}

func TestIntegrateConcatenatesComponents(t *testing.T) {
	m := newManager(t)

	p1 := lodestar.NewPartialManager()
	lodestar.PartialComponent(p1, 10)
	p2 := lodestar.NewPartialManager()
	lodestar.PartialComponent(p2, 20)

	assert.NilError(t, m.Integrate(p1))
	assert.NilError(t, m.Integrate(p2))

	values, err := world.Components[int](m.World())
	assert.NilError(t, err)
	assert.DeepEqual(t, values, []int{10, 20})
}

func TestIntegrateResourceConflictFailsHard(t *testing.T) {
	m := newManager(t)

	p1 := lodestar.NewPartialManager()
	lodestar.PartialResource(p1, Foo{Value: 1})

	assert.NilError(t, m.Integrate(p1))
	assert.ErrorIs(t, m.Integrate(p1), lodestar.ErrAlreadyRegistered)

	// The first registration survives.
	ref, err := world.GetResource[Foo](m.World())
	assert.NilError(t, err)
	defer ref.Release()
	assert.Equal(t, 1, ref.Value().Value)
}

func TestFailedIntegrateLeavesManagerUntouched(t *testing.T) {
	m := newManager(t)
	lodestar.AddResource(m, Foo{Value: 1})

	p := lodestar.NewPartialManager()
	lodestar.PartialResource(p, Foo{Value: 2})
	lodestar.PartialComponent(p, 99)
	p.AddSystems(system.New[system.Frame](func(*world.World) error { return nil }))

	assert.ErrorIs(t, m.Integrate(p), lodestar.ErrAlreadyRegistered)

	_, err := world.Components[int](m.World())
	assert.Assert(t, err != nil, "components from the failed bundle must not be applied")
	assert.Equal(t, 0, len(m.SystemNames()))
}

func TestIntegrateAppendsSystemsAfterExisting(t *testing.T) {
	m := newManager(t)

	var ran []string
	m.AddSystems(system.New[system.Frame](func(*world.World) error {
		ran = append(ran, "manager")
		return nil
	}))

	p := lodestar.NewPartialManager()
	p.AddSystems(system.New[system.Frame](func(*world.World) error {
		ran = append(ran, "partial")
		return nil
	}))
	assert.NilError(t, m.Integrate(p))

	assert.NilError(t, m.Run(window.Frames(1)))
	assert.DeepEqual(t, ran, []string{"manager", "partial"})
}

func TestIntegrateEventHandlersFirstWins(t *testing.T) {
	m := newManager(t)

	managerRuns := 0
	partialRuns := 0
	m.AddEventHandler(Tick{}, system.New[system.Handler](func(*world.World, events.Payload) error {
		managerRuns++
		return nil
	}))

	p := lodestar.NewPartialManager()
	p.AddEventHandler(Tick{}, system.New[system.Handler](func(*world.World, events.Payload) error {
		partialRuns++
		return nil
	}))
	p.AddSystems(system.New[system.Frame](func(w *world.World) error {
		w.RaiseEvent(Tick{}, nil)
		return nil
	}))
	assert.NilError(t, m.Integrate(p))

	assert.NilError(t, m.Run(window.Frames(1)))
	assert.Equal(t, 1, managerRuns)
	assert.Equal(t, 0, partialRuns)
}

func TestPartialResourceFirstWinsWithinBundle(t *testing.T) {
	m := newManager(t)

	p := lodestar.NewPartialManager()
	lodestar.PartialResource(p, Foo{Value: 1})
	lodestar.PartialResource(p, Foo{Value: 2})
	assert.NilError(t, m.Integrate(p))

	ref, err := world.GetResource[Foo](m.World())
	assert.NilError(t, err)
	defer ref.Release()
	assert.Equal(t, 1, ref.Value().Value)
}

func TestIntegrateAfterRunFails(t *testing.T) {
	m := newManager(t)
	assert.NilError(t, m.Run(window.Frames(0)))
	assert.Assert(t, m.Integrate(lodestar.NewPartialManager()) != nil)
}
