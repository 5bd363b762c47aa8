package world_test

import (
	"testing"

	"github.com/rs/zerolog"
	"gotest.tools/v3/assert"

	"github.com/lodestar-engine/lodestar/store"
	"github.com/lodestar-engine/lodestar/world"
)

type Counter struct {
	Value int
}

type Tag struct {
	Name string
}

func newWorld() *world.World {
	return world.New(zerolog.Nop())
}

func TestResourceIsSingleton(t *testing.T) {
	w := newWorld()

	assert.Assert(t, world.AddResource(w, Counter{Value: 1}))
	assert.Assert(t, !world.AddResource(w, Counter{Value: 2}))

	ref, err := world.GetResource[Counter](w)
	assert.NilError(t, err)
	defer ref.Release()
	assert.Equal(t, 1, ref.Value().Value)
}

func TestMissingResource(t *testing.T) {
	w := newWorld()
	_, err := world.GetResource[Counter](w)
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.Assert(t, !world.HasResource[Counter](w))
}

func TestComponentsKeepInsertionOrder(t *testing.T) {
	w := newWorld()
	world.AddComponent(w, Tag{Name: "first"})
	world.AddComponent(w, Tag{Name: "second"})
	world.AddComponent(w, Tag{Name: "second"})

	tags, err := world.Components[Tag](w)
	assert.NilError(t, err)
	assert.Equal(t, 3, len(tags))
	assert.Equal(t, "first", tags[0].Name)
	assert.Equal(t, "second", tags[1].Name)
	assert.Equal(t, "second", tags[2].Name)
}

func TestUpdateComponents(t *testing.T) {
	w := newWorld()
	world.AddComponent(w, Counter{Value: 1})
	world.AddComponent(w, Counter{Value: 2})

	err := world.UpdateComponents(w, func(c *Counter) error {
		c.Value += 10
		return nil
	})
	assert.NilError(t, err)

	counters, err := world.Components[Counter](w)
	assert.NilError(t, err)
	assert.Equal(t, 11, counters[0].Value)
	assert.Equal(t, 12, counters[1].Value)
}

func TestRaiseAndDrainEvents(t *testing.T) {
	w := newWorld()

	type moved struct{}
	w.RaiseEvent(moved{}, 1)
	w.RaiseEvent(moved{}, 2)
	assert.Equal(t, 2, w.PendingEvents())

	drained := w.DrainEvents()
	assert.Equal(t, 2, len(drained))
	assert.Equal(t, 1, drained[0].Payload)
	assert.Equal(t, 2, drained[1].Payload)
	assert.Equal(t, 0, w.PendingEvents())
}

func TestTypeListings(t *testing.T) {
	w := newWorld()
	world.AddResource(w, Counter{})
	world.AddComponent(w, Tag{})

	assert.Equal(t, 1, len(w.ResourceTypes()))
	assert.Equal(t, 1, len(w.ComponentTypes()))
}
