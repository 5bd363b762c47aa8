// Package systems bundles the game features shipped with the engine. Each
// feature is assembled as a PartialManager and folded into the manager with
// Integrate.
package systems

import (
	lodestar "github.com/lodestar-engine/lodestar"
	"github.com/lodestar-engine/lodestar/events"
	"github.com/lodestar-engine/lodestar/system"
	"github.com/lodestar-engine/lodestar/window"
	"github.com/lodestar-engine/lodestar/world"
)

// MovementEvent is raised when a movement key changes state.
type MovementEvent struct{}

// MovementData carries the direction flags for one movement event.
type MovementData struct {
	Up    bool
	Down  bool
	Left  bool
	Right bool
}

// Movement assembles the WASD movement feature: a window-event system that
// turns key presses into MovementEvents, and a handler that reacts to them.
func Movement() *lodestar.PartialManager {
	p := lodestar.NewPartialManager()
	p.AddWindowEventSystems(system.New[system.WindowEvent](getMovement))
	p.AddEventHandler(MovementEvent{}, system.New[system.Handler](handleMovement))
	return p
}

func getMovement(w *world.World, ev window.Event) error {
	key, ok := ev.(window.KeyboardInput)
	if !ok || !key.Pressed {
		return nil
	}

	var data MovementData
	switch key.Key {
	case window.KeyW:
		data.Up = true
	case window.KeyS:
		data.Down = true
	case window.KeyA:
		data.Left = true
	case window.KeyD:
		data.Right = true
	default:
		return nil
	}

	w.RaiseEvent(MovementEvent{}, data)
	return nil
}

func handleMovement(w *world.World, payload events.Payload) error {
	data, ok := payload.(MovementData)
	if !ok {
		return nil
	}
	w.Logger().Info().
		Bool("up", data.Up).
		Bool("down", data.Down).
		Bool("left", data.Left).
		Bool("right", data.Right).
		Msg("movement input")
	return nil
}
