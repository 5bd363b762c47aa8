// Package window defines the boundary to the platform windowing system: the
// closed set of platform events the engine consumes and the event loop that
// delivers them.
package window

// Event is a platform event delivered by a Loop. The set of events is closed;
// systems pattern-match on the concrete types below.
type Event interface {
	isEvent()
}

// AboutToWait is delivered once per loop iteration after all pending platform
// events have been handled.
type AboutToWait struct{}

// RedrawRequested asks the engine to draw a frame.
type RedrawRequested struct{}

// CloseRequested is delivered when the user asks the window to close.
type CloseRequested struct{}

// Resized carries the new framebuffer size.
type Resized struct {
	Width  int
	Height int
}

// KeyboardInput carries a single key state change.
type KeyboardInput struct {
	Key     Key
	Pressed bool
}

func (AboutToWait) isEvent()     {}
func (RedrawRequested) isEvent() {}
func (CloseRequested) isEvent()  {}
func (Resized) isEvent()         {}
func (KeyboardInput) isEvent()   {}

// Key identifies a keyboard key. Only the keys the engine reacts to are
// named; everything else maps to KeyUnknown.
type Key int

const (
	KeyUnknown Key = iota
	KeyW
	KeyA
	KeyS
	KeyD
	KeyEscape
)

// Loop drives the engine: it delivers platform events to the handler until
// the loop exits. A non-nil handler error stops the loop immediately and is
// returned from Run.
type Loop interface {
	Run(handler func(Event) error) error

	// RequestRedraw asks the loop to deliver a RedrawRequested event.
	RequestRedraw()

	// Exit asks the loop to stop after the current iteration.
	Exit()
}
