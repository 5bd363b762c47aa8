package window

import (
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
	"github.com/vulkan-go/glfw/v3.3/glfw"
)

// GLFWLoop is the glfw-backed Loop used for real windows. Events observed by
// the glfw callbacks are queued and delivered to the handler in arrival
// order, followed by AboutToWait and, when requested, RedrawRequested.
type GLFWLoop struct {
	window       *glfw.Window
	pending      []Event
	redrawWanted bool
	logger       zerolog.Logger
}

// NewGLFWLoop initializes glfw and creates a window without a client API, as
// required for Vulkan surfaces.
func NewGLFWLoop(title string, width, height int, logger zerolog.Logger) (*GLFWLoop, error) {
	if err := glfw.Init(); err != nil {
		return nil, eris.Wrap(err, "failed to initialize glfw")
	}
	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)
	win, err := glfw.CreateWindow(width, height, title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, eris.Wrap(err, "failed to create window")
	}

	l := &GLFWLoop{window: win, logger: logger}
	win.SetKeyCallback(l.onKey)
	win.SetFramebufferSizeCallback(l.onResize)
	win.SetCloseCallback(l.onClose)
	return l, nil
}

// Window exposes the underlying glfw window for surface creation.
func (l *GLFWLoop) Window() *glfw.Window {
	return l.window
}

func (l *GLFWLoop) Run(handler func(Event) error) error {
	defer glfw.Terminate()
	for !l.window.ShouldClose() {
		glfw.PollEvents()

		queued := l.pending
		l.pending = nil
		for _, ev := range queued {
			if err := handler(ev); err != nil {
				return err
			}
		}
		if err := handler(AboutToWait{}); err != nil {
			return err
		}
		if l.redrawWanted {
			l.redrawWanted = false
			if err := handler(RedrawRequested{}); err != nil {
				return err
			}
		}
	}
	l.logger.Info().Msg("window closed, event loop exiting")
	return nil
}

func (l *GLFWLoop) RequestRedraw() {
	l.redrawWanted = true
}

func (l *GLFWLoop) Exit() {
	l.window.SetShouldClose(true)
}

func (l *GLFWLoop) onKey(_ *glfw.Window, key glfw.Key, _ int, action glfw.Action, _ glfw.ModifierKey) {
	if action == glfw.Repeat {
		return
	}
	l.pending = append(l.pending, KeyboardInput{
		Key:     translateKey(key),
		Pressed: action == glfw.Press,
	})
}

func (l *GLFWLoop) onResize(_ *glfw.Window, width, height int) {
	l.pending = append(l.pending, Resized{Width: width, Height: height})
}

func (l *GLFWLoop) onClose(_ *glfw.Window) {
	l.pending = append(l.pending, CloseRequested{})
}

func translateKey(key glfw.Key) Key {
	switch key {
	case glfw.KeyW:
		return KeyW
	case glfw.KeyA:
		return KeyA
	case glfw.KeyS:
		return KeyS
	case glfw.KeyD:
		return KeyD
	case glfw.KeyEscape:
		return KeyEscape
	default:
		return KeyUnknown
	}
}
