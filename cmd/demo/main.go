// Command demo opens a window, brings up the Vulkan device, uploads a quad
// and a checkerboard texture through the staging path and runs the movement
// feature until the window closes or Escape is pressed.
package main

import (
	"os"

	"github.com/rs/zerolog"

	lodestar "github.com/lodestar-engine/lodestar"
	"github.com/lodestar-engine/lodestar/engine"
	"github.com/lodestar-engine/lodestar/log"
	"github.com/lodestar-engine/lodestar/system"
	"github.com/lodestar-engine/lodestar/systems"
	"github.com/lodestar-engine/lodestar/vulkan"
	"github.com/lodestar-engine/lodestar/window"
	"github.com/lodestar-engine/lodestar/world"
)

var quadVertices = []engine.Vertex{
	{Pos: [3]float32{-0.5, -0.5, 0}, Color: [3]float32{1, 0, 0}, TexCoord: [2]float32{0, 0}},
	{Pos: [3]float32{0.5, -0.5, 0}, Color: [3]float32{0, 1, 0}, TexCoord: [2]float32{1, 0}},
	{Pos: [3]float32{0.5, 0.5, 0}, Color: [3]float32{0, 0, 1}, TexCoord: [2]float32{1, 1}},
	{Pos: [3]float32{-0.5, 0.5, 0}, Color: [3]float32{1, 1, 1}, TexCoord: [2]float32{0, 1}},
}

var quadIndices = []uint32{0, 1, 2, 2, 3, 0}

// renderer bundles the device-dependent handles that only exist once the
// startup systems have run. It is registered behind a Deferred so frame
// systems can look it up before it is bound.
type renderer struct {
	device *vulkan.GraphicsDevice
	eng    *engine.Engine
}

func main() {
	if err := run(); err != nil {
		zerolog.New(os.Stderr).Fatal().Err(err).Msg("demo failed")
	}
}

func run() error {
	m, err := lodestar.New()
	if err != nil {
		return err
	}
	cfg := m.Config()
	logger := log.NewLogger(cfg.LogLevel)

	loop, err := window.NewGLFWLoop(cfg.WindowTitle, cfg.WindowWidth, cfg.WindowHeight, logger)
	if err != nil {
		return err
	}

	deferred := &engine.Deferred[*renderer]{}
	lodestar.AddResource(m, deferred)
	m.AddStartupSystems(system.Chain[system.Startup](
		bringUpRenderer(loop, cfg, logger),
		uploadQuad(cfg.FramesInFlight),
	))
	m.AddWindowEventSystems(system.New[system.WindowEvent](exitOnEscape(loop)))
	if err := m.Integrate(systems.Movement()); err != nil {
		return err
	}

	runErr := m.Run(loop)

	// The renderer is bound during startup, so teardown has to go through
	// the same deferred handle.
	if r, err := deferred.Get(); err == nil {
		r.device.WaitIdle()
		r.eng.Destroy()
		r.device.Destroy()
	}
	return runErr
}

// bringUpRenderer creates the Vulkan device against the loop's window and
// binds the renderer into the deferred resource.
func bringUpRenderer(loop *window.GLFWLoop, cfg lodestar.EngineConfig, logger zerolog.Logger) system.Startup {
	return func(w *world.World) error {
		device, err := vulkan.NewGraphicsDevice(cfg.WindowTitle, loop.Window(), logger)
		if err != nil {
			return err
		}

		ref, err := world.GetResource[*engine.Deferred[*renderer]](w)
		if err != nil {
			device.Destroy()
			return err
		}
		defer ref.Release()
		(*ref.Value()).Set(&renderer{device: device, eng: engine.New(device, logger)})
		return nil
	}
}

// uploadQuad pushes the demo geometry and texture through the staging buffer
// and creates the per-frame uniform buffers.
func uploadQuad(framesInFlight int) system.Startup {
	return func(w *world.World) error {
		ref, err := world.GetResource[*engine.Deferred[*renderer]](w)
		if err != nil {
			return err
		}
		defer ref.Release()
		r, err := (*ref.Value()).Get()
		if err != nil {
			return err
		}
		eng := r.eng

		if err := eng.UploadStandard(engine.Vertices, engine.VertexBytes(quadVertices)); err != nil {
			return err
		}
		if err := eng.UploadStandard(engine.Indices, engine.IndexBytes(quadIndices)); err != nil {
			return err
		}
		if err := eng.UploadTexture(engine.Bird, checkerboard(64, 64), 64, 64); err != nil {
			return err
		}
		return eng.CreateUniforms(engine.ModelViewProjection, 64, framesInFlight)
	}
}

// checkerboard fills a width by height RGBA image with an 8px check pattern.
func checkerboard(width, height uint32) []byte {
	pixels := make([]byte, width*height*4)
	for y := uint32(0); y < height; y++ {
		for x := uint32(0); x < width; x++ {
			i := (y*width + x) * 4
			if (x/8+y/8)%2 == 0 {
				pixels[i], pixels[i+1], pixels[i+2] = 0xFF, 0xFF, 0xFF
			}
			pixels[i+3] = 0xFF
		}
	}
	return pixels
}

func exitOnEscape(loop window.Loop) system.WindowEvent {
	return func(w *world.World, ev window.Event) error {
		if key, ok := ev.(window.KeyboardInput); ok && key.Pressed && key.Key == window.KeyEscape {
			w.Logger().Info().Msg("escape pressed, exiting")
			loop.Exit()
		}
		return nil
	}
}
