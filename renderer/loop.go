package renderer

import (
	"fmt"
	"log"

	"github.com/richinsley/azurescens/fps"
	"github.com/richinsley/azurescens/graphics"
	"github.com/richinsley/azurescens/input"
)

// Saver persists a captured feedback texture.
type Saver interface {
	Save(pixels []byte, size int) (string, error)
}

// FrameSink consumes every displayed frame, e.g. a video recorder.
type FrameSink interface {
	Submit(pixels []byte)
}

// Loop runs the render/event cycle until the window is closed.
type Loop struct {
	Context  graphics.Context
	Pipeline *Pipeline
	Router   *input.Router
	FPS      *fps.Tracker
	Saver    Saver     // optional
	Sink     FrameSink // optional
	Logger   *log.Logger
}

// Run blocks until a close event arrives or a fatal error occurs. The frame
// in flight when the close arrives is always completed and presented.
func (l *Loop) Run() error {
	logger := l.Logger
	if logger == nil {
		logger = log.Default()
	}

	for {
		if err := l.Pipeline.RenderFrame(l.Router.Seed); err != nil {
			return err
		}
		l.Context.EndFrame()
		l.FPS.Tick()

		w, h := l.Context.GetWindowSize()
		res, err := l.Router.Dispatch(l.Context.PollEvents(), w, h)
		if err != nil {
			return fmt.Errorf("dispatching events: %w", err)
		}

		// The read texture is untouched by the blit, so it still holds the
		// frame just shown.
		if res.Capture && l.Saver != nil {
			l.screenshot(logger)
		}
		if l.Sink != nil {
			pixels, err := l.Pipeline.Capture()
			if err != nil {
				return fmt.Errorf("reading frame for recording: %w", err)
			}
			l.Sink.Submit(pixels)
		}

		if res.Quit {
			return nil
		}
	}
}

func (l *Loop) screenshot(logger *log.Logger) {
	pixels, err := l.Pipeline.Capture()
	if err != nil {
		logger.Printf("FAILED to read screenshot pixels: %v", err)
		return
	}
	path, err := l.Saver.Save(pixels, l.Pipeline.Backend().TextureSize())
	if err != nil {
		logger.Printf("FAILED to save image %s: %v", path, err)
		return
	}
	logger.Printf("Saved screenshot %s", path)
}
