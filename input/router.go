package input

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/richinsley/azurescens/plane"
)

// ErrDegenerateSurface is returned when a pointer position has to be mapped
// onto a surface narrower than two pixels on either axis.
var ErrDegenerateSurface = errors.New("degenerate surface size")

// DefaultSeed is the value of 'c' before any pointer input arrives.
var DefaultSeed = mgl32.Vec2{0.3, 0.3}

// DefaultCaptureKey requests a screenshot.
const DefaultCaptureKey Key = 's'

// Result summarizes one batch of events.
type Result struct {
	Quit    bool
	Capture bool
}

// Router turns platform events into updates of the feedback seed.
type Router struct {
	Seed       mgl32.Vec2
	CaptureKey Key
}

// NewRouter returns a router holding the default seed.
func NewRouter() *Router {
	return &Router{
		Seed:       DefaultSeed,
		CaptureKey: DefaultCaptureKey,
	}
}

// Dispatch applies a batch of events in order. width and height are the
// current window size in the same units as the event coordinates. Later
// positions overwrite earlier ones; a close anywhere in the batch sets Quit
// without discarding the rest of the batch.
func (r *Router) Dispatch(events []Event, width, height int) (Result, error) {
	var res Result
	for _, ev := range events {
		switch e := ev.(type) {
		case CloseEvent:
			res.Quit = true

		case PointerMoveEvent:
			if err := r.moveTo(e.X, e.Y, width, height); err != nil {
				return res, err
			}

		case TouchEvent:
			if e.Phase != TouchStarted && e.Phase != TouchMoved {
				continue
			}
			if err := r.moveTo(e.X, e.Y, width, height); err != nil {
				return res, err
			}

		case KeyEvent:
			if e.Action == KeyPress && e.Key == r.CaptureKey {
				res.Capture = true
			}
		}
	}
	return res, nil
}

func (r *Router) moveTo(x, y float64, width, height int) error {
	if width < 2 || height < 2 {
		return fmt.Errorf("%w: %dx%d", ErrDegenerateSurface, width, height)
	}
	r.Seed = plane.PixelToPlane(x, y, width, height)
	return nil
}
