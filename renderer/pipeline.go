package renderer

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/richinsley/azurescens/params"
)

// FeedbackPassesPerFrame is the number of feedback passes run before each
// blit. Each pass inverts colors when Invert is set, so an even count keeps
// the displayed image from blinking.
const FeedbackPassesPerFrame = 2

// Backend performs the GPU work of the pipeline.
type Backend interface {
	// DrawFeedback renders the feedback shader sampling src into dst.
	DrawFeedback(dst, src Slot, u Uniforms) error
	// Blit copies src to the visible surface.
	Blit(src Slot) error
	// ReadPixels returns the RGBA8 contents of src, bottom row first.
	ReadPixels(src Slot) ([]byte, error)
	// TextureSize is the edge length of the square feedback textures.
	TextureSize() int
}

// Pipeline drives the fixed feedback, feedback, blit sequence.
type Pipeline struct {
	backend Backend
	store   *params.Store
	buffers *PingPong
	clock   func() float64
}

// NewPipeline returns a pipeline reading parameters from store and elapsed
// time in seconds from clock.
func NewPipeline(backend Backend, store *params.Store, clock func() float64) *Pipeline {
	return &Pipeline{
		backend: backend,
		store:   store,
		buffers: NewPingPong(),
		clock:   clock,
	}
}

// Buffers exposes the texture role assignment.
func (p *Pipeline) Buffers() *PingPong { return p.buffers }

// Backend returns the GPU backend.
func (p *Pipeline) Backend() Backend { return p.backend }

// RenderFrame runs the feedback passes and draws the result to the screen.
// Every error is unrecoverable for the caller.
func (p *Pipeline) RenderFrame(seed mgl32.Vec2) error {
	for i := 0; i < FeedbackPassesPerFrame; i++ {
		snap, err := p.store.Snapshot()
		if err != nil {
			return fmt.Errorf("reading parameters: %w", err)
		}
		u := newUniforms(snap, seed, float32(p.clock()))
		if err := p.backend.DrawFeedback(p.buffers.Write(), p.buffers.Read(), u); err != nil {
			return fmt.Errorf("feedback pass %d: %w", p.buffers.Passes(), err)
		}
		p.buffers.Swap()
	}

	if err := p.backend.Blit(p.buffers.Read()); err != nil {
		return fmt.Errorf("blit: %w", err)
	}
	return nil
}

// Capture reads back the most recently completed feedback texture.
func (p *Pipeline) Capture() ([]byte, error) {
	return p.backend.ReadPixels(p.buffers.Read())
}
