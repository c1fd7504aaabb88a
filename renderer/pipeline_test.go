package renderer

import (
	"errors"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/richinsley/azurescens/params"
	"github.com/richinsley/azurescens/plane"
)

type feedbackCall struct {
	dst, src Slot
	u        Uniforms
}

// fakeBackend records every call instead of touching a GPU.
type fakeBackend struct {
	feedback  []feedbackCall
	blits     []Slot
	reads     []Slot
	size      int
	drawErr   error
	blitErr   error
	readErr   error
	callOrder []string
}

func (b *fakeBackend) DrawFeedback(dst, src Slot, u Uniforms) error {
	b.callOrder = append(b.callOrder, "feedback")
	if b.drawErr != nil {
		return b.drawErr
	}
	b.feedback = append(b.feedback, feedbackCall{dst, src, u})
	return nil
}

func (b *fakeBackend) Blit(src Slot) error {
	b.callOrder = append(b.callOrder, "blit")
	if b.blitErr != nil {
		return b.blitErr
	}
	b.blits = append(b.blits, src)
	return nil
}

func (b *fakeBackend) ReadPixels(src Slot) ([]byte, error) {
	b.callOrder = append(b.callOrder, "read")
	if b.readErr != nil {
		return nil, b.readErr
	}
	b.reads = append(b.reads, src)
	return make([]byte, b.size*b.size*4), nil
}

func (b *fakeBackend) TextureSize() int { return b.size }

func TestPingPongParity(t *testing.T) {
	p := NewPingPong()
	start := p.Read()
	if p.Write() == start {
		t.Fatalf("read and write share slot %d", start)
	}
	for n := 1; n <= 9; n++ {
		p.Swap()
		if p.Passes() != n {
			t.Fatalf("Passes() = %d, want %d", p.Passes(), n)
		}
		if n%2 == 0 && p.Read() != start {
			t.Errorf("after %d swaps read = %d, want %d", n, p.Read(), start)
		}
		if n%2 == 1 && p.Write() != start {
			t.Errorf("after %d swaps write = %d, want %d", n, p.Write(), start)
		}
		if p.Read() == p.Write() {
			t.Fatalf("after %d swaps read and write share slot %d", n, p.Read())
		}
	}
}

func TestQuadGeometry(t *testing.T) {
	if len(QuadVertices) != 4 || len(QuadIndices) != 6 {
		t.Fatalf("quad has %d vertices and %d indices", len(QuadVertices), len(QuadIndices))
	}
	for _, v := range QuadVertices {
		for _, c := range v.Pos {
			if c != -1 && c != 1 {
				t.Errorf("vertex %v is not a corner of NDC", v.Pos)
			}
		}
	}
	for _, i := range QuadIndices {
		if int(i) >= len(QuadVertices) {
			t.Errorf("index %d out of range", i)
		}
	}
}

func TestRenderFrameSequence(t *testing.T) {
	b := &fakeBackend{size: 8}
	store := params.NewStore(params.Default())
	now := 0.0
	p := NewPipeline(b, store, func() float64 { now += 0.5; return now })

	seed := mgl32.Vec2{0.25, -0.75}
	if err := p.RenderFrame(seed); err != nil {
		t.Fatalf("RenderFrame() = %v", err)
	}

	want := []string{"feedback", "feedback", "blit"}
	if len(b.callOrder) != len(want) {
		t.Fatalf("calls = %v, want %v", b.callOrder, want)
	}
	for i := range want {
		if b.callOrder[i] != want[i] {
			t.Fatalf("calls = %v, want %v", b.callOrder, want)
		}
	}

	// First pass reads 0 and writes 1, the second reads back what the first wrote.
	if b.feedback[0].src != 0 || b.feedback[0].dst != 1 {
		t.Errorf("pass 0 = %d->%d, want 0->1", b.feedback[0].src, b.feedback[0].dst)
	}
	if b.feedback[1].src != 1 || b.feedback[1].dst != 0 {
		t.Errorf("pass 1 = %d->%d, want 1->0", b.feedback[1].src, b.feedback[1].dst)
	}
	// After two passes the blit shows the texture written last.
	if b.blits[0] != b.feedback[1].dst {
		t.Errorf("blit read %d, want %d", b.blits[0], b.feedback[1].dst)
	}
	if p.Buffers().Read() != 0 || p.Buffers().Passes() != 2 {
		t.Errorf("buffers read=%d passes=%d, want 0 and 2", p.Buffers().Read(), p.Buffers().Passes())
	}

	for i, call := range b.feedback {
		u := call.u
		if u.Scale != plane.Scale {
			t.Errorf("pass %d scale = %v", i, u.Scale)
		}
		if u.Seed != seed {
			t.Errorf("pass %d seed = %v, want %v", i, u.Seed, seed)
		}
	}
	if b.feedback[0].u.Time != 0.5 || b.feedback[1].u.Time != 1.0 {
		t.Errorf("times = %v, %v; each pass should read the clock", b.feedback[0].u.Time, b.feedback[1].u.Time)
	}
}

func TestRenderFrameReflectsParameterUpdate(t *testing.T) {
	b := &fakeBackend{size: 8}
	store := params.NewStore(params.Default())
	p := NewPipeline(b, store, func() float64 { return 0 })

	if err := p.RenderFrame(mgl32.Vec2{}); err != nil {
		t.Fatal(err)
	}
	before := b.feedback[len(b.feedback)-1].u

	next := params.Default()
	next.Invert = false
	next.Fade = 0.5
	if err := store.Replace(next); err != nil {
		t.Fatal(err)
	}

	b.feedback = nil
	if err := p.RenderFrame(mgl32.Vec2{}); err != nil {
		t.Fatal(err)
	}
	for i, call := range b.feedback {
		want := before
		want.Invert = false
		want.Fade = 0.5
		if call.u != want {
			t.Errorf("pass %d uniforms = %+v, want %+v", i, call.u, want)
		}
	}
	if before.Invert != true || before.Fade != 0.9 || before.PermuteColors != true ||
		before.ColorCycleRate != 1.0 || before.MixLinear != 0 || before.MixLinearTV != 0.2 {
		t.Errorf("default uniforms = %+v", before)
	}
}

func TestRenderFrameErrors(t *testing.T) {
	gpuLost := errors.New("context lost")

	t.Run("poisoned store", func(t *testing.T) {
		b := &fakeBackend{size: 8}
		store := params.NewStore(params.Default())
		store.Poison(errors.New("control panel died"))
		p := NewPipeline(b, store, func() float64 { return 0 })

		err := p.RenderFrame(mgl32.Vec2{})
		if !errors.Is(err, params.ErrPoisoned) {
			t.Fatalf("RenderFrame() = %v, want ErrPoisoned", err)
		}
		if len(b.callOrder) != 0 {
			t.Errorf("draws issued with a poisoned store: %v", b.callOrder)
		}
	})

	t.Run("draw failure", func(t *testing.T) {
		b := &fakeBackend{size: 8, drawErr: gpuLost}
		p := NewPipeline(b, params.NewStore(params.Default()), func() float64 { return 0 })
		if err := p.RenderFrame(mgl32.Vec2{}); !errors.Is(err, gpuLost) {
			t.Fatalf("RenderFrame() = %v, want %v", err, gpuLost)
		}
		if len(b.callOrder) != 1 {
			t.Errorf("calls after failure: %v", b.callOrder)
		}
		if p.Buffers().Passes() != 0 {
			t.Errorf("failed pass was counted")
		}
	})

	t.Run("blit failure", func(t *testing.T) {
		b := &fakeBackend{size: 8, blitErr: gpuLost}
		p := NewPipeline(b, params.NewStore(params.Default()), func() float64 { return 0 })
		if err := p.RenderFrame(mgl32.Vec2{}); !errors.Is(err, gpuLost) {
			t.Fatalf("RenderFrame() = %v, want %v", err, gpuLost)
		}
	})
}

func TestCaptureReadsLatestFrame(t *testing.T) {
	b := &fakeBackend{size: 4}
	p := NewPipeline(b, params.NewStore(params.Default()), func() float64 { return 0 })
	if err := p.RenderFrame(mgl32.Vec2{}); err != nil {
		t.Fatal(err)
	}
	pixels, err := p.Capture()
	if err != nil {
		t.Fatal(err)
	}
	if len(pixels) != 4*4*4 {
		t.Errorf("len(pixels) = %d, want %d", len(pixels), 4*4*4)
	}
	if b.reads[0] != p.Buffers().Read() {
		t.Errorf("captured slot %d, want read slot %d", b.reads[0], p.Buffers().Read())
	}
}
