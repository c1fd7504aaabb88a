package renderer

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/richinsley/azurescens/params"
	"github.com/richinsley/azurescens/plane"
)

// Uniforms is the complete per-pass input of the feedback shader, apart from
// the source samplers.
type Uniforms struct {
	Scale          float32
	Seed           mgl32.Vec2
	Time           float32
	Invert         bool
	PermuteColors  bool
	Fade           float32
	ColorCycleRate float32
	MixLinear      float32
	MixLinearTV    float32
}

func newUniforms(p params.Params, seed mgl32.Vec2, t float32) Uniforms {
	return Uniforms{
		Scale:          plane.Scale,
		Seed:           seed,
		Time:           t,
		Invert:         p.Invert,
		PermuteColors:  p.PermuteColors,
		Fade:           p.Fade,
		ColorCycleRate: p.ColorCycleRate,
		MixLinear:      p.MixLinear,
		MixLinearTV:    p.MixLinearTV,
	}
}

// Vertex is a 2D position in normalized device coordinates.
type Vertex struct {
	Pos [2]float32
}

// QuadVertices and QuadIndices are two triangles covering the whole surface.
var (
	QuadVertices = [4]Vertex{
		{Pos: [2]float32{-1, -1}},
		{Pos: [2]float32{-1, 1}},
		{Pos: [2]float32{1, 1}},
		{Pos: [2]float32{1, -1}},
	}
	QuadIndices = [6]uint8{
		0, 1, 2,
		2, 3, 0,
	}
)
