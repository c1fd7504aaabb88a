package renderer

import (
	"fmt"
	"log"
	"sync"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/richinsley/azurescens/graphics"
	"github.com/richinsley/azurescens/shader"
	"github.com/richinsley/azurescens/translator"
)

var glInitOnce sync.Once

// feedbackLocations caches the uniform locations of the feedback program.
type feedbackLocations struct {
	srcNear        int32
	srcLin         int32
	scale          int32
	paramC         int32
	paramT         int32
	invert         int32
	permuteColors  int32
	fade           int32
	colorCycleRate int32
	mixLinear      int32
	mixLinearTV    int32
}

// GLBackend implements Backend on an OpenGL 4.1 core (or GLES 3) context.
type GLBackend struct {
	context graphics.Context

	// Double-buffering resources, indexed by Slot.
	fbo       [2]uint32
	textureID [2]uint32
	size      int

	// Two samplers over the same read texture: nearest and linear magnification.
	nearSampler uint32
	linSampler  uint32

	quadVAO uint32
	quadVBO uint32
	quadEBO uint32

	feedbackProgram uint32
	feedbackLocs    feedbackLocations
	blitProgram     uint32
	blitSrcLoc      int32
}

// NewGLBackend initializes OpenGL on ctx and allocates the feedback
// textures, geometry and programs.
func NewGLBackend(ctx graphics.Context, textureSize int, shaders shader.Loader) (*GLBackend, error) {
	b := &GLBackend{
		context: ctx,
		size:    textureSize,
	}

	// Make the context current on this thread.
	b.context.MakeCurrent()

	var initErr error
	glInitOnce.Do(func() {
		initErr = gl.Init()
	})
	if initErr != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", initErr)
	}

	log.Printf("OpenGL %s", gl.GoStr(gl.GetString(gl.VERSION)))
	log.Printf("GLSL   %s", gl.GoStr(gl.GetString(gl.SHADING_LANGUAGE_VERSION)))

	if err := b.initTextures(); err != nil {
		b.Destroy()
		return nil, err
	}
	b.initSamplers()
	b.initQuad()
	if err := b.initPrograms(shaders); err != nil {
		b.Destroy()
		return nil, err
	}

	// Clear the screen.
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	gl.ClearColor(0, 0, 0, 1)
	gl.Clear(gl.COLOR_BUFFER_BIT)
	b.context.EndFrame()

	if err := checkError("initializing renderer"); err != nil {
		b.Destroy()
		return nil, err
	}
	return b, nil
}

// initTextures creates two framebuffers and two textures for double
// buffering. Their initial contents are undefined.
func (b *GLBackend) initTextures() error {
	for i := 0; i < 2; i++ {
		var fbo, texture uint32
		gl.GenTextures(1, &texture)
		gl.BindTexture(gl.TEXTURE_2D, texture)
		gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, int32(b.size), int32(b.size), 0, gl.RGBA, gl.UNSIGNED_BYTE, nil)

		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)

		gl.GenFramebuffers(1, &fbo)
		gl.BindFramebuffer(gl.FRAMEBUFFER, fbo)
		gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.COLOR_ATTACHMENT0, gl.TEXTURE_2D, texture, 0)

		b.fbo[i] = fbo
		b.textureID[i] = texture

		if gl.CheckFramebufferStatus(gl.FRAMEBUFFER) != gl.FRAMEBUFFER_COMPLETE {
			gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
			return fmt.Errorf("framebuffer %d for feedback texture is not complete", i)
		}
	}

	// Unbind to avoid accidental modifications
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	gl.BindTexture(gl.TEXTURE_2D, 0)
	return nil
}

func (b *GLBackend) initSamplers() {
	newSampler := func(magFilter int32) uint32 {
		var s uint32
		gl.GenSamplers(1, &s)
		gl.SamplerParameteri(s, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
		gl.SamplerParameteri(s, gl.TEXTURE_MAG_FILTER, magFilter)
		gl.SamplerParameteri(s, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
		gl.SamplerParameteri(s, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
		return s
	}
	b.nearSampler = newSampler(gl.NEAREST)
	b.linSampler = newSampler(gl.LINEAR)
}

func (b *GLBackend) initQuad() {
	gl.GenVertexArrays(1, &b.quadVAO)
	gl.GenBuffers(1, &b.quadVBO)
	gl.GenBuffers(1, &b.quadEBO)

	gl.BindVertexArray(b.quadVAO)
	gl.BindBuffer(gl.ARRAY_BUFFER, b.quadVBO)
	gl.BufferData(gl.ARRAY_BUFFER, len(QuadVertices)*2*4, gl.Ptr(&QuadVertices[0].Pos[0]), gl.STATIC_DRAW)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointer(0, 2, gl.FLOAT, false, 2*4, gl.PtrOffset(0))

	// The element buffer binding is stored in the VAO.
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, b.quadEBO)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(QuadIndices), gl.Ptr(&QuadIndices[0]), gl.STATIC_DRAW)

	gl.BindVertexArray(0)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
}

func (b *GLBackend) initPrograms(shaders shader.Loader) error {
	isGLES := b.context.IsGLES()
	vertexShaderSource := shader.GenerateVertexShader(isGLES)

	var err error
	b.blitProgram, err = newProgram(vertexShaderSource, shader.GetBlitFragmentShader(isGLES))
	if err != nil {
		return fmt.Errorf("failed to create blit program: %w", err)
	}
	b.blitSrcLoc = gl.GetUniformLocation(b.blitProgram, gl.Str("src\x00"))

	source, err := shaders.GetFeedbackShader()
	if err != nil {
		return err
	}
	fs, err := translator.TranslateFragment(source, isGLES)
	if err != nil {
		return err
	}
	b.feedbackProgram, err = newProgram(vertexShaderSource, fs.Code)
	if err != nil {
		return fmt.Errorf("failed to create feedback program: %w", err)
	}

	// A shader loaded from disk may not declare every uniform. Its locations
	// stay at -1 and GL ignores the corresponding writes.
	for _, name := range shader.MissingUniforms(fs.MappedNames) {
		log.Printf("Warning: feedback shader does not declare uniform %s", name)
	}
	locs := make(map[string]int32, len(shader.FeedbackUniforms))
	for _, name := range shader.FeedbackUniforms {
		locs[name] = uniformLocation(b.feedbackProgram, fs.MappedNames, name)
	}
	b.feedbackLocs = feedbackLocations{
		srcNear:        locs["src_near"],
		srcLin:         locs["src_lin"],
		scale:          locs["scale"],
		paramC:         locs["param_c"],
		paramT:         locs["param_t"],
		invert:         locs["invert"],
		permuteColors:  locs["permute_colors"],
		fade:           locs["fade"],
		colorCycleRate: locs["color_cycle_rate"],
		mixLinear:      locs["mix_linear"],
		mixLinearTV:    locs["mix_linear_tv"],
	}
	return nil
}

// TextureSize implements Backend.
func (b *GLBackend) TextureSize() int { return b.size }

// DrawFeedback implements Backend.
func (b *GLBackend) DrawFeedback(dst, src Slot, u Uniforms) error {
	gl.BindFramebuffer(gl.FRAMEBUFFER, b.fbo[dst])
	gl.Viewport(0, 0, int32(b.size), int32(b.size))
	gl.UseProgram(b.feedbackProgram)

	// The same texture is bound on both units; the samplers pick the filter.
	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, b.textureID[src])
	gl.BindSampler(0, b.nearSampler)
	gl.ActiveTexture(gl.TEXTURE1)
	gl.BindTexture(gl.TEXTURE_2D, b.textureID[src])
	gl.BindSampler(1, b.linSampler)

	l := &b.feedbackLocs
	gl.Uniform1i(l.srcNear, 0)
	gl.Uniform1i(l.srcLin, 1)
	gl.Uniform1f(l.scale, u.Scale)
	gl.Uniform2f(l.paramC, u.Seed[0], u.Seed[1])
	gl.Uniform1f(l.paramT, u.Time)
	gl.Uniform1i(l.invert, boolToInt(u.Invert))
	gl.Uniform1i(l.permuteColors, boolToInt(u.PermuteColors))
	gl.Uniform1f(l.fade, u.Fade)
	gl.Uniform1f(l.colorCycleRate, u.ColorCycleRate)
	gl.Uniform1f(l.mixLinear, u.MixLinear)
	gl.Uniform1f(l.mixLinearTV, u.MixLinearTV)

	b.drawQuad()

	gl.BindSampler(1, 0)
	gl.BindTexture(gl.TEXTURE_2D, 0)
	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindSampler(0, 0)
	gl.BindTexture(gl.TEXTURE_2D, 0)
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)

	return checkError("feedback draw")
}

// Blit implements Backend.
func (b *GLBackend) Blit(src Slot) error {
	fbWidth, fbHeight := b.context.GetFramebufferSize()
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	gl.Viewport(0, 0, int32(fbWidth), int32(fbHeight))
	gl.UseProgram(b.blitProgram)
	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, b.textureID[src])
	gl.Uniform1i(b.blitSrcLoc, 0)

	b.drawQuad()

	gl.BindTexture(gl.TEXTURE_2D, 0)
	return checkError("blit draw")
}

// ReadPixels implements Backend.
func (b *GLBackend) ReadPixels(src Slot) ([]byte, error) {
	pixels := make([]byte, b.size*b.size*4)
	gl.BindFramebuffer(gl.READ_FRAMEBUFFER, b.fbo[src])
	gl.PixelStorei(gl.PACK_ALIGNMENT, 1)
	gl.ReadPixels(0, 0, int32(b.size), int32(b.size), gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(pixels))
	gl.BindFramebuffer(gl.READ_FRAMEBUFFER, 0)
	if err := checkError("reading feedback texture"); err != nil {
		return nil, err
	}
	return pixels, nil
}

func (b *GLBackend) drawQuad() {
	gl.BindVertexArray(b.quadVAO)
	gl.DrawElements(gl.TRIANGLES, int32(len(QuadIndices)), gl.UNSIGNED_BYTE, nil)
	gl.BindVertexArray(0)
}

// Destroy releases all GL objects. The context itself is shut down by its owner.
func (b *GLBackend) Destroy() {
	gl.DeleteFramebuffers(2, &b.fbo[0])
	gl.DeleteTextures(2, &b.textureID[0])
	gl.DeleteSamplers(1, &b.nearSampler)
	gl.DeleteSamplers(1, &b.linSampler)
	gl.DeleteBuffers(1, &b.quadVBO)
	gl.DeleteBuffers(1, &b.quadEBO)
	gl.DeleteVertexArrays(1, &b.quadVAO)
	if b.feedbackProgram != 0 {
		gl.DeleteProgram(b.feedbackProgram)
	}
	if b.blitProgram != 0 {
		gl.DeleteProgram(b.blitProgram)
	}
}
