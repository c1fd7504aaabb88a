package shader

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

//go:embed shaders/*.glsl
var builtin embed.FS

// FeedbackFile is the file name of the feedback fragment shader.
const FeedbackFile = "feedback.glsl"

// FeedbackUniforms lists every uniform the feedback shader must declare.
var FeedbackUniforms = []string{
	"src_near",
	"src_lin",
	"scale",
	"param_c",
	"param_t",
	"invert",
	"permute_colors",
	"fade",
	"color_cycle_rate",
	"mix_linear",
	"mix_linear_tv",
}

// MissingUniforms returns the names in FeedbackUniforms that have no entry
// in declared, the variable map of a translated shader.
func MissingUniforms(declared map[string]string) []string {
	var missing []string
	for _, name := range FeedbackUniforms {
		if _, ok := declared[name]; !ok {
			missing = append(missing, name)
		}
	}
	return missing
}

// ────────────────────────────────── Desktop GL ──────────────────────────────────

const vertexShaderSourceGL = `#version 410 core
layout (location = 0) in vec2 pos;
out vec2 frag_uv;
void main() {
    frag_uv = pos * 0.5 + 0.5;
    gl_Position = vec4(pos, 0.0, 1.0);
}
`

const blitFragmentShaderSourceGL = `#version 410 core
in vec2 frag_uv;
out vec4 fragColor;
uniform sampler2D src;
void main() { fragColor = texture(src, frag_uv); }
`

// ──────────────────────────────────── GLES ──────────────────────────────────────

const vertexShaderSourceGLES = `#version 300 es
layout (location = 0) in vec2 pos;
out vec2 frag_uv;
void main() {
    frag_uv = pos * 0.5 + 0.5;
    gl_Position = vec4(pos, 0.0, 1.0);
}
`

const blitFragmentShaderSourceGLES = `#version 300 es
precision mediump float;
in vec2 frag_uv;
out vec4 fragColor;
uniform sampler2D src;
void main() { fragColor = texture(src, frag_uv); }
`

// The feedback shader is written against WebGL2 and translated for the
// running context.
const feedbackPreamble = `#version 300 es
precision highp float;
precision highp int;

`

// ────────────────────────────────── Public API ─────────────────────────────────

func GenerateVertexShader(isGLES bool) string {
	if isGLES {
		return vertexShaderSourceGLES
	}
	return vertexShaderSourceGL
}

func GetBlitFragmentShader(isGLES bool) string {
	if isGLES {
		return blitFragmentShaderSourceGLES
	}
	return blitFragmentShaderSourceGL
}

// Loader reads fragment shader bodies. With an empty Dir the sources built
// into the binary are used; otherwise files are read from Dir so shaders can
// be edited without rebuilding.
type Loader struct {
	Dir string
}

// Source returns the shader body stored under name, without a version line.
func (l Loader) Source(name string) (string, error) {
	var (
		b   []byte
		err error
	)
	if l.Dir == "" {
		b, err = fs.ReadFile(builtin, "shaders/"+name)
	} else {
		b, err = os.ReadFile(filepath.Join(l.Dir, name))
	}
	if err != nil {
		return "", fmt.Errorf("could not load shader %s: %w", name, err)
	}
	return string(b), nil
}

// GetFeedbackShader returns the complete WebGL2 source of the feedback shader.
func (l Loader) GetFeedbackShader() (string, error) {
	body, err := l.Source(FeedbackFile)
	if err != nil {
		return "", err
	}
	return feedbackPreamble + body, nil
}
