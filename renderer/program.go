package renderer

import (
	"fmt"
	"strings"

	"github.com/go-gl/gl/v4.1-core/gl"
)

func newProgram(vertexShaderSource, fragmentShaderSource string) (uint32, error) {
	vertexShader, err := compileShader(vertexShaderSource, gl.VERTEX_SHADER)
	if err != nil {
		return 0, fmt.Errorf("vertex shader: %w", err)
	}
	fragmentShader, err := compileShader(fragmentShaderSource, gl.FRAGMENT_SHADER)
	if err != nil {
		gl.DeleteShader(vertexShader)
		return 0, fmt.Errorf("fragment shader: %w", err)
	}

	program := gl.CreateProgram()
	gl.AttachShader(program, vertexShader)
	gl.AttachShader(program, fragmentShader)
	gl.LinkProgram(program)

	gl.DeleteShader(vertexShader)
	gl.DeleteShader(fragmentShader)

	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLength)
		log := strings.Repeat("\x00", int(logLength+1))
		gl.GetProgramInfoLog(program, logLength, nil, gl.Str(log))
		gl.DeleteProgram(program)
		return 0, fmt.Errorf("failed to link program: %v", log)
	}

	return program, nil
}

func compileShader(source string, shaderType uint32) (uint32, error) {
	shader := gl.CreateShader(shaderType)
	csources, free := gl.Strs(source + "\x00")
	gl.ShaderSource(shader, 1, csources, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLength)
		logText := strings.Repeat("\x00", int(logLength+1))
		gl.GetShaderInfoLog(shader, logLength, nil, gl.Str(logText))
		gl.DeleteShader(shader)
		return 0, fmt.Errorf("failed to compile shader: %v\n%s", logText, source)
	}
	return shader, nil
}

// uniformLocation resolves a source-level uniform name through the
// translator's name mapping. Missing uniforms yield -1, which GL ignores.
func uniformLocation(program uint32, mapped map[string]string, name string) int32 {
	if mapped != nil {
		if m, ok := mapped[name]; ok {
			name = m
		}
	}
	return gl.GetUniformLocation(program, gl.Str(name+"\x00"))
}

func boolToInt(b bool) int32 {
	if b {
		return 1
	}
	return 0
}

// checkError drains the GL error queue. A lost context can report errors
// forever, so at most maxGLErrors codes are collected.
func checkError(op string) error {
	const maxGLErrors = 8
	var codes []string
	for code := gl.GetError(); code != gl.NO_ERROR && len(codes) < maxGLErrors; code = gl.GetError() {
		codes = append(codes, fmt.Sprintf("0x%04x", code))
	}
	if len(codes) > 0 {
		return fmt.Errorf("%s: GL error %s", op, strings.Join(codes, ", "))
	}
	return nil
}
