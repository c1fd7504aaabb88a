package translator

import (
	"context"
	"fmt"
	"sync"

	gst "github.com/richinsley/goshadertranslator"
)

var (
	translator *gst.ShaderTranslator
	initErr    error
	initOnce   sync.Once
)

// GetTranslator returns the process-wide shader translator, creating it on
// first use.
func GetTranslator() (*gst.ShaderTranslator, error) {
	initOnce.Do(func() {
		translator, initErr = gst.NewShaderTranslator(context.Background())
	})
	return translator, initErr
}

// Shader is a translated fragment shader.
type Shader struct {
	Code string
	// MappedNames maps each source uniform name to its name in Code.
	MappedNames map[string]string
}

// TranslateFragment converts WebGL2 fragment source to the dialect of the
// running context.
func TranslateFragment(source string, isGLES bool) (*Shader, error) {
	tr, err := GetTranslator()
	if err != nil {
		return nil, fmt.Errorf("failed to create shader translator: %w", err)
	}

	outputFormat := gst.OutputFormatGLSL410
	if isGLES {
		outputFormat = gst.OutputFormatESSL
	}
	fs, err := tr.TranslateShader(source, "fragment", gst.ShaderSpecWebGL2, outputFormat)
	if err != nil {
		return nil, fmt.Errorf("fragment shader translation failed: %w", err)
	}

	s := &Shader{
		Code:        fs.Code,
		MappedNames: make(map[string]string, len(fs.Variables)),
	}
	for name, v := range fs.Variables {
		s.MappedNames[name] = v.MappedName
	}
	return s, nil
}
