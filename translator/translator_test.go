package translator

import (
	"strings"
	"testing"

	"github.com/richinsley/azurescens/shader"
)

func TestTranslateFeedbackShader(t *testing.T) {
	source, err := shader.Loader{}.GetFeedbackShader()
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		isGLES  bool
		version string
	}{
		{"desktop", false, "#version 410"},
		{"gles", true, "#version 300 es"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs, err := TranslateFragment(source, tt.isGLES)
			if err != nil {
				t.Fatalf("TranslateFragment() error = %v", err)
			}
			first := strings.SplitN(fs.Code, "\n", 2)[0]
			if !strings.HasPrefix(first, tt.version) {
				t.Errorf("first line = %q, want %q", first, tt.version)
			}
			if missing := shader.MissingUniforms(fs.MappedNames); len(missing) != 0 {
				t.Errorf("uniforms without a mapped name: %v", missing)
			}
		})
	}
}
