package options

// EngineOptions holds the command line configuration. Fields are pointers
// so they can be bound directly to flag definitions.
type EngineOptions struct {
	Help          *bool
	Width         *int
	Height        *int
	TextureSize   *int
	ControlAddr   *string // empty disables the control panel
	ShaderDir     *string // load fragment shaders from disk instead of the embedded copies
	ScreenshotDir *string
	OutputFile    *string // records the feedback texture when set
	RecordFPS     *int
	FFMPEGPath    *string
	Codec         *string
}
