package graphics

import "github.com/richinsley/azurescens/input"

// Context defines the interface for an OpenGL context and its window.
type Context interface {
	MakeCurrent()
	Shutdown()
	IsGLES() bool
	// EndFrame presents the back buffer. It blocks on vsync.
	EndFrame()
	// PollEvents returns the events queued since the previous call, oldest first.
	PollEvents() []input.Event
	// GetWindowSize is the window size in the units of pointer events.
	GetWindowSize() (int, int)
	GetFramebufferSize() (int, int)
	// Time returns seconds since the context was created.
	Time() float64
}
