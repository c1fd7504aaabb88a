package glfwcontext

import (
	"log"
	"runtime"

	glfw "github.com/go-gl/glfw/v3.3/glfw"
	"github.com/richinsley/azurescens/input"
)

// WindowTitle is shown in the title bar.
const WindowTitle = "a z u r e s c e n s"

// Context is a GLFW window with a desktop GL 4.1 core context. Window
// callbacks are turned into input events and queued until PollEvents.
type Context struct {
	window *glfw.Window
	events []input.Event
}

// New creates and initializes a new GLFW window and returns a Context object.
func New(width, height int) (*Context, error) {
	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	glfw.WindowHint(glfw.Resizable, glfw.True)

	win, err := glfw.CreateWindow(width, height, WindowTitle, nil, nil)
	if err != nil {
		return nil, err
	}

	c := &Context{window: win}
	win.SetKeyCallback(c.glfwKeyCallback)
	win.SetCursorPosCallback(func(_ *glfw.Window, x, y float64) {
		c.events = append(c.events, input.PointerMoveEvent{X: x, Y: y})
	})
	win.SetCloseCallback(func(*glfw.Window) {
		c.events = append(c.events, input.CloseEvent{})
	})

	win.MakeContextCurrent()
	// Present once per display refresh.
	glfw.SwapInterval(1)
	return c, nil
}

func (c *Context) glfwKeyCallback(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
	k := translateKey(key)
	c.events = append(c.events, input.KeyEvent{Key: k, Action: translateAction(action)})

	if k == input.KeyEscape && action == glfw.Press {
		w.SetShouldClose(true)
		c.events = append(c.events, input.CloseEvent{})
	}
}

func translateKey(key glfw.Key) input.Key {
	switch {
	case key >= glfw.KeyA && key <= glfw.KeyZ:
		return input.Key('a' + rune(key-glfw.KeyA))
	case key >= glfw.Key0 && key <= glfw.Key9:
		return input.Key('0' + rune(key-glfw.Key0))
	case key == glfw.KeySpace:
		return input.Key(' ')
	case key == glfw.KeyEscape:
		return input.KeyEscape
	}
	return input.KeyUnknown
}

func translateAction(action glfw.Action) input.KeyAction {
	switch action {
	case glfw.Release:
		return input.KeyRelease
	case glfw.Repeat:
		return input.KeyRepeat
	}
	return input.KeyPress
}

// PollEvents processes pending window events and returns those queued since
// the previous call.
func (c *Context) PollEvents() []input.Event {
	glfw.PollEvents()
	events := c.events
	c.events = nil
	return events
}

func (c *Context) IsGLES() bool {
	// GLFW does not provide a direct way to check if the context is GLES.
	return false
}

// MakeCurrent makes the context current for the calling goroutine.
func (c *Context) MakeCurrent() {
	c.window.MakeContextCurrent()
}

// Shutdown destroys the window.
func (c *Context) Shutdown() {
	c.window.Destroy()
}

func (c *Context) EndFrame() {
	c.window.SwapBuffers()
}

func (c *Context) GetWindowSize() (int, int) {
	return c.window.GetSize()
}

func (c *Context) GetFramebufferSize() (int, int) {
	return c.window.GetFramebufferSize()
}

func (c *Context) Time() float64 {
	return glfw.GetTime()
}

// InitGraphics initializes the main graphics subsystem (GLFW). Must be called from the main thread.
func InitGraphics() error {
	runtime.LockOSThread()
	if err := glfw.Init(); err != nil {
		return err
	}
	log.Printf("GLFW Initialized")
	return nil
}

// TerminateGraphics shuts down the graphics subsystem. Must be called from the main thread.
func TerminateGraphics() {
	glfw.Terminate()
	log.Printf("GLFW Terminated")
}
