package input

// Event is one platform event delivered to the router.
type Event interface {
	isEvent()
}

// CloseEvent is emitted when the window is asked to close.
type CloseEvent struct{}

// PointerMoveEvent carries a cursor position in window pixels.
type PointerMoveEvent struct {
	X, Y float64
}

// TouchPhase is the stage of a touch contact.
type TouchPhase int

const (
	TouchStarted TouchPhase = iota
	TouchMoved
	TouchEnded
	TouchCancelled
)

func (p TouchPhase) String() string {
	switch p {
	case TouchStarted:
		return "started"
	case TouchMoved:
		return "moved"
	case TouchEnded:
		return "ended"
	case TouchCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// TouchEvent carries a touch contact location in window pixels.
type TouchEvent struct {
	ID    uint64
	Phase TouchPhase
	X, Y  float64
}

// Key identifies a keyboard key. Printable keys use their lower-case rune.
type Key rune

const (
	KeyUnknown Key = 0
	KeyEscape  Key = 0x1b
)

// KeyAction distinguishes presses from releases and auto-repeat.
type KeyAction int

const (
	KeyPress KeyAction = iota
	KeyRelease
	KeyRepeat
)

// KeyEvent is a keyboard state change.
type KeyEvent struct {
	Key    Key
	Action KeyAction
}

func (CloseEvent) isEvent()       {}
func (PointerMoveEvent) isEvent() {}
func (TouchEvent) isEvent()       {}
func (KeyEvent) isEvent()         {}
