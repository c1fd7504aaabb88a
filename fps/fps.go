package fps

import (
	"log"
	"os"
	"time"
)

// Smoothing is the proportion of the previous smoothed FPS kept on each tick.
const Smoothing = 0.9

// ReportInterval is how often the smoothed FPS is logged.
const ReportInterval = 5 * time.Second

// Tracker keeps an exponentially-weighted moving average of the frame rate.
type Tracker struct {
	now        func() time.Time
	logger     *log.Logger
	lastFrame  time.Time
	lastReport time.Time
	smoothed   float64
	primed     bool
}

// New creates a Tracker reading the wall clock and reporting to the standard logger.
func New() *Tracker {
	return NewWithClock(time.Now, log.New(os.Stderr, "", log.LstdFlags))
}

// NewWithClock creates a Tracker driven by the supplied clock. A nil logger
// falls back to the standard logger.
func NewWithClock(now func() time.Time, logger *log.Logger) *Tracker {
	if logger == nil {
		logger = log.Default()
	}
	t := now()
	return &Tracker{
		now:        now,
		logger:     logger,
		lastFrame:  t,
		lastReport: t,
	}
}

// Tick records the completion of one frame.
func (t *Tracker) Tick() {
	now := t.now()

	// The first interval spans startup rather than a frame, and a zero or
	// negative interval carries no rate information.
	if dt := now.Sub(t.lastFrame).Seconds(); t.primed && dt > 0 {
		instant := 1 / dt
		t.smoothed = Smoothing*t.smoothed + (1-Smoothing)*instant
	}
	t.lastFrame = now
	t.primed = true

	if now.Sub(t.lastReport) >= ReportInterval {
		t.logger.Printf("Frames per second: %7.2f", t.smoothed)
		t.lastReport = now
	}
}

// FPS returns the current smoothed frame rate.
func (t *Tracker) FPS() float64 {
	return t.smoothed
}
