package fps

import (
	"bytes"
	"log"
	"math"
	"strings"
	"testing"
	"time"
)

// fakeClock returns a fixed sequence of instants.
type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time { return c.t }

func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestTracker() (*Tracker, *fakeClock, *bytes.Buffer) {
	clock := &fakeClock{t: time.Unix(1000, 0)}
	var buf bytes.Buffer
	tr := NewWithClock(clock.now, log.New(&buf, "", 0))
	return tr, clock, &buf
}

func TestTrackerStartsAtZero(t *testing.T) {
	tr, _, _ := newTestTracker()
	if got := tr.FPS(); got != 0 {
		t.Errorf("FPS() = %v, want 0", got)
	}
}

func TestTrackerFirstTickWithoutElapsedTime(t *testing.T) {
	tr, clock, _ := newTestTracker()

	// Same instant as creation: elapsed is zero.
	tr.Tick()
	if got := tr.FPS(); math.IsNaN(got) || math.IsInf(got, 0) {
		t.Fatalf("FPS() = %v after zero-length first tick", got)
	}

	clock.advance(time.Second / 60)
	tr.Tick()
	if got := tr.FPS(); math.IsNaN(got) || math.IsInf(got, 0) || got <= 0 {
		t.Errorf("FPS() = %v after a real frame, want finite positive", got)
	}
}

func TestTrackerConvergesMonotonically(t *testing.T) {
	tr, clock, _ := newTestTracker()
	frame := time.Second / 60
	want := 1 / frame.Seconds()

	prev := tr.FPS()
	for i := 0; i < 200; i++ {
		clock.advance(frame)
		tr.Tick()
		got := tr.FPS()
		if got < prev-1e-9 {
			t.Fatalf("tick %d: FPS decreased from %v to %v", i, prev, got)
		}
		if got > want+1e-9 {
			t.Fatalf("tick %d: FPS %v overshot %v", i, got, want)
		}
		prev = got
	}
	if math.Abs(prev-want) > 0.01 {
		t.Errorf("FPS() = %v after 200 ticks, want %v", prev, want)
	}
}

func TestTrackerIgnoresFirstInterval(t *testing.T) {
	tr, clock, _ := newTestTracker()

	// A near-zero interval between creation and the first frame must not
	// leave a huge spike in the average.
	clock.advance(time.Nanosecond)
	tr.Tick()
	if got := tr.FPS(); got != 0 {
		t.Fatalf("FPS() = %v after the first tick, want 0", got)
	}

	frame := time.Second / 60
	want := 1 / frame.Seconds()
	prev := tr.FPS()
	for i := 0; i < 100; i++ {
		clock.advance(frame)
		tr.Tick()
		got := tr.FPS()
		if got < prev-1e-9 || got > want+1e-9 {
			t.Fatalf("tick %d: FPS() = %v after %v, want monotonic towards %v", i, got, prev, want)
		}
		prev = got
	}
}

func TestTrackerSmoothingStep(t *testing.T) {
	tr, clock, _ := newTestTracker()
	tr.Tick()

	clock.advance(100 * time.Millisecond)
	tr.Tick()
	// 0.9*0 + 0.1*10
	if got := tr.FPS(); math.Abs(got-1.0) > 1e-9 {
		t.Errorf("FPS() = %v, want 1.0", got)
	}

	clock.advance(50 * time.Millisecond)
	tr.Tick()
	// 0.9*1 + 0.1*20
	if got := tr.FPS(); math.Abs(got-2.9) > 1e-9 {
		t.Errorf("FPS() = %v, want 2.9", got)
	}
}

func TestTrackerReportsEveryInterval(t *testing.T) {
	tr, clock, buf := newTestTracker()

	clock.advance(ReportInterval - time.Millisecond)
	tr.Tick()
	if buf.Len() != 0 {
		t.Fatalf("reported early: %q", buf.String())
	}

	clock.advance(time.Millisecond)
	tr.Tick()
	if !strings.Contains(buf.String(), "Frames per second:") {
		t.Fatalf("expected a report, got %q", buf.String())
	}

	buf.Reset()
	clock.advance(time.Second)
	tr.Tick()
	if buf.Len() != 0 {
		t.Errorf("reported again before the next interval: %q", buf.String())
	}

	clock.advance(ReportInterval)
	tr.Tick()
	if got := strings.Count(buf.String(), "Frames per second:"); got != 1 {
		t.Errorf("got %d reports, want 1", got)
	}
}
