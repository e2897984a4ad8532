package card

import (
	"time"

	"github.com/ivankudzin/swipedeck/internal/domain/model"
)

const (
	defaultVelocityTick   = 50 * time.Millisecond
	defaultVelocityWindow = 100 * time.Millisecond
)

type pointerSample struct {
	at time.Time
	p  Point
}

// VelocityTracker turns raw pointer positions into a GestureSample.
// Velocity is measured in screen units per tick over the most recent
// window of samples.
type VelocityTracker struct {
	tick    time.Duration
	window  time.Duration
	start   Point
	active  bool
	samples []pointerSample
}

func NewVelocityTracker(tick time.Duration) *VelocityTracker {
	if tick <= 0 {
		tick = defaultVelocityTick
	}
	return &VelocityTracker{
		tick:   tick,
		window: defaultVelocityWindow,
	}
}

func (t *VelocityTracker) Start(at time.Time, p Point) {
	t.start = p
	t.active = true
	t.samples = append(t.samples[:0], pointerSample{at: at, p: p})
}

func (t *VelocityTracker) Active() bool {
	return t.active
}

func (t *VelocityTracker) Add(at time.Time, p Point) {
	if !t.active {
		return
	}
	t.samples = append(t.samples, pointerSample{at: at, p: p})

	cutoff := at.Add(-t.window)
	drop := 0
	for drop < len(t.samples)-1 && t.samples[drop].at.Before(cutoff) {
		drop++
	}
	if drop > 0 {
		t.samples = append(t.samples[:0], t.samples[drop:]...)
	}
}

func (t *VelocityTracker) Displacement() Point {
	if !t.active || len(t.samples) == 0 {
		return Point{}
	}
	last := t.samples[len(t.samples)-1].p
	return Point{X: last.X - t.start.X, Y: last.Y - t.start.Y}
}

// Sample finishes the gesture at time at. A pointer that rested longer
// than the window before release has no velocity.
func (t *VelocityTracker) Sample(at time.Time) model.GestureSample {
	d := t.Displacement()
	sample := model.GestureSample{DX: d.X, DY: d.Y}
	if !t.active || len(t.samples) < 2 {
		return sample
	}

	last := t.samples[len(t.samples)-1]
	if at.Sub(last.at) > t.window {
		return sample
	}
	first := t.samples[0]
	elapsed := last.at.Sub(first.at)
	if elapsed <= 0 {
		return sample
	}

	ticks := float64(elapsed) / float64(t.tick)
	sample.VX = (last.p.X - first.p.X) / ticks
	sample.VY = (last.p.Y - first.p.Y) / ticks
	return sample
}

func (t *VelocityTracker) Reset() {
	t.active = false
	t.start = Point{}
	t.samples = t.samples[:0]
}
