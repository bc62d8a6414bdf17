package shell

// timer.go measures the wall-clock time of a tool's preparation and
// main commands.

import (
	"math"
	"time"
)

// Timer records how long the preparation and main commands of one run took.
// Each measurement is optional until recorded.
type Timer struct {
	prep    time.Duration
	main    time.Duration
	hasPrep bool
	hasMain bool

	now func() time.Time
}

// NewTimer creates a timer backed by the wall clock.
func NewTimer() *Timer {
	return &Timer{now: time.Now}
}

// RecordPrep runs work and records its duration as preparation time.
func (t *Timer) RecordPrep(work func()) time.Duration {
	t.prep = t.record(work)
	t.hasPrep = true
	return t.prep
}

// RecordMain runs work and records its duration as main time.
func (t *Timer) RecordMain(work func()) time.Duration {
	t.main = t.record(work)
	t.hasMain = true
	return t.main
}

func (t *Timer) record(work func()) time.Duration {
	now := t.now
	if now == nil {
		now = time.Now
	}
	start := now()
	work()
	return now().Sub(start)
}

// Prep returns the preparation duration and whether it was recorded.
func (t *Timer) Prep() (time.Duration, bool) {
	return t.prep, t.hasPrep
}

// Main returns the main duration and whether it was recorded.
func (t *Timer) Main() (time.Duration, bool) {
	return t.main, t.hasMain
}

// Total is the sum of whichever measurements are present.
func (t *Timer) Total() time.Duration {
	var total time.Duration
	if t.hasPrep {
		total += t.prep
	}
	if t.hasMain {
		total += t.main
	}
	return total
}

func (t *Timer) PrepSeconds() float64 {
	return roundSeconds(t.prep)
}

func (t *Timer) MainSeconds() float64 {
	return roundSeconds(t.main)
}

func (t *Timer) TotalSeconds() float64 {
	return roundSeconds(t.Total())
}

// Prepped reports whether both the preparation and main times are present.
func (t *Timer) Prepped() bool {
	return t.hasPrep && t.hasMain
}

// PrepPercent returns the share of the total time spent preparing, rounded
// to a whole percent. ok is false unless both measurements are present.
func (t *Timer) PrepPercent() (percent int, ok bool) {
	if !t.Prepped() {
		return 0, false
	}
	total := t.Total()
	if total <= 0 {
		return 0, true
	}
	return int(math.Round(float64(t.prep) / float64(total) * 100)), true
}

func roundSeconds(d time.Duration) float64 {
	return math.Round(d.Seconds()*100) / 100
}
