package monitor

import (
	"time"

	"github.com/majorcontext/watchprocess/internal/log"
	"github.com/majorcontext/watchprocess/internal/record"
)

// Timer records wall-clock start, finish and elapsed time.
//
// MaxDuration is carried from configuration but is not enforced: the child
// always runs to completion.
type Timer struct {
	MaxDuration time.Duration

	now   func() time.Time
	start time.Time
}

// NewTimer returns a Timer using the system clock.
func NewTimer(maxDuration time.Duration) *Timer {
	return &Timer{MaxDuration: maxDuration, now: time.Now}
}

func (t *Timer) Name() string { return "timer" }

func (t *Timer) Start() error {
	if t.MaxDuration > 0 {
		log.Debug("max duration configured but not enforced", "max_duration", t.MaxDuration)
	}
	t.start = t.now()
	return nil
}

func (t *Timer) Finish(sink *record.Record) error {
	finish := t.now()
	sink.StartTime = unixSeconds(t.start)
	sink.FinishTime = unixSeconds(finish)
	sink.ElapsedTime = finish.Sub(t.start).Seconds()
	return nil
}

func unixSeconds(t time.Time) float64 {
	return float64(t.UnixNano()) / float64(time.Second)
}
