package crawler

import (
	"context"
	"time"
)

// pauseController abstracts how the engine waits between fetches, so tests
// can swap the real timer for an instant recorder.
type pauseController interface {
	Pause(ctx context.Context, delay time.Duration)
}

type timerPauseController struct{}

// Pause blocks for delay or until the context is canceled.
func (p *timerPauseController) Pause(ctx context.Context, delay time.Duration) {
	if delay <= 0 {
		return
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
