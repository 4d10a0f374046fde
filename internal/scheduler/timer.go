package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/jwalitptl/clinic-scheduler/internal/model"
	"github.com/jwalitptl/clinic-scheduler/pkg/logger"
)

// HandlerFunc executes one due reminder job.
type HandlerFunc func(ctx context.Context, job *model.ReminderJob) error

// TimerEnqueuer runs reminder jobs on in-process timers. It backs the
// demo deployment where no redis is available; pending jobs are lost
// if the process exits before they fire.
type TimerEnqueuer struct {
	handler HandlerFunc
	logger  *logger.Logger

	mu     sync.Mutex
	timers []*time.Timer
	closed bool
}

func NewTimerEnqueuer(handler HandlerFunc, log *logger.Logger) *TimerEnqueuer {
	return &TimerEnqueuer{
		handler: handler,
		logger:  log.WithComponent("timer_enqueuer"),
	}
}

func (e *TimerEnqueuer) Enqueue(_ context.Context, job *model.ReminderJob) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil
	}

	delay := time.Until(job.FireAt)
	if delay < 0 {
		delay = 0
	}

	t := time.AfterFunc(delay, func() {
		// The triggering request is long gone when the timer fires.
		if err := e.handler(context.Background(), job); err != nil {
			e.logger.ZL.Error().Err(err).
				Str("channel", job.Channel).
				Int("sequence", job.Sequence).
				Msg("reminder delivery failed")
		}
	})
	e.timers = append(e.timers, t)
	return nil
}

func (e *TimerEnqueuer) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closed = true
	for _, t := range e.timers {
		t.Stop()
	}
	e.timers = nil
	return nil
}

var _ Enqueuer = (*TimerEnqueuer)(nil)
