package scheduler

import (
	"context"
	"fmt"

	"github.com/hibiken/asynq"

	"github.com/jwalitptl/clinic-scheduler/internal/config"
	"github.com/jwalitptl/clinic-scheduler/internal/model"
)

// AsynqEnqueuer pushes reminder jobs onto a redis-backed asynq queue;
// jobs survive process restarts and fire on the worker binary.
type AsynqEnqueuer struct {
	client *asynq.Client
}

func NewAsynqEnqueuer(cfg config.RedisConfig) *AsynqEnqueuer {
	return &AsynqEnqueuer{
		client: asynq.NewClient(asynq.RedisClientOpt{
			Addr:     cfg.Addr,
			Password: cfg.Password,
			DB:       cfg.DB,
		}),
	}
}

func (e *AsynqEnqueuer) Enqueue(ctx context.Context, job *model.ReminderJob) error {
	task, opts, err := NewReminderTask(job)
	if err != nil {
		return err
	}
	if _, err := e.client.EnqueueContext(ctx, task, opts...); err != nil {
		return fmt.Errorf("failed to enqueue reminder: %w", err)
	}
	return nil
}

func (e *AsynqEnqueuer) Close() error {
	return e.client.Close()
}

var _ Enqueuer = (*AsynqEnqueuer)(nil)
