// Package scheduler provides the deferred-execution facility reminder
// jobs are handed to. It is injected into the reminder scheduler as a
// dependency so tests can substitute a recording implementation and
// fast-forward time.
package scheduler

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"

	"github.com/jwalitptl/clinic-scheduler/internal/model"
)

// TypeReminderSend is the task type for a deferred reminder delivery.
const TypeReminderSend = "reminder:send"

// Enqueuer registers a reminder job to run at its fire time.
type Enqueuer interface {
	Enqueue(ctx context.Context, job *model.ReminderJob) error
	Close() error
}

// NewReminderTask builds the asynq task for a reminder job. The task
// ID is derived from booking identity so a future cancellation path
// can find and delete pending work.
func NewReminderTask(job *model.ReminderJob) (*asynq.Task, []asynq.Option, error) {
	payload, err := json.Marshal(job)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to marshal reminder payload: %w", err)
	}
	opts := []asynq.Option{
		asynq.ProcessAt(job.FireAt),
		asynq.TaskID(fmt.Sprintf("%s:%s:%d", job.BookingID, job.Channel, job.Sequence)),
	}
	return asynq.NewTask(TypeReminderSend, payload), opts, nil
}

// ParseReminderTask decodes a reminder task payload.
func ParseReminderTask(task *asynq.Task) (*model.ReminderJob, error) {
	var job model.ReminderJob
	if err := json.Unmarshal(task.Payload(), &job); err != nil {
		return nil, fmt.Errorf("failed to unmarshal reminder payload: %w", err)
	}
	return &job, nil
}
