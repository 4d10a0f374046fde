package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/hibiken/asynq"

	"github.com/jwalitptl/clinic-scheduler/internal/model"
	"github.com/jwalitptl/clinic-scheduler/internal/notify"
	"github.com/jwalitptl/clinic-scheduler/internal/scheduler"
	"github.com/jwalitptl/clinic-scheduler/pkg/logger"
	"github.com/jwalitptl/clinic-scheduler/pkg/metrics"
)

// ReminderHandler delivers due reminder jobs through the notification
// gateway.
type ReminderHandler struct {
	notifier   notify.Notifier
	intakeForm string
	metrics    *metrics.Metrics
	logger     *logger.Logger
}

func NewReminderHandler(notifier notify.Notifier, intakeForm string, m *metrics.Metrics, log *logger.Logger) *ReminderHandler {
	return &ReminderHandler{
		notifier:   notifier,
		intakeForm: intakeForm,
		metrics:    m,
		logger:     log.WithComponent("reminder_worker"),
	}
}

// ProcessTask is the asynq entry point.
func (h *ReminderHandler) ProcessTask(ctx context.Context, task *asynq.Task) error {
	job, err := scheduler.ParseReminderTask(task)
	if err != nil {
		h.logger.ZL.Error().Err(err).Msg("invalid reminder payload")
		// Retrying a malformed payload cannot help.
		return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
	}
	return h.Handle(ctx, job)
}

// Handle delivers one reminder job. A failed delivery returns an error
// so the queue can retry transient transport problems; a channel with
// no credentials is a recognized disabled state and succeeds quietly.
func (h *ReminderHandler) Handle(ctx context.Context, job *model.ReminderJob) error {
	if h.metrics != nil {
		h.metrics.ReminderLag.Observe(time.Since(job.FireAt).Seconds())
	}

	msg := notify.Message{
		Subject: job.Subject,
		Body:    job.Body,
	}
	if job.AttachForm {
		msg.AttachmentPath = h.intakeForm
	}

	res := h.notifier.Notify(ctx, job.Channel, job.Destination, msg)
	if h.metrics != nil {
		h.metrics.RemindersFired.WithLabelValues(job.Channel, string(res.Status)).Inc()
	}

	switch res.Status {
	case notify.StatusFailed:
		h.logger.ZL.Warn().
			Str("channel", job.Channel).
			Int("sequence", job.Sequence).
			Str("detail", res.Detail).
			Msg("reminder delivery failed")
		return fmt.Errorf("reminder delivery failed: %s", res.Detail)
	case notify.StatusNotConfigured:
		h.logger.ZL.Info().
			Str("channel", job.Channel).
			Msg("reminder skipped, channel not configured")
	default:
		h.logger.ZL.Info().
			Str("channel", job.Channel).
			Int("sequence", job.Sequence).
			Msg("reminder delivered")
	}
	return nil
}
