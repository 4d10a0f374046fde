package reminder

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jwalitptl/clinic-scheduler/internal/model"
	"github.com/jwalitptl/clinic-scheduler/internal/scheduler"
	"github.com/jwalitptl/clinic-scheduler/pkg/logger"
	"github.com/jwalitptl/clinic-scheduler/pkg/metrics"
)

const dateLayout = "2006-01-02"

// Production-mode offsets before the appointment start, and the
// forward clamps applied when a computed time has already passed.
var (
	offsets = [3]time.Duration{24 * time.Hour, 6 * time.Hour, time.Hour}
	clamps  = [3]time.Duration{10 * time.Second, 20 * time.Second, 30 * time.Second}
	// Demo-mode fixed delays from now.
	demoDelays = [3]time.Duration{15 * time.Second, 30 * time.Second, 45 * time.Second}
)

// SMSConfigChecker reports whether the SMS channel can deliver at all.
type SMSConfigChecker interface {
	SMSConfigured() bool
}

// Scheduler computes reminder fire times for a confirmed booking and
// registers deferred notification jobs with the execution facility.
type Scheduler struct {
	enqueuer   scheduler.Enqueuer
	sms        SMSConfigChecker
	mode       model.ReminderMode
	intakeForm string
	metrics    *metrics.Metrics
	logger     *logger.Logger
	now        func() time.Time
}

func NewScheduler(enq scheduler.Enqueuer, sms SMSConfigChecker, mode model.ReminderMode, intakeForm string, m *metrics.Metrics, log *logger.Logger) *Scheduler {
	return &Scheduler{
		enqueuer:   enq,
		sms:        sms,
		mode:       mode,
		intakeForm: intakeForm,
		metrics:    m,
		logger:     log.WithComponent("reminder"),
		now:        time.Now,
	}
}

// Schedule builds and submits the reminder jobs for a booking. It is a
// best-effort final step: per-job enqueue failures are logged and the
// remaining jobs still go out. The built jobs are returned for the
// caller's benefit.
func (s *Scheduler) Schedule(ctx context.Context, booking *model.BookingRecord) []*model.ReminderJob {
	fireTimes := s.computeFireTimes(booking.Date, booking.StartTime)
	jobs := s.buildJobs(booking, fireTimes)

	for _, job := range jobs {
		if err := s.enqueuer.Enqueue(ctx, job); err != nil {
			s.logger.ZL.Error().Err(err).
				Str("channel", job.Channel).
				Int("sequence", job.Sequence).
				Time("fire_at", job.FireAt).
				Msg("failed to enqueue reminder")
			continue
		}
		if s.metrics != nil {
			s.metrics.RemindersScheduled.Inc()
		}
	}
	return jobs
}

// computeFireTimes returns the three reminder instants. Production
// mode anchors on the appointment's date and start time, clamping any
// past instant a few seconds into the future; malformed inputs fall
// back to today / 10:00 rather than failing the call. Demo mode
// ignores the appointment entirely.
func (s *Scheduler) computeFireTimes(date, startTime string) [3]time.Time {
	now := s.now()

	if s.mode != model.ReminderModeProduction {
		return [3]time.Time{
			now.Add(demoDelays[0]),
			now.Add(demoDelays[1]),
			now.Add(demoDelays[2]),
		}
	}

	day, err := time.ParseInLocation(dateLayout, date, time.Local)
	if err != nil {
		day = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.Local)
	}
	hour, minute, err := parseClock(startTime)
	if err != nil {
		hour, minute = 10, 0
	}
	start := time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, time.Local)

	var times [3]time.Time
	for i := range offsets {
		t := start.Add(-offsets[i])
		if !t.After(now) {
			t = now.Add(clamps[i])
		}
		times[i] = t
	}
	return times
}

func (s *Scheduler) buildJobs(b *model.BookingRecord, fireTimes [3]time.Time) []*model.ReminderJob {
	var jobs []*model.ReminderJob

	if email := b.Email(); email != "" {
		subjects := [3]string{
			fmt.Sprintf("Reminder: %s", b.PatientName),
			fmt.Sprintf("Reminder: Intake form - %s", b.PatientName),
			fmt.Sprintf("Reminder: Confirm/cancel - %s", b.PatientName),
		}
		bodies := [3]string{
			fmt.Sprintf("Hello %s, reminder for %s at %s", b.PatientName, b.Date, b.StartTime),
			fmt.Sprintf("Hello %s, please complete the attached intake form.", b.PatientName),
			fmt.Sprintf("Hello %s, please confirm or cancel your visit.", b.PatientName),
		}
		for i := 0; i < 3; i++ {
			jobs = append(jobs, &model.ReminderJob{
				BookingID:   b.ID,
				Sequence:    i + 1,
				Channel:     model.ChannelEmail,
				Destination: email,
				Subject:     subjects[i],
				Body:        bodies[i],
				AttachForm:  i == 1,
				FireAt:      fireTimes[i],
			})
		}
	}

	if phone := b.Phone(); phone != "" && s.sms != nil && s.sms.SMSConfigured() {
		bodies := [3]string{
			fmt.Sprintf("Reminder: Appointment on %s at %s", b.Date, b.StartTime),
			"Have you filled the intake form?",
			"Please confirm/cancel your appointment.",
		}
		for i := 0; i < 3; i++ {
			jobs = append(jobs, &model.ReminderJob{
				BookingID:   b.ID,
				Sequence:    i + 1,
				Channel:     model.ChannelSMS,
				Destination: phone,
				Body:        bodies[i],
				FireAt:      fireTimes[i],
			})
		}
	}

	return jobs
}

// IntakeFormPath is where the attachable intake form lives.
func (s *Scheduler) IntakeFormPath() string { return s.intakeForm }

func parseClock(raw string) (hour, minute int, err error) {
	parts := strings.SplitN(strings.TrimSpace(raw), ":", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("malformed time %q", raw)
	}
	hour, err = strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, err
	}
	minute, err = strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, err
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("time %q out of range", raw)
	}
	return hour, minute, nil
}
