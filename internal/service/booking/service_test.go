package booking

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/clinic-scheduler/internal/model"
	"github.com/jwalitptl/clinic-scheduler/internal/notify"
	"github.com/jwalitptl/clinic-scheduler/internal/service/reminder"
	apperrors "github.com/jwalitptl/clinic-scheduler/pkg/errors"
	"github.com/jwalitptl/clinic-scheduler/pkg/logger"
)

type stubPatients struct {
	patient *model.Patient
	err     error
	calls   int
}

func (s *stubPatients) Lookup(_ context.Context, name, dob string) (*model.Patient, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	if s.patient == nil {
		return nil, apperrors.NotFound("patient", nil)
	}
	return s.patient, nil
}

func (s *stubPatients) Reload(context.Context) error { return nil }

type stubSchedule struct {
	slot   *model.ScheduleSlot
	err    error
	marked [][3]string
}

func (s *stubSchedule) FindAvailableSlot(_ context.Context, doctorID, date string) (*model.ScheduleSlot, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.slot, nil
}

func (s *stubSchedule) MarkBooked(_ context.Context, doctorID, date, startTime string) error {
	s.marked = append(s.marked, [3]string{doctorID, date, startTime})
	return nil
}

func (s *stubSchedule) Reload(context.Context) error { return nil }

type stubStore struct {
	appended []*model.BookingRecord
	err      error
}

func (s *stubStore) Append(_ context.Context, record *model.BookingRecord) error {
	if s.err != nil {
		return s.err
	}
	record.CreatedAt = time.Date(2026, 3, 10, 9, 0, 0, 0, time.Local)
	s.appended = append(s.appended, record)
	return nil
}

func (s *stubStore) List(context.Context) ([]*model.BookingRecord, error) {
	return s.appended, s.err
}

type notifyCall struct {
	channel     string
	destination string
	msg         notify.Message
}

type stubNotifier struct {
	results map[string]notify.DeliveryResult
	smsOK   bool
	calls   []notifyCall
}

func (n *stubNotifier) Notify(_ context.Context, channel, destination string, msg notify.Message) notify.DeliveryResult {
	n.calls = append(n.calls, notifyCall{channel: channel, destination: destination, msg: msg})
	if res, ok := n.results[channel]; ok {
		return res
	}
	return notify.DeliveryResult{Status: notify.StatusSent, Detail: "sent"}
}

func (n *stubNotifier) SMSConfigured() bool { return n.smsOK }

type recordingEnqueuer struct {
	jobs []*model.ReminderJob
}

func (e *recordingEnqueuer) Enqueue(_ context.Context, job *model.ReminderJob) error {
	e.jobs = append(e.jobs, job)
	return nil
}

func (e *recordingEnqueuer) Close() error { return nil }

func testLogger() *logger.Logger {
	return logger.NewLogger(&logger.Config{
		Level:      logger.ErrorLevel,
		TimeFormat: time.RFC3339,
		Output:     io.Discard,
	})
}

type fixture struct {
	patients *stubPatients
	schedule *stubSchedule
	store    *stubStore
	notifier *stubNotifier
	enqueuer *recordingEnqueuer
	service  *Service
}

func newFixture(t *testing.T, opts ...func(*fixture)) *fixture {
	t.Helper()
	f := &fixture{
		patients: &stubPatients{},
		schedule: &stubSchedule{slot: &model.ScheduleSlot{
			DoctorID: "D001", Date: "2026-03-14", StartTime: "10:00", Available: true,
		}},
		store: &stubStore{},
		notifier: &stubNotifier{
			smsOK: true,
			results: map[string]notify.DeliveryResult{
				model.ChannelEmail: {Status: notify.StatusSent, Detail: "Email sent"},
				model.ChannelSMS:   {Status: notify.StatusSent, Detail: "SMS sent"},
			},
		},
		enqueuer: &recordingEnqueuer{},
	}
	for _, opt := range opts {
		opt(f)
	}

	log := testLogger()
	reminders := reminder.NewScheduler(f.enqueuer, f.notifier, model.ReminderModeDemo, "intake.pdf", nil, log)
	f.service = NewService(
		f.patients, f.schedule, f.store, f.notifier, reminders,
		BookingLinks{New: "https://example.com/new", Returning: "https://example.com/returning"},
		"intake.pdf", false, nil, log,
	)
	return f
}

func validRequest() *model.CreateBookingRequest {
	return &model.CreateBookingRequest{
		PatientName:     "Jane Doe",
		DateOfBirth:     "1985-02-17",
		DoctorID:        "D001",
		AppointmentDate: "2026-03-14",
		PatientEmail:    "jane@example.com",
		PatientPhone:    "+15550001111",
	}
}

func TestBookRejectsBlankPatientName(t *testing.T) {
	f := newFixture(t)
	req := validRequest()
	req.PatientName = "   "

	_, err := f.service.Book(context.Background(), req)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrValidation))
	assert.Empty(t, f.store.appended, "rejected request must leave no record")
	assert.Empty(t, f.notifier.calls)
	assert.Empty(t, f.enqueuer.jobs)
}

func TestBookRejectsBlankDoctorID(t *testing.T) {
	f := newFixture(t)
	req := validRequest()
	req.DoctorID = ""

	_, err := f.service.Book(context.Background(), req)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrValidation))
	assert.Empty(t, f.store.appended)
}

func TestBookNoSlotAvailable(t *testing.T) {
	f := newFixture(t, func(f *fixture) {
		f.schedule.err = apperrors.NoSlotAvailable("D001", "2026-03-14")
	})

	_, err := f.service.Book(context.Background(), validRequest())
	assert.True(t, apperrors.IsCode(err, apperrors.ErrNoSlotAvailable))
	assert.Empty(t, f.store.appended)
	assert.Empty(t, f.notifier.calls)
	assert.Empty(t, f.enqueuer.jobs)
}

func TestBookKnownPatient(t *testing.T) {
	f := newFixture(t, func(f *fixture) {
		f.patients.patient = &model.Patient{PatientID: "P001", FirstName: "Jane", DateOfBirth: "1985-02-17"}
	})

	result, err := f.service.Book(context.Background(), validRequest())
	require.NoError(t, err)

	assert.False(t, result.Booking.IsNewPatient)
	assert.Equal(t, "https://example.com/returning", result.BookingLink)
	assert.Equal(t, "Email sent", result.EmailStatus)
	assert.Equal(t, "SMS sent", result.SMSStatus)
	assert.Equal(t, "10:00", result.Booking.StartTime)
	assert.NotEqual(t, uuid.Nil, result.Booking.ID)

	require.Len(t, f.store.appended, 1)
	require.Len(t, f.notifier.calls, 2)
	assert.Equal(t, model.ChannelEmail, f.notifier.calls[0].channel)
	assert.Equal(t, "Appointment Confirmation", f.notifier.calls[0].msg.Subject)
	assert.Equal(t, "intake.pdf", f.notifier.calls[0].msg.AttachmentPath)
	assert.Contains(t, f.notifier.calls[0].msg.Body, "Please find attached the intake form.")
	assert.Contains(t, f.notifier.calls[0].msg.Body, "https://example.com/returning")
	assert.Equal(t, model.ChannelSMS, f.notifier.calls[1].channel)
	assert.Contains(t, f.notifier.calls[1].msg.Body, "Appointment confirmed: 2026-03-14 10:00")

	// Email and SMS reminder triples.
	assert.Len(t, f.enqueuer.jobs, 6)
}

func TestBookUnknownPatientIsNew(t *testing.T) {
	f := newFixture(t)

	result, err := f.service.Book(context.Background(), validRequest())
	require.NoError(t, err)
	assert.True(t, result.Booking.IsNewPatient)
	assert.Equal(t, "https://example.com/new", result.BookingLink)
}

func TestBookDirectoryFailureDegradesToNewPatient(t *testing.T) {
	f := newFixture(t, func(f *fixture) {
		f.patients.err = apperrors.Storage("directory unreadable", nil)
	})

	result, err := f.service.Book(context.Background(), validRequest())
	require.NoError(t, err, "a broken directory must not block booking")
	assert.True(t, result.Booking.IsNewPatient)
}

func TestBookNoContactChannels(t *testing.T) {
	f := newFixture(t)
	req := validRequest()
	req.PatientEmail = ""
	req.PatientPhone = ""

	result, err := f.service.Book(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, "No email provided", result.EmailStatus)
	assert.Equal(t, "No phone provided", result.SMSStatus)
	assert.Empty(t, f.notifier.calls)
	assert.Empty(t, f.enqueuer.jobs)
	assert.Len(t, f.store.appended, 1, "booking persists without contact details")
	assert.Nil(t, f.store.appended[0].PatientEmail)
	assert.Nil(t, f.store.appended[0].PatientPhone)
}

func TestBookEmailOnly(t *testing.T) {
	f := newFixture(t)
	req := validRequest()
	req.PatientPhone = ""

	result, err := f.service.Book(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, "Email sent", result.EmailStatus)
	assert.Equal(t, "No phone provided", result.SMSStatus)
	require.Len(t, f.notifier.calls, 1)
	assert.Equal(t, model.ChannelEmail, f.notifier.calls[0].channel)
	assert.Len(t, f.enqueuer.jobs, 3)
}

func TestBookSurfacesNotConfiguredChannel(t *testing.T) {
	f := newFixture(t, func(f *fixture) {
		f.notifier.results[model.ChannelEmail] = notify.DeliveryResult{
			Status: notify.StatusNotConfigured,
			Detail: "Email credentials not configured",
		}
	})

	result, err := f.service.Book(context.Background(), validRequest())
	require.NoError(t, err, "an unconfigured channel never fails the booking")
	assert.Equal(t, "Email credentials not configured", result.EmailStatus)
	assert.Equal(t, "SMS sent", result.SMSStatus)
}

func TestBookStoreFailureSkipsNotifications(t *testing.T) {
	f := newFixture(t, func(f *fixture) {
		f.store.err = apperrors.Storage("disk full", nil)
	})

	_, err := f.service.Book(context.Background(), validRequest())
	assert.True(t, apperrors.IsCode(err, apperrors.ErrStorage))
	assert.Empty(t, f.notifier.calls, "no notifications for an unpersisted booking")
	assert.Empty(t, f.enqueuer.jobs)
}

func TestBookConsumesSlotWhenEnabled(t *testing.T) {
	f := newFixture(t)
	f.service.consumeSlots = true

	_, err := f.service.Book(context.Background(), validRequest())
	require.NoError(t, err)
	require.Len(t, f.schedule.marked, 1)
	assert.Equal(t, [3]string{"D001", "2026-03-14", "10:00"}, f.schedule.marked[0])
}

func TestBookLeavesSlotByDefault(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.Book(context.Background(), validRequest())
	require.NoError(t, err)
	assert.Empty(t, f.schedule.marked)
}

func TestBookTrimsIdentityFields(t *testing.T) {
	f := newFixture(t)
	req := validRequest()
	req.PatientName = "  Jane Doe  "
	req.DoctorID = " D001 "

	result, err := f.service.Book(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", result.Booking.PatientName)
	assert.Equal(t, "D001", result.Booking.DoctorID)
}

func TestList(t *testing.T) {
	f := newFixture(t)
	_, err := f.service.Book(context.Background(), validRequest())
	require.NoError(t, err)

	records, err := f.service.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, records, 1)
}
