package booking

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/clinic-scheduler/internal/model"
	"github.com/jwalitptl/clinic-scheduler/internal/notify"
	"github.com/jwalitptl/clinic-scheduler/internal/repository"
	"github.com/jwalitptl/clinic-scheduler/internal/service/reminder"
	apperrors "github.com/jwalitptl/clinic-scheduler/pkg/errors"
	"github.com/jwalitptl/clinic-scheduler/pkg/logger"
	"github.com/jwalitptl/clinic-scheduler/pkg/metrics"
)

// Status strings reported when a contact channel was not attempted.
const (
	statusNoEmail = "No email provided"
	statusNoPhone = "No phone provided"
)

// BookingLinks are the two external scheduling pages, chosen by
// new/returning status.
type BookingLinks struct {
	New       string
	Returning string
}

// Service runs the booking workflow: validate, check the slot, persist
// the record, fire confirmation notifications, then hand off to the
// reminder scheduler. Only validation, slot and storage failures abort
// the workflow; everything after persistence is best-effort.
type Service struct {
	patients     repository.PatientDirectory
	schedule     repository.ScheduleDirectory
	store        repository.BookingStore
	notifier     notify.Notifier
	reminders    *reminder.Scheduler
	links        BookingLinks
	intakeForm   string
	consumeSlots bool
	metrics      *metrics.Metrics
	logger       *logger.Logger
}

func NewService(
	patients repository.PatientDirectory,
	schedule repository.ScheduleDirectory,
	store repository.BookingStore,
	notifier notify.Notifier,
	reminders *reminder.Scheduler,
	links BookingLinks,
	intakeForm string,
	consumeSlots bool,
	m *metrics.Metrics,
	log *logger.Logger,
) *Service {
	return &Service{
		patients:     patients,
		schedule:     schedule,
		store:        store,
		notifier:     notifier,
		reminders:    reminders,
		links:        links,
		intakeForm:   intakeForm,
		consumeSlots: consumeSlots,
		metrics:      m,
		logger:       log.WithComponent("booking"),
	}
}

// Book processes one submitted booking request.
func (s *Service) Book(ctx context.Context, req *model.CreateBookingRequest) (*model.BookingResult, error) {
	start := time.Now()
	defer func() {
		if s.metrics != nil {
			s.metrics.BookingDuration.Observe(time.Since(start).Seconds())
		}
	}()

	name := strings.TrimSpace(req.PatientName)
	doctorID := strings.TrimSpace(req.DoctorID)
	if name == "" {
		return nil, s.reject("validation", apperrors.Validation("patient name is required"))
	}
	if doctorID == "" {
		return nil, s.reject("validation", apperrors.Validation("doctor ID is required"))
	}

	isNew, err := s.isNewPatient(ctx, name, req.DateOfBirth)
	if err != nil {
		return nil, s.reject("storage", err)
	}

	slot, err := s.schedule.FindAvailableSlot(ctx, doctorID, req.AppointmentDate)
	if err != nil {
		if apperrors.IsCode(err, apperrors.ErrNoSlotAvailable) || apperrors.IsNotFound(err) {
			return nil, s.reject("no_slot", apperrors.NoSlotAvailable(doctorID, req.AppointmentDate))
		}
		return nil, s.reject("storage", err)
	}

	record := &model.BookingRecord{
		ID:               uuid.New(),
		PatientName:      name,
		DateOfBirth:      strings.TrimSpace(req.DateOfBirth),
		DoctorID:         doctorID,
		Date:             req.AppointmentDate,
		StartTime:        slot.StartTime,
		IsNewPatient:     isNew,
		InsuranceCarrier: model.Optional(req.InsuranceCarrier),
		MemberID:         model.Optional(req.MemberID),
		GroupNumber:      model.Optional(req.GroupNumber),
		PatientPhone:     model.Optional(req.PatientPhone),
		PatientEmail:     model.Optional(req.PatientEmail),
	}

	if err := s.store.Append(ctx, record); err != nil {
		// No notifications or reminders for a booking that failed to
		// persist.
		return nil, s.reject("storage", err)
	}
	if s.metrics != nil {
		s.metrics.BookingsCreated.Inc()
	}

	if s.consumeSlots {
		if err := s.schedule.MarkBooked(ctx, doctorID, record.Date, record.StartTime); err != nil {
			s.logger.ZL.Warn().Err(err).Msg("failed to consume slot after booking")
		}
	}

	link := s.links.Returning
	if isNew {
		link = s.links.New
	}

	result := &model.BookingResult{
		Booking:     record,
		EmailStatus: statusNoEmail,
		SMSStatus:   statusNoPhone,
		BookingLink: link,
	}
	s.sendConfirmations(ctx, record, link, result)

	if record.Email() != "" || record.Phone() != "" {
		s.reminders.Schedule(ctx, record)
	}

	return result, nil
}

// List returns every persisted booking.
func (s *Service) List(ctx context.Context) ([]*model.BookingRecord, error) {
	return s.store.List(ctx)
}

// isNewPatient consults the directory; absence of a match is what
// makes a patient "new". A directory read failure degrades to the
// empty-directory answer instead of blocking the booking.
func (s *Service) isNewPatient(ctx context.Context, name, dob string) (bool, error) {
	_, err := s.patients.Lookup(ctx, name, dob)
	if err == nil {
		return false, nil
	}
	if apperrors.IsNotFound(err) {
		return true, nil
	}
	s.logger.ZL.Warn().Err(err).Msg("patient directory unavailable, treating as new patient")
	return true, nil
}

func (s *Service) sendConfirmations(ctx context.Context, record *model.BookingRecord, link string, result *model.BookingResult) {
	if email := record.Email(); email != "" {
		body := fmt.Sprintf(
			"Hello %s,\nYour appointment is confirmed.\nDoctor: %s\nDate: %s\nTime: %s\nBooking link: %s\nPlease find attached the intake form.",
			record.PatientName, record.DoctorID, record.Date, record.StartTime, link,
		)
		res := s.notifier.Notify(ctx, model.ChannelEmail, email, notify.Message{
			Subject:        "Appointment Confirmation",
			Body:           body,
			AttachmentPath: s.intakeForm,
		})
		result.EmailStatus = res.String()
		s.countNotification(model.ChannelEmail, res)
	}

	if phone := record.Phone(); phone != "" {
		body := fmt.Sprintf("Appointment confirmed: %s %s. Link: %s", record.Date, record.StartTime, link)
		res := s.notifier.Notify(ctx, model.ChannelSMS, phone, notify.Message{Body: body})
		result.SMSStatus = res.String()
		s.countNotification(model.ChannelSMS, res)
	}
}

func (s *Service) countNotification(channel string, res notify.DeliveryResult) {
	if s.metrics != nil {
		s.metrics.NotificationsSent.WithLabelValues(channel, string(res.Status)).Inc()
	}
}

func (s *Service) reject(reason string, err error) error {
	if s.metrics != nil {
		s.metrics.BookingsFailed.WithLabelValues(reason).Inc()
	}
	return err
}
