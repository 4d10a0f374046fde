package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/clinic-scheduler/internal/model"
	"github.com/jwalitptl/clinic-scheduler/internal/repository"
	apperrors "github.com/jwalitptl/clinic-scheduler/pkg/errors"
)

type bookingStore struct {
	db  *sqlx.DB
	now func() time.Time
}

// NewBookingStore returns a postgres-backed booking store. Append runs
// in a transaction that locks and consumes the slot row, so two
// concurrent bookings racing on the same slot cannot both commit.
func NewBookingStore(db *sqlx.DB) repository.BookingStore {
	return &bookingStore{db: db, now: time.Now}
}

func (s *bookingStore) Append(ctx context.Context, record *model.BookingRecord) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return apperrors.Storage("failed to begin transaction", err)
	}
	defer tx.Rollback()

	// Re-check availability under row lock. A slot row may legitimately
	// be absent (fallback slots are never seeded); only a present,
	// already-consumed row rejects the booking.
	var available bool
	err = tx.GetContext(ctx, &available, `
		SELECT is_available FROM schedule_slots
		WHERE doctor_id = $1 AND date = $2 AND start_time = $3
		FOR UPDATE
	`, record.DoctorID, record.Date, record.StartTime)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		// no slot row to consume
	case err != nil:
		return apperrors.Storage("failed to lock slot", err)
	case !available:
		return apperrors.NoSlotAvailable(record.DoctorID, record.Date)
	default:
		if _, err := tx.ExecContext(ctx, `
			UPDATE schedule_slots SET is_available = false
			WHERE doctor_id = $1 AND date = $2 AND start_time = $3
		`, record.DoctorID, record.Date, record.StartTime); err != nil {
			return apperrors.Storage("failed to consume slot", err)
		}
	}

	record.CreatedAt = s.now().Truncate(time.Second)
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO bookings (
			id, patient_name, dob, doctor_id, date, start_time,
			is_new_patient, insurance_carrier, member_id, group_number,
			patient_phone, patient_email, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`,
		record.ID,
		record.PatientName,
		record.DateOfBirth,
		record.DoctorID,
		record.Date,
		record.StartTime,
		record.IsNewPatient,
		record.InsuranceCarrier,
		record.MemberID,
		record.GroupNumber,
		record.PatientPhone,
		record.PatientEmail,
		record.CreatedAt,
	); err != nil {
		return apperrors.Storage("failed to insert booking", err)
	}

	if err := tx.Commit(); err != nil {
		return apperrors.Storage("failed to commit booking", err)
	}
	return nil
}

func (s *bookingStore) List(ctx context.Context) ([]*model.BookingRecord, error) {
	query := `
		SELECT id, patient_name, dob, doctor_id, date, start_time,
		       is_new_patient, insurance_carrier, member_id, group_number,
		       patient_phone, patient_email, created_at
		FROM bookings
		ORDER BY created_at
	`
	var records []*model.BookingRecord
	if err := s.db.SelectContext(ctx, &records, query); err != nil {
		return nil, apperrors.Storage("failed to list bookings", err)
	}
	return records, nil
}
