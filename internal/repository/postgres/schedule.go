package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/clinic-scheduler/internal/model"
	"github.com/jwalitptl/clinic-scheduler/internal/repository"
	apperrors "github.com/jwalitptl/clinic-scheduler/pkg/errors"
)

type scheduleDirectory struct {
	db *sqlx.DB
}

func NewScheduleDirectory(db *sqlx.DB) repository.ScheduleDirectory {
	return &scheduleDirectory{db: db}
}

func (d *scheduleDirectory) FindAvailableSlot(ctx context.Context, doctorID, date string) (*model.ScheduleSlot, error) {
	// ORDER BY start_time makes slot selection deterministic.
	query := `
		SELECT doctor_id, date, start_time, is_available
		FROM schedule_slots
		WHERE doctor_id = $1 AND date = $2 AND is_available
		ORDER BY start_time
		LIMIT 1
	`
	var slot model.ScheduleSlot
	err := d.db.GetContext(ctx, &slot, query, doctorID, date)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NoSlotAvailable(doctorID, date)
	}
	if err != nil {
		return nil, apperrors.Storage("failed to find slot", err)
	}
	return &slot, nil
}

func (d *scheduleDirectory) MarkBooked(ctx context.Context, doctorID, date, startTime string) error {
	query := `
		UPDATE schedule_slots
		SET is_available = false
		WHERE doctor_id = $1 AND date = $2 AND start_time = $3 AND is_available
	`
	res, err := d.db.ExecContext(ctx, query, doctorID, date, startTime)
	if err != nil {
		return apperrors.Storage("failed to mark slot booked", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperrors.NotFound("schedule slot", nil)
	}
	return nil
}

func (d *scheduleDirectory) Reload(_ context.Context) error {
	return nil
}
