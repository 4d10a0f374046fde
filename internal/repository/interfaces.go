package repository

import (
	"context"

	"github.com/jwalitptl/clinic-scheduler/internal/model"
)

// PatientDirectory is a read-only lookup of existing patients. Lookup
// matches on the first whitespace-delimited token of name, lowercased,
// plus an exact date-of-birth string; it returns a not-found error
// (pkg/errors ErrNotFound) when the directory is empty, either input
// is blank, or no row matches.
type PatientDirectory interface {
	Lookup(ctx context.Context, name, dateOfBirth string) (*model.Patient, error)
	// Reload discards any cached directory state.
	Reload(ctx context.Context) error
}

// ScheduleDirectory looks up open slots by doctor and date.
type ScheduleDirectory interface {
	// FindAvailableSlot returns the first open slot for the pair, in
	// directory order, or a no-slot-available error.
	FindAvailableSlot(ctx context.Context, doctorID, date string) (*model.ScheduleSlot, error)
	// MarkBooked flips a slot to unavailable. Only called when slot
	// consumption is enabled.
	MarkBooked(ctx context.Context, doctorID, date, startTime string) error
	Reload(ctx context.Context) error
}

// BookingStore is an append-only log of created bookings. Append
// assigns CreatedAt; implementations must serialize writers.
type BookingStore interface {
	Append(ctx context.Context, record *model.BookingRecord) error
	List(ctx context.Context) ([]*model.BookingRecord, error)
}
