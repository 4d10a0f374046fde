package file

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/jwalitptl/clinic-scheduler/internal/model"
	"github.com/jwalitptl/clinic-scheduler/internal/repository"
	apperrors "github.com/jwalitptl/clinic-scheduler/pkg/errors"
)

// createdAtLayout is second-precision naive local time.
const createdAtLayout = "2006-01-02T15:04:05"

type bookingStore struct {
	path string
	mu   sync.Mutex
	now  func() time.Time
}

// NewBookingStore returns a CSV-backed append-only booking store. The
// whole file is read, extended and rewritten on every append, so the
// store holds a single writer lock across the operation.
func NewBookingStore(path string) repository.BookingStore {
	return &bookingStore{path: path, now: time.Now}
}

func (s *bookingStore) Append(ctx context.Context, record *model.BookingRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := loadOrInit(s.path, bookingHeader)
	if err != nil {
		return apperrors.Storage("failed to read booking store", err)
	}

	record.CreatedAt = s.now().Truncate(time.Second)
	rows = append(rows, bookingRow(record))

	if err := writeRows(s.path, rows); err != nil {
		// Self-heal once: reinitialize to a valid header-only file and
		// retry the full write before giving up.
		if initErr := initFile(s.path, bookingHeader); initErr != nil {
			return apperrors.Storage("failed to write booking store", err)
		}
		if err := writeRows(s.path, rows); err != nil {
			return apperrors.Storage("failed to write booking store after reinit", err)
		}
	}
	return nil
}

func (s *bookingStore) List(ctx context.Context) ([]*model.BookingRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := loadOrInit(s.path, bookingHeader)
	if err != nil {
		return nil, apperrors.Storage("failed to read booking store", err)
	}

	records := make([]*model.BookingRecord, 0, len(rows))
	for _, row := range rows[1:] {
		if len(row) < len(bookingHeader) {
			continue
		}
		isNew, _ := strconv.ParseBool(row[5])
		createdAt, _ := time.ParseInLocation(createdAtLayout, row[11], time.Local)
		records = append(records, &model.BookingRecord{
			PatientName:      row[0],
			DateOfBirth:      row[1],
			DoctorID:         row[2],
			Date:             row[3],
			StartTime:        row[4],
			IsNewPatient:     isNew,
			InsuranceCarrier: model.Optional(row[6]),
			MemberID:         model.Optional(row[7]),
			GroupNumber:      model.Optional(row[8]),
			PatientPhone:     model.Optional(row[9]),
			PatientEmail:     model.Optional(row[10]),
			CreatedAt:        createdAt,
		})
	}
	return records, nil
}

func bookingRow(r *model.BookingRecord) []string {
	return []string{
		r.PatientName,
		r.DateOfBirth,
		r.DoctorID,
		r.Date,
		r.StartTime,
		strconv.FormatBool(r.IsNewPatient),
		cell(r.InsuranceCarrier),
		cell(r.MemberID),
		cell(r.GroupNumber),
		cell(r.PatientPhone),
		cell(r.PatientEmail),
		r.CreatedAt.Format(createdAtLayout),
	}
}
