package file

import (
	"context"
	"strings"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/jwalitptl/clinic-scheduler/internal/model"
	"github.com/jwalitptl/clinic-scheduler/internal/repository"
	apperrors "github.com/jwalitptl/clinic-scheduler/pkg/errors"
)

type scheduleDirectory struct {
	path     string
	fallback bool
	cache    *gocache.Cache
	mu       sync.Mutex // serializes MarkBooked rewrites
}

// NewScheduleDirectory returns a CSV-backed schedule directory.
// fallback enables the bootstrap behavior of fabricating a 10:00 slot
// when the directory is entirely unseeded; leave it off in real
// deployments so an empty directory surfaces as not-found.
func NewScheduleDirectory(path string, fallback bool) repository.ScheduleDirectory {
	return &scheduleDirectory{
		path:     path,
		fallback: fallback,
		cache:    gocache.New(directoryCacheTTL, time.Minute),
	}
}

func (d *scheduleDirectory) FindAvailableSlot(ctx context.Context, doctorID, date string) (*model.ScheduleSlot, error) {
	slots, err := d.load()
	if err != nil {
		return nil, apperrors.Storage("failed to load schedule directory", err)
	}

	if len(slots) == 0 && d.fallback {
		return &model.ScheduleSlot{
			DoctorID:  doctorID,
			Date:      date,
			StartTime: model.DefaultSlotTime,
			Available: true,
		}, nil
	}

	// First match in directory order; the file gives a stable order
	// within a process run.
	for i := range slots {
		s := slots[i]
		if s.DoctorID == doctorID && s.Date == date && s.Available {
			return &s, nil
		}
	}
	return nil, apperrors.NoSlotAvailable(doctorID, date)
}

func (d *scheduleDirectory) MarkBooked(ctx context.Context, doctorID, date, startTime string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	rows, err := loadOrInit(d.path, scheduleHeader)
	if err != nil {
		return apperrors.Storage("failed to load schedule directory", err)
	}

	for i, row := range rows {
		if i == 0 || len(row) < len(scheduleHeader) {
			continue
		}
		if row[0] == doctorID && row[1] == date && row[2] == startTime && model.ParseAvailable(row[3]) {
			row[3] = "false"
			if err := writeRows(d.path, rows); err != nil {
				return apperrors.Storage("failed to update schedule directory", err)
			}
			d.cache.Delete(directoryCacheKey)
			return nil
		}
	}
	return apperrors.NotFound("schedule slot", nil)
}

func (d *scheduleDirectory) Reload(_ context.Context) error {
	d.cache.Delete(directoryCacheKey)
	return nil
}

func (d *scheduleDirectory) load() ([]model.ScheduleSlot, error) {
	if cached, ok := d.cache.Get(directoryCacheKey); ok {
		return cached.([]model.ScheduleSlot), nil
	}

	rows, err := loadOrInit(d.path, scheduleHeader)
	if err != nil {
		return nil, err
	}

	slots := make([]model.ScheduleSlot, 0, len(rows))
	for _, row := range rows[1:] {
		if len(row) < len(scheduleHeader) {
			continue
		}
		slots = append(slots, model.ScheduleSlot{
			DoctorID:  strings.TrimSpace(row[0]),
			Date:      strings.TrimSpace(row[1]),
			StartTime: strings.TrimSpace(row[2]),
			Available: model.ParseAvailable(row[3]),
		})
	}

	d.cache.Set(directoryCacheKey, slots, gocache.DefaultExpiration)
	return slots, nil
}
