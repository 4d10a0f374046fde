package file

import (
	"context"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/jwalitptl/clinic-scheduler/internal/model"
	"github.com/jwalitptl/clinic-scheduler/internal/repository"
	apperrors "github.com/jwalitptl/clinic-scheduler/pkg/errors"
)

const (
	directoryCacheKey = "rows"
	directoryCacheTTL = 30 * time.Second
)

type patientDirectory struct {
	path  string
	cache *gocache.Cache
}

// NewPatientDirectory returns a read-only, CSV-backed patient
// directory. Rows are parsed once per load and cached with a short
// TTL, so edits to the file show up without a restart.
func NewPatientDirectory(path string) repository.PatientDirectory {
	return &patientDirectory{
		path:  path,
		cache: gocache.New(directoryCacheTTL, time.Minute),
	}
}

func (d *patientDirectory) Lookup(ctx context.Context, name, dateOfBirth string) (*model.Patient, error) {
	tokens := strings.Fields(name)
	if len(tokens) == 0 || strings.TrimSpace(dateOfBirth) == "" {
		return nil, apperrors.NotFound("patient", nil)
	}
	first := strings.ToLower(tokens[0])

	patients, err := d.load()
	if err != nil {
		return nil, apperrors.Storage("failed to load patient directory", err)
	}

	for i := range patients {
		// DOB is an exact string match; "2024-01-05" and "2024-1-5"
		// deliberately do not match.
		if strings.ToLower(patients[i].FirstName) == first && patients[i].DateOfBirth == dateOfBirth {
			p := patients[i]
			return &p, nil
		}
	}
	return nil, apperrors.NotFound("patient", nil)
}

func (d *patientDirectory) Reload(_ context.Context) error {
	d.cache.Delete(directoryCacheKey)
	return nil
}

func (d *patientDirectory) load() ([]model.Patient, error) {
	if cached, ok := d.cache.Get(directoryCacheKey); ok {
		return cached.([]model.Patient), nil
	}

	rows, err := loadOrInit(d.path, patientHeader)
	if err != nil {
		return nil, err
	}

	patients := make([]model.Patient, 0, len(rows))
	for _, row := range rows[1:] {
		if len(row) < len(patientHeader) {
			continue
		}
		patients = append(patients, model.Patient{
			PatientID:   row[0],
			FirstName:   strings.TrimSpace(row[1]),
			LastName:    strings.TrimSpace(row[2]),
			DateOfBirth: strings.TrimSpace(row[3]),
			Email:       strings.TrimSpace(row[4]),
			Phone:       strings.TrimSpace(row[5]),
		})
	}

	d.cache.Set(directoryCacheKey, patients, gocache.DefaultExpiration)
	return patients, nil
}
