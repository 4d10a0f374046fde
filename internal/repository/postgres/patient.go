package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/clinic-scheduler/internal/model"
	"github.com/jwalitptl/clinic-scheduler/internal/repository"
	apperrors "github.com/jwalitptl/clinic-scheduler/pkg/errors"
)

type patientDirectory struct {
	db *sqlx.DB
}

func NewPatientDirectory(db *sqlx.DB) repository.PatientDirectory {
	return &patientDirectory{db: db}
}

func (d *patientDirectory) Lookup(ctx context.Context, name, dateOfBirth string) (*model.Patient, error) {
	tokens := strings.Fields(name)
	if len(tokens) == 0 || strings.TrimSpace(dateOfBirth) == "" {
		return nil, apperrors.NotFound("patient", nil)
	}
	first := strings.ToLower(tokens[0])

	// dob is stored and compared as text, matching the directory
	// contract exactly.
	query := `
		SELECT patient_id, first_name, last_name, dob, email, phone
		FROM patients
		WHERE lower(first_name) = $1 AND dob = $2
		ORDER BY patient_id
		LIMIT 1
	`
	var patient model.Patient
	err := d.db.GetContext(ctx, &patient, query, first, dateOfBirth)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("patient", err)
	}
	if err != nil {
		return nil, apperrors.Storage("failed to look up patient", err)
	}
	return &patient, nil
}

func (d *patientDirectory) Reload(_ context.Context) error {
	// Reads always hit the database; nothing cached to discard.
	return nil
}
