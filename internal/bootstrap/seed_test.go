package bootstrap

import (
	"bytes"
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/clinic-scheduler/internal/config"
	"github.com/jwalitptl/clinic-scheduler/pkg/logger"
)

func testLogger() *logger.Logger {
	return logger.NewLogger(&logger.Config{
		Level:      logger.ErrorLevel,
		TimeFormat: time.RFC3339,
		Output:     io.Discard,
	})
}

func testStorage(t *testing.T) config.StorageConfig {
	t.Helper()
	dir := t.TempDir()
	return config.StorageConfig{
		Backend:      "file",
		PatientsFile: filepath.Join(dir, "patients.csv"),
		ScheduleFile: filepath.Join(dir, "doctor_schedules.csv"),
		BookingsFile: filepath.Join(dir, "appointments.csv"),
		IntakeForm:   filepath.Join(dir, "intake.pdf"),
	}
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestEnsureDataFilesCreatesEverything(t *testing.T) {
	cfg := testStorage(t)
	require.NoError(t, EnsureDataFiles(cfg, 3, testLogger()))

	patients := readCSV(t, cfg.PatientsFile)
	require.Len(t, patients, 1)
	assert.Equal(t, []string{"patient_id", "first_name", "last_name", "dob", "email", "phone"}, patients[0])

	// D001 has 5 daily slots, D002 has 4; 3 seeded days plus header.
	schedule := readCSV(t, cfg.ScheduleFile)
	assert.Len(t, schedule, 1+3*9)
	assert.Equal(t, []string{"doctor_id", "date", "start_time", "is_available"}, schedule[0])
	for _, row := range schedule[1:] {
		assert.Equal(t, "true", row[3])
	}

	bookings := readCSV(t, cfg.BookingsFile)
	require.Len(t, bookings, 1)
	assert.Equal(t, "patient_name", bookings[0][0])
	assert.Equal(t, "created_at", bookings[0][11])

	form, err := os.ReadFile(cfg.IntakeForm)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(form, []byte("%PDF")))
}

func TestEnsureDataFilesLeavesExistingFilesAlone(t *testing.T) {
	cfg := testStorage(t)
	custom := []byte("patient_id,first_name,last_name,dob,email,phone\nP001,Jane,Doe,1985-02-17,,\n")
	require.NoError(t, os.WriteFile(cfg.PatientsFile, custom, 0o644))

	require.NoError(t, EnsureDataFiles(cfg, 3, testLogger()))

	got, err := os.ReadFile(cfg.PatientsFile)
	require.NoError(t, err)
	assert.Equal(t, custom, got, "seeded data must never clobber real data")
}

func TestEnsureDataFilesReseedsEmptyFile(t *testing.T) {
	cfg := testStorage(t)
	require.NoError(t, os.WriteFile(cfg.ScheduleFile, nil, 0o644))

	require.NoError(t, EnsureDataFiles(cfg, 2, testLogger()))

	schedule := readCSV(t, cfg.ScheduleFile)
	assert.Len(t, schedule, 1+2*9)
}

func TestEnsureDataFilesIsIdempotent(t *testing.T) {
	cfg := testStorage(t)
	require.NoError(t, EnsureDataFiles(cfg, 3, testLogger()))
	first := readCSV(t, cfg.ScheduleFile)

	require.NoError(t, EnsureDataFiles(cfg, 3, testLogger()))
	assert.Equal(t, first, readCSV(t, cfg.ScheduleFile))
}
