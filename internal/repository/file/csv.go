package file

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
)

// Column layouts for the three tabular stores. Field names are part of
// the persisted contract; the storage technology is not.
var (
	patientHeader  = []string{"patient_id", "first_name", "last_name", "dob", "email", "phone"}
	scheduleHeader = []string{"doctor_id", "date", "start_time", "is_available"}
	bookingHeader  = []string{
		"patient_name", "dob", "doctor_id", "date", "start_time",
		"is_new_patient", "insurance_carrier", "member_id", "group_number",
		"patient_phone", "patient_email", "created_at",
	}
)

// readRows reads every row of a CSV file, header included.
func readRows(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
	}
	return rows, nil
}

// writeRows rewrites the whole file through a temp file in the same
// directory so readers never observe a half-written store.
func writeRows(path string, rows [][]string) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	w := csv.NewWriter(tmp)
	if err := w.WriteAll(rows); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write rows: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to flush rows: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", filepath.Base(path), err)
	}
	return nil
}

// initFile reinitializes a store to an empty-but-valid file holding
// only the header row.
func initFile(path string, header []string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create store directory: %w", err)
	}
	return writeRows(path, [][]string{header})
}

// loadOrInit reads a store, reinitializing it once on any read failure
// (missing, empty or corrupted file) before retrying.
func loadOrInit(path string, header []string) ([][]string, error) {
	rows, err := readRows(path)
	if err == nil && len(rows) > 0 {
		return rows, nil
	}
	if initErr := initFile(path, header); initErr != nil {
		return nil, fmt.Errorf("failed to reinitialize store: %w", initErr)
	}
	rows, err = readRows(path)
	if err != nil {
		return nil, fmt.Errorf("store unreadable after reinit: %w", err)
	}
	return rows, nil
}

func cell(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
