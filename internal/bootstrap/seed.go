// Package bootstrap provisions the demo data files so a fresh checkout
// can take bookings immediately: header-only patient and booking
// stores, a two-week doctor schedule, and a placeholder intake form.
package bootstrap

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/jwalitptl/clinic-scheduler/internal/config"
	"github.com/jwalitptl/clinic-scheduler/pkg/logger"
)

// placeholderPDF is a tiny but valid one-page PDF used until a real
// intake form is dropped in place.
var placeholderPDF = []byte("%PDF-1.4\n1 0 obj<</Type/Catalog/Pages 2 0 R>>endobj\n2 0 obj<</Type/Pages/Count 1/Kids[3 0 R]>>endobj\n3 0 obj<</Type/Page/Parent 2 0 R/MediaBox[0 0 300 144]/Contents 4 0 R>>endobj\n4 0 obj<</Length 44>>stream\nBT /F1 12 Tf 72 100 Td (New Patient Intake Form Placeholder) Tj ET\nendstream\nendobj\nxref\n0 5\n0000000000 65535 f \n0000000010 00000 n \n0000000053 00000 n \n0000000104 00000 n \n0000000192 00000 n \ntrailer<</Root 1 0 R/Size 5>>\nstartxref\n280\n%%EOF\n")

// seedDoctors maps demo doctors to their daily start hours.
var seedDoctors = []struct {
	id    string
	hours []int
}{
	{"D001", []int{9, 10, 11, 14, 15}},
	{"D002", []int{10, 11, 12, 16}},
}

// EnsureDataFiles creates any missing or empty data file. Existing
// files are never touched.
func EnsureDataFiles(cfg config.StorageConfig, seedDays int, log *logger.Logger) error {
	if seedDays <= 0 {
		seedDays = 14
	}

	if err := ensureCSV(cfg.PatientsFile, [][]string{
		{"patient_id", "first_name", "last_name", "dob", "email", "phone"},
	}); err != nil {
		return fmt.Errorf("failed to init patients file: %w", err)
	}

	if err := ensureCSV(cfg.ScheduleFile, scheduleRows(seedDays)); err != nil {
		return fmt.Errorf("failed to init schedule file: %w", err)
	}

	if err := ensureCSV(cfg.BookingsFile, [][]string{
		{"patient_name", "dob", "doctor_id", "date", "start_time",
			"is_new_patient", "insurance_carrier", "member_id", "group_number",
			"patient_phone", "patient_email", "created_at"},
	}); err != nil {
		return fmt.Errorf("failed to init bookings file: %w", err)
	}

	if err := ensureFile(cfg.IntakeForm, placeholderPDF); err != nil {
		return fmt.Errorf("failed to init intake form: %w", err)
	}

	log.Debug("data files verified",
		"patients", cfg.PatientsFile,
		"schedule", cfg.ScheduleFile,
		"bookings", cfg.BookingsFile,
		"intake_form", cfg.IntakeForm,
	)
	return nil
}

func scheduleRows(days int) [][]string {
	rows := [][]string{{"doctor_id", "date", "start_time", "is_available"}}
	today := time.Now()
	for d := 0; d < days; d++ {
		day := today.AddDate(0, 0, d).Format("2006-01-02")
		for _, doc := range seedDoctors {
			for _, hr := range doc.hours {
				rows = append(rows, []string{
					doc.id,
					day,
					fmt.Sprintf("%02d:00", hr),
					strconv.FormatBool(true),
				})
			}
		}
	}
	return rows
}

func ensureCSV(path string, rows [][]string) error {
	if exists(path) {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.WriteAll(rows); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}

func ensureFile(path string, content []byte) error {
	if exists(path) {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, content, 0o644)
}

func exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Size() > 0
}
