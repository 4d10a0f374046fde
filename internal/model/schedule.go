package model

import "strings"

// DefaultSlotTime is the fallback start time handed out when the
// schedule directory is unseeded and the fallback is enabled.
const DefaultSlotTime = "10:00"

// ScheduleSlot is a bookable doctor/date/time triple.
type ScheduleSlot struct {
	DoctorID  string `db:"doctor_id" json:"doctor_id"`
	Date      string `db:"date" json:"date"`
	StartTime string `db:"start_time" json:"start_time"`
	Available bool   `db:"is_available" json:"is_available"`
}

// ParseAvailable normalizes a stored availability cell. Only the fixed
// truthy set {"true","1","yes"} counts, case-insensitively.
func ParseAvailable(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "true", "1", "yes":
		return true
	}
	return false
}
