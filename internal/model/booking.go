package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// BookingRecord is one appended booking. Records are immutable once
// persisted; CreatedAt is assigned exactly once, by the store, at
// append time.
type BookingRecord struct {
	ID               uuid.UUID `db:"id" json:"id"`
	PatientName      string    `db:"patient_name" json:"patient_name"`
	DateOfBirth      string    `db:"dob" json:"dob"`
	DoctorID         string    `db:"doctor_id" json:"doctor_id"`
	Date             string    `db:"date" json:"date"`
	StartTime        string    `db:"start_time" json:"start_time"`
	IsNewPatient     bool      `db:"is_new_patient" json:"is_new_patient"`
	InsuranceCarrier *string   `db:"insurance_carrier" json:"insurance_carrier,omitempty"`
	MemberID         *string   `db:"member_id" json:"member_id,omitempty"`
	GroupNumber      *string   `db:"group_number" json:"group_number,omitempty"`
	PatientPhone     *string   `db:"patient_phone" json:"patient_phone,omitempty"`
	PatientEmail     *string   `db:"patient_email" json:"patient_email,omitempty"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
}

// Email returns the patient email or "" when absent.
func (b *BookingRecord) Email() string {
	if b.PatientEmail == nil {
		return ""
	}
	return *b.PatientEmail
}

// Phone returns the patient phone or "" when absent.
func (b *BookingRecord) Phone() string {
	if b.PatientPhone == nil {
		return ""
	}
	return *b.PatientPhone
}

// CreateBookingRequest is the booking submission payload.
type CreateBookingRequest struct {
	PatientName      string `json:"patient_name"`
	DateOfBirth      string `json:"date_of_birth" binding:"omitempty,datetime=2006-01-02,pastdate"`
	DoctorID         string `json:"doctor_id"`
	AppointmentDate  string `json:"appointment_date" binding:"omitempty,datetime=2006-01-02"`
	PatientEmail     string `json:"patient_email" binding:"omitempty,email"`
	PatientPhone     string `json:"patient_phone" binding:"omitempty,e164"`
	InsuranceCarrier string `json:"insurance_carrier"`
	MemberID         string `json:"member_id"`
	GroupNumber      string `json:"group_number"`
}

// BookingResult is what the workflow reports back for a persisted
// booking: per-channel delivery status text plus the external booking
// link chosen by new/returning status.
type BookingResult struct {
	Booking     *BookingRecord `json:"booking"`
	EmailStatus string         `json:"email_status"`
	SMSStatus   string         `json:"sms_status"`
	BookingLink string         `json:"booking_link"`
}

// Optional normalizes a form field: blank input becomes absent, never
// an empty string in the record.
func Optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
