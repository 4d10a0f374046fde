package model

import (
	"time"

	"github.com/google/uuid"
)

// ReminderMode selects how reminder fire times are computed.
type ReminderMode string

const (
	// ReminderModeDemo fires at fixed short offsets from now, for
	// interactive demonstration only.
	ReminderModeDemo ReminderMode = "demo"
	// ReminderModeProduction fires relative to the appointment time.
	ReminderModeProduction ReminderMode = "production"
)

// ParseReminderMode accepts both spellings the original deployment
// used ("prod") and the documented one.
func ParseReminderMode(raw string) ReminderMode {
	switch raw {
	case "prod", "production":
		return ReminderModeProduction
	}
	return ReminderModeDemo
}

// Notification channels
const (
	ChannelEmail = "email"
	ChannelSMS   = "sms"
)

// ReminderJob is a single deferred notification. Jobs live only in the
// job queue; if the queue is in-memory they are lost on restart.
type ReminderJob struct {
	BookingID   uuid.UUID `json:"booking_id"`
	Sequence    int       `json:"sequence"`
	Channel     string    `json:"channel"`
	Destination string    `json:"destination"`
	Subject     string    `json:"subject,omitempty"`
	Body        string    `json:"body"`
	AttachForm  bool      `json:"attach_form,omitempty"`
	FireAt      time.Time `json:"fire_at"`
}
