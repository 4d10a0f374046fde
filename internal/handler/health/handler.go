package health

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Setup describes how the running instance is wired: where the data
// files live and which notification channels have credentials.
type Setup struct {
	StorageBackend  string `json:"storage_backend"`
	PatientsFile    string `json:"patients_file,omitempty"`
	ScheduleFile    string `json:"schedule_file,omitempty"`
	BookingsFile    string `json:"bookings_file,omitempty"`
	IntakeForm      string `json:"intake_form"`
	EmailConfigured bool   `json:"email_configured"`
	SMSConfigured   bool   `json:"sms_configured"`
	ReminderMode    string `json:"reminder_mode"`
}

type Handler struct {
	setup Setup
}

func NewHandler(setup Setup) *Handler {
	return &Handler{setup: setup}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	health := r.Group("/health")
	{
		health.GET("/live", h.LivenessCheck)
		health.GET("/setup", h.SetupStatus)
	}
}

func (h *Handler) LivenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "UP"})
}

// SetupStatus reports file locations and channel configuration so a
// demo operator can see what will actually send.
func (h *Handler) SetupStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "UP", "setup": h.setup})
}
