package health

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewHandler(Setup{
		StorageBackend:  "file",
		IntakeForm:      "intake.pdf",
		EmailConfigured: true,
		SMSConfigured:   false,
		ReminderMode:    "demo",
	}).RegisterRoutes(r.Group("/api/v1"))
	return r
}

func TestLivenessCheck(t *testing.T) {
	r := setupRouter()

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/health/live", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"UP"}`, w.Body.String())
}

func TestSetupStatus(t *testing.T) {
	r := setupRouter()

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/health/setup", nil))

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Status string `json:"status"`
		Setup  Setup  `json:"setup"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "file", resp.Setup.StorageBackend)
	assert.True(t, resp.Setup.EmailConfigured)
	assert.False(t, resp.Setup.SMSConfigured)
	assert.Equal(t, "demo", resp.Setup.ReminderMode)
}
