package booking

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/clinic-scheduler/internal/model"
	apperrors "github.com/jwalitptl/clinic-scheduler/pkg/errors"
)

type fakeService struct {
	result  *model.BookingResult
	listOut []*model.BookingRecord
	err     error
	lastReq *model.CreateBookingRequest
}

func (f *fakeService) Book(_ context.Context, req *model.CreateBookingRequest) (*model.BookingResult, error) {
	f.lastReq = req
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func (f *fakeService) List(context.Context) ([]*model.BookingRecord, error) {
	return f.listOut, f.err
}

func setupRouter(svc Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	RegisterValidations()
	r := gin.New()
	NewHandler(svc).RegisterRoutes(r.Group("/api/v1"))
	return r
}

func postBooking(t *testing.T, r *gin.Engine, payload interface{}) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCreateBooking(t *testing.T) {
	svc := &fakeService{result: &model.BookingResult{
		Booking:     &model.BookingRecord{PatientName: "Jane Doe"},
		EmailStatus: "Email sent",
		SMSStatus:   "No phone provided",
		BookingLink: "https://example.com/returning",
	}}
	r := setupRouter(svc)

	w := postBooking(t, r, gin.H{
		"patient_name":     "Jane Doe",
		"date_of_birth":    "1985-02-17",
		"doctor_id":        "D001",
		"appointment_date": "2026-03-14",
		"patient_email":    "jane@example.com",
	})

	require.Equal(t, http.StatusCreated, w.Code)

	var resp struct {
		Status string              `json:"status"`
		Data   model.BookingResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "success", resp.Status)
	assert.Equal(t, "Email sent", resp.Data.EmailStatus)
	assert.Equal(t, "https://example.com/returning", resp.Data.BookingLink)

	require.NotNil(t, svc.lastReq)
	assert.Equal(t, "Jane Doe", svc.lastReq.PatientName)
}

func TestCreateBookingMalformedJSON(t *testing.T) {
	r := setupRouter(&fakeService{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings", bytes.NewReader([]byte("{not json")))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateBookingBindingValidation(t *testing.T) {
	tests := []struct {
		name    string
		payload gin.H
	}{
		{
			name: "bad email",
			payload: gin.H{
				"patient_name":  "Jane Doe",
				"doctor_id":     "D001",
				"patient_email": "not-an-email",
			},
		},
		{
			name: "bad phone",
			payload: gin.H{
				"patient_name":  "Jane Doe",
				"doctor_id":     "D001",
				"patient_phone": "555-0111",
			},
		},
		{
			name: "malformed appointment date",
			payload: gin.H{
				"patient_name":     "Jane Doe",
				"doctor_id":        "D001",
				"appointment_date": "03/14/2026",
			},
		},
		{
			name: "future date of birth",
			payload: gin.H{
				"patient_name":  "Jane Doe",
				"doctor_id":     "D001",
				"date_of_birth": "2999-01-01",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeService{}
			r := setupRouter(svc)

			w := postBooking(t, r, tt.payload)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Nil(t, svc.lastReq, "binding failures must not reach the service")
		})
	}
}

func TestCreateBookingErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", apperrors.Validation("patient name is required"), http.StatusBadRequest},
		{"no slot", apperrors.NoSlotAvailable("D001", "2026-03-14"), http.StatusConflict},
		{"not found", apperrors.NotFound("patient", nil), http.StatusNotFound},
		{"storage", apperrors.Storage("disk full", nil), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := setupRouter(&fakeService{err: tt.err})

			w := postBooking(t, r, gin.H{
				"patient_name": "Jane Doe",
				"doctor_id":    "D001",
			})
			assert.Equal(t, tt.want, w.Code)

			var resp struct {
				Status string `json:"status"`
			}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, "error", resp.Status)
		})
	}
}

func TestListBookings(t *testing.T) {
	svc := &fakeService{listOut: []*model.BookingRecord{
		{PatientName: "Jane Doe"},
		{PatientName: "Bob Reyes"},
	}}
	r := setupRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/bookings", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Status string                 `json:"status"`
		Data   []*model.BookingRecord `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "success", resp.Status)
	assert.Len(t, resp.Data, 2)
}
