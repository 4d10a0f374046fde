package booking

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/clinic-scheduler/internal/handler"
	"github.com/jwalitptl/clinic-scheduler/internal/model"
	apperrors "github.com/jwalitptl/clinic-scheduler/pkg/errors"
)

// Service is the booking workflow the handler fronts.
type Service interface {
	Book(ctx context.Context, req *model.CreateBookingRequest) (*model.BookingResult, error)
	List(ctx context.Context) ([]*model.BookingRecord, error)
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	bookings := r.Group("/bookings")
	{
		bookings.POST("", h.CreateBooking)
		bookings.GET("", h.ListBookings)
	}
}

func (h *Handler) CreateBooking(c *gin.Context) {
	var req model.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	result, err := h.service.Book(c.Request.Context(), &req)
	if err != nil {
		c.JSON(statusFor(err), handler.NewErrorResponse(err.Error()))
		return
	}

	c.JSON(http.StatusCreated, handler.NewSuccessResponse(result))
}

func (h *Handler) ListBookings(c *gin.Context) {
	bookings, err := h.service.List(c.Request.Context())
	if err != nil {
		c.JSON(statusFor(err), handler.NewErrorResponse(err.Error()))
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(bookings))
}

func statusFor(err error) int {
	switch apperrors.CodeOf(err) {
	case apperrors.ErrValidation:
		return http.StatusBadRequest
	case apperrors.ErrNoSlotAvailable:
		return http.StatusConflict
	case apperrors.ErrNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
