package booking

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"studiospace/internal/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const dateLayout = "2006-01-02"

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) CreateBooking(c *gin.Context) {
	var req CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "start_time and end_time are required RFC3339 timestamps")
		return
	}

	r, err := h.service.ProposeBooking(c.Request.Context(), IdentityFromContext(c).UserID, req.StartTime, req.EndTime)
	if err != nil {
		writeError(c, err, false)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"booking": toBookingResponse(*r)})
}

func (h *Handler) ListBookingsForDay(c *gin.Context) {
	day, err := time.ParseInLocation(dateLayout, c.Query("date"), time.UTC)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "date must be formatted as YYYY-MM-DD")
		return
	}

	rs, err := h.service.ListBookingsForDay(c.Request.Context(), day)
	if err != nil {
		writeError(c, err, true)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"date":     day.Format(dateLayout),
		"bookings": toBookingResponses(rs),
	})
}

func (h *Handler) ListMyUpcomingBookings(c *gin.Context) {
	rs, err := h.service.ListUpcomingBookingsForOwner(c.Request.Context(), IdentityFromContext(c).UserID)
	if err != nil {
		writeError(c, err, true)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"bookings": toBookingResponses(rs)})
}

// ListUserUpcomingBookings is the admin view of another member's upcoming bookings.
func (h *Handler) ListUserUpcomingBookings(c *gin.Context) {
	ownerID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || ownerID <= 0 {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid user ID")
		return
	}

	rs, err := h.service.ListUpcomingBookingsForOwner(c.Request.Context(), ownerID)
	if err != nil {
		writeError(c, err, true)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"bookings": toBookingResponses(rs)})
}

func (h *Handler) GetBooking(c *gin.Context) {
	id, ok := parseBookingID(c)
	if !ok {
		return
	}

	r, err := h.service.GetBooking(c.Request.Context(), id)
	if err != nil {
		writeError(c, err, true)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"booking": toBookingResponse(*r)})
}

func (h *Handler) CancelBooking(c *gin.Context) {
	id, ok := parseBookingID(c)
	if !ok {
		return
	}

	if err := h.service.CancelBooking(c.Request.Context(), id, IdentityFromContext(c)); err != nil {
		writeError(c, err, false)
		return
	}

	c.Status(http.StatusNoContent)
}

func parseBookingID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid booking ID")
		return uuid.Nil, false
	}
	return id, true
}

// writeError renders a booking error. Store failures on reads carry Retry-After;
// writes are never advertised as retryable since the outcome may be unknown.
func writeError(c *gin.Context, err error, read bool) {
	switch {
	case errors.Is(err, ErrUnauthenticated):
		response.Error(c, http.StatusUnauthorized, "UNAUTHENTICATED", ErrUnauthenticated.Error())
	case errors.Is(err, ErrInvalidInterval):
		response.Error(c, http.StatusBadRequest, "INVALID_INTERVAL", ErrInvalidInterval.Error())
	case errors.Is(err, ErrSlotUnavailable):
		response.Error(c, http.StatusConflict, "SLOT_UNAVAILABLE", ErrSlotUnavailable.Error())
	case errors.Is(err, ErrForbidden):
		response.Error(c, http.StatusForbidden, "FORBIDDEN", ErrForbidden.Error())
	case errors.Is(err, ErrNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", ErrNotFound.Error())
	default:
		_ = c.Error(err)
		if read {
			c.Header("Retry-After", "1")
		}
		response.ErrorWithDetails(c, http.StatusServiceUnavailable, "STORE_UNAVAILABLE", ErrStoreUnavailable.Error(),
			gin.H{"retryable": read})
	}
}
