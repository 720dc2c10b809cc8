package booking

import (
	"time"

	"github.com/google/uuid"

	"studiospace/internal/domain"
)

type CreateBookingRequest struct {
	StartTime time.Time `json:"start_time" binding:"required"`
	EndTime   time.Time `json:"end_time" binding:"required"`
}

type BookingResponse struct {
	ID        uuid.UUID `json:"id"`
	OwnerID   int64     `json:"owner_id"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toBookingResponse(r domain.Reservation) BookingResponse {
	return BookingResponse{
		ID:        r.ID,
		OwnerID:   r.OwnerID,
		StartTime: r.StartTime,
		EndTime:   r.EndTime,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

func toBookingResponses(rs []domain.Reservation) []BookingResponse {
	out := make([]BookingResponse, 0, len(rs))
	for _, r := range rs {
		out = append(out, toBookingResponse(r))
	}
	return out
}
