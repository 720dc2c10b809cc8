package domain

import (
	"time"

	"github.com/google/uuid"
)

// Reservation is a booked [StartTime, EndTime) interval of the studio owned by one member.
type Reservation struct {
	ID        uuid.UUID `json:"id"`
	OwnerID   int64     `json:"owner_id" validate:"required,gt=0"`
	StartTime time.Time `json:"start_time" validate:"required"`
	EndTime   time.Time `json:"end_time" validate:"required,gtfield=StartTime"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Overlaps reports whether the half-open intervals [r.StartTime, r.EndTime) and
// [start, end) intersect. Back-to-back intervals do not overlap.
func (r Reservation) Overlaps(start, end time.Time) bool {
	return r.StartTime.Before(end) && start.Before(r.EndTime)
}
