package events

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"studiospace/internal/domain"
)

const (
	ReservationCreated   = "reservation.created"
	ReservationCancelled = "reservation.cancelled"
)

// Event describes a committed change to the reservations table.
type Event struct {
	ID            uuid.UUID `json:"id"`
	Type          string    `json:"type"`
	ReservationID uuid.UUID `json:"reservation_id"`
	OwnerID       int64     `json:"owner_id"`
	StartTime     time.Time `json:"start_time"`
	EndTime       time.Time `json:"end_time"`
	OccurredAt    time.Time `json:"occurred_at"`
}

func NewReservationEvent(eventType string, r domain.Reservation, at time.Time) Event {
	return Event{
		ID:            uuid.New(),
		Type:          eventType,
		ReservationID: r.ID,
		OwnerID:       r.OwnerID,
		StartTime:     r.StartTime,
		EndTime:       r.EndTime,
		OccurredAt:    at.UTC(),
	}
}

type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// Fanout delivers every event to all sinks and joins their errors.
type Fanout []Publisher

func (f Fanout) Publish(ctx context.Context, e Event) error {
	var errs []error
	for _, p := range f {
		if err := p.Publish(ctx, e); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
