package booking

import (
	"context"
	"time"

	"github.com/google/uuid"

	"studiospace/internal/domain"
	"studiospace/internal/repository"
)

// ReservationStore must reject overlapping inserts atomically with
// repository.ErrConstraintViolation.
type ReservationStore interface {
	Find(ctx context.Context, f repository.ReservationFilter) ([]domain.Reservation, error)
	Insert(ctx context.Context, r *domain.Reservation) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Reservation, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type Clock interface {
	Now() time.Time
}

type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time { return f() }

type OutcomeRecorder interface {
	RecordBookingOutcome(operation, outcome string)
}
