package booking

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"studiospace/internal/domain"
	"studiospace/internal/events"
	"studiospace/internal/pkg/validator"
	"studiospace/internal/repository"
)

const (
	opPropose  = "propose"
	opCancel   = "cancel"
	opListDay  = "list_day"
	opUpcoming = "list_upcoming"
	opGet      = "get"
)

// Service validates and persists studio reservations. It holds no mutable state;
// every call reads a fresh view from the store.
type Service struct {
	store        ReservationStore
	clock        Clock
	events       events.Publisher
	outcomes     OutcomeRecorder
	storeTimeout time.Duration
}

// NewService wires the booking core. publisher and outcomes may be nil; a nil clock
// falls back to the wall clock and a non-positive storeTimeout disables the per-call
// deadline.
func NewService(
	store ReservationStore,
	clock Clock,
	publisher events.Publisher,
	outcomes OutcomeRecorder,
	storeTimeout time.Duration,
) *Service {
	if clock == nil {
		clock = ClockFunc(time.Now)
	}
	return &Service{
		store:        store,
		clock:        clock,
		events:       publisher,
		outcomes:     outcomes,
		storeTimeout: storeTimeout,
	}
}

// ProposeBooking checks caller identity, interval shape and overlap in that order
// and inserts the reservation. The overlap pre-check only fails fast: the store's
// atomic guard decides races, and its violation is reported as ErrSlotUnavailable
// just like a pre-check hit. The insert is never retried.
func (s *Service) ProposeBooking(ctx context.Context, ownerID int64, start, end time.Time) (*domain.Reservation, error) {
	r, err := s.proposeBooking(ctx, ownerID, start, end)
	s.record(opPropose, err)
	return r, err
}

func (s *Service) proposeBooking(ctx context.Context, ownerID int64, start, end time.Time) (*domain.Reservation, error) {
	if ownerID <= 0 {
		return nil, ErrUnauthenticated
	}
	r := &domain.Reservation{
		OwnerID:   ownerID,
		StartTime: start.UTC(),
		EndTime:   end.UTC(),
	}
	if validator.Validate(r) != nil {
		return nil, ErrInvalidInterval
	}

	conflicts, err := s.find(ctx, repository.ReservationFilter{
		Overlaps: &repository.Interval{Start: r.StartTime, End: r.EndTime},
		Limit:    1,
	})
	if err != nil {
		return nil, err
	}
	for _, c := range conflicts {
		if c.Overlaps(r.StartTime, r.EndTime) {
			return nil, ErrSlotUnavailable
		}
	}

	insertCtx, cancel := s.storeContext(ctx)
	defer cancel()
	if err := s.store.Insert(insertCtx, r); err != nil {
		return nil, storeError(err)
	}

	s.publish(ctx, events.ReservationCreated, *r)
	return r, nil
}

// ListBookingsForDay returns reservations intersecting the UTC calendar day of day,
// ordered by start time.
func (s *Service) ListBookingsForDay(ctx context.Context, day time.Time) ([]domain.Reservation, error) {
	day = day.UTC()
	from := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 1)

	rs, err := s.find(ctx, repository.ReservationFilter{
		Overlaps: &repository.Interval{Start: from, End: to},
	})
	s.record(opListDay, err)
	return rs, err
}

// ListUpcomingBookingsForOwner returns the owner's reservations starting at or
// after the clock's now, ordered by start time.
func (s *Service) ListUpcomingBookingsForOwner(ctx context.Context, ownerID int64) ([]domain.Reservation, error) {
	if ownerID <= 0 {
		s.record(opUpcoming, ErrUnauthenticated)
		return nil, ErrUnauthenticated
	}

	now := s.clock.Now()
	rs, err := s.find(ctx, repository.ReservationFilter{
		OwnerID:         ownerID,
		StartsAtOrAfter: &now,
	})
	s.record(opUpcoming, err)
	return rs, err
}

func (s *Service) GetBooking(ctx context.Context, id uuid.UUID) (*domain.Reservation, error) {
	r, err := s.get(ctx, id)
	s.record(opGet, err)
	return r, err
}

// CancelBooking deletes the reservation when the requester owns it or is an admin.
func (s *Service) CancelBooking(ctx context.Context, id uuid.UUID, requester Identity) error {
	err := s.cancelBooking(ctx, id, requester)
	s.record(opCancel, err)
	return err
}

func (s *Service) cancelBooking(ctx context.Context, id uuid.UUID, requester Identity) error {
	if !requester.Authenticated() {
		return ErrUnauthenticated
	}

	r, err := s.get(ctx, id)
	if err != nil {
		return err
	}
	if r.OwnerID != requester.UserID && !requester.IsAdmin() {
		return ErrForbidden
	}

	deleteCtx, cancel := s.storeContext(ctx)
	defer cancel()
	if err := s.store.Delete(deleteCtx, id); err != nil {
		return storeError(err)
	}

	s.publish(ctx, events.ReservationCancelled, *r)
	return nil
}

func (s *Service) find(ctx context.Context, f repository.ReservationFilter) ([]domain.Reservation, error) {
	findCtx, cancel := s.storeContext(ctx)
	defer cancel()

	rs, err := s.store.Find(findCtx, f)
	if err != nil {
		return nil, storeError(err)
	}
	return rs, nil
}

func (s *Service) get(ctx context.Context, id uuid.UUID) (*domain.Reservation, error) {
	getCtx, cancel := s.storeContext(ctx)
	defer cancel()

	r, err := s.store.GetByID(getCtx, id)
	if err != nil {
		return nil, storeError(err)
	}
	return r, nil
}

func (s *Service) storeContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.storeTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.storeTimeout)
}

// storeError maps store sentinels onto booking errors. Every other failure,
// timeouts and cancellation included, means the store could not serve the call.
func storeError(err error) error {
	switch {
	case errors.Is(err, repository.ErrConstraintViolation):
		return ErrSlotUnavailable
	case errors.Is(err, repository.ErrInvalidInterval):
		return ErrInvalidInterval
	case errors.Is(err, repository.ErrNotFound):
		return ErrNotFound
	default:
		return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
}

// publish runs after commit. The request's cancellation does not reach the
// publisher; callers are expected to wire a non-blocking one (events.Async).
func (s *Service) publish(ctx context.Context, eventType string, r domain.Reservation) {
	if s.events == nil {
		return
	}
	e := events.NewReservationEvent(eventType, r, s.clock.Now())
	if err := s.events.Publish(context.WithoutCancel(ctx), e); err != nil {
		log.Printf("booking_event_publish_failed type=%s reservation_id=%s error=%q", eventType, r.ID, err)
	}
}

func (s *Service) record(operation string, err error) {
	result := outcome(err)
	if errors.Is(err, ErrStoreUnavailable) {
		log.Printf("booking_store_unavailable operation=%s error=%q", operation, err)
	}
	if s.outcomes != nil {
		s.outcomes.RecordBookingOutcome(operation, result)
	}
}
