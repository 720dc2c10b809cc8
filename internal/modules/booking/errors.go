package booking

import "errors"

var (
	ErrUnauthenticated  = errors.New("sign in to manage bookings")
	ErrInvalidInterval  = errors.New("booking must end after it starts")
	ErrSlotUnavailable  = errors.New("the selected time overlaps an existing booking")
	ErrStoreUnavailable = errors.New("booking storage is temporarily unavailable")
	ErrForbidden        = errors.New("only the booking owner or an admin can cancel it")
	ErrNotFound         = errors.New("booking not found")
)

// outcome names an operation result for metrics and logs.
func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrUnauthenticated):
		return "unauthenticated"
	case errors.Is(err, ErrInvalidInterval):
		return "invalid_interval"
	case errors.Is(err, ErrSlotUnavailable):
		return "slot_unavailable"
	case errors.Is(err, ErrForbidden):
		return "forbidden"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	default:
		return "store_unavailable"
	}
}
