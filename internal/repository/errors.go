package repository

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"studiospace/internal/database"
)

var (
	ErrNotFound            = errors.New("record not found")
	ErrConstraintViolation = errors.New("reservation overlaps an existing reservation")
	ErrInvalidInterval     = errors.New("reservation start must be before end")
)

const (
	pgExclusionViolation = "23P01"
	pgCheckViolation     = "23514"
)

// classify translates driver errors raised by the reservation guards into store
// sentinels. Anything else is returned unchanged.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case pgErr.Code == pgExclusionViolation && pgErr.ConstraintName == database.OverlapConstraint:
			return ErrConstraintViolation
		case pgErr.Code == pgCheckViolation && pgErr.ConstraintName == database.IntervalConstraint:
			return ErrInvalidInterval
		}
		return err
	}

	// sqlite reports RAISE(ABORT, msg) as a plain error carrying msg
	msg := err.Error()
	switch {
	case strings.Contains(msg, database.OverlapConstraint):
		return ErrConstraintViolation
	case strings.Contains(msg, database.IntervalConstraint):
		return ErrInvalidInterval
	}
	return err
}
