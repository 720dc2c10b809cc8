package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"studiospace/internal/domain"
)

type ReservationRepository struct {
	db *gorm.DB
}

func NewReservationRepository(db *gorm.DB) *ReservationRepository {
	return &ReservationRepository{db: db}
}

// Interval is a half-open [Start, End) time range.
type Interval struct {
	Start time.Time
	End   time.Time
}

// ReservationFilter narrows Find. Zero-valued fields are ignored.
type ReservationFilter struct {
	Overlaps        *Interval
	OwnerID         int64
	StartsAtOrAfter *time.Time
	Limit           int
}

type reservationModel struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	OwnerID   int64     `gorm:"column:owner_id;not null;index"`
	StartTime time.Time `gorm:"column:start_time;not null;index"`
	EndTime   time.Time `gorm:"column:end_time;not null"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (reservationModel) TableName() string { return "reservations" }

func (m *reservationModel) BeforeCreate(_ *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

func toDomainReservation(m reservationModel) *domain.Reservation {
	return &domain.Reservation{
		ID:        m.ID,
		OwnerID:   m.OwnerID,
		StartTime: m.StartTime.UTC(),
		EndTime:   m.EndTime.UTC(),
		CreatedAt: m.CreatedAt.UTC(),
		UpdatedAt: m.UpdatedAt.UTC(),
	}
}

// toReservationModel stores every timestamp in UTC so that sqlite's textual
// comparison of time columns orders them chronologically.
func toReservationModel(r *domain.Reservation) reservationModel {
	return reservationModel{
		ID:        r.ID,
		OwnerID:   r.OwnerID,
		StartTime: r.StartTime.UTC(),
		EndTime:   r.EndTime.UTC(),
		CreatedAt: r.CreatedAt.UTC(),
		UpdatedAt: r.UpdatedAt.UTC(),
	}
}

func (r *ReservationRepository) Find(ctx context.Context, f ReservationFilter) ([]domain.Reservation, error) {
	q := r.db.WithContext(ctx).Model(&reservationModel{})
	if f.Overlaps != nil {
		q = q.Where("start_time < ? AND end_time > ?", f.Overlaps.End.UTC(), f.Overlaps.Start.UTC())
	}
	if f.OwnerID != 0 {
		q = q.Where("owner_id = ?", f.OwnerID)
	}
	if f.StartsAtOrAfter != nil {
		q = q.Where("start_time >= ?", f.StartsAtOrAfter.UTC())
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}

	var rows []reservationModel
	if err := q.Order("start_time ASC").Order("id ASC").Find(&rows).Error; err != nil {
		return nil, classify(err)
	}

	out := make([]domain.Reservation, 0, len(rows))
	for _, m := range rows {
		out = append(out, *toDomainReservation(m))
	}
	return out, nil
}

// Insert persists res. The database guard rejects overlapping rows atomically,
// reported as ErrConstraintViolation.
func (r *ReservationRepository) Insert(ctx context.Context, res *domain.Reservation) error {
	m := toReservationModel(res)
	now := time.Now().UTC()
	m.CreatedAt = now
	m.UpdatedAt = now

	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return classify(err)
	}
	*res = *toDomainReservation(m)
	return nil
}

func (r *ReservationRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Reservation, error) {
	var m reservationModel
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		return nil, classify(err)
	}
	return toDomainReservation(m), nil
}

func (r *ReservationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tx := r.db.WithContext(ctx).Delete(&reservationModel{}, "id = ?", id)
	if tx.Error != nil {
		return classify(tx.Error)
	}
	if tx.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteEndedBefore removes reservations whose end time is before cutoff.
func (r *ReservationRepository) DeleteEndedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	tx := r.db.WithContext(ctx).Where("end_time < ?", cutoff.UTC()).Delete(&reservationModel{})
	if tx.Error != nil {
		return 0, classify(tx.Error)
	}
	return tx.RowsAffected, nil
}
