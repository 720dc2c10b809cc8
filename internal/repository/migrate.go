package repository

import (
	"gorm.io/gorm"

	"studiospace/internal/database"
)

// AutoMigrate creates the users and reservations tables and installs the
// reservation overlap guard.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&userModel{}, &reservationModel{}); err != nil {
		return err
	}
	return database.EnsureReservationGuards(db)
}
