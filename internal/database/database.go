package database

import (
	"fmt"
	"log"
	"strings"

	"gorm.io/driver/postgres"
	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"

	_ "modernc.org/sqlite"
)

// Names of the store-level guards on the reservations table. Repository code matches
// driver errors against them.
const (
	OverlapConstraint  = "reservations_no_overlap"
	IntervalConstraint = "reservations_valid_interval"
)

func Connect(dsn string) (*gorm.DB, error) {
	return Open(dsn, &gorm.Config{})
}

func Open(dsn string, cfg *gorm.Config) (*gorm.DB, error) {
	if IsPostgres(dsn) {
		log.Println("Connecting to PostgreSQL...")
		return gorm.Open(postgres.Open(dsn), cfg)
	}

	log.Println("Using SQLite for local development:", dsn)

	db, err := gorm.Open(
		gormsqlite.New(gormsqlite.Config{
			DriverName: "sqlite",
			DSN:        dsn,
		}),
		cfg,
	)
	if err != nil {
		return nil, err
	}

	// a single connection keeps in-memory databases alive and serialises writers
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)

	return db, nil
}

func IsPostgres(dsn string) bool {
	return strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://")
}

const postgresReservationGuards = `
DO $$
BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = '` + IntervalConstraint + `') THEN
    ALTER TABLE reservations
      ADD CONSTRAINT ` + IntervalConstraint + ` CHECK (start_time < end_time);
  END IF;
  IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = '` + OverlapConstraint + `') THEN
    ALTER TABLE reservations
      ADD CONSTRAINT ` + OverlapConstraint + `
      EXCLUDE USING gist (tstzrange(start_time, end_time, '[)') WITH &&);
  END IF;
END $$;
`

const sqliteReservationGuards = `
CREATE TRIGGER IF NOT EXISTS ` + OverlapConstraint + `
BEFORE INSERT ON reservations
BEGIN
  SELECT RAISE(ABORT, '` + IntervalConstraint + `')
  WHERE NEW.start_time >= NEW.end_time;
  SELECT RAISE(ABORT, '` + OverlapConstraint + `')
  WHERE EXISTS (
    SELECT 1 FROM reservations
    WHERE start_time < NEW.end_time AND end_time > NEW.start_time
  );
END;
`

// EnsureReservationGuards installs the atomic no-overlap guard for the current
// dialect. It must run after the reservations table exists and is idempotent.
func EnsureReservationGuards(db *gorm.DB) error {
	var stmt string
	switch name := db.Dialector.Name(); name {
	case "postgres":
		stmt = postgresReservationGuards
	case "sqlite":
		stmt = sqliteReservationGuards
	default:
		return fmt.Errorf("unsupported dialect %q", name)
	}

	if err := db.Exec(stmt).Error; err != nil {
		return fmt.Errorf("install reservation guards: %w", err)
	}
	return nil
}
