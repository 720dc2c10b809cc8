package main

import (
	"context"
	"log"
	"time"

	"studiospace/internal/config"
	"studiospace/internal/database"
	"studiospace/internal/repository"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db connect failed: %v", err)
	}

	cutoff := time.Now().UTC().Add(-cfg.BookingRetention)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	n, err := repository.NewReservationRepository(db).DeleteEndedBefore(ctx, cutoff)
	if err != nil {
		log.Fatalf("cleanup reservations failed: %v", err)
	}

	log.Printf("booking cleanup completed: reservations=%d cutoff=%s", n, cutoff.Format(time.RFC3339))
}
