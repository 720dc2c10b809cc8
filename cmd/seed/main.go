package main

import (
	"context"
	"errors"
	"log"
	"time"

	"studiospace/internal/config"
	"studiospace/internal/database"
	"studiospace/internal/domain"
	"studiospace/internal/modules/auth"
	"studiospace/internal/modules/booking"
	jwtsvc "studiospace/internal/pkg/jwt"
	"studiospace/internal/repository"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("DB connection failed:", err)
	}

	log.Println("Running AutoMigrate...")
	if err := repository.AutoMigrate(db); err != nil {
		log.Fatal("AutoMigrate failed:", err)
	}

	log.Println("Cleaning old data...")
	db.Exec("DELETE FROM reservations")
	db.Exec("DELETE FROM users")

	ctx := context.Background()
	authService := auth.NewService(repository.NewUserRepository(db), jwtsvc.New(cfg.JWTSecret, cfg.JWTAccessTTL))
	bookingService := booking.NewService(repository.NewReservationRepository(db), nil, nil, nil, cfg.StoreTimeout)

	// ================== USERS ==================
	log.Println("Creating users...")

	if _, err := authService.Register(ctx, auth.RegisterInput{
		Email:    "admin@studiospace.local",
		Password: "admin123",
		Name:     "Studio Admin",
		Role:     domain.RoleAdmin,
	}); err != nil {
		log.Fatal("create admin:", err)
	}
	log.Println("Admin created: admin@studiospace.local / admin123")

	members := []*domain.User{}
	for _, m := range []struct{ email, name string }{
		{"asel@studiospace.local", "Asel"},
		{"bekzat@studiospace.local", "Bekzat"},
		{"dina@studiospace.local", "Dina"},
	} {
		u, err := authService.Register(ctx, auth.RegisterInput{
			Email:    m.email,
			Password: "member123",
			Name:     m.name,
			Role:     domain.RoleMember,
		})
		if err != nil {
			log.Fatalf("create member %s: %v", m.email, err)
		}
		members = append(members, u)
	}
	log.Println("Members created (password member123):", len(members))

	// ================== RESERVATIONS ==================
	log.Println("Creating reservations...")

	tomorrow := time.Now().UTC().Truncate(24*time.Hour).AddDate(0, 0, 1)
	slot := func(hour int) time.Time { return tomorrow.Add(time.Duration(hour) * time.Hour) }

	created := 0
	for i, s := range []struct {
		owner      int
		start, end int
	}{
		{0, 9, 11},
		{1, 11, 12}, // back-to-back with the first
		{2, 14, 17},
		{0, 17, 18},
		{1, 10, 12}, // overlaps, rejected
	} {
		_, err := bookingService.ProposeBooking(ctx, members[s.owner].ID, slot(s.start), slot(s.end))
		switch {
		case err == nil:
			created++
		case errors.Is(err, booking.ErrSlotUnavailable):
			log.Printf("reservation %d skipped: slot unavailable", i+1)
		default:
			log.Fatalf("reservation %d: %v", i+1, err)
		}
	}

	log.Printf("Seed completed: users=%d reservations=%d", len(members)+1, created)
}
