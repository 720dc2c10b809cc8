package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"studiospace/internal/config"
	"studiospace/internal/database"
	"studiospace/internal/events"
	"studiospace/internal/middleware"
	"studiospace/internal/modules/auth"
	"studiospace/internal/modules/booking"
	"studiospace/internal/modules/realtime"
	jwtsvc "studiospace/internal/pkg/jwt"
	"studiospace/internal/pkg/metrics"
	"studiospace/internal/pkg/response"
	"studiospace/internal/repository"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	if cfg.IsProd() {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db connect failed: %v", err)
	}
	if err := repository.AutoMigrate(db); err != nil {
		log.Fatalf("migrate failed: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("db handle: %v", err)
	}
	defer sqlDB.Close()

	m := metrics.New()
	j := jwtsvc.New(cfg.JWTSecret, cfg.JWTAccessTTL)

	hub := realtime.NewHub()
	defer hub.Close()
	publishers := events.Fanout{hub}
	if len(cfg.KafkaBrokers) > 0 {
		k, err := events.NewKafka(cfg.KafkaBrokers, cfg.KafkaTopic)
		if err != nil {
			log.Fatalf("kafka: %v", err)
		}
		defer k.Close()
		publishers = append(publishers, k)
		log.Printf("kafka publisher enabled: brokers=%v topic=%s", cfg.KafkaBrokers, cfg.KafkaTopic)
	}

	dispatcher := events.NewAsync(publishers, cfg.EventQueueSize, cfg.EventTimeout)
	defer dispatcher.Close()

	userRepo := repository.NewUserRepository(db)
	reservationRepo := repository.NewReservationRepository(db)

	authHandler := auth.NewHandler(auth.NewService(userRepo, j))
	bookingService := booking.NewService(reservationRepo, nil, dispatcher, m, cfg.StoreTimeout)
	bookingHandler := booking.NewHandler(bookingService)
	wsHandler := realtime.NewHandler(hub, j, cfg.CORSAllowedOrigins)

	r := gin.New()
	r.Use(gin.Logger())
	r.Use(middleware.ErrorLogger())
	r.Use(middleware.CORS(cfg.CORSAllowedOrigins))
	r.Use(middleware.Metrics(m))

	r.GET("/healthz", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), cfg.StoreTimeout)
		defer cancel()
		if err := sqlDB.PingContext(ctx); err != nil {
			_ = c.Error(err)
			response.Error(c, http.StatusServiceUnavailable, "STORE_UNAVAILABLE", "database is unreachable")
			return
		}
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(m.Handler()))

	v1 := r.Group("/api/v1")
	{
		authHandler.RegisterPublicRoutes(v1)
		wsHandler.RegisterRoutes(v1)

		protected := v1.Group("")
		protected.Use(middleware.JWTAuth(j))
		{
			authHandler.RegisterProtectedRoutes(protected)
			bookingHandler.RegisterRoutes(protected)
		}
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Printf("http server listening on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("http server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("http shutdown: %v", err)
	}
}
