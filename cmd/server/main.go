package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"booking-api/internal/config"
	"booking-api/internal/handler"
	"booking-api/internal/mail"
	"booking-api/internal/middleware"
	"booking-api/internal/service"
	"booking-api/internal/store/postgres"
	"booking-api/internal/zoom"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET is required")
	}
	if !cfg.Zoom.IsValid() {
		log.Fatal("ZOOM_ACCOUNT_ID, ZOOM_CLIENT_ID and ZOOM_CLIENT_SECRET are required")
	}

	// database
	pool, err := pgxpool.New(context.Background(), cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer pool.Close()
	if err := pool.Ping(context.Background()); err != nil {
		log.Fatalf("db ping: %v", err)
	}
	log.Println("connected to postgres")

	// run migrations
	if migration, err := os.ReadFile("db/migrations/001_init.sql"); err != nil {
		log.Printf("migration file not found, skipping: %v", err)
	} else if _, err := pool.Exec(context.Background(), string(migration)); err != nil {
		log.Printf("migration warning: %v", err)
	} else {
		log.Println("migration applied")
	}

	st := postgres.New(pool)
	provider := zoom.NewClient(cfg.Zoom)
	notifier := mail.NewNotifier(mail.NewSMTPSender(cfg.SMTP))

	meetings := service.NewMeetingService(st, provider, notifier)
	bookings := service.NewBookingService(st, notifier)

	h := handler.New(st, meetings, bookings, cfg.JWTSecret)
	rl := middleware.NewRateLimiter(5, 10)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      h.Routes(rl),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("listening on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("http: %v", err)
		}
	}()

	// graceful shutdown
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	<-ch
	log.Println("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		srv.Close()
		log.Fatalf("shutdown: %v", err)
	}
}
