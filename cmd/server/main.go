package main

import (
	"context"
	"errors"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/maelig/balade-reservation/internal/config"
	"github.com/maelig/balade-reservation/internal/database"
	"github.com/maelig/balade-reservation/internal/handler"
	"github.com/maelig/balade-reservation/internal/inventory"
	"github.com/maelig/balade-reservation/internal/queue"
	"github.com/maelig/balade-reservation/internal/repository"
	"github.com/maelig/balade-reservation/internal/router"
	"github.com/maelig/balade-reservation/internal/utils"
	"github.com/maelig/balade-reservation/migrations"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer func() { _ = db.Close() }()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := migrations.Apply(ctx, db); err != nil {
		cancel()
		log.Fatalf("migrations: %v", err)
	}
	cancel()

	// Redis is optional: without it the rate limiter and the response
	// cache turn into pass-throughs.
	rdb := config.NewRedisClient()

	store := repository.NewStore(db)
	inv := inventory.New(store)
	admins := repository.NewAdminRepo(db)
	if err := bootstrapAdmin(admins, cfg); err != nil {
		log.Fatalf("admin bootstrap: %v", err)
	}

	// The mailer drains email.outbound in the background and reconnects
	// on its own; a dead broker never blocks a booking.
	go func() {
		if err := queue.StartEmailConsumer(); err != nil {
			log.Printf("email consumer stopped: %v", err)
		}
	}()

	e := echo.New()
	e.HideBanner = true
	router.RegisterRoutes(e, router.Handlers{
		Auth:        handler.NewAuthHandler(cfg, admins),
		Public:      handler.NewPublicHandler(inv),
		Reservation: handler.NewReservationHandler(inv),
		Question:    handler.NewQuestionHandler(),
		Admin:       handler.NewAdminHandler(inv),
	}, cfg, rdb)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}

// bootstrapAdmin seeds the back-office account from ADMIN_EMAIL and
// ADMIN_PASSWORD.  An account that already exists keeps its stored
// hash, so rotating the password means deleting the row first.  With
// ADMIN_EMAIL unset nothing happens; an existing database keeps its
// accounts.
func bootstrapAdmin(admins *repository.AdminRepo, cfg config.Config) error {
	email := strings.ToLower(strings.TrimSpace(os.Getenv("ADMIN_EMAIL")))
	if email == "" {
		return nil
	}
	pass := os.Getenv("ADMIN_PASSWORD")
	if pass == "" {
		return errors.New("ADMIN_EMAIL is set but ADMIN_PASSWORD is empty")
	}
	hash, err := utils.HashPassword(pass, cfg.BcryptCost)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return admins.Ensure(ctx, email, hash)
}
