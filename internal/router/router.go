// Package router wires the HTTP surface: public catalogue and booking
// routes, the admin back office behind JWT, and the Redis-backed
// middlewares in front of the hot endpoints.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/maelig/balade-reservation/internal/config"
	"github.com/maelig/balade-reservation/internal/handler"
	"github.com/maelig/balade-reservation/internal/middleware"
)

// Handlers collects the handler groups the router mounts.  All fields
// must be non-nil.
type Handlers struct {
	Auth        *handler.AuthHandler
	Public      *handler.PublicHandler
	Reservation *handler.ReservationHandler
	Question    *handler.QuestionHandler
	Admin       *handler.AdminHandler
}

// RegisterRoutes mounts every route on the Echo instance.  The public
// GET catalogue sits behind the Redis response cache, the public write
// endpoints behind the rate limiter, and the /v1/admin group behind
// JWT plus the ADMIN role gate.  rdb may be nil; both Redis
// middlewares then pass requests straight through.
func RegisterRoutes(e *echo.Echo, h Handlers, cfg config.Config, rdb *redis.Client) {
	e.GET("/healthz", handler.Health)

	e.POST("/v1/auth/login", h.Auth.Login)

	cache := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)
	e.GET("/v1/balades", h.Public.ListBalades, cache)
	e.GET("/v1/balades/prochaines", h.Public.ProchainesBalades, cache)
	e.GET("/v1/balades/:id", h.Public.GetBalade, cache)

	limit := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)
	e.POST("/v1/reservations", h.Reservation.Create, limit)
	e.POST("/v1/questions", h.Question.Create, limit)

	admin := e.Group("/v1/admin")
	admin.Use(middleware.JWTAuth(cfg.JWTSecret))
	admin.Use(middleware.RequireRole("ADMIN"))
	admin.GET("/reservations", h.Admin.ListReservations)
	admin.POST("/reservations/:id/accepter", h.Admin.AcceptReservation)
	admin.DELETE("/reservations/:id", h.Admin.CancelReservation)
	admin.PATCH("/reservations/:id/presence", h.Admin.SetPresence)
	admin.POST("/balades/corriger-places", h.Admin.RecountSeats)
}
