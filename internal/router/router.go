// Package router wires handlers and middleware onto the Echo instance.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/bluereserve/cafeteria-seat-reservation/internal/config"
	"github.com/bluereserve/cafeteria-seat-reservation/internal/handler"
	"github.com/bluereserve/cafeteria-seat-reservation/internal/middleware"
	"github.com/bluereserve/cafeteria-seat-reservation/internal/model"
)

// Handlers groups everything the router mounts.
type Handlers struct {
	Auth        *handler.AuthHandler
	Seats       *handler.SeatsHandler
	Reservation *handler.ReservationHandler
	Approver    *handler.ApproverHandler
}

// Register mounts all routes.  The public reservation surface sits at the
// root, unauthenticated; account management lives under /v1 behind JWT.
// rdb may be nil, which disables rate limiting and the response cache.
func Register(e *echo.Echo, cfg config.Config, h Handlers, rdb *redis.Client) {
	e.Validator = handler.NewRequestValidator()

	e.GET("/healthz", handler.Health)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	rate := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)
	cache := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)

	// Public reservation surface.  Only the immutable slot listing is
	// cacheable; the seat grid must always show the latest committed state,
	// so it bypasses the response cache entirely.
	e.GET("/slots", h.Seats.Slots, cache)
	e.GET("/seats", h.Seats.Grid)
	e.POST("/book_seat", h.Reservation.Book, rate)
	e.POST("/cancel_seat", h.Reservation.Cancel, rate)

	// Session endpoints.
	auth := e.Group("/v1/auth")
	auth.POST("/register", h.Auth.Register, rate)
	auth.POST("/login", h.Auth.Login, rate)
	auth.POST("/refresh", h.Auth.Refresh, rate)

	// Everything below requires a valid access token.
	v1 := e.Group("/v1", middleware.JWTAuth(cfg.JWTSecret))
	v1.GET("/me", h.Auth.Me)
	v1.POST("/auth/logout", h.Auth.Logout)

	approver := v1.Group("/approver", middleware.RequireRole(model.RoleApprover))
	approver.GET("/members", h.Approver.Members)
	approver.POST("/topup", h.Approver.TopUp)
}
