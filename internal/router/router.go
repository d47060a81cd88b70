// Package router defines how HTTP routes are registered for the API.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/movietown/movietown-api/internal/config"
	"github.com/movietown/movietown-api/internal/handler"
	"github.com/movietown/movietown-api/internal/middleware"
	"github.com/movietown/movietown-api/internal/model"
)

// RegisterRoutes registers routes that do not require authentication
// on the provided Echo instance.  Currently it exposes only a health
// check.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers all authentication-related routes.
// Unauthenticated operations live under /v1/auth.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)
	g.POST("/logout", a.Logout)
}

// RegisterPublic registers the unauthenticated browse endpoints: the
// movie and cinema catalogs, screening listings and per-screening seat
// occupancy.  GET responses are cached in Redis when a client is
// available; the occupancy endpoint is served uncached because the
// booking page polls it for freshness right before a booking attempt.
func RegisterPublic(e *echo.Echo, m *handler.MovieHandler, ci *handler.CinemaHandler, s *handler.ScreeningHandler, r *handler.ReservationHandler, rdb *redis.Client) {
	cache := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)
	e.GET("/v1/movies", m.List, cache)
	e.GET("/v1/movies/:id", m.Get, cache)
	e.GET("/v1/cinemas", ci.List, cache)
	e.GET("/v1/cinemas/:id", ci.Get, cache)
	e.GET("/v1/screenings", s.List, cache)
	e.GET("/v1/screenings/:id", s.Get, cache)
	e.GET("/v1/screenings/:id/seats", r.OccupiedSeats)
}

// RegisterUser registers endpoints available to any authenticated
// user: booking and cancelling seats, listing own reservations and
// editing the own profile.
func RegisterUser(e *echo.Echo, r *handler.ReservationHandler, u *handler.UserHandler, jwtSecret string) {
	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleUser, model.RoleAdmin),
	)
	g.POST("/reservations", r.Book)
	g.DELETE("/reservations/:id", r.Cancel)
	g.GET("/reservations/me", r.ListMine)
	g.GET("/users/me", u.Me)
	g.PUT("/users/me", u.UpdateMe)
}

// RegisterAdmin registers ADMIN-scoped endpoints: screening
// management and the user administration panel.
func RegisterAdmin(e *echo.Echo, s *handler.ScreeningHandler, u *handler.UserHandler, jwtSecret string) {
	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleAdmin),
	)
	g.POST("/screenings", s.Create)
	g.DELETE("/screenings/:id", s.Delete)
	g.GET("/users", u.ListAll)
	g.PUT("/users/:id", u.AdminUpdate)
}
