// Package router wires HTTP routes to their handlers and middleware.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/court-reservation/internal/handler"
	"github.com/iliyamo/court-reservation/internal/middleware"
)

// RegisterRoutes registers routes that do not require authentication.
// Currently the health check and the public court catalog: guests can
// browse courts and a court's day schedule before signing up.
func RegisterRoutes(e *echo.Echo, courts *handler.CourtHandler, reservations *handler.ReservationHandler) {
	e.GET("/healthz", handler.Health)

	e.GET("/v1/courts", courts.List)
	e.GET("/v1/courts/:id", courts.Get)
	e.GET("/v1/courts/:id/reservations", reservations.ListByCourtDate)
}

// RegisterAuth registers the authentication endpoints. Register, login,
// refresh and logout live under /v1/auth and need no session; /v1/me
// sits behind the JWT middleware.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)
	g.POST("/logout", a.Logout)

	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(jwtSecret))
	auth.Use(middleware.RequireRole("ADMIN", "CUSTOMER"))
	auth.GET("/me", a.Me)
}

// RegisterBooking registers the reservation and payment endpoints.
// limiter is the Redis token bucket and guards the slot-taking writes;
// pure reads go unthrottled. Admin-only routes carry an extra role
// guard.
func RegisterBooking(e *echo.Echo, courts *handler.CourtHandler, reservations *handler.ReservationHandler, payments *handler.PaymentHandler, jwtSecret string, limiter echo.MiddlewareFunc) {
	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(jwtSecret))
	auth.Use(middleware.RequireRole("ADMIN", "CUSTOMER"))

	auth.POST("/reservations", reservations.Create, limiter)
	auth.GET("/reservations/mine", reservations.Mine)
	auth.GET("/reservations/:id", reservations.Detail)
	auth.PUT("/reservations/:id", reservations.Edit, limiter)
	auth.POST("/reservations/:id/cancel", reservations.Cancel)
	auth.POST("/reservations/:id/reactivate", reservations.Reactivate, limiter)
	auth.POST("/reservations/:id/payments", payments.Confirm, limiter)
	auth.GET("/reservations/:id/invoice", payments.Invoice)

	admin := e.Group("/v1")
	admin.Use(middleware.JWTAuth(jwtSecret))
	admin.Use(middleware.RequireRole("ADMIN"))

	admin.POST("/courts", courts.Create)
	admin.PUT("/courts/:id", courts.Update)
	admin.DELETE("/courts/:id", courts.Delete)
	admin.DELETE("/reservations/:id", reservations.Delete)
}
