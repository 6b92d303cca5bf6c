package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // Echo web framework handles routing

	"github.com/iliyamo/room-reservation/internal/handler"    // handlers implement the endpoints
	"github.com/iliyamo/room-reservation/internal/middleware" // JWT authentication middleware
)

// RegisterRoutes wires every endpoint onto the provided Echo instance.
// Public reads (health, room browsing, public profiles, availability
// probes) carry no middleware beyond whatever is applied globally.
// Everything that writes requires a valid access token.
func RegisterRoutes(e *echo.Echo, a *handler.AuthHandler, u *handler.UserHandler, r *handler.RoomHandler, jwtSecret string) {
	e.GET("/health", handler.Health)

	// Registration, login and the availability probes issue or precede
	// credentials, so they stay unauthenticated.
	auth := e.Group("/auth")
	auth.POST("/register", a.Register)
	auth.POST("/login", a.Login)
	auth.GET("/checkEmail/:email", a.CheckEmail)
	auth.GET("/checkUsername/:username", a.CheckUsername)

	// Public browsing: anyone can list rooms, view one room, or look up
	// a user's public profile.
	e.GET("/rooms", r.List)
	e.GET("/rooms/:id", r.Get)
	e.GET("/users/:username", u.PublicProfile)

	// Guarded routes.  The JWT middleware rejects missing or invalid
	// tokens with 401 before any handler runs.
	guard := middleware.JWTAuth(jwtSecret)
	e.GET("/users/profile", u.Profile, guard)
	e.POST("/rooms", r.Create, guard)
	e.PUT("/rooms/:id", r.Update, guard)
	e.DELETE("/rooms/:id", r.Delete, guard)
	e.POST("/rooms/:id/like", r.Like, guard)
	e.POST("/rooms/:id/dislike", r.Dislike, guard)
	e.POST("/rooms/:id/reserve", r.Reserve, guard)
}
