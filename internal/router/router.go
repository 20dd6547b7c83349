package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/user-auth-service/internal/handler"
	"github.com/iliyamo/user-auth-service/internal/middleware"
	"github.com/iliyamo/user-auth-service/internal/store"
)

// RegisterRoutes registers routes that do not require authentication on the
// provided Echo instance.  Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth wires the authentication endpoints.  The credential endpoints
// (register, login, refresh) sit behind the rate limiter to slow down
// brute-force attempts; the session endpoints additionally require a valid
// access token.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, users *store.UserStore, secret string, limiter echo.MiddlewareFunc) {
	g := e.Group("/api/auth")
	if limiter != nil {
		g.Use(limiter)
	}
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)

	protected := g.Group("")
	protected.Use(middleware.Authenticate(secret, users))
	protected.POST("/logout", a.Logout)
	protected.GET("/profile", a.GetProfile)
	protected.PUT("/profile", a.UpdateProfile)
	protected.POST("/change-password", a.ChangePassword)
}

// RegisterUsers wires the user management endpoints.  Everything requires a
// session; most operations are admin-only, while reading and updating a
// single user is open to the record's owner as well.
func RegisterUsers(e *echo.Echo, h *handler.UserHandler, users *store.UserStore, secret string) {
	g := e.Group("/api/users")
	g.Use(middleware.Authenticate(secret, users))

	admin := g.Group("")
	admin.Use(middleware.RequireAdmin())
	admin.GET("", h.List)
	admin.GET("/stats", h.Stats)
	admin.POST("", h.Create)
	admin.DELETE("/:id", h.Delete)
	admin.POST("/:id/activate", h.Activate)
	admin.POST("/:id/deactivate", h.Deactivate)

	owned := g.Group("")
	owned.Use(middleware.RequireOwnershipOrAdmin("id"))
	owned.GET("/:id", h.GetByID)
	owned.PUT("/:id", h.Update)
}

// RegisterProducts wires the product catalog.  Reads are public with
// optional authentication (the response shape changes when a caller is
// logged in); category listings additionally go through the response cache
// since their output is identical for every caller.  Writes require a
// session.
func RegisterProducts(e *echo.Echo, h *handler.ProductHandler, users *store.UserStore, secret string, cache echo.MiddlewareFunc) {
	g := e.Group("/api/products")

	public := g.Group("")
	public.Use(middleware.OptionalAuth(secret, users))
	public.GET("", h.GetAll)
	public.GET("/:id", h.GetByID)

	cached := g.Group("")
	if cache != nil {
		cached.Use(cache)
	}
	cached.GET("/categories", h.Categories)
	cached.GET("/category/:category", h.ByCategory)

	protected := g.Group("")
	protected.Use(middleware.Authenticate(secret, users))
	protected.GET("/stats", h.Stats)
	protected.GET("/my", h.My)
	protected.POST("", h.Create)
	protected.PUT("/:id", h.Update)
	protected.DELETE("/:id", h.Delete)
}
