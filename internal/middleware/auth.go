package middleware // middleware provides shared request processing for handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/user-auth-service/internal/model"
	"github.com/iliyamo/user-auth-service/internal/store"
	"github.com/iliyamo/user-auth-service/internal/utils"
)

// Context keys under which the authenticated principal is stored.  Handlers
// read the full user via CurrentUser; user_id and role are also stored as
// plain strings for middleware that only needs identity (rate limiting).
const (
	ctxUser   = "user"
	ctxUserID = "user_id"
	ctxRole   = "role"
)

func reject(c echo.Context, code int, msg string) error {
	return c.JSON(code, echo.Map{"success": false, "message": msg})
}

// CurrentUser returns the principal attached by Authenticate or
// OptionalAuth.  The second return value is false when the request is
// anonymous.
func CurrentUser(c echo.Context) (*model.User, bool) {
	u, ok := c.Get(ctxUser).(*model.User)
	return u, ok
}

// Authenticate returns an Echo middleware that validates a Bearer access
// token and loads the matching user into the request context.  A token that
// verifies cryptographically is still rejected when its user has been
// deleted or deactivated since issuance, so revocation takes effect before
// the token expires.  Expired tokens get a distinct message so clients know
// to call refresh instead of re-prompting for credentials.
func Authenticate(secret string, users *store.UserStore) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw := utils.ExtractFromHeader(c.Request().Header.Get("Authorization"))
			if raw == "" {
				return reject(c, http.StatusUnauthorized, "Access token required")
			}
			claims, err := utils.VerifyToken(secret, raw)
			if err != nil {
				if errors.Is(err, utils.ErrTokenExpired) {
					return reject(c, http.StatusUnauthorized, "Token has expired")
				}
				return reject(c, http.StatusUnauthorized, "Invalid token")
			}
			u := users.FindByID(claims.UserID)
			if u == nil {
				return reject(c, http.StatusUnauthorized, "User not found")
			}
			if !u.IsActive {
				return reject(c, http.StatusUnauthorized, "User account is deactivated")
			}
			c.Set(ctxUser, u)
			c.Set(ctxUserID, u.ID)
			c.Set(ctxRole, u.Role)
			return next(c)
		}
	}
}

// RequireAdmin aborts with 403 unless the principal holds the admin role.
// It assumes Authenticate ran earlier in the chain.
func RequireAdmin() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			u, ok := CurrentUser(c)
			if !ok || u.Role != model.RoleAdmin {
				return reject(c, http.StatusForbidden, "Admin access required")
			}
			return next(c)
		}
	}
}

// RequireOwnershipOrAdmin aborts with 403 unless the principal is an admin
// or its id equals the route parameter naming the target user.
func RequireOwnershipOrAdmin(param string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			u, ok := CurrentUser(c)
			if !ok {
				return reject(c, http.StatusUnauthorized, "Access token required")
			}
			if u.Role == model.RoleAdmin || u.ID == c.Param(param) {
				return next(c)
			}
			return reject(c, http.StatusForbidden, "Access denied. You can only access your own resources.")
		}
	}
}

// OptionalAuth performs the same extraction as Authenticate but never
// rejects: on any failure (missing header, invalid or expired token,
// unknown or inactive user) the request simply proceeds anonymously.
// Malformed tokens are swallowed identically to absent ones.
func OptionalAuth(secret string, users *store.UserStore) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw := utils.ExtractFromHeader(c.Request().Header.Get("Authorization"))
			if raw == "" {
				return next(c)
			}
			claims, err := utils.VerifyToken(secret, raw)
			if err != nil {
				return next(c)
			}
			u := users.FindByID(claims.UserID)
			if u == nil || !u.IsActive {
				return next(c)
			}
			c.Set(ctxUser, u)
			c.Set(ctxUserID, u.ID)
			c.Set(ctxRole, u.Role)
			return next(c)
		}
	}
}
