package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/user-auth-service/internal/config"
	"github.com/iliyamo/user-auth-service/internal/middleware"
	"github.com/iliyamo/user-auth-service/internal/model"
	"github.com/iliyamo/user-auth-service/internal/queue"
	queue_publisher "github.com/iliyamo/user-auth-service/internal/service"
	"github.com/iliyamo/user-auth-service/internal/store"
	"github.com/iliyamo/user-auth-service/internal/utils"
)

// AuthHandler bundles dependencies for the auth endpoints.
type AuthHandler struct {
	Cfg   config.Config
	Users *store.UserStore
}

func NewAuthHandler(cfg config.Config, users *store.UserStore) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Users: users}
}

// ----- DTOs -----

type registerReq struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Age      int    `json:"age"`
	City     string `json:"city"`
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshReq struct {
	RefreshToken string `json:"refreshToken"`
}

type changePasswordReq struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

type profileReq struct {
	Name     *string `json:"name"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
	Role     *string `json:"role"`
	Age      *int    `json:"age"`
	City     *string `json:"city"`
}

// authData is the success payload for register/login: the sanitized user and
// a fresh token pair.
type authData struct {
	User   model.UserJSON  `json:"user"`
	Tokens utils.TokenPair `json:"tokens"`
}

type tokensData struct {
	Tokens utils.TokenPair `json:"tokens"`
}

func (h *AuthHandler) accessTTL() time.Duration {
	return time.Duration(h.Cfg.AccessTTLMin) * time.Minute
}

func (h *AuthHandler) refreshTTL() time.Duration {
	return time.Duration(h.Cfg.RefreshTTLDays) * 24 * time.Hour
}

// issueSession mints a token pair for the user and records the refresh token
// in their active list.
func (h *AuthHandler) issueSession(u *model.User) (utils.TokenPair, error) {
	pair, err := utils.NewTokenPair(h.Cfg.JWTSecret, u, h.accessTTL(), h.refreshTTL())
	if err != nil {
		return utils.TokenPair{}, err
	}
	h.Users.AddRefreshToken(u.ID, utils.HashRefresh(pair.RefreshToken))
	return pair, nil
}

// publish sends an auth lifecycle event; failures are ignored since events
// are best-effort.
func (h *AuthHandler) publish(eventType string, u *model.User) {
	_ = queue_publisher.PublishAuthEvent(context.Background(), queue.AuthEvent{
		Type:       eventType,
		UserID:     u.ID,
		Email:      u.Email,
		Role:       u.Role,
		OccurredAt: time.Now().UTC().Format(time.RFC3339),
	})
}

// Register creates an account and returns it with a first token pair.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "Invalid request body")
	}

	u := &model.User{
		Name:     req.Name,
		Email:    model.NormalizeEmail(req.Email),
		Password: req.Password,
		Age:      req.Age,
		City:     req.City,
		Role:     model.RoleUser, // self-registration never grants admin
		IsActive: true,
	}
	if errs := u.Validate(); len(errs) > 0 {
		return fail(c, http.StatusBadRequest, "Validation failed", errs...)
	}
	if errs := utils.ValidatePasswordStrength(req.Password); len(errs) > 0 {
		return fail(c, http.StatusBadRequest, "Password validation failed", errs...)
	}

	created, err := h.Users.Create(u)
	if err != nil {
		if errors.Is(err, store.ErrEmailExists) {
			return fail(c, http.StatusConflict, "Email already exists")
		}
		return fail(c, http.StatusInternalServerError, "Error registering user")
	}

	tokens, err := h.issueSession(created)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "Error registering user")
	}
	h.Users.UpdateLastLogin(created.ID)
	h.publish(queue.EventUserRegistered, created)

	fresh := h.Users.FindByID(created.ID)
	return ok(c, http.StatusCreated, "User registered successfully", authData{User: fresh.JSON(), Tokens: tokens})
}

// Login verifies credentials and starts a new session.  The failure response
// is identical for unknown email, wrong password and deactivated account so
// the endpoint cannot be used to enumerate accounts.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "Invalid request body")
	}
	if req.Email == "" || req.Password == "" {
		return fail(c, http.StatusBadRequest, "Email and password are required")
	}

	u := h.Users.Authenticate(req.Email, req.Password)
	if u == nil {
		return fail(c, http.StatusUnauthorized, "Invalid credentials")
	}

	tokens, err := h.issueSession(u)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "Error during login")
	}
	h.Users.UpdateLastLogin(u.ID)
	h.publish(queue.EventUserLogin, u)

	fresh := h.Users.FindByID(u.ID)
	return ok(c, http.StatusOK, "Login successful", authData{User: fresh.JSON(), Tokens: tokens})
}

// Refresh exchanges a live refresh token for a new pair.  The presented
// token is rotated out atomically: a second exchange of the same token fails
// even if it has not expired yet.
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshReq
	if err := c.Bind(&req); err != nil || req.RefreshToken == "" {
		return fail(c, http.StatusBadRequest, "Refresh token is required")
	}

	claims, err := utils.VerifyToken(h.Cfg.JWTSecret, req.RefreshToken)
	if err != nil {
		if errors.Is(err, utils.ErrTokenExpired) {
			return fail(c, http.StatusUnauthorized, "Refresh token has expired")
		}
		return fail(c, http.StatusUnauthorized, "Invalid refresh token")
	}

	u := h.Users.FindByID(claims.UserID)
	if u == nil {
		return fail(c, http.StatusUnauthorized, "User not found")
	}
	if !u.IsActive {
		return fail(c, http.StatusUnauthorized, "User account is deactivated")
	}

	tokens, err := utils.NewTokenPair(h.Cfg.JWTSecret, u, h.accessTTL(), h.refreshTTL())
	if err != nil {
		return fail(c, http.StatusInternalServerError, "Error refreshing token")
	}
	// Swap old for new in one step; fails when the old token was already
	// rotated or revoked by logout, which blocks replay of a leaked token.
	oldHash := utils.HashRefresh(req.RefreshToken)
	if err := h.Users.RotateRefreshToken(u.ID, oldHash, utils.HashRefresh(tokens.RefreshToken)); err != nil {
		return fail(c, http.StatusUnauthorized, "Invalid refresh token")
	}

	return ok(c, http.StatusOK, "Token refreshed successfully", tokensData{Tokens: tokens})
}

// Logout ends the current session, or every session when no refresh token is
// supplied in the body.  A body that is present but unparseable is rejected:
// treating it as empty would turn a single-session logout into a revocation
// of every device.
func (h *AuthHandler) Logout(c echo.Context) error {
	u, _ := middleware.CurrentUser(c)

	var req refreshReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "Invalid request body")
	}

	if req.RefreshToken != "" {
		h.Users.RemoveRefreshToken(u.ID, utils.HashRefresh(req.RefreshToken))
	} else {
		h.Users.ClearRefreshTokens(u.ID)
	}
	h.publish(queue.EventUserLogout, u)
	return ok(c, http.StatusOK, "Logout successful", nil)
}

// GetProfile returns the authenticated user's own record.
func (h *AuthHandler) GetProfile(c echo.Context) error {
	u, _ := middleware.CurrentUser(c)
	return c.JSON(http.StatusOK, okResp{Success: true, Data: u.JSON()})
}

// UpdateProfile lets a user edit their own record.  Passwords and roles are
// never editable here: passwords go through the change-password endpoint,
// roles only through the admin user management routes.
func (h *AuthHandler) UpdateProfile(c echo.Context) error {
	u, _ := middleware.CurrentUser(c)

	var req profileReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "Invalid request body")
	}
	if req.Password != nil {
		return fail(c, http.StatusBadRequest, "Use change password endpoint to update password")
	}
	if req.Role != nil {
		return fail(c, http.StatusBadRequest, "Role cannot be changed through profile update")
	}
	if req.Email != nil && h.Users.EmailExists(*req.Email, u.ID) {
		return fail(c, http.StatusConflict, "Email already exists")
	}

	merged := *u
	if req.Name != nil {
		merged.Name = *req.Name
	}
	if req.Email != nil {
		merged.Email = model.NormalizeEmail(*req.Email)
	}
	if req.Age != nil {
		merged.Age = *req.Age
	}
	if req.City != nil {
		merged.City = *req.City
	}
	if errs := merged.Validate(); len(errs) > 0 {
		return fail(c, http.StatusBadRequest, "Validation failed", errs...)
	}

	updated, err := h.Users.Update(u.ID, store.UserPatch{
		Name:  req.Name,
		Email: req.Email,
		Age:   req.Age,
		City:  req.City,
	})
	if errors.Is(err, store.ErrEmailExists) {
		return fail(c, http.StatusConflict, "Email already exists")
	}
	if err != nil {
		return fail(c, http.StatusNotFound, "User not found")
	}
	return ok(c, http.StatusOK, "Profile updated successfully", updated.JSON())
}

// ChangePassword re-hashes the password and revokes every refresh token for
// the user: a password change is a trust boundary event, so all existing
// sessions must re-authenticate.
func (h *AuthHandler) ChangePassword(c echo.Context) error {
	u, _ := middleware.CurrentUser(c)

	var req changePasswordReq
	if err := c.Bind(&req); err != nil || req.CurrentPassword == "" || req.NewPassword == "" {
		return fail(c, http.StatusBadRequest, "Current password and new password are required")
	}
	if errs := utils.ValidatePasswordStrength(req.NewPassword); len(errs) > 0 {
		return fail(c, http.StatusBadRequest, "Password validation failed", errs...)
	}
	if !utils.VerifyPassword(u.Password, req.CurrentPassword) {
		return fail(c, http.StatusUnauthorized, "Current password is incorrect")
	}

	if _, err := h.Users.Update(u.ID, store.UserPatch{Password: &req.NewPassword}); err != nil {
		return fail(c, http.StatusInternalServerError, "Error changing password")
	}
	h.Users.ClearRefreshTokens(u.ID)
	h.publish(queue.EventPasswordChanged, u)

	return ok(c, http.StatusOK, "Password changed successfully. Please login again.", nil)
}
