package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/user-auth-service/internal/middleware"
	"github.com/iliyamo/user-auth-service/internal/model"
	"github.com/iliyamo/user-auth-service/internal/store"
)

// UserHandler implements the admin user management endpoints.
type UserHandler struct {
	Users *store.UserStore
}

func NewUserHandler(users *store.UserStore) *UserHandler {
	return &UserHandler{Users: users}
}

type createUserReq struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Age      int    `json:"age"`
	City     string `json:"city"`
	Role     string `json:"role"`
	IsActive *bool  `json:"isActive"`
}

type updateUserReq struct {
	Name     *string `json:"name"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
	Age      *int    `json:"age"`
	City     *string `json:"city"`
	Role     *string `json:"role"`
	IsActive *bool   `json:"isActive"`
}

// userStats aggregates directory-wide numbers for the admin dashboard.
type userStats struct {
	TotalUsers   int            `json:"totalUsers"`
	ActiveUsers  int            `json:"activeUsers"`
	AdminUsers   int            `json:"adminUsers"`
	RegularUsers int            `json:"regularUsers"`
	AverageAge   float64        `json:"averageAge"`
	Cities       int            `json:"cities"`
	UsersByCity  map[string]int `json:"usersByCity"`
	RecentLogins int            `json:"recentLogins"`
}

// List returns every user in public form (admin only).
func (h *UserHandler) List(c echo.Context) error {
	users := h.Users.FindAll()
	out := make([]model.PublicUserJSON, 0, len(users))
	for _, u := range users {
		out = append(out, u.PublicJSON())
	}
	return okList(c, len(out), out)
}

// GetByID returns one user.  The owner and admins see the full record,
// anyone else the public form.
func (h *UserHandler) GetByID(c echo.Context) error {
	id := c.Param("id")
	u := h.Users.FindByID(id)
	if u == nil {
		return fail(c, http.StatusNotFound, "User not found")
	}
	principal, _ := middleware.CurrentUser(c)
	if principal.Role == model.RoleAdmin || principal.ID == id {
		return c.JSON(http.StatusOK, okResp{Success: true, Data: u.JSON()})
	}
	return c.JSON(http.StatusOK, okResp{Success: true, Data: u.PublicJSON()})
}

// Create adds a user with an arbitrary role (admin only).
func (h *UserHandler) Create(c echo.Context) error {
	var req createUserReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "Invalid request body")
	}
	role := req.Role
	if role == "" {
		role = model.RoleUser
	}
	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}
	u := &model.User{
		Name:     req.Name,
		Email:    model.NormalizeEmail(req.Email),
		Password: req.Password,
		Age:      req.Age,
		City:     req.City,
		Role:     role,
		IsActive: active,
	}
	if errs := u.Validate(); len(errs) > 0 {
		return fail(c, http.StatusBadRequest, "Validation failed", errs...)
	}
	created, err := h.Users.Create(u)
	if err != nil {
		if errors.Is(err, store.ErrEmailExists) {
			return fail(c, http.StatusConflict, "Email already exists")
		}
		return fail(c, http.StatusInternalServerError, "Error creating user")
	}
	return ok(c, http.StatusCreated, "User created successfully", created.JSON())
}

// Update edits a user (admin or owner).  Role and active-flag changes are
// reserved for admins even when the owner is editing their own record.
func (h *UserHandler) Update(c echo.Context) error {
	id := c.Param("id")
	existing := h.Users.FindByID(id)
	if existing == nil {
		return fail(c, http.StatusNotFound, "User not found")
	}

	var req updateUserReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "Invalid request body")
	}
	principal, _ := middleware.CurrentUser(c)
	if req.Role != nil && principal.Role != model.RoleAdmin {
		return fail(c, http.StatusForbidden, "Only admin can change user role")
	}
	if req.IsActive != nil && principal.Role != model.RoleAdmin {
		return fail(c, http.StatusForbidden, "Only admin can activate/deactivate users")
	}

	merged := *existing
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
	if req.Role != nil {
		merged.Role = *req.Role
	}
	if errs := merged.Validate(); len(errs) > 0 {
		return fail(c, http.StatusBadRequest, "Validation failed", errs...)
	}
	if req.Email != nil && h.Users.EmailExists(*req.Email, id) {
		return fail(c, http.StatusConflict, "Email already exists")
	}

	updated, err := h.Users.Update(id, store.UserPatch{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Age:      req.Age,
		City:     req.City,
		Role:     req.Role,
		IsActive: req.IsActive,
	})
	if errors.Is(err, store.ErrEmailExists) {
		return fail(c, http.StatusConflict, "Email already exists")
	}
	if err != nil {
		return fail(c, http.StatusNotFound, "User not found")
	}
	return ok(c, http.StatusOK, "User updated successfully", updated.JSON())
}

// Delete removes a user (admin only).  Admins cannot delete themselves.
func (h *UserHandler) Delete(c echo.Context) error {
	id := c.Param("id")
	principal, _ := middleware.CurrentUser(c)
	if principal.ID == id {
		return fail(c, http.StatusBadRequest, "Cannot delete your own account")
	}
	deleted := h.Users.Delete(id)
	if deleted == nil {
		return fail(c, http.StatusNotFound, "User not found")
	}
	return ok(c, http.StatusOK, "User deleted successfully", deleted.JSON())
}

// Stats returns directory-wide aggregates (admin only).
func (h *UserHandler) Stats(c echo.Context) error {
	users := h.Users.FindAll()
	stats := userStats{
		TotalUsers:   len(users),
		ActiveUsers:  h.Users.ActiveCount(),
		AdminUsers:   len(h.Users.FindByRole(model.RoleAdmin)),
		RegularUsers: len(h.Users.FindByRole(model.RoleUser)),
		UsersByCity:  make(map[string]int),
	}
	ageSum := 0
	for _, u := range users {
		ageSum += u.Age
		stats.UsersByCity[u.City]++
		if u.LastLogin != nil {
			stats.RecentLogins++
		}
	}
	if len(users) > 0 {
		stats.AverageAge = float64(ageSum) / float64(len(users))
	}
	stats.Cities = len(stats.UsersByCity)
	return c.JSON(http.StatusOK, okResp{Success: true, Data: stats})
}

// Activate re-enables a deactivated account (admin only).
func (h *UserHandler) Activate(c echo.Context) error {
	id := c.Param("id")
	if h.Users.FindByID(id) == nil {
		return fail(c, http.StatusNotFound, "User not found")
	}
	active := true
	updated, err := h.Users.Update(id, store.UserPatch{IsActive: &active})
	if err != nil {
		return fail(c, http.StatusNotFound, "User not found")
	}
	return ok(c, http.StatusOK, "User activated successfully", updated.JSON())
}

// Deactivate disables an account and revokes its refresh tokens so existing
// sessions die with it (admin only, not on yourself).
func (h *UserHandler) Deactivate(c echo.Context) error {
	id := c.Param("id")
	principal, _ := middleware.CurrentUser(c)
	if principal.ID == id {
		return fail(c, http.StatusBadRequest, "Cannot deactivate your own account")
	}
	if h.Users.FindByID(id) == nil {
		return fail(c, http.StatusNotFound, "User not found")
	}
	inactive := false
	updated, err := h.Users.Update(id, store.UserPatch{IsActive: &inactive})
	if err != nil {
		return fail(c, http.StatusNotFound, "User not found")
	}
	h.Users.ClearRefreshTokens(id)
	return ok(c, http.StatusOK, "User deactivated successfully", updated.JSON())
}
