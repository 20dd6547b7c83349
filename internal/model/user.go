package model

import (
	"regexp"
	"strings"
	"time"
)

// Roles recognised by the authorization layer.  Every user carries exactly
// one of these values in its Role field and in the role claim of issued
// tokens.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// User is an application account held by the in-memory user store.  The
// Password field always contains a bcrypt hash, never plaintext.  The
// RefreshTokens slice holds SHA-256 hex digests of the refresh tokens that
// are currently valid for this user; only tokens present in the slice may be
// exchanged for a new pair.
type User struct {
	ID            string // immutable, assigned once at creation
	Name          string
	Email         string // unique across the store, stored lower-cased
	Password      string // bcrypt hash
	Age           int
	City          string
	Role          string // RoleUser or RoleAdmin
	IsActive      bool
	LastLogin     *time.Time // nil until the first successful login
	RefreshTokens []string   // hashes of active refresh tokens
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Validate checks the user's fields and returns one message per violated
// rule.  An empty slice means the record is acceptable.
func (u *User) Validate() []string {
	var errs []string
	if strings.TrimSpace(u.Name) == "" {
		errs = append(errs, "Name is required")
	}
	if strings.TrimSpace(u.Email) == "" {
		errs = append(errs, "Email is required")
	} else if !emailRe.MatchString(u.Email) {
		errs = append(errs, "Invalid email format")
	}
	if u.Age <= 0 {
		errs = append(errs, "Age must be a positive number")
	}
	if strings.TrimSpace(u.City) == "" {
		errs = append(errs, "City is required")
	}
	if u.Role != RoleUser && u.Role != RoleAdmin {
		errs = append(errs, "Invalid role. Must be user or admin")
	}
	return errs
}

// NormalizeEmail returns the canonical form of an email address used for
// storage and uniqueness checks.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// UserJSON is the full serialised view of a user.  The password hash is
// deliberately absent; no code path serialises it.
type UserJSON struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	Age       int        `json:"age"`
	City      string     `json:"city"`
	Role      string     `json:"role"`
	IsActive  bool       `json:"isActive"`
	LastLogin *time.Time `json:"lastLogin"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// PublicUserJSON is the reduced view shown to users other than the account
// owner or an admin.
type PublicUserJSON struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Age       int       `json:"age"`
	City      string    `json:"city"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

// JSON converts the user into its full response shape.
func (u *User) JSON() UserJSON {
	return UserJSON{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Age:       u.Age,
		City:      u.City,
		Role:      u.Role,
		IsActive:  u.IsActive,
		LastLogin: u.LastLogin,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// PublicJSON converts the user into its public response shape.
func (u *User) PublicJSON() PublicUserJSON {
	return PublicUserJSON{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Age:       u.Age,
		City:      u.City,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
	}
}
