package utils // package utils provides helper functions for token creation and hashing

import (
	"crypto/sha256" // SHA-256 hashing for stored refresh tokens
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5" // JWT library for creating signed tokens

	"github.com/iliyamo/user-auth-service/internal/model"
)

// Verification failures are reported through one of these two sentinels so
// callers can tell an expired token (redirect to refresh) apart from a
// malformed or badly signed one (hard failure).
var (
	ErrTokenExpired = errors.New("token expired")
	ErrTokenInvalid = errors.New("invalid token")
)

// Claims is the payload embedded in both access and refresh tokens.  The two
// kinds share a shape and a signing key; they differ only in lifetime, and
// refresh tokens are additionally tracked server-side per user.
type Claims struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// TokenPair bundles the two tokens handed to a client after registration,
// login or refresh.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// NewToken builds and signs an HS256 JWT for a user with the given lifetime.
// The signing secret is process-wide configuration; it is never rotated at
// runtime.
func NewToken(secret string, u *model.User, ttl time.Duration) (string, error) {
	now := time.Now().UTC()
	claims := Claims{
		UserID: u.ID,
		Email:  u.Email,
		Role:   u.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(secret))
}

// NewTokenPair signs an access and a refresh token for the user.  The two
// lifetimes are independent configuration values; access shorter than
// refresh is operator policy and is not enforced here.
func NewTokenPair(secret string, u *model.User, accessTTL, refreshTTL time.Duration) (TokenPair, error) {
	access, err := NewToken(secret, u, accessTTL)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := NewToken(secret, u, refreshTTL)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// VerifyToken parses and validates a signed token, returning its claims.  It
// accepts only HMAC-signed tokens; any other signing method is rejected.
// Expired tokens yield ErrTokenExpired, every other failure ErrTokenInvalid.
func VerifyToken(secret, raw string) (*Claims, error) {
	tok, err := jwt.ParseWithClaims(raw, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrTokenInvalid
		}
		return []byte(secret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}
	claims, ok := tok.Claims.(*Claims)
	if !ok || !tok.Valid {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}

// ExtractFromHeader pulls the raw token out of an Authorization header.  The
// header must use the exact "Bearer " scheme; anything else yields an empty
// string rather than an error, since a missing token is an expected case.
func ExtractFromHeader(header string) string {
	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimPrefix(header, "Bearer ")
}

// HashRefresh returns the SHA-256 hash of a refresh token as a hex string.
// Only hashes are kept in the user's active-token list, so a leaked copy of
// process memory does not directly yield usable refresh tokens.
func HashRefresh(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
