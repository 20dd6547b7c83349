// Package store holds the in-memory data stores for users and products.
// These sentinel values let handlers distinguish failure scenarios without
// inspecting error strings.
package store

import "errors"

// ErrEmailExists is returned when creating or updating a user would violate
// email uniqueness. Handlers translate it into an HTTP 409 response.
var ErrEmailExists = errors.New("email already exists")

// ErrNotFound is returned when a record cannot be located by id.  Handlers
// translate it into an HTTP 404 response.
var ErrNotFound = errors.New("not found")

// ErrTokenNotFound is returned by refresh-token rotation when the presented
// token is no longer in the user's active list, either because it was
// rotated already or revoked by logout.
var ErrTokenNotFound = errors.New("refresh token not found")
