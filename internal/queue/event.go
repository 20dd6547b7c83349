// Package queue defines message payloads exchanged over the message broker.
package queue

// Auth lifecycle event types published to the auth.events queue.
const (
	EventUserRegistered  = "user.registered"
	EventUserLogin       = "user.login"
	EventUserLogout      = "user.logout"
	EventPasswordChanged = "password.changed"
)

// AuthEvent is published after auth lifecycle transitions.  It carries
// enough information for downstream consumers to log, alert or feed
// analytics without querying the service.
type AuthEvent struct {
	Type       string `json:"type"`
	UserID     string `json:"user_id"`
	Email      string `json:"email"`
	Role       string `json:"role"`
	OccurredAt string `json:"occurred_at"`
}
