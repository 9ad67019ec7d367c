package service

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Event topics consumed by the downstream profile service.
const (
	TopicUserRegistered  = "user.registered"
	TopicUserDeleted     = "user.deleted"
	TopicUserRoleChanged = "user.role.changed"
)

// Role-change actions carried by UserRoleChangedEvent.
const (
	RoleActionAssigned = "ASSIGNED"
	RoleActionRemoved  = "REMOVED"
)

// UserRegisteredEvent is published when a new user registers. The profile
// service consumes it to create the downstream profile; delivery is
// at-least-once, so consumers treat profile creation as idempotent.
type UserRegisteredEvent struct {
	EventID      string   `json:"eventId"`
	EventType    string   `json:"eventType"`
	Timestamp    int64    `json:"timestamp"` // epoch millis
	UserID       string   `json:"userId"`
	Username     string   `json:"username"`
	Email        string   `json:"email"`
	FirstName    string   `json:"firstName"`
	LastName     string   `json:"lastName,omitempty"`
	CountryCode  string   `json:"countryCode"`
	ContactNo    string   `json:"contactNo"`
	Organization string   `json:"organization,omitempty"`
	Roles        []string `json:"roles"`
}

// UserDeletedEvent is published when a user is soft- or hard-deleted.
type UserDeletedEvent struct {
	EventID   string `json:"eventId"`
	EventType string `json:"eventType"`
	Timestamp int64  `json:"timestamp"`
	UserID    string `json:"userId"`
	Username  string `json:"username"`
	DeletedBy string `json:"deletedBy"`
}

// UserRoleChangedEvent is published when a role is assigned to or removed
// from a user.
type UserRoleChangedEvent struct {
	EventID   string `json:"eventId"`
	EventType string `json:"eventType"`
	Timestamp int64  `json:"timestamp"`
	UserID    string `json:"userId"`
	Username  string `json:"username"`
	RoleName  string `json:"roleName"`
	Action    string `json:"action"`
	ChangedBy string `json:"changedBy"`
}

// NewEventID returns a fresh event identifier.
func NewEventID() string {
	return uuid.NewString()
}

// EventTimestamp converts a time to the epoch-millisecond form events carry.
func EventTimestamp(t time.Time) int64 {
	return t.UnixMilli()
}

// EventPublisher publishes identity events for downstream consistency.
// Publishing is fire-and-forget from the caller's point of view: usecases
// log a failed publish and continue, they never fail the request over it.
// Messages are keyed by user ID so per-user ordering is preserved.
type EventPublisher interface {
	// PublishUserRegistered publishes a user.registered event.
	PublishUserRegistered(ctx context.Context, event *UserRegisteredEvent) error

	// PublishUserDeleted publishes a user.deleted event.
	PublishUserDeleted(ctx context.Context, event *UserDeletedEvent) error

	// PublishUserRoleChanged publishes a user.role.changed event.
	PublishUserRoleChanged(ctx context.Context, event *UserRoleChangedEvent) error

	// Close releases any resources held by the publisher.
	Close() error
}
