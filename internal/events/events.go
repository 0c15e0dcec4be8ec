// Package events emits domain events to a topic-partitioned log. Publishing
// is fire-and-forget relative to the HTTP response: mutations complete and
// respond regardless of publish success, failures are logged and never
// retried within the request.
package events

import (
	"context"
	"time"
)

// One topic per domain-event family.
const (
	TopicUserEvents    = "user-events"
	TopicProjectEvents = "project-events"
	TopicTaskEvents    = "task-events"
)

// Event types carried on the topics above.
const (
	TypeUserRegistered = "user.registered"
	TypeUserLoggedIn   = "user.logged_in"
	TypeProjectCreated = "project.created"
	TypeProjectUpdated = "project.updated"
	TypeProjectDeleted = "project.deleted"
	TypeTaskCreated    = "task.created"
	TypeTaskUpdated    = "task.updated"
	TypeTaskDeleted    = "task.deleted"
)

// Event is the immutable payload appended to the log. Timestamp is captured
// at emission time and rendered as ISO-8601.
type Event struct {
	Type       string    `json:"type"`
	EntityID   string    `json:"entity_id"`
	EntityName string    `json:"entity_name,omitempty"`
	ActorID    string    `json:"actor_id"`
	TenantID   string    `json:"tenant_id,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

// Publisher appends events to a topic. Implementations must be safe for
// concurrent use; one producer connection is shared across requests.
type Publisher interface {
	Publish(ctx context.Context, topic string, event Event) error
	Close()
}
