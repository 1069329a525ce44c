package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/wastewatch/foodwaste-backend/internal/projects/domain"
)

const (
	projectEventChannelPrefix = "projects:events:" // Per-project channel: projects:events:{project_id}
	AllEventsChannel          = "projects:events"  // Every status change
)

// Causes of a status change.
const (
	CauseDerived   = "derived"   // automatic lifecycle rule
	CauseCascade   = "cascade"   // parent updated after a follow-up changed
	CauseFollowUp  = "follow_up" // parent resumed by a new follow-up
	CauseRequested = "requested" // caller patched the status
)

// StatusChange is published once per persisted status transition.
type StatusChange struct {
	ProjectID       string        `json:"project_id"`
	ParentProjectID *string       `json:"parent_project_id,omitempty"`
	From            domain.Status `json:"from"`
	To              domain.Status `json:"to"`
	Cause           string        `json:"cause"`
	RequestID       string        `json:"request_id,omitempty"`
	At              time.Time     `json:"at"`
}

// Publisher announces status changes to interested consumers.
type Publisher interface {
	PublishStatusChange(ctx context.Context, change StatusChange) error
}

// Nop discards every event.
type Nop struct{}

func (Nop) PublishStatusChange(context.Context, StatusChange) error { return nil }

// RedisPublisher publishes status changes on Redis Pub/Sub.
type RedisPublisher struct {
	client *redis.Client
}

// NewRedisPublisher creates a new RedisPublisher
func NewRedisPublisher(client *redis.Client) *RedisPublisher {
	return &RedisPublisher{client: client}
}

func (p *RedisPublisher) PublishStatusChange(ctx context.Context, change StatusChange) error {
	data, err := json.Marshal(change)
	if err != nil {
		return fmt.Errorf("failed to marshal status change: %w", err)
	}

	pipe := p.client.Pipeline()
	pipe.Publish(ctx, ProjectChannel(change.ProjectID), data)
	pipe.Publish(ctx, AllEventsChannel, data)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to publish status change: %w", err)
	}
	return nil
}

// ProjectChannel is the Pub/Sub channel carrying one project's changes.
func ProjectChannel(projectID string) string {
	return fmt.Sprintf("%s%s", projectEventChannelPrefix, projectID)
}
