package events

import (
	"context"
	"time"
)

const (
	TopicUsers = "user_events"
	TopicTrips = "trip_events"
)

const (
	UserRegistered = "user_registered"
	UserLoggedIn   = "user_logged_in"
	UserDeleted    = "user_deleted"
	TripCreated    = "trip_created"
	TripDeleted    = "trip_deleted"
	MemberJoined   = "member_joined"
	MemberLeft     = "member_left"
	MemberRemoved  = "member_removed"
	RoleChanged    = "member_role_changed"
)

type Event struct {
	Type   string    `json:"type"`
	UserID uint      `json:"user_id"`
	TripID uint      `json:"trip_id,omitempty"`
	Role   string    `json:"role,omitempty"`
	At     time.Time `json:"at"`
}

type Publisher interface {
	PublishEvent(ctx context.Context, topic, key string, event any) error
	Close() error
}

// Nop drops every event. Used when no brokers are configured.
type Nop struct{}

func (Nop) PublishEvent(context.Context, string, string, any) error { return nil }
func (Nop) Close() error                                            { return nil }
