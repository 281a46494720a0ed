package event

import (
	"context"
	"time"
)

// Collection names a dataset a view can subscribe to.
type Collection string

const (
	Users    Collection = "users"
	Posts    Collection = "posts"
	Comments Collection = "comments"
)

type Action string

const (
	Created Action = "created"
	Deleted Action = "deleted"
)

// Change describes one committed mutation of one entity.
type Change struct {
	Collection Collection     `json:"collection"`
	Action     Action         `json:"action"`
	ID         string         `json:"id"`
	At         time.Time      `json:"at"`
	Data       map[string]any `json:"data,omitempty"`
}

// RoutingKey returns "<collection>.<action>", e.g. "posts.deleted".
func (c Change) RoutingKey() string {
	return string(c.Collection) + "." + string(c.Action)
}

// Affected lists the collections whose views go stale after c.
// Posts and comments feed the counts shown in the user list.
func (c Change) Affected() []Collection {
	switch c.Collection {
	case Users:
		return []Collection{Users}
	case Posts, Comments:
		return []Collection{Posts, Users}
	}
	return nil
}

// Notifier receives committed changes.
type Notifier interface {
	Notify(ctx context.Context, changes ...Change) error
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, changes ...Change) error

func (f NotifierFunc) Notify(ctx context.Context, changes ...Change) error {
	return f(ctx, changes...)
}
