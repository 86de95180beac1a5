package events

import "context"

// Publisher delivers domain events to interested consumers.
type Publisher interface {
	Publish(ctx context.Context, key string, event any) error
}

// NoopPublisher drops every event. Used when no broker is configured.
type NoopPublisher struct{}

// Publish implements Publisher.
func (NoopPublisher) Publish(context.Context, string, any) error { return nil }

var _ Publisher = NoopPublisher{}
