package events

import "context"

// EventPublisher is the interface for publishing interface change events.
type EventPublisher interface {
	PublishChanged(ctx context.Context, event *InterfaceChangedEvent) error
}

// NoOpPublisher is an EventPublisher that does nothing (for in-process usage
// without events).
type NoOpPublisher struct{}

// PublishChanged is a no-op.
func (p *NoOpPublisher) PublishChanged(_ context.Context, _ *InterfaceChangedEvent) error {
	return nil
}

// CallbackPublisher is an EventPublisher that calls a callback function (for testing).
type CallbackPublisher struct {
	callback func(ctx context.Context, event *InterfaceChangedEvent) error
}

// NewCallbackPublisher creates a new CallbackPublisher.
func NewCallbackPublisher(cb func(ctx context.Context, event *InterfaceChangedEvent) error) *CallbackPublisher {
	return &CallbackPublisher{callback: cb}
}

// PublishChanged calls the callback.
func (p *CallbackPublisher) PublishChanged(ctx context.Context, event *InterfaceChangedEvent) error {
	return p.callback(ctx, event)
}
