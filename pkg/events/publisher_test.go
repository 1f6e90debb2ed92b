package events

import (
	"context"
	"testing"
)

func TestNoOpPublisher(t *testing.T) {
	p := &NoOpPublisher{}
	if err := p.PublishChanged(context.Background(), &InterfaceChangedEvent{App: "demo", Contract: "Box"}); err != nil {
		t.Errorf("events:publisher_test - NoOpPublisher returned error: %v", err)
	}
}

func TestCallbackPublisher(t *testing.T) {
	var captured []*InterfaceChangedEvent
	p := NewCallbackPublisher(func(_ context.Context, event *InterfaceChangedEvent) error {
		captured = append(captured, event)
		return nil
	})

	major := 2
	event := &InterfaceChangedEvent{
		App:            "demo",
		Contract:       "Box",
		ChangedFields:  []string{"activeMajor"},
		NewActiveMajor: &major,
		AffectedMajors: []int{2},
		Revision:       3,
	}
	if err := p.PublishChanged(context.Background(), event); err != nil {
		t.Fatalf("events:publisher_test - PublishChanged: %v", err)
	}

	if len(captured) != 1 {
		t.Fatalf("events:publisher_test - captured %d events, want 1", len(captured))
	}
	if captured[0].Contract != "Box" || captured[0].NewActiveMajor == nil || *captured[0].NewActiveMajor != 2 {
		t.Errorf("events:publisher_test - captured event %+v", captured[0])
	}
}
