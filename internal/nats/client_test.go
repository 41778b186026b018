package nats

import (
	"testing"
	"time"

	"github.com/tdawodu/waypoint/internal/types"
)

func TestNew_BadURLs(t *testing.T) {
	tests := []struct {
		name string
		url  string
	}{
		{name: "empty URL", url: ""},
		{name: "invalid scheme", url: "invalid://url:12345"},
		{name: "malformed URL", url: "not-a-url"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := New(tt.url)
			if err == nil {
				client.Close()
				t.Fatal("New() should fail")
			}
			if client != nil {
				t.Error("New() should return nil client on error")
			}
		})
	}
}

func TestClient_Close_NilSafety(t *testing.T) {
	client := &Client{conn: nil}
	client.Close() // must not panic
}

func TestSubjects(t *testing.T) {
	if SubjectPositionFix != "nav.fix" {
		t.Errorf("SubjectPositionFix = %q, want nav.fix", SubjectPositionFix)
	}
	if SubjectGuidance != "nav.guidance" {
		t.Errorf("SubjectGuidance = %q, want nav.guidance", SubjectGuidance)
	}
}

// Tests below require a NATS server on localhost:4222.

func TestClient_PublishAndSubscribeFixes(t *testing.T) {
	client, err := New("nats://localhost:4222")
	if err != nil {
		t.Skip("NATS not available, skipping test")
	}
	defer client.Close()

	received := make(chan *types.PositionFix, 1)
	sub, err := client.SubscribePositionFix(func(fix *types.PositionFix) {
		received <- fix
	})
	if err != nil {
		t.Fatalf("SubscribePositionFix() failed: %v", err)
	}
	defer func() {
		if err := sub.Unsubscribe(); err != nil {
			t.Errorf("Unsubscribe() failed: %v", err)
		}
	}()

	fix := &types.PositionFix{
		Latitude:  6.5244,
		Longitude: 3.3792,
		Speed:     12.5,
		Timestamp: time.Now().UTC(),
		Source:    "test-source",
	}
	if err := client.PublishPositionFix(fix); err != nil {
		t.Fatalf("PublishPositionFix() failed: %v", err)
	}

	select {
	case got := <-received:
		if got.Latitude != fix.Latitude || got.Longitude != fix.Longitude {
			t.Errorf("Received (%v, %v), want (%v, %v)",
				got.Latitude, got.Longitude, fix.Latitude, fix.Longitude)
		}
		if got.Source != fix.Source {
			t.Errorf("Received source %q, want %q", got.Source, fix.Source)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Timeout waiting for fix")
	}
}

func TestClient_PublishAndSubscribeGuidance(t *testing.T) {
	client, err := New("nats://localhost:4222")
	if err != nil {
		t.Skip("NATS not available, skipping test")
	}
	defer client.Close()

	received := make(chan *types.GuidanceEvent, 1)
	sub, err := client.SubscribeGuidance(func(event *types.GuidanceEvent) {
		received <- event
	})
	if err != nil {
		t.Fatalf("SubscribeGuidance() failed: %v", err)
	}
	defer func() {
		if err := sub.Unsubscribe(); err != nil {
			t.Errorf("Unsubscribe() failed: %v", err)
		}
	}()

	event := &types.GuidanceEvent{
		Kind:        types.EventArrivedAtStep,
		TripID:      "trip-123",
		Instruction: "Turn left onto Admiralty Way",
		StepIndex:   1,
		Timestamp:   time.Now().UTC(),
	}
	if err := client.PublishGuidanceEvent(event); err != nil {
		t.Fatalf("PublishGuidanceEvent() failed: %v", err)
	}

	select {
	case got := <-received:
		if got.Kind != event.Kind {
			t.Errorf("Received kind %v, want %v", got.Kind, event.Kind)
		}
		if got.TripID != event.TripID {
			t.Errorf("Received trip %q, want %q", got.TripID, event.TripID)
		}
		if got.Instruction != event.Instruction {
			t.Errorf("Received instruction %q, want %q", got.Instruction, event.Instruction)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Timeout waiting for guidance event")
	}
}
