package nats

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/tdawodu/waypoint/internal/types"
)

const (
	SubjectPositionFix = "nav.fix"
	SubjectGuidance    = "nav.guidance"
	SubjectTripCommand = "nav.trip.cmd"
)

// Client represents a NATS client
type Client struct {
	conn *nats.Conn
	js   nats.JetStreamContext
}

// New creates a new NATS client and ensures the navigation streams exist
func New(url string) (*Client, error) {
	nc, err := nats.Connect(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := nc.JetStream()
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("failed to get JetStream context: %w", err)
	}

	streams := []*nats.StreamConfig{
		{
			Name:     "NAV_FIX",
			Subjects: []string{SubjectPositionFix},
			Storage:  nats.FileStorage,
			MaxAge:   24 * time.Hour,
		},
		{
			Name:     "NAV_GUIDANCE",
			Subjects: []string{SubjectGuidance},
			Storage:  nats.FileStorage,
			MaxAge:   1 * time.Hour,
		},
		{
			Name:     "NAV_CMD",
			Subjects: []string{SubjectTripCommand},
			Storage:  nats.FileStorage,
			MaxAge:   1 * time.Hour,
		},
	}
	for _, cfg := range streams {
		if _, err := js.AddStream(cfg); err != nil && !strings.Contains(err.Error(), "stream name already in use") {
			nc.Close()
			return nil, fmt.Errorf("failed to create stream %s: %w", cfg.Name, err)
		}
	}

	return &Client{
		conn: nc,
		js:   js,
	}, nil
}

// PublishPositionFix publishes a position fix
func (c *Client) PublishPositionFix(fix *types.PositionFix) error {
	data, err := json.Marshal(fix)
	if err != nil {
		return fmt.Errorf("failed to marshal fix: %w", err)
	}

	if _, err := c.js.Publish(SubjectPositionFix, data); err != nil {
		return fmt.Errorf("failed to publish fix: %w", err)
	}

	return nil
}

// PublishGuidanceEvent publishes a guidance event
func (c *Client) PublishGuidanceEvent(event *types.GuidanceEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal guidance event: %w", err)
	}

	if _, err := c.js.Publish(SubjectGuidance, data); err != nil {
		return fmt.Errorf("failed to publish guidance event: %w", err)
	}

	return nil
}

// PublishTripCommand publishes a start/stop trip command
func (c *Client) PublishTripCommand(cmd *types.TripCommand) error {
	data, err := json.Marshal(cmd)
	if err != nil {
		return fmt.Errorf("failed to marshal trip command: %w", err)
	}

	if _, err := c.js.Publish(SubjectTripCommand, data); err != nil {
		return fmt.Errorf("failed to publish trip command: %w", err)
	}

	return nil
}

// SubscribeTripCommands subscribes to trip commands
func (c *Client) SubscribeTripCommands(handler func(*types.TripCommand)) (*nats.Subscription, error) {
	sub, err := c.js.Subscribe(SubjectTripCommand, func(msg *nats.Msg) {
		var cmd types.TripCommand
		if err := json.Unmarshal(msg.Data, &cmd); err != nil {
			fmt.Printf("Error unmarshaling trip command: %v\n", err)
			return
		}
		handler(&cmd)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to subscribe: %w", err)
	}

	return sub, nil
}

// SubscribePositionFix subscribes to position fixes. The returned
// subscription must be unsubscribed to stop delivery.
func (c *Client) SubscribePositionFix(handler func(*types.PositionFix)) (*nats.Subscription, error) {
	sub, err := c.js.Subscribe(SubjectPositionFix, func(msg *nats.Msg) {
		var fix types.PositionFix
		if err := json.Unmarshal(msg.Data, &fix); err != nil {
			fmt.Printf("Error unmarshaling fix: %v\n", err)
			return
		}
		handler(&fix)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to subscribe: %w", err)
	}

	return sub, nil
}

// SubscribeGuidance subscribes to guidance events
func (c *Client) SubscribeGuidance(handler func(*types.GuidanceEvent)) (*nats.Subscription, error) {
	sub, err := c.js.Subscribe(SubjectGuidance, func(msg *nats.Msg) {
		var event types.GuidanceEvent
		if err := json.Unmarshal(msg.Data, &event); err != nil {
			fmt.Printf("Error unmarshaling guidance event: %v\n", err)
			return
		}
		handler(&event)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to subscribe: %w", err)
	}

	return sub, nil
}

// Close closes the NATS connection
func (c *Client) Close() {
	if c.conn != nil {
		c.conn.Close()
	}
}
