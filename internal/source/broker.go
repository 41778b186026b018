package source

import (
	natsclient "github.com/tdawodu/waypoint/internal/nats"
	"github.com/tdawodu/waypoint/internal/types"
)

// Broker adapts the NATS client into a Source, so the controller is
// indifferent to where fixes come from
type Broker struct {
	client *natsclient.Client
}

// NewBroker creates a Source backed by the nav.fix subject
func NewBroker(client *natsclient.Client) *Broker {
	return &Broker{client: client}
}

// Subscribe delivers broker fixes to handler until the subscription is
// canceled
func (b *Broker) Subscribe(handler Handler) (*Subscription, error) {
	sub, err := b.client.SubscribePositionFix(func(fix *types.PositionFix) {
		handler(*fix)
	})
	if err != nil {
		return nil, err
	}
	return NewSubscription(sub.Unsubscribe), nil
}
