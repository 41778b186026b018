package source

import (
	"sync"

	"github.com/tdawodu/waypoint/internal/types"
)

// Handler receives position fixes from a source
type Handler func(fix types.PositionFix)

// Source is anything that can deliver a live stream of position fixes:
// a broker subscription, a replayed track, a simulator. The caller owns
// the subscription and must cancel it to stop delivery.
type Source interface {
	Subscribe(handler Handler) (*Subscription, error)
}

// Subscription is a handle to an active fix stream
type Subscription struct {
	cancel func() error
	once   sync.Once
}

// NewSubscription wraps a cancel function into a handle. Cancel runs at
// most once no matter how many times it is called.
func NewSubscription(cancel func() error) *Subscription {
	return &Subscription{cancel: cancel}
}

// Cancel stops delivery of fixes. Safe to call more than once.
func (s *Subscription) Cancel() error {
	var err error
	s.once.Do(func() {
		if s.cancel != nil {
			err = s.cancel()
		}
	})
	return err
}
