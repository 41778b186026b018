package source

import (
	"time"

	"github.com/tdawodu/waypoint/internal/types"
)

// Replay plays back a recorded track of fixes at a fixed interval.
// Used by tests and the trip simulator; each Subscribe call gets its
// own playback from the beginning.
type Replay struct {
	fixes    []types.PositionFix
	interval time.Duration
}

// NewReplay creates a replay source. An interval of zero delivers the
// whole track as fast as the handler consumes it.
func NewReplay(fixes []types.PositionFix, interval time.Duration) *Replay {
	return &Replay{fixes: fixes, interval: interval}
}

// Subscribe starts playback into handler on a new goroutine. Cancel
// joins the playback goroutine, so it must not be called from inside
// the handler or while holding a lock the handler is waiting on;
// after Cancel returns no further deliveries happen.
func (r *Replay) Subscribe(handler Handler) (*Subscription, error) {
	stop := make(chan struct{})
	done := make(chan struct{})

	go func() {
		defer close(done)
		for _, fix := range r.fixes {
			select {
			case <-stop:
				return
			default:
			}

			handler(fix)

			if r.interval > 0 {
				select {
				case <-stop:
					return
				case <-time.After(r.interval):
				}
			}
		}
	}()

	return NewSubscription(func() error {
		close(stop)
		<-done
		return nil
	}), nil
}
