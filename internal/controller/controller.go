package controller

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tdawodu/waypoint/internal/session"
	"github.com/tdawodu/waypoint/internal/source"
	"github.com/tdawodu/waypoint/internal/types"
)

// ErrNoActiveTrip is returned by StopTrip when nothing is being navigated
var ErrNoActiveTrip = errors.New("no active trip")

// DBClient is the persistence surface the controller needs
type DBClient interface {
	CreateTrip(trip *types.Trip) error
	UpdateTrip(trip *types.Trip) error
	StorePositionFix(tripID string, fix *types.PositionFix) error
}

// CacheClient is the cache surface the controller needs
type CacheClient interface {
	StoreTrip(ctx context.Context, trip *types.Trip) error
	DeleteTrip(ctx context.Context, tripID string) error
	StoreLastFix(ctx context.Context, tripID string, fix *types.PositionFix) error
	DeleteLastFix(ctx context.Context, tripID string) error
}

// StatsRecorder is the subset of stats the controller records
type StatsRecorder interface {
	IncrementFixesReceived()
	IncrementFixesApplied()
	IncrementProgressEvents()
	IncrementStepsAdvanced()
	IncrementTripsStarted()
	IncrementTripsArrived()
	IncrementTripsStopped()
	UpdateLastFixTime()
	AddProcessingTime(duration time.Duration)
}

// Controller owns the navigation session for one trip at a time. It
// serializes Start/OnFix/Stop behind a single mutex, pairs Stop with
// canceling the position subscription, and persists trip state.
//
// The session itself is single-writer; this controller is the writer.
type Controller struct {
	db         DBClient
	cache      CacheClient
	src        source.Source
	downstream session.Sink
	stats      StatsRecorder
	thresholdM float64
	staleAfter time.Duration

	mu        sync.Mutex
	sess      *session.Session
	trip      *types.Trip
	sub       *source.Subscription
	gen       uint64
	lastFixAt time.Time
}

// New creates a controller. The downstream sink receives every
// guidance event after the controller has applied its own bookkeeping.
func New(db DBClient, cache CacheClient, src source.Source, downstream session.Sink, stats StatsRecorder, thresholdM float64) *Controller {
	return &Controller{
		db:         db,
		cache:      cache,
		src:        src,
		downstream: downstream,
		stats:      stats,
		thresholdM: thresholdM,
		staleAfter: 30 * time.Second,
	}
}

// StartTrip begins navigating the given route under a fresh trip ID.
// Any trip already in progress is stopped first. Returns the created
// trip record.
func (c *Controller) StartTrip(ctx context.Context, route *types.Route, origin, destination types.LatLng, mode string) (*types.Trip, error) {
	return c.StartTripWithID(ctx, uuid.New().String(), route, origin, destination, mode)
}

// StartTripWithID is StartTrip with a caller-chosen trip ID, used when
// the trip was announced elsewhere before the daemon picked it up.
func (c *Controller) StartTripWithID(ctx context.Context, tripID string, route *types.Route, origin, destination types.LatLng, mode string) (*types.Trip, error) {
	// The stale subscription is canceled after the mutex is released:
	// its source may be blocked delivering a fix into handleFix, which
	// needs the mutex to drain
	var stale *source.Subscription
	defer func() { cancelSubscription(stale) }()

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.trip != nil {
		stale = c.finishTripLocked(ctx, types.TripStatusStopped)
	}

	trip := &types.Trip{
		TripID:         tripID,
		StartedAt:      time.Now().UTC(),
		OriginLat:      origin.Latitude,
		OriginLng:      origin.Longitude,
		DestinationLat: destination.Latitude,
		DestinationLng: destination.Longitude,
		Mode:           mode,
		Status:         types.TripStatusActive,
		StepsTotal:     len(route.Steps()),
	}

	// Trip must be visible to the bookkeeping sink before Start emits
	// SessionStarted
	c.trip = trip
	sess := session.NewWithThreshold(&bookkeepingSink{c: c}, c.thresholdM)
	if err := sess.Start(route); err != nil {
		c.trip = nil
		return nil, err
	}
	c.sess = sess
	c.lastFixAt = time.Now()

	if err := c.db.CreateTrip(trip); err != nil {
		c.sess = nil
		c.trip = nil
		return nil, err
	}
	if err := c.cache.StoreTrip(ctx, trip); err != nil {
		log.Printf("Warning: Failed to cache trip in Redis: %v", err)
	}

	// Each subscription carries its generation so fixes from a replaced
	// subscription cannot reach a later trip's session
	c.gen++
	gen := c.gen
	sub, err := c.src.Subscribe(func(fix types.PositionFix) {
		c.handleFix(gen, fix)
	})
	if err != nil {
		c.sess = nil
		c.trip = nil
		trip.EndedAt = time.Now().UTC()
		trip.Status = types.TripStatusStopped
		if uerr := c.db.UpdateTrip(trip); uerr != nil {
			log.Printf("Warning: Failed to mark trip stopped after subscribe failure: %v", uerr)
		}
		if cerr := c.cache.DeleteTrip(ctx, trip.TripID); cerr != nil {
			log.Printf("Warning: Failed to delete trip from Redis: %v", cerr)
		}
		return nil, err
	}
	c.sub = sub

	c.stats.IncrementTripsStarted()

	copied := *trip
	return &copied, nil
}

// StopTrip cancels the active trip and its fix subscription
func (c *Controller) StopTrip(ctx context.Context) error {
	c.mu.Lock()
	if c.trip == nil {
		c.mu.Unlock()
		return ErrNoActiveTrip
	}
	sub := c.finishTripLocked(ctx, types.TripStatusStopped)
	c.mu.Unlock()

	cancelSubscription(sub)
	return nil
}

// ActiveTrip returns a copy of the trip in progress, or nil
func (c *Controller) ActiveTrip() *types.Trip {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.trip == nil {
		return nil
	}
	copied := *c.trip
	return &copied
}

// handleFix is the single entry point for position fixes. The source
// may deliver from any goroutine; the mutex serializes against
// StartTrip and StopTrip.
func (c *Controller) handleFix(gen uint64, fix types.PositionFix) {
	start := time.Now()

	c.mu.Lock()
	defer c.mu.Unlock()

	c.stats.IncrementFixesReceived()
	c.stats.UpdateLastFixTime()

	// Stragglers after stop or arrival are dropped, as are fixes from
	// a subscription that has since been replaced
	if gen != c.gen || c.sess == nil || c.trip == nil {
		return
	}

	c.sess.OnFix(fix)
	c.lastFixAt = time.Now()
	c.stats.IncrementFixesApplied()

	// trip may have been finished by the arrival event
	if c.trip == nil {
		c.stats.AddProcessingTime(time.Since(start))
		return
	}

	c.trip.StepsCompleted = c.sess.CurrentStep()

	if err := c.db.StorePositionFix(c.trip.TripID, &fix); err != nil {
		log.Printf("Warning: Failed to store position fix: %v", err)
	}
	if err := c.cache.StoreLastFix(context.Background(), c.trip.TripID, &fix); err != nil {
		log.Printf("Warning: Failed to cache last fix in Redis: %v", err)
	}
	if err := c.cache.StoreTrip(context.Background(), c.trip); err != nil {
		log.Printf("Warning: Failed to cache trip in Redis: %v", err)
	}

	c.stats.AddProcessingTime(time.Since(start))
}

// finishTripLocked ends the current trip with the given status and
// returns the subscription that must be canceled. Caller must hold
// c.mu; the cancel has to happen with the mutex released because the
// source's delivery goroutine may be parked in handleFix waiting for
// it, and a joining cancel would wait on that goroutine in turn.
func (c *Controller) finishTripLocked(ctx context.Context, status string) *source.Subscription {
	trip := c.trip
	sub := c.sub
	c.sub = nil

	if c.sess != nil && status == types.TripStatusStopped {
		c.sess.Stop()
	}
	c.sess = nil
	c.trip = nil

	if trip == nil {
		return sub
	}
	trip.EndedAt = time.Now().UTC()
	trip.Status = status

	if err := c.db.UpdateTrip(trip); err != nil {
		log.Printf("Warning: Failed to update trip: %v", err)
	}
	if err := c.cache.DeleteTrip(ctx, trip.TripID); err != nil {
		log.Printf("Warning: Failed to delete trip from Redis: %v", err)
	}
	if err := c.cache.DeleteLastFix(ctx, trip.TripID); err != nil {
		log.Printf("Warning: Failed to delete last fix from Redis: %v", err)
	}

	switch status {
	case types.TripStatusArrived:
		c.stats.IncrementTripsArrived()
	case types.TripStatusStopped:
		c.stats.IncrementTripsStopped()
	}
	return sub
}

// cancelSubscription cancels sub outside the controller mutex, logging
// instead of failing since the trip is already finished
func cancelSubscription(sub *source.Subscription) {
	if sub == nil {
		return
	}
	if err := sub.Cancel(); err != nil {
		log.Printf("Warning: Failed to cancel fix subscription: %v", err)
	}
}

// Watch logs a warning when the active trip stops receiving fixes.
// The session stays Active; liveness is only reported, never enforced.
func (c *Controller) Watch(ctx context.Context) {
	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.mu.Lock()
			stale := c.trip != nil && time.Since(c.lastFixAt) > c.staleAfter
			var tripID string
			if c.trip != nil {
				tripID = c.trip.TripID
			}
			c.mu.Unlock()

			if stale {
				log.Printf("Warning: No position fix for trip %s in over %s", tripID, c.staleAfter)
			}
		}
	}
}

// bookkeepingSink intercepts session events to keep trip state current
// before forwarding downstream. Emit runs while the controller mutex is
// held, so it must not lock.
type bookkeepingSink struct {
	c *Controller
}

func (b *bookkeepingSink) Emit(event types.GuidanceEvent) {
	c := b.c

	if c.trip != nil {
		event.TripID = c.trip.TripID
	}

	switch event.Kind {
	case types.EventProgressUpdate:
		c.stats.IncrementProgressEvents()
	case types.EventArrivedAtStep:
		c.stats.IncrementStepsAdvanced()
		if c.trip != nil {
			c.trip.StepsCompleted = event.StepIndex
		}
	case types.EventArrivedAtDestination:
		c.stats.IncrementStepsAdvanced()
		if c.trip != nil {
			c.trip.StepsCompleted = event.StepIndex
			sub := c.finishTripLocked(context.Background(), types.TripStatusArrived)
			// This event is itself an in-flight delivery from the
			// subscription being canceled, so cancel from a fresh
			// goroutine rather than on the delivery path
			go cancelSubscription(sub)
		}
	}

	if c.downstream != nil {
		c.downstream.Emit(event)
	}
}
