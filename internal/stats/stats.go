package stats

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/tdawodu/waypoint/internal/db"
)

// Stats tracks fix processing and trip lifecycle statistics
type Stats struct {
	// Fix counts
	FixesReceived  uint64
	FixesApplied   uint64
	FixesRejected  uint64
	ProgressEvents uint64
	StepsAdvanced  uint64

	// Trip lifecycle counts
	TripsStarted uint64
	TripsArrived uint64
	TripsStopped uint64

	// Timing
	StartedAt      time.Time
	LastFixTime    time.Time
	ProcessingTime time.Duration

	// Database client for persistence
	db *db.Client

	mu sync.RWMutex
}

// New creates a new Stats instance
func New() *Stats {
	now := time.Now()
	return &Stats{
		StartedAt:   now,
		LastFixTime: now,
	}
}

// SetDB sets the database client for persistence
func (s *Stats) SetDB(db *db.Client) {
	s.mu.Lock()
	s.db = db
	s.mu.Unlock()
}

// Persist stores the current statistics in the database
func (s *Stats) Persist() error {
	s.mu.RLock()
	if s.db == nil {
		s.mu.RUnlock()
		return fmt.Errorf("database client not set")
	}
	s.mu.RUnlock()

	return s.db.StoreNavStats(s.GetStats())
}

// IncrementFixesReceived increments the received fixes counter
func (s *Stats) IncrementFixesReceived() {
	atomic.AddUint64(&s.FixesReceived, 1)
}

// IncrementFixesApplied increments the applied fixes counter
func (s *Stats) IncrementFixesApplied() {
	atomic.AddUint64(&s.FixesApplied, 1)
}

// IncrementFixesRejected increments the rejected fixes counter
func (s *Stats) IncrementFixesRejected() {
	atomic.AddUint64(&s.FixesRejected, 1)
}

// IncrementProgressEvents increments the progress events counter
func (s *Stats) IncrementProgressEvents() {
	atomic.AddUint64(&s.ProgressEvents, 1)
}

// IncrementStepsAdvanced increments the steps advanced counter
func (s *Stats) IncrementStepsAdvanced() {
	atomic.AddUint64(&s.StepsAdvanced, 1)
}

// IncrementTripsStarted increments the started trips counter
func (s *Stats) IncrementTripsStarted() {
	atomic.AddUint64(&s.TripsStarted, 1)
}

// IncrementTripsArrived increments the arrived trips counter
func (s *Stats) IncrementTripsArrived() {
	atomic.AddUint64(&s.TripsArrived, 1)
}

// IncrementTripsStopped increments the stopped trips counter
func (s *Stats) IncrementTripsStopped() {
	atomic.AddUint64(&s.TripsStopped, 1)
}

// UpdateLastFixTime updates the last fix time
func (s *Stats) UpdateLastFixTime() {
	s.mu.Lock()
	s.LastFixTime = time.Now()
	s.mu.Unlock()
}

// AddProcessingTime adds to the total processing time
func (s *Stats) AddProcessingTime(duration time.Duration) {
	s.mu.Lock()
	s.ProcessingTime += duration
	s.mu.Unlock()
}

// GetStats returns a copy of the current statistics
func (s *Stats) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return map[string]interface{}{
		"fixes_received":  atomic.LoadUint64(&s.FixesReceived),
		"fixes_applied":   atomic.LoadUint64(&s.FixesApplied),
		"fixes_rejected":  atomic.LoadUint64(&s.FixesRejected),
		"progress_events": atomic.LoadUint64(&s.ProgressEvents),
		"steps_advanced":  atomic.LoadUint64(&s.StepsAdvanced),
		"trips_started":   atomic.LoadUint64(&s.TripsStarted),
		"trips_arrived":   atomic.LoadUint64(&s.TripsArrived),
		"trips_stopped":   atomic.LoadUint64(&s.TripsStopped),
		"started_at":      s.StartedAt,
		"last_fix_time":   s.LastFixTime,
		"processing_time": s.ProcessingTime,
		"uptime":          time.Since(s.StartedAt),
	}
}

// String returns a string representation of the statistics
func (s *Stats) String() string {
	stats := s.GetStats()
	return fmt.Sprintf(
		"Fixes Received: %d\n"+
			"Fixes Applied: %d\n"+
			"Fixes Rejected: %d\n"+
			"Progress Events: %d\n"+
			"Steps Advanced: %d\n"+
			"Trips Started: %d\n"+
			"Trips Arrived: %d\n"+
			"Trips Stopped: %d\n"+
			"Last Fix Time: %s\n"+
			"Processing Time: %s\n"+
			"Uptime: %s",
		stats["fixes_received"],
		stats["fixes_applied"],
		stats["fixes_rejected"],
		stats["progress_events"],
		stats["steps_advanced"],
		stats["trips_started"],
		stats["trips_arrived"],
		stats["trips_stopped"],
		stats["last_fix_time"],
		stats["processing_time"],
		stats["uptime"],
	)
}

// StartPersistence starts periodic persistence of statistics
func (s *Stats) StartPersistence(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			// Final persistence before shutdown
			if err := s.Persist(); err != nil {
				fmt.Printf("Failed to persist final statistics: %v\n", err)
			}
			return
		case <-ticker.C:
			if err := s.Persist(); err != nil {
				fmt.Printf("Failed to persist statistics: %v\n", err)
			}
		}
	}
}
