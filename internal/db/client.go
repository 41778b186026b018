package db

import (
	"database/sql"
	"time"

	_ "github.com/lib/pq"

	"github.com/tdawodu/waypoint/internal/types"
)

type Client struct {
	db *sql.DB
}

// New creates a new database client
func New(connStr string) (*Client, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}
	return &Client{db: db}, nil
}

// Close closes the database connection
func (c *Client) Close() error {
	return c.db.Close()
}

// GetActiveTrips retrieves all trips that have not ended
func (c *Client) GetActiveTrips() ([]*types.Trip, error) {
	query := `
		SELECT trip_id, started_at, origin_lat, origin_lng,
			destination_lat, destination_lng, mode, status,
			steps_total, steps_completed
		FROM trips
		WHERE status = 'active'
	`
	rows, err := c.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var trips []*types.Trip
	for rows.Next() {
		var t types.Trip
		if err := rows.Scan(
			&t.TripID, &t.StartedAt, &t.OriginLat, &t.OriginLng,
			&t.DestinationLat, &t.DestinationLng, &t.Mode, &t.Status,
			&t.StepsTotal, &t.StepsCompleted,
		); err != nil {
			return nil, err
		}
		trips = append(trips, &t)
	}
	return trips, rows.Err()
}

// CreateTrip creates a new trip
func (c *Client) CreateTrip(trip *types.Trip) error {
	query := `
		INSERT INTO trips (
			trip_id, started_at, origin_lat, origin_lng,
			destination_lat, destination_lng, mode, status,
			steps_total, steps_completed
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := c.db.Exec(query,
		trip.TripID, trip.StartedAt, trip.OriginLat, trip.OriginLng,
		trip.DestinationLat, trip.DestinationLng, trip.Mode, trip.Status,
		trip.StepsTotal, trip.StepsCompleted,
	)
	return err
}

// UpdateTrip updates an existing trip
func (c *Client) UpdateTrip(trip *types.Trip) error {
	query := `
		UPDATE trips SET
			ended_at = $1, status = $2, steps_completed = $3
		WHERE trip_id = $4
	`
	var endedAt interface{}
	if !trip.EndedAt.IsZero() {
		endedAt = trip.EndedAt
	}
	_, err := c.db.Exec(query, endedAt, trip.Status, trip.StepsCompleted, trip.TripID)
	return err
}

// StorePositionFix stores one position fix for a trip
func (c *Client) StorePositionFix(tripID string, fix *types.PositionFix) error {
	query := `
		INSERT INTO position_fixes (
			time, trip_id, latitude, longitude, heading, speed, accuracy, source
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := c.db.Exec(query,
		fix.Timestamp, tripID, fix.Latitude, fix.Longitude,
		fix.Heading, fix.Speed, fix.Accuracy, fix.Source,
	)
	return err
}

// CreateSavedPlace stores a saved place
func (c *Client) CreateSavedPlace(place *types.SavedPlace) error {
	query := `
		INSERT INTO saved_places (id, name, address, latitude, longitude, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := c.db.Exec(query,
		place.ID, place.Name, place.Address, place.Latitude, place.Longitude, place.CreatedAt,
	)
	return err
}

// ListSavedPlaces retrieves all saved places, newest first
func (c *Client) ListSavedPlaces() ([]*types.SavedPlace, error) {
	query := `
		SELECT id, name, address, latitude, longitude, created_at
		FROM saved_places
		ORDER BY created_at DESC
	`
	rows, err := c.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var places []*types.SavedPlace
	for rows.Next() {
		var p types.SavedPlace
		if err := rows.Scan(&p.ID, &p.Name, &p.Address, &p.Latitude, &p.Longitude, &p.CreatedAt); err != nil {
			return nil, err
		}
		places = append(places, &p)
	}
	return places, rows.Err()
}

// DeleteSavedPlace removes a saved place by ID. Returns sql.ErrNoRows
// if no place has that ID.
func (c *Client) DeleteSavedPlace(id string) error {
	result, err := c.db.Exec(`DELETE FROM saved_places WHERE id = $1`, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// StoreNavStats stores a snapshot of navigation processing statistics
func (c *Client) StoreNavStats(stats map[string]interface{}) error {
	query := `
		INSERT INTO nav_stats (
			time, fixes_received, fixes_applied, fixes_rejected,
			progress_events, steps_advanced,
			trips_started, trips_arrived, trips_stopped,
			processing_time_ms, uptime_seconds
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	processingTime := stats["processing_time"].(time.Duration).Milliseconds()
	uptime := time.Since(stats["started_at"].(time.Time)).Seconds()

	_, err := c.db.Exec(query,
		time.Now(),
		stats["fixes_received"],
		stats["fixes_applied"],
		stats["fixes_rejected"],
		stats["progress_events"],
		stats["steps_advanced"],
		stats["trips_started"],
		stats["trips_arrived"],
		stats["trips_stopped"],
		processingTime,
		int64(uptime),
	)

	return err
}
