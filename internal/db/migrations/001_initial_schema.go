package migrations

// InitialSchema creates the initial database schema
var InitialSchema = &Migration{
	ID:   "001_initial_schema",
	Name: "001_initial_schema",
	UpSQL: `
		-- Enable TimescaleDB extension
		CREATE EXTENSION IF NOT EXISTS timescaledb;

		-- Create position_fixes hypertable
		CREATE TABLE IF NOT EXISTS position_fixes (
			time TIMESTAMPTZ NOT NULL,
			trip_id UUID,
			latitude DOUBLE PRECISION NOT NULL,
			longitude DOUBLE PRECISION NOT NULL,
			heading DOUBLE PRECISION,
			speed DOUBLE PRECISION,
			accuracy DOUBLE PRECISION,
			source TEXT
		);

		-- Create hypertable
		SELECT create_hypertable('position_fixes', 'time');

		-- Create indexes
		CREATE INDEX IF NOT EXISTS idx_position_fixes_trip_id ON position_fixes (trip_id);

		-- Create trips table
		CREATE TABLE IF NOT EXISTS trips (
			trip_id UUID PRIMARY KEY,
			started_at TIMESTAMPTZ NOT NULL,
			ended_at TIMESTAMPTZ,
			origin_lat DOUBLE PRECISION NOT NULL,
			origin_lng DOUBLE PRECISION NOT NULL,
			destination_lat DOUBLE PRECISION NOT NULL,
			destination_lng DOUBLE PRECISION NOT NULL,
			mode TEXT NOT NULL,
			status TEXT NOT NULL,
			steps_total INTEGER NOT NULL DEFAULT 0,
			steps_completed INTEGER NOT NULL DEFAULT 0
		);

		-- Create indexes for trips
		CREATE INDEX IF NOT EXISTS idx_trips_status ON trips (status);
		CREATE INDEX IF NOT EXISTS idx_trips_started_at ON trips (started_at);

		-- Create saved_places table
		CREATE TABLE IF NOT EXISTS saved_places (
			id UUID PRIMARY KEY,
			name TEXT NOT NULL,
			address TEXT,
			latitude DOUBLE PRECISION NOT NULL,
			longitude DOUBLE PRECISION NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		CREATE INDEX IF NOT EXISTS idx_saved_places_created_at ON saved_places (created_at DESC);

		-- Create statistics table
		CREATE TABLE IF NOT EXISTS nav_stats (
			time TIMESTAMPTZ NOT NULL,
			fixes_received BIGINT NOT NULL,
			fixes_applied BIGINT NOT NULL,
			fixes_rejected BIGINT NOT NULL,
			progress_events BIGINT NOT NULL,
			steps_advanced BIGINT NOT NULL,
			trips_started BIGINT NOT NULL,
			trips_arrived BIGINT NOT NULL,
			trips_stopped BIGINT NOT NULL,
			processing_time_ms BIGINT NOT NULL,
			uptime_seconds BIGINT NOT NULL
		);

		-- Create hypertable for statistics
		SELECT create_hypertable('nav_stats', 'time');

		CREATE INDEX IF NOT EXISTS idx_nav_stats_time ON nav_stats (time DESC);
	`,
	DownSQL: `
		DROP TABLE IF EXISTS nav_stats;
		DROP TABLE IF EXISTS saved_places;
		DROP TABLE IF EXISTS trips;
		DROP TABLE IF EXISTS position_fixes;
	`,
}
