package migrations

var RetentionPolicies = &Migration{
	ID:   "002_retention_policies",
	Name: "002_retention_policies",
	UpSQL: `
	-- Set retention policy for position_fixes (30 days)
	SELECT add_retention_policy('position_fixes', INTERVAL '30 days');

	-- Set retention policy for nav_stats (90 days)
	SELECT add_retention_policy('nav_stats', INTERVAL '90 days');

	-- Create continuous aggregate for daily navigation stats
	CREATE MATERIALIZED VIEW IF NOT EXISTS nav_stats_daily
	WITH (timescaledb.continuous) AS
	SELECT
		time_bucket('1 day', time) AS day,
		SUM(fixes_received) AS fixes_received,
		SUM(fixes_applied) AS fixes_applied,
		SUM(fixes_rejected) AS fixes_rejected,
		SUM(steps_advanced) AS steps_advanced,
		SUM(trips_started) AS trips_started,
		SUM(trips_arrived) AS trips_arrived,
		SUM(trips_stopped) AS trips_stopped
	FROM nav_stats
	GROUP BY day
	WITH NO DATA;

	-- Create continuous aggregate for hourly fix volume
	CREATE MATERIALIZED VIEW IF NOT EXISTS position_fixes_hourly
	WITH (timescaledb.continuous) AS
	SELECT
		time_bucket('1 hour', time) AS hour,
		COUNT(*) AS fix_count
	FROM position_fixes
	GROUP BY hour
	WITH NO DATA;
	`,
	DownSQL: `
	DROP MATERIALIZED VIEW IF EXISTS nav_stats_daily;
	DROP MATERIALIZED VIEW IF EXISTS position_fixes_hourly;
	-- Remove retention policies
	SELECT remove_retention_policy('position_fixes');
	SELECT remove_retention_policy('nav_stats');
	`,
}
