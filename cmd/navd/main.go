package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tdawodu/waypoint/internal/config"
	"github.com/tdawodu/waypoint/internal/controller"
	"github.com/tdawodu/waypoint/internal/db"
	"github.com/tdawodu/waypoint/internal/guidance"
	"github.com/tdawodu/waypoint/internal/nats"
	"github.com/tdawodu/waypoint/internal/redis"
	"github.com/tdawodu/waypoint/internal/source"
	"github.com/tdawodu/waypoint/internal/stats"
	"github.com/tdawodu/waypoint/internal/types"
)

// TripStore is the persistence surface the daemon needs at startup
type TripStore interface {
	GetActiveTrips() ([]*types.Trip, error)
	UpdateTrip(trip *types.Trip) error
}

// createClients creates all the required clients for the daemon
func createClients(cfg *config.Config) (*nats.Client, *db.Client, *redis.Client, error) {
	natsClient, err := nats.New(cfg.NATSURL)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to create NATS client: %w", err)
	}

	dbClient, err := db.New(cfg.DBConnStr)
	if err != nil {
		natsClient.Close()
		return nil, nil, nil, fmt.Errorf("failed to create database client: %w", err)
	}

	redisClient, err := redis.New(cfg.RedisAddr)
	if err != nil {
		natsClient.Close()
		if closeErr := dbClient.Close(); closeErr != nil {
			fmt.Fprintf(os.Stderr, "error closing dbClient: %v\n", closeErr)
		}
		return nil, nil, nil, fmt.Errorf("failed to create Redis client: %w", err)
	}

	return natsClient, dbClient, redisClient, nil
}

// closeOrphanedTrips marks trips left active by a previous run as
// stopped. The daemon tracks one trip at a time; anything active in the
// database at startup was orphaned by a restart.
func closeOrphanedTrips(store TripStore) error {
	trips, err := store.GetActiveTrips()
	if err != nil {
		return fmt.Errorf("failed to load active trips: %w", err)
	}

	for _, trip := range trips {
		trip.Status = types.TripStatusStopped
		trip.EndedAt = time.Now().UTC()
		if err := store.UpdateTrip(trip); err != nil {
			return fmt.Errorf("failed to close orphaned trip %s: %w", trip.TripID, err)
		}
		log.Printf("Closed orphaned trip %s", trip.TripID)
	}

	return nil
}

// handleCommand executes a single trip command on the controller
func handleCommand(ctrl *controller.Controller, cmd *types.TripCommand) {
	switch cmd.Action {
	case types.TripActionStart:
		if cmd.Route == nil {
			log.Printf("Ignoring start command for trip %s: no route", cmd.TripID)
			return
		}
		trip, err := ctrl.StartTripWithID(context.Background(), cmd.TripID, cmd.Route, cmd.Origin, cmd.Destination, cmd.Mode)
		if err != nil {
			log.Printf("Failed to start trip %s: %v", cmd.TripID, err)
			return
		}
		log.Printf("Started trip %s (%d steps)", trip.TripID, trip.StepsTotal)
	case types.TripActionStop:
		active := ctrl.ActiveTrip()
		if active == nil || (cmd.TripID != "" && active.TripID != cmd.TripID) {
			log.Printf("Ignoring stop command for trip %s: not active", cmd.TripID)
			return
		}
		if err := ctrl.StopTrip(context.Background()); err != nil {
			log.Printf("Failed to stop trip %s: %v", cmd.TripID, err)
			return
		}
		log.Printf("Stopped trip %s", cmd.TripID)
	default:
		log.Printf("Ignoring unknown trip command action %q", cmd.Action)
	}
}

// logStats periodically logs processing statistics
func logStats(ctx context.Context, st *stats.Stats) {
	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			log.Printf("Statistics:\n%s", st)
		}
	}
}

// waitForShutdown waits for shutdown signals and handles cleanup
func waitForShutdown(cancel context.CancelFunc, natsClient *nats.Client, dbClient *db.Client, redisClient *redis.Client) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	log.Println("Shutting down...")
	cancel()
	natsClient.Close()
	if err := dbClient.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "error closing dbClient: %v\n", err)
	}
	if err := redisClient.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "error closing redisClient: %v\n", err)
	}
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Printf("Failed to load configuration: %v", err)
		os.Exit(1)
	}

	natsClient, dbClient, redisClient, err := createClients(cfg)
	if err != nil {
		log.Printf("Failed to create clients: %v", err)
		os.Exit(1)
	}

	if err := closeOrphanedTrips(dbClient); err != nil {
		log.Printf("Warning: %v", err)
	}

	st := stats.New()
	st.SetDB(dbClient)

	// Guidance fans out to the local log (throttled so a 1 Hz stream
	// stays readable) and to the broker for UI consumers
	downstream := guidance.MultiSink{
		guidance.NewThrottledSink(guidance.LogSink{}, 5*time.Second, 100),
		guidance.NewPublishSink(natsClient, ""),
	}

	ctrl := controller.New(
		dbClient,
		redisClient,
		source.NewBroker(natsClient),
		downstream,
		st,
		cfg.ArrivalThresholdM,
	)

	ctx, cancel := context.WithCancel(context.Background())

	cmdSub, err := natsClient.SubscribeTripCommands(func(cmd *types.TripCommand) {
		handleCommand(ctrl, cmd)
	})
	if err != nil {
		log.Printf("Failed to subscribe to trip commands: %v", err)
		cancel()
		natsClient.Close()
		if err := dbClient.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "error closing dbClient: %v\n", err)
		}
		if err := redisClient.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "error closing redisClient: %v\n", err)
		}
		os.Exit(1)
	}
	defer func() {
		_ = cmdSub.Unsubscribe()
	}()

	go ctrl.Watch(ctx)
	go logStats(ctx, st)
	go st.StartPersistence(ctx, 5*time.Minute)

	log.Printf("Navigation daemon ready (arrival threshold %.0fm)", cfg.ArrivalThresholdM)

	waitForShutdown(cancel, natsClient, dbClient, redisClient)
}
