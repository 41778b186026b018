package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/tdawodu/waypoint/internal/config"
	"github.com/tdawodu/waypoint/internal/nats"
	"github.com/tdawodu/waypoint/internal/storage"
	"github.com/tdawodu/waypoint/internal/types"
)

// FixWriter is the track log surface the logger needs
type FixWriter interface {
	WriteFix(fix *types.PositionFix) error
}

// writeHandler returns the subscription handler that appends each fix
// to the track log
func writeHandler(writer FixWriter) func(*types.PositionFix) {
	return func(fix *types.PositionFix) {
		if err := writer.WriteFix(fix); err != nil {
			log.Printf("Failed to write fix: %v", err)
		}
	}
}

func runLogger() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	if err := os.MkdirAll(cfg.OutputDir, 0o750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	client, err := nats.New(cfg.NATSURL)
	if err != nil {
		return fmt.Errorf("failed to create NATS client: %w", err)
	}

	store := storage.New(cfg.OutputDir)
	if err := store.Start(); err != nil {
		client.Close()
		return fmt.Errorf("failed to start track log: %w", err)
	}

	sub, err := client.SubscribePositionFix(writeHandler(store))
	if err != nil {
		client.Close()
		_ = store.Stop()
		return fmt.Errorf("failed to subscribe to fixes: %w", err)
	}

	log.Printf("Logging fixes to %s", cfg.OutputDir)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	log.Println("Shutting down...")
	if err := sub.Unsubscribe(); err != nil {
		log.Printf("Warning: Failed to unsubscribe: %v", err)
	}
	client.Close()
	if err := store.Stop(); err != nil {
		return fmt.Errorf("failed to stop track log: %w", err)
	}

	return nil
}

func main() {
	if err := runLogger(); err != nil {
		log.Printf("Logger failed: %v", err)
		os.Exit(1)
	}
}
