package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tdawodu/waypoint/internal/config"
	"github.com/tdawodu/waypoint/internal/db"
	"github.com/tdawodu/waypoint/internal/directions"
	"github.com/tdawodu/waypoint/internal/nats"
	"github.com/tdawodu/waypoint/internal/redis"
	"github.com/tdawodu/waypoint/internal/types"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Printf("Failed to load configuration: %v", err)
		os.Exit(1)
	}

	natsClient, err := nats.New(cfg.NATSURL)
	if err != nil {
		log.Printf("Failed to create NATS client: %v", err)
		os.Exit(1)
	}
	defer natsClient.Close()

	dbClient, err := db.New(cfg.DBConnStr)
	if err != nil {
		log.Printf("Failed to create database client: %v", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "error closing dbClient: %v\n", err)
		}
	}()

	redisClient, err := redis.New(cfg.RedisAddr)
	if err != nil {
		log.Printf("Failed to create Redis client: %v", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "error closing redisClient: %v\n", err)
		}
	}()

	directionsClient := directions.New(cfg.DirectionsURL, cfg.DirectionsTimeout)

	hub := NewHub()
	guidanceSub, err := natsClient.SubscribeGuidance(func(event *types.GuidanceEvent) {
		hub.Broadcast(event)
	})
	if err != nil {
		log.Printf("Failed to subscribe to guidance events: %v", err)
		os.Exit(1)
	}
	defer func() {
		_ = guidanceSub.Unsubscribe()
	}()

	server := NewServer(directionsClient, natsClient, redisClient, dbClient, hub)

	httpServer := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      server.Router(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		log.Printf("API listening on %s", cfg.HTTPAddr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("HTTP server failed: %v", err)
			os.Exit(1)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	log.Println("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP shutdown failed: %v", err)
	}
}
