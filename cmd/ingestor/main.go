package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/tdawodu/waypoint/internal/config"
	"github.com/tdawodu/waypoint/internal/feed"
	"github.com/tdawodu/waypoint/internal/nats"
	"github.com/tdawodu/waypoint/internal/parser"
	"github.com/tdawodu/waypoint/internal/stats"
	"github.com/tdawodu/waypoint/internal/types"
)

// Publisher is the messaging surface the ingestor needs
type Publisher interface {
	PublishPositionFix(fix *types.PositionFix) error
}

// processSentences parses raw NMEA sentences and publishes the
// resulting fixes until the channel closes
func processSentences(sentences <-chan feed.Sentence, client Publisher, st *stats.Stats) {
	for sentence := range sentences {
		st.IncrementFixesReceived()

		fix, err := parser.ParseSentence(sentence.Raw, sentence.Timestamp)
		if err != nil {
			st.IncrementFixesRejected()
			log.Printf("Rejected sentence from %s: %v", sentence.Source, err)
			continue
		}
		if fix == nil {
			// Sentence type carries no position
			continue
		}

		fix.Source = sentence.Source
		if err := client.PublishPositionFix(fix); err != nil {
			log.Printf("Failed to publish fix: %v", err)
			continue
		}
		st.IncrementFixesApplied()
	}
}

func main() {
	cfg, err := config.LoadIngestor()
	if err != nil {
		log.Printf("Failed to load configuration: %v", err)
		os.Exit(1)
	}

	client, err := nats.New(cfg.NATSURL)
	if err != nil {
		log.Printf("Failed to create NATS client: %v", err)
		os.Exit(1)
	}
	defer client.Close()

	gpsFeed := feed.New(cfg.GPSSources)
	if err := gpsFeed.Start(); err != nil {
		log.Printf("Failed to start GPS feed: %v", err)
		os.Exit(1)
	}

	st := stats.New()

	done := make(chan struct{})
	go func() {
		processSentences(gpsFeed.Sentences(), client, st)
		close(done)
	}()

	log.Printf("Ingesting from %d GPS sources", len(cfg.GPSSources))

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	log.Println("Shutting down...")
	gpsFeed.Stop()
	<-done
	log.Printf("Final statistics:\n%s", st)
}
