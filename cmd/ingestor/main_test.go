package main

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/tdawodu/waypoint/internal/feed"
	"github.com/tdawodu/waypoint/internal/stats"
	"github.com/tdawodu/waypoint/internal/types"
)

type fakePublisher struct {
	published []*types.PositionFix
	err       error
}

func (f *fakePublisher) PublishPositionFix(fix *types.PositionFix) error {
	if f.err != nil {
		return f.err
	}
	copied := *fix
	f.published = append(f.published, &copied)
	return nil
}

func TestProcessSentences(t *testing.T) {
	sentences := make(chan feed.Sentence, 4)
	sentences <- feed.Sentence{
		Source:    "gps0:10110",
		Raw:       "$GPRMC,093000,A,0631.4640,N,00322.7520,E,10.0,90.0,010324,,*1A",
		Timestamp: time.Now().UTC(),
	}
	sentences <- feed.Sentence{
		Source:    "gps0:10110",
		Raw:       "not an nmea sentence",
		Timestamp: time.Now().UTC(),
	}
	sentences <- feed.Sentence{
		// GSV carries no position, parses to nil fix
		Source:    "gps0:10110",
		Raw:       "$GPGSV,3,1,11,03,03,111,00,04,15,270,00,06,01,010,00,13,06,292,00*74",
		Timestamp: time.Now().UTC(),
	}
	close(sentences)

	pub := &fakePublisher{}
	st := stats.New()

	processSentences(sentences, pub, st)

	if len(pub.published) != 1 {
		t.Fatalf("published %d fixes, want 1", len(pub.published))
	}

	fix := pub.published[0]
	if math.Abs(fix.Latitude-6.5244) > 0.0001 {
		t.Errorf("Latitude = %v, want 6.5244", fix.Latitude)
	}
	if math.Abs(fix.Longitude-3.3792) > 0.0001 {
		t.Errorf("Longitude = %v, want 3.3792", fix.Longitude)
	}
	if fix.Source != "gps0:10110" {
		t.Errorf("Source = %q, want gps0:10110", fix.Source)
	}

	snapshot := st.GetStats()
	if snapshot["fixes_received"] != uint64(3) {
		t.Errorf("fixes_received = %v, want 3", snapshot["fixes_received"])
	}
	if snapshot["fixes_rejected"] != uint64(1) {
		t.Errorf("fixes_rejected = %v, want 1", snapshot["fixes_rejected"])
	}
	if snapshot["fixes_applied"] != uint64(1) {
		t.Errorf("fixes_applied = %v, want 1", snapshot["fixes_applied"])
	}
}

func TestProcessSentences_PublishFailure(t *testing.T) {
	sentences := make(chan feed.Sentence, 1)
	sentences <- feed.Sentence{
		Source:    "gps0:10110",
		Raw:       "$GPRMC,093000,A,0631.4640,N,00322.7520,E,10.0,90.0,010324,,*1A",
		Timestamp: time.Now().UTC(),
	}
	close(sentences)

	pub := &fakePublisher{err: errors.New("broker down")}
	st := stats.New()

	// Must not panic; the fix is dropped and not counted as applied
	processSentences(sentences, pub, st)

	if snapshot := st.GetStats(); snapshot["fixes_applied"] != uint64(0) {
		t.Errorf("fixes_applied = %v, want 0", snapshot["fixes_applied"])
	}
}
