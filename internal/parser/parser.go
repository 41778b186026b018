package parser

import (
	"fmt"
	"time"

	"github.com/adrianmo/go-nmea"

	"github.com/tdawodu/waypoint/internal/geo"
	"github.com/tdawodu/waypoint/internal/types"
)

const (
	metersPerSecondPerKnot = 0.514444

	// nominalUEREMeters converts HDOP into a rough horizontal accuracy
	// estimate, assuming a typical consumer-GPS ranging error
	nominalUEREMeters = 5.0
)

// ParseSentence parses a raw NMEA 0183 sentence into a position fix.
// Sentences that carry no position (or mark their fix invalid) return a
// nil fix and no error. Malformed sentences and out-of-range
// coordinates are rejected here so they never reach a navigation
// session.
func ParseSentence(raw string, received time.Time) (*types.PositionFix, error) {
	sentence, err := nmea.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to parse NMEA sentence: %w", err)
	}

	switch m := sentence.(type) {
	case nmea.RMC:
		if m.Validity != nmea.ValidRMC {
			return nil, nil
		}
		if !geo.ValidCoordinate(m.Latitude, m.Longitude) {
			return nil, fmt.Errorf("coordinate out of range: %v, %v", m.Latitude, m.Longitude)
		}
		return &types.PositionFix{
			Latitude:  m.Latitude,
			Longitude: m.Longitude,
			Speed:     m.Speed * metersPerSecondPerKnot,
			Heading:   m.Course,
			Timestamp: rmcTimestamp(m, received),
		}, nil

	case nmea.GGA:
		if m.FixQuality == nmea.Invalid {
			return nil, nil
		}
		if !geo.ValidCoordinate(m.Latitude, m.Longitude) {
			return nil, fmt.Errorf("coordinate out of range: %v, %v", m.Latitude, m.Longitude)
		}
		return &types.PositionFix{
			Latitude:  m.Latitude,
			Longitude: m.Longitude,
			Accuracy:  m.HDOP * nominalUEREMeters,
			Timestamp: received,
		}, nil

	default:
		// GSV, GSA, VTG and friends carry no usable position
		return nil, nil
	}
}

// rmcTimestamp combines the RMC date and time fields, falling back to
// the receive time when the sentence omits them
func rmcTimestamp(m nmea.RMC, received time.Time) time.Time {
	if !m.Date.Valid || !m.Time.Valid {
		return received
	}
	return time.Date(
		2000+m.Date.YY, time.Month(m.Date.MM), m.Date.DD,
		m.Time.Hour, m.Time.Minute, m.Time.Second, m.Time.Millisecond*int(time.Millisecond),
		time.UTC,
	)
}
