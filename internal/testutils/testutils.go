package testutils

import (
	"context"
	"fmt"
	"time"

	"github.com/tdawodu/waypoint/internal/types"
)

// MockFix creates a position fix at the given coordinates for testing
func MockFix(lat, lng float64) *types.PositionFix {
	return &types.PositionFix{
		Latitude:  lat,
		Longitude: lng,
		Accuracy:  5.0,
		Timestamp: time.Now().UTC(),
		Source:    "test-source",
	}
}

// MockRoute creates a single-leg route through the given waypoints
func MockRoute(waypoints ...types.LatLng) *types.Route {
	steps := make([]types.Step, 0, len(waypoints))
	for i, wp := range waypoints {
		steps = append(steps, types.Step{
			EndLocation: wp,
			Instruction: fmt.Sprintf("Step %d", i+1),
		})
	}
	return &types.Route{Legs: []types.Leg{{Steps: steps}}}
}

// WaitForCondition waits for a condition to be true with timeout
func WaitForCondition(condition func() bool, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("timeout waiting for condition")
		case <-ticker.C:
			if condition() {
				return nil
			}
		}
	}
}
