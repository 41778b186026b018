package directions

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/tdawodu/waypoint/internal/geo"
	"github.com/tdawodu/waypoint/internal/types"
)

// Failure kinds surfaced to the caller. Retry policy belongs to the
// caller; the client never retries.
var (
	ErrInvalidRequest = errors.New("invalid directions request")
	ErrNoRoute        = errors.New("no route found")
	ErrTimeout        = errors.New("directions request timed out")
	ErrProvider       = errors.New("directions provider error")
)

// Valhalla error code for unroutable locations
const errCodeNoRoute = 170

// Client fetches routes from a Valhalla-compatible routing service
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a directions client with the given request timeout
func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

type wireLocation struct {
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
	Type string  `json:"type"`
}

type wireRequest struct {
	Locations []wireLocation `json:"locations"`
	Costing   string         `json:"costing"`
	Units     string         `json:"units"`
}

type wireManeuver struct {
	Type            int     `json:"type"`
	Instruction     string  `json:"instruction"`
	Length          float64 `json:"length"`
	Time            float64 `json:"time"`
	EndShapeIndex   int     `json:"end_shape_index"`
	BeginShapeIndex int     `json:"begin_shape_index"`
}

type wireLeg struct {
	Maneuvers []wireManeuver `json:"maneuvers"`
	Shape     string         `json:"shape"`
	Summary   struct {
		Time   float64 `json:"time"`
		Length float64 `json:"length"`
	} `json:"summary"`
}

type wireResponse struct {
	Trip struct {
		Legs    []wireLeg `json:"legs"`
		Summary struct {
			Time   float64 `json:"time"`
			Length float64 `json:"length"`
		} `json:"summary"`
	} `json:"trip"`
}

type wireError struct {
	ErrorCode int    `json:"error_code"`
	Error     string `json:"error"`
	Status    string `json:"status"`
}

// Fetch requests a route between origin and destination for the given
// travel mode ("driving", "walking", "bicycling"). The returned route
// is immutable; callers replace it wholesale by fetching again.
func (c *Client) Fetch(ctx context.Context, origin, destination types.LatLng, mode string) (*types.Route, error) {
	if !geo.ValidCoordinate(origin.Latitude, origin.Longitude) ||
		!geo.ValidCoordinate(destination.Latitude, destination.Longitude) {
		return nil, fmt.Errorf("%w: coordinates out of range", ErrInvalidRequest)
	}
	costing, err := costingForMode(mode)
	if err != nil {
		return nil, err
	}

	body, err := json.Marshal(wireRequest{
		Locations: []wireLocation{
			{Lat: origin.Latitude, Lon: origin.Longitude, Type: "break"},
			{Lat: destination.Latitude, Lon: destination.Longitude, Type: "break"},
		},
		Costing: costing,
		Units:   "kilometers",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/route", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if isTimeout(err) {
			return nil, fmt.Errorf("%w: %v", ErrTimeout, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrProvider, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, decodeError(resp)
	}

	var wire wireResponse
	if err := json.NewDecoder(resp.Body).Decode(&wire); err != nil {
		return nil, fmt.Errorf("%w: unexpected payload: %v", ErrProvider, err)
	}
	if len(wire.Trip.Legs) == 0 {
		return nil, ErrNoRoute
	}

	return buildRoute(&wire, mode)
}

func costingForMode(mode string) (string, error) {
	switch mode {
	case "", "driving":
		return "auto", nil
	case "walking":
		return "pedestrian", nil
	case "bicycling":
		return "bicycle", nil
	default:
		return "", fmt.Errorf("%w: unknown mode %q", ErrInvalidRequest, mode)
	}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func decodeError(resp *http.Response) error {
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: status %d", ErrProvider, resp.StatusCode)
	}

	var wire wireError
	if err := json.Unmarshal(raw, &wire); err == nil && wire.ErrorCode != 0 {
		if wire.ErrorCode == errCodeNoRoute {
			return fmt.Errorf("%w: locations are not connected", ErrNoRoute)
		}
		return fmt.Errorf("%w: %s", ErrProvider, wire.Error)
	}

	if resp.StatusCode == http.StatusBadRequest {
		return fmt.Errorf("%w: status %d: %s", ErrInvalidRequest, resp.StatusCode, string(raw))
	}
	return fmt.Errorf("%w: status %d: %s", ErrProvider, resp.StatusCode, string(raw))
}

// buildRoute converts the provider payload into the shared route model.
// Each maneuver's end location comes from its end index into the leg's
// encoded shape.
func buildRoute(wire *wireResponse, mode string) (*types.Route, error) {
	route := &types.Route{
		DistanceM: wire.Trip.Summary.Length * 1000,
		DurationS: wire.Trip.Summary.Time,
		Mode:      mode,
	}

	for _, wl := range wire.Trip.Legs {
		shape := decodeShape(wl.Shape)

		leg := types.Leg{
			DistanceM: wl.Summary.Length * 1000,
			DurationS: wl.Summary.Time,
		}
		for _, m := range wl.Maneuvers {
			if m.EndShapeIndex < 0 || m.EndShapeIndex >= len(shape) {
				return nil, fmt.Errorf("%w: maneuver shape index %d out of range", ErrProvider, m.EndShapeIndex)
			}
			leg.Steps = append(leg.Steps, types.Step{
				EndLocation: shape[m.EndShapeIndex],
				Instruction: m.Instruction,
				Maneuver:    maneuverName(m.Type),
				DistanceM:   m.Length * 1000,
			})
		}
		route.Legs = append(route.Legs, leg)
	}

	if len(route.Steps()) == 0 {
		return nil, ErrNoRoute
	}
	return route, nil
}

// decodeShape decodes a Valhalla encoded polyline (1e6 precision)
func decodeShape(encoded string) []types.LatLng {
	var points []types.LatLng
	var lat, lng int64

	index := 0
	for index < len(encoded) {
		dLat, next, ok := decodeVarint(encoded, index)
		if !ok {
			return points
		}
		index = next
		dLng, next, ok := decodeVarint(encoded, index)
		if !ok {
			return points
		}
		index = next

		lat += dLat
		lng += dLng
		points = append(points, types.LatLng{
			Latitude:  float64(lat) / 1e6,
			Longitude: float64(lng) / 1e6,
		})
	}
	return points
}

func decodeVarint(encoded string, index int) (int64, int, bool) {
	var result int64
	var shift uint
	for {
		if index >= len(encoded) {
			return 0, index, false
		}
		b := int64(encoded[index]) - 63
		index++
		result |= (b & 0x1f) << shift
		shift += 5
		if b < 0x20 {
			break
		}
	}
	if result&1 != 0 {
		return ^(result >> 1), index, true
	}
	return result >> 1, index, true
}

func maneuverName(code int) string {
	switch code {
	case 1, 2, 3:
		return "start"
	case 4, 5, 6:
		return "destination"
	case 8:
		return "continue"
	case 9, 10, 11:
		return "right"
	case 12, 13:
		return "uturn"
	case 14, 15, 16:
		return "left"
	case 26, 27:
		return "roundabout"
	default:
		return ""
	}
}
