package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/tdawodu/waypoint/internal/directions"
	"github.com/tdawodu/waypoint/internal/geo"
	"github.com/tdawodu/waypoint/internal/types"
)

// DirectionsClient is the routing surface the API needs
type DirectionsClient interface {
	Fetch(ctx context.Context, origin, destination types.LatLng, mode string) (*types.Route, error)
}

// CommandPublisher sends trip commands to the navigation daemon
type CommandPublisher interface {
	PublishTripCommand(cmd *types.TripCommand) error
}

// TripCache reads live trip state
type TripCache interface {
	GetTrip(ctx context.Context, tripID string) (*types.Trip, error)
	GetLastFix(ctx context.Context, tripID string) (*types.PositionFix, error)
}

// PlaceStore is the saved-places persistence surface
type PlaceStore interface {
	CreateSavedPlace(place *types.SavedPlace) error
	ListSavedPlaces() ([]*types.SavedPlace, error)
	DeleteSavedPlace(id string) error
}

// Server is the waypoint HTTP API
type Server struct {
	directions DirectionsClient
	commands   CommandPublisher
	cache      TripCache
	places     PlaceStore
	hub        *Hub
}

// NewServer wires the API against its collaborators
func NewServer(directions DirectionsClient, commands CommandPublisher, cache TripCache, places PlaceStore, hub *Hub) *Server {
	return &Server{
		directions: directions,
		commands:   commands,
		cache:      cache,
		places:     places,
		hub:        hub,
	}
}

// Router builds the HTTP route table
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/health", s.handleHealth).Methods("GET")

	r.HandleFunc("/trips", s.handleStartTrip).Methods("POST")
	r.HandleFunc("/trips/{id}", s.handleGetTrip).Methods("GET")
	r.HandleFunc("/trips/{id}", s.handleStopTrip).Methods("DELETE")

	r.HandleFunc("/places", s.handleListPlaces).Methods("GET")
	r.HandleFunc("/places", s.handleCreatePlace).Methods("POST")
	r.HandleFunc("/places/{id}", s.handleDeletePlace).Methods("DELETE")

	r.HandleFunc("/directions", s.handleDirections).Methods("GET")

	r.HandleFunc("/subscription", s.handleSubscription).Methods("GET")
	r.HandleFunc("/auth/login", s.handleLogin).Methods("POST")

	if s.hub != nil {
		r.HandleFunc("/ws/guidance", s.hub.HandleWS).Methods("GET")
	}

	return r
}

func writeJSON(w http.ResponseWriter, code int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Warning: Failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, code int, message string) {
	writeJSON(w, code, map[string]string{"error": message})
}

// parseLatLng parses a "lat,lng" query value
func parseLatLng(s string) (types.LatLng, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return types.LatLng{}, fmt.Errorf("invalid lat,lng format")
	}

	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return types.LatLng{}, fmt.Errorf("invalid latitude: %v", err)
	}

	lng, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return types.LatLng{}, fmt.Errorf("invalid longitude: %v", err)
	}

	point := types.LatLng{Latitude: lat, Longitude: lng}
	if !geo.ValidCoordinate(lat, lng) {
		return types.LatLng{}, fmt.Errorf("coordinate out of range")
	}
	return point, nil
}

// directionsStatus maps a directions error to an HTTP status
func directionsStatus(err error) int {
	switch {
	case errors.Is(err, directions.ErrInvalidRequest):
		return http.StatusBadRequest
	case errors.Is(err, directions.ErrNoRoute):
		return http.StatusNotFound
	case errors.Is(err, directions.ErrTimeout):
		return http.StatusGatewayTimeout
	default:
		return http.StatusBadGateway
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type startTripRequest struct {
	Origin      types.LatLng `json:"origin"`
	Destination types.LatLng `json:"destination"`
	Mode        string       `json:"mode"`
}

type startTripResponse struct {
	TripID string       `json:"trip_id"`
	Route  *types.Route `json:"route"`
}

func (s *Server) handleStartTrip(w http.ResponseWriter, r *http.Request) {
	var req startTripRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !geo.ValidCoordinate(req.Origin.Latitude, req.Origin.Longitude) ||
		!geo.ValidCoordinate(req.Destination.Latitude, req.Destination.Longitude) {
		writeError(w, http.StatusBadRequest, "origin and destination must be valid coordinates")
		return
	}
	if req.Mode == "" {
		req.Mode = "driving"
	}

	route, err := s.directions.Fetch(r.Context(), req.Origin, req.Destination, req.Mode)
	if err != nil {
		writeError(w, directionsStatus(err), err.Error())
		return
	}

	tripID := uuid.New().String()
	cmd := &types.TripCommand{
		Action:      types.TripActionStart,
		TripID:      tripID,
		Route:       route,
		Origin:      req.Origin,
		Destination: req.Destination,
		Mode:        req.Mode,
		Timestamp:   time.Now().UTC(),
	}
	if err := s.commands.PublishTripCommand(cmd); err != nil {
		writeError(w, http.StatusServiceUnavailable, "failed to dispatch trip")
		return
	}

	writeJSON(w, http.StatusAccepted, startTripResponse{TripID: tripID, Route: route})
}

func (s *Server) handleStopTrip(w http.ResponseWriter, r *http.Request) {
	tripID := mux.Vars(r)["id"]

	cmd := &types.TripCommand{
		Action:    types.TripActionStop,
		TripID:    tripID,
		Timestamp: time.Now().UTC(),
	}
	if err := s.commands.PublishTripCommand(cmd); err != nil {
		writeError(w, http.StatusServiceUnavailable, "failed to dispatch stop")
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]string{"trip_id": tripID, "status": "stopping"})
}

type tripProgressResponse struct {
	Trip    *types.Trip        `json:"trip"`
	LastFix *types.PositionFix `json:"last_fix,omitempty"`
}

func (s *Server) handleGetTrip(w http.ResponseWriter, r *http.Request) {
	tripID := mux.Vars(r)["id"]

	trip, err := s.cache.GetTrip(r.Context(), tripID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load trip")
		return
	}
	if trip == nil {
		writeError(w, http.StatusNotFound, "trip not found")
		return
	}

	lastFix, err := s.cache.GetLastFix(r.Context(), tripID)
	if err != nil {
		log.Printf("Warning: Failed to load last fix for trip %s: %v", tripID, err)
		lastFix = nil
	}

	writeJSON(w, http.StatusOK, tripProgressResponse{Trip: trip, LastFix: lastFix})
}

func (s *Server) handleListPlaces(w http.ResponseWriter, r *http.Request) {
	places, err := s.places.ListSavedPlaces()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list places")
		return
	}
	if places == nil {
		places = []*types.SavedPlace{}
	}
	writeJSON(w, http.StatusOK, places)
}

func (s *Server) handleCreatePlace(w http.ResponseWriter, r *http.Request) {
	var place types.SavedPlace
	if err := json.NewDecoder(r.Body).Decode(&place); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if place.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	if !geo.ValidCoordinate(place.Latitude, place.Longitude) {
		writeError(w, http.StatusBadRequest, "latitude and longitude must be valid coordinates")
		return
	}

	place.ID = uuid.New().String()
	place.CreatedAt = time.Now().UTC()

	if err := s.places.CreateSavedPlace(&place); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to save place")
		return
	}

	writeJSON(w, http.StatusCreated, place)
}

func (s *Server) handleDeletePlace(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	if err := s.places.DeleteSavedPlace(id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeError(w, http.StatusNotFound, "place not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to delete place")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDirections(w http.ResponseWriter, r *http.Request) {
	from := r.URL.Query().Get("from")
	to := r.URL.Query().Get("to")
	mode := r.URL.Query().Get("mode")

	if from == "" || to == "" {
		writeError(w, http.StatusBadRequest, "both 'from' and 'to' parameters are required")
		return
	}
	if mode == "" {
		mode = "driving"
	}

	origin, err := parseLatLng(from)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid 'from' parameter: %v", err))
		return
	}
	destination, err := parseLatLng(to)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid 'to' parameter: %v", err))
		return
	}

	route, err := s.directions.Fetch(r.Context(), origin, destination, mode)
	if err != nil {
		writeError(w, directionsStatus(err), err.Error())
		return
	}

	writeJSON(w, http.StatusOK, route)
}

// handleSubscription serves a static subscription payload. There is no
// billing backend; clients only check the plan gate.
func (s *Server) handleSubscription(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"plan":      "premium",
		"status":    "active",
		"renews_at": time.Now().UTC().AddDate(0, 1, 0).Format(time.RFC3339),
		"features":  []string{"turn_by_turn", "voice_guidance", "live_traffic"},
	})
}

// handleLogin serves a static session token. Real authentication is out
// of scope; the client flow only needs a token-shaped response.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var creds struct {
		Username string `json:"username"`
	}
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if creds.Username == "" {
		writeError(w, http.StatusBadRequest, "username is required")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"token":    uuid.New().String(),
		"username": creds.Username,
		"expires":  time.Now().UTC().Add(24 * time.Hour).Format(time.RFC3339),
	})
}
