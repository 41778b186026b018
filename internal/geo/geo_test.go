package geo

import (
	"math"
	"testing"
)

func TestDistance(t *testing.T) {
	tests := []struct {
		name       string
		lat1, lng1 float64
		lat2, lng2 float64
		wantMeters float64
		tolerance  float64
	}{
		{
			name: "same point",
			lat1: 6.5244, lng1: 3.3792,
			lat2: 6.5244, lng2: 3.3792,
			wantMeters: 0,
			tolerance:  0.001,
		},
		{
			name: "lagos island to lekki",
			lat1: 6.5244, lng1: 3.3792,
			lat2: 6.4541, lng2: 3.4316,
			wantMeters: 9760,
			tolerance:  100,
		},
		{
			name: "one degree of latitude",
			lat1: 0, lng1: 0,
			lat2: 1, lng2: 0,
			wantMeters: 111195,
			tolerance:  50,
		},
		{
			name: "short hop under threshold",
			lat1: 6.52440, lng1: 3.37920,
			lat2: 6.52450, lng2: 3.37920,
			wantMeters: 11.1,
			tolerance:  0.5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Distance(tt.lat1, tt.lng1, tt.lat2, tt.lng2)
			if math.Abs(got-tt.wantMeters) > tt.tolerance {
				t.Errorf("Distance() = %v, want %v (±%v)", got, tt.wantMeters, tt.tolerance)
			}
		})
	}
}

func TestDistance_Symmetry(t *testing.T) {
	d1 := Distance(6.5244, 3.3792, 6.4541, 3.4316)
	d2 := Distance(6.4541, 3.4316, 6.5244, 3.3792)
	if math.Abs(d1-d2) > 1e-9 {
		t.Errorf("Distance is not symmetric: %v vs %v", d1, d2)
	}
}

func TestBearing(t *testing.T) {
	tests := []struct {
		name       string
		lat1, lng1 float64
		lat2, lng2 float64
		want       float64
		tolerance  float64
	}{
		{name: "due north", lat1: 0, lng1: 0, lat2: 1, lng2: 0, want: 0, tolerance: 0.01},
		{name: "due east", lat1: 0, lng1: 0, lat2: 0, lng2: 1, want: 90, tolerance: 0.01},
		{name: "due south", lat1: 1, lng1: 0, lat2: 0, lng2: 0, want: 180, tolerance: 0.01},
		{name: "due west", lat1: 0, lng1: 1, lat2: 0, lng2: 0, want: 270, tolerance: 0.01},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Bearing(tt.lat1, tt.lng1, tt.lat2, tt.lng2)
			if math.Abs(got-tt.want) > tt.tolerance {
				t.Errorf("Bearing() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestValidCoordinate(t *testing.T) {
	tests := []struct {
		name string
		lat  float64
		lng  float64
		want bool
	}{
		{name: "lagos", lat: 6.5244, lng: 3.3792, want: true},
		{name: "null island", lat: 0, lng: 0, want: true},
		{name: "boundary values", lat: -90, lng: 180, want: true},
		{name: "latitude out of range", lat: 91, lng: 0, want: false},
		{name: "longitude out of range", lat: 0, lng: -181, want: false},
		{name: "NaN latitude", lat: math.NaN(), lng: 0, want: false},
		{name: "infinite longitude", lat: 0, lng: math.Inf(1), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ValidCoordinate(tt.lat, tt.lng); got != tt.want {
				t.Errorf("ValidCoordinate(%v, %v) = %v, want %v", tt.lat, tt.lng, got, tt.want)
			}
		})
	}
}
