package parser

import (
	"math"
	"testing"
	"time"
)

func TestParseSentence(t *testing.T) {
	received := time.Date(2024, 3, 1, 9, 30, 2, 0, time.UTC)

	tests := []struct {
		name    string
		raw     string
		wantErr bool
		wantNil bool
		wantLat float64
		wantLng float64
	}{
		{
			name:    "valid RMC fix",
			raw:     "$GPRMC,093000,A,0631.4640,N,00322.7520,E,10.0,90.0,010324,,*1A",
			wantLat: 6.5244,
			wantLng: 3.3792,
		},
		{
			name:    "RMC with void validity",
			raw:     "$GPRMC,093000,V,0631.4640,N,00322.7520,E,10.0,90.0,010324,,*0D",
			wantNil: true,
		},
		{
			name:    "valid GGA fix",
			raw:     "$GPGGA,093000,0631.4640,N,00322.7520,E,1,08,0.9,10.0,M,0.0,M,,*49",
			wantLat: 6.5244,
			wantLng: 3.3792,
		},
		{
			name:    "GGA with no fix",
			raw:     "$GPGGA,093000,0631.4640,N,00322.7520,E,0,00,99.9,10.0,M,0.0,M,,*70",
			wantNil: true,
		},
		{
			name:    "satellite sentence carries no position",
			raw:     "$GPGSV,3,1,11,03,03,111,00,04,15,270,00,06,01,010,00,13,06,292,00*74",
			wantNil: true,
		},
		{
			name:    "bad checksum",
			raw:     "$GPRMC,093000,A,0631.4640,N,00322.7520,E,10.0,90.0,010324,,*FF",
			wantErr: true,
		},
		{
			name:    "latitude out of range",
			raw:     "$GPRMC,093000,A,9131.0000,N,00322.7520,E,10.0,90.0,010324,,*12",
			wantErr: true,
		},
		{
			name:    "not a sentence",
			raw:     "hello world",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fix, err := ParseSentence(tt.raw, received)

			if tt.wantErr {
				if err == nil {
					t.Errorf("ParseSentence() expected error but got none")
				}
				return
			}
			if err != nil {
				t.Errorf("ParseSentence() unexpected error: %v", err)
				return
			}

			if tt.wantNil {
				if fix != nil {
					t.Errorf("ParseSentence() = %+v, want nil fix", fix)
				}
				return
			}

			if fix == nil {
				t.Fatal("ParseSentence() returned nil fix")
			}
			if math.Abs(fix.Latitude-tt.wantLat) > 1e-4 {
				t.Errorf("Latitude = %v, want %v", fix.Latitude, tt.wantLat)
			}
			if math.Abs(fix.Longitude-tt.wantLng) > 1e-4 {
				t.Errorf("Longitude = %v, want %v", fix.Longitude, tt.wantLng)
			}
		})
	}
}

func TestParseSentence_RMCFields(t *testing.T) {
	fix, err := ParseSentence("$GPRMC,093000,A,0631.4640,N,00322.7520,E,10.0,90.0,010324,,*1A", time.Now().UTC())
	if err != nil {
		t.Fatalf("ParseSentence() failed: %v", err)
	}
	if fix == nil {
		t.Fatal("ParseSentence() returned nil fix")
	}

	// 10 knots in meters per second
	if math.Abs(fix.Speed-5.14444) > 0.001 {
		t.Errorf("Speed = %v, want ~5.144 m/s", fix.Speed)
	}
	if fix.Heading != 90.0 {
		t.Errorf("Heading = %v, want 90", fix.Heading)
	}

	want := time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)
	if !fix.Timestamp.Equal(want) {
		t.Errorf("Timestamp = %v, want %v", fix.Timestamp, want)
	}
}

func TestParseSentence_GGAAccuracy(t *testing.T) {
	fix, err := ParseSentence("$GPGGA,093000,0631.4640,N,00322.7520,E,1,08,0.9,10.0,M,0.0,M,,*49", time.Now().UTC())
	if err != nil {
		t.Fatalf("ParseSentence() failed: %v", err)
	}
	if fix == nil {
		t.Fatal("ParseSentence() returned nil fix")
	}

	// HDOP 0.9 at the nominal 5 m ranging error
	if math.Abs(fix.Accuracy-4.5) > 0.001 {
		t.Errorf("Accuracy = %v, want 4.5", fix.Accuracy)
	}
}
