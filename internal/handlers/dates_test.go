package handlers

import (
	"encoding/json"
	"testing"
	"time"
)

func TestDateUnmarshal(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    time.Time
		wantErr bool
	}{
		{"bare_date", `"2024-05-03"`, time.Date(2024, 5, 3, 0, 0, 0, 0, time.UTC), false},
		{"rfc3339", `"2024-05-03T12:30:00Z"`, time.Date(2024, 5, 3, 12, 30, 0, 0, time.UTC), false},
		{"null", `null`, time.Time{}, false},
		{"garbage", `"yesterday"`, time.Time{}, true},
		{"number", `20240503`, time.Time{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d Date
			err := json.Unmarshal([]byte(tt.input), &d)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if !d.Time.Equal(tt.want) {
				t.Errorf("got %v, want %v", d.Time, tt.want)
			}
		})
	}
}

func TestParseDateEndOfDay(t *testing.T) {
	got, err := parseDate("2024-05-31", time.UTC, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := time.Date(2024, 5, 31, 23, 59, 59, 999999999, time.UTC)
	if !got.Equal(want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestDateIn(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}

	tests := []struct {
		name  string
		input string
		want  time.Time
	}{
		{"bare_date_in_location", `"2024-05-01"`, time.Date(2024, 5, 1, 0, 0, 0, 0, ny)},
		{"rfc3339_keeps_offset", `"2024-05-01T02:00:00Z"`, time.Date(2024, 5, 1, 2, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d Date
			if err := json.Unmarshal([]byte(tt.input), &d); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := d.In(ny); !got.Equal(tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}

	t.Run("zero_value", func(t *testing.T) {
		if got := (Date{}).In(ny); !got.IsZero() {
			t.Errorf("expected zero time, got %v", got)
		}
	})
}
