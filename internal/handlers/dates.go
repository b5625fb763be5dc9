package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

const dateLayout = "2006-01-02"

// Date is a request timestamp that accepts RFC 3339 or a bare
// YYYY-MM-DD date. Time holds the bare form at midnight UTC; use In to
// place it in the server's time zone.
type Date struct {
	time.Time
	raw string
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Date) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("date must be a string: %w", err)
	}
	t, err := parseDate(raw, time.UTC, false)
	if err != nil {
		return err
	}
	d.Time = t
	d.raw = raw
	return nil
}

// In returns the timestamp with a bare date taken as midnight in loc.
// RFC 3339 values keep the offset they were sent with.
func (d Date) In(loc *time.Location) time.Time {
	if d.raw == "" {
		return d.Time
	}
	t, err := parseDate(d.raw, loc, false)
	if err != nil {
		return d.Time
	}
	return t
}

// parseDate accepts RFC 3339 or YYYY-MM-DD in loc. With endOfDay, a bare date
// resolves to the last instant of that day so that ranges include it.
func parseDate(raw string, loc *time.Location, endOfDay bool) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		return t, nil
	}
	t, err := time.ParseInLocation(dateLayout, raw, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: use YYYY-MM-DD or RFC 3339", raw)
	}
	if endOfDay {
		t = time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 999999999, loc)
	}
	return t, nil
}
