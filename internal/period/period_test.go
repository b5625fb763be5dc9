package period

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestResolve(t *testing.T) {
	now := time.Date(2024, time.July, 14, 10, 30, 0, 0, time.UTC)

	tests := []struct {
		name      string
		month     int
		year      int
		wantMonth int
		wantYear  int
		wantEnd   time.Time
	}{
		{"leap february", 2, 2024, 2, 2024, time.Date(2024, 2, 29, 23, 59, 59, 999999999, time.UTC)},
		{"common february", 2, 2023, 2, 2023, time.Date(2023, 2, 28, 23, 59, 59, 999999999, time.UTC)},
		{"thirty day month", 4, 2024, 4, 2024, time.Date(2024, 4, 30, 23, 59, 59, 999999999, time.UTC)},
		{"december", 12, 2025, 12, 2025, time.Date(2025, 12, 31, 23, 59, 59, 999999999, time.UTC)},
		{"defaults to now", 0, 0, 7, 2024, time.Date(2024, 7, 31, 23, 59, 59, 999999999, time.UTC)},
		{"month only", 3, 0, 3, 2024, time.Date(2024, 3, 31, 23, 59, 59, 999999999, time.UTC)},
		{"year only", 0, 2021, 7, 2021, time.Date(2021, 7, 31, 23, 59, 59, 999999999, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Resolve(tt.month, tt.year, now, time.UTC)

			assert.Equal(t, tt.wantMonth, p.Month)
			assert.Equal(t, tt.wantYear, p.Year)
			assert.Equal(t, time.Date(tt.wantYear, time.Month(tt.wantMonth), 1, 0, 0, 0, 0, time.UTC), p.Start)
			assert.Equal(t, tt.wantEnd, p.End)
		})
	}
}

func TestResolveUsesLocation(t *testing.T) {
	loc := time.FixedZone("UTC+10", 10*60*60)
	// 2024-03-31 20:00 UTC is already April in UTC+10.
	now := time.Date(2024, time.March, 31, 20, 0, 0, 0, time.UTC)

	p := Current(now, loc)

	assert.Equal(t, 4, p.Month)
	assert.Equal(t, 2024, p.Year)
	assert.Equal(t, loc, p.Start.Location())
}

func TestParse(t *testing.T) {
	now := time.Date(2024, time.July, 14, 0, 0, 0, 0, time.UTC)

	p := Parse("2", "2024", now, time.UTC)
	assert.Equal(t, 2, p.Month)
	assert.Equal(t, 29, p.End.Day())

	p = Parse("", "", now, time.UTC)
	assert.Equal(t, 7, p.Month)
	assert.Equal(t, 2024, p.Year)

	p = Parse("abc", " 2022 ", now, time.UTC)
	assert.Equal(t, 7, p.Month)
	assert.Equal(t, 2022, p.Year)
}

func TestParseValid(t *testing.T) {
	now := time.Date(2024, 7, 15, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		month     string
		year      string
		wantMonth int
		wantYear  int
		wantOK    bool
	}{
		{"defaults", "", "", 7, 2024, true},
		{"explicit", "2", "2023", 2, 2023, true},
		{"month_13", "13", "2024", 0, 0, false},
		{"month_negative", "-1", "2024", 0, 0, false},
		{"year_2019", "5", "2019", 0, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, ok := ParseValid(tt.month, tt.year, now, time.UTC)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.wantMonth, p.Month)
				assert.Equal(t, tt.wantYear, p.Year)
			}
		})
	}
}

func TestContains(t *testing.T) {
	p := Resolve(5, 2024, time.Now(), time.UTC)

	assert.True(t, p.Contains(p.Start))
	assert.True(t, p.Contains(p.End))
	assert.True(t, p.Contains(time.Date(2024, 5, 31, 23, 59, 59, 0, time.UTC)))
	assert.False(t, p.Contains(p.Start.Add(-time.Nanosecond)))
	assert.False(t, p.Contains(time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)))
}

func TestValid(t *testing.T) {
	assert.True(t, Valid(1, 2020))
	assert.True(t, Valid(12, 2099))
	assert.False(t, Valid(0, 2024))
	assert.False(t, Valid(13, 2024))
	assert.False(t, Valid(5, 2019))
}

func TestMonthName(t *testing.T) {
	assert.Equal(t, "February", Resolve(2, 2024, time.Now(), time.UTC).MonthName())
}
