package server

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"
)

func newRangeRequest(start, end string) *http.Request {
	q := url.Values{}
	if start != "" {
		q.Set("start", start)
	}
	if end != "" {
		q.Set("end", end)
	}
	return httptest.NewRequest(http.MethodGet, "/api/v1/workouts?"+q.Encode(), nil)
}

// TestParseTimeRange verifies query parameter parsing for workout range
// endpoints, including the current-week default.
func TestParseTimeRange(t *testing.T) {
	t.Run("explicit RFC3339 range", func(t *testing.T) {
		req := newRangeRequest("2025-03-01T00:00:00Z", "2025-03-08T00:00:00Z")
		start, end, err := parseTimeRange(req)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !start.Equal(time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)) {
			t.Errorf("start = %v", start)
		}
		if !end.Equal(time.Date(2025, 3, 8, 0, 0, 0, 0, time.UTC)) {
			t.Errorf("end = %v", end)
		}
	})

	t.Run("date-only end is inclusive", func(t *testing.T) {
		req := newRangeRequest("2025-03-01", "2025-03-07")
		start, end, err := parseTimeRange(req)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !start.Equal(time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)) {
			t.Errorf("start = %v", start)
		}
		// date-only end extends through the whole day
		if !end.Equal(time.Date(2025, 3, 8, 0, 0, 0, 0, time.UTC)) {
			t.Errorf("end = %v", end)
		}
	})

	t.Run("default is current week", func(t *testing.T) {
		req := newRangeRequest("", "")
		start, end, err := parseTimeRange(req)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if start.Weekday() != time.Monday {
			t.Errorf("default start weekday = %v, want Monday", start.Weekday())
		}
		if end.Before(start) {
			t.Errorf("end %v before start %v", end, start)
		}
	})

	t.Run("garbage start", func(t *testing.T) {
		req := newRangeRequest("yesterday", "")
		if _, _, err := parseTimeRange(req); err == nil {
			t.Fatal("expected error, got nil")
		}
	})
}
