package environ

import (
	"errors"
	"testing"
	"time"

	"cloudpico-matrix/internal/poll"
)

func TestNewReading_Floors(t *testing.T) {
	tests := []struct {
		temp, press float64
		wantT, wantP int
	}{
		{21.9, 1013.7, 21, 1013},
		{-0.5, 998.0, -1, 998},
		{-3.2, 1000.01, -4, 1000},
		{0, 0, 0, 0},
	}
	for _, tt := range tests {
		r := NewReading(tt.temp, tt.press, time.Time{})
		if r.Temperature != tt.wantT || r.Pressure != tt.wantP {
			t.Errorf("NewReading(%v, %v) = %d, %d; want %d, %d",
				tt.temp, tt.press, r.Temperature, r.Pressure, tt.wantT, tt.wantP)
		}
	}
}

func TestLatest(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	l := newLatest(time.Minute)
	l.now = func() time.Time { return now }

	res := l.fetch()
	if res.Status != poll.StatusRetry || !errors.Is(res.Err, poll.ErrUnavailable) {
		t.Fatalf("empty fetch = %v, %v; want retry with ErrUnavailable", res.Status, res.Err)
	}

	l.store(Reading{Temperature: 20, Pressure: 1000, Time: now.Add(-10 * time.Second)})
	if res := l.fetch(); res.Status != poll.StatusOK || res.Value.Temperature != 20 {
		t.Fatalf("fetch = %+v; want ok with 20", res)
	}

	// older readings never replace newer ones
	l.store(Reading{Temperature: 5, Pressure: 1000, Time: now.Add(-30 * time.Second)})
	if res := l.fetch(); res.Value.Temperature != 20 {
		t.Errorf("temperature = %d; want 20", res.Value.Temperature)
	}

	now = now.Add(2 * time.Minute)
	if res := l.fetch(); res.Status != poll.StatusRetry {
		t.Errorf("stale fetch status = %v; want retry", res.Status)
	}
}

func TestLatest_NoMaxAge(t *testing.T) {
	l := newLatest(0)
	l.store(Reading{Time: time.Unix(0, 0)})
	if res := l.fetch(); res.Status != poll.StatusOK {
		t.Errorf("status = %v; want ok", res.Status)
	}
}
