// Package environ provides EnvironmentReading sources for the environment
// display: the HTTP sensor endpoint, the cloudpico MQTT telemetry stream, a
// locally attached BME280 and BLE sensor advertisements.
package environ

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"cloudpico-matrix/internal/poll"
)

// Reading is one temperature/pressure sample truncated to integers.
type Reading struct {
	Temperature int       `json:"temperature"`
	Pressure    int       `json:"pressure"`
	StationID   string    `json:"stationId,omitempty"`
	Time        time.Time `json:"time"`
}

// NewReading floors both values.
func NewReading(temperature, pressure float64, at time.Time) Reading {
	return Reading{
		Temperature: int(math.Floor(temperature)),
		Pressure:    int(math.Floor(pressure)),
		Time:        at,
	}
}

type Source interface {
	Fetch(ctx context.Context) poll.Result[Reading]
	Close() error
}

// latest caches the newest reading of a push based source.
type latest struct {
	mu      sync.Mutex
	reading Reading
	has     bool

	maxAge time.Duration
	now    func() time.Time
}

func newLatest(maxAge time.Duration) *latest {
	return &latest{maxAge: maxAge, now: time.Now}
}

func (l *latest) store(r Reading) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.has && r.Time.Before(l.reading.Time) {
		return
	}
	l.reading = r
	l.has = true
}

func (l *latest) fetch() poll.Result[Reading] {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.has {
		return poll.Retry[Reading](fmt.Errorf("no reading received yet: %w", poll.ErrUnavailable))
	}
	if age := l.now().Sub(l.reading.Time); l.maxAge > 0 && age > l.maxAge {
		return poll.Retry[Reading](fmt.Errorf("last reading is %s old: %w", age.Round(time.Second), poll.ErrUnavailable))
	}
	return poll.OK(l.reading)
}
