package telemetry

import (
	"fmt"
	"time"
)

// Telemetry is a station message as published by the cloudpico gateway on
// stations/<id>/telemetry.
type Telemetry struct {
	StationID   string    `json:"station_id"`
	Timestamp   time.Time `json:"timestamp"`
	Temperature *float64  `json:"temperature_c,omitempty"`
	Humidity    *float64  `json:"humidity_pct,omitempty"`
	Pressure    *float64  `json:"pressure_hpa,omitempty"`
	Battery     *float64  `json:"battery_v,omitempty"`
	Sequence    *int      `json:"sequence,omitempty"`
}

// Validate applies the same rules as the cloudpico server ingest.
func (t Telemetry) Validate() error {
	if t.StationID == "" {
		return fmt.Errorf("station_id is required")
	}

	if t.Timestamp.IsZero() {
		return fmt.Errorf("timestamp is required")
	}

	if t.Humidity != nil {
		if *t.Humidity < 0 || *t.Humidity > 100 {
			return fmt.Errorf("humidity_pct out of range: %f (must be 0-100)", *t.Humidity)
		}
	}

	if t.Pressure != nil {
		if *t.Pressure <= 0 {
			return fmt.Errorf("pressure_hpa must be positive: %f", *t.Pressure)
		}
	}

	if t.Temperature == nil && t.Humidity == nil && t.Pressure == nil {
		return fmt.Errorf("at least one sensor reading (temperature, humidity, or pressure) is required")
	}

	return nil
}
