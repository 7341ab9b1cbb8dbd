package environ

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"cloudpico-matrix/internal/config"
	"cloudpico-matrix/internal/poll"
)

func newTestMQTTSource(stationID string) *MQTTSource {
	cfg := config.Config{
		MQTTBroker:    "localhost",
		MQTTPort:      1883,
		MQTTClientID:  "test",
		MQTTTopic:     "stations/+/telemetry",
		MQTTStationID: stationID,
		ReadingMaxAge: time.Hour,
	}
	return NewMQTTSource(cfg, slog.New(slog.DiscardHandler))
}

func TestMQTTSource_HandleMessage(t *testing.T) {
	ts := time.Now().UTC().Format(time.RFC3339)
	tests := []struct {
		name       string
		stationID  string
		payload    string
		wantStatus poll.Status
		wantTemp   int
	}{
		{
			name:       "full reading",
			payload:    `{"station_id":"home","timestamp":"` + ts + `","temperature_c":19.6,"pressure_hpa":1011.2}`,
			wantStatus: poll.StatusOK,
			wantTemp:   19,
		},
		{
			name:       "matching station",
			stationID:  "home",
			payload:    `{"station_id":"home","timestamp":"` + ts + `","temperature_c":-2.5,"pressure_hpa":990}`,
			wantStatus: poll.StatusOK,
			wantTemp:   -3,
		},
		{
			name:       "other station",
			stationID:  "garden",
			payload:    `{"station_id":"home","timestamp":"` + ts + `","temperature_c":19,"pressure_hpa":1011}`,
			wantStatus: poll.StatusRetry,
		},
		{
			name:       "humidity only",
			payload:    `{"station_id":"home","timestamp":"` + ts + `","humidity_pct":40}`,
			wantStatus: poll.StatusRetry,
		},
		{
			name:       "invalid json",
			payload:    `{"station_id":`,
			wantStatus: poll.StatusRetry,
		},
		{
			name:       "fails validation",
			payload:    `{"station_id":"","timestamp":"` + ts + `","temperature_c":19,"pressure_hpa":1011}`,
			wantStatus: poll.StatusRetry,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestMQTTSource(tt.stationID)
			s.handleMessage("stations/home/telemetry", []byte(tt.payload))

			res := s.Fetch(context.Background())
			if res.Status != tt.wantStatus {
				t.Fatalf("status = %v (%v); want %v", res.Status, res.Err, tt.wantStatus)
			}
			if res.Status == poll.StatusOK {
				if res.Value.Temperature != tt.wantTemp {
					t.Errorf("temperature = %d; want %d", res.Value.Temperature, tt.wantTemp)
				}
				if res.Value.StationID != "home" {
					t.Errorf("station = %q; want home", res.Value.StationID)
				}
			}
		})
	}
}

func TestMQTTSource_CloseWithoutConnect(t *testing.T) {
	s := newTestMQTTSource("")
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
	if err := s.Connect(context.Background()); err == nil {
		t.Error("Connect after Close succeeded; want error")
	}
}
