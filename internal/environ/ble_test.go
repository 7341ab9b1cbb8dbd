package environ

import (
	"context"
	"encoding/binary"
	"log/slog"
	"math"
	"testing"
	"time"

	"cloudpico-matrix/internal/poll"
)

func payload(id uint32, temp, press, hum float32) []byte {
	b := make([]byte, payloadLen)
	b[0], b[1] = payloadMagic0, payloadMagic1
	binary.LittleEndian.PutUint32(b[2:], id)
	binary.LittleEndian.PutUint32(b[6:], math.Float32bits(temp))
	binary.LittleEndian.PutUint32(b[10:], math.Float32bits(press))
	binary.LittleEndian.PutUint32(b[14:], math.Float32bits(hum))
	return b
}

func TestParseAdvertisement(t *testing.T) {
	adv, err := parseAdvertisement(payload(7, 18.25, 1002.5, 55))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if adv.ReadingID != 7 || adv.Temperature != 18.25 || adv.Pressure != 1002.5 || adv.Humidity != 55 {
		t.Errorf("adv = %+v", adv)
	}

	bad := payload(1, 0, 0, 0)
	bad[1] = 0x00
	tests := map[string][]byte{
		"short":     payload(1, 0, 0, 0)[:10],
		"bad magic": bad,
		"empty":     nil,
	}
	for name, data := range tests {
		if _, err := parseAdvertisement(data); err == nil {
			t.Errorf("%s: want error", name)
		}
	}
}

func TestBLESource_HandleAdvertisement(t *testing.T) {
	s := &BLESource{
		logger: slog.New(slog.DiscardHandler),
		latest: newLatest(time.Minute),
		lastID: make(map[string]uint32),
	}

	if res := s.Fetch(context.Background()); res.Status != poll.StatusRetry {
		t.Fatalf("status before data = %v; want retry", res.Status)
	}

	s.handleAdvertisement("AA:BB", -60, []byte{0x01, 0xD0, 0x00}, time.Now())
	if res := s.Fetch(context.Background()); res.Status != poll.StatusRetry {
		t.Fatalf("status after garbage = %v; want retry", res.Status)
	}

	s.handleAdvertisement("AA:BB", -60, payload(3, 12.9, 1020.4, 40), time.Now())
	res := s.Fetch(context.Background())
	if res.Status != poll.StatusOK {
		t.Fatalf("status = %v (%v); want ok", res.Status, res.Err)
	}
	if res.Value.Temperature != 12 || res.Value.Pressure != 1020 || res.Value.StationID != "AA:BB" {
		t.Errorf("reading = %+v", res.Value)
	}

	if err := s.Close(); err != nil {
		t.Errorf("Close before Start: %v", err)
	}
}
