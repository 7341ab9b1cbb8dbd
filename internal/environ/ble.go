package environ

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"tinygo.org/x/bluetooth"

	"cloudpico-matrix/internal/poll"
)

// Manufacturer id used by the sensor beacons (reserved for testing).
const bleCompanyID = 0xFFFF

// BLESource scans for sensor beacon advertisements and serves the newest one.
type BLESource struct {
	adapter *bluetooth.Adapter
	name    string
	logger  *slog.Logger
	latest  *latest

	mu     sync.Mutex
	lastID map[string]uint32
	cancel context.CancelFunc
	done   chan struct{}
}

func NewBLESource(adapterName string, maxAge time.Duration, logger *slog.Logger) *BLESource {
	if adapterName == "" {
		adapterName = "hci0"
	}
	return &BLESource{
		adapter: newAdapter(adapterName),
		name:    adapterName,
		logger:  logger,
		latest:  newLatest(maxAge),
		lastID:  make(map[string]uint32),
	}
}

// Start enables the adapter and scans in the background until ctx is done
// or Close is called.
func (s *BLESource) Start(ctx context.Context) error {
	s.logger.Info("ble: enabling adapter", "adapter", s.name)
	if err := s.adapter.Enable(); err != nil {
		return fmt.Errorf("ble enable (%s): %w", s.name, err)
	}

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})

	go func() {
		<-ctx.Done()
		_ = s.adapter.StopScan()
	}()

	go func() {
		defer close(s.done)
		s.logger.Info("ble: scanning started", "company", fmt.Sprintf("0x%04X", bleCompanyID))
		err := s.adapter.Scan(func(_ *bluetooth.Adapter, r bluetooth.ScanResult) {
			for _, md := range r.ManufacturerData() {
				if md.CompanyID != bleCompanyID || !bytes.HasPrefix(md.Data, payloadPrefix) {
					continue
				}
				s.handleAdvertisement(r.Address.String(), r.RSSI, md.Data, time.Now())
				return
			}
		})
		if err != nil && ctx.Err() == nil {
			s.logger.Warn("ble: scan stopped", "error", err)
			return
		}
		s.logger.Info("ble: scanning stopped")
	}()
	return nil
}

func (s *BLESource) handleAdvertisement(addr string, rssi int16, data []byte, at time.Time) {
	adv, err := parseAdvertisement(data)
	if err != nil {
		s.logger.Debug("ble: ignore non-sensor payload", "addr", addr, "error", err)
		return
	}

	s.mu.Lock()
	last, seen := s.lastID[addr]
	s.lastID[addr] = adv.ReadingID
	s.mu.Unlock()

	r := NewReading(adv.Temperature, adv.Pressure, at)
	r.StationID = addr
	s.latest.store(r)

	if seen && last == adv.ReadingID {
		return
	}
	s.logger.Debug("ble: sensor reading",
		"addr", addr,
		"reading_id", adv.ReadingID,
		"rssi", rssi,
		"T", adv.Temperature, "P", adv.Pressure, "H", adv.Humidity,
		"data", fmt.Sprintf("% X", data),
	)
}

func (s *BLESource) Fetch(context.Context) poll.Result[Reading] {
	return s.latest.fetch()
}

func (s *BLESource) Close() error {
	if s.cancel == nil {
		return nil
	}
	s.cancel()
	<-s.done
	return nil
}
