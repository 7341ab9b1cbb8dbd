package environ

import (
	"context"
	"errors"
	"fmt"
	"time"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/devices/v3/bmxx80"
	"periph.io/x/host/v3"

	"cloudpico-matrix/internal/poll"
)

// sensor is the part of *bmxx80.Dev the source needs.
type sensor interface {
	Sense(e *physic.Env) error
	Halt() error
}

// BME280Source reads a BME280 on the default I²C bus.
type BME280Source struct {
	dev sensor
	bus i2c.BusCloser
	now func() time.Time
}

func OpenBME280(addr uint16) (*BME280Source, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("host init: %w", err)
	}

	bus, err := i2creg.Open("") // default bus, usually /dev/i2c-1
	if err != nil {
		return nil, fmt.Errorf("open i2c bus: %w", err)
	}

	dev, err := bmxx80.NewI2C(bus, addr, &bmxx80.DefaultOpts)
	if err != nil {
		_ = bus.Close()
		return nil, fmt.Errorf("bme280 at 0x%02X: %w", addr, err)
	}

	return &BME280Source{dev: dev, bus: bus, now: time.Now}, nil
}

func (s *BME280Source) Fetch(context.Context) poll.Result[Reading] {
	var env physic.Env
	if err := s.dev.Sense(&env); err != nil {
		return poll.Retry[Reading](fmt.Errorf("bme280 sense: %v: %w", err, poll.ErrUnavailable))
	}

	pressure := float64(env.Pressure) / float64(100*physic.Pascal) // hPa
	return poll.OK(NewReading(env.Temperature.Celsius(), pressure, s.now()))
}

func (s *BME280Source) Close() error {
	err := s.dev.Halt()
	if s.bus != nil {
		err = errors.Join(err, s.bus.Close())
	}
	return err
}
