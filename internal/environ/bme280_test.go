package environ

import (
	"context"
	"errors"
	"testing"
	"time"

	"periph.io/x/conn/v3/physic"

	"cloudpico-matrix/internal/poll"
)

type fakeSensor struct {
	env    physic.Env
	err    error
	halted bool
}

func (f *fakeSensor) Sense(e *physic.Env) error {
	if f.err != nil {
		return f.err
	}
	*e = f.env
	return nil
}

func (f *fakeSensor) Halt() error {
	f.halted = true
	return nil
}

func TestBME280Source_Fetch(t *testing.T) {
	dev := &fakeSensor{env: physic.Env{
		Temperature: physic.ZeroCelsius + 21500*physic.MilliKelvin,
		Pressure:    101325 * physic.Pascal,
	}}
	s := &BME280Source{dev: dev, now: time.Now}

	res := s.Fetch(context.Background())
	if res.Status != poll.StatusOK {
		t.Fatalf("status = %v (%v); want ok", res.Status, res.Err)
	}
	if res.Value.Temperature != 21 || res.Value.Pressure != 1013 {
		t.Errorf("reading = %+v; want 21, 1013", res.Value)
	}

	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if !dev.halted {
		t.Error("sensor not halted")
	}
}

func TestBME280Source_SenseError(t *testing.T) {
	s := &BME280Source{dev: &fakeSensor{err: errors.New("i2c nack")}, now: time.Now}
	res := s.Fetch(context.Background())
	if res.Status != poll.StatusRetry || !errors.Is(res.Err, poll.ErrUnavailable) {
		t.Errorf("result = %v, %v; want retry with ErrUnavailable", res.Status, res.Err)
	}
}
