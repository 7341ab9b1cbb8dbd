package environ

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"cloudpico-matrix/internal/config"
	"cloudpico-matrix/internal/poll"
	"cloudpico-matrix/internal/telemetry"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// MQTTSource subscribes to station telemetry and serves the newest reading
// that carries both temperature and pressure.
type MQTTSource struct {
	client    mqtt.Client
	cfg       config.Config
	logger    *slog.Logger
	mu        sync.RWMutex
	connected bool

	stopCh   chan struct{}
	stopOnce sync.Once

	latest *latest
}

func NewMQTTSource(cfg config.Config, logger *slog.Logger) *MQTTSource {
	s := &MQTTSource{
		cfg:    cfg,
		logger: logger,
		stopCh: make(chan struct{}),
		latest: newLatest(cfg.ReadingMaxAge),
	}

	opts := mqtt.NewClientOptions()
	opts.AddBroker(fmt.Sprintf("tcp://%s:%d", cfg.MQTTBroker, cfg.MQTTPort))
	opts.SetClientID(cfg.MQTTClientID)
	opts.SetCleanSession(true)

	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectRetryInterval(5 * time.Second)
	opts.SetMaxReconnectInterval(60 * time.Second)

	opts.SetKeepAlive(30 * time.Second)
	opts.SetPingTimeout(10 * time.Second)

	// Subscribing here keeps the subscription across reconnects.
	opts.SetOnConnectHandler(func(c mqtt.Client) {
		s.setConnected(true)
		logger.Info("mqtt connected", "broker", cfg.MQTTBroker, "port", cfg.MQTTPort)
		if err := s.subscribe(c); err != nil {
			logger.Error("mqtt subscribe failed", "topic", cfg.MQTTTopic, "error", err)
		}
	})

	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		s.setConnected(false)
		logger.Warn("mqtt connection lost", "error", err)
	})

	s.client = mqtt.NewClient(opts)
	return s
}

// Connect blocks until the broker accepted the connection, ctx is done or
// the source was closed.
func (s *MQTTSource) Connect(ctx context.Context) error {
	select {
	case <-s.stopCh:
		return fmt.Errorf("mqtt source closed")
	default:
	}

	if s.IsConnected() {
		return nil
	}

	token := s.client.Connect()

	const step = 200 * time.Millisecond
	for {
		if token.WaitTimeout(step) {
			if err := token.Error(); err != nil {
				return fmt.Errorf("mqtt connect: %w", err)
			}
			return nil
		}

		select {
		case <-ctx.Done():
			s.client.Disconnect(0)
			return ctx.Err()
		case <-s.stopCh:
			return fmt.Errorf("mqtt source closed")
		default:
		}
	}
}

func (s *MQTTSource) subscribe(c mqtt.Client) error {
	topic := s.cfg.MQTTTopic
	qos := byte(1)

	token := c.Subscribe(topic, qos, func(_ mqtt.Client, msg mqtt.Message) {
		s.handleMessage(msg.Topic(), msg.Payload())
	})
	if !token.WaitTimeout(5 * time.Second) {
		return fmt.Errorf("subscribe timeout for topic %s", topic)
	}
	if token.Error() != nil {
		return fmt.Errorf("subscribe to %s: %w", topic, token.Error())
	}

	s.logger.Info("subscribed to mqtt topic", "topic", topic, "qos", qos)
	return nil
}

func (s *MQTTSource) handleMessage(topic string, payload []byte) {
	s.logger.Debug("received mqtt message", "topic", topic, "size", len(payload))

	var t telemetry.Telemetry
	if err := json.Unmarshal(payload, &t); err != nil {
		s.logger.Warn("failed to parse telemetry message",
			"topic", topic,
			"error", err,
			"payload", string(payload),
		)
		return
	}

	if err := t.Validate(); err != nil {
		s.logger.Warn("invalid telemetry message",
			"topic", topic,
			"station_id", t.StationID,
			"error", err,
		)
		return
	}

	if s.cfg.MQTTStationID != "" && t.StationID != s.cfg.MQTTStationID {
		return
	}
	if t.Temperature == nil || t.Pressure == nil {
		s.logger.Debug("telemetry without temperature or pressure", "station_id", t.StationID)
		return
	}

	r := NewReading(*t.Temperature, *t.Pressure, t.Timestamp)
	r.StationID = t.StationID
	s.latest.store(r)

	s.logger.Debug("stored telemetry reading",
		"station_id", t.StationID,
		"timestamp", t.Timestamp,
	)
}

func (s *MQTTSource) Fetch(context.Context) poll.Result[Reading] {
	return s.latest.fetch()
}

func (s *MQTTSource) IsConnected() bool {
	s.mu.RLock()
	connected := s.connected
	s.mu.RUnlock()
	return connected && s.client.IsConnected()
}

// Close unsubscribes and disconnects. Safe to call more than once.
func (s *MQTTSource) Close() error {
	s.stopOnce.Do(func() { close(s.stopCh) })

	if s.IsConnected() {
		token := s.client.Unsubscribe(s.cfg.MQTTTopic)
		token.WaitTimeout(2 * time.Second)
	}
	s.client.Disconnect(250)

	s.setConnected(false)
	s.logger.Info("mqtt source disconnected")
	return nil
}

func (s *MQTTSource) setConnected(v bool) {
	s.mu.Lock()
	s.connected = v
	s.mu.Unlock()
}
