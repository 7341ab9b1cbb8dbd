package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	AppEnv   string
	LogLevel slog.Level

	DisplayDriver     string
	SPIPort           string
	DisplayBrightness float64
	DisplayRotation   int

	EnvironSource       string
	EnvironHost         string
	EnvironTick         time.Duration
	EnvironRefreshTicks int
	EnvironBackoff      time.Duration
	ReadingMaxAge       time.Duration

	WeatherCity       string
	OpenWeatherAPIKey string
	OpenWeatherURL    string
	OpenWeatherIcons  string
	ForecastLead      time.Duration
	ForecastHold      time.Duration
	ForecastBackoff   time.Duration

	// IconsDir is the absolute path of the animated sprite sheets.
	// Set via ICONS_DIR (relative paths are resolved against the process working directory at startup).
	IconsDir        string
	AnimationFrame  time.Duration
	AnimationRepeat int

	HTTPTimeout time.Duration

	MQTTBroker    string
	MQTTPort      int
	MQTTClientID  string
	MQTTTopic     string
	MQTTStationID string

	BME280Address uint16
	BLEAdapter    string

	// StatusAddr enables the status HTTP server when non-empty.
	StatusAddr string
}

func LoadFromEnv() (Config, error) {
	appEnv := strings.TrimSpace(os.Getenv("APP_ENV"))
	if appEnv == "" {
		appEnv = "dev"
	}
	switch appEnv {
	case "dev", "prod":
	default:
		return Config{}, fmt.Errorf("invalid APP_ENV %q (allowed: dev, prod)", appEnv)
	}

	logLevelStr := strings.TrimSpace(os.Getenv("LOG_LEVEL"))
	if logLevelStr == "" {
		logLevelStr = "info"
	}
	level, err := parseLogLevel(logLevelStr)
	if err != nil {
		return Config{}, err
	}
	// DEBUG=<anything> is the historical switch for verbose output.
	if strings.TrimSpace(os.Getenv("DEBUG")) != "" {
		level = slog.LevelDebug
	}

	displayDriver := strings.ToLower(envOr("DISPLAY_DRIVER", "unicornhd"))
	switch displayDriver {
	case "unicornhd", "memory":
	default:
		return Config{}, fmt.Errorf("invalid DISPLAY_DRIVER %q (allowed: unicornhd, memory)", displayDriver)
	}

	brightnessStr := envOr("DISPLAY_BRIGHTNESS", "0.5")
	brightness, err := strconv.ParseFloat(brightnessStr, 64)
	if err != nil {
		return Config{}, fmt.Errorf("invalid DISPLAY_BRIGHTNESS %q: %w", brightnessStr, err)
	}
	if brightness < 0 || brightness > 1 {
		return Config{}, fmt.Errorf("DISPLAY_BRIGHTNESS must be within [0, 1], got %v", brightness)
	}

	rotationStr := envOr("DISPLAY_ROTATION", "0")
	rotation, err := strconv.Atoi(rotationStr)
	if err != nil {
		return Config{}, fmt.Errorf("invalid DISPLAY_ROTATION %q: %w", rotationStr, err)
	}
	switch rotation {
	case 0, 90, 180, 270:
	default:
		return Config{}, fmt.Errorf("invalid DISPLAY_ROTATION %d (allowed: 0, 90, 180, 270)", rotation)
	}

	environSource := strings.ToLower(envOr("ENVIRON_SOURCE", "http"))
	switch environSource {
	case "http", "mqtt", "bme280", "ble":
	default:
		return Config{}, fmt.Errorf("invalid ENVIRON_SOURCE %q (allowed: http, mqtt, bme280, ble)", environSource)
	}

	environTick, err := positiveDuration("ENVIRON_TICK", "100ms")
	if err != nil {
		return Config{}, err
	}
	refreshTicks, err := positiveInt("ENVIRON_REFRESH_TICKS", "2048")
	if err != nil {
		return Config{}, err
	}
	environBackoff, err := positiveDuration("ENVIRON_BACKOFF", "60s")
	if err != nil {
		return Config{}, err
	}
	readingMaxAge, err := positiveDuration("READING_MAX_AGE", "10m")
	if err != nil {
		return Config{}, err
	}

	forecastLead, err := positiveDuration("FORECAST_LEAD", "2h")
	if err != nil {
		return Config{}, err
	}
	forecastHold, err := positiveDuration("FORECAST_HOLD", "30m")
	if err != nil {
		return Config{}, err
	}
	forecastBackoff, err := positiveDuration("FORECAST_BACKOFF", "90s")
	if err != nil {
		return Config{}, err
	}

	iconsDir := envOr("ICONS_DIR", filepath.Join("weather-icons", "icons"))
	iconsDir, err = filepath.Abs(iconsDir)
	if err != nil {
		return Config{}, fmt.Errorf("ICONS_DIR %q: %w", iconsDir, err)
	}
	animationFrame, err := positiveDuration("ANIMATION_FRAME", "500ms")
	if err != nil {
		return Config{}, err
	}
	animationRepeat, err := positiveInt("ANIMATION_REPEAT", "300")
	if err != nil {
		return Config{}, err
	}

	httpTimeout, err := positiveDuration("HTTP_TIMEOUT", "10s")
	if err != nil {
		return Config{}, err
	}

	mqttPortStr := envOr("MQTT_PORT", "1883")
	mqttPort, err := strconv.Atoi(mqttPortStr)
	if err != nil {
		return Config{}, fmt.Errorf("invalid MQTT_PORT %q: %w", mqttPortStr, err)
	}

	bme280AddressStr := envOr("BME280_ADDRESS", "0x76")
	bme280Address, err := strconv.ParseUint(bme280AddressStr, 0, 16)
	if err != nil {
		return Config{}, fmt.Errorf("invalid BME280_ADDRESS %q: %w", bme280AddressStr, err)
	}

	return Config{
		AppEnv:   appEnv,
		LogLevel: level,

		DisplayDriver:     displayDriver,
		SPIPort:           strings.TrimSpace(os.Getenv("SPI_PORT")),
		DisplayBrightness: brightness,
		DisplayRotation:   rotation,

		EnvironSource:       environSource,
		EnvironHost:         envOr("ENVIRO_HOST", "localhost"),
		EnvironTick:         environTick,
		EnvironRefreshTicks: refreshTicks,
		EnvironBackoff:      environBackoff,
		ReadingMaxAge:       readingMaxAge,

		WeatherCity:       strings.TrimSpace(os.Getenv("WEATHER_CITY")),
		OpenWeatherAPIKey: strings.TrimSpace(os.Getenv("OPENWEATHER_API_KEY")),
		OpenWeatherURL:    envOr("OPENWEATHER_BASE_URL", "https://api.openweathermap.org/data/2.5/forecast"),
		OpenWeatherIcons:  envOr("OPENWEATHER_ICON_URL", "http://openweathermap.org/img/w"),
		ForecastLead:      forecastLead,
		ForecastHold:      forecastHold,
		ForecastBackoff:   forecastBackoff,

		IconsDir:        iconsDir,
		AnimationFrame:  animationFrame,
		AnimationRepeat: animationRepeat,

		HTTPTimeout: httpTimeout,

		MQTTBroker:    envOr("MQTT_BROKER", "localhost"),
		MQTTPort:      mqttPort,
		MQTTClientID:  envOr("MQTT_CLIENT_ID", "cloudpico-matrix"),
		MQTTTopic:     envOr("MQTT_TOPIC", "stations/+/telemetry"),
		MQTTStationID: strings.TrimSpace(os.Getenv("MQTT_STATION_ID")),

		BME280Address: uint16(bme280Address),
		BLEAdapter:    envOr("BLE_ADAPTER", "hci0"),

		StatusAddr: strings.TrimSpace(os.Getenv("STATUS_ADDR")),
	}, nil
}

// RequireForecast reports missing settings for the forecast commands.
func (c Config) RequireForecast() error {
	var errs []error
	if c.WeatherCity == "" {
		errs = append(errs, errors.New("WEATHER_CITY is required"))
	}
	if c.OpenWeatherAPIKey == "" {
		errs = append(errs, errors.New("OPENWEATHER_API_KEY is required"))
	}
	return errors.Join(errs...)
}

func envOr(key, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}

func positiveDuration(key, def string) (time.Duration, error) {
	s := envOr(key, def)
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, s, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s must be positive, got %v", key, d)
	}
	return d, nil
}

func positiveInt(key, def string) (int, error) {
	s := envOr(key, def)
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, s, err)
	}
	if n <= 0 {
		return 0, fmt.Errorf("%s must be positive, got %d", key, n)
	}
	return n, nil
}

func parseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid LOG_LEVEL %q (allowed: debug, info, warn, error)", s)
	}
}
