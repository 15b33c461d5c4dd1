package config

import (
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/KyleBrandon/irrigation-server/internal/irrigation"
	"github.com/KyleBrandon/irrigation-server/internal/sensor"
)

const DefaultLogLevel = slog.LevelInfo

type Config struct {
	Devices                       []sensor.DeviceConfig `json:"devices"`
	OriginPatterns                []string              `json:"origin_patterns"`
	Settings                      irrigation.Settings   `json:"settings"`
	SuppressWateringWhileNotified bool                  `json:"suppress_watering_while_notified"`
	MockMoisture                  int                   `json:"mock_moisture"`
	TickIntervalMillis            int                   `json:"tick_interval_ms"`
	HeartbeatSeconds              int                   `json:"heartbeat_seconds"`
}

// LoadConfigSettings reads the JSON config file. Settings missing from the
// file keep their defaults.
func LoadConfigSettings(filename string) (Config, error) {
	config := Config{
		Settings:     irrigation.DefaultSettings(),
		MockMoisture: sensor.DEFAULT_MOCK_MOISTURE,
	}

	file, err := os.Open(filename)
	if err != nil {
		return config, err
	}

	defer file.Close()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return config, err
	}

	err = json.Unmarshal(bytes, &config)
	if err != nil {
		return config, err
	}

	return config, nil
}

func (c Config) TickInterval() time.Duration {
	if c.TickIntervalMillis <= 0 {
		return 0
	}

	return time.Duration(c.TickIntervalMillis) * time.Millisecond
}

func (c Config) HeartbeatInterval() time.Duration {
	if c.HeartbeatSeconds <= 0 {
		return 0
	}

	return time.Duration(c.HeartbeatSeconds) * time.Second
}
