// internal/config/config.go
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Device  DeviceConfig  `yaml:"device"`
	Nodes   NodesConfig   `yaml:"nodes"`
	Logging LoggingConfig `yaml:"logging"`
	Sinks   SinksConfig   `yaml:"sinks"`
}

// ---- DEVICE ----

type DeviceConfig struct {
	VendorID       uint16 `yaml:"vendor_id"`
	ProductID      uint16 `yaml:"product_id"`
	ReadTimeoutMs  int    `yaml:"read_timeout_ms"`
	ScanIntervalMs int    `yaml:"scan_interval_ms"`
}

// ---- NODES ----

type NodesConfig struct {
	Dir string `yaml:"dir"`
}

// ---- LOGGING ----

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// ---- SINKS ----

type SinksConfig struct {
	Console ConsoleSinkConfig `yaml:"console"`
	MQTT    MQTTSinkConfig    `yaml:"mqtt"`
	Influx  InfluxSinkConfig  `yaml:"influxdb"`
	Modbus  ModbusSinkConfig  `yaml:"modbus_mirror"`
}

type ConsoleSinkConfig struct {
	Enabled bool `yaml:"enabled"`
}

type MQTTSinkConfig struct {
	Enabled     bool   `yaml:"enabled"`
	Broker      string `yaml:"broker"`
	ClientID    string `yaml:"client_id"`
	Username    string `yaml:"username"`
	Password    string `yaml:"password"`
	StateTopic  string `yaml:"state_topic"`
	StatusTopic string `yaml:"status_topic"`
	QoS         uint8  `yaml:"qos"`
}

type InfluxSinkConfig struct {
	Enabled   bool   `yaml:"enabled"`
	URL       string `yaml:"url"`
	Token     string `yaml:"token"`
	Org       string `yaml:"org"`
	Bucket    string `yaml:"bucket"`
	BatchSize uint   `yaml:"batch_size"`
}

type ModbusSinkConfig struct {
	Enabled    bool   `yaml:"enabled"`
	Endpoint   string `yaml:"endpoint"`
	UnitID     uint8  `yaml:"unit_id"`
	TimeoutMs  int    `yaml:"timeout_ms"`
	ValueBase  uint16 `yaml:"value_base"`
	StatusBase uint16 `yaml:"status_base"`
	DeviceName string `yaml:"device_name"`
}

// Load reads and parses one yaml config file. Validation and
// normalization are separate, explicit steps.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}

	return &cfg, nil
}
