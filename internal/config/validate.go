// internal/config/validate.go
package config

import (
	"fmt"
)

// Validate checks configuration correctness.
// It performs declarative validation only.
// It MUST NOT mutate configuration.
func Validate(cfg *Config) error {
	// ------------------------------------------------------------
	// DEVICE
	// ------------------------------------------------------------

	if cfg.Device.ReadTimeoutMs < 0 {
		return fmt.Errorf("device: read_timeout_ms must not be negative")
	}
	if cfg.Device.ScanIntervalMs < 0 {
		return fmt.Errorf("device: scan_interval_ms must not be negative")
	}

	// ------------------------------------------------------------
	// LOGGING
	// ------------------------------------------------------------

	switch cfg.Logging.Level {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logging: unknown level %q", cfg.Logging.Level)
	}
	switch cfg.Logging.Format {
	case "", "json", "text":
	default:
		return fmt.Errorf("logging: unknown format %q", cfg.Logging.Format)
	}

	// ------------------------------------------------------------
	// SINKS
	// ------------------------------------------------------------

	if cfg.Sinks.MQTT.Enabled {
		if cfg.Sinks.MQTT.QoS > 2 {
			return fmt.Errorf("mqtt sink: qos %d out of range", cfg.Sinks.MQTT.QoS)
		}
	}

	if cfg.Sinks.Influx.Enabled {
		if cfg.Sinks.Influx.URL == "" {
			return fmt.Errorf("influxdb sink: url required")
		}
		if cfg.Sinks.Influx.Token == "" {
			return fmt.Errorf("influxdb sink: token required")
		}
		if cfg.Sinks.Influx.Org == "" || cfg.Sinks.Influx.Bucket == "" {
			return fmt.Errorf("influxdb sink: org and bucket required")
		}
	}

	if cfg.Sinks.Modbus.Enabled {
		if cfg.Sinks.Modbus.Endpoint == "" {
			return fmt.Errorf("modbus_mirror sink: endpoint required")
		}
		if cfg.Sinks.Modbus.TimeoutMs < 0 {
			return fmt.Errorf("modbus_mirror sink: timeout_ms must not be negative")
		}

		// device_name sanity (ASCII only)
		name := cfg.Sinks.Modbus.DeviceName
		for i := 0; i < len(name); i++ {
			if name[i] > 0x7F {
				return fmt.Errorf("modbus_mirror sink: device_name must contain ASCII characters only")
			}
		}
	}

	return nil
}
