// internal/config/validate_test.go
package config

import (
	"strings"
	"testing"
)

func TestValidate_EmptyConfigIsValid(t *testing.T) {
	if err := Validate(&Config{}); err != nil {
		t.Fatalf("Validate() err=%v", err)
	}
}

func TestValidate_BadQoS(t *testing.T) {
	cfg := &Config{}
	cfg.Sinks.MQTT.Enabled = true
	cfg.Sinks.MQTT.QoS = 3

	if err := Validate(cfg); err == nil || !strings.Contains(err.Error(), "qos") {
		t.Fatalf("err=%v want qos error", err)
	}
}

func TestValidate_InfluxRequiresDestination(t *testing.T) {
	cfg := &Config{}
	cfg.Sinks.Influx.Enabled = true
	cfg.Sinks.Influx.URL = "http://localhost:8086"

	if err := Validate(cfg); err == nil || !strings.Contains(err.Error(), "token") {
		t.Fatalf("err=%v want token error", err)
	}
}

func TestValidate_ModbusDeviceNameASCII(t *testing.T) {
	cfg := &Config{}
	cfg.Sinks.Modbus.Enabled = true
	cfg.Sinks.Modbus.Endpoint = "127.0.0.1:502"
	cfg.Sinks.Modbus.DeviceName = "sensörü"

	if err := Validate(cfg); err == nil || !strings.Contains(err.Error(), "ASCII") {
		t.Fatalf("err=%v want ASCII error", err)
	}
}

func TestValidate_UnknownLogLevel(t *testing.T) {
	cfg := &Config{}
	cfg.Logging.Level = "verbose"

	if err := Validate(cfg); err == nil {
		t.Fatal("expected error for unknown level")
	}
}

func TestNormalize_Defaults(t *testing.T) {
	cfg := &Config{}
	Normalize(cfg)

	if cfg.Device.VendorID != DefaultVendorID || cfg.Device.ProductID != DefaultProductID {
		t.Fatalf("device identity=%04x:%04x", cfg.Device.VendorID, cfg.Device.ProductID)
	}
	if cfg.Device.ReadTimeoutMs != 5000 {
		t.Fatalf("read_timeout_ms=%d want 5000", cfg.Device.ReadTimeoutMs)
	}
	if cfg.Nodes.Dir == "" {
		t.Fatal("node dir must default")
	}
}

func TestNormalize_TruncatesDeviceName(t *testing.T) {
	cfg := &Config{}
	cfg.Sinks.Modbus.Enabled = true
	cfg.Sinks.Modbus.DeviceName = "a-very-long-device-name"
	Normalize(cfg)

	if len(cfg.Sinks.Modbus.DeviceName) > 14 {
		t.Fatalf("device_name=%q not truncated", cfg.Sinks.Modbus.DeviceName)
	}
}
