// internal/config/normalize.go
package config

// Reference device identity: Holtek CO2Mini.
const (
	DefaultVendorID  = 0x04D9
	DefaultProductID = 0xA052
)

const (
	defaultReadTimeoutMs  = 5000
	defaultScanIntervalMs = 2000
	defaultNodeDir        = "/run/co2mond"
	defaultDeviceName     = "co2mini"
	deviceNameMaxChars    = 14 // stem; the mirror appends an index
)

// Normalize applies post-validation defaulting.
// It is allowed to mutate configuration.
// It MUST be called only after Validate().
func Normalize(cfg *Config) {
	if cfg == nil {
		return
	}

	if cfg.Device.VendorID == 0 {
		cfg.Device.VendorID = DefaultVendorID
	}
	if cfg.Device.ProductID == 0 {
		cfg.Device.ProductID = DefaultProductID
	}
	if cfg.Device.ReadTimeoutMs == 0 {
		cfg.Device.ReadTimeoutMs = defaultReadTimeoutMs
	}
	if cfg.Device.ScanIntervalMs == 0 {
		cfg.Device.ScanIntervalMs = defaultScanIntervalMs
	}

	if cfg.Nodes.Dir == "" {
		cfg.Nodes.Dir = defaultNodeDir
	}

	if cfg.Sinks.Modbus.Enabled {
		if cfg.Sinks.Modbus.DeviceName == "" {
			cfg.Sinks.Modbus.DeviceName = defaultDeviceName
		}
		// Truncate so the name stem plus index fits the status block.
		if len(cfg.Sinks.Modbus.DeviceName) > deviceNameMaxChars {
			cfg.Sinks.Modbus.DeviceName = cfg.Sinks.Modbus.DeviceName[:deviceNameMaxChars]
		}
	}
}
