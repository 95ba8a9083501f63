// internal/config/normalize.go
package config

import "strings"

// Normalize applies post-validation normalization.
// It is allowed to mutate configuration.
// It MUST be called only after Validate().
func Normalize(cfg *Config) {
	if cfg == nil {
		return
	}

	cfg.GPIO.Driver = canon(cfg.GPIO.Driver)
	cfg.I2C.Driver = canon(cfg.I2C.Driver)
	cfg.WiFi.Driver = canon(cfg.WiFi.Driver)
	cfg.System.Driver = canon(cfg.System.Driver)

	cfg.Modbus.Mode = canon(cfg.Modbus.Mode)
	cfg.Modbus.Area = canon(cfg.Modbus.Area)
	cfg.Modbus.Parity = strings.ToUpper(strings.TrimSpace(cfg.Modbus.Parity))

	cfg.Log.Level = canon(cfg.Log.Level)
	cfg.Log.Format = canon(cfg.Log.Format)

	if strings.TrimSpace(cfg.WiFi.Interface) == "" {
		cfg.WiFi.Interface = "wlan0"
	}
	if cfg.Sink.Redis.Channel == "" {
		cfg.Sink.Redis.Channel = "board_probe"
	}

	// An empty map lets the sim drivers treat "absent key" uniformly.
	if cfg.Sim.Unavailable == nil {
		cfg.Sim.Unavailable = map[string]bool{}
	}
}

func canon(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
