// internal/config/defaults.go
package config

// Default returns the ESP32 devkit layout.
// Candidate sets are deploy-time data; board variants override them in YAML.
func Default() *Config {
	return &Config{
		Board: BoardConfig{Name: "esp32-devkit"},
		GPIO: GPIOConfig{
			Driver: DriverSysfs,
			Pins:   []int{2, 4, 5, 16, 17, 18, 19, 21, 22, 23, 25, 26, 27, 32, 33},
			Root:   "/sys/class/gpio",
		},
		I2C: I2CConfig{
			Driver: DriverSysfs,
			Buses: []BusConfig{
				{ID: 0, SCL: 22, SDA: 21},
				{ID: 1, SCL: 25, SDA: 26},
			},
		},
		WiFi: WiFiConfig{
			Driver:    DriverSysfs,
			Interface: "wlan0",
		},
		System: SystemConfig{
			Driver:   DriverSysfs,
			FreqPath: "/sys/devices/system/cpu/cpu0/cpufreq/scaling_cur_freq",
			TempPath: "/sys/class/thermal/thermal_zone0/temp",
		},
		Modbus: ModbusConfig{
			Mode:      "tcp",
			UnitID:    1,
			TimeoutMs: 1000,
			Area:      "discrete",
			BaudRate:  19200,
			DataBits:  8,
			Parity:    "E",
			StopBits:  1,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Sink: SinkConfig{
			Redis: RedisConfig{
				Channel:   "board_probe",
				TimeoutMs: 2000,
			},
		},
	}
}
