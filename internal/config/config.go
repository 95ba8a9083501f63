// internal/config/config.go
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Driver names accepted by the per-subsystem `driver` keys.
const (
	DriverSysfs  = "sysfs"
	DriverModbus = "modbus"
	DriverSim    = "sim"
)

type Config struct {
	Board   BoardConfig   `yaml:"board"`
	GPIO    GPIOConfig    `yaml:"gpio"`
	I2C     I2CConfig     `yaml:"i2c"`
	WiFi    WiFiConfig    `yaml:"wifi"`
	System  SystemConfig  `yaml:"system"`
	Modbus  ModbusConfig  `yaml:"modbus"`
	Sim     SimConfig     `yaml:"sim"`
	Log     LogConfig     `yaml:"log"`
	Sink    SinkConfig    `yaml:"sink"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// ---- BOARD ----

type BoardConfig struct {
	Name string `yaml:"name"`
}

// ---- GPIO ----

type GPIOConfig struct {
	Driver string `yaml:"driver"`
	Pins   []int  `yaml:"pins"` // fixed candidate set, reported in this order
	Root   string `yaml:"root"` // sysfs gpio class directory
}

// ---- I2C ----

type I2CConfig struct {
	Driver string      `yaml:"driver"`
	Buses  []BusConfig `yaml:"buses"`
}

// BusConfig names one bus and its clock/data pin pair.
// Device overrides the i2c-dev node derived from ID.
type BusConfig struct {
	ID     int    `yaml:"id"`
	SCL    int    `yaml:"scl"`
	SDA    int    `yaml:"sda"`
	Device string `yaml:"device"`
}

// ---- WIFI ----

type WiFiConfig struct {
	Driver    string `yaml:"driver"`
	Interface string `yaml:"interface"`
}

// ---- SYSTEM ----

type SystemConfig struct {
	Driver   string `yaml:"driver"`
	FreqPath string `yaml:"freq_path"` // cpufreq, kHz
	TempPath string `yaml:"temp_path"` // thermal zone, optional
}

// ---- MODBUS REMOTE I/O ----

type ModbusConfig struct {
	Mode      string `yaml:"mode"`     // tcp | rtu
	Endpoint  string `yaml:"endpoint"` // host:port or serial device
	UnitID    uint8  `yaml:"unit_id"`
	TimeoutMs int    `yaml:"timeout_ms"`

	// Pin n is read at AddressBase+n.
	AddressBase uint16 `yaml:"address_base"`
	Area        string `yaml:"area"` // discrete | coil

	BaudRate int    `yaml:"baud_rate"`
	DataBits int    `yaml:"data_bits"`
	Parity   string `yaml:"parity"`
	StopBits int    `yaml:"stop_bits"`
}

// ---- SIMULATED BOARD ----

type SimConfig struct {
	Levels      map[int]int     `yaml:"levels"` // pins not listed fail to read
	Buses       map[int][]int   `yaml:"buses"`  // bus ids not listed fail to open
	Networks    []SimNetwork    `yaml:"networks"`
	Memory      SimMemory       `yaml:"memory"`
	Freq        uint64          `yaml:"freq"`
	Temp        *float64        `yaml:"temp"`
	Unavailable map[string]bool `yaml:"unavailable"` // probe name -> subsystem missing
}

type SimNetwork struct {
	SSID     string `yaml:"ssid"`
	BSSID    string `yaml:"bssid"`
	Channel  int    `yaml:"channel"`
	RSSI     int    `yaml:"rssi"`
	Security int    `yaml:"security"`
}

type SimMemory struct {
	Free      uint64 `yaml:"free"`
	Allocated uint64 `yaml:"allocated"`
}

// ---- LOG / SINK / METRICS ----

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // text | json
}

type SinkConfig struct {
	Redis RedisConfig `yaml:"redis"`
}

// RedisConfig enables a PUBLISH tee of every marker line when Addr is set.
type RedisConfig struct {
	Addr      string `yaml:"addr"`
	Password  string `yaml:"password"`
	DB        int    `yaml:"db"`
	Channel   string `yaml:"channel"`
	TimeoutMs int    `yaml:"timeout_ms"`
}

type MetricsConfig struct {
	Textfile string `yaml:"textfile"`
}

// Load reads a YAML board file on top of Default().
// Keys absent from the file keep their default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}

	return cfg, nil
}
