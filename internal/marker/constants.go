// internal/marker/constants.go
package marker

// Marker line layout constants.
// These values define the host contract and MUST NOT be configurable.

// Tag identifies the payload shape carried by a marker line.
type Tag string

// ---- CLOSED TAG SET ----

// TagGPIO carries pin_<n> -> 0|1.
const TagGPIO Tag = "GPIO_STATE"

// TagI2C carries a deduplicated list of 7-bit bus addresses.
const TagI2C Tag = "I2C_DEVICES"

// TagMonitor carries memory, clock and timestamp metrics.
const TagMonitor Tag = "MONITOR_DATA"

// TagWiFi carries visible network records.
const TagWiFi Tag = "WIFI_SCAN"

// Tags lists every valid tag.
var Tags = []Tag{TagGPIO, TagI2C, TagMonitor, TagWiFi}

// ---- SENTINEL FRAMING ----

// sentinelFence wraps the tag on both sides: __GPIO_STATE__
const sentinelFence = "__"

// Valid reports whether t belongs to the closed set.
func (t Tag) Valid() bool {
	switch t {
	case TagGPIO, TagI2C, TagMonitor, TagWiFi:
		return true
	default:
		return false
	}
}

// Sentinel is the literal line prefix for t.
func (t Tag) Sentinel() string {
	return sentinelFence + string(t) + sentinelFence
}
