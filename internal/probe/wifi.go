// internal/probe/wifi.go
package probe

import (
	"context"
	"fmt"
	"net"
	"strings"
	"unicode/utf8"
)

// Network is one visible network as reported to the host.
type Network struct {
	SSID     string `json:"ssid"`
	BSSID    string `json:"bssid"`
	Channel  int    `json:"channel"`
	RSSI     int    `json:"rssi"`
	Security string `json:"security"`
}

// ScanWiFi activates the station interface and runs one blocking scan.
// Records keep the driver's order. Activation or scan failure fails the probe.
func ScanWiFi(ctx context.Context, r Radio) ([]Network, error) {
	if err := r.Activate(ctx); err != nil {
		return nil, fmt.Errorf("wifi: activate: %w", err)
	}

	aps, err := r.Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("wifi: scan: %w", err)
	}

	out := make([]Network, 0, len(aps))
	for _, ap := range aps {
		out = append(out, Network{
			SSID:     DecodeSSID(ap.SSID),
			BSSID:    FormatBSSID(ap.BSSID),
			Channel:  ap.Channel,
			RSSI:     ap.RSSI,
			Security: SecurityLabel(ap.Security),
		})
	}

	return out, nil
}

// DecodeSSID renders raw SSID bytes as text.
// Invalid UTF-8 sequences are replaced; nil or empty yields "".
func DecodeSSID(raw []byte) string {
	if len(raw) == 0 {
		return ""
	}
	if utf8.Valid(raw) {
		return string(raw)
	}
	return strings.ToValidUTF8(string(raw), string(utf8.RuneError))
}

// FormatBSSID renders hardware address bytes as lowercase colon-separated hex.
func FormatBSSID(b []byte) string {
	return net.HardwareAddr(b).String()
}
