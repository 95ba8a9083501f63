// internal/probe/security.go
package probe

// Security labels reported in the security field of a network record.
const (
	SecurityOpen    = "Open"
	SecurityWEP     = "WEP"
	SecurityWPAPSK  = "WPA-PSK"
	SecurityWPA2PSK = "WPA2-PSK"
	SecurityWPAWPA2 = "WPA/WPA2-PSK"
	SecurityUnknown = "Unknown"
)

// SecurityLabel maps a driver security ordinal to its label.
// Total: ordinals outside 0-4 vary by radio revision and map to Unknown.
func SecurityLabel(ordinal int) string {
	switch ordinal {
	case 0:
		return SecurityOpen
	case 1:
		return SecurityWEP
	case 2:
		return SecurityWPAPSK
	case 3:
		return SecurityWPA2PSK
	case 4:
		return SecurityWPAWPA2
	default:
		return SecurityUnknown
	}
}
