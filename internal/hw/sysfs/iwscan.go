// internal/hw/sysfs/iwscan.go
package sysfs

import (
	"bufio"
	"fmt"
	"net"
	"strconv"
	"strings"

	"github.com/tamzrod/board-probe/internal/probe"
)

// Security ordinals, numbered like the ESP-IDF wifi_auth_mode_t so the
// host sees the same codes from every board. 5-7 have no label and map to
// "Unknown" in the probe.
const (
	authOpen        = 0
	authWEP         = 1
	authWPAPSK      = 2
	authWPA2PSK     = 3
	authWPAWPA2PSK  = 4
	authWPA2Ent     = 5
	authWPA3PSK     = 6
	authWPA2WPA3PSK = 7
)

// bssBlock accumulates the fields of one "BSS" section.
type bssBlock struct {
	ap      probe.AccessPoint
	freq    int
	privacy bool
	wpa     bool
	rsn     bool
	inRSN   bool
	rsnAuth string
}

// ParseIWScan parses `iw dev <if> scan` output into access points,
// preserving the order iw printed them in.
func ParseIWScan(out string) ([]probe.AccessPoint, error) {
	var aps []probe.AccessPoint
	var cur *bssBlock

	flush := func() {
		if cur == nil {
			return
		}
		if cur.ap.Channel == 0 {
			cur.ap.Channel = channelFromFreq(cur.freq)
		}
		cur.ap.Security = cur.security()
		aps = append(aps, cur.ap)
	}

	sc := bufio.NewScanner(strings.NewReader(out))
	for sc.Scan() {
		line := sc.Text()

		if strings.HasPrefix(line, "BSS ") {
			flush()
			mac, err := parseBSSHeader(line)
			if err != nil {
				return nil, err
			}
			cur = &bssBlock{ap: probe.AccessPoint{BSSID: mac}}
			continue
		}
		if cur == nil {
			continue
		}

		// RSN sub-fields are indented one level deeper than block fields.
		if cur.inRSN && strings.HasPrefix(line, "\t\t") {
			if v, ok := field(line, "* Authentication suites:"); ok {
				cur.rsnAuth = v
			}
			continue
		}
		cur.inRSN = false

		text := strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(text, "SSID:"):
			cur.ap.SSID = unescapeSSID(strings.TrimPrefix(strings.TrimPrefix(text, "SSID:"), " "))
		case strings.HasPrefix(text, "freq:"):
			f, _ := strconv.ParseFloat(strings.TrimSpace(strings.TrimPrefix(text, "freq:")), 64)
			cur.freq = int(f)
		case strings.HasPrefix(text, "signal:"):
			v := strings.Fields(strings.TrimPrefix(text, "signal:"))
			if len(v) > 0 {
				s, _ := strconv.ParseFloat(v[0], 64)
				cur.ap.RSSI = int(s)
			}
		case strings.HasPrefix(text, "DS Parameter set: channel"):
			cur.ap.Channel, _ = strconv.Atoi(strings.TrimSpace(strings.TrimPrefix(text, "DS Parameter set: channel")))
		case strings.HasPrefix(text, "* primary channel:"):
			if cur.ap.Channel == 0 {
				cur.ap.Channel, _ = strconv.Atoi(strings.TrimSpace(strings.TrimPrefix(text, "* primary channel:")))
			}
		case strings.HasPrefix(text, "capability:"):
			cur.privacy = strings.Contains(text, "Privacy")
		case strings.HasPrefix(text, "RSN:"):
			cur.rsn = true
			cur.inRSN = true
			if v, ok := field(text, "* Authentication suites:"); ok {
				cur.rsnAuth = v
			}
		case strings.HasPrefix(text, "WPA:"):
			cur.wpa = true
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("iw scan: %w", err)
	}
	flush()

	return aps, nil
}

func (b *bssBlock) security() int {
	switch {
	case b.rsn:
		auth := strings.Fields(b.rsnAuth)
		hasPSK, hasSAE, has8021X := false, false, false
		for _, a := range auth {
			switch a {
			case "PSK", "PSK/SHA-256":
				hasPSK = true
			case "SAE":
				hasSAE = true
			case "IEEE", "802.1X", "802.1X/SHA-256":
				has8021X = true
			}
		}
		switch {
		case has8021X && !hasPSK && !hasSAE:
			return authWPA2Ent
		case hasSAE && hasPSK:
			return authWPA2WPA3PSK
		case hasSAE:
			return authWPA3PSK
		case b.wpa:
			return authWPAWPA2PSK
		default:
			return authWPA2PSK
		}
	case b.wpa:
		return authWPAPSK
	case b.privacy:
		return authWEP
	default:
		return authOpen
	}
}

// parseBSSHeader extracts the MAC from "BSS aa:bb:cc:dd:ee:ff(on wlan0) -- associated".
func parseBSSHeader(line string) ([]byte, error) {
	rest := strings.TrimPrefix(line, "BSS ")
	if i := strings.IndexAny(rest, "( "); i >= 0 {
		rest = rest[:i]
	}
	mac, err := net.ParseMAC(rest)
	if err != nil {
		return nil, fmt.Errorf("iw scan: bad BSS header %q: %w", line, err)
	}
	return mac, nil
}

// field returns the text after key when line (trimmed) contains it.
func field(line, key string) (string, bool) {
	i := strings.Index(line, key)
	if i < 0 {
		return "", false
	}
	return strings.TrimSpace(line[i+len(key):]), true
}

// unescapeSSID reverses iw's \xNN escaping of non-printable bytes.
func unescapeSSID(s string) []byte {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+3 < len(s) && s[i+1] == 'x' {
			if v, err := strconv.ParseUint(s[i+2:i+4], 16, 8); err == nil {
				out = append(out, byte(v))
				i += 3
				continue
			}
		}
		out = append(out, s[i])
	}
	return out
}

// channelFromFreq maps a centre frequency in MHz to its channel number.
func channelFromFreq(mhz int) int {
	switch {
	case mhz == 2484:
		return 14
	case mhz >= 2412 && mhz <= 2472:
		return (mhz - 2407) / 5
	case mhz >= 5955 && mhz <= 7115:
		return (mhz - 5950) / 5
	case mhz >= 5000 && mhz <= 5900:
		return (mhz - 5000) / 5
	default:
		return 0
	}
}
