// internal/probe/probe_test.go
package probe

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/tamzrod/board-probe/internal/clock"
	"github.com/tamzrod/board-probe/internal/marker"
)

var epoch = time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)

func encode(t *testing.T, kind Kind, payload any) string {
	t.Helper()
	line, err := marker.Encode(kind.Tag(), payload)
	if err != nil {
		t.Fatalf("marker.Encode err=%v", err)
	}
	return string(line)
}

// ---- GPIO ----

func TestGPIO_FailedPinOmitted(t *testing.T) {
	pins := &fakePins{levels: map[int]int{2: 1}} // pin 4 read fails

	r := &Runner{
		Drivers: Drivers{GPIO: func() (PinReader, error) { return pins, nil }},
		Pins:    []int{2, 4},
	}

	out := r.Run(context.Background(), KindGPIO)
	if out.Err != nil {
		t.Fatalf("unexpected probe error: %v", out.Err)
	}

	if got, want := encode(t, KindGPIO, out.Payload), `__GPIO_STATE__{"pin_2":1}`; got != want {
		t.Fatalf("line mismatch: got=%s want=%s", got, want)
	}
	if out.Units.Attempted != 2 || out.Units.Present != 1 {
		t.Fatalf("unexpected tally: %+v", out.Units)
	}
}

func TestGPIO_PanickingPinDoesNotEraseOthers(t *testing.T) {
	pins := &fakePins{
		levels: map[int]int{2: 0, 4: 1, 5: 1},
		panics: map[int]bool{4: true},
	}

	states, tally := ReadGPIO(pins, []int{2, 4, 5}, discard())

	m := states.Map()
	if len(m) != 2 || m["pin_2"] != 0 || m["pin_5"] != 1 {
		t.Fatalf("unexpected states: %v", m)
	}
	if _, ok := m["pin_4"]; ok {
		t.Fatalf("panicking pin must be omitted")
	}
	if tally.Absent() != 1 {
		t.Fatalf("expected one absent unit, got %d", tally.Absent())
	}
	if len(pins.reads) != 3 {
		t.Fatalf("every candidate must be attempted once, reads=%v", pins.reads)
	}
}

func TestGPIO_AllFailIsEmptyObject(t *testing.T) {
	r := &Runner{
		Drivers: Drivers{GPIO: func() (PinReader, error) { return &fakePins{}, nil }},
		Pins:    []int{2, 4, 5},
	}

	out := r.Run(context.Background(), KindGPIO)
	if out.Err != nil {
		t.Fatalf("all-failed read must not be an error: %v", out.Err)
	}
	if got := encode(t, KindGPIO, out.Payload); got != `__GPIO_STATE__{}` {
		t.Fatalf("unexpected line: %s", got)
	}
}

func TestGPIO_LevelsNormalizedAndOrdered(t *testing.T) {
	pins := &fakePins{levels: map[int]int{33: 0, 2: 255, 16: 1}}

	states, _ := ReadGPIO(pins, []int{33, 2, 16}, discard())

	raw, err := json.Marshal(states)
	if err != nil {
		t.Fatalf("marshal err=%v", err)
	}
	if got, want := string(raw), `{"pin_33":0,"pin_2":1,"pin_16":1}`; got != want {
		t.Fatalf("got=%s want=%s", got, want)
	}

	candidates := map[string]bool{"pin_33": true, "pin_2": true, "pin_16": true}
	for k, v := range states.Map() {
		if !candidates[k] {
			t.Fatalf("key %s not in candidate set", k)
		}
		if v != 0 && v != 1 {
			t.Fatalf("level %d outside {0,1}", v)
		}
	}
}

func TestGPIO_RepeatedCandidateReadOnce(t *testing.T) {
	pins := &fakePins{levels: map[int]int{2: 1, 4: 0}}

	states, tally := ReadGPIO(pins, []int{2, 4, 2, 4, 2}, discard())

	raw, err := json.Marshal(states)
	if err != nil {
		t.Fatalf("marshal err=%v", err)
	}
	if got, want := string(raw), `{"pin_2":1,"pin_4":0}`; got != want {
		t.Fatalf("got=%s want=%s", got, want)
	}
	if len(pins.reads) != 2 || tally.Attempted != 2 {
		t.Fatalf("expected 2 reads, got reads=%v tally=%+v", pins.reads, tally)
	}
}

func TestGPIO_SubsystemUnavailable(t *testing.T) {
	r := &Runner{
		Drivers: Drivers{GPIO: func() (PinReader, error) {
			return nil, errors.New("gpio chip not present")
		}},
		Pins: []int{2},
	}

	out := r.Run(context.Background(), KindGPIO)
	if out.Err == nil {
		t.Fatalf("expected probe-level error")
	}
	if got, want := encode(t, KindGPIO, out.Payload), `__GPIO_STATE__{"error":"gpio: gpio chip not present"}`; got != want {
		t.Fatalf("got=%s want=%s", got, want)
	}
}

// ---- I2C ----

func TestI2C_FailedBusSkipped(t *testing.T) {
	opener := &fakeOpener{buses: map[int][]int{0: {0x3C, 0x68}}} // bus 1 fails init

	r := &Runner{
		Drivers: Drivers{I2C: func() (BusOpener, error) { return opener, nil }},
		Buses: []BusSpec{
			{ID: 0, SCL: 22, SDA: 21},
			{ID: 1, SCL: 25, SDA: 26},
		},
	}

	out := r.Run(context.Background(), KindI2C)
	if out.Err != nil {
		t.Fatalf("unexpected probe error: %v", out.Err)
	}
	if got, want := encode(t, KindI2C, out.Payload), `__I2C_DEVICES__[60,104]`; got != want {
		t.Fatalf("got=%s want=%s", got, want)
	}
}

func TestI2C_DedupFirstDiscoveryOrder(t *testing.T) {
	opener := &fakeOpener{buses: map[int][]int{
		0: {0x68, 0x3C},
		1: {0x3C, 0x76, 0x68, 0x29},
	}}

	found, tally := ScanI2C(opener, []BusSpec{{ID: 0, SCL: 22, SDA: 21}, {ID: 1, SCL: 25, SDA: 26}}, discard())

	want := []int{0x68, 0x3C, 0x76, 0x29}
	if len(found) != len(want) {
		t.Fatalf("got=%v want=%v", found, want)
	}
	for i := range want {
		if found[i] != want[i] {
			t.Fatalf("got=%v want=%v", found, want)
		}
	}
	if tally.Present != 2 {
		t.Fatalf("expected both buses present, got %+v", tally)
	}
	if opener.closed != 2 {
		t.Fatalf("expected both buses closed, got %d", opener.closed)
	}
}

func TestI2C_ScanFailureSkipsWholeBus(t *testing.T) {
	opener := &fakeOpener{
		buses:    map[int][]int{0: {0x3C}, 1: {0x50}},
		scanFail: map[int]bool{0: true},
	}

	found, _ := ScanI2C(opener, []BusSpec{{ID: 0, SCL: 22, SDA: 21}, {ID: 1, SCL: 25, SDA: 26}}, discard())
	if len(found) != 1 || found[0] != 0x50 {
		t.Fatalf("got=%v want=[80]", found)
	}
	if opener.closed != 2 {
		t.Fatalf("failed scan must still close the bus, closed=%d", opener.closed)
	}
}

func TestI2C_OutOfRangeAddressesDropped(t *testing.T) {
	opener := &fakeOpener{buses: map[int][]int{0: {-1, 0, 127, 128, 300}}}

	found, _ := ScanI2C(opener, []BusSpec{{ID: 0, SCL: 22, SDA: 21}}, discard())
	if len(found) != 2 || found[0] != 0 || found[1] != 127 {
		t.Fatalf("got=%v want=[0 127]", found)
	}
}

func TestI2C_NoBusSucceedsIsEmptyList(t *testing.T) {
	r := &Runner{
		Drivers: Drivers{I2C: func() (BusOpener, error) { return &fakeOpener{}, nil }},
		Buses:   []BusSpec{{ID: 0, SCL: 22, SDA: 21}},
	}

	out := r.Run(context.Background(), KindI2C)
	if out.Err != nil {
		t.Fatalf("unexpected probe error: %v", out.Err)
	}
	if got := encode(t, KindI2C, out.Payload); got != `__I2C_DEVICES__[]` {
		t.Fatalf("unexpected line: %s", got)
	}
}

// ---- Wi-Fi ----

func TestWiFi_UnknownSecurity(t *testing.T) {
	radio := &fakeRadio{aps: []AccessPoint{{
		SSID:     []byte("workshop"),
		BSSID:    []byte{0xA4, 0xCF, 0x12, 0x0B, 0xEE, 0x01},
		Channel:  6,
		RSSI:     -52,
		Security: 7,
	}}}

	r := &Runner{Drivers: Drivers{WiFi: func() (Radio, error) { return radio, nil }}}

	out := r.Run(context.Background(), KindWiFi)
	if out.Err != nil {
		t.Fatalf("unexpected probe error: %v", out.Err)
	}

	want := `__WIFI_SCAN__[{"ssid":"workshop","bssid":"a4:cf:12:0b:ee:01","channel":6,"rssi":-52,"security":"Unknown"}]`
	if got := encode(t, KindWiFi, out.Payload); got != want {
		t.Fatalf("got=%s\nwant=%s", got, want)
	}
	if !radio.closed {
		t.Fatalf("radio must be closed after the probe")
	}
}

func TestWiFi_InterfaceMissing(t *testing.T) {
	r := &Runner{Drivers: Drivers{WiFi: func() (Radio, error) {
		return nil, errors.New("interface wlan0 missing")
	}}}

	out := r.Run(context.Background(), KindWiFi)
	if out.Err == nil {
		t.Fatalf("expected probe-level error")
	}
	if got, want := encode(t, KindWiFi, out.Payload), `__WIFI_SCAN__{"error":"wifi: interface wlan0 missing"}`; got != want {
		t.Fatalf("got=%s want=%s", got, want)
	}
}

func TestWiFi_ActivateOrScanFailure(t *testing.T) {
	for name, radio := range map[string]*fakeRadio{
		"activate": {activateErr: errors.New("rf kill")},
		"scan":     {scanErr: errors.New("scan aborted")},
	} {
		t.Run(name, func(t *testing.T) {
			r := &Runner{Drivers: Drivers{WiFi: func() (Radio, error) { return radio, nil }}}
			out := r.Run(context.Background(), KindWiFi)
			rec, ok := out.Payload.(ErrorRecord)
			if !ok {
				t.Fatalf("expected ErrorRecord payload, got %T", out.Payload)
			}
			if rec.Timestamp != nil {
				t.Fatalf("wifi error records carry no timestamp")
			}
		})
	}
}

func TestWiFi_EmptyScanIsEmptyList(t *testing.T) {
	r := &Runner{Drivers: Drivers{WiFi: func() (Radio, error) { return &fakeRadio{}, nil }}}

	out := r.Run(context.Background(), KindWiFi)
	if got := encode(t, KindWiFi, out.Payload); got != `__WIFI_SCAN__[]` {
		t.Fatalf("unexpected line: %s", got)
	}
}

func TestSecurityLabel_Total(t *testing.T) {
	tests := []struct {
		ordinal int
		want    string
	}{
		{0, "Open"},
		{1, "WEP"},
		{2, "WPA-PSK"},
		{3, "WPA2-PSK"},
		{4, "WPA/WPA2-PSK"},
		{5, "Unknown"},
		{7, "Unknown"},
		{-1, "Unknown"},
		{1 << 20, "Unknown"},
	}

	for _, test := range tests {
		if got := SecurityLabel(test.ordinal); got != test.want {
			t.Errorf("SecurityLabel(%d) = %q, want %q", test.ordinal, got, test.want)
		}
	}
}

func TestDecodeSSID(t *testing.T) {
	if got := DecodeSSID(nil); got != "" {
		t.Fatalf("nil ssid: got=%q", got)
	}
	if got := DecodeSSID([]byte("café")); got != "café" {
		t.Fatalf("utf-8 ssid: got=%q", got)
	}
	if got := DecodeSSID([]byte{'a', 0xFF, 'b'}); got != "a�b" {
		t.Fatalf("invalid utf-8 ssid: got=%q", got)
	}
}

// ---- System ----

func TestSystem_TemperatureUnsupported(t *testing.T) {
	src := &fakeSystem{free: 110592, allocated: 4096, freq: 240000000, tempErr: ErrUnsupported}

	r := &Runner{
		Drivers: Drivers{System: func() (SystemSource, error) { return src, nil }},
		Clock:   clock.NewFake(epoch),
	}

	out := r.Run(context.Background(), KindSystem)
	if out.Err != nil {
		t.Fatalf("unexpected probe error: %v", out.Err)
	}

	line := encode(t, KindSystem, out.Payload)
	want := `__MONITOR_DATA__{"memory":{"free":110592,"allocated":4096},"freq":240000000,"timestamp":1792411200}`
	if line != want {
		t.Fatalf("got=%s\nwant=%s", line, want)
	}
	if strings.Contains(line, "temp") {
		t.Fatalf("temp must be omitted entirely")
	}
}

func TestSystem_TemperaturePanicContained(t *testing.T) {
	src := &fakeSystem{free: 1, allocated: 2, freq: 3, tempPanics: true}

	m, tally, err := CollectSystem(src, clock.NewFake(epoch), discard())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.Temp != nil {
		t.Fatalf("temp must be omitted after panic")
	}
	if tally.Absent() != 1 {
		t.Fatalf("expected temperature counted absent, got %+v", tally)
	}
}

func TestSystem_TemperaturePresent(t *testing.T) {
	src := &fakeSystem{free: 1, allocated: 2, freq: 3, temp: 53.5}

	m, _, err := CollectSystem(src, clock.NewFake(epoch), discard())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.Temp == nil || *m.Temp != 53.5 {
		t.Fatalf("expected temp 53.5, got %v", m.Temp)
	}
}

func TestSystem_NonFiniteTemperatureOmitted(t *testing.T) {
	for _, temp := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		src := &fakeSystem{free: 110592, allocated: 4096, freq: 240000000, temp: temp}

		r := &Runner{
			Drivers: Drivers{System: func() (SystemSource, error) { return src, nil }},
			Clock:   clock.NewFake(epoch),
		}

		out := r.Run(context.Background(), KindSystem)
		if out.Err != nil {
			t.Fatalf("temp=%v: unexpected probe error: %v", temp, out.Err)
		}
		if out.Units.Absent() != 1 {
			t.Fatalf("temp=%v: expected reading counted absent, got %+v", temp, out.Units)
		}

		want := `__MONITOR_DATA__{"memory":{"free":110592,"allocated":4096},"freq":240000000,"timestamp":1792411200}`
		if got := encode(t, KindSystem, out.Payload); got != want {
			t.Fatalf("temp=%v:\n got=%s\nwant=%s", temp, got, want)
		}
	}
}

func TestSystem_ErrorKeepsTimestamp(t *testing.T) {
	src := &fakeSystem{memErr: errors.New("heap walk failed")}

	r := &Runner{
		Drivers: Drivers{System: func() (SystemSource, error) { return src, nil }},
		Clock:   clock.NewFake(epoch),
	}

	out := r.Run(context.Background(), KindSystem)
	want := `__MONITOR_DATA__{"error":"system: memory: heap walk failed","timestamp":1792411200}`
	if got := encode(t, KindSystem, out.Payload); got != want {
		t.Fatalf("got=%s\nwant=%s", got, want)
	}
}

func TestSystem_TimestampNonDecreasing(t *testing.T) {
	clk := clock.NewFake(epoch)
	src := &fakeSystem{free: 1, allocated: 1, freq: 1}

	var last int64
	for i := 0; i < 5; i++ {
		m, _, err := CollectSystem(src, clk, discard())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if m.Timestamp < last {
			t.Fatalf("timestamp went backwards: %d < %d", m.Timestamp, last)
		}
		last = m.Timestamp
		clk.Advance(700 * time.Millisecond)
	}
}

// ---- Runner ----

func TestRun_PanicBecomesErrorRecord(t *testing.T) {
	r := &Runner{
		Drivers: Drivers{I2C: func() (BusOpener, error) { panic("driver table corrupt") }},
		Clock:   clock.NewFake(epoch),
	}

	out := r.Run(context.Background(), KindI2C)
	if out.Err == nil {
		t.Fatalf("expected probe-level error after panic")
	}
	rec, ok := out.Payload.(ErrorRecord)
	if !ok || !strings.Contains(rec.Error, "driver table corrupt") {
		t.Fatalf("unexpected payload: %#v", out.Payload)
	}
}

func TestRun_MissingDriverIsProbeError(t *testing.T) {
	r := &Runner{Clock: clock.NewFake(epoch)}

	for _, k := range Kinds {
		out := r.Run(context.Background(), k)
		if out.Err == nil {
			t.Fatalf("%s: expected error without driver", k)
		}
		if _, ok := out.Payload.(ErrorRecord); !ok {
			t.Fatalf("%s: expected ErrorRecord, got %T", k, out.Payload)
		}
	}
}

func TestRun_UnknownKind(t *testing.T) {
	r := &Runner{}
	out := r.Run(context.Background(), Kind("uart"))
	if !errors.Is(out.Err, ErrUnknownKind) {
		t.Fatalf("expected ErrUnknownKind, got %v", out.Err)
	}
	if out.Payload != nil {
		t.Fatalf("unknown kind has no payload shape")
	}
}

func TestParseKind(t *testing.T) {
	for _, in := range []string{"gpio", "I2C", " WiFi ", "system"} {
		if _, err := ParseKind(in); err != nil {
			t.Fatalf("ParseKind(%q) err=%v", in, err)
		}
	}
	if _, err := ParseKind("spi"); !errors.Is(err, ErrUnknownKind) {
		t.Fatalf("expected ErrUnknownKind, got %v", err)
	}
}

func TestKind_TagClosedSet(t *testing.T) {
	for _, k := range Kinds {
		if !k.Tag().Valid() {
			t.Fatalf("%s maps to invalid tag %q", k, k.Tag())
		}
	}
}
