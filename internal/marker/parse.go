// internal/marker/parse.go
package marker

import (
	"encoding/json"
	"errors"
	"strings"
)

// ErrNotMarker is returned for lines that carry no known sentinel.
var ErrNotMarker = errors.New("marker: not a marker line")

// Record is one demultiplexed marker line.
type Record struct {
	Tag     Tag
	Payload json.RawMessage
}

// IsError reports whether the payload is an error record ({"error": ...}).
func (r Record) IsError() bool {
	var probe struct {
		Error *string `json:"error"`
	}
	if err := json.Unmarshal(r.Payload, &probe); err != nil {
		return false
	}
	return probe.Error != nil
}

// Parse matches a single console line against the closed tag set.
// Lines from other writers on the same stream return ErrNotMarker.
func Parse(line string) (Record, error) {
	line = strings.TrimRight(line, "\r\n")

	for _, t := range Tags {
		s := t.Sentinel()
		if !strings.HasPrefix(line, s) {
			continue
		}

		raw := []byte(line[len(s):])
		if !json.Valid(raw) {
			return Record{}, errors.New("marker: " + string(t) + " payload is not valid JSON")
		}
		return Record{Tag: t, Payload: json.RawMessage(raw)}, nil
	}

	return Record{}, ErrNotMarker
}
