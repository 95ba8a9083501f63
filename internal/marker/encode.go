// internal/marker/encode.go
package marker

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrUnknownTag is returned for tags outside the closed set.
var ErrUnknownTag = errors.New("marker: unknown tag")

// Encode converts a payload into exactly one marker line (no trailing newline).
// Layout is contract-locked: sentinel immediately followed by compact JSON.
// No IO. No side effects.
func Encode(tag Tag, payload any) ([]byte, error) {
	if !tag.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTag, string(tag))
	}

	var buf bytes.Buffer
	buf.WriteString(tag.Sentinel())

	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(payload); err != nil {
		return nil, fmt.Errorf("marker: encode %s payload: %w", tag, err)
	}

	// json.Encoder terminates with '\n'; the line terminator belongs to the sink.
	line := bytes.TrimRight(buf.Bytes(), "\n")

	// Compact JSON escapes control characters inside strings, so any raw
	// newline left here means a custom marshaler broke the contract.
	if bytes.ContainsAny(line, "\r\n") {
		return nil, fmt.Errorf("marker: %s payload spans multiple lines", tag)
	}

	return line, nil
}
