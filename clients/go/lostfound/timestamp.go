package lostfound

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// Timestamp is an instant that may arrive on the wire as an ISO-8601 string,
// a {"_seconds": n, "_nanoseconds": n} object (or its {"seconds", "nanos"}
// spelling), or a number of epoch milliseconds. All shapes decode into the
// same time.Time so callers never branch on the wire shape.
type Timestamp struct {
	time.Time
}

// secondsTimestamp is the object form of a timestamp.
type secondsTimestamp struct {
	Seconds      *int64 `json:"_seconds"`
	Nanoseconds  int64  `json:"_nanoseconds"`
	PlainSeconds *int64 `json:"seconds"`
	PlainNanos   int64  `json:"nanos"`
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		t.Time = time.Time{}
		return nil
	}

	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		parsed, err := ParseTimestamp(s)
		if err != nil {
			return err
		}
		t.Time = parsed
		return nil

	case '{':
		var obj secondsTimestamp
		if err := json.Unmarshal(data, &obj); err != nil {
			return err
		}
		switch {
		case obj.Seconds != nil:
			t.Time = time.Unix(*obj.Seconds, obj.Nanoseconds).UTC()
		case obj.PlainSeconds != nil:
			t.Time = time.Unix(*obj.PlainSeconds, obj.PlainNanos).UTC()
		default:
			return fmt.Errorf("timestamp object has no seconds field: %s", data)
		}
		return nil

	default:
		ms, err := strconv.ParseFloat(string(data), 64)
		if err != nil {
			return fmt.Errorf("invalid timestamp %s: %w", data, err)
		}
		t.Time = time.UnixMilli(int64(ms)).UTC()
		return nil
	}
}

// MarshalJSON always emits the ISO-8601 form.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.UTC().Format(time.RFC3339Nano))
}

// ParseTimestamp parses the string forms a server may send.
func ParseTimestamp(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05.000Z0700", "2006-01-02 15:04:05"} {
		if parsed, err := time.Parse(layout, s); err == nil {
			return parsed.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}
