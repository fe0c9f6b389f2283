package api

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"
)

// Time decodes the timestamp layouts the backends emit: "2006-01-02 15:04:05"
// in local time, RFC 3339, or a bare date. Empty strings and null decode to
// the zero time; anything else unparsable does too rather than failing the
// whole payload.
type Time struct {
	time.Time
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

func ParseTime(s string) (Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Time{}, false
	}
	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return Time{t}, true
		}
	}
	return Time{}, false
}

func (t *Time) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		t.Time = time.Time{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		// epoch milliseconds
		var ms int64
		if err := json.Unmarshal(data, &ms); err != nil {
			t.Time = time.Time{}
			return nil
		}
		t.Time = time.UnixMilli(ms)
		return nil
	}
	parsed, _ := ParseTime(s)
	*t = parsed
	return nil
}

func (t Time) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.Format(time.RFC3339))
}

// decodeList decodes either a bare array or an object wrapping the array under
// key. Any other shape yields an empty list.
func decodeList[T any](data []byte, key string) []T {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil
	}
	switch data[0] {
	case '[':
		var items []T
		if err := json.Unmarshal(data, &items); err != nil {
			return nil
		}
		return items
	case '{':
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(data, &obj); err != nil {
			return nil
		}
		raw, ok := obj[key]
		if !ok {
			return nil
		}
		var items []T
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil
		}
		return items
	}
	return nil
}
