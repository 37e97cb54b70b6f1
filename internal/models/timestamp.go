package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// локальные форматы без зоны трактуются как UTC
var zonelessLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Timestamp принимает RFC 3339 и время без часового пояса (2025-01-01T00:00:00).
type Timestamp struct {
	time.Time
}

func (ts *Timestamp) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("timestamp must be a string: %w", err)
	}
	t, err := ParseTimestamp(s)
	if err != nil {
		return err
	}
	ts.Time = t
	return nil
}

// ParseTimestamp parses s as RFC 3339 or as one of the zoneless layouts in UTC.
func ParseTimestamp(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}
	for _, layout := range zonelessLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid timestamp %q: expected RFC 3339 or 2006-01-02T15:04:05", s)
}
