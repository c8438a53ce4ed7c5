package main

import (
	"fmt"
	"strings"
	"time"
)

// parseWhen accepts an empty value (meaning now), a duration ago such as
// "15m", a wall-clock time today such as "08:50", or an RFC3339 timestamp.
func parseWhen(raw string, now time.Time) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, nil
	}
	if d, err := time.ParseDuration(raw); err == nil {
		if d < 0 {
			return time.Time{}, fmt.Errorf("duration %q must not be negative", raw)
		}
		return now.Add(-d).UTC(), nil
	}
	if t, err := time.ParseInLocation("15:04", raw, now.Location()); err == nil {
		y, m, d := now.Date()
		return time.Date(y, m, d, t.Hour(), t.Minute(), 0, 0, now.Location()).UTC(), nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.UTC(), nil
	}
	return time.Time{}, fmt.Errorf("unrecognised time %q: use 15m, 08:50 or RFC3339", raw)
}

// parseDay reads a YYYY-MM-DD date; empty means today.
func parseDay(raw string, now time.Time) (time.Time, error) {
	if strings.TrimSpace(raw) == "" {
		return now.UTC(), nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid day %q: use YYYY-MM-DD", raw)
	}
	return t, nil
}

func parseFields(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	fields := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		k, v, ok := strings.Cut(pair, "=")
		if !ok || strings.TrimSpace(k) == "" {
			return nil, fmt.Errorf("invalid field %q: use key=value", pair)
		}
		fields[strings.TrimSpace(k)] = strings.TrimSpace(v)
	}
	return fields, nil
}

func formatSeconds(seconds int64) string {
	return (time.Duration(seconds) * time.Second).String()
}
