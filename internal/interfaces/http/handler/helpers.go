package handler

import "time"

// parseDateTime accepts both date-only and full RFC 3339 timestamps
func parseDateTime(s string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}
