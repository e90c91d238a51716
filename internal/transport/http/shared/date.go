package shared

import "time"

// ParseDate reads a calendar day. A full RFC3339 timestamp is accepted and
// reduced to the day it names in its own offset. The result is midnight UTC.
func ParseDate(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	parsed, err := time.Parse(time.DateOnly, value)
	if err != nil {
		stamp, stampErr := time.Parse(time.RFC3339, value)
		if stampErr != nil {
			return time.Time{}, err
		}
		parsed = stamp
	}
	y, m, d := parsed.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
}
