package db

import "time"

// TimeFormat renders a time the way it is stored: RFC3339, UTC.
func TimeFormat(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// TimeParse parses an RFC3339 timestamp as stored in the database.
// An empty string parses to the zero time.
func TimeParse(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339, s)
}
