package utils

import "time"

// Clock abstracts time for services that stamp records.
type Clock interface {
	Now() time.Time
}

// SystemClock returns UTC wall-clock time.
type SystemClock struct{}

// Now returns the current UTC time
func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}

// NowRFC3339 returns the current time in RFC3339 format
func NowRFC3339() string {
	return time.Now().UTC().Format(time.RFC3339)
}

// SortableTimestamp formats t so that lexical order matches chronological order.
func SortableTimestamp(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000000000Z")
}
