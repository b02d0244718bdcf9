package syncapi

import "time"

// Timestamp normalizes t to UTC with millisecond precision, the resolution
// every database driver and device round-trips without loss.
func Timestamp(t time.Time) time.Time {
	return t.UTC().Truncate(time.Millisecond)
}

// Now returns the current normalized time
func Now() time.Time {
	return Timestamp(time.Now())
}
