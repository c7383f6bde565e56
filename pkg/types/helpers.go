package types

import (
	"time"
)

// TimestampFromTime formats t as the timestamp label stored in a block.
func TimestampFromTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// Now returns the timestamp label for the current instant.
func Now() string {
	return TimestampFromTime(time.Now())
}
