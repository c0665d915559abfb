// Package utils provides small shared helpers used across layers.
package utils

import (
	"time"
)

// UTCNow returns the current time in UTC. All persisted timestamps go
// through this so records compare consistently regardless of server zone.
func UTCNow() time.Time {
	return time.Now().UTC()
}

// UTCNowAddPtr returns a pointer to the current UTC time shifted by d,
// for nullable expiry columns
func UTCNowAddPtr(d time.Duration) *time.Time {
	t := UTCNow().Add(d)
	return &t
}
