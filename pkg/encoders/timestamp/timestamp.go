// Package timestamp implements the unix timestamp type found in nostr
// events.
package timestamp

import (
	"time"
)

// T is a unix timestamp in seconds.
type T struct {
	V int64
}

// New creates a timestamp from a unix seconds count.
func New(i int64) (t *T) { return &T{V: i} }

// Now returns the current time as a timestamp.
func Now() (t *T) { return &T{V: time.Now().Unix()} }

// FromTime converts a time.Time to a timestamp.
func FromTime(tt time.Time) (t *T) { return &T{V: tt.Unix()} }

// I64 returns the timestamp as an int64.
func (t *T) I64() (i int64) {
	if t == nil {
		return
	}
	return t.V
}

// Time returns the timestamp as a time.Time.
func (t *T) Time() time.Time { return time.Unix(t.I64(), 0) }
