// Package relay implements the relay registry record: a normalized websocket
// URL, a usage bitfield saying what the operator uses the relay for, a rank,
// and connection bookkeeping the selection core does not interpret.
package relay

import (
	"strings"

	"github.com/crisdut/gossip/pkg/utils/errorf"
)

// Usage bits. Persisted, so the positions must never be reassigned.
const (
	// Read marks relays the operator reads their feed from.
	Read uint64 = 1 << 0
	// Write marks relays the operator publishes to.
	Write uint64 = 1 << 1
	// Advertise marks relays the operator's relay list is advertised to.
	Advertise uint64 = 1 << 2
	// Inbox marks relays where others can reach the operator with mentions.
	Inbox uint64 = 1 << 3
	// Outbox marks relays the operator declares as their publish points.
	Outbox uint64 = 1 << 4
	// Discover marks relays used to find other people's relay lists.
	Discover uint64 = 1 << 5
)

// DefaultRank is the rank a newly discovered relay starts with.
const DefaultRank uint8 = 3

// R is one relay registry record. URL is the canonical form produced by
// normalize.ParseURL and is the unique key of the record.
type R struct {
	URL             string            `msgpack:"url"`
	Usage           uint64            `msgpack:"usage"`
	Rank            uint8             `msgpack:"rank"`
	Hidden          bool              `msgpack:"hidden"`
	SuccessCount    uint64            `msgpack:"success_count"`
	FailureCount    uint64            `msgpack:"failure_count"`
	LastConnected   int64             `msgpack:"last_connected"`
	LastGeneralEOSE int64             `msgpack:"last_general_eose"`
	Extra           map[string]string `msgpack:"extra,omitempty"`
}

// New creates a record for a canonical URL with the default rank and no
// usage bits.
func New(url string) (r *R) { return &R{URL: url, Rank: DefaultRank} }

// HasUsage reports whether all the given usage bits are set.
func (r *R) HasUsage(bits uint64) (has bool) { return r.Usage&bits == bits }

// SetUsage sets the given usage bits.
func (r *R) SetUsage(bits uint64) { r.Usage |= bits }

// ClearUsage clears the given usage bits.
func (r *R) ClearUsage(bits uint64) { r.Usage &^= bits }

// IsWritable reports whether the relay is one the operator intentionally
// publishes to: it has the write bit and has not been disabled via rank 0.
func (r *R) IsWritable() (is bool) { return r.HasUsage(Write) && r.Rank != 0 }

var usageNames = []struct {
	bit  uint64
	name string
}{
	{Read, "read"},
	{Write, "write"},
	{Advertise, "advertise"},
	{Inbox, "inbox"},
	{Outbox, "outbox"},
	{Discover, "discover"},
}

// FormatUsage renders a usage bitfield as a comma separated list of names.
func FormatUsage(bits uint64) (s string) {
	var names []string
	for _, u := range usageNames {
		if bits&u.bit != 0 {
			names = append(names, u.name)
		}
	}
	return strings.Join(names, ",")
}

// ParseUsage parses a comma separated list of usage names into a bitfield.
func ParseUsage(s string) (bits uint64, err error) {
	for _, name := range strings.Split(s, ",") {
		name = strings.TrimSpace(strings.ToLower(name))
		if name == "" {
			continue
		}
		found := false
		for _, u := range usageNames {
			if u.name == name {
				bits |= u.bit
				found = true
				break
			}
		}
		if !found {
			err = errorf.D("unknown relay usage %q", name)
			return
		}
	}
	return
}
