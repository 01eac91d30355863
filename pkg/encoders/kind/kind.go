// Package kind implements the nostr event kind code and the handful of kinds
// this client cares about.
package kind

// T is a nostr event kind code.
type T struct {
	K uint16
}

// New creates a kind from its protocol code.
func New(k uint16) (t *T) { return &T{K: k} }

// Kinds used by the client side of the protocol.
var (
	// Metadata is the kind 0 profile event.
	Metadata = New(0)
	// TextNote is the kind 1 short text note.
	TextNote = New(1)
	// FollowList is the kind 3 contact list, whose tags also carry relay
	// hints for the followed keys.
	FollowList = New(3)
	// Deletion is the kind 5 delete request.
	Deletion = New(5)
	// RelayListMetadata is the kind 10002 inbox/outbox relay list defined by
	// NIP-65, the primary input for outbox routing.
	RelayListMetadata = New(10002)
)

// Equal reports whether two kinds carry the same code.
func (t *T) Equal(other *T) (same bool) {
	if t == nil || other == nil {
		return
	}
	return t.K == other.K
}
