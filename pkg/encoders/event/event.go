// Package event provides the nostr event type, its JSON codec, and the
// canonical form that is hashed to produce the event id and signed.
package event

import (
	"github.com/crisdut/gossip/pkg/encoders/eventid"
	"github.com/crisdut/gossip/pkg/encoders/hex"
	"github.com/crisdut/gossip/pkg/encoders/kind"
	"github.com/crisdut/gossip/pkg/encoders/tags"
	"github.com/crisdut/gossip/pkg/encoders/timestamp"
)

// E is the primary datatype of nostr, in its binary field form.
type E struct {

	// ID is the SHA256 hash of the canonical encoding of the event.
	ID []byte

	// Pubkey is the x-only public key of the event creator.
	Pubkey []byte

	// CreatedAt is the unix timestamp the creator claims for the event
	// (never trust a timestamp).
	CreatedAt *timestamp.T

	// Kind is the nostr protocol code for the type of event.
	Kind *kind.T

	// Tags is the ordered tag list.
	Tags *tags.T

	// Content is an arbitrary string, interpreted according to Kind.
	Content []byte

	// Sig is the BIP-340 signature over ID.
	Sig []byte
}

// S is a slice of events that sorts in reverse chronological order.
type S []*E

func (ev S) Len() int           { return len(ev) }
func (ev S) Less(i, j int) bool { return ev[i].CreatedAt.I64() > ev[j].CreatedAt.I64() }
func (ev S) Swap(i, j int)      { ev[i], ev[j] = ev[j], ev[i] }

// New makes a new empty event.
func New() (ev *E) { return &E{Tags: tags.New()} }

// EventId returns the event ID as an eventid.T.
func (ev *E) EventId() (eid *eventid.T) { return eventid.NewWith(ev.ID) }

// IdString returns the event ID as a hex string.
func (ev *E) IdString() (s string) { return hex.Enc(ev.ID) }

// PubKeyString returns the author public key as a hex string.
func (ev *E) PubKeyString() (s string) { return hex.Enc(ev.Pubkey) }

// TaggedPubkeys returns the public keys referenced by the event's "p" tags,
// in tag order. Tags that do not parse as a pubkey reference are skipped,
// not errors. Duplicate references are kept; callers that union relay sets
// collapse them naturally.
func (ev *E) TaggedPubkeys() (pks [][]byte) {
	for _, t := range ev.Tags.ToSliceOfTags() {
		if pk := t.ParsePubkey(); pk != nil {
			pks = append(pks, pk)
		}
	}
	return
}
