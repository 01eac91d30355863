// Package store is the query surface the selection core and its callers
// consume from the persistence layer. It is composed of small interfaces so
// tests can implement exactly the slice they exercise.
package store

import (
	"errors"
	"io"

	"github.com/crisdut/gossip/pkg/relay"
)

// Error kinds the storage layer surfaces. Callers match with errors.Is; the
// selection core propagates them unchanged.
var (
	// ErrUnavailable wraps an I/O failure of the underlying store.
	ErrUnavailable = errors.New("storage unavailable")
	// ErrCorruptRecord wraps a record that could not be decoded.
	ErrCorruptRecord = errors.New("corrupt relay record")
)

// SeenOn is one entry of the seen-on ledger: a relay an event has been
// observed on and when it was first seen there.
type SeenOn struct {
	URL string
	At  int64
}

// I is the full persistence surface of the client.
type I interface {
	io.Closer
	Pather
	RelayStorer
	RelayFilterer
	SeenOnLedger
	PersonRelayStorer
	Settings
	IdentityStorer
}

type Pather interface {
	// Path returns the directory of the database.
	Path() (s string)
}

type RelayStorer interface {
	// SaveRelay upserts a relay record keyed by its canonical URL.
	SaveRelay(r *relay.R) (err error)
	// GetRelay fetches one relay record, nil if unknown.
	GetRelay(url string) (r *relay.R, err error)
}

type RelayFilterer interface {
	// FilterRelays returns every relay record satisfying the predicate,
	// evaluated over a consistent snapshot of the registry.
	FilterRelays(f func(r *relay.R) bool) (rs []*relay.R, err error)
}

type SeenOnLedger interface {
	// AddEventSeenOn records that an event was observed on a relay. The
	// first-seen timestamp of an existing entry is preserved.
	AddEventSeenOn(id []byte, url string, at int64) (err error)
	// EventSeenOn returns the relays an event has been observed on.
	EventSeenOn(id []byte) (seen []SeenOn, err error)
}

type PersonRelayStorer interface {
	// SavePersonRelay upserts an association record keyed by (pubkey, URL).
	SavePersonRelay(pr *relay.PersonRelay) (err error)
	// GetPersonRelay fetches one association record, nil if unknown.
	GetPersonRelay(pubkey []byte, url string) (pr *relay.PersonRelay, err error)
	// GetPersonRelays returns all association records for a pubkey.
	GetPersonRelays(pubkey []byte) (prs []*relay.PersonRelay, err error)
}

type Settings interface {
	// NumRelaysPerPerson is the "extra relays per recipient" setting
	// consulted on every selection, clamped on write to one byte.
	NumRelaysPerPerson() (n uint8)
	// SetNumRelaysPerPerson updates the setting.
	SetNumRelaysPerPerson(n uint8) (err error)
}

type IdentityStorer interface {
	// SaveIdentityBlob stores the sealed client identity.
	SaveIdentityBlob(b []byte) (err error)
	// LoadIdentityBlob returns the sealed client identity, nil if none.
	LoadIdentityBlob() (b []byte, err error)
}
