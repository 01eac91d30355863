// Package comms defines the messages that flow between the overlord and
// the per-relay minions.
package comms

import (
	"time"

	"github.com/crisdut/gossip/pkg/encoders/event"
)

// ToOverlord is a message for the overlord's main loop.
type ToOverlord interface{ toOverlord() }

// PostEvent asks the overlord to route ev to the relays that should carry
// it and publish it there.
type PostEvent struct {
	Ev *event.E
}

// PublishResult reports the outcome of one publish attempt on one relay.
type PublishResult struct {
	URL     string
	EventID string
	OK      bool
	Reason  string
	At      time.Time
}

// RelayDiscovered reports a relay URL learned from the network, with the
// usage bits the source implies.
type RelayDiscovered struct {
	URL   string
	Usage uint64
}

// AdvertiseRelayList asks the overlord to compose and publish the user's
// relay list event.
type AdvertiseRelayList struct{}

// MinionExited reports that a minion's run loop has returned.
type MinionExited struct {
	URL string
	Err error
}

// Shutdown asks the overlord to stop.
type Shutdown struct{}

func (PostEvent) toOverlord()          {}
func (PublishResult) toOverlord()      {}
func (RelayDiscovered) toOverlord()    {}
func (AdvertiseRelayList) toOverlord() {}
func (MinionExited) toOverlord()       {}
func (Shutdown) toOverlord()           {}

// PublishJob is handed to a minion: publish the event on the minion's
// relay.
type PublishJob struct {
	Ev *event.E
}
