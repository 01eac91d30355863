package routing

import (
	"sort"

	"github.com/crisdut/gossip/pkg/encoders/event"
	"github.com/crisdut/gossip/pkg/interfaces/router"
	"github.com/crisdut/gossip/pkg/interfaces/store"
	"github.com/crisdut/gossip/pkg/relay"
	"github.com/crisdut/gossip/pkg/utils/chk"
)

// Selector computes the set of relays an outgoing event should be
// transmitted to. It holds no state across calls; the result is a pure
// function of the collaborators' observable state at the instant of the
// call.
type Selector struct {
	Registry store.RelayFilterer
	Oracle   router.I
	SeenOn   store.SeenOnLedger
	Settings store.Settings
}

// NewSelector wires a selector to its collaborators.
func NewSelector(
	registry store.RelayFilterer, oracle router.I,
	seenOn store.SeenOnLedger, settings store.Settings,
) (s *Selector) {
	return &Selector{
		Registry: registry, Oracle: oracle, SeenOn: seenOn, Settings: settings,
	}
}

// RelaysForEvent returns the relay URLs the event should be posted to that
// it has not already been seen on, sorted ascending and duplicate free:
//
//   - every relay the operator writes to (write usage bit set, rank not 0)
//   - for each pubkey tagged on the event, the top num-relays-per-person+1
//     of the oracle's read ranking for that key
//
// minus the event's seen-on set. Relay hints embedded in tags play no part
// here; they only feed the oracle's stored associations. Any collaborator
// error aborts the computation with no partial result.
func (s *Selector) RelaysForEvent(ev *event.E) (urls []string, err error) {
	numPerPerson := int(s.Settings.NumRelaysPerPerson())
	candidates := make(map[string]struct{})

	// the relays we intentionally publish to
	var writable []*relay.R
	if writable, err = s.Registry.FilterRelays(
		func(r *relay.R) bool { return r.IsWritable() },
	); chk.T(err) {
		return nil, err
	}
	for _, r := range writable {
		candidates[r.URL] = struct{}{}
	}

	// read relays for everybody tagged on the event; note the rank 0
	// exclusion above does not apply to these
	for _, pk := range ev.TaggedPubkeys() {
		var best []router.Candidate
		if best, err = s.Oracle.BestRelays(pk, router.Read); chk.T(err) {
			return nil, err
		}
		take := numPerPerson + 1
		if take > len(best) {
			take = len(best)
		}
		for _, c := range best[:take] {
			candidates[c.URL] = struct{}{}
		}
	}

	// drop everything the event has already been seen on
	var seen []store.SeenOn
	if seen, err = s.SeenOn.EventSeenOn(ev.ID); chk.T(err) {
		return nil, err
	}
	for _, so := range seen {
		delete(candidates, so.URL)
	}

	urls = make([]string, 0, len(candidates))
	for u := range candidates {
		urls = append(urls, u)
	}
	sort.Strings(urls)
	return
}
