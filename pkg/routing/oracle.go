// Package routing decides where events go: the oracle ranks the relays a
// person is best reached on, and the selector computes the destination set
// for an outgoing event.
package routing

import (
	"sort"

	"github.com/crisdut/gossip/pkg/interfaces/router"
	"github.com/crisdut/gossip/pkg/interfaces/store"
	"github.com/crisdut/gossip/pkg/relay"
	"github.com/crisdut/gossip/pkg/utils/chk"
)

// Association weights. The absolute values only matter relative to each
// other; scoring is a pure function of the stored association record so a
// ranking can be reproduced exactly from a storage snapshot.
const (
	weightManual   = 1.0
	weightDeclared = 0.7
	weightFetched  = 0.3
	weightTagHint  = 0.2
)

// Oracle ranks relays for a public key from the stored person-relay
// association records.
type Oracle struct {
	Store store.PersonRelayStorer
}

// NewOracle creates an oracle over an association store.
func NewOracle(s store.PersonRelayStorer) (o *Oracle) { return &Oracle{Store: s} }

var _ router.I = &Oracle{}

// BestRelays returns the relays where the pubkey is most likely reachable in
// the given direction, scored descending. Relays with no evidence for the
// direction are omitted entirely, so the result may be empty. Ties break on
// URL ascending, keeping the ranking deterministic.
func (o *Oracle) BestRelays(pubkey []byte, dir router.Direction) (
	best []router.Candidate, err error,
) {
	var prs []*relay.PersonRelay
	if prs, err = o.Store.GetPersonRelays(pubkey); chk.T(err) {
		return
	}
	for _, pr := range prs {
		score := scoreAssociation(pr, dir)
		if score <= 0 {
			continue
		}
		best = append(best, router.Candidate{URL: pr.URL, Score: score})
	}
	sort.Slice(best, func(i, j int) bool {
		if best[i].Score != best[j].Score {
			return best[i].Score > best[j].Score
		}
		return best[i].URL < best[j].URL
	})
	return
}

func scoreAssociation(pr *relay.PersonRelay, dir router.Direction) (score float64) {
	switch dir {
	case router.Read:
		if pr.ManuallyPairedRead {
			score += weightManual
		}
		if pr.Read {
			score += weightDeclared
		}
	case router.Write:
		if pr.ManuallyPairedWrite {
			score += weightManual
		}
		if pr.Write {
			score += weightDeclared
		}
		if pr.LastFetched > 0 {
			score += weightFetched
		}
	}
	if pr.LastSuggestedByTag > 0 {
		score += weightTagHint
	}
	return
}
