// Package app implements the gossip outbox daemon: a runtime aggregate
// holding the shared state, an overlord coordinating publishes, and
// per-relay minions carrying them out.
package app

import (
	"sort"

	"go.uber.org/atomic"

	"github.com/crisdut/gossip/pkg/app/comms"
	"github.com/crisdut/gossip/pkg/app/config"
	"github.com/crisdut/gossip/pkg/encoders/hex"
	"github.com/crisdut/gossip/pkg/interfaces/router"
	"github.com/crisdut/gossip/pkg/interfaces/signer"
	"github.com/crisdut/gossip/pkg/interfaces/store"
	"github.com/crisdut/gossip/pkg/relay"
	"github.com/crisdut/gossip/pkg/routing"
	"github.com/crisdut/gossip/pkg/utils/chk"
	"github.com/crisdut/gossip/pkg/utils/context"
)

// Runtime is the shared state of a running gossip instance. Everything the
// overlord, the minions and the status API need hangs off it.
type Runtime struct {
	Ctx    context.T
	Cancel context.F
	*config.C
	Store    store.I
	Oracle   router.I
	Selector *routing.Selector
	Identity signer.I

	// ToOverlord carries work and results to the overlord's main loop.
	ToOverlord chan comms.ToOverlord

	ShuttingDown    atomic.Bool
	BytesRead       atomic.Int64
	EventsPublished atomic.Int64
	PublishFailures atomic.Int64
}

// NewRuntime wires a runtime from its parts. The selector is built over
// the store and the oracle.
func NewRuntime(
	ctx context.T, cancel context.F, cfg *config.C, sto store.I,
	oracle router.I, sign signer.I,
) (r *Runtime) {
	return &Runtime{
		Ctx:        ctx,
		Cancel:     cancel,
		C:          cfg,
		Store:      sto,
		Oracle:     oracle,
		Selector:   routing.NewSelector(sto, oracle, sto, sto),
		Identity:   sign,
		ToOverlord: make(chan comms.ToOverlord, 64),
	}
}

// Profile is the user's public identity together with the relays where
// their events can be found.
type Profile struct {
	Pubkey string
	Relays []string
}

// YourProfile composes the user's profile from the registry: the relays
// carrying the outbox usage bit, excluding disabled ones.
func (r *Runtime) YourProfile() (p *Profile, err error) {
	var outbox []*relay.R
	if outbox, err = r.Store.FilterRelays(
		func(rl *relay.R) bool {
			return rl.HasUsage(relay.Outbox) && rl.Rank != 0
		},
	); chk.E(err) {
		return
	}
	p = &Profile{Pubkey: hex.Enc(r.Identity.Pub())}
	for _, rl := range outbox {
		p.Relays = append(p.Relays, rl.URL)
	}
	sort.Strings(p.Relays)
	return
}

// SeedRelays ensures the configured default relays exist in the registry
// with write and outbox usage, leaving already known relays untouched.
func (r *Runtime) SeedRelays() (err error) {
	for _, u := range r.C.DefaultRelays {
		var existing *relay.R
		if existing, err = r.Store.GetRelay(u); chk.E(err) {
			return
		}
		if existing != nil {
			continue
		}
		rl := relay.New(u)
		rl.SetUsage(relay.Write | relay.Outbox)
		if err = r.Store.SaveRelay(rl); chk.E(err) {
			return
		}
	}
	return
}
