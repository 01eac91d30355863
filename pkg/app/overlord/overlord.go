// Package overlord implements the coordinator: it routes outgoing events
// to the relays that should carry them, keeps one minion per relay alive,
// and folds publish outcomes back into the registry and the seen-on
// ledger.
package overlord

import (
	"net/http"

	"github.com/crisdut/gossip/pkg/app"
	"github.com/crisdut/gossip/pkg/app/comms"
	"github.com/crisdut/gossip/pkg/app/minion"
	"github.com/crisdut/gossip/pkg/encoders/event"
	"github.com/crisdut/gossip/pkg/encoders/hex"
	"github.com/crisdut/gossip/pkg/encoders/kind"
	"github.com/crisdut/gossip/pkg/encoders/tag"
	"github.com/crisdut/gossip/pkg/encoders/timestamp"
	"github.com/crisdut/gossip/pkg/interfaces/signer"
	"github.com/crisdut/gossip/pkg/interfaces/store"
	"github.com/crisdut/gossip/pkg/protocol/ws"
	"github.com/crisdut/gossip/pkg/relay"
	"github.com/crisdut/gossip/pkg/utils/chk"
	"github.com/crisdut/gossip/pkg/utils/log"
	"github.com/crisdut/gossip/pkg/utils/normalize"
)

// O coordinates publishing. It owns the minion registry; everything else
// it reaches through the runtime.
type O struct {
	*app.Runtime

	minions    map[string]*minion.M
	httpClient *http.Client
}

// New builds an overlord over a runtime. When the configuration names a
// SOCKS5 proxy every minion dials through it.
func New(r *app.Runtime) (o *O, err error) {
	o = &O{
		Runtime: r,
		minions: make(map[string]*minion.M),
	}
	if r.C.Proxy != "" {
		if o.httpClient, err = ws.ProxyHTTPClient(r.C.Proxy); chk.E(err) {
			return
		}
	}
	return
}

// Run is the overlord's main loop. It returns when the runtime context is
// done or a Shutdown message arrives, after stopping every minion.
func (o *O) Run() {
	defer o.stopMinions()
	for {
		select {
		case msg := <-o.ToOverlord:
			switch m := msg.(type) {
			case comms.PostEvent:
				if err := o.postEvent(m.Ev); chk.E(err) {
					o.PublishFailures.Inc()
				}
			case comms.PublishResult:
				o.handleResult(m)
			case comms.RelayDiscovered:
				chk.E(o.relayDiscovered(m))
			case comms.AdvertiseRelayList:
				chk.E(o.advertiseRelayList())
			case comms.MinionExited:
				delete(o.minions, m.URL)
			case comms.Shutdown:
				return
			}
		case <-o.Ctx.Done():
			return
		}
	}
}

// postEvent asks the selector where the event should go and hands one job
// to the minion of each relay in the answer.
func (o *O) postEvent(ev *event.E) (err error) {
	var urls []string
	if urls, err = o.Selector.RelaysForEvent(ev); chk.E(err) {
		return
	}
	// after selection, so hints never join the same call's answer
	o.recordTagHints(ev)
	if len(urls) == 0 {
		log.D.F("event %s has nowhere to go", ev.IdString())
		return
	}
	log.I.F("posting event %s to %d relays", ev.IdString(), len(urls))
	for _, u := range urls {
		m := o.ensureMinion(u)
		if !m.Submit(comms.PublishJob{Ev: ev}) {
			o.PublishFailures.Inc()
			log.W.F("dropping job for %s, queue full or minion stopping", u)
		}
	}
	return
}

// recordTagHints stores the relay hints riding on an event's p tags as
// person-relay associations. Hints never route the event carrying them;
// they are evidence for future oracle rankings.
func (o *O) recordTagHints(ev *event.E) {
	now := timestamp.Now().I64()
	for _, tg := range ev.Tags.ToSliceOfTags() {
		pk := tg.ParsePubkey()
		if pk == nil {
			continue
		}
		hint := normalize.URL(string(tg.Relay()))
		if hint == "" {
			continue
		}
		pr, err := o.Store.GetPersonRelay(pk, hint)
		if chk.E(err) {
			continue
		}
		if pr == nil {
			pr = relay.NewPersonRelay(pk, hint)
		}
		pr.LastSuggestedByTag = now
		chk.E(o.Store.SavePersonRelay(pr))
	}
}

// ensureMinion returns the live minion for a relay, starting one when
// none exists.
func (o *O) ensureMinion(url string) (m *minion.M) {
	if m = o.minions[url]; m != nil {
		return
	}
	m = minion.New(
		o.Ctx, url, o.ToOverlord, o.httpClient, o.C.PublishWait,
		func(n int) { o.BytesRead.Add(int64(n)) },
	)
	o.minions[url] = m
	go m.Run()
	return
}

// handleResult folds one publish outcome into the seen-on ledger and the
// relay's success and failure counters.
func (o *O) handleResult(res comms.PublishResult) {
	rl, err := o.Store.GetRelay(res.URL)
	if chk.E(err) {
		return
	}
	if rl == nil {
		rl = relay.New(res.URL)
	}
	if res.OK {
		o.EventsPublished.Inc()
		rl.SuccessCount++
		rl.LastConnected = timestamp.FromTime(res.At).I64()
		var id []byte
		if id, err = hex.Dec(res.EventID); !chk.E(err) {
			chk.E(o.Store.AddEventSeenOn(id, res.URL, res.At.Unix()))
		}
	} else {
		o.PublishFailures.Inc()
		rl.FailureCount++
		log.W.F("publish of %s to %s failed: %s", res.EventID, res.URL, res.Reason)
	}
	chk.E(o.Store.SaveRelay(rl))
}

// relayDiscovered upserts a relay learned from the network, merging the
// usage bits into any existing record.
func (o *O) relayDiscovered(m comms.RelayDiscovered) (err error) {
	var rl *relay.R
	if rl, err = o.Store.GetRelay(m.URL); chk.E(err) {
		return
	}
	if rl == nil {
		rl = relay.New(m.URL)
	}
	rl.SetUsage(m.Usage)
	return o.Store.SaveRelay(rl)
}

// advertiseRelayList composes the user's relay list event and posts it
// through the normal path, so it also lands the seen-on bookkeeping.
func (o *O) advertiseRelayList() (err error) {
	var ev *event.E
	if ev, err = ComposeRelayList(o.Store, o.Identity); chk.E(err) {
		return
	}
	return o.postEvent(ev)
}

// ComposeRelayList builds the signed relay list event from the inbox and
// outbox usage bits of the enabled relays. A relay carrying both bits gets
// a bare r tag, otherwise the tag is marked read or write.
func ComposeRelayList(sto store.RelayFilterer, sign signer.I) (
	ev *event.E, err error,
) {
	var rls []*relay.R
	if rls, err = sto.FilterRelays(
		func(r *relay.R) bool {
			return r.Rank != 0 &&
				(r.HasUsage(relay.Inbox) || r.HasUsage(relay.Outbox))
		},
	); chk.E(err) {
		return
	}
	ev = event.New()
	ev.CreatedAt = timestamp.Now()
	ev.Kind = kind.RelayListMetadata
	for _, rl := range rls {
		switch {
		case rl.HasUsage(relay.Inbox | relay.Outbox):
			ev.Tags.Append(tag.New("r", rl.URL))
		case rl.HasUsage(relay.Outbox):
			ev.Tags.Append(tag.New("r", rl.URL, "write"))
		case rl.HasUsage(relay.Inbox):
			ev.Tags.Append(tag.New("r", rl.URL, "read"))
		}
	}
	if err = ev.Sign(sign); chk.E(err) {
		return
	}
	return
}

func (o *O) stopMinions() {
	for _, m := range o.minions {
		m.Stop()
	}
	o.minions = make(map[string]*minion.M)
}
