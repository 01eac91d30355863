package overlord

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/crisdut/gossip/pkg/app"
	"github.com/crisdut/gossip/pkg/app/comms"
	"github.com/crisdut/gossip/pkg/app/config"
	"github.com/crisdut/gossip/pkg/crypto/p256k"
	"github.com/crisdut/gossip/pkg/database"
	"github.com/crisdut/gossip/pkg/encoders/event"
	"github.com/crisdut/gossip/pkg/encoders/hex"
	"github.com/crisdut/gossip/pkg/encoders/kind"
	"github.com/crisdut/gossip/pkg/encoders/tag"
	"github.com/crisdut/gossip/pkg/relay"
	"github.com/crisdut/gossip/pkg/routing"
	"github.com/crisdut/gossip/pkg/utils/context"
)

func newTestOverlord(t *testing.T) (o *O, db *database.D) {
	t.Helper()
	ctx, cancel := context.Cancel(context.Bg())
	var err error
	db, err = database.New(ctx, cancel, t.TempDir(), "off")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	sign := new(p256k.Signer)
	require.NoError(t, sign.Generate())
	cfg := &config.C{AppName: "gossip", PublishWait: time.Second}
	r := app.NewRuntime(ctx, cancel, cfg, db, routing.NewOracle(db), sign)
	o, err = New(r)
	require.NoError(t, err)
	return
}

func saveRelay(
	t *testing.T, db *database.D, url string, usage uint64, rank uint8,
) {
	t.Helper()
	rl := relay.New(url)
	rl.Usage = usage
	rl.Rank = rank
	require.NoError(t, db.SaveRelay(rl))
}

func TestComposeRelayList(t *testing.T) {
	o, db := newTestOverlord(t)
	saveRelay(t, db, "wss://both.example", relay.Inbox|relay.Outbox, 3)
	saveRelay(t, db, "wss://out.example", relay.Outbox, 3)
	saveRelay(t, db, "wss://in.example", relay.Inbox, 3)
	saveRelay(t, db, "wss://disabled.example", relay.Inbox|relay.Outbox, 0)
	saveRelay(t, db, "wss://plain.example", relay.Read|relay.Write, 3)

	ev, err := ComposeRelayList(db, o.Identity)
	require.NoError(t, err)
	require.True(t, kind.RelayListMetadata.Equal(ev.Kind))

	markers := map[string]string{}
	for _, tg := range ev.Tags.ToSliceOfTags() {
		require.Equal(t, "r", string(tg.Key()))
		var marker string
		if tg.Len() > 2 {
			marker = string(tg.Field[2])
		}
		markers[string(tg.Value())] = marker
	}
	require.Equal(
		t, map[string]string{
			"wss://both.example": "",
			"wss://out.example":  "write",
			"wss://in.example":   "read",
		}, markers,
	)

	require.NotNil(t, ev.Tags.GetFirst([]byte("r")))

	valid, err := ev.Verify(new(p256k.Signer))
	require.NoError(t, err)
	require.True(t, valid)
}

func TestRecordTagHints(t *testing.T) {
	o, db := newTestOverlord(t)
	pk := bytes.Repeat([]byte{0x11}, 32)
	ev := event.New()
	ev.Tags.Append(
		tag.New("p", hex.Enc(pk), "WSS://Hint.Example/"),
		tag.New("p", hex.Enc(bytes.Repeat([]byte{0x22}, 32))),
		tag.New("e", strings.Repeat("ab", 32), "wss://ignored.example"),
	)

	o.recordTagHints(ev)

	pr, err := db.GetPersonRelay(pk, "wss://hint.example")
	require.NoError(t, err)
	require.NotNil(t, pr)
	require.Greater(t, pr.LastSuggestedByTag, int64(0))

	// a p tag without a hint leaves no record
	prs, err := db.GetPersonRelays(bytes.Repeat([]byte{0x22}, 32))
	require.NoError(t, err)
	require.Empty(t, prs)

	// re-recording keeps the record, refreshing the evidence
	pr.ManuallyPairedRead = true
	require.NoError(t, db.SavePersonRelay(pr))
	o.recordTagHints(ev)
	pr, err = db.GetPersonRelay(pk, "wss://hint.example")
	require.NoError(t, err)
	require.True(t, pr.ManuallyPairedRead)
}

func TestHandleResultSuccess(t *testing.T) {
	o, db := newTestOverlord(t)
	const url = "wss://home.example"
	saveRelay(t, db, url, relay.Write, 3)
	id := strings.Repeat("ab", 32)
	at := time.Unix(1700000000, 0)

	o.handleResult(
		comms.PublishResult{URL: url, EventID: id, OK: true, At: at},
	)

	rl, err := db.GetRelay(url)
	require.NoError(t, err)
	require.NotNil(t, rl)
	require.EqualValues(t, 1, rl.SuccessCount)
	require.EqualValues(t, 0, rl.FailureCount)
	require.Equal(t, at.Unix(), rl.LastConnected)

	idb, err := hex.Dec(id)
	require.NoError(t, err)
	seen, err := db.EventSeenOn(idb)
	require.NoError(t, err)
	require.Len(t, seen, 1)
	require.Equal(t, url, seen[0].URL)
	require.Equal(t, at.Unix(), seen[0].At)
	require.EqualValues(t, 1, o.EventsPublished.Load())
}

func TestHandleResultFailure(t *testing.T) {
	o, db := newTestOverlord(t)
	const url = "wss://flaky.example"
	saveRelay(t, db, url, relay.Write, 3)
	id := strings.Repeat("cd", 32)

	o.handleResult(
		comms.PublishResult{
			URL: url, EventID: id, OK: false,
			Reason: "blocked: not today", At: time.Now(),
		},
	)

	rl, err := db.GetRelay(url)
	require.NoError(t, err)
	require.EqualValues(t, 1, rl.FailureCount)
	require.EqualValues(t, 0, rl.SuccessCount)

	idb, err := hex.Dec(id)
	require.NoError(t, err)
	seen, err := db.EventSeenOn(idb)
	require.NoError(t, err)
	require.Empty(t, seen)
	require.EqualValues(t, 1, o.PublishFailures.Load())
}

func TestRelayDiscoveredMergesUsage(t *testing.T) {
	o, db := newTestOverlord(t)
	const url = "wss://found.example"
	saveRelay(t, db, url, relay.Read, 3)

	require.NoError(
		t, o.relayDiscovered(
			comms.RelayDiscovered{URL: url, Usage: relay.Outbox},
		),
	)
	rl, err := db.GetRelay(url)
	require.NoError(t, err)
	require.True(t, rl.HasUsage(relay.Read|relay.Outbox))

	// unknown relays get a fresh record with the default rank
	require.NoError(
		t, o.relayDiscovered(
			comms.RelayDiscovered{URL: "wss://new.example", Usage: relay.Read},
		),
	)
	rl, err = db.GetRelay("wss://new.example")
	require.NoError(t, err)
	require.NotNil(t, rl)
	require.Equal(t, uint8(relay.DefaultRank), rl.Rank)
}
