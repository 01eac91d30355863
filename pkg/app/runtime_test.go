package app

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/crisdut/gossip/pkg/app/config"
	"github.com/crisdut/gossip/pkg/crypto/p256k"
	"github.com/crisdut/gossip/pkg/database"
	"github.com/crisdut/gossip/pkg/encoders/hex"
	"github.com/crisdut/gossip/pkg/relay"
	"github.com/crisdut/gossip/pkg/routing"
	"github.com/crisdut/gossip/pkg/utils/context"
)

func newTestRuntime(t *testing.T, cfg *config.C) (r *Runtime, db *database.D) {
	t.Helper()
	ctx, cancel := context.Cancel(context.Bg())
	db, err := database.New(ctx, cancel, t.TempDir(), "off")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	sign := new(p256k.Signer)
	require.NoError(t, sign.Generate())
	if cfg == nil {
		cfg = &config.C{AppName: "gossip"}
	}
	r = NewRuntime(ctx, cancel, cfg, db, routing.NewOracle(db), sign)
	return
}

func TestSeedRelays(t *testing.T) {
	r, db := newTestRuntime(
		t, &config.C{
			DefaultRelays: []string{"wss://seed.example/", "wss://other.example"},
		},
	)
	require.NoError(t, r.SeedRelays())

	rl, err := db.GetRelay("wss://seed.example")
	require.NoError(t, err)
	require.NotNil(t, rl)
	require.True(t, rl.HasUsage(relay.Write|relay.Outbox))

	// seeding again must not clobber operator edits
	rl.Rank = 0
	require.NoError(t, db.SaveRelay(rl))
	require.NoError(t, r.SeedRelays())
	rl, err = db.GetRelay("wss://seed.example")
	require.NoError(t, err)
	require.EqualValues(t, 0, rl.Rank)
}

func TestYourProfile(t *testing.T) {
	r, db := newTestRuntime(t, nil)
	for _, tc := range []struct {
		url   string
		usage uint64
		rank  uint8
	}{
		{"wss://out-b.example", relay.Outbox | relay.Write, 3},
		{"wss://out-a.example", relay.Outbox, 3},
		{"wss://disabled.example", relay.Outbox, 0},
		{"wss://read.example", relay.Read, 3},
	} {
		rl := relay.New(tc.url)
		rl.Usage = tc.usage
		rl.Rank = tc.rank
		require.NoError(t, db.SaveRelay(rl))
	}
	p, err := r.YourProfile()
	require.NoError(t, err)
	require.Equal(t, hex.Enc(r.Identity.Pub()), p.Pubkey)
	require.Equal(
		t, []string{"wss://out-a.example", "wss://out-b.example"}, p.Relays,
	)
}
