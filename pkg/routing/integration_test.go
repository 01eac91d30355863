package routing

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crisdut/gossip/pkg/database"
	"github.com/crisdut/gossip/pkg/relay"
	"github.com/crisdut/gossip/pkg/utils/context"
)

// TestSelectorOverDatabase runs the full selection path against a real
// badger store instead of the in-memory fakes.
func TestSelectorOverDatabase(t *testing.T) {
	ctx, cancel := context.Cancel(context.Bg())
	d, err := database.New(ctx, cancel, t.TempDir(), "error")
	require.NoError(t, err)
	defer d.Close()

	// local write relays, one disabled by rank
	wr := relay.New("wss://home.example")
	wr.SetUsage(relay.Write)
	require.NoError(t, d.SaveRelay(wr))
	disabled := relay.New("wss://disabled.example")
	disabled.SetUsage(relay.Write)
	disabled.Rank = 0
	require.NoError(t, d.SaveRelay(disabled))

	// a recipient with declared read relays
	pk := bytes.Repeat([]byte{0x77}, 32)
	for _, url := range []string{"wss://inbox1.example", "wss://inbox2.example"} {
		pr := relay.NewPersonRelay(pk, url)
		pr.Read = true
		require.NoError(t, d.SavePersonRelay(pr))
	}
	extra := relay.NewPersonRelay(pk, "wss://hinted.example")
	extra.LastSuggestedByTag = 1
	require.NoError(t, d.SavePersonRelay(extra))

	require.NoError(t, d.SetNumRelaysPerPerson(1))

	s := NewSelector(d, NewOracle(d), d, d)
	ev := eventTagging(pk)
	urls, err := s.RelaysForEvent(ev)
	require.NoError(t, err)
	// top 2 read relays for the recipient plus the home write relay
	assert.Equal(
		t,
		[]string{"wss://home.example", "wss://inbox1.example", "wss://inbox2.example"},
		urls,
	)

	// once seen on the home relay it drops out
	require.NoError(t, d.AddEventSeenOn(ev.ID, "wss://home.example", 1000))
	urls, err = s.RelaysForEvent(ev)
	require.NoError(t, err)
	assert.Equal(
		t, []string{"wss://inbox1.example", "wss://inbox2.example"}, urls,
	)
}
