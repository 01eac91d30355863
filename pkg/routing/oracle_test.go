package routing

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crisdut/gossip/pkg/interfaces/router"
	"github.com/crisdut/gossip/pkg/relay"
)

type memPersonRelays struct {
	prs map[string][]*relay.PersonRelay
}

func (m *memPersonRelays) SavePersonRelay(pr *relay.PersonRelay) (err error) {
	if m.prs == nil {
		m.prs = make(map[string][]*relay.PersonRelay)
	}
	m.prs[string(pr.Pubkey)] = append(m.prs[string(pr.Pubkey)], pr)
	return
}

func (m *memPersonRelays) GetPersonRelay(pubkey []byte, url string) (
	pr *relay.PersonRelay, err error,
) {
	for _, p := range m.prs[string(pubkey)] {
		if p.URL == url {
			return p, nil
		}
	}
	return
}

func (m *memPersonRelays) GetPersonRelays(pubkey []byte) (
	prs []*relay.PersonRelay, err error,
) {
	return m.prs[string(pubkey)], nil
}

func TestBestRelaysRanking(t *testing.T) {
	pk := bytes.Repeat([]byte{0x42}, 32)
	m := &memPersonRelays{}

	declared := relay.NewPersonRelay(pk, "wss://declared.example")
	declared.Read = true
	require.NoError(t, m.SavePersonRelay(declared))

	manual := relay.NewPersonRelay(pk, "wss://manual.example")
	manual.ManuallyPairedRead = true
	require.NoError(t, m.SavePersonRelay(manual))

	hinted := relay.NewPersonRelay(pk, "wss://hinted.example")
	hinted.LastSuggestedByTag = 12345
	require.NoError(t, m.SavePersonRelay(hinted))

	writeOnly := relay.NewPersonRelay(pk, "wss://writeonly.example")
	writeOnly.Write = true
	require.NoError(t, m.SavePersonRelay(writeOnly))

	o := NewOracle(m)
	best, err := o.BestRelays(pk, router.Read)
	require.NoError(t, err)
	require.Len(t, best, 3, "write-only association has no read evidence")
	assert.Equal(t, "wss://manual.example", best[0].URL)
	assert.Equal(t, "wss://declared.example", best[1].URL)
	assert.Equal(t, "wss://hinted.example", best[2].URL)
	for i := 1; i < len(best); i++ {
		assert.LessOrEqual(t, best[i].Score, best[i-1].Score)
	}

	best, err = o.BestRelays(pk, router.Write)
	require.NoError(t, err)
	require.NotEmpty(t, best)
	assert.Equal(t, "wss://writeonly.example", best[0].URL)
}

func TestBestRelaysDeterministicTieBreak(t *testing.T) {
	pk := bytes.Repeat([]byte{0x43}, 32)
	m := &memPersonRelays{}
	for _, url := range []string{"wss://z.example", "wss://m.example", "wss://a.example"} {
		pr := relay.NewPersonRelay(pk, url)
		pr.Read = true
		require.NoError(t, m.SavePersonRelay(pr))
	}
	o := NewOracle(m)
	best, err := o.BestRelays(pk, router.Read)
	require.NoError(t, err)
	require.Len(t, best, 3)
	// equal scores fall back to URL order
	assert.Equal(t, "wss://a.example", best[0].URL)
	assert.Equal(t, "wss://m.example", best[1].URL)
	assert.Equal(t, "wss://z.example", best[2].URL)

	again, err := o.BestRelays(pk, router.Read)
	require.NoError(t, err)
	assert.Equal(t, best, again)
}

func TestBestRelaysUnknownKeyEmpty(t *testing.T) {
	o := NewOracle(&memPersonRelays{})
	best, err := o.BestRelays(bytes.Repeat([]byte{0x44}, 32), router.Read)
	require.NoError(t, err)
	assert.Empty(t, best)
}
