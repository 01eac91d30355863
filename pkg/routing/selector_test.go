package routing

import (
	"bytes"
	"errors"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crisdut/gossip/pkg/encoders/event"
	"github.com/crisdut/gossip/pkg/encoders/hex"
	"github.com/crisdut/gossip/pkg/encoders/tag"
	"github.com/crisdut/gossip/pkg/encoders/tags"
	"github.com/crisdut/gossip/pkg/interfaces/router"
	"github.com/crisdut/gossip/pkg/interfaces/store"
	"github.com/crisdut/gossip/pkg/relay"
)

// in-memory collaborators, one per consumed interface

type memRegistry struct {
	relays []*relay.R
	err    error
}

func (m *memRegistry) FilterRelays(f func(r *relay.R) bool) (
	rs []*relay.R, err error,
) {
	if m.err != nil {
		return nil, m.err
	}
	for _, r := range m.relays {
		if f(r) {
			rs = append(rs, r)
		}
	}
	return
}

type memOracle struct {
	best map[string][]router.Candidate
	err  error
}

func (m *memOracle) BestRelays(pubkey []byte, dir router.Direction) (
	best []router.Candidate, err error,
) {
	if m.err != nil {
		return nil, m.err
	}
	return m.best[hex.Enc(pubkey)], nil
}

type memLedger struct {
	seen map[string][]store.SeenOn
	err  error
}

func (m *memLedger) AddEventSeenOn(id []byte, url string, at int64) (err error) {
	for _, so := range m.seen[string(id)] {
		if so.URL == url {
			return
		}
	}
	if m.seen == nil {
		m.seen = make(map[string][]store.SeenOn)
	}
	m.seen[string(id)] = append(m.seen[string(id)], store.SeenOn{URL: url, At: at})
	return
}

func (m *memLedger) EventSeenOn(id []byte) (seen []store.SeenOn, err error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.seen[string(id)], nil
}

type memSettings struct {
	n uint8
}

func (m *memSettings) NumRelaysPerPerson() (n uint8)          { return m.n }
func (m *memSettings) SetNumRelaysPerPerson(n uint8) (e error) { m.n = n; return }

const (
	urlA = "wss://a.example"
	urlB = "wss://b.example"
	urlC = "wss://c.example"
	urlD = "wss://d.example"
)

var (
	p1 = bytes.Repeat([]byte{0x11}, 32)
	p2 = bytes.Repeat([]byte{0x22}, 32)
)

func writeRelay(url string, rank uint8) (r *relay.R) {
	r = relay.New(url)
	r.SetUsage(relay.Write)
	r.Rank = rank
	return
}

func eventTagging(pks ...[]byte) (ev *event.E) {
	ev = event.New()
	ev.ID = bytes.Repeat([]byte{0xee}, 32)
	tt := make([]*tag.T, 0, len(pks))
	for _, pk := range pks {
		tt = append(tt, tag.New("p", hex.Enc(pk)))
	}
	ev.Tags = tags.New(tt...)
	return
}

func newTestSelector(
	reg *memRegistry, o *memOracle, l *memLedger, k uint8,
) (s *Selector) {
	return NewSelector(reg, o, l, &memSettings{n: k})
}

func TestWriteOnlyFanOut(t *testing.T) {
	s := newTestSelector(
		&memRegistry{relays: []*relay.R{writeRelay(urlA, 3), writeRelay(urlB, 3)}},
		&memOracle{}, &memLedger{}, 1,
	)
	urls, err := s.RelaysForEvent(eventTagging())
	require.NoError(t, err)
	assert.Equal(t, []string{urlA, urlB}, urls)
}

func TestRecipientFanOut(t *testing.T) {
	s := newTestSelector(
		&memRegistry{},
		&memOracle{best: map[string][]router.Candidate{
			hex.Enc(p1): {{URL: urlC, Score: 0.9}, {URL: urlD, Score: 0.5}, {URL: urlA, Score: 0.1}},
		}},
		&memLedger{}, 1,
	)
	urls, err := s.RelaysForEvent(eventTagging(p1))
	require.NoError(t, err)
	// num per person 1 means the top 2 of the ranking
	assert.Equal(t, []string{urlC, urlD}, urls)
}

func TestUnionAndDedup(t *testing.T) {
	s := newTestSelector(
		&memRegistry{relays: []*relay.R{writeRelay(urlA, 3)}},
		&memOracle{best: map[string][]router.Candidate{
			hex.Enc(p1): {{URL: urlA, Score: 0.9}, {URL: urlB, Score: 0.8}},
			hex.Enc(p2): {{URL: urlB, Score: 0.7}, {URL: urlC, Score: 0.6}},
		}},
		&memLedger{}, 1,
	)
	urls, err := s.RelaysForEvent(eventTagging(p1, p2))
	require.NoError(t, err)
	assert.Equal(t, []string{urlA, urlB, urlC}, urls)
}

func TestSeenOnSubtraction(t *testing.T) {
	ev := eventTagging(p1, p2)
	ledger := &memLedger{}
	require.NoError(t, ledger.AddEventSeenOn(ev.ID, urlB, 100))
	s := newTestSelector(
		&memRegistry{relays: []*relay.R{writeRelay(urlA, 3)}},
		&memOracle{best: map[string][]router.Candidate{
			hex.Enc(p1): {{URL: urlA, Score: 0.9}, {URL: urlB, Score: 0.8}},
			hex.Enc(p2): {{URL: urlB, Score: 0.7}, {URL: urlC, Score: 0.6}},
		}},
		ledger, 1,
	)
	urls, err := s.RelaysForEvent(ev)
	require.NoError(t, err)
	assert.Equal(t, []string{urlA, urlC}, urls)
}

func TestRankZeroExcluded(t *testing.T) {
	s := newTestSelector(
		&memRegistry{relays: []*relay.R{writeRelay(urlA, 3), writeRelay(urlB, 0)}},
		&memOracle{}, &memLedger{}, 1,
	)
	urls, err := s.RelaysForEvent(eventTagging())
	require.NoError(t, err)
	assert.Equal(t, []string{urlA}, urls)
}

func TestCollaboratorErrorsAbort(t *testing.T) {
	boom := errors.New("storage unavailable")
	ev := eventTagging(p1)
	oracle := &memOracle{best: map[string][]router.Candidate{
		hex.Enc(p1): {{URL: urlC, Score: 0.9}},
	}}

	s := newTestSelector(&memRegistry{err: boom}, oracle, &memLedger{}, 1)
	urls, err := s.RelaysForEvent(ev)
	assert.ErrorIs(t, err, boom)
	assert.Nil(t, urls, "no partial result on registry failure")

	s = newTestSelector(
		&memRegistry{relays: []*relay.R{writeRelay(urlA, 3)}},
		&memOracle{err: boom}, &memLedger{}, 1,
	)
	urls, err = s.RelaysForEvent(ev)
	assert.ErrorIs(t, err, boom)
	assert.Nil(t, urls, "no partial result on oracle failure")

	s = newTestSelector(
		&memRegistry{relays: []*relay.R{writeRelay(urlA, 3)}},
		oracle, &memLedger{err: boom}, 1,
	)
	urls, err = s.RelaysForEvent(ev)
	assert.ErrorIs(t, err, boom)
	assert.Nil(t, urls, "no partial result on ledger failure")
}

func TestNothingToSend(t *testing.T) {
	s := newTestSelector(&memRegistry{}, &memOracle{}, &memLedger{}, 1)
	urls, err := s.RelaysForEvent(eventTagging())
	require.NoError(t, err)
	assert.Empty(t, urls)

	// tagged, but the oracle knows nothing about the key
	urls, err = s.RelaysForEvent(eventTagging(p1))
	require.NoError(t, err)
	assert.Empty(t, urls)
}

func TestMalformedTagsSkipped(t *testing.T) {
	ev := event.New()
	ev.ID = bytes.Repeat([]byte{0xee}, 32)
	ev.Tags = tags.New(
		tag.New("p", "this is not a pubkey"),
		tag.New("e", hex.Enc(p2)),
		tag.New("p"),
	)
	s := newTestSelector(
		&memRegistry{relays: []*relay.R{writeRelay(urlA, 3)}},
		&memOracle{}, &memLedger{}, 1,
	)
	urls, err := s.RelaysForEvent(ev)
	require.NoError(t, err)
	assert.Equal(t, []string{urlA}, urls)
}

func TestOutputSortedAndDeduplicated(t *testing.T) {
	s := newTestSelector(
		&memRegistry{relays: []*relay.R{
			writeRelay(urlD, 3), writeRelay(urlB, 3), writeRelay(urlA, 3),
		}},
		&memOracle{best: map[string][]router.Candidate{
			hex.Enc(p1): {{URL: urlD, Score: 0.9}, {URL: urlA, Score: 0.8}, {URL: urlC, Score: 0.7}},
		}},
		&memLedger{}, 9,
	)
	urls, err := s.RelaysForEvent(eventTagging(p1))
	require.NoError(t, err)
	assert.True(t, sort.StringsAreSorted(urls))
	seenSet := make(map[string]bool)
	for _, u := range urls {
		assert.False(t, seenSet[u], "duplicate %s", u)
		seenSet[u] = true
	}
	assert.Equal(t, []string{urlA, urlB, urlC, urlD}, urls)
}

func TestPureGivenFixedCollaborators(t *testing.T) {
	ev := eventTagging(p1, p2)
	s := newTestSelector(
		&memRegistry{relays: []*relay.R{writeRelay(urlB, 3)}},
		&memOracle{best: map[string][]router.Candidate{
			hex.Enc(p1): {{URL: urlC, Score: 0.9}, {URL: urlA, Score: 0.5}},
			hex.Enc(p2): {{URL: urlD, Score: 0.4}},
		}},
		&memLedger{}, 1,
	)
	first, err := s.RelaysForEvent(ev)
	require.NoError(t, err)
	second, err := s.RelaysForEvent(ev)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestMonotonicInNumRelaysPerPerson(t *testing.T) {
	ev := eventTagging(p1, p2)
	registry := &memRegistry{relays: []*relay.R{writeRelay(urlB, 3)}}
	oracle := &memOracle{best: map[string][]router.Candidate{
		hex.Enc(p1): {{URL: urlC, Score: 0.9}, {URL: urlA, Score: 0.5}, {URL: urlD, Score: 0.2}},
		hex.Enc(p2): {{URL: urlD, Score: 0.4}, {URL: urlB, Score: 0.3}},
	}}
	var prev []string
	for k := uint8(0); k < 5; k++ {
		s := newTestSelector(registry, oracle, &memLedger{}, k)
		urls, err := s.RelaysForEvent(ev)
		require.NoError(t, err)
		assert.Subset(t, urls, prev, "raising the setting removed a relay")
		prev = urls
	}
}

func TestSeenOnGrowthOnlyShrinksOutput(t *testing.T) {
	ev := eventTagging(p1)
	ledger := &memLedger{}
	s := newTestSelector(
		&memRegistry{relays: []*relay.R{writeRelay(urlA, 3), writeRelay(urlB, 3)}},
		&memOracle{best: map[string][]router.Candidate{
			hex.Enc(p1): {{URL: urlC, Score: 0.9}, {URL: urlD, Score: 0.5}},
		}},
		ledger, 1,
	)
	before, err := s.RelaysForEvent(ev)
	require.NoError(t, err)
	require.NoError(t, ledger.AddEventSeenOn(ev.ID, urlC, 50))
	after, err := s.RelaysForEvent(ev)
	require.NoError(t, err)
	assert.Subset(t, before, after)
	assert.NotContains(t, after, urlC)
}
