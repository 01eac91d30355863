package event

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crisdut/gossip/pkg/crypto/p256k"
	"github.com/crisdut/gossip/pkg/encoders/hex"
	"github.com/crisdut/gossip/pkg/encoders/kind"
	"github.com/crisdut/gossip/pkg/encoders/tag"
	"github.com/crisdut/gossip/pkg/encoders/tags"
	"github.com/crisdut/gossip/pkg/encoders/timestamp"
)

func TestSignVerifyRoundTrip(t *testing.T) {
	sign := new(p256k.Signer)
	require.NoError(t, sign.Generate())
	ev := &E{
		CreatedAt: timestamp.New(1700000000),
		Kind:      kind.TextNote,
		Tags:      tags.New(tag.New("t", "gossip")),
		Content:   []byte(`hello <world> & "friends"`),
	}
	require.NoError(t, ev.Sign(sign))
	require.Len(t, ev.ID, 32)
	require.Len(t, ev.Sig, 64)

	valid, err := ev.Verify(new(p256k.Signer))
	require.NoError(t, err)
	assert.True(t, valid)

	// serialize and decode back
	b := ev.Serialize()
	assert.False(t, strings.Contains(string(b), `<`),
		"html escaping must be off, got %s", b)
	ev2 := New()
	require.NoError(t, ev2.Unmarshal(b))
	assert.Equal(t, ev.ID, ev2.ID)
	assert.Equal(t, ev.Pubkey, ev2.Pubkey)
	assert.Equal(t, ev.Content, ev2.Content)
	valid, err = ev2.Verify(new(p256k.Signer))
	require.NoError(t, err)
	assert.True(t, valid)
}

func TestVerifyDetectsTamper(t *testing.T) {
	sign := new(p256k.Signer)
	require.NoError(t, sign.Generate())
	ev := &E{
		CreatedAt: timestamp.Now(),
		Kind:      kind.TextNote,
		Tags:      tags.New(),
		Content:   []byte("original"),
	}
	require.NoError(t, ev.Sign(sign))
	ev.Content = []byte("tampered")
	_, err := ev.Verify(new(p256k.Signer))
	assert.Error(t, err)
}

func TestTaggedPubkeys(t *testing.T) {
	p1 := strings.Repeat("11", 32)
	p2 := strings.Repeat("22", 32)
	ev := &E{
		Tags: tags.New(
			tag.New("p", p1),
			tag.New("e", strings.Repeat("33", 32)),
			tag.New("p", p2, "wss://hint.example"),
			tag.New("p", "not-a-pubkey"),
			tag.New("p"),
			tag.New("t", "topic"),
		),
	}
	pks := ev.TaggedPubkeys()
	require.Len(t, pks, 2)
	assert.Equal(t, p1, hex.Enc(pks[0]))
	assert.Equal(t, p2, hex.Enc(pks[1]))
}

func TestUnmarshalRejectsBadFields(t *testing.T) {
	ev := New()
	assert.Error(t, ev.Unmarshal([]byte(`{"id":"zz","pubkey":""}`)))
	assert.Error(t, ev.Unmarshal([]byte(`{"id":"`+strings.Repeat("aa", 16)+`","pubkey":"beef"}`)))
}
