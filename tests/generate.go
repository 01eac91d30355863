// Package tests provides a tool to generate arbitrary random events for
// exercising the codec and the routing path.
package tests

import (
	"encoding/base64"

	"lukechampine.com/frand"

	"github.com/crisdut/gossip/pkg/crypto/p256k"
	"github.com/crisdut/gossip/pkg/encoders/event"
	"github.com/crisdut/gossip/pkg/encoders/hex"
	"github.com/crisdut/gossip/pkg/encoders/kind"
	"github.com/crisdut/gossip/pkg/encoders/tag"
	"github.com/crisdut/gossip/pkg/encoders/timestamp"
	"github.com/crisdut/gossip/pkg/utils/chk"
)

// GenerateEvent creates an event full of random content data, signed with
// a throwaway key.
func GenerateEvent(maxSize int) (ev *event.E, binSize int, err error) {
	l := frand.Intn(maxSize * 6 / 8) // account for base64 expansion
	ev = event.New()
	ev.Kind = kind.TextNote
	ev.CreatedAt = timestamp.Now()
	ev.Content = []byte(base64.StdEncoding.EncodeToString(frand.Bytes(l)))
	signer := new(p256k.Signer)
	if err = signer.Generate(); chk.E(err) {
		return
	}
	if err = ev.Sign(signer); chk.E(err) {
		return
	}
	var bin []byte
	bin = ev.Marshal(bin)
	binSize = len(bin)
	return
}

// GenerateTaggedEvent creates a signed event carrying a p tag for each of
// the given pubkeys.
func GenerateTaggedEvent(maxSize int, pubkeys ...[]byte) (
	ev *event.E, err error,
) {
	if ev, _, err = GenerateEvent(maxSize); chk.E(err) {
		return
	}
	for _, pk := range pubkeys {
		ev.Tags.Append(tag.New("p", hex.Enc(pk)))
	}
	// re-sign, the tags are part of the canonical form
	signer := new(p256k.Signer)
	if err = signer.Generate(); chk.E(err) {
		return
	}
	err = ev.Sign(signer)
	chk.E(err)
	return
}
