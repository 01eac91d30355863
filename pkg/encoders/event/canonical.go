package event

import (
	"bytes"

	"github.com/minio/sha256-simd"

	"github.com/crisdut/gossip/pkg/encoders/hex"
	"github.com/crisdut/gossip/pkg/interfaces/signer"
	"github.com/crisdut/gossip/pkg/utils/chk"
	"github.com/crisdut/gossip/pkg/utils/errorf"
)

// Canonical renders the canonical form of the event, the JSON array
//
//	[0,"<pubkey>",<created_at>,<kind>,<tags>,"<content>"]
//
// whose SHA256 hash is the event id.
func (ev *E) Canonical() (b []byte, err error) {
	arr := []interface{}{
		0,
		hex.Enc(ev.Pubkey),
		ev.CreatedAt.I64(),
		ev.Kind.K,
		ev.Tags.ToStringsSlice(),
		string(ev.Content),
	}
	return marshalJSON(arr)
}

// GetIDBytes computes the event id hash over the canonical form.
func (ev *E) GetIDBytes() (id []byte, err error) {
	var c []byte
	if c, err = ev.Canonical(); chk.E(err) {
		return
	}
	h := sha256.Sum256(c)
	id = h[:]
	return
}

// Sign fills in Pubkey, ID and Sig using the given signer. CreatedAt, Kind,
// Tags and Content must already be set.
func (ev *E) Sign(sign signer.I) (err error) {
	ev.Pubkey = sign.Pub()
	if ev.ID, err = ev.GetIDBytes(); chk.E(err) {
		return
	}
	if ev.Sig, err = sign.Sign(ev.ID); chk.E(err) {
		return
	}
	return
}

// Verify recomputes the id and checks the signature against the author
// public key.
func (ev *E) Verify(verify signer.I) (valid bool, err error) {
	var id []byte
	if id, err = ev.GetIDBytes(); chk.E(err) {
		return
	}
	if !bytes.Equal(id, ev.ID) {
		err = errorf.D("event id does not match canonical hash")
		return
	}
	if err = verify.InitPub(ev.Pubkey); chk.E(err) {
		return
	}
	return verify.Verify(ev.ID, ev.Sig)
}
