package event

import (
	"bytes"
	"encoding/json"

	"github.com/crisdut/gossip/pkg/encoders/eventid"
	"github.com/crisdut/gossip/pkg/encoders/hex"
	"github.com/crisdut/gossip/pkg/encoders/kind"
	"github.com/crisdut/gossip/pkg/encoders/tags"
	"github.com/crisdut/gossip/pkg/encoders/timestamp"
	"github.com/crisdut/gossip/pkg/utils/chk"
	"github.com/crisdut/gossip/pkg/utils/errorf"
)

// J is the event in the basic types of its JSON wire form.
type J struct {
	ID        string     `json:"id"`
	Pubkey    string     `json:"pubkey"`
	CreatedAt int64      `json:"created_at"`
	Kind      uint16     `json:"kind"`
	Tags      [][]string `json:"tags"`
	Content   string     `json:"content"`
	Sig       string     `json:"sig"`
}

// marshalJSON encodes without the HTML escaping that encoding/json applies
// by default, which would corrupt event content round-trips.
func marshalJSON(v interface{}) (b []byte, err error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err = enc.Encode(v); err != nil {
		return
	}
	b = bytes.TrimRight(buf.Bytes(), "\n")
	return
}

// ToJ converts the event to its wire shape.
func (ev *E) ToJ() (j *J) {
	j = &J{
		ID:        hex.Enc(ev.ID),
		Pubkey:    hex.Enc(ev.Pubkey),
		CreatedAt: ev.CreatedAt.I64(),
		Kind:      ev.Kind.K,
		Tags:      ev.Tags.ToStringsSlice(),
		Content:   string(ev.Content),
		Sig:       hex.Enc(ev.Sig),
	}
	return
}

// FromJ populates the event from its wire shape, validating field lengths.
func (ev *E) FromJ(j *J) (err error) {
	if ev.ID, err = hex.Dec(j.ID); chk.D(err) {
		return errorf.D("event id is not hex: %w", err)
	}
	if len(ev.ID) != eventid.Len {
		return errorf.D("event id must be %d bytes, got %d", eventid.Len, len(ev.ID))
	}
	if ev.Pubkey, err = hex.Dec(j.Pubkey); chk.D(err) {
		return errorf.D("event pubkey is not hex: %w", err)
	}
	if len(ev.Pubkey) != 32 {
		return errorf.D("event pubkey must be 32 bytes, got %d", len(ev.Pubkey))
	}
	if j.Sig != "" {
		if ev.Sig, err = hex.Dec(j.Sig); chk.D(err) {
			return errorf.D("event sig is not hex: %w", err)
		}
		if len(ev.Sig) != 64 {
			return errorf.D("event sig must be 64 bytes, got %d", len(ev.Sig))
		}
	}
	ev.CreatedAt = timestamp.New(j.CreatedAt)
	ev.Kind = kind.New(j.Kind)
	ev.Tags = tags.FromStringsSlice(j.Tags)
	ev.Content = []byte(j.Content)
	return
}

// Marshal renders the event as minified JSON appended to dst.
func (ev *E) Marshal(dst []byte) (b []byte) {
	j, err := marshalJSON(ev.ToJ())
	if chk.E(err) {
		return dst
	}
	return append(dst, j...)
}

// Serialize renders the event as minified JSON.
func (ev *E) Serialize() (b []byte) { return ev.Marshal(nil) }

// Unmarshal decodes an event from JSON.
func (ev *E) Unmarshal(b []byte) (err error) {
	j := &J{}
	if err = json.Unmarshal(b, j); chk.D(err) {
		return
	}
	return ev.FromJ(j)
}
