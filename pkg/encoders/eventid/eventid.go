// Package eventid implements the event id, the sha256 hash of the canonical
// event encoding.
package eventid

import (
	"github.com/crisdut/gossip/pkg/encoders/hex"
	"github.com/crisdut/gossip/pkg/utils/errorf"
)

// Len is the length of an event id in bytes.
const Len = 32

// T is an event id.
type T struct {
	b []byte
}

// NewWith creates an event id from its raw bytes. The slice is not copied.
func NewWith(b []byte) (t *T) { return &T{b: b} }

// FromString decodes a 64 character hex event id.
func FromString(s string) (t *T, err error) {
	var b []byte
	if b, err = hex.Dec(s); err != nil {
		return
	}
	if len(b) != Len {
		err = errorf.D("event id must be %d bytes, got %d", Len, len(b))
		return
	}
	t = &T{b: b}
	return
}

// Bytes returns the raw id bytes.
func (t *T) Bytes() (b []byte) {
	if t == nil {
		return
	}
	return t.b
}

// String returns the hex encoding of the id.
func (t *T) String() (s string) { return hex.Enc(t.Bytes()) }
