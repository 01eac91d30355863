// Package tag implements the tag element of nostr events, an ordered list of
// string fields where the first field is the tag key.
package tag

import (
	"github.com/crisdut/gossip/pkg/encoders/hex"
)

// T is a single tag.
type T struct {
	Field [][]byte
}

// S is a type constraint for the field types New accepts.
type S interface {
	~string | ~[]byte
}

// New creates a tag from fields of one of the S types. Fields of the other
// type can be added afterwards with AppendField.
func New[V S](fields ...V) (t *T) {
	t = &T{Field: make([][]byte, 0, len(fields))}
	for _, f := range fields {
		t.Field = append(t.Field, []byte(f))
	}
	return
}

// AppendField adds one more field to the tag.
func (t *T) AppendField(f []byte) { t.Field = append(t.Field, f) }

// Len returns the number of fields in the tag.
func (t *T) Len() (l int) {
	if t == nil {
		return
	}
	return len(t.Field)
}

// Key returns the first field of the tag, its key.
func (t *T) Key() (b []byte) {
	if t.Len() < 1 {
		return
	}
	return t.Field[0]
}

// Value returns the second field of the tag.
func (t *T) Value() (b []byte) {
	if t.Len() < 2 {
		return
	}
	return t.Field[1]
}

// Relay returns the third field of the tag, which by convention is a
// recommended relay URL hint. It may be empty.
func (t *T) Relay() (b []byte) {
	if t.Len() < 3 {
		return
	}
	return t.Field[2]
}

// ParsePubkey returns the 32 byte public key referenced by a well formed "p"
// tag, or nil for every other shape of tag. Malformed values are not errors,
// the tag just doesn't reference a key.
func (t *T) ParsePubkey() (pk []byte) {
	if t.Len() < 2 {
		return
	}
	if len(t.Field[0]) != 1 || t.Field[0][0] != 'p' {
		return
	}
	v := t.Field[1]
	if len(v) != 64 {
		return
	}
	var err error
	if pk, err = hex.Dec(string(v)); err != nil {
		return nil
	}
	return
}

// ToStringSlice renders the tag fields as strings.
func (t *T) ToStringSlice() (s []string) {
	s = make([]string, 0, t.Len())
	for _, f := range t.Field {
		s = append(s, string(f))
	}
	return
}

// FromStringSlice builds a tag from string fields.
func FromStringSlice(s []string) (t *T) {
	t = &T{Field: make([][]byte, 0, len(s))}
	for _, f := range s {
		t.Field = append(t.Field, []byte(f))
	}
	return
}
