// Package tags implements the ordered list of tags attached to a nostr
// event.
package tags

import (
	"bytes"

	"github.com/crisdut/gossip/pkg/encoders/tag"
)

// T is the tag list of an event.
type T struct {
	elements []*tag.T
}

// New creates a tag list from tags.
func New(t ...*tag.T) (tt *T) { return &T{elements: t} }

// Len returns the number of tags in the list.
func (t *T) Len() (l int) {
	if t == nil {
		return
	}
	return len(t.elements)
}

// Append adds tags to the end of the list.
func (t *T) Append(tg ...*tag.T) { t.elements = append(t.elements, tg...) }

// ToSliceOfTags returns the underlying tag slice, in event order.
func (t *T) ToSliceOfTags() (s []*tag.T) {
	if t == nil {
		return
	}
	return t.elements
}

// GetFirst returns the first tag whose key equals the given key, or nil.
func (t *T) GetFirst(key []byte) (tg *tag.T) {
	for _, el := range t.ToSliceOfTags() {
		if bytes.Equal(el.Key(), key) {
			return el
		}
	}
	return
}

// ToStringsSlice renders the list as a slice of string slices, the shape it
// takes in event JSON.
func (t *T) ToStringsSlice() (s [][]string) {
	s = make([][]string, 0, t.Len())
	for _, el := range t.ToSliceOfTags() {
		s = append(s, el.ToStringSlice())
	}
	return
}

// FromStringsSlice builds a tag list from the JSON shape.
func FromStringsSlice(s [][]string) (t *T) {
	t = &T{elements: make([]*tag.T, 0, len(s))}
	for _, el := range s {
		t.elements = append(t.elements, tag.FromStringSlice(el))
	}
	return
}
