// Package envelopes identifies the label of a nostr wire message, the first
// element of the JSON array every message is wrapped in.
package envelopes

import (
	"encoding/json"

	"github.com/crisdut/gossip/pkg/utils/errorf"
)

// Identify returns the envelope label and the remaining raw elements of a
// wire message.
func Identify(b []byte) (label string, rest []json.RawMessage, err error) {
	var arr []json.RawMessage
	if err = json.Unmarshal(b, &arr); err != nil {
		return
	}
	if len(arr) < 1 {
		err = errorf.D("empty envelope")
		return
	}
	if err = json.Unmarshal(arr[0], &label); err != nil {
		return
	}
	rest = arr[1:]
	return
}
