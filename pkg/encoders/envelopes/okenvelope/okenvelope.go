// Package okenvelope implements the OK envelope a relay answers an event
// submission with: ["OK","<event id>",<accepted>,"<reason>"].
package okenvelope

import (
	"encoding/json"

	"github.com/crisdut/gossip/pkg/encoders/eventid"
	"github.com/crisdut/gossip/pkg/utils/chk"
	"github.com/crisdut/gossip/pkg/utils/errorf"
)

// Label is the envelope label.
const Label = "OK"

// T is a decoded OK message.
type T struct {
	EventID *eventid.T
	OK      bool
	Reason  string
}

// Parse decodes the elements following the label of an OK envelope.
func Parse(rest []json.RawMessage) (ok *T, err error) {
	if len(rest) < 2 {
		err = errorf.D("OK envelope needs at least id and status, got %d elements", len(rest))
		return
	}
	ok = &T{}
	var idHex string
	if err = json.Unmarshal(rest[0], &idHex); chk.D(err) {
		return
	}
	if ok.EventID, err = eventid.FromString(idHex); chk.D(err) {
		return
	}
	if err = json.Unmarshal(rest[1], &ok.OK); chk.D(err) {
		return
	}
	if len(rest) > 2 {
		if err = json.Unmarshal(rest[2], &ok.Reason); chk.D(err) {
			return
		}
	}
	return
}
