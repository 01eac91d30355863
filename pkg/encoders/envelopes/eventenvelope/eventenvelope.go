// Package eventenvelope implements the EVENT envelope in the direction a
// client publishes: ["EVENT",{...}].
package eventenvelope

import (
	"github.com/crisdut/gossip/pkg/encoders/event"
)

// Label is the envelope label.
const Label = "EVENT"

// Submission is an event submission from a client to a relay.
type Submission struct {
	E *event.E
}

// NewSubmission wraps an event for publishing.
func NewSubmission(ev *event.E) (s *Submission) { return &Submission{E: ev} }

// Marshal appends the wire form of the submission to dst.
func (s *Submission) Marshal(dst []byte) (b []byte) {
	b = append(dst, `["`+Label+`",`...)
	b = s.E.Marshal(b)
	b = append(b, ']')
	return
}
