// Package router defines the routing oracle interface: for a public key and
// a direction, the ranked relay URLs where that key is best reached.
package router

// Direction says which side of a person's relay usage is being asked about.
type Direction int

const (
	// Read asks for relays where posts addressed to the person are most
	// likely to be seen by them.
	Read Direction = iota
	// Write asks for relays the person is known to publish to.
	Write
)

func (d Direction) String() (s string) {
	if d == Write {
		return "write"
	}
	return "read"
}

// Candidate is one ranked relay for a person.
type Candidate struct {
	URL   string
	Score float64
}

// I is the oracle interface. BestRelays returns candidates sorted by score
// descending, duplicate free, possibly empty. The ranking is deterministic
// given the stored association records at the call instant.
type I interface {
	BestRelays(pubkey []byte, dir Direction) (best []Candidate, err error)
}
