package relay

// PersonRelay is the association record between a public key and a relay,
// the evidence the routing oracle scores when asked where a person reads or
// writes. All timestamps are unix seconds, zero meaning never.
type PersonRelay struct {
	Pubkey []byte `msgpack:"pubkey"`
	URL    string `msgpack:"url"`

	// Read and Write are the declared directions from the person's relay
	// list event (NIP-65 kind 10002).
	Read  bool `msgpack:"read"`
	Write bool `msgpack:"write"`

	// Manual pairing by the operator overrides anything declared.
	ManuallyPairedRead  bool `msgpack:"manually_paired_read"`
	ManuallyPairedWrite bool `msgpack:"manually_paired_write"`

	// When the association was last suggested by a relay list event, a
	// follow list entry, a tag hint, or a successful fetch of the person's
	// events from the relay.
	LastSuggestedKind10002 int64 `msgpack:"last_suggested_kind10002"`
	LastSuggestedKind3     int64 `msgpack:"last_suggested_kind3"`
	LastSuggestedByTag     int64 `msgpack:"last_suggested_bytag"`
	LastFetched            int64 `msgpack:"last_fetched"`
}

// NewPersonRelay creates an association record for a pubkey and a canonical
// relay URL.
func NewPersonRelay(pubkey []byte, url string) (pr *PersonRelay) {
	return &PersonRelay{Pubkey: pubkey, URL: url}
}
