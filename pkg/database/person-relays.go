package database

import (
	"github.com/dgraph-io/badger/v4"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/crisdut/gossip/pkg/interfaces/store"
	"github.com/crisdut/gossip/pkg/relay"
	"github.com/crisdut/gossip/pkg/utils/chk"
	"github.com/crisdut/gossip/pkg/utils/errorf"
	"github.com/crisdut/gossip/pkg/utils/normalize"
)

func personRelayKey(pubkey []byte, url string) (k []byte) {
	k = append(k, prfPersonRelay...)
	k = append(k, pubkey...)
	k = append(k, ':')
	k = append(k, url...)
	return
}

// SavePersonRelay upserts an association record keyed by (pubkey, URL).
func (d *D) SavePersonRelay(pr *relay.PersonRelay) (err error) {
	if pr.URL, err = normalize.ParseURL(pr.URL); chk.D(err) {
		return
	}
	var val []byte
	if val, err = msgpack.Marshal(pr); chk.E(err) {
		return
	}
	if err = d.DB.Update(func(txn *badger.Txn) error {
		return txn.Set(personRelayKey(pr.Pubkey, pr.URL), val)
	}); err != nil {
		err = errorf.E(
			"%w: saving person-relay %0x %s: %v",
			store.ErrUnavailable, pr.Pubkey, pr.URL, err,
		)
	}
	return
}

// GetPersonRelay fetches one association record, nil if there is none.
func (d *D) GetPersonRelay(pubkey []byte, url string) (
	pr *relay.PersonRelay, err error,
) {
	if url, err = normalize.ParseURL(url); chk.D(err) {
		return
	}
	err = d.DB.View(func(txn *badger.Txn) (err error) {
		item, err := txn.Get(personRelayKey(pubkey, url))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return errorf.E("%w: reading person-relay: %v", store.ErrUnavailable, err)
		}
		return item.Value(func(val []byte) (err error) {
			pr = &relay.PersonRelay{}
			if err = msgpack.Unmarshal(val, pr); err != nil {
				pr = nil
				err = errorf.E("%w: person-relay %0x %s: %v", store.ErrCorruptRecord, pubkey, url, err)
			}
			return
		})
	})
	return
}

// GetPersonRelays returns all association records for a pubkey, in URL
// order.
func (d *D) GetPersonRelays(pubkey []byte) (
	prs []*relay.PersonRelay, err error,
) {
	prefix := append([]byte{}, prfPersonRelay...)
	prefix = append(prefix, pubkey...)
	prefix = append(prefix, ':')
	err = d.DB.View(func(txn *badger.Txn) (err error) {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			pr := &relay.PersonRelay{}
			if err = it.Item().Value(func(val []byte) (err error) {
				return msgpack.Unmarshal(val, pr)
			}); err != nil {
				return errorf.E(
					"%w: person-relay %s: %v", store.ErrCorruptRecord, it.Item().Key(), err,
				)
			}
			prs = append(prs, pr)
		}
		return
	})
	if err != nil && !isKindError(err) {
		err = errorf.E("%w: scanning person-relays: %v", store.ErrUnavailable, err)
	}
	return
}
