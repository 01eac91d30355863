package database

import (
	"encoding/binary"

	"github.com/dgraph-io/badger/v4"

	"github.com/crisdut/gossip/pkg/interfaces/store"
	"github.com/crisdut/gossip/pkg/utils/errorf"
)

func seenOnKey(id []byte, url string) (k []byte) {
	k = append(k, prfSeenOn...)
	k = append(k, id...)
	k = append(k, ':')
	k = append(k, url...)
	return
}

// AddEventSeenOn records that the event with the given id has been observed
// on the relay at the given unix time. The ledger is append-only: an
// existing entry keeps its first-seen timestamp.
func (d *D) AddEventSeenOn(id []byte, url string, at int64) (err error) {
	key := seenOnKey(id, url)
	var val [8]byte
	binary.BigEndian.PutUint64(val[:], uint64(at))
	if err = d.DB.Update(func(txn *badger.Txn) (err error) {
		if _, err = txn.Get(key); err == nil {
			// first-seen wins
			return
		} else if err != badger.ErrKeyNotFound {
			return
		}
		return txn.Set(key, val[:])
	}); err != nil {
		err = errorf.E("%w: recording seen-on for %0x: %v", store.ErrUnavailable, id, err)
	}
	return
}

// EventSeenOn returns the relays the event has been observed on, with the
// first-seen timestamps, in URL order.
func (d *D) EventSeenOn(id []byte) (seen []store.SeenOn, err error) {
	prefix := append([]byte{}, prfSeenOn...)
	prefix = append(prefix, id...)
	prefix = append(prefix, ':')
	err = d.DB.View(func(txn *badger.Txn) (err error) {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			url := string(item.Key()[len(prefix):])
			var at int64
			if err = item.Value(func(val []byte) (err error) {
				if len(val) != 8 {
					return errorf.E(
						"%w: seen-on entry for %0x on %s", store.ErrCorruptRecord, id, url,
					)
				}
				at = int64(binary.BigEndian.Uint64(val))
				return
			}); err != nil {
				return
			}
			seen = append(seen, store.SeenOn{URL: url, At: at})
		}
		return
	})
	if err != nil && !isKindError(err) {
		err = errorf.E("%w: scanning seen-on for %0x: %v", store.ErrUnavailable, id, err)
	}
	return
}
