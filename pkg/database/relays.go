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

func relayKey(url string) (k []byte) {
	k = append(k, prfRelay...)
	k = append(k, url...)
	return
}

// SaveRelay upserts a relay record. The URL is normalized before use so the
// registry never holds two spellings of the same endpoint.
func (d *D) SaveRelay(r *relay.R) (err error) {
	if r.URL, err = normalize.ParseURL(r.URL); chk.D(err) {
		return
	}
	var val []byte
	if val, err = msgpack.Marshal(r); chk.E(err) {
		return
	}
	if err = d.DB.Update(func(txn *badger.Txn) error {
		return txn.Set(relayKey(r.URL), val)
	}); err != nil {
		err = errorf.E("%w: saving relay %s: %v", store.ErrUnavailable, r.URL, err)
	}
	return
}

// GetRelay fetches one relay record by URL, nil if the registry has no
// record for it.
func (d *D) GetRelay(url string) (r *relay.R, err error) {
	if url, err = normalize.ParseURL(url); chk.D(err) {
		return
	}
	err = d.DB.View(func(txn *badger.Txn) (err error) {
		item, err := txn.Get(relayKey(url))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return errorf.E("%w: reading relay %s: %v", store.ErrUnavailable, url, err)
		}
		return item.Value(func(val []byte) (err error) {
			r = &relay.R{}
			if err = msgpack.Unmarshal(val, r); err != nil {
				r = nil
				err = errorf.E("%w: %s: %v", store.ErrCorruptRecord, url, err)
			}
			return
		})
	})
	return
}

// FilterRelays returns every relay record satisfying the predicate. The scan
// runs inside a single read transaction, so the predicate sees one
// consistent snapshot of the registry regardless of concurrent writes.
func (d *D) FilterRelays(f func(r *relay.R) bool) (rs []*relay.R, err error) {
	err = d.DB.View(func(txn *badger.Txn) (err error) {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prfRelay
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Seek(prfRelay); it.ValidForPrefix(prfRelay); it.Next() {
			item := it.Item()
			r := &relay.R{}
			if err = item.Value(func(val []byte) (err error) {
				return msgpack.Unmarshal(val, r)
			}); err != nil {
				return errorf.E(
					"%w: %s: %v", store.ErrCorruptRecord, item.Key(), err,
				)
			}
			if f(r) {
				rs = append(rs, r)
			}
		}
		return
	})
	if err != nil && !isKindError(err) {
		err = errorf.E("%w: scanning relays: %v", store.ErrUnavailable, err)
	}
	return
}
