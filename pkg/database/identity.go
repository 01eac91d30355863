package database

import (
	"github.com/dgraph-io/badger/v4"

	"github.com/crisdut/gossip/pkg/interfaces/store"
	"github.com/crisdut/gossip/pkg/utils/errorf"
)

var identityKey = append(append([]byte{}, prfIdentity...), "client"...)

// SaveIdentityBlob stores the sealed client identity.
func (d *D) SaveIdentityBlob(b []byte) (err error) {
	if err = d.DB.Update(func(txn *badger.Txn) error {
		return txn.Set(identityKey, b)
	}); err != nil {
		err = errorf.E("%w: saving identity: %v", store.ErrUnavailable, err)
	}
	return
}

// LoadIdentityBlob returns the sealed client identity, nil if none has been
// stored.
func (d *D) LoadIdentityBlob() (b []byte, err error) {
	err = d.DB.View(func(txn *badger.Txn) (err error) {
		item, err := txn.Get(identityKey)
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return errorf.E("%w: reading identity: %v", store.ErrUnavailable, err)
		}
		b, err = item.ValueCopy(nil)
		return
	})
	return
}
