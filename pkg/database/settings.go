package database

import (
	"github.com/dgraph-io/badger/v4"

	"github.com/crisdut/gossip/pkg/interfaces/store"
	"github.com/crisdut/gossip/pkg/utils/chk"
	"github.com/crisdut/gossip/pkg/utils/errorf"
)

// DefaultNumRelaysPerPerson is how many relays beyond the first are selected
// per tagged recipient when the setting has never been written.
const DefaultNumRelaysPerPerson uint8 = 2

var settingNumRelaysPerPerson = []byte("num-relays-per-person")

func settingKey(name []byte) (k []byte) {
	k = append(k, prfSetting...)
	k = append(k, name...)
	return
}

// NumRelaysPerPerson reads the per-recipient fan-out setting. A read failure
// falls back to the default; selection must not fail because a tunable could
// not be read.
func (d *D) NumRelaysPerPerson() (n uint8) {
	n = DefaultNumRelaysPerPerson
	chk.D(d.DB.View(func(txn *badger.Txn) (err error) {
		item, err := txn.Get(settingKey(settingNumRelaysPerPerson))
		if err != nil {
			return nil
		}
		return item.Value(func(val []byte) (err error) {
			if len(val) == 1 {
				n = val[0]
			}
			return
		})
	}))
	return
}

// SetNumRelaysPerPerson writes the per-recipient fan-out setting. The value
// is a single byte, so the range clamp is the type itself.
func (d *D) SetNumRelaysPerPerson(n uint8) (err error) {
	if err = d.DB.Update(func(txn *badger.Txn) error {
		return txn.Set(settingKey(settingNumRelaysPerPerson), []byte{n})
	}); err != nil {
		err = errorf.E("%w: writing setting: %v", store.ErrUnavailable, err)
	}
	return
}
