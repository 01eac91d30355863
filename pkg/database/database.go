// Package database is the badger backed persistence layer: the relay
// registry, the person-relay association records, the event seen-on ledger,
// the settings, and the sealed identity blob.
package database

import (
	"os"
	"sync"

	"github.com/dgraph-io/badger/v4"

	"github.com/crisdut/gossip/pkg/interfaces/store"
	"github.com/crisdut/gossip/pkg/utils/chk"
	"github.com/crisdut/gossip/pkg/utils/context"
	"github.com/crisdut/gossip/pkg/utils/lol"
	"github.com/crisdut/gossip/pkg/utils/units"
)

// Key prefixes. Persisted, so they must never be reassigned.
var (
	prfRelay       = []byte("rly:")
	prfSeenOn      = []byte("seen:")
	prfPersonRelay = []byte("prl:")
	prfSetting     = []byte("cfg:")
	prfIdentity    = []byte("idn:")
)

// D is the open database.
type D struct {
	ctx     context.T
	cancel  context.F
	dataDir string
	Logger  *logger
	closed  sync.Once
	*badger.DB
}

var _ store.I = &D{}

// New opens (creating if necessary) the database in dataDir. The database
// closes itself when the context is canceled.
func New(ctx context.T, cancel context.F, dataDir, logLevel string) (
	d *D, err error,
) {
	d = &D{
		ctx:     ctx,
		cancel:  cancel,
		dataDir: dataDir,
		Logger:  newLogger(lol.GetLogLevel(logLevel)),
	}
	if err = os.MkdirAll(dataDir, 0700); chk.E(err) {
		return
	}
	opts := badger.DefaultOptions(dataDir)
	opts.BlockCacheSize = 256 * units.Mb
	opts.CompactL0OnClose = true
	opts.Logger = d.Logger
	if d.DB, err = badger.Open(opts); chk.E(err) {
		return
	}
	go func() {
		<-d.ctx.Done()
		chk.E(d.close())
	}()
	return
}

// Path returns the directory of the database.
func (d *D) Path() (s string) { return d.dataDir }

func (d *D) close() (err error) {
	d.closed.Do(func() { err = d.DB.Close() })
	return
}

// Close flushes and closes the database.
func (d *D) Close() (err error) {
	d.cancel()
	return d.close()
}

// SetLogLevel adjusts the verbosity of the badger logger.
func (d *D) SetLogLevel(level string) {
	d.Logger.SetLogLevel(lol.GetLogLevel(level))
}
