// Package main is a nostr outbox daemon: it maintains a relay registry,
// picks the right relays for each outgoing event, and publishes through a
// worker per relay. Configuration is via environment variables or an
// optional .env file.
package main

import (
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"

	"github.com/pkg/profile"
	"golang.org/x/sync/errgroup"

	"github.com/crisdut/gossip/pkg/app"
	"github.com/crisdut/gossip/pkg/app/config"
	"github.com/crisdut/gossip/pkg/app/overlord"
	"github.com/crisdut/gossip/pkg/crypto/identity"
	"github.com/crisdut/gossip/pkg/crypto/p256k"
	"github.com/crisdut/gossip/pkg/database"
	"github.com/crisdut/gossip/pkg/interfaces/store"
	"github.com/crisdut/gossip/pkg/protocol/httpapi"
	"github.com/crisdut/gossip/pkg/routing"
	"github.com/crisdut/gossip/pkg/utils/chk"
	"github.com/crisdut/gossip/pkg/utils/context"
	"github.com/crisdut/gossip/pkg/utils/interrupt"
	"github.com/crisdut/gossip/pkg/utils/log"
	"github.com/crisdut/gossip/pkg/utils/lol"
	"github.com/crisdut/gossip/pkg/version"
)

func main() {
	var err error
	var cfg *config.C
	if cfg, err = config.New(); chk.T(err) {
		if err != nil {
			fmt.Fprintf(os.Stderr, "ERROR: %s\n\n", err)
		}
		config.PrintHelp(cfg, os.Stderr)
		os.Exit(0)
	}
	log.I.F("starting %s %s", cfg.AppName, version.V)
	if config.GetEnv() {
		config.PrintEnv(cfg, os.Stdout)
		os.Exit(0)
	}
	if config.HelpRequested() {
		config.PrintHelp(cfg, os.Stderr)
		os.Exit(0)
	}
	lol.SetLogLevel(cfg.LogLevel)
	switch cfg.Pprof {
	case "cpu":
		defer profile.Start(profile.CPUProfile).Stop()
	case "memory":
		defer profile.Start(profile.MemProfile).Stop()
	case "allocation":
		defer profile.Start(profile.MemProfileAllocs).Stop()
	}
	if cfg.Pprof != "" {
		go func() {
			chk.E(http.ListenAndServe("127.0.0.1:6060", nil))
		}()
	}
	c, cancel := context.Cancel(context.Bg())
	var storage *database.D
	if storage, err = database.New(
		c, cancel, cfg.DataDir, cfg.DbLogLevel,
	); chk.E(err) {
		os.Exit(1)
	}
	sign := new(p256k.Signer)
	if err = loadIdentity(storage, sign); chk.E(err) {
		os.Exit(1)
	}
	runtime := app.NewRuntime(
		c, cancel, cfg, storage, routing.NewOracle(storage), sign,
	)
	if err = runtime.SeedRelays(); chk.E(err) {
		os.Exit(1)
	}
	var lord *overlord.O
	if lord, err = overlord.New(runtime); chk.E(err) {
		os.Exit(1)
	}
	api := httpapi.New(runtime)
	interrupt.AddHandler(
		func() {
			runtime.ShuttingDown.Store(true)
			api.Shutdown()
			cancel()
			chk.E(storage.Close())
		},
	)
	var g errgroup.Group
	g.Go(func() (err error) { lord.Run(); return })
	g.Go(api.Serve)
	if err = g.Wait(); chk.E(err) {
		log.F.F("terminated: %v", err)
	}
}

// loadIdentity opens the sealed client identity from the store, creating
// and sealing a fresh keypair on first startup. The passphrase comes from
// GOSSIP_PASSPHRASE so it never lands in the .env file.
func loadIdentity(sto store.IdentityStorer, sign *p256k.Signer) (err error) {
	passphrase := os.Getenv("GOSSIP_PASSPHRASE")
	var blob []byte
	if blob, err = sto.LoadIdentityBlob(); chk.E(err) {
		return
	}
	if blob == nil {
		if err = sign.Generate(); chk.E(err) {
			return
		}
		if blob, err = identity.Seal(sign.Sec(), passphrase); chk.E(err) {
			return
		}
		if err = sto.SaveIdentityBlob(blob); chk.E(err) {
			return
		}
		log.I.Ln("generated new client identity")
		return
	}
	var sec []byte
	if sec, err = identity.Open(blob, passphrase); chk.E(err) {
		return
	}
	return sign.InitSec(sec)
}
