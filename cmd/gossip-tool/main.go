// Package main is a maintenance tool for the gossip registry database:
// inspect and edit relay records, query the seen-on ledger and the routing
// oracle, and tune settings. It opens the database directly, so stop the
// daemon first.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/alexflint/go-arg"
	"github.com/davecgh/go-spew/spew"

	"github.com/crisdut/gossip/pkg/app/config"
	"github.com/crisdut/gossip/pkg/database"
	"github.com/crisdut/gossip/pkg/encoders/hex"
	"github.com/crisdut/gossip/pkg/interfaces/router"
	"github.com/crisdut/gossip/pkg/relay"
	"github.com/crisdut/gossip/pkg/routing"
	"github.com/crisdut/gossip/pkg/utils/chk"
	"github.com/crisdut/gossip/pkg/utils/context"
	"github.com/crisdut/gossip/pkg/utils/log"
	"github.com/crisdut/gossip/pkg/version"
)

type listCmd struct{}

type setCmd struct {
	URL   string `arg:"positional,required" help:"relay URL"`
	Rank  int    `arg:"--rank" default:"-1" help:"relay rank, 0 disables the relay"`
	Usage string `arg:"--usage" help:"usage bits to set, comma separated: read,write,advertise,inbox,outbox,discover"`
	Clear string `arg:"--clear" help:"usage bits to clear, same syntax as --usage"`
}

type dumpCmd struct {
	URL string `arg:"positional,required" help:"relay URL"`
}

type seenCmd struct {
	ID string `arg:"positional,required" help:"event id, 64 hex characters"`
}

type personCmd struct {
	Pubkey string `arg:"positional,required" help:"pubkey, 64 hex characters"`
	Write  bool   `arg:"--write" help:"rank for the write direction instead of read"`
}

type numRelaysCmd struct {
	N int `arg:"positional,required" help:"extra relays consulted per tagged pubkey, 0-255"`
}

type args struct {
	List      *listCmd      `arg:"subcommand:list" help:"list all relay records"`
	Set       *setCmd       `arg:"subcommand:set" help:"set rank and usage bits of a relay"`
	Dump      *dumpCmd      `arg:"subcommand:dump" help:"dump one relay record"`
	Seen      *seenCmd      `arg:"subcommand:seen" help:"show which relays an event has been seen on"`
	Person    *personCmd    `arg:"subcommand:person" help:"rank the best relays for a pubkey"`
	NumRelays *numRelaysCmd `arg:"subcommand:num-relays" help:"set the relays-per-person setting"`
}

func (args) Version() string { return "gossip-tool " + version.V }

func main() {
	var a args
	p := arg.MustParse(&a)
	if p.Subcommand() == nil {
		p.WriteHelp(os.Stderr)
		os.Exit(1)
	}
	cfg, err := config.New()
	if chk.E(err) {
		os.Exit(1)
	}
	c, cancel := context.Cancel(context.Bg())
	defer cancel()
	var db *database.D
	if db, err = database.New(c, cancel, cfg.DataDir, "warn"); chk.E(err) {
		os.Exit(1)
	}
	defer func() { chk.E(db.Close()) }()
	switch {
	case a.List != nil:
		err = runList(db)
	case a.Set != nil:
		err = runSet(db, a.Set)
	case a.Dump != nil:
		err = runDump(db, a.Dump)
	case a.Seen != nil:
		err = runSeen(db, a.Seen)
	case a.Person != nil:
		err = runPerson(db, a.Person)
	case a.NumRelays != nil:
		err = runNumRelays(db, a.NumRelays)
	}
	if chk.E(err) {
		os.Exit(1)
	}
}

func runList(db *database.D) (err error) {
	var rls []*relay.R
	if rls, err = db.FilterRelays(func(*relay.R) bool { return true }); chk.E(err) {
		return
	}
	for _, rl := range rls {
		fmt.Printf(
			"%s rank=%d usage=%s ok=%d fail=%d\n",
			rl.URL, rl.Rank, relay.FormatUsage(rl.Usage),
			rl.SuccessCount, rl.FailureCount,
		)
	}
	return
}

func runSet(db *database.D, cmd *setCmd) (err error) {
	var rl *relay.R
	if rl, err = db.GetRelay(cmd.URL); chk.E(err) {
		return
	}
	if rl == nil {
		rl = relay.New(cmd.URL)
		log.I.F("creating new relay record for %s", cmd.URL)
	}
	if cmd.Rank >= 0 {
		if cmd.Rank > 255 {
			return fmt.Errorf("rank must be 0-255, got %d", cmd.Rank)
		}
		rl.Rank = uint8(cmd.Rank)
	}
	if cmd.Usage != "" {
		var bits uint64
		if bits, err = relay.ParseUsage(cmd.Usage); chk.E(err) {
			return
		}
		rl.SetUsage(bits)
	}
	if cmd.Clear != "" {
		var bits uint64
		if bits, err = relay.ParseUsage(cmd.Clear); chk.E(err) {
			return
		}
		rl.ClearUsage(bits)
	}
	return db.SaveRelay(rl)
}

func runDump(db *database.D, cmd *dumpCmd) (err error) {
	var rl *relay.R
	if rl, err = db.GetRelay(cmd.URL); chk.E(err) {
		return
	}
	if rl == nil {
		return fmt.Errorf("no record for %s", cmd.URL)
	}
	spew.Dump(rl)
	return
}

func runSeen(db *database.D, cmd *seenCmd) (err error) {
	var id []byte
	if id, err = hex.Dec(cmd.ID); chk.E(err) {
		return
	}
	seen, err := db.EventSeenOn(id)
	if chk.E(err) {
		return
	}
	for _, s := range seen {
		fmt.Printf("%s %s\n", time.Unix(s.At, 0).Format(time.RFC3339), s.URL)
	}
	return
}

func runPerson(db *database.D, cmd *personCmd) (err error) {
	var pk []byte
	if pk, err = hex.Dec(cmd.Pubkey); chk.E(err) {
		return
	}
	dir := router.Read
	if cmd.Write {
		dir = router.Write
	}
	oracle := routing.NewOracle(db)
	var best []router.Candidate
	if best, err = oracle.BestRelays(pk, dir); chk.E(err) {
		return
	}
	for _, c := range best {
		fmt.Printf("%.2f %s\n", c.Score, c.URL)
	}
	return
}

func runNumRelays(db *database.D, cmd *numRelaysCmd) (err error) {
	if cmd.N < 0 || cmd.N > 255 {
		return fmt.Errorf("value must be 0-255, got %d", cmd.N)
	}
	return db.SetNumRelaysPerPerson(uint8(cmd.N))
}
