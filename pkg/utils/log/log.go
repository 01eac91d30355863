// Package log exposes the lol printers as short package-level variables, so
// call sites read as log.I.F(...), log.E.Chk(err), and so on.
package log

import (
	"github.com/crisdut/gossip/pkg/utils/lol"
)

var (
	// F prints at fatal level and then panics.
	F = lol.New(lol.Fatal)
	// E prints at error level.
	E = lol.New(lol.Error)
	// W prints at warn level.
	W = lol.New(lol.Warn)
	// I prints at info level.
	I = lol.New(lol.Info)
	// D prints at debug level.
	D = lol.New(lol.Debug)
	// T prints at trace level.
	T = lol.New(lol.Trace)
)
