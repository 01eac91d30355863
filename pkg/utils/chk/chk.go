// Package chk provides one-letter error check helpers that log a non-nil
// error at the corresponding level and report whether it was non-nil,
// enabling the idiom:
//
//	if err = f(); chk.E(err) {
//		return
//	}
package chk

import (
	"github.com/crisdut/gossip/pkg/utils/log"
)

var (
	// F logs at fatal level (and panics).
	F = log.F.Chk
	// E logs at error level.
	E = log.E.Chk
	// W logs at warn level.
	W = log.W.Chk
	// D logs at debug level.
	D = log.D.Chk
	// T logs at trace level.
	T = log.T.Chk
)
