// Package errorf constructs errors that are also logged at the level named
// by the helper, with the call site location, same scheme as chk.
package errorf

import (
	"github.com/crisdut/gossip/pkg/utils/log"
)

var (
	// E makes and logs an error at error level.
	E = log.E.Err
	// W makes and logs an error at warn level.
	W = log.W.Err
	// D makes and logs an error at debug level.
	D = log.D.Err
	// T makes and logs an error at trace level.
	T = log.T.Err
)
