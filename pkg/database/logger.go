package database

import (
	"strings"

	"go.uber.org/atomic"

	"github.com/crisdut/gossip/pkg/utils/lol"
	"github.com/crisdut/gossip/pkg/utils/log"
)

// logger adapts the lol printers to badger's Logger interface, with its own
// level so database chatter can be quietened independently.
type logger struct {
	level atomic.Int32
}

func newLogger(level int32) (l *logger) {
	l = &logger{}
	l.level.Store(level)
	return
}

func (l *logger) SetLogLevel(level int32) { l.level.Store(level) }

func (l *logger) Errorf(format string, a ...interface{}) {
	if l.level.Load() >= lol.Error {
		log.E.F(strings.TrimSpace(format), a...)
	}
}

func (l *logger) Warningf(format string, a ...interface{}) {
	if l.level.Load() >= lol.Warn {
		log.W.F(strings.TrimSpace(format), a...)
	}
}

func (l *logger) Infof(format string, a ...interface{}) {
	if l.level.Load() >= lol.Info {
		log.I.F(strings.TrimSpace(format), a...)
	}
}

func (l *logger) Debugf(format string, a ...interface{}) {
	if l.level.Load() >= lol.Debug {
		log.D.F(strings.TrimSpace(format), a...)
	}
}
