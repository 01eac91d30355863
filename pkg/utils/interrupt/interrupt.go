// Package interrupt runs registered cleanup handlers when the process
// receives an interrupt or termination signal, and can restart the binary in
// place for upgrade-and-carry-on flows.
package interrupt

import (
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"runtime"
	"sync"
	"syscall"

	"github.com/kardianos/osext"

	"github.com/crisdut/gossip/pkg/utils/chk"
	"github.com/crisdut/gossip/pkg/utils/log"
)

type handlerWithSource struct {
	source string
	fn     func()
}

var (
	mx        sync.Mutex
	handlers  []handlerWithSource
	listening bool
	requested chan struct{} = make(chan struct{})
	// restart indicates the process should exec itself rather than exit
	restart bool
)

func listen() {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)
	go func() {
		select {
		case sig := <-sigs:
			log.I.F("received signal %v, shutting down", sig)
		case <-requested:
		}
		runHandlers()
		if restart {
			var path string
			var err error
			if path, err = osext.Executable(); chk.E(err) {
				os.Exit(1)
			}
			log.I.F("restarting %s", path)
			cmd := exec.Command(path, os.Args[1:]...)
			cmd.Stdin = os.Stdin
			cmd.Stdout = os.Stdout
			cmd.Stderr = os.Stderr
			if err = cmd.Start(); chk.E(err) {
				os.Exit(1)
			}
		}
		os.Exit(0)
	}()
}

func runHandlers() {
	mx.Lock()
	defer mx.Unlock()
	// last registered, first run
	for i := len(handlers) - 1; i >= 0; i-- {
		log.D.F("running interrupt handler from %s", handlers[i].source)
		handlers[i].fn()
	}
	handlers = nil
}

// AddHandler registers a function to run at shutdown. Handlers run in
// reverse registration order.
func AddHandler(fn func()) {
	mx.Lock()
	defer mx.Unlock()
	loc := "unknown"
	if _, file, line, ok := runtime.Caller(1); ok {
		loc = fmt.Sprintf("%s:%d", file, line)
	}
	handlers = append(handlers, handlerWithSource{source: loc, fn: fn})
	if !listening {
		listening = true
		listen()
	}
}

// Request triggers the shutdown sequence without a signal.
func Request() {
	select {
	case <-requested:
	default:
		close(requested)
	}
}

// RequestRestart triggers shutdown and then re-executes the binary.
func RequestRestart() {
	mx.Lock()
	restart = true
	mx.Unlock()
	Request()
}
