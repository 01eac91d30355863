// Package lol (log of location) is a leveled logger that prints the code
// location of the call site with every message, so log lines double as
// clickable references in most terminals and IDEs.
package lol

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/fatih/color"
	"go.uber.org/atomic"
)

// Log levels, lowest to most verbose.
const (
	Off int32 = iota
	Fatal
	Error
	Warn
	Info
	Debug
	Trace
)

// LevelNames are the named log levels in ascending verbosity order.
var LevelNames = []string{"off", "fatal", "error", "warn", "info", "debug", "trace"}

var labels = []func(a ...interface{}) string{
	nil,
	color.New(color.FgRed, color.Bold).SprintFunc(),
	color.New(color.FgRed).SprintFunc(),
	color.New(color.FgYellow).SprintFunc(),
	color.New(color.FgGreen).SprintFunc(),
	color.New(color.FgBlue).SprintFunc(),
	color.New(color.FgMagenta).SprintFunc(),
}

var (
	level  atomic.Int32
	writer io.Writer = os.Stderr
	start            = time.Now()
)

func init() { level.Store(Info) }

// GetLogLevel returns the level number for a level name, defaulting to info
// for anything unrecognised.
func GetLogLevel(name string) (l int32) {
	l = Info
	for i, ll := range LevelNames {
		if strings.EqualFold(ll, name) {
			l = int32(i)
		}
	}
	return
}

// SetLogLevel sets the process-wide log level by name.
func SetLogLevel(name string) { level.Store(GetLogLevel(name)) }

// SetLogLevelInt sets the process-wide log level by number.
func SetLogLevelInt(l int32) { level.Store(l) }

// SetWriter replaces the output writer, for tests mostly.
func SetWriter(w io.Writer) { writer = w }

// P is a printer for one log level.
type P struct {
	l int32
}

// New returns a printer for the given level.
func New(l int32) (p *P) { return &P{l: l} }

func (p *P) enabled() bool { return level.Load() >= p.l }

func (p *P) print(s string) {
	loc := "???"
	if _, file, line, ok := runtime.Caller(3); ok {
		loc = fmt.Sprintf("%s:%d", file, line)
	}
	fmt.Fprintf(
		writer, "%s %s %s %s\n",
		time.Since(start).Round(time.Microsecond),
		labels[p.l](strings.ToUpper(LevelNames[p.l][:1])),
		strings.TrimSpace(s), loc,
	)
	if p.l == Fatal {
		panic(s)
	}
}

func (p *P) emit(s string) {
	if p.enabled() {
		p.print(s)
	}
}

// F prints a formatted message at the printer's level.
func (p *P) F(format string, a ...interface{}) {
	if p.enabled() {
		p.emit(fmt.Sprintf(format, a...))
	}
}

// Ln prints the operands space-separated at the printer's level.
func (p *P) Ln(a ...interface{}) {
	if p.enabled() {
		p.emit(fmt.Sprintln(a...))
	}
}

// C calls the closure and prints the returned string, only evaluating it if
// the level is enabled. For expensive log values.
func (p *P) C(f func() string) {
	if p.enabled() {
		p.emit(f())
	}
}

// Chk logs err at the printer's level if it is non-nil, and reports whether
// it was. This is the workhorse behind the chk package.
func (p *P) Chk(err error) (is bool) {
	if err == nil {
		return
	}
	p.emit(err.Error())
	return true
}

// Err formats an error, logs it at the printer's level, and returns it. This
// is the workhorse behind the errorf package.
func (p *P) Err(format string, a ...interface{}) (err error) {
	err = fmt.Errorf(format, a...)
	p.emit(err.Error())
	return
}
