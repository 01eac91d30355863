package lol

import (
	"bytes"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func capture(t *testing.T) (buf *bytes.Buffer) {
	t.Helper()
	buf = &bytes.Buffer{}
	SetWriter(buf)
	t.Cleanup(func() {
		SetWriter(os.Stderr)
		SetLogLevelInt(Info)
	})
	return
}

func TestLevelFiltering(t *testing.T) {
	buf := capture(t)
	SetLogLevel("info")
	info := New(Info)
	debug := New(Debug)

	info.F("hello %s", "there")
	debug.F("not shown")
	out := buf.String()
	require.Contains(t, out, "hello there")
	assert.NotContains(t, out, "not shown")
	// the call site rides along on every line
	assert.Contains(t, out, "lol_test.go")

	buf.Reset()
	SetLogLevel("trace")
	debug.Ln("now", "shown")
	assert.Contains(t, buf.String(), "now shown")
}

func TestChk(t *testing.T) {
	buf := capture(t)
	p := New(Error)
	require.False(t, p.Chk(nil))
	assert.Empty(t, buf.String())
	require.True(t, p.Chk(errors.New("boom")))
	assert.Contains(t, buf.String(), "boom")
}

func TestErrConstructsAndLogs(t *testing.T) {
	buf := capture(t)
	p := New(Error)
	err := p.Err("bad thing %d", 7)
	require.EqualError(t, err, "bad thing 7")
	assert.Contains(t, buf.String(), "bad thing 7")
}

func TestGetLogLevel(t *testing.T) {
	assert.Equal(t, Trace, GetLogLevel("trace"))
	assert.Equal(t, Off, GetLogLevel("off"))
	assert.Equal(t, Info, GetLogLevel("nonsense"))
}
