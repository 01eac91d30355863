// Package env reads simple KEY=value .env files into a lookup table usable
// as a go-simpler.org/env source.
package env

import (
	"bufio"
	"os"
	"strings"

	"github.com/crisdut/gossip/pkg/utils/chk"
)

// Env is a set of environment key/value pairs loaded from a file.
type Env map[string]string

// LookupEnv implements the go-simpler.org/env Source interface.
func (e Env) LookupEnv(key string) (value string, ok bool) {
	value, ok = e[key]
	return
}

// GetEnv parses the file at path into an Env. Blank lines and lines
// starting with # are skipped; values may be quoted.
func GetEnv(path string) (e Env, err error) {
	var f *os.File
	if f, err = os.Open(path); chk.E(err) {
		return
	}
	defer f.Close()
	e = make(Env)
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, found := strings.Cut(line, "=")
		if !found {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		value = strings.Trim(value, `"'`)
		e[key] = value
	}
	err = scanner.Err()
	chk.E(err)
	return
}
