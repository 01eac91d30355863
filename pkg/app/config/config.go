// Package config provides a go-simpler.org/env configuration table and
// helpers for printing and composing the key/value lists stored in .env
// files.
package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"go-simpler.org/env"

	"github.com/crisdut/gossip/pkg/utils/apputil"
	"github.com/crisdut/gossip/pkg/utils/chk"
	env2 "github.com/crisdut/gossip/pkg/utils/env"
	"github.com/crisdut/gossip/pkg/utils/log"
	"github.com/crisdut/gossip/pkg/utils/lol"
	"github.com/crisdut/gossip/pkg/version"
)

// C holds application configuration settings loaded from environment
// variables and default values. It defines parameters for storage
// locations, logging, the local status API, and outbound network
// behaviour.
type C struct {
	AppName       string        `env:"GOSSIP_APP_NAME" default:"gossip"`
	Config        string        `env:"GOSSIP_CONFIG_DIR" usage:"location for the configuration file, which has the name '.env' and is a standard environment KEY=value<newline>... style" default:"~/.config/gossip"`
	DataDir       string        `env:"GOSSIP_DATA_DIR" usage:"storage location for the relay registry and seen-on ledger" default:"~/.local/share/gossip"`
	Listen        string        `env:"GOSSIP_LISTEN" default:"127.0.0.1" usage:"status API listen address"`
	Port          int           `env:"GOSSIP_PORT" default:"3337" usage:"status API port"`
	LogLevel      string        `env:"GOSSIP_LOG_LEVEL" default:"info" usage:"debug level: fatal error warn info debug trace"`
	DbLogLevel    string        `env:"GOSSIP_DB_LOG_LEVEL" default:"info" usage:"debug level: fatal error warn info debug trace"`
	Pprof         string        `env:"GOSSIP_PPROF" usage:"enable pprof on 127.0.0.1:6060" enum:"cpu,memory,allocation"`
	Proxy         string        `env:"GOSSIP_PROXY" usage:"SOCKS5 proxy address host:port for all outbound relay connections"`
	DefaultRelays []string      `env:"GOSSIP_DEFAULT_RELAYS" usage:"relays seeded into the registry with write usage on first startup (comma separated)" default:"wss://relay.damus.io/,wss://nos.lol/,wss://relay.nostr.band/"`
	PublishWait   time.Duration `env:"GOSSIP_PUBLISH_WAIT" usage:"how long to wait for a relay's OK after submitting an event, uses notation 0h0m0s" default:"15s"`
}

// New creates a configuration, loading environment variables over
// defaults and then a .env file from the config directory if one exists.
func New() (cfg *C, err error) {
	cfg = &C{}
	if err = env.Load(cfg, &env.Options{SliceSep: ","}); chk.T(err) {
		return
	}
	if cfg.Config == "" || strings.Contains(cfg.Config, "~") {
		cfg.Config = filepath.Join(xdg.ConfigHome, cfg.AppName)
	}
	if cfg.DataDir == "" || strings.Contains(cfg.DataDir, "~") {
		cfg.DataDir = filepath.Join(xdg.DataHome, cfg.AppName)
	}
	envPath := filepath.Join(cfg.Config, ".env")
	if err = apputil.EnsureDir(envPath); chk.E(err) {
		return
	}
	if apputil.FileExists(envPath) {
		var e env2.Env
		if e, err = env2.GetEnv(envPath); chk.T(err) {
			return
		}
		if err = env.Load(
			cfg, &env.Options{SliceSep: ",", Source: e},
		); chk.E(err) {
			return
		}
		lol.SetLogLevel(cfg.LogLevel)
		log.I.F("loaded configuration from %s", envPath)
	}
	// an empty GOSSIP_DEFAULT_RELAYS still yields a single empty string
	// element, and interior empty fields need removing too.
	var seeds []string
	for _, u := range cfg.DefaultRelays {
		if u == "" {
			continue
		}
		seeds = append(seeds, u)
	}
	cfg.DefaultRelays = seeds
	return
}

// HelpRequested reports whether the first command line argument is one of
// the common help flags.
func HelpRequested() (help bool) {
	if len(os.Args) > 1 {
		switch strings.ToLower(os.Args[1]) {
		case "help", "-h", "--h", "-help", "--help", "?":
			help = true
		}
	}
	return
}

// GetEnv reports whether the first command line argument is "env",
// signalling that the current configuration should be printed.
func GetEnv() (requested bool) {
	if len(os.Args) > 1 {
		switch strings.ToLower(os.Args[1]) {
		case "env":
			requested = true
		}
	}
	return
}

// KV is a key/value pair.
type KV struct{ Key, Value string }

// KVSlice is a sortable slice of key/value pairs.
type KVSlice []KV

func (kv KVSlice) Len() int           { return len(kv) }
func (kv KVSlice) Less(i, j int) bool { return kv[i].Key < kv[j].Key }
func (kv KVSlice) Swap(i, j int)      { kv[i], kv[j] = kv[j], kv[i] }

// Compose merges two KVSlice instances into a new slice where pairs from
// kv2 override duplicate keys from the receiver.
func (kv KVSlice) Compose(kv2 KVSlice) (out KVSlice) {
	for _, p := range kv {
		out = append(out, p)
	}
out:
	for i, p := range kv2 {
		for j, q := range out {
			// if the key is repeated, replace the value
			if p.Key == q.Key {
				out[j].Value = kv2[i].Value
				continue out
			}
		}
		out = append(out, p)
	}
	return
}

// EnvKV generates key/value pairs from a configuration object's struct
// tags, skipping fields without an "env" tag.
func EnvKV(cfg any) (m KVSlice) {
	t := reflect.TypeOf(cfg)
	for i := 0; i < t.NumField(); i++ {
		k := t.Field(i).Tag.Get("env")
		v := reflect.ValueOf(cfg).Field(i).Interface()
		var val string
		switch v.(type) {
		case string:
			val = v.(string)
		case int, bool, time.Duration:
			val = fmt.Sprint(v)
		case []string:
			arr := v.([]string)
			if len(arr) > 0 {
				val = strings.Join(arr, ",")
			}
		}
		// this can happen with embedded structs
		if k == "" {
			continue
		}
		m = append(m, KV{k, val})
	}
	return
}

// PrintEnv outputs sorted environment key/value pairs from a
// configuration object to the provided writer.
func PrintEnv(cfg *C, printer io.Writer) {
	kvs := EnvKV(*cfg)
	sort.Sort(kvs)
	for _, v := range kvs {
		_, _ = fmt.Fprintf(printer, "%s=%s\n", v.Key, v.Value)
	}
}

// PrintHelp prints the version, environment variable configuration and
// .env file handling details to the provided writer.
func PrintHelp(cfg *C, printer io.Writer) {
	_, _ = fmt.Fprintf(
		printer,
		"%s %s\n\n", cfg.AppName, version.V,
	)
	_, _ = fmt.Fprintf(
		printer,
		"Environment variables that configure %s:\n\n", cfg.AppName,
	)
	env.Usage(cfg, printer, &env.Options{SliceSep: ","})
	_, _ = fmt.Fprintf(
		printer,
		"\nCLI parameter 'help' also prints this information\n"+
			"\n.env file found at the path %s will be automatically "+
			"loaded for configuration.\nset these two variables for a custom load path,"+
			" this file will be created on first startup.\nenvironment overrides it and "+
			"you can also edit the file to set configuration options\n\n"+
			"use the parameter 'env' to print out the current configuration to the terminal\n\n"+
			"set the environment using\n\n\t%s env > %s/.env\n",
		cfg.Config,
		os.Args[0],
		cfg.Config,
	)
	fmt.Fprintf(printer, "\ncurrent configuration:\n\n")
	PrintEnv(cfg, printer)
	fmt.Fprintln(printer)
	return
}
