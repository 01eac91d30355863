// Package normalize produces the canonical form of relay websocket URLs.
// Every URL stored in or compared by the relay registry goes through here, so
// near-duplicates differing in case, scheme spelling, default port or
// trailing slash collapse to one key.
package normalize

import (
	"strings"

	"github.com/crisdut/gossip/pkg/utils/errorf"
)

// ParseURL returns the canonical form of a relay URL:
//
//   - scheme and host lowercased
//   - http/https rewritten to ws/wss, a bare host defaults to wss
//   - default ports (80 for ws, 443 for wss) stripped
//   - trailing slashes trimmed from the path, query and fragment dropped
//
// Anything that does not reduce to a ws or wss endpoint with a host is an
// error.
func ParseURL(s string) (canonical string, err error) {
	s = strings.TrimSpace(s)
	if s == "" {
		err = errorf.D("empty relay url")
		return
	}
	scheme := "wss"
	rest := s
	if i := strings.Index(s, "://"); i >= 0 {
		scheme = strings.ToLower(s[:i])
		rest = s[i+3:]
	}
	switch scheme {
	case "http":
		scheme = "ws"
	case "https":
		scheme = "wss"
	case "ws", "wss":
	default:
		err = errorf.D("unusable relay url scheme %q in %q", scheme, s)
		return
	}
	var host, path string
	if i := strings.IndexAny(rest, "/?#"); i >= 0 {
		host = rest[:i]
		if rest[i] == '/' {
			path = rest[i:]
		}
	} else {
		host = rest
	}
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	host = strings.ToLower(host)
	if host == "" {
		err = errorf.D("relay url %q has no host", s)
		return
	}
	if strings.ContainsAny(host, "@ \t") {
		err = errorf.D("relay url %q has an unusable host", s)
		return
	}
	portIdx := -1
	if strings.HasPrefix(host, "[") {
		// bracketed IPv6 literal, the port sits after the bracket
		end := strings.IndexByte(host, ']')
		if end < 0 {
			err = errorf.D("relay url %q has an unusable host", s)
			return
		}
		if end+1 < len(host) {
			if host[end+1] != ':' {
				err = errorf.D("relay url %q has an unusable host", s)
				return
			}
			portIdx = end + 1
		}
	} else if i := strings.LastIndexByte(host, ':'); i >= 0 {
		portIdx = i
	}
	if portIdx >= 0 {
		port := host[portIdx+1:]
		if port == "" || strings.Trim(port, "0123456789") != "" {
			err = errorf.D("relay url %q has an unusable port", s)
			return
		}
	}
	switch {
	case scheme == "ws" && strings.HasSuffix(host, ":80"):
		host = strings.TrimSuffix(host, ":80")
	case scheme == "wss" && strings.HasSuffix(host, ":443"):
		host = strings.TrimSuffix(host, ":443")
	}
	path = strings.TrimRight(path, "/")
	canonical = scheme + "://" + host + path
	return
}

// URL is the sloppy form of ParseURL for call sites that treat an unusable
// URL the same as no URL. Returns an empty string on failure.
func URL(s string) (canonical string) {
	canonical, _ = ParseURL(s)
	return
}
