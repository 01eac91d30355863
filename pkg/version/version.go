// Package version carries the release version string.
package version

// V is the release version, set at build time via -ldflags.
var V = "v0.1.0"
