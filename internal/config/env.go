package config

import (
	"os"
	"strconv"
	"strings"

	sanitize "github.com/mrz1836/go-sanitize"
)

// Environment variable names.
const (
	EnvHome         = "LANTERN_HOME"
	EnvNetwork      = "LANTERN_NETWORK"
	EnvNodeURI      = "LANTERN_NODE_URI"
	EnvLogLevel     = "LANTERN_LOG_LEVEL"
	EnvSyncInterval = "LANTERN_SYNC_INTERVAL"
	EnvShareAddress = "LANTERN_SHARE_ADDRESS"
)

// ApplyEnvironment applies environment variable overrides to the
// configuration. The node URI override replaces the first built-in
// endpoint, which is useful for pointing a dev build at a local node.
func ApplyEnvironment(cfg *Config) {
	if v := os.Getenv(EnvHome); v != "" {
		cfg.Home = v
	}

	if v := os.Getenv(EnvNetwork); v != "" {
		cfg.Network = strings.ToLower(strings.TrimSpace(v))
	}

	if v := os.Getenv(EnvNodeURI); v != "" && len(cfg.Nodes.Builtin) > 0 {
		cfg.Nodes.Builtin[0].URI = SanitizeURL(v)
	}

	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}

	if v := os.Getenv(EnvSyncInterval); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
			cfg.Sync.IntervalSeconds = secs
		}
	}

	if v := os.Getenv(EnvShareAddress); v != "" {
		cfg.Relay.ShareAddress = parseBool(v)
	}
}

// parseBool parses a boolean string value.
func parseBool(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "1" || s == "true" || s == "yes" || s == "on" {
		return true
	}
	b, _ := strconv.ParseBool(s)
	return b
}

// SanitizeURL cleans a URL string by removing invalid characters and
// trimming whitespace. Useful for user-provided node URLs with
// copy-paste artifacts.
func SanitizeURL(url string) string {
	return sanitize.URL(strings.TrimSpace(url))
}
