// Package config loads studio client settings from YAML or JSON files
// and exposes them through typed accessors with defaults.
package config

import (
	"strings"
	"time"
)

// Well-known settings keys.
const (
	KeyAPIBaseURL     = "api_base_url"
	KeyWSBaseURL      = "ws_base_url"
	KeyRoom           = "room"
	KeyRequestTimeout = "request_timeout"
	KeyStatsInterval  = "stats_interval"
	KeySessionPath    = "session_path"
)

// Config wraps a map[string]any for type-safe value extraction.
// Accessors return the given default when the key is missing or the
// value cannot be converted.
type Config struct {
	data map[string]any
}

// New creates a Config from the given map. A nil map yields an empty
// Config whose accessors return their defaults.
func New(data map[string]any) Config {
	if data == nil {
		data = make(map[string]any)
	}
	return Config{data: data}
}

// String returns the string value for key, or defaultVal.
func (c Config) String(key, defaultVal string) string {
	if s, ok := c.data[key].(string); ok {
		return s
	}
	return defaultVal
}

// Bool returns the boolean value for key, or defaultVal.
func (c Config) Bool(key string, defaultVal bool) bool {
	if b, ok := c.data[key].(bool); ok {
		return b
	}
	return defaultVal
}

// Int returns the integer value for key, or defaultVal.
//
// Accepts int, int64, and float64 without a fractional part.
func (c Config) Int(key string, defaultVal int) int {
	switch v := c.data[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		if v == float64(int(v)) {
			return int(v)
		}
	}
	return defaultVal
}

// Duration returns the duration value for key, or defaultVal.
//
// Accepts a time.ParseDuration string, or a number interpreted as
// seconds.
func (c Config) Duration(key string, defaultVal time.Duration) time.Duration {
	switch v := c.data[key].(type) {
	case string:
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	case int:
		return time.Duration(v) * time.Second
	case int64:
		return time.Duration(v) * time.Second
	case float64:
		return time.Duration(v * float64(time.Second))
	case time.Duration:
		return v
	}
	return defaultVal
}

// Settings is the resolved client configuration.
type Settings struct {
	// APIBaseURL is the backend HTTP base, e.g. "http://localhost:8000".
	APIBaseURL string
	// WSBaseURL is the websocket base. Empty derives it from APIBaseURL
	// by swapping the scheme.
	WSBaseURL string
	// Room is the default collaboration room when no workflow is open.
	Room string
	// RequestTimeout bounds individual API requests.
	RequestTimeout time.Duration
	// StatsInterval is the system-health polling period.
	StatsInterval time.Duration
	// SessionPath is the SQLite file holding the persisted session, or
	// ":memory:".
	SessionPath string
}

// Settings resolves the typed client settings with defaults matching
// the hosted backend's development setup.
func (c Config) Settings() Settings {
	s := Settings{
		APIBaseURL:     c.String(KeyAPIBaseURL, "http://localhost:8000"),
		WSBaseURL:      c.String(KeyWSBaseURL, ""),
		Room:           c.String(KeyRoom, "default-room"),
		RequestTimeout: c.Duration(KeyRequestTimeout, 30*time.Second),
		StatsInterval:  c.Duration(KeyStatsInterval, 10*time.Second),
		SessionPath:    c.String(KeySessionPath, ":memory:"),
	}
	if s.WSBaseURL == "" {
		s.WSBaseURL = DeriveWSBase(s.APIBaseURL)
	}
	return s
}

// DeriveWSBase converts an HTTP base URL into its websocket
// counterpart by swapping the scheme.
func DeriveWSBase(apiBase string) string {
	switch {
	case strings.HasPrefix(apiBase, "https://"):
		return "wss://" + strings.TrimPrefix(apiBase, "https://")
	case strings.HasPrefix(apiBase, "http://"):
		return "ws://" + strings.TrimPrefix(apiBase, "http://")
	default:
		return apiBase
	}
}
