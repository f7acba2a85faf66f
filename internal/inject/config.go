package inject

import "github.com/yusing/envinject/internal/common"

// Config holds the values injected into matching pages.
type Config struct {
	// URL is exposed as window.PUBLIC_SUPABASE_URL.
	URL string `json:"supabase_url" yaml:"supabase_url"`
	// AnonKey is exposed as window.PUBLIC_SUPABASE_ANON_KEY.
	AnonKey string `json:"supabase_anon_key" yaml:"supabase_anon_key"`
	// Marker must appear in the page for it to be rewritten.
	Marker string `json:"marker" yaml:"marker"`
	// MaxBodySize caps how much of an HTML body is buffered, 0 means unlimited.
	MaxBodySize int64 `json:"max_body_size" yaml:"max_body_size" validate:"gte=0"`
}

func DefaultConfig() Config {
	return Config{
		Marker:      common.InjectMarkerDefault,
		MaxBodySize: common.InjectMaxBodySizeDefault,
	}
}

func (cfg Config) url() string {
	if cfg.URL == "" {
		return common.SupabaseURLPlaceholder
	}
	return cfg.URL
}

func (cfg Config) anonKey() string {
	if cfg.AnonKey == "" {
		return common.SupabaseAnonKeyPlaceholder
	}
	return cfg.AnonKey
}

func (cfg Config) marker() string {
	if cfg.Marker == "" {
		return common.InjectMarkerDefault
	}
	return cfg.Marker
}
