package common

import "time"

const (
	DotEnvPath     = ".env"
	ConfigFileName = "config.yml"

	ListenAddrDefault      = ":8080"
	HealthPathDefault      = "/healthz"
	ShutdownTimeoutDefault = 10 * time.Second
)

// injected globals and their placeholders
const (
	EnvSupabaseURL     = "PUBLIC_SUPABASE_URL"
	EnvSupabaseAnonKey = "PUBLIC_SUPABASE_ANON_KEY"

	SupabaseURLPlaceholder     = "https://your-project.supabase.co"
	SupabaseAnonKeyPlaceholder = "your-anon-key"

	InjectMarkerDefault      = "SUPABASE CONFIGURATION"
	InjectMaxBodySizeDefault = 10 << 20
)
