package env

// Set at build time with -ldflags "-X github.com/ostafen/gptfmt/internal/env.Version=...".
var (
	Version    = "dev"
	CommitHash = "unknown"
	BuildTime  = "unknown"
)

const AppName = "gptfmt"
