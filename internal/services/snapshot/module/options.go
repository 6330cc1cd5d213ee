package module

import (
	"time"

	"repotraffic/internal/platform/config"
)

// Transport names accepted by REPOTRAFFIC_TRANSPORT
const (
	TransportGH   = "gh"
	TransportHTTP = "http"
)

// Options controls output location and the GitHub transport
type Options struct {
	OutDir    string
	Transport string

	// gh CLI transport
	GHBin string

	// REST transport
	BaseURL   string
	Tokens    []string
	UserAgent string
	Timeout   time.Duration
}

// FromConfig reads REPOTRAFFIC_* values from process config/env.
// GITHUB_TOKEN is the fallback when no token list is configured
func FromConfig(cfg config.Conf) Options {
	rc := cfg.Prefix("REPOTRAFFIC_")
	tokens := rc.MayCSV("GITHUB_TOKENS", nil)
	if len(tokens) == 0 {
		tokens = cfg.MayCSV("GITHUB_TOKEN", nil)
	}
	return Options{
		OutDir:    rc.MayString("OUT_DIR", ""),
		Transport: rc.MayEnum("TRANSPORT", TransportGH, TransportGH, TransportHTTP),
		GHBin:     rc.MayString("GH_BIN", "gh"),
		BaseURL:   rc.MayURL("GITHUB_API_URL", ""),
		Tokens:    tokens,
		UserAgent: rc.MayString("USER_AGENT", "repotraffic"),
		Timeout:   rc.MayDuration("HTTP_TIMEOUT", 15*time.Second),
	}
}
