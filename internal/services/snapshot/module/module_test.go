package module

import (
	"context"
	"testing"
	"time"

	"repotraffic/internal/adapters/ingest/ghcli"
	gh "repotraffic/internal/adapters/ingest/github"
	"repotraffic/internal/adapters/sink/jsonfs"
	modkit "repotraffic/internal/modkit"
	"repotraffic/internal/platform/config"
	"repotraffic/internal/platform/logger"
	kit "repotraffic/internal/platform/testkit"
)

type nopFetcher struct{}

func (nopFetcher) Fetch(context.Context, string) ([]byte, error) { return []byte(`{}`), nil }

func deps() modkit.Deps { return modkit.Deps{Log: *logger.Get(), Cfg: config.New()} }

func TestFromConfig_Defaults(t *testing.T) {
	for _, k := range []string{"REPOTRAFFIC_OUT_DIR", "REPOTRAFFIC_TRANSPORT", "REPOTRAFFIC_GH_BIN",
		"REPOTRAFFIC_GITHUB_API_URL", "REPOTRAFFIC_GITHUB_TOKENS", "GITHUB_TOKEN",
		"REPOTRAFFIC_USER_AGENT", "REPOTRAFFIC_HTTP_TIMEOUT"} {
		t.Setenv(k, "")
	}
	o := FromConfig(config.New())
	if o.Transport != TransportGH || o.GHBin != "gh" || o.OutDir != "" {
		t.Fatalf("defaults = %+v", o)
	}
	if o.Timeout != 15*time.Second || o.UserAgent != "repotraffic" || len(o.Tokens) != 0 {
		t.Fatalf("defaults = %+v", o)
	}
}

func TestFromConfig_Overrides(t *testing.T) {
	t.Setenv("REPOTRAFFIC_OUT_DIR", "/data")
	t.Setenv("REPOTRAFFIC_TRANSPORT", "HTTP")
	t.Setenv("REPOTRAFFIC_GITHUB_API_URL", "https://ghe.example.com/api/v3/")
	t.Setenv("REPOTRAFFIC_GITHUB_TOKENS", "a, b,,")
	t.Setenv("GITHUB_TOKEN", "ignored")
	t.Setenv("REPOTRAFFIC_HTTP_TIMEOUT", "3s")

	o := FromConfig(config.New())
	if o.OutDir != "/data" || o.Transport != TransportHTTP {
		t.Fatalf("opts = %+v", o)
	}
	if o.BaseURL != "https://ghe.example.com/api/v3" {
		t.Fatalf("base url = %q", o.BaseURL)
	}
	if len(o.Tokens) != 2 || o.Tokens[0] != "a" || o.Tokens[1] != "b" {
		t.Fatalf("tokens = %v", o.Tokens)
	}
	if o.Timeout != 3*time.Second {
		t.Fatalf("timeout = %v", o.Timeout)
	}
}

func TestFromConfig_TokenFallbackAndBadTransport(t *testing.T) {
	t.Setenv("REPOTRAFFIC_GITHUB_TOKENS", "")
	t.Setenv("GITHUB_TOKEN", "solo")
	if o := FromConfig(config.New()); len(o.Tokens) != 1 || o.Tokens[0] != "solo" {
		t.Fatalf("tokens = %v", o.Tokens)
	}

	t.Setenv("REPOTRAFFIC_TRANSPORT", "carrier-pigeon")
	kit.MustPanic(t, func() { FromConfig(config.New()) })
}

func TestNew_SelectsTransport(t *testing.T) {
	t.Setenv("REPOTRAFFIC_TRANSPORT", "gh")
	m := New(deps())
	p := m.Ports().(Ports)
	if _, ok := p.Fetcher.(*ghcli.Fetcher); !ok {
		t.Fatalf("gh transport fetcher = %T", p.Fetcher)
	}
	if _, ok := p.Writer.(*jsonfs.Sink); !ok {
		t.Fatalf("writer = %T", p.Writer)
	}
	if m.Name() != "snapshot" || m.Service() == nil {
		t.Fatalf("module = %+v", m)
	}

	t.Setenv("REPOTRAFFIC_TRANSPORT", "http")
	p = New(deps()).Ports().(Ports)
	if _, ok := p.Fetcher.(*gh.Client); !ok {
		t.Fatalf("http transport fetcher = %T", p.Fetcher)
	}
}

func TestNew_InjectedPortsWin(t *testing.T) {
	t.Setenv("REPOTRAFFIC_TRANSPORT", "")
	m := New(deps(), modkit.WithName("custom"), modkit.WithPorts(Ports{Fetcher: nopFetcher{}}))
	p := m.Ports().(Ports)
	if _, ok := p.Fetcher.(nopFetcher); !ok {
		t.Fatalf("fetcher = %T", p.Fetcher)
	}
	if _, ok := p.Writer.(*jsonfs.Sink); !ok {
		t.Fatalf("writer should default, got %T", p.Writer)
	}
	if m.Name() != "custom" || m.Options().Transport != TransportGH {
		t.Fatalf("name = %q opts = %+v", m.Name(), m.Options())
	}
}
