// Package module wires the snapshot service from config using modkit
package module

import (
	"time"

	"repotraffic/internal/adapters/ingest/ghcli"
	gh "repotraffic/internal/adapters/ingest/github"
	"repotraffic/internal/adapters/sink/jsonfs"
	modkit "repotraffic/internal/modkit"
	"repotraffic/internal/services/snapshot/domain"
	"repotraffic/internal/services/snapshot/service"
)

// Ports are the resolved capabilities the service runs against.
// Passing Ports via modkit.WithPorts overrides the config driven choice per field
type Ports struct {
	Fetcher domain.Fetcher
	Writer  domain.Writer
	Now     func() time.Time
}

// Module implements the snapshot module
type Module struct {
	deps  modkit.Deps
	name  string
	opts  Options
	ports Ports
	svc   *service.Svc
}

var _ modkit.Module = (*Module)(nil)

// New constructs the snapshot module (config-driven, ports overridable)
func New(deps modkit.Deps, opts ...modkit.Option) *Module {
	b := modkit.Build(append([]modkit.Option{modkit.WithName("snapshot")}, opts...)...)
	cfg := FromConfig(deps.Cfg)

	var p Ports
	if injected, ok := b.Ports.(Ports); ok {
		p = injected
	}
	if p.Fetcher == nil {
		p.Fetcher = newFetcher(cfg)
	}
	if p.Writer == nil {
		p.Writer = jsonfs.New()
	}

	deps.Log.Debug().
		Str("module", b.Name).
		Str("transport", cfg.Transport).
		Int("tokens", len(cfg.Tokens)).
		Msg("module wired")

	return &Module{
		deps:  deps,
		name:  b.Name,
		opts:  cfg,
		ports: p,
		svc:   service.New(p.Fetcher, p.Writer, service.Options{Now: p.Now}),
	}
}

func newFetcher(cfg Options) domain.Fetcher {
	if cfg.Transport == TransportHTTP {
		return gh.NewClient(gh.Options{
			BaseURL:   cfg.BaseURL,
			UserAgent: cfg.UserAgent,
			Timeout:   cfg.Timeout,
			Tokens:    cfg.Tokens,
		})
	}
	return ghcli.New(cfg.GHBin)
}

// Name returns the module name
func (m *Module) Name() string { return m.name }

// Ports returns the resolved Ports
func (m *Module) Ports() any { return m.ports }

// Options returns the config the module was built from
func (m *Module) Options() Options { return m.opts }

// Service returns the snapshot service
func (m *Module) Service() *service.Svc { return m.svc }
