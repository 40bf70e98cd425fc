package config

import "sync/atomic"

// Provider hands out the current configuration. Handlers call Get on every
// request, so a reload becomes visible without restarting the server.
type Provider struct {
	cfg atomic.Pointer[Config]
}

func NewProvider(cfg *Config) *Provider {
	if cfg == nil {
		panic("config: NewProvider requires a non-nil config")
	}
	p := &Provider{}
	p.cfg.Store(cfg)
	return p
}

func (p *Provider) Get() *Config {
	return p.cfg.Load()
}

func (p *Provider) Update(cfg *Config) {
	if cfg == nil {
		return
	}
	p.cfg.Store(cfg)
}
