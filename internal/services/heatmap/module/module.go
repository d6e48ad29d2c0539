// Package module implements the heatmap service module
package module

import (
	"keydrill/internal/modkit"
	"keydrill/internal/services/heatmap/domain"
	"keydrill/internal/services/heatmap/repo"
	"keydrill/internal/services/heatmap/service"
)

// Ports exposed by the heatmap module
type Ports struct {
	Reader domain.ReaderPort
}

// Module implements the heatmap service module
type Module struct {
	deps  modkit.Deps
	ports Ports
}

// New constructs a new heatmap module
func New(deps modkit.Deps) *Module {
	opts := FromConfig(deps.Cfg)

	svc := service.New(deps.PG, repo.NewPG(), service.Config{
		Thresholds:      domain.Thresholds{GreenPct: opts.GreenPct, AmberPct: opts.AmberPct},
		DefaultTargetMs: opts.DefaultTargetMs,
		WeakMinSamples:  opts.WeakMinSamples,
		HardLimit:       opts.HardLimit,
	})

	m := &Module{deps: deps}
	m.ports = Ports{Reader: svc}
	return m
}

// Name identifies the module
func (m *Module) Name() string { return "heatmap" }

// Ports returns the module's exposed ports
func (m *Module) Ports() Ports { return m.ports }
