// Package module implements the analysis service module
package module

import (
	"keydrill/internal/modkit"
	"keydrill/internal/services/analysis/domain"
	"keydrill/internal/services/analysis/repo"
	"keydrill/internal/services/analysis/service"
)

// Ports exposed by the analysis module
type Ports struct {
	Analyzer    domain.AnalyzerPort
	Persister   domain.PersisterPort
	Maintenance domain.MaintenancePort
}

// Module implements the analysis service module
type Module struct {
	deps  modkit.Deps
	ports Ports
}

// New constructs a new analysis module
func New(deps modkit.Deps) *Module {
	opts := FromConfig(deps.Cfg)

	svc := service.New(deps.PG, repo.NewPG(), service.Config{
		DecayAlpha: opts.DecayAlpha,
		Sizes:      opts.Sizes,
	})

	m := &Module{deps: deps}
	m.ports = Ports{
		Analyzer:    svc,
		Persister:   svc,
		Maintenance: svc,
	}
	return m
}

// Name identifies the module
func (m *Module) Name() string { return "analysis" }

// Ports returns the module's exposed ports
func (m *Module) Ports() Ports { return m.ports }
