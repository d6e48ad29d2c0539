// Package module implements the trend service module
package module

import (
	"keydrill/internal/modkit"
	"keydrill/internal/services/trend/domain"
	"keydrill/internal/services/trend/repo"
	"keydrill/internal/services/trend/service"
)

// Ports exposed by the trend module
type Ports struct {
	Reader domain.ReaderPort
}

// Module implements the trend service module
type Module struct {
	deps  modkit.Deps
	ports Ports
}

// New constructs a new trend module
func New(deps modkit.Deps) *Module {
	opts := FromConfig(deps.Cfg)

	svc := service.New(deps.PG, repo.NewPG(), service.Config{
		DefaultSessions: opts.DefaultSessions,
		DefaultTargetMs: opts.DefaultTargetMs,
	})

	m := &Module{deps: deps}
	m.ports = Ports{Reader: svc}
	return m
}

// Name identifies the module
func (m *Module) Name() string { return "trend" }

// Ports returns the module's exposed ports
func (m *Module) Ports() Ports { return m.ports }
