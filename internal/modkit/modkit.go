// Package modkit carries the shared dependencies service modules are built from
package modkit

import (
	"keydrill/internal/platform/config"
	"keydrill/internal/platform/logger"
	"keydrill/internal/platform/store"
)

// Deps is the dependency bag handed to every service module constructor.
// Modules read their own config scope from Cfg and bind repos against PG
type Deps struct {
	Cfg config.Conf
	PG  store.TxRunner
	Log logger.Logger
}
