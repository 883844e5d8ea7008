// Package modkit holds what every API module shares: its dependencies and
// the name, prefix and middleware it mounts with
package modkit

import (
	"spec11/internal/modkit/module"
	"spec11/internal/modkit/repokit"
	"spec11/internal/platform/config"
	"spec11/internal/platform/logger"
	"spec11/internal/platform/store"
)

// Deps are handed to every module constructor. PG and CH are nil when the
// backend is not configured
type Deps struct {
	Log logger.Logger
	Cfg config.Conf
	PG  repokit.TxRunner
	CH  store.Clickhouse
}

// Module is re-exported so module packages need only import modkit
type Module = module.Module
