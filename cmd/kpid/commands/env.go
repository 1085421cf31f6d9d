package commands

import (
	"database/sql"
	"fmt"

	"github.com/skubi6/kpi/artifact"
	"github.com/skubi6/kpi/asset"
	"github.com/skubi6/kpi/config"
	"github.com/skubi6/kpi/db"
	"github.com/skubi6/kpi/export"
	"github.com/skubi6/kpi/imports"
	"github.com/skubi6/kpi/logger"
	"github.com/skubi6/kpi/task"
)

// env bundles the wired components a command needs.
type env struct {
	cfg       *config.Config
	database  *sql.DB
	store     *task.Store
	artifacts *artifact.Storage
	assets    *asset.Registry
	runner    *task.Runner
}

// openEnv loads configuration and wires the engine. The caller must Close.
func openEnv() (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	database, err := db.Open(cfg.Database.Path, logger.Logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	backend, err := artifact.NewLocalFileSystem(cfg.Storage.Dir)
	if err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to open artifact storage: %w", err)
	}

	store := task.NewStore(database)
	artifacts := artifact.NewStorage(backend)
	assets := asset.NewRegistry()

	runner := task.NewRunner(store, logger.Logger)
	runner.Register(export.NewJob(
		store, assets, artifacts, logger.Logger,
		cfg.MaxRunTime(), cfg.Exports.MaxPerUserPerForm,
	))
	runner.Register(imports.NewJob(assets, logger.Logger))

	return &env{
		cfg:       cfg,
		database:  database,
		store:     store,
		artifacts: artifacts,
		assets:    assets,
		runner:    runner,
	}, nil
}

func (e *env) Close() {
	e.database.Close()
}
