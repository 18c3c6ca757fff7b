package main

import (
	"context"
	"fmt"
	"strings"

	"soulminer/internal/asset"
	"soulminer/internal/config"
	"soulminer/internal/hierarchy"
	"soulminer/internal/logger"
	"soulminer/internal/store"
	"soulminer/internal/store/postgres"
	"soulminer/internal/store/sqlite"
)

type project struct {
	cfg    *config.ProjectConfig
	schema *config.Schema
	log    *logger.Logger
}

func loadProject() (*project, error) {
	cfg, err := config.LoadProjectConfig(configPath)
	if err != nil {
		return nil, err
	}
	schema, err := config.LoadSchema(schemaPath)
	if err != nil {
		return nil, err
	}
	mode := cfg.Log.Mode
	if logMode != "" {
		mode = logMode
	}
	log, err := logger.New(mode)
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}
	return &project{cfg: cfg, schema: schema, log: log}, nil
}

func (p *project) source() (*asset.Dir, error) {
	return asset.NewDir(asset.DirOptions{
		Paths:     p.cfg.Assets.Paths,
		Include:   p.cfg.Assets.Include,
		Exclude:   p.cfg.Assets.Exclude,
		Natives:   p.schema.NativeMap(),
		CacheSize: p.cfg.Assets.CacheSize,
		Logger:    p.log,
	})
}

// index builds the class index from the configured corpus. The returned
// source stays open so default objects can still be loaded.
func (p *project) index(ctx context.Context) (*hierarchy.Index, *asset.Dir, error) {
	src, err := p.source()
	if err != nil {
		return nil, nil, err
	}
	idx, err := hierarchy.Build(ctx, src.Classes(ctx),
		hierarchy.WithLookup(src.Lookup),
		hierarchy.WithLogger(p.log),
	)
	if err != nil {
		src.Close()
		return nil, nil, err
	}
	return idx, src, nil
}

func openStore(ctx context.Context, cfg *config.ProjectConfig) (store.Store, error) {
	dsn := strings.TrimSpace(cfg.Output.DSN)
	switch {
	case dsn == "":
		return nil, fmt.Errorf("output.dsn is not configured")
	case strings.HasPrefix(dsn, "sqlite://"):
		return sqlite.New(ctx, dsn)
	default:
		return postgres.New(ctx, dsn)
	}
}
