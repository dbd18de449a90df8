package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/frahmantamala/cardtracker/internal"
	"github.com/frahmantamala/cardtracker/internal/recordstore"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// initStore opens the configured record store backend.
func initStore(cfg internal.StorageConfig, logger *slog.Logger) (recordstore.Store, error) {
	var (
		store recordstore.Store
		err   error
	)

	switch cfg.Backend {
	case internal.StorageBackendFile:
		store = recordstore.NewFileStore(cfg.File.Path, logger)
	case internal.StorageBackendJSONBin:
		store = recordstore.NewJSONBinStore(recordstore.JSONBinConfig{
			BaseURL: cfg.JSONBin.BaseURL,
			APIKey:  cfg.JSONBin.APIKey,
			BinID:   cfg.JSONBin.BinID,
			Timeout: cfg.JSONBin.Timeout,
		}, logger)
	case internal.StorageBackendPostgres:
		store, err = initPostgresStore(cfg.Database, logger)
	case internal.StorageBackendSQLite:
		store, err = initSQLiteStore(cfg.Database, logger)
	default:
		err = fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
	if err != nil {
		return nil, err
	}

	if cfg.CacheEnabled {
		store = recordstore.NewCachedStore(store)
	}

	logger.Info("record store ready", "backend", cfg.Backend, "cache", cfg.CacheEnabled)
	return store, nil
}

// initDB opens a pgx pool and exposes it through database/sql for sqlx,
// gorm and goose.
func initDB(ctx context.Context, cfg internal.DatabaseConfig) (*sqlx.DB, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("invalid database source: %w", err)
	}
	if cfg.MaxOpenConns > 0 {
		poolCfg.MaxConns = int32(cfg.MaxOpenConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.ConnMaxLifetime
	}
	if cfg.ConnMaxIdleTime > 0 {
		poolCfg.MaxConnIdleTime = cfg.ConnMaxIdleTime
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open db pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db := sqlx.NewDb(stdlib.OpenDBFromPool(pool), "pgx")
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	return db, nil
}

func gormConfig() *gorm.Config {
	return &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	}
}

// initPostgresStore expects the records table to exist; run migrate first.
func initPostgresStore(cfg internal.DatabaseConfig, logger *slog.Logger) (recordstore.Store, error) {
	db, err := initDB(context.Background(), cfg)
	if err != nil {
		return nil, err
	}

	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: db.DB}), gormConfig())
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to open gorm on postgres: %w", err)
	}

	return recordstore.NewSQLStore(gdb, logger), nil
}

func initSQLiteStore(cfg internal.DatabaseConfig, logger *slog.Logger) (recordstore.Store, error) {
	gdb, err := gorm.Open(sqlite.Open(cfg.GetDSN()), gormConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}

	// sqlite allows a single writer
	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)

	store := recordstore.NewSQLStore(gdb, logger)
	if err := store.AutoMigrate(); err != nil {
		return nil, fmt.Errorf("failed to migrate sqlite: %w", err)
	}
	return store, nil
}
