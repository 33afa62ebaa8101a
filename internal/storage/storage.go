// Package storage provides the pooled embedded-relational storage
// engine every ledger write and read goes through. It wraps a single
// *gorm.DB over a cgo-free SQLite driver, with the WAL-mode tuning and
// connection cap the ledger's consistency model depends on.
package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Config controls how the engine opens its connection pool.
type Config struct {
	// Path is the SQLite database file (or "file::memory:?cache=shared" style DSN for tests).
	Path string
	// MaxConnections caps the pool; excess connections are closed on release.
	MaxConnections int
	// BusyTimeout bounds how long a writer waits on lock contention.
	BusyTimeout time.Duration
}

// Engine owns the connection pool and exposes the acquire/commit/rollback
// contract as GORM transactions.
type Engine struct {
	db  *gorm.DB
	cfg Config
}

// Open creates the schema-independent connection pool, applies the
// required PRAGMAs on first connect, and returns a ready Engine.
// AutoMigrate is the caller's responsibility (see ledgerdb.AutoMigrate).
func Open(cfg Config) (*Engine, error) {
	if cfg.MaxConnections <= 0 {
		cfg.MaxConnections = 5
	}
	if cfg.BusyTimeout <= 0 {
		cfg.BusyTimeout = 5 * time.Second
	}

	db, err := gorm.Open(sqlite.Open(cfg.Path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("storage: open %q: %w", cfg.Path, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("storage: underlying sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.MaxConnections)
	sqlDB.SetMaxIdleConns(cfg.MaxConnections)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA cache_size=10000",
		"PRAGMA temp_store=MEMORY",
		fmt.Sprintf("PRAGMA busy_timeout=%d", cfg.BusyTimeout.Milliseconds()),
	}
	for _, p := range pragmas {
		if err := db.Exec(p).Error; err != nil {
			return nil, fmt.Errorf("storage: pragma %q: %w", p, err)
		}
	}

	return &Engine{db: db, cfg: cfg}, nil
}

// DB exposes the underlying *gorm.DB for schema migration only; business
// code should prefer WithinTx.
func (e *Engine) DB() *gorm.DB { return e.db }

// WithinTx runs fn inside one transaction: commit on nil return, rollback
// otherwise. This is the acquire()/Handle contract of the storage engine.
func (e *Engine) WithinTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return e.db.WithContext(ctx).Transaction(fn)
}

// CloseAll drains the pool on shutdown.
func (e *Engine) CloseAll() error {
	sqlDB, err := e.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
