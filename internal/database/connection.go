// Package database owns the process-wide Postgres handle and the schema migrations.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"devevent/internal/domain"
	"devevent/internal/metrics"

	_ "github.com/lib/pq"
	"golang.org/x/sync/singleflight"
)

const DefaultConnectTimeout = 10 * time.Second

// Connector opens and verifies a new store handle.
type Connector func(ctx context.Context) (*sql.DB, error)

// PoolConfig tunes the *sql.DB returned by PostgresConnector.
type PoolConfig struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// PostgresConnector returns a Connector that opens dsn with lib/pq and pings it.
func PostgresConnector(dsn string, pool PoolConfig) Connector {
	return func(ctx context.Context) (*sql.DB, error) {
		db, err := sql.Open("postgres", dsn)
		if err != nil {
			return nil, fmt.Errorf("open: %w", err)
		}
		if pool.MaxOpenConns > 0 {
			db.SetMaxOpenConns(pool.MaxOpenConns)
		}
		if pool.MaxIdleConns > 0 {
			db.SetMaxIdleConns(pool.MaxIdleConns)
		}
		if pool.ConnMaxLifetime > 0 {
			db.SetConnMaxLifetime(pool.ConnMaxLifetime)
		}
		if err := db.PingContext(ctx); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("ping: %w", err)
		}
		return db, nil
	}
}

// Manager hands out a single shared *sql.DB. The first Ensure establishes it;
// concurrent callers during that window wait on the same attempt instead of
// dialing on their own. A failed attempt is forgotten so the next call starts over.
type Manager struct {
	connect        Connector
	connectTimeout time.Duration
	logger         *slog.Logger

	mu     sync.RWMutex
	db     *sql.DB
	flight singleflight.Group
}

// NewManager returns a Manager that establishes connections with connect.
// A zero connectTimeout uses DefaultConnectTimeout.
func NewManager(logger *slog.Logger, connect Connector, connectTimeout time.Duration) *Manager {
	if connectTimeout <= 0 {
		connectTimeout = DefaultConnectTimeout
	}
	return &Manager{
		connect:        connect,
		connectTimeout: connectTimeout,
		logger:         logger,
	}
}

// Ensure returns the live handle, establishing it if necessary.
// Connection failures wrap domain.ErrConnection.
func (m *Manager) Ensure(ctx context.Context) (*sql.DB, error) {
	if db := m.current(); db != nil {
		return db, nil
	}

	ch := m.flight.DoChan("connect", func() (any, error) {
		// A caller that lost the race to a finished attempt must not dial again.
		if db := m.current(); db != nil {
			return db, nil
		}
		return m.establish()
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*sql.DB), nil
	}
}

// establish runs detached from any single caller's context so that one
// abandoned request does not fail the attempt for every other waiter.
func (m *Manager) establish() (*sql.DB, error) {
	ctx, cancel := context.WithTimeout(context.Background(), m.connectTimeout)
	defer cancel()

	start := time.Now()
	db, err := m.connect(ctx)
	if err != nil {
		metrics.DBConnectAttempts.WithLabelValues("failure").Inc()
		m.logger.Error("database connection failed", "err", err, "duration_ms", time.Since(start).Milliseconds())
		return nil, fmt.Errorf("%w: %w", domain.ErrConnection, err)
	}
	metrics.DBConnectAttempts.WithLabelValues("success").Inc()
	m.logger.Info("database connected", "duration_ms", time.Since(start).Milliseconds())

	m.mu.Lock()
	m.db = db
	m.mu.Unlock()
	return db, nil
}

func (m *Manager) current() *sql.DB {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.db
}

// Close releases the live handle, if any. A later Ensure reconnects.
func (m *Manager) Close() error {
	m.mu.Lock()
	db := m.db
	m.db = nil
	m.mu.Unlock()
	if db == nil {
		return nil
	}
	return db.Close()
}

// Static wraps an already open handle, for tests and tools that manage their own *sql.DB.
type Static struct {
	DB *sql.DB
}

func (s Static) Ensure(ctx context.Context) (*sql.DB, error) {
	return s.DB, nil
}
