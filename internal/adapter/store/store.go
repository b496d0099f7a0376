package store

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/arturoeanton/codelens-timemachine/internal/adapter/dialect"
	"github.com/arturoeanton/codelens-timemachine/internal/metrics"
	"github.com/jmoiron/sqlx"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

func init() {
	sqlx.BindDriver("sqlite", sqlx.QUESTION)
}

// Store reads resources, snapshots and period definitions. It never writes them.
type Store struct {
	db      *sqlx.DB
	dialect dialect.Dialect
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// Open resolves the dialect from dialectID or url, connects with the matching driver
// and returns a store instance. m and logger may be nil.
func Open(ctx context.Context, dialectID, url string, m *metrics.Metrics, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}

	d, err := dialect.Find(dialectID, url)
	if err != nil {
		return nil, err
	}
	if !d.Supported() {
		return nil, fmt.Errorf("%w: %s", dialect.ErrUnsupportedDialect, d.ID)
	}

	db, err := sqlx.ConnectContext(ctx, d.Driver, d.DSN(url))
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if d.ID == dialect.SQLite {
		// every sqlite connection to :memory: is a separate database
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(5 * time.Minute)
	}

	return &Store{db: db, dialect: d, metrics: m, logger: logger}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Dialect returns the dialect the store was opened with.
func (s *Store) Dialect() dialect.Dialect {
	return s.dialect
}

// Ping checks the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}
