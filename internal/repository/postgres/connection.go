package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"mediavault/internal/domain/repositories"
)

// RepositoryConfig holds configuration for repository implementations
type RepositoryConfig struct {
	Pool   *pgxpool.Pool
	Tables *TableNames
	Logger *slog.Logger
}

// TableNames holds dynamically prefixed table names
type TableNames struct {
	Folders     string
	Files       string
	Permissions string
	Shares      string
	Users       string
}

// NewTableNames creates table names with the given prefix
func NewTableNames(prefix string) *TableNames {
	return &TableNames{
		Folders:     fmt.Sprintf("%smedia_folders", prefix),
		Files:       fmt.Sprintf("%smedia_files", prefix),
		Permissions: fmt.Sprintf("%sfolder_permissions", prefix),
		Shares:      fmt.Sprintf("%smedia_shares", prefix),
		Users:       fmt.Sprintf("%susers", prefix),
	}
}

// CreateConnectionPool creates a new pgx connection pool.
//
// If port 6543 is detected (a PgBouncer-style transaction pooler),
// QueryExecModeCacheDescribe is used instead of prepared statements,
// which transaction pooling does not support. An explicit
// default_query_exec_mode in the connection string takes precedence.
//
// Dynamic table prefixes (dev_, test_, prod_) are interpolated into the
// SQL string before it reaches the database, so each environment gets its
// own statements.
func CreateConnectionPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse connection string: %w", err)
	}

	// Configure pool size
	config.MaxConns = 25
	config.MinConns = 5

	if config.ConnConfig.Port == 6543 && config.ConnConfig.DefaultQueryExecMode == pgx.QueryExecModeCacheStatement {
		config.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeCacheDescribe
		slog.Debug("auto-configured cache_describe mode for PgBouncer compatibility", "port", 6543)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}

	// Test connection
	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return pool, nil
}

// GetExecutor returns the appropriate query executor for the context.
// If a transaction is present in the context, it returns the transaction;
// otherwise the pool. Repositories automatically participate in a
// surrounding transaction this way.
func GetExecutor(ctx context.Context, pool *pgxpool.Pool) repositories.DBTX {
	if tx := repositories.GetTx(ctx); tx != nil {
		return tx
	}
	return pool
}
