package media

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	mediaRepo "mediavault/internal/domain/repositories/media"
	"mediavault/internal/repository/postgres"
)

// PostgresUserDirectory implements the UserDirectory interface against the
// CMS users table.
type PostgresUserDirectory struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
}

// NewUserDirectory creates a new user directory
func NewUserDirectory(config *postgres.RepositoryConfig) mediaRepo.UserDirectory {
	return &PostgresUserDirectory{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

// Exists reports whether a user with the given ID exists
func (r *PostgresUserDirectory) Exists(ctx context.Context, userID string) (bool, error) {
	query := fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM %s WHERE id = $1)`, r.tables.Users)

	var exists bool
	executor := postgres.GetExecutor(ctx, r.pool)
	if err := executor.QueryRow(ctx, query, userID).Scan(&exists); err != nil {
		return false, fmt.Errorf("check user existence: %w", err)
	}

	return exists, nil
}
