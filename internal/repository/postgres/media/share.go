package media

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"mediavault/internal/domain"
	models "mediavault/internal/domain/models/media"
	mediaRepo "mediavault/internal/domain/repositories/media"
	"mediavault/internal/repository/postgres"
)

const shareColumns = `id, share_token, media_file_id, folder_id, share_type, access_type,
		created_by, created_at, expires_at, access_count, max_access_count, password_hash`

// PostgresShareRepository implements the ShareRepository interface
type PostgresShareRepository struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
}

// NewShareRepository creates a new share repository
func NewShareRepository(config *postgres.RepositoryConfig) mediaRepo.ShareRepository {
	return &PostgresShareRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

// Create persists a new share
func (r *PostgresShareRepository) Create(ctx context.Context, share *models.MediaShare) error {
	if share.ID == "" {
		share.ID = uuid.NewString()
	}
	if share.CreatedAt.IsZero() {
		share.CreatedAt = time.Now()
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (id, share_token, media_file_id, folder_id, share_type, access_type,
			created_by, created_at, expires_at, access_count, max_access_count, password_hash)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`, r.tables.Shares)

	executor := postgres.GetExecutor(ctx, r.pool)
	_, err := executor.Exec(ctx, query,
		share.ID,
		share.Token,
		share.FileID,
		share.FolderID,
		share.ShareType,
		share.AccessType,
		share.CreatedBy,
		share.CreatedAt,
		share.ExpiresAt,
		share.AccessCount,
		share.MaxAccessCount,
		share.PasswordHash,
	)

	if err != nil {
		if postgres.IsPgDuplicateError(err) {
			return fmt.Errorf("share token: %w", domain.ErrConflict)
		}
		return fmt.Errorf("create share: %w", err)
	}

	return nil
}

// GetByToken retrieves a share by its token
func (r *PostgresShareRepository) GetByToken(ctx context.Context, token string) (*models.MediaShare, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE share_token = $1`, shareColumns, r.tables.Shares)

	executor := postgres.GetExecutor(ctx, r.pool)
	share, err := scanShare(executor.QueryRow(ctx, query, token))
	if err != nil {
		if postgres.IsPgNoRowsError(err) {
			return nil, fmt.Errorf("share %s: %w", token, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get share: %w", err)
	}

	return share, nil
}

// ExistsByToken reports whether a share with the token exists
func (r *PostgresShareRepository) ExistsByToken(ctx context.Context, token string) (bool, error) {
	query := fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM %s WHERE share_token = $1)`, r.tables.Shares)

	var exists bool
	executor := postgres.GetExecutor(ctx, r.pool)
	if err := executor.QueryRow(ctx, query, token).Scan(&exists); err != nil {
		return false, fmt.Errorf("check token existence: %w", err)
	}

	return exists, nil
}

// IncrementAccessCount atomically increments the access counter in SQL
func (r *PostgresShareRepository) IncrementAccessCount(ctx context.Context, token string) error {
	query := fmt.Sprintf(`
		UPDATE %s SET access_count = access_count + 1 WHERE share_token = $1
	`, r.tables.Shares)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, token)
	if err != nil {
		return fmt.Errorf("increment access count: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("share %s: %w", token, domain.ErrNotFound)
	}

	return nil
}

// Delete removes a share by token; unknown tokens are a no-op
func (r *PostgresShareRepository) Delete(ctx context.Context, token string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE share_token = $1`, r.tables.Shares)

	executor := postgres.GetExecutor(ctx, r.pool)
	if _, err := executor.Exec(ctx, query, token); err != nil {
		return fmt.Errorf("delete share: %w", err)
	}

	return nil
}

// ListByCreator lists shares created by a user
func (r *PostgresShareRepository) ListByCreator(ctx context.Context, userID string) ([]models.MediaShare, error) {
	return r.list(ctx, `created_by = $1`, userID)
}

// ListByFile lists shares targeting a file
func (r *PostgresShareRepository) ListByFile(ctx context.Context, fileID string) ([]models.MediaShare, error) {
	return r.list(ctx, `media_file_id = $1`, fileID)
}

// ListByFolder lists shares targeting a folder
func (r *PostgresShareRepository) ListByFolder(ctx context.Context, folderID string) ([]models.MediaShare, error) {
	return r.list(ctx, `folder_id = $1`, folderID)
}

func (r *PostgresShareRepository) list(ctx context.Context, where string, arg interface{}) ([]models.MediaShare, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s WHERE %s ORDER BY created_at DESC
	`, shareColumns, r.tables.Shares, where)

	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("list shares: %w", err)
	}
	defer rows.Close()

	var shares []models.MediaShare
	for rows.Next() {
		share, err := scanShare(rows)
		if err != nil {
			return nil, fmt.Errorf("scan share: %w", err)
		}
		shares = append(shares, *share)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate shares: %w", err)
	}

	return shares, nil
}

// DeleteTimeExpired batch-deletes shares whose expiry time has passed.
// Count-exhausted shares are retained deliberately.
func (r *PostgresShareRepository) DeleteTimeExpired(ctx context.Context, now time.Time) (int64, error) {
	query := fmt.Sprintf(`DELETE FROM %s WHERE expires_at IS NOT NULL AND expires_at < $1`, r.tables.Shares)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, now)
	if err != nil {
		return 0, fmt.Errorf("delete expired shares: %w", err)
	}

	return result.RowsAffected(), nil
}

// scanShare scans a single share row
func scanShare(row pgx.Row) (*models.MediaShare, error) {
	var share models.MediaShare
	err := row.Scan(
		&share.ID,
		&share.Token,
		&share.FileID,
		&share.FolderID,
		&share.ShareType,
		&share.AccessType,
		&share.CreatedBy,
		&share.CreatedAt,
		&share.ExpiresAt,
		&share.AccessCount,
		&share.MaxAccessCount,
		&share.PasswordHash,
	)
	if err != nil {
		return nil, err
	}
	return &share, nil
}
