package media

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	models "mediavault/internal/domain/models/media"
	mediaRepo "mediavault/internal/domain/repositories/media"
	"mediavault/internal/repository/postgres"
)

const permissionColumns = `id, folder_id, user_id, permission_level, granted_by, granted_at, expires_at`

// PostgresPermissionRepository implements the PermissionRepository interface
type PostgresPermissionRepository struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
}

// NewPermissionRepository creates a new permission repository
func NewPermissionRepository(config *postgres.RepositoryConfig) mediaRepo.PermissionRepository {
	return &PostgresPermissionRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

// GetByFolderAndUser returns the single grant for the pair, or nil if none
// exists. Absence is not an error.
func (r *PostgresPermissionRepository) GetByFolderAndUser(ctx context.Context, folderID, userID string) (*models.FolderPermission, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s WHERE folder_id = $1 AND user_id = $2
	`, permissionColumns, r.tables.Permissions)

	executor := postgres.GetExecutor(ctx, r.pool)
	permission, err := scanPermission(executor.QueryRow(ctx, query, folderID, userID))
	if err != nil {
		if postgres.IsPgNoRowsError(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get permission: %w", err)
	}

	return permission, nil
}

// Upsert inserts the grant or replaces the existing one for the same
// (folder, user) pair. The unique constraint keeps grants from stacking.
func (r *PostgresPermissionRepository) Upsert(ctx context.Context, permission *models.FolderPermission) error {
	if permission.ID == "" {
		permission.ID = uuid.NewString()
	}
	if permission.GrantedAt.IsZero() {
		permission.GrantedAt = time.Now()
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (id, folder_id, user_id, permission_level, granted_by, granted_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (folder_id, user_id)
		DO UPDATE SET permission_level = $4, granted_by = $5, granted_at = $6, expires_at = $7
		RETURNING id, granted_at
	`, r.tables.Permissions)

	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		permission.ID,
		permission.FolderID,
		permission.UserID,
		permission.Level,
		permission.GrantedBy,
		permission.GrantedAt,
		permission.ExpiresAt,
	).Scan(&permission.ID, &permission.GrantedAt)

	if err != nil {
		return fmt.Errorf("upsert permission: %w", err)
	}

	return nil
}

// Delete removes the grant for the pair if present
func (r *PostgresPermissionRepository) Delete(ctx context.Context, folderID, userID string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE folder_id = $1 AND user_id = $2`, r.tables.Permissions)

	executor := postgres.GetExecutor(ctx, r.pool)
	if _, err := executor.Exec(ctx, query, folderID, userID); err != nil {
		return fmt.Errorf("delete permission: %w", err)
	}

	return nil
}

// ListByFolder lists all grants on a folder
func (r *PostgresPermissionRepository) ListByFolder(ctx context.Context, folderID string) ([]models.FolderPermission, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s WHERE folder_id = $1 ORDER BY granted_at ASC
	`, permissionColumns, r.tables.Permissions)

	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, folderID)
	if err != nil {
		return nil, fmt.Errorf("list folder permissions: %w", err)
	}
	defer rows.Close()

	return collectPermissions(rows)
}

// ListByUser lists all grants held by a user
func (r *PostgresPermissionRepository) ListByUser(ctx context.Context, userID string) ([]models.FolderPermission, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s WHERE user_id = $1 ORDER BY granted_at ASC
	`, permissionColumns, r.tables.Permissions)

	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list user permissions: %w", err)
	}
	defer rows.Close()

	return collectPermissions(rows)
}

// DeleteExpired batch-deletes grants whose expiry has passed
func (r *PostgresPermissionRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	query := fmt.Sprintf(`DELETE FROM %s WHERE expires_at IS NOT NULL AND expires_at < $1`, r.tables.Permissions)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, now)
	if err != nil {
		return 0, fmt.Errorf("delete expired permissions: %w", err)
	}

	return result.RowsAffected(), nil
}

// scanPermission scans a single permission row
func scanPermission(row pgx.Row) (*models.FolderPermission, error) {
	var permission models.FolderPermission
	err := row.Scan(
		&permission.ID,
		&permission.FolderID,
		&permission.UserID,
		&permission.Level,
		&permission.GrantedBy,
		&permission.GrantedAt,
		&permission.ExpiresAt,
	)
	if err != nil {
		return nil, err
	}
	return &permission, nil
}

// collectPermissions drains a permission result set
func collectPermissions(rows pgx.Rows) ([]models.FolderPermission, error) {
	var permissions []models.FolderPermission
	for rows.Next() {
		permission, err := scanPermission(rows)
		if err != nil {
			return nil, fmt.Errorf("scan permission: %w", err)
		}
		permissions = append(permissions, *permission)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate permissions: %w", err)
	}

	return permissions, nil
}
