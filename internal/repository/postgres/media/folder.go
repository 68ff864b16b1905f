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

// folderTreeLockKey is the advisory lock key serializing structural tree
// mutations. One key for the whole tree: mutation frequency is low
// relative to reads, so per-root granularity buys nothing.
const folderTreeLockKey = 779_340_001

const folderColumns = `id, name, slug, description, parent_id, path, depth, sort_order,
		color, icon, owner_id, visibility, file_count, total_size, created_at, updated_at`

// PostgresFolderRepository implements the FolderRepository interface
type PostgresFolderRepository struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
}

// NewFolderRepository creates a new folder repository
func NewFolderRepository(config *postgres.RepositoryConfig) mediaRepo.FolderRepository {
	return &PostgresFolderRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

// Create creates a new folder
func (r *PostgresFolderRepository) Create(ctx context.Context, folder *models.Folder) error {
	if folder.ID == "" {
		folder.ID = uuid.NewString()
	}
	now := time.Now()
	if folder.CreatedAt.IsZero() {
		folder.CreatedAt = now
	}
	folder.UpdatedAt = now

	query := fmt.Sprintf(`
		INSERT INTO %s (id, name, slug, description, parent_id, path, depth, sort_order,
			color, icon, owner_id, visibility, file_count, total_size, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`, r.tables.Folders)

	executor := postgres.GetExecutor(ctx, r.pool)
	_, err := executor.Exec(ctx, query,
		folder.ID,
		folder.Name,
		folder.Slug,
		folder.Description,
		folder.ParentID,
		folder.Path,
		folder.Depth,
		folder.SortOrder,
		folder.Color,
		folder.Icon,
		folder.OwnerID,
		folder.Visibility,
		folder.FileCount,
		folder.TotalSize,
		folder.CreatedAt,
		folder.UpdatedAt,
	)

	if err != nil {
		if postgres.IsPgDuplicateError(err) {
			return fmt.Errorf("folder slug %q under this parent: %w", folder.Slug, domain.ErrConflict)
		}
		return fmt.Errorf("create folder: %w", err)
	}

	return nil
}

// GetByID retrieves a folder by ID
func (r *PostgresFolderRepository) GetByID(ctx context.Context, id string) (*models.Folder, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, folderColumns, r.tables.Folders)

	executor := postgres.GetExecutor(ctx, r.pool)
	folder, err := scanFolder(executor.QueryRow(ctx, query, id))
	if err != nil {
		if postgres.IsPgNoRowsError(err) {
			return nil, fmt.Errorf("folder %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get folder: %w", err)
	}

	return folder, nil
}

// GetByPath retrieves a folder by its materialized path
func (r *PostgresFolderRepository) GetByPath(ctx context.Context, path string) (*models.Folder, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE path = $1`, folderColumns, r.tables.Folders)

	executor := postgres.GetExecutor(ctx, r.pool)
	folder, err := scanFolder(executor.QueryRow(ctx, query, path))
	if err != nil {
		if postgres.IsPgNoRowsError(err) {
			return nil, fmt.Errorf("folder at path %q: %w", path, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get folder by path: %w", err)
	}

	return folder, nil
}

// Update persists name/slug/parent/path/depth and cosmetic changes
func (r *PostgresFolderRepository) Update(ctx context.Context, folder *models.Folder) error {
	folder.UpdatedAt = time.Now()

	query := fmt.Sprintf(`
		UPDATE %s
		SET name = $1, slug = $2, description = $3, parent_id = $4, path = $5,
			depth = $6, sort_order = $7, color = $8, icon = $9, visibility = $10,
			updated_at = $11
		WHERE id = $12
	`, r.tables.Folders)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query,
		folder.Name,
		folder.Slug,
		folder.Description,
		folder.ParentID,
		folder.Path,
		folder.Depth,
		folder.SortOrder,
		folder.Color,
		folder.Icon,
		folder.Visibility,
		folder.UpdatedAt,
		folder.ID,
	)

	if err != nil {
		if postgres.IsPgDuplicateError(err) {
			return fmt.Errorf("folder slug %q under this parent: %w", folder.Slug, domain.ErrConflict)
		}
		return fmt.Errorf("update folder: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("folder %s: %w", folder.ID, domain.ErrNotFound)
	}

	return nil
}

// UpdateStatistics persists the cached aggregates for a single folder
func (r *PostgresFolderRepository) UpdateStatistics(ctx context.Context, id string, fileCount int, totalSize int64) error {
	query := fmt.Sprintf(`
		UPDATE %s SET file_count = $1, total_size = $2, updated_at = $3 WHERE id = $4
	`, r.tables.Folders)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, fileCount, totalSize, time.Now(), id)
	if err != nil {
		return fmt.Errorf("update folder statistics: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("folder %s: %w", id, domain.ErrNotFound)
	}

	return nil
}

// Delete removes a single folder row
func (r *PostgresFolderRepository) Delete(ctx context.Context, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, r.tables.Folders)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, id)
	if err != nil {
		if postgres.IsPgForeignKeyError(err) {
			return fmt.Errorf("folder %s still has children: %w", id, domain.ErrConflict)
		}
		return fmt.Errorf("delete folder: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("folder %s: %w", id, domain.ErrNotFound)
	}

	return nil
}

// ListChildren lists immediate child folders ordered by sort key
func (r *PostgresFolderRepository) ListChildren(ctx context.Context, parentID *string) ([]models.Folder, error) {
	var query string
	var args []interface{}

	if parentID == nil {
		query = fmt.Sprintf(`
			SELECT %s FROM %s
			WHERE parent_id IS NULL
			ORDER BY sort_order ASC, name ASC
		`, folderColumns, r.tables.Folders)
	} else {
		query = fmt.Sprintf(`
			SELECT %s FROM %s
			WHERE parent_id = $1
			ORDER BY sort_order ASC, name ASC
		`, folderColumns, r.tables.Folders)
		args = append(args, *parentID)
	}

	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list folder children: %w", err)
	}
	defer rows.Close()

	return collectFolders(rows)
}

// GetAll retrieves every folder as a flat list
func (r *PostgresFolderRepository) GetAll(ctx context.Context) ([]models.Folder, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s ORDER BY depth ASC, sort_order ASC, name ASC
	`, folderColumns, r.tables.Folders)

	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("get all folders: %w", err)
	}
	defer rows.Close()

	return collectFolders(rows)
}

// GetAllVisibleToUser retrieves the flat list of folders the user may see:
// public folders, folders they own, and folders with an active grant.
func (r *PostgresFolderRepository) GetAllVisibleToUser(ctx context.Context, userID string) ([]models.Folder, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE visibility = 'PUBLIC'
			OR owner_id = $1
			OR id IN (
				SELECT folder_id FROM %s
				WHERE user_id = $1 AND (expires_at IS NULL OR expires_at > $2)
			)
		ORDER BY depth ASC, sort_order ASC, name ASC
	`, folderColumns, r.tables.Folders, r.tables.Permissions)

	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, userID, time.Now())
	if err != nil {
		return nil, fmt.Errorf("get visible folders: %w", err)
	}
	defer rows.Close()

	return collectFolders(rows)
}

// ExistsBySlugAndParent reports whether a sibling with the slug exists in
// the given parent scope (nil parentID = root scope).
func (r *PostgresFolderRepository) ExistsBySlugAndParent(ctx context.Context, slug string, parentID *string) (bool, error) {
	var query string
	var args []interface{}

	if parentID == nil {
		query = fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM %s WHERE slug = $1 AND parent_id IS NULL)`, r.tables.Folders)
		args = append(args, slug)
	} else {
		query = fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM %s WHERE slug = $1 AND parent_id = $2)`, r.tables.Folders)
		args = append(args, slug, *parentID)
	}

	var exists bool
	executor := postgres.GetExecutor(ctx, r.pool)
	if err := executor.QueryRow(ctx, query, args...).Scan(&exists); err != nil {
		return false, fmt.Errorf("check slug existence: %w", err)
	}

	return exists, nil
}

// LockTree takes the advisory lock serializing structural mutations.
// pg_advisory_xact_lock is released automatically at commit or rollback,
// so this must run inside a transaction.
func (r *PostgresFolderRepository) LockTree(ctx context.Context) error {
	executor := postgres.GetExecutor(ctx, r.pool)
	if _, err := executor.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, folderTreeLockKey); err != nil {
		return fmt.Errorf("lock folder tree: %w", err)
	}
	return nil
}

// scanFolder scans a single folder row
func scanFolder(row pgx.Row) (*models.Folder, error) {
	var folder models.Folder
	err := row.Scan(
		&folder.ID,
		&folder.Name,
		&folder.Slug,
		&folder.Description,
		&folder.ParentID,
		&folder.Path,
		&folder.Depth,
		&folder.SortOrder,
		&folder.Color,
		&folder.Icon,
		&folder.OwnerID,
		&folder.Visibility,
		&folder.FileCount,
		&folder.TotalSize,
		&folder.CreatedAt,
		&folder.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &folder, nil
}

// collectFolders drains a folder result set
func collectFolders(rows pgx.Rows) ([]models.Folder, error) {
	var folders []models.Folder
	for rows.Next() {
		folder, err := scanFolder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan folder: %w", err)
		}
		folders = append(folders, *folder)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate folders: %w", err)
	}

	return folders, nil
}
