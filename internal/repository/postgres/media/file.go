package media

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"mediavault/internal/domain"
	models "mediavault/internal/domain/models/media"
	mediaRepo "mediavault/internal/domain/repositories/media"
	"mediavault/internal/repository/postgres"
)

// PostgresFileRepository implements the FileRepository interface. It only
// covers what the folder tree needs: per-folder aggregates and cascade
// removal. Uploads belong to the storage layer, not this core.
type PostgresFileRepository struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
}

// NewFileRepository creates a new file metadata repository
func NewFileRepository(config *postgres.RepositoryConfig) mediaRepo.FileRepository {
	return &PostgresFileRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

// StatsByFolder returns the direct file count and byte total for a folder
func (r *PostgresFileRepository) StatsByFolder(ctx context.Context, folderID string) (int, int64, error) {
	query := fmt.Sprintf(`
		SELECT COUNT(*), COALESCE(SUM(file_size), 0) FROM %s WHERE folder_id = $1
	`, r.tables.Files)

	var count int
	var totalSize int64
	executor := postgres.GetExecutor(ctx, r.pool)
	if err := executor.QueryRow(ctx, query, folderID).Scan(&count, &totalSize); err != nil {
		return 0, 0, fmt.Errorf("folder file stats: %w", err)
	}

	return count, totalSize, nil
}

// ListByFolder lists the direct file rows of a folder
func (r *PostgresFileRepository) ListByFolder(ctx context.Context, folderID string) ([]models.File, error) {
	query := fmt.Sprintf(`
		SELECT id, folder_id, file_name, storage_path, file_size, created_at
		FROM %s WHERE folder_id = $1 ORDER BY file_name ASC
	`, r.tables.Files)

	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, folderID)
	if err != nil {
		return nil, fmt.Errorf("list folder files: %w", err)
	}
	defer rows.Close()

	var files []models.File
	for rows.Next() {
		var file models.File
		err := rows.Scan(
			&file.ID,
			&file.FolderID,
			&file.FileName,
			&file.StoragePath,
			&file.FileSize,
			&file.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan file: %w", err)
		}
		files = append(files, file)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate files: %w", err)
	}

	return files, nil
}

// GetByID retrieves a file row by ID
func (r *PostgresFileRepository) GetByID(ctx context.Context, id string) (*models.File, error) {
	query := fmt.Sprintf(`
		SELECT id, folder_id, file_name, storage_path, file_size, created_at
		FROM %s WHERE id = $1
	`, r.tables.Files)

	var file models.File
	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query, id).Scan(
		&file.ID,
		&file.FolderID,
		&file.FileName,
		&file.StoragePath,
		&file.FileSize,
		&file.CreatedAt,
	)

	if err != nil {
		if postgres.IsPgNoRowsError(err) {
			return nil, fmt.Errorf("file %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get file: %w", err)
	}

	return &file, nil
}

// DeleteByFolder removes all file rows directly under a folder
func (r *PostgresFileRepository) DeleteByFolder(ctx context.Context, folderID string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE folder_id = $1`, r.tables.Files)

	executor := postgres.GetExecutor(ctx, r.pool)
	if _, err := executor.Exec(ctx, query, folderID); err != nil {
		return fmt.Errorf("delete folder files: %w", err)
	}

	return nil
}
