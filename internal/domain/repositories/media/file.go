package media

import (
	"context"

	"mediavault/internal/domain/models/media"
)

// FileRepository is the metadata side of the FileStore collaborator. The
// folder tree only reads per-folder aggregates from it and removes rows
// during cascade delete; uploads are out of scope.
type FileRepository interface {
	// StatsByFolder returns the direct file count and byte total for a folder
	StatsByFolder(ctx context.Context, folderID string) (count int, totalSize int64, err error)

	// ListByFolder lists the direct file rows of a folder
	ListByFolder(ctx context.Context, folderID string) ([]media.File, error)

	// GetByID retrieves a file row by ID
	GetByID(ctx context.Context, id string) (*media.File, error)

	// DeleteByFolder removes all file rows directly under a folder
	DeleteByFolder(ctx context.Context, folderID string) error
}
