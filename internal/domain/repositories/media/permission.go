package media

import (
	"context"
	"time"

	"mediavault/internal/domain/models/media"
)

// PermissionRepository defines data access operations for folder grants
type PermissionRepository interface {
	// GetByFolderAndUser returns the single grant for the pair, or nil if
	// none exists. Expiry is not evaluated here; callers decide whether an
	// expired grant counts.
	GetByFolderAndUser(ctx context.Context, folderID, userID string) (*media.FolderPermission, error)

	// Upsert inserts the grant or replaces the existing one for the same
	// (folder, user) pair; grants are never stacked.
	Upsert(ctx context.Context, permission *media.FolderPermission) error

	// Delete removes the grant for the pair if present
	Delete(ctx context.Context, folderID, userID string) error

	// ListByFolder lists all grants on a folder
	ListByFolder(ctx context.Context, folderID string) ([]media.FolderPermission, error)

	// ListByUser lists all grants held by a user
	ListByUser(ctx context.Context, userID string) ([]media.FolderPermission, error)

	// DeleteExpired batch-deletes grants whose expiry has passed and
	// returns how many were removed.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
