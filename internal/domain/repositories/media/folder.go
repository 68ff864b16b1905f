package media

import (
	"context"

	"mediavault/internal/domain/models/media"
)

// FolderRepository defines data access operations for the folder tree.
// It is the only component allowed to persist parent/child edges and the
// derived path/depth columns.
type FolderRepository interface {
	// Create creates a new folder
	Create(ctx context.Context, folder *media.Folder) error

	// GetByID retrieves a folder by ID
	GetByID(ctx context.Context, id string) (*media.Folder, error)

	// GetByPath retrieves a folder by its materialized path
	GetByPath(ctx context.Context, path string) (*media.Folder, error)

	// Update persists name/slug/parent/path/depth/visibility changes
	Update(ctx context.Context, folder *media.Folder) error

	// UpdateStatistics persists the cached aggregates for a single folder
	UpdateStatistics(ctx context.Context, id string, fileCount int, totalSize int64) error

	// Delete removes a single folder row
	Delete(ctx context.Context, id string) error

	// ListChildren lists immediate child folders ordered by sort key.
	// A nil parentID selects root-level folders.
	ListChildren(ctx context.Context, parentID *string) ([]media.Folder, error)

	// GetAll retrieves every folder as a flat list
	GetAll(ctx context.Context) ([]media.Folder, error)

	// GetAllVisibleToUser retrieves the flat list of folders the user may
	// see: public folders, folders they own, and folders with an active
	// grant for them.
	GetAllVisibleToUser(ctx context.Context, userID string) ([]media.Folder, error)

	// ExistsBySlugAndParent reports whether a sibling with the slug exists
	// in the given parent scope (nil parentID = root scope).
	ExistsBySlugAndParent(ctx context.Context, slug string, parentID *string) (bool, error)

	// LockTree takes the advisory lock serializing structural mutations.
	// Must be called inside a transaction; the lock is released on commit
	// or rollback.
	LockTree(ctx context.Context) error
}
