package media

import (
	"context"

	"mediavault/internal/domain/models/media"
)

// FolderService is the FolderAPI: structural operations on the media
// folder tree. Every mutation runs atomically over the affected subtree
// plus its ancestor chain.
type FolderService interface {
	// Create creates a new folder under the given parent (nil = root level)
	Create(ctx context.Context, req *CreateFolderRequest) (*media.Folder, error)

	// Rename renames a folder, recomputing its slug and cascading the
	// path rewrite through the subtree when the path changes
	Rename(ctx context.Context, id, newName string) (*media.Folder, error)

	// Update applies cosmetic changes (description, color, icon, sort order)
	Update(ctx context.Context, id string, req *UpdateFolderRequest) (*media.Folder, error)

	// Move reparents a folder (nil newParentID = root level), cascading
	// path/depth to every descendant and recomputing statistics on the old
	// and new ancestor chains
	Move(ctx context.Context, id string, newParentID *string) (*media.Folder, error)

	// Delete removes the folder and its entire subtree, including file
	// associations; physical deletion is delegated best-effort
	Delete(ctx context.Context, id string) error

	// GetByID retrieves a folder by ID
	GetByID(ctx context.Context, id string) (*media.Folder, error)

	// GetByPath retrieves a folder by its materialized path
	GetByPath(ctx context.Context, path string) (*media.Folder, error)

	// GetChildren lists direct children ordered by sort key (nil = root level)
	GetChildren(ctx context.Context, parentID *string) ([]media.Folder, error)

	// UpdateStatisticsRecursive recomputes cached aggregates for the folder
	// and every ancestor up to the root, bottom-up and incrementally
	UpdateStatisticsRecursive(ctx context.Context, folderID string) error

	// HasAccess reports whether the user can see the folder from ownership
	// or visibility alone (explicit grants are the resolver's concern)
	HasAccess(ctx context.Context, folderID, userID string) (bool, error)
}

// CreateFolderRequest represents a folder creation request
type CreateFolderRequest struct {
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
	ParentID    *string `json:"parent_id,omitempty"` // null for root level
	OwnerID     *string `json:"owner_id,omitempty"`
}

// UpdateFolderRequest carries cosmetic folder updates; renames and moves
// have dedicated operations because they cascade.
type UpdateFolderRequest struct {
	Description *string           `json:"description,omitempty"`
	Color       *string           `json:"color,omitempty"`
	Icon        *string           `json:"icon,omitempty"`
	SortOrder   *int              `json:"sort_order,omitempty"`
	Visibility  *media.Visibility `json:"visibility,omitempty"`
}
