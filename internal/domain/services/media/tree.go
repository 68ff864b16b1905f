package media

import (
	"context"

	"mediavault/internal/domain/models/media"
)

// TreeService renders complete folder forests without N recursive queries
type TreeService interface {
	// GetTree returns the full forest of root-level folders with nested
	// children, ordered by sort key at every level
	GetTree(ctx context.Context) ([]*media.FolderTreeNode, error)

	// GetTreeForUser returns the forest restricted to folders visible to
	// the user (public, owned, or actively granted)
	GetTreeForUser(ctx context.Context, userID string) ([]*media.FolderTreeNode, error)
}
