package media

import (
	"context"
	"time"

	"mediavault/internal/domain/models/media"
)

// ShareRepository defines data access operations for public share tokens
type ShareRepository interface {
	// Create persists a new share
	Create(ctx context.Context, share *media.MediaShare) error

	// GetByToken retrieves a share by its token
	GetByToken(ctx context.Context, token string) (*media.MediaShare, error)

	// ExistsByToken reports whether a share with the token exists
	ExistsByToken(ctx context.Context, token string) (bool, error)

	// IncrementAccessCount atomically increments the access counter in SQL;
	// never read-modify-write at the application layer.
	IncrementAccessCount(ctx context.Context, token string) error

	// Delete removes a share by token; no error when the token is unknown
	Delete(ctx context.Context, token string) error

	// ListByCreator lists shares created by a user
	ListByCreator(ctx context.Context, userID string) ([]media.MediaShare, error)

	// ListByFile lists shares targeting a file
	ListByFile(ctx context.Context, fileID string) ([]media.MediaShare, error)

	// ListByFolder lists shares targeting a folder
	ListByFolder(ctx context.Context, folderID string) ([]media.MediaShare, error)

	// DeleteTimeExpired batch-deletes shares whose expiry time has passed.
	// Count-exhausted shares are deliberately retained so operators can
	// tell "exhausted" from "revoked".
	DeleteTimeExpired(ctx context.Context, now time.Time) (int64, error)
}
