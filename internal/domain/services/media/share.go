package media

import (
	"context"
	"time"

	"mediavault/internal/domain/models/media"
)

// ShareService is the ShareAPI: mints, validates, and revokes public
// access tokens for a single file or a folder subtree.
type ShareService interface {
	// CreateFileShare mints a share token for a file
	CreateFileShare(ctx context.Context, fileID string, cfg *ShareConfig) (*media.MediaShare, error)

	// CreateFolderShare mints a share token for a folder subtree
	CreateFolderShare(ctx context.Context, folderID string, cfg *ShareConfig) (*media.MediaShare, error)

	// GetByToken retrieves a share; unknown tokens fail with NotFound
	GetByToken(ctx context.Context, token string) (*media.MediaShare, error)

	// ValidateAccess reports whether the token grants access right now,
	// checking existence, time/count expiry, and the password gate
	ValidateAccess(ctx context.Context, token string, password *string) (bool, error)

	// IncrementAccessCount atomically bumps the access counter; call only
	// after a successful ValidateAccess, never speculatively
	IncrementAccessCount(ctx context.Context, token string) error

	// RevokeShare deletes the share; idempotent
	RevokeShare(ctx context.Context, token string) error

	// ListUserShares lists shares created by a user
	ListUserShares(ctx context.Context, userID string) ([]media.MediaShare, error)

	// ListFileShares lists shares targeting a file
	ListFileShares(ctx context.Context, fileID string) ([]media.MediaShare, error)

	// ListFolderShares lists shares targeting a folder
	ListFolderShares(ctx context.Context, folderID string) ([]media.MediaShare, error)

	// CleanupExpiredShares batch-deletes time-expired shares only;
	// count-exhausted shares are retained until revoked or time-expired
	CleanupExpiredShares(ctx context.Context) (int64, error)
}

// ShareConfig carries the optional constraints on a new share
type ShareConfig struct {
	AccessType     media.AccessType `json:"access_type"`
	ExpiresAt      *time.Time       `json:"expires_at,omitempty"`
	MaxAccessCount *int             `json:"max_access_count,omitempty"`
	Password       *string          `json:"password,omitempty"` // stored only as a hash
	CreatedBy      *string          `json:"created_by,omitempty"`
}
