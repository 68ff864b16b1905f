package media

import (
	"context"
	"time"

	"mediavault/internal/domain/models/media"
)

// PermissionService is the PermissionAPI: evaluates and manages explicit
// folder grants. It only answers questions; raising Forbidden on a failed
// check is the caller's job.
type PermissionService interface {
	// HasPermission reports whether the user holds at least the given
	// level on the folder. Owners pass unconditionally; PUBLIC folders
	// grant VIEW to everyone.
	HasPermission(ctx context.Context, folderID, userID string, level media.PermissionLevel) (bool, error)

	// GetEffectivePermission returns the active grant level for the pair,
	// or "" when no active grant exists. Reads are side-effect free:
	// expired grants are treated as absent, not deleted.
	GetEffectivePermission(ctx context.Context, folderID, userID string) (media.PermissionLevel, error)

	// GrantPermission upserts a grant; an existing grant for the pair is
	// replaced, never stacked. Grants do not inherit from ancestors.
	GrantPermission(ctx context.Context, req *GrantRequest) (*media.FolderPermission, error)

	// RevokePermission deletes the grant if present; no-op otherwise
	RevokePermission(ctx context.Context, folderID, userID string) error

	// ListFolderPermissions lists all grants on a folder
	ListFolderPermissions(ctx context.Context, folderID string) ([]media.FolderPermission, error)

	// ListUserPermissions lists all grants held by a user
	ListUserPermissions(ctx context.Context, userID string) ([]media.FolderPermission, error)

	// CleanupExpiredPermissions batch-deletes expired grants; intended for
	// periodic invocation, never the read path
	CleanupExpiredPermissions(ctx context.Context) (int64, error)
}

// GrantRequest represents a permission grant request
type GrantRequest struct {
	FolderID  string                `json:"folder_id"`
	UserID    string                `json:"user_id"`
	Level     media.PermissionLevel `json:"level"`
	GrantedBy *string               `json:"granted_by,omitempty"`
	ExpiresAt *time.Time            `json:"expires_at,omitempty"` // nil = never expires
}
