package media

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"mediavault/internal/domain"
	"mediavault/internal/domain/models/media"
	mediaRepo "mediavault/internal/domain/repositories/media"
	mediaSvc "mediavault/internal/domain/services/media"
)

type permissionService struct {
	permRepo   mediaRepo.PermissionRepository
	folderRepo mediaRepo.FolderRepository
	userDir    mediaRepo.UserDirectory
	logger     *slog.Logger
}

// NewPermissionService creates a new permission service
func NewPermissionService(
	permRepo mediaRepo.PermissionRepository,
	folderRepo mediaRepo.FolderRepository,
	userDir mediaRepo.UserDirectory,
	logger *slog.Logger,
) mediaSvc.PermissionService {
	return &permissionService{
		permRepo:   permRepo,
		folderRepo: folderRepo,
		userDir:    userDir,
		logger:     logger,
	}
}

// HasPermission reports whether the user holds at least the given level on
// the folder. Resolution order: owner bypass, PUBLIC visibility (VIEW only),
// then the explicit grant.
func (s *permissionService) HasPermission(ctx context.Context, folderID, userID string, level media.PermissionLevel) (bool, error) {
	if !level.Valid() {
		return false, fmt.Errorf("%w: unknown permission level %q", domain.ErrValidation, level)
	}

	folder, err := s.folderRepo.GetByID(ctx, folderID)
	if err != nil {
		return false, err
	}

	if folder.OwnerID != nil && *folder.OwnerID == userID {
		return true, nil
	}

	if folder.Visibility == media.VisibilityPublic && media.LevelView.Satisfies(level) {
		return true, nil
	}

	granted, err := s.GetEffectivePermission(ctx, folderID, userID)
	if err != nil {
		return false, err
	}
	if granted == "" {
		return false, nil
	}

	return granted.Satisfies(level), nil
}

// GetEffectivePermission returns the active grant level for the pair, or ""
// when no active grant exists. Expired grants are treated as absent; the
// read path never deletes them.
func (s *permissionService) GetEffectivePermission(ctx context.Context, folderID, userID string) (media.PermissionLevel, error) {
	grant, err := s.permRepo.GetByFolderAndUser(ctx, folderID, userID)
	if err != nil {
		return "", err
	}
	if grant == nil || grant.IsExpired(time.Now()) {
		return "", nil
	}
	return grant.Level, nil
}

// GrantPermission upserts a grant for the (folder, user) pair
func (s *permissionService) GrantPermission(ctx context.Context, req *mediaSvc.GrantRequest) (*media.FolderPermission, error) {
	if err := s.validateGrantRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	if _, err := s.folderRepo.GetByID(ctx, req.FolderID); err != nil {
		return nil, err
	}

	exists, err := s.userDir.Exists(ctx, req.UserID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, &domain.NotFoundError{Message: fmt.Sprintf("user %s not found", req.UserID)}
	}

	grant := &media.FolderPermission{
		FolderID:  req.FolderID,
		UserID:    req.UserID,
		Level:     req.Level,
		GrantedBy: req.GrantedBy,
		ExpiresAt: req.ExpiresAt,
	}

	if err := s.permRepo.Upsert(ctx, grant); err != nil {
		return nil, err
	}

	s.logger.Info("permission granted",
		"folder_id", grant.FolderID,
		"user_id", grant.UserID,
		"level", grant.Level,
	)

	return grant, nil
}

// RevokePermission deletes the grant if present; no-op otherwise
func (s *permissionService) RevokePermission(ctx context.Context, folderID, userID string) error {
	if err := s.permRepo.Delete(ctx, folderID, userID); err != nil {
		return err
	}

	s.logger.Info("permission revoked", "folder_id", folderID, "user_id", userID)
	return nil
}

// ListFolderPermissions lists all grants on a folder
func (s *permissionService) ListFolderPermissions(ctx context.Context, folderID string) ([]media.FolderPermission, error) {
	if _, err := s.folderRepo.GetByID(ctx, folderID); err != nil {
		return nil, err
	}
	return s.permRepo.ListByFolder(ctx, folderID)
}

// ListUserPermissions lists all grants held by a user
func (s *permissionService) ListUserPermissions(ctx context.Context, userID string) ([]media.FolderPermission, error) {
	return s.permRepo.ListByUser(ctx, userID)
}

// CleanupExpiredPermissions batch-deletes expired grants
func (s *permissionService) CleanupExpiredPermissions(ctx context.Context) (int64, error) {
	removed, err := s.permRepo.DeleteExpired(ctx, time.Now())
	if err != nil {
		return 0, err
	}

	if removed > 0 {
		s.logger.Info("expired permissions removed", "count", removed)
	}
	return removed, nil
}

func (s *permissionService) validateGrantRequest(req *mediaSvc.GrantRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.FolderID, validation.Required),
		validation.Field(&req.UserID, validation.Required),
		validation.Field(&req.Level, validation.Required, validation.By(func(value interface{}) error {
			level, _ := value.(media.PermissionLevel)
			if !level.Valid() {
				return fmt.Errorf("unknown permission level %q", level)
			}
			return nil
		})),
	)
}
