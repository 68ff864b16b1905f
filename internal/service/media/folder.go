package media

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"mediavault/internal/config"
	"mediavault/internal/domain"
	"mediavault/internal/domain/models/media"
	"mediavault/internal/domain/repositories"
	mediaRepo "mediavault/internal/domain/repositories/media"
	mediaSvc "mediavault/internal/domain/services/media"
)

// createAttempts bounds the retry loop when a slug uniqueness race is
// lost against a writer outside the advisory lock (e.g. a manual insert).
const createAttempts = 3

var folderNamePattern = regexp.MustCompile(`^[^/]+$`)

type folderService struct {
	folderRepo mediaRepo.FolderRepository
	fileRepo   mediaRepo.FileRepository
	userDir    mediaRepo.UserDirectory
	objects    mediaSvc.ObjectStore
	txManager  repositories.TransactionManager
	cache      *TreeCache
	logger     *slog.Logger
}

// NewFolderService creates a new folder service
func NewFolderService(
	folderRepo mediaRepo.FolderRepository,
	fileRepo mediaRepo.FileRepository,
	userDir mediaRepo.UserDirectory,
	objects mediaSvc.ObjectStore,
	txManager repositories.TransactionManager,
	cache *TreeCache,
	logger *slog.Logger,
) mediaSvc.FolderService {
	return &folderService{
		folderRepo: folderRepo,
		fileRepo:   fileRepo,
		userDir:    userDir,
		objects:    objects,
		txManager:  txManager,
		cache:      cache,
		logger:     logger,
	}
}

// Create creates a new folder under the given parent (nil = root level)
func (s *folderService) Create(ctx context.Context, req *mediaSvc.CreateFolderRequest) (*media.Folder, error) {
	if err := s.validateCreateRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	if req.OwnerID != nil {
		exists, err := s.userDir.Exists(ctx, *req.OwnerID)
		if err != nil {
			return nil, err
		}
		if !exists {
			return nil, &domain.NotFoundError{Message: fmt.Sprintf("user %s not found", *req.OwnerID)}
		}
	}

	var folder *media.Folder
	var err error
	for attempt := 0; attempt < createAttempts; attempt++ {
		folder, err = s.createOnce(ctx, req)
		if err == nil || !errors.Is(err, domain.ErrConflict) {
			break
		}
	}
	if err != nil {
		return nil, err
	}

	s.cache.Invalidate()
	s.logger.Info("folder created",
		"id", folder.ID,
		"name", folder.Name,
		"path", folder.Path,
		"depth", folder.Depth,
	)

	return folder, nil
}

func (s *folderService) createOnce(ctx context.Context, req *mediaSvc.CreateFolderRequest) (*media.Folder, error) {
	var created *media.Folder

	err := s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		if err := s.folderRepo.LockTree(txCtx); err != nil {
			return err
		}

		var parent *media.Folder
		if req.ParentID != nil {
			var err error
			parent, err = s.folderRepo.GetByID(txCtx, *req.ParentID)
			if err != nil {
				return err
			}
			if parent.Depth >= config.MaxFolderDepth {
				return &domain.DepthExceededError{
					Message: fmt.Sprintf("folder nesting cannot exceed %d levels", config.MaxFolderDepth),
				}
			}
		}

		slug, err := generateUniqueSlug(txCtx, s.folderRepo, req.Name, req.ParentID, "")
		if err != nil {
			return err
		}

		folder := &media.Folder{
			Name:        strings.TrimSpace(req.Name),
			Slug:        slug,
			Description: req.Description,
			ParentID:    req.ParentID,
			OwnerID:     req.OwnerID,
			Visibility:  media.VisibilityPrivate,
			Color:       "#6366f1",
			Icon:        "Folder",
		}
		folder.UpdatePath(parent)

		if err := s.folderRepo.Create(txCtx, folder); err != nil {
			return err
		}

		created = folder
		return nil
	})

	if err != nil {
		return nil, err
	}
	return created, nil
}

// Rename renames a folder, recomputing its slug and cascading the path
// rewrite through the subtree when the path changes
func (s *folderService) Rename(ctx context.Context, id, newName string) (*media.Folder, error) {
	if err := validateFolderName(newName); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	var renamed *media.Folder
	err := s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		if err := s.folderRepo.LockTree(txCtx); err != nil {
			return err
		}

		folder, err := s.folderRepo.GetByID(txCtx, id)
		if err != nil {
			return err
		}
		if folder.IsReservedRoot() {
			return &domain.InvalidOperationError{Message: "cannot rename the root folder"}
		}

		folder.Name = strings.TrimSpace(newName)

		slug, err := generateUniqueSlug(txCtx, s.folderRepo, newName, folder.ParentID, folder.Slug)
		if err != nil {
			return err
		}

		if slug == folder.Slug {
			// Display name changed but the path did not; no cascade
			if err := s.folderRepo.Update(txCtx, folder); err != nil {
				return err
			}
			renamed = folder
			return nil
		}

		folder.Slug = slug

		var parent *media.Folder
		if folder.ParentID != nil {
			parent, err = s.folderRepo.GetByID(txCtx, *folder.ParentID)
			if err != nil {
				return err
			}
		}
		folder.UpdatePath(parent)

		if err := s.folderRepo.Update(txCtx, folder); err != nil {
			return err
		}

		// Children's paths embed the ancestor path: rewrite the whole subtree
		if err := s.cascadePaths(txCtx, folder); err != nil {
			return err
		}

		renamed = folder
		return nil
	})

	if err != nil {
		return nil, err
	}

	s.cache.Invalidate()
	s.logger.Info("folder renamed", "id", renamed.ID, "name", renamed.Name, "path", renamed.Path)
	return renamed, nil
}

// Update applies cosmetic changes (description, color, icon, sort order,
// visibility); these never touch the path and need no cascade
func (s *folderService) Update(ctx context.Context, id string, req *mediaSvc.UpdateFolderRequest) (*media.Folder, error) {
	if req.Visibility != nil && !req.Visibility.Valid() {
		return nil, fmt.Errorf("%w: unknown visibility %q", domain.ErrValidation, *req.Visibility)
	}

	folder, err := s.folderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Description != nil {
		folder.Description = req.Description
	}
	if req.Color != nil {
		folder.Color = *req.Color
	}
	if req.Icon != nil {
		folder.Icon = *req.Icon
	}
	if req.SortOrder != nil {
		folder.SortOrder = *req.SortOrder
	}
	if req.Visibility != nil {
		folder.Visibility = *req.Visibility
	}

	if err := s.folderRepo.Update(ctx, folder); err != nil {
		return nil, err
	}

	s.cache.Invalidate()
	s.logger.Info("folder updated", "id", folder.ID, "name", folder.Name)
	return folder, nil
}

// Move reparents a folder (nil newParentID = root level)
func (s *folderService) Move(ctx context.Context, id string, newParentID *string) (*media.Folder, error) {
	var moved *media.Folder

	err := s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		if err := s.folderRepo.LockTree(txCtx); err != nil {
			return err
		}

		folder, err := s.folderRepo.GetByID(txCtx, id)
		if err != nil {
			return err
		}
		if folder.IsReservedRoot() {
			return &domain.InvalidOperationError{Message: "cannot move the root folder"}
		}

		if sameParent(folder.ParentID, newParentID) {
			moved = folder
			return nil
		}

		var newParent *media.Folder
		if newParentID != nil {
			if *newParentID == id {
				return &domain.InvalidOperationError{Message: "cannot move a folder into itself"}
			}

			newParent, err = s.folderRepo.GetByID(txCtx, *newParentID)
			if err != nil {
				return err
			}

			if strings.HasPrefix(newParent.Path, folder.Path+"/") {
				return &domain.InvalidOperationError{Message: "cannot move a folder into its own descendant"}
			}

			subtree, err := s.subtreeDepth(txCtx, folder.ID)
			if err != nil {
				return err
			}
			if newParent.Depth+1+subtree > config.MaxFolderDepth {
				return &domain.DepthExceededError{
					Message: fmt.Sprintf("move would exceed the %d-level nesting limit", config.MaxFolderDepth),
				}
			}
		}

		// The slug must stay unique in the target scope; regenerate from
		// the display name when the move collides with a sibling there.
		exists, err := s.folderRepo.ExistsBySlugAndParent(txCtx, folder.Slug, newParentID)
		if err != nil {
			return err
		}
		if exists {
			slug, err := generateUniqueSlug(txCtx, s.folderRepo, folder.Name, newParentID, "")
			if err != nil {
				return err
			}
			folder.Slug = slug
		}

		oldParentID := folder.ParentID
		folder.ParentID = newParentID
		folder.UpdatePath(newParent)

		if err := s.folderRepo.Update(txCtx, folder); err != nil {
			return err
		}

		if err := s.cascadePaths(txCtx, folder); err != nil {
			return err
		}

		// Both ancestor chains change aggregates
		if oldParentID != nil {
			if err := s.recomputeStatsChain(txCtx, *oldParentID); err != nil {
				return err
			}
		}
		if newParentID != nil {
			if err := s.recomputeStatsChain(txCtx, *newParentID); err != nil {
				return err
			}
		}

		moved = folder
		return nil
	})

	if err != nil {
		return nil, err
	}

	s.cache.Invalidate()
	s.logger.Info("folder moved", "id", moved.ID, "path", moved.Path, "depth", moved.Depth)
	return moved, nil
}

// Delete removes the folder and its entire subtree, including file
// associations. Metadata removal is atomic; physical deletion is
// best-effort afterwards and logged for reconciliation.
func (s *folderService) Delete(ctx context.Context, id string) error {
	var orphanedPaths []string
	var deleted *media.Folder

	err := s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		if err := s.folderRepo.LockTree(txCtx); err != nil {
			return err
		}

		folder, err := s.folderRepo.GetByID(txCtx, id)
		if err != nil {
			return err
		}
		if folder.IsReservedRoot() {
			return &domain.InvalidOperationError{Message: "cannot delete the root folder"}
		}

		if err := s.deleteSubtree(txCtx, folder.ID, &orphanedPaths); err != nil {
			return err
		}

		if folder.ParentID != nil {
			if err := s.recomputeStatsChain(txCtx, *folder.ParentID); err != nil {
				return err
			}
		}

		deleted = folder
		return nil
	})

	if err != nil {
		return err
	}

	s.cache.Invalidate()

	// Physical cleanup must not block metadata removal; failures are
	// reconciled out-of-band
	for _, storagePath := range orphanedPaths {
		if err := s.objects.Remove(ctx, storagePath); err != nil {
			s.logger.Warn("physical delete failed, needs reconciliation",
				"storage_path", storagePath,
				"error", err,
			)
		}
	}

	s.logger.Info("folder deleted",
		"id", deleted.ID,
		"name", deleted.Name,
		"path", deleted.Path,
		"orphaned_objects", len(orphanedPaths),
	)

	return nil
}

// deleteSubtree removes the folder's descendants depth-first, then its
// own file rows and row, collecting storage paths for physical cleanup
func (s *folderService) deleteSubtree(ctx context.Context, folderID string, orphanedPaths *[]string) error {
	children, err := s.folderRepo.ListChildren(ctx, &folderID)
	if err != nil {
		return err
	}
	for _, child := range children {
		if err := s.deleteSubtree(ctx, child.ID, orphanedPaths); err != nil {
			return err
		}
	}

	files, err := s.fileRepo.ListByFolder(ctx, folderID)
	if err != nil {
		return err
	}
	for _, file := range files {
		*orphanedPaths = append(*orphanedPaths, file.StoragePath)
	}

	if err := s.fileRepo.DeleteByFolder(ctx, folderID); err != nil {
		return err
	}

	return s.folderRepo.Delete(ctx, folderID)
}

// GetByID retrieves a folder by ID
func (s *folderService) GetByID(ctx context.Context, id string) (*media.Folder, error) {
	return s.folderRepo.GetByID(ctx, id)
}

// GetByPath retrieves a folder by its materialized path
func (s *folderService) GetByPath(ctx context.Context, path string) (*media.Folder, error) {
	return s.folderRepo.GetByPath(ctx, path)
}

// GetChildren lists direct children ordered by sort key
func (s *folderService) GetChildren(ctx context.Context, parentID *string) ([]media.Folder, error) {
	return s.folderRepo.ListChildren(ctx, parentID)
}

// UpdateStatisticsRecursive recomputes cached aggregates for the folder
// and every ancestor up to the root
func (s *folderService) UpdateStatisticsRecursive(ctx context.Context, folderID string) error {
	return s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		return s.recomputeStatsChain(txCtx, folderID)
	})
}

// recomputeStatsChain walks from the folder to the root, setting each
// folder's aggregates to its direct file stats plus the sum of its direct
// children's cached aggregates. Bottom-up and incremental; never a
// full-tree rescan.
func (s *folderService) recomputeStatsChain(ctx context.Context, folderID string) error {
	current := folderID
	for {
		folder, err := s.folderRepo.GetByID(ctx, current)
		if err != nil {
			return err
		}

		fileCount, totalSize, err := s.fileRepo.StatsByFolder(ctx, current)
		if err != nil {
			return err
		}

		children, err := s.folderRepo.ListChildren(ctx, &current)
		if err != nil {
			return err
		}
		for _, child := range children {
			fileCount += child.FileCount
			totalSize += child.TotalSize
		}

		if err := s.folderRepo.UpdateStatistics(ctx, current, fileCount, totalSize); err != nil {
			return err
		}

		s.logger.Debug("folder statistics updated",
			"id", current,
			"file_count", fileCount,
			"total_size", totalSize,
		)

		if folder.ParentID == nil {
			return nil
		}
		current = *folder.ParentID
	}
}

// HasAccess reports whether the user can see the folder from ownership or
// visibility alone. Explicit grants are the permission resolver's concern.
func (s *folderService) HasAccess(ctx context.Context, folderID, userID string) (bool, error) {
	folder, err := s.folderRepo.GetByID(ctx, folderID)
	if err != nil {
		return false, err
	}

	if folder.Visibility == media.VisibilityPublic {
		return true, nil
	}
	if folder.OwnerID != nil && *folder.OwnerID == userID {
		return true, nil
	}

	// TEAM visibility needs team membership, which lives outside this core
	return false, nil
}

// cascadePaths rewrites path/depth for every descendant of the (already
// updated) folder: each child gets parent.path + "/" + slug and
// parent.depth + 1, then recurses with the child as the new parent.
// O(subtree size) per mutation; depth and fan-out are bounded and
// mutations are rare relative to reads.
func (s *folderService) cascadePaths(ctx context.Context, folder *media.Folder) error {
	children, err := s.folderRepo.ListChildren(ctx, &folder.ID)
	if err != nil {
		return err
	}

	for i := range children {
		child := &children[i]
		child.UpdatePath(folder)
		if err := s.folderRepo.Update(ctx, child); err != nil {
			return err
		}
		if err := s.cascadePaths(ctx, child); err != nil {
			return err
		}
	}

	return nil
}

// subtreeDepth returns the height of the subtree under the folder:
// 0 for a leaf, 1 + max over children otherwise
func (s *folderService) subtreeDepth(ctx context.Context, folderID string) (int, error) {
	children, err := s.folderRepo.ListChildren(ctx, &folderID)
	if err != nil {
		return 0, err
	}
	if len(children) == 0 {
		return 0, nil
	}

	maxChild := 0
	for _, child := range children {
		depth, err := s.subtreeDepth(ctx, child.ID)
		if err != nil {
			return 0, err
		}
		if depth > maxChild {
			maxChild = depth
		}
	}

	return maxChild + 1, nil
}

// sameParent compares two nullable parent references
func sameParent(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// validateCreateRequest validates a folder creation request
func (s *folderService) validateCreateRequest(req *mediaSvc.CreateFolderRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.Name,
			validation.Required,
			validation.Length(1, config.MaxFolderNameLength),
			validation.Match(folderNamePattern).Error("folder name cannot contain slashes"),
		),
	)
}

// validateFolderName validates a bare folder name (rename)
func validateFolderName(name string) error {
	return validation.Validate(name,
		validation.Required,
		validation.Length(1, config.MaxFolderNameLength),
		validation.Match(folderNamePattern).Error("folder name cannot contain slashes"),
	)
}
