package media

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"mediavault/internal/config"
	"mediavault/internal/domain"
	"mediavault/internal/domain/models/media"
	mediaRepo "mediavault/internal/domain/repositories/media"
	mediaSvc "mediavault/internal/domain/services/media"
)

type shareService struct {
	shareRepo  mediaRepo.ShareRepository
	fileRepo   mediaRepo.FileRepository
	folderRepo mediaRepo.FolderRepository
	logger     *slog.Logger
}

// NewShareService creates a new share service
func NewShareService(
	shareRepo mediaRepo.ShareRepository,
	fileRepo mediaRepo.FileRepository,
	folderRepo mediaRepo.FolderRepository,
	logger *slog.Logger,
) mediaSvc.ShareService {
	return &shareService{
		shareRepo:  shareRepo,
		fileRepo:   fileRepo,
		folderRepo: folderRepo,
		logger:     logger,
	}
}

// CreateFileShare mints a share token for a file
func (s *shareService) CreateFileShare(ctx context.Context, fileID string, cfg *mediaSvc.ShareConfig) (*media.MediaShare, error) {
	if err := validateShareConfig(cfg); err != nil {
		return nil, err
	}

	if _, err := s.fileRepo.GetByID(ctx, fileID); err != nil {
		return nil, err
	}

	return s.create(ctx, media.ShareFile, &fileID, nil, cfg)
}

// CreateFolderShare mints a share token for a folder subtree
func (s *shareService) CreateFolderShare(ctx context.Context, folderID string, cfg *mediaSvc.ShareConfig) (*media.MediaShare, error) {
	if err := validateShareConfig(cfg); err != nil {
		return nil, err
	}

	if _, err := s.folderRepo.GetByID(ctx, folderID); err != nil {
		return nil, err
	}

	return s.create(ctx, media.ShareFolder, nil, &folderID, cfg)
}

func (s *shareService) create(ctx context.Context, shareType media.ShareType, fileID, folderID *string, cfg *mediaSvc.ShareConfig) (*media.MediaShare, error) {
	token, err := s.generateUniqueToken(ctx)
	if err != nil {
		return nil, err
	}

	share := &media.MediaShare{
		Token:          token,
		FileID:         fileID,
		FolderID:       folderID,
		ShareType:      shareType,
		AccessType:     cfg.AccessType,
		CreatedBy:      cfg.CreatedBy,
		ExpiresAt:      cfg.ExpiresAt,
		MaxAccessCount: cfg.MaxAccessCount,
	}

	if cfg.Password != nil && *cfg.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(*cfg.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("hash share password: %w", err)
		}
		hashed := string(hash)
		share.PasswordHash = &hashed
	}

	if err := s.shareRepo.Create(ctx, share); err != nil {
		return nil, err
	}

	s.logger.Info("share created",
		"token", share.Token,
		"share_type", share.ShareType,
		"access_type", share.AccessType,
	)

	return share, nil
}

// GetByToken retrieves a share; unknown tokens fail with NotFound
func (s *shareService) GetByToken(ctx context.Context, token string) (*media.MediaShare, error) {
	return s.shareRepo.GetByToken(ctx, token)
}

// ValidateAccess reports whether the token grants access right now. A
// missing or expired share and a failed password gate all answer false;
// only infrastructure failures surface as errors.
func (s *shareService) ValidateAccess(ctx context.Context, token string, password *string) (bool, error) {
	share, err := s.shareRepo.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return false, nil
		}
		return false, err
	}

	if share.IsExpired(time.Now()) {
		return false, nil
	}

	if share.PasswordHash != nil {
		if password == nil {
			return false, nil
		}
		if bcrypt.CompareHashAndPassword([]byte(*share.PasswordHash), []byte(*password)) != nil {
			return false, nil
		}
	}

	return true, nil
}

// IncrementAccessCount atomically bumps the access counter
func (s *shareService) IncrementAccessCount(ctx context.Context, token string) error {
	return s.shareRepo.IncrementAccessCount(ctx, token)
}

// RevokeShare deletes the share; idempotent
func (s *shareService) RevokeShare(ctx context.Context, token string) error {
	if err := s.shareRepo.Delete(ctx, token); err != nil {
		return err
	}

	s.logger.Info("share revoked", "token", token)
	return nil
}

// ListUserShares lists shares created by a user
func (s *shareService) ListUserShares(ctx context.Context, userID string) ([]media.MediaShare, error) {
	return s.shareRepo.ListByCreator(ctx, userID)
}

// ListFileShares lists shares targeting a file
func (s *shareService) ListFileShares(ctx context.Context, fileID string) ([]media.MediaShare, error) {
	return s.shareRepo.ListByFile(ctx, fileID)
}

// ListFolderShares lists shares targeting a folder
func (s *shareService) ListFolderShares(ctx context.Context, folderID string) ([]media.MediaShare, error) {
	return s.shareRepo.ListByFolder(ctx, folderID)
}

// CleanupExpiredShares batch-deletes time-expired shares only.
// Count-exhausted shares stay until revoked or time-expired.
func (s *shareService) CleanupExpiredShares(ctx context.Context) (int64, error) {
	removed, err := s.shareRepo.DeleteTimeExpired(ctx, time.Now())
	if err != nil {
		return 0, err
	}

	if removed > 0 {
		s.logger.Info("expired shares removed", "count", removed)
	}
	return removed, nil
}

// generateUniqueToken mints an unguessable 32-char hex token, re-rolling
// on the (practically impossible) collision
func (s *shareService) generateUniqueToken(ctx context.Context) (string, error) {
	for attempt := 0; attempt < config.MaxTokenAttempts; attempt++ {
		token := strings.ReplaceAll(uuid.New().String(), "-", "")

		exists, err := s.shareRepo.ExistsByToken(ctx, token)
		if err != nil {
			return "", err
		}
		if !exists {
			return token, nil
		}
	}

	return "", fmt.Errorf("share token generation: %w", domain.ErrConflict)
}

func validateShareConfig(cfg *mediaSvc.ShareConfig) error {
	if !cfg.AccessType.Valid() {
		return fmt.Errorf("%w: unknown access type %q", domain.ErrValidation, cfg.AccessType)
	}
	if cfg.MaxAccessCount != nil && *cfg.MaxAccessCount < 1 {
		return fmt.Errorf("%w: max access count must be positive", domain.ErrValidation)
	}
	if cfg.ExpiresAt != nil && cfg.ExpiresAt.Before(time.Now()) {
		return fmt.Errorf("%w: expiry must be in the future", domain.ErrValidation)
	}
	return nil
}
