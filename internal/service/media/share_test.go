package media

import (
	"context"
	"errors"
	"testing"
	"time"

	"mediavault/internal/domain"
	"mediavault/internal/domain/models/media"
	mediaSvc "mediavault/internal/domain/services/media"
)

func viewConfig() *mediaSvc.ShareConfig {
	return &mediaSvc.ShareConfig{AccessType: media.AccessView}
}

func TestCreateShare(t *testing.T) {
	ctx := context.Background()

	t.Run("folder share", func(t *testing.T) {
		f := newFixture()
		folder, _ := f.folders.Create(ctx, createReq("F", nil))

		share, err := f.shares.CreateFolderShare(ctx, folder.ID, viewConfig())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if share.ShareType != media.ShareFolder {
			t.Errorf("share type = %s, want FOLDER", share.ShareType)
		}
		if len(share.Token) != 32 {
			t.Errorf("token length = %d, want 32", len(share.Token))
		}
		if share.FolderID == nil || *share.FolderID != folder.ID {
			t.Errorf("folder id not set on share")
		}
		if share.FileID != nil {
			t.Errorf("file id set on folder share")
		}
	})

	t.Run("file share", func(t *testing.T) {
		f := newFixture()
		folder, _ := f.folders.Create(ctx, createReq("F", nil))
		file := f.fileRepo.add(folder.ID, "a.png", "objects/a.png", 10)

		share, err := f.shares.CreateFileShare(ctx, file.ID, viewConfig())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if share.ShareType != media.ShareFile {
			t.Errorf("share type = %s, want FILE", share.ShareType)
		}
	})

	t.Run("unknown target", func(t *testing.T) {
		f := newFixture()

		if _, err := f.shares.CreateFolderShare(ctx, "missing", viewConfig()); !errors.Is(err, domain.ErrNotFound) {
			t.Errorf("folder err = %v, want NotFound", err)
		}
		if _, err := f.shares.CreateFileShare(ctx, "missing", viewConfig()); !errors.Is(err, domain.ErrNotFound) {
			t.Errorf("file err = %v, want NotFound", err)
		}
	})

	t.Run("invalid config rejected", func(t *testing.T) {
		f := newFixture()
		folder, _ := f.folders.Create(ctx, createReq("F", nil))

		cfg := viewConfig()
		cfg.MaxAccessCount = intPtr(0)
		if _, err := f.shares.CreateFolderShare(ctx, folder.ID, cfg); !errors.Is(err, domain.ErrValidation) {
			t.Errorf("zero max count err = %v, want Validation", err)
		}

		past := time.Now().Add(-time.Hour)
		cfg = viewConfig()
		cfg.ExpiresAt = &past
		if _, err := f.shares.CreateFolderShare(ctx, folder.ID, cfg); !errors.Is(err, domain.ErrValidation) {
			t.Errorf("past expiry err = %v, want Validation", err)
		}

		cfg = &mediaSvc.ShareConfig{AccessType: media.AccessType("EXECUTE")}
		if _, err := f.shares.CreateFolderShare(ctx, folder.ID, cfg); !errors.Is(err, domain.ErrValidation) {
			t.Errorf("bad access type err = %v, want Validation", err)
		}
	})

	t.Run("password is stored hashed", func(t *testing.T) {
		f := newFixture()
		folder, _ := f.folders.Create(ctx, createReq("F", nil))

		cfg := viewConfig()
		cfg.Password = strPtr("hunter2")
		share, err := f.shares.CreateFolderShare(ctx, folder.ID, cfg)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if share.PasswordHash == nil || *share.PasswordHash == "hunter2" {
			t.Error("password not hashed")
		}
	})
}

func TestValidateAccess(t *testing.T) {
	ctx := context.Background()

	t.Run("valid token", func(t *testing.T) {
		f := newFixture()
		folder, _ := f.folders.Create(ctx, createReq("F", nil))
		share, _ := f.shares.CreateFolderShare(ctx, folder.ID, viewConfig())

		ok, err := f.shares.ValidateAccess(ctx, share.Token, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !ok {
			t.Error("valid token denied")
		}
	})

	t.Run("unknown token answers false without error", func(t *testing.T) {
		f := newFixture()

		ok, err := f.shares.ValidateAccess(ctx, "nope", nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if ok {
			t.Error("unknown token granted access")
		}
	})

	t.Run("time expiry", func(t *testing.T) {
		f := newFixture()
		folder, _ := f.folders.Create(ctx, createReq("F", nil))

		soon := time.Now().Add(50 * time.Millisecond)
		cfg := viewConfig()
		cfg.ExpiresAt = &soon
		share, err := f.shares.CreateFolderShare(ctx, folder.ID, cfg)
		if err != nil {
			t.Fatalf("create: %v", err)
		}

		time.Sleep(100 * time.Millisecond)

		ok, err := f.shares.ValidateAccess(ctx, share.Token, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if ok {
			t.Error("expired token granted access")
		}
	})

	t.Run("access budget exhausts after max uses", func(t *testing.T) {
		f := newFixture()
		folder, _ := f.folders.Create(ctx, createReq("F", nil))

		cfg := viewConfig()
		cfg.MaxAccessCount = intPtr(3)
		share, err := f.shares.CreateFolderShare(ctx, folder.ID, cfg)
		if err != nil {
			t.Fatalf("create: %v", err)
		}

		for i := 0; i < 3; i++ {
			ok, err := f.shares.ValidateAccess(ctx, share.Token, nil)
			if err != nil || !ok {
				t.Fatalf("use %d: ok=%v err=%v", i+1, ok, err)
			}
			if err := f.shares.IncrementAccessCount(ctx, share.Token); err != nil {
				t.Fatalf("increment %d: %v", i+1, err)
			}
		}

		ok, err := f.shares.ValidateAccess(ctx, share.Token, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if ok {
			t.Error("fourth use allowed, budget was 3")
		}
	})

	t.Run("password gate", func(t *testing.T) {
		f := newFixture()
		folder, _ := f.folders.Create(ctx, createReq("F", nil))

		cfg := viewConfig()
		cfg.Password = strPtr("hunter2")
		share, _ := f.shares.CreateFolderShare(ctx, folder.ID, cfg)

		tests := []struct {
			name     string
			password *string
			want     bool
		}{
			{"correct password", strPtr("hunter2"), true},
			{"wrong password", strPtr("wrong"), false},
			{"missing password", nil, false},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				ok, err := f.shares.ValidateAccess(ctx, share.Token, tt.password)
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if ok != tt.want {
					t.Errorf("ok = %v, want %v", ok, tt.want)
				}
			})
		}
	})
}

func TestRevokeShare(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	folder, _ := f.folders.Create(ctx, createReq("F", nil))
	share, _ := f.shares.CreateFolderShare(ctx, folder.ID, viewConfig())

	if err := f.shares.RevokeShare(ctx, share.Token); err != nil {
		t.Fatalf("revoke: %v", err)
	}

	if _, err := f.shares.GetByToken(ctx, share.Token); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("err = %v, want NotFound", err)
	}

	// Idempotent
	if err := f.shares.RevokeShare(ctx, share.Token); err != nil {
		t.Errorf("second revoke: %v", err)
	}
}

func TestListUserShares(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	folder, _ := f.folders.Create(ctx, createReq("F", nil))

	cfg := viewConfig()
	cfg.CreatedBy = strPtr("alice")
	f.shares.CreateFolderShare(ctx, folder.ID, cfg)

	other := viewConfig()
	other.CreatedBy = strPtr("bob")
	f.shares.CreateFolderShare(ctx, folder.ID, other)

	shares, err := f.shares.ListUserShares(ctx, "alice")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(shares) != 1 {
		t.Errorf("got %d shares, want 1", len(shares))
	}
}

func TestListTargetShares(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	folder, _ := f.folders.Create(ctx, createReq("F", nil))
	file := f.fileRepo.add(folder.ID, "a.png", "objects/a.png", 10)

	f.shares.CreateFolderShare(ctx, folder.ID, viewConfig())
	f.shares.CreateFolderShare(ctx, folder.ID, viewConfig())
	f.shares.CreateFileShare(ctx, file.ID, viewConfig())

	folderShares, err := f.shares.ListFolderShares(ctx, folder.ID)
	if err != nil {
		t.Fatalf("list folder shares: %v", err)
	}
	if len(folderShares) != 2 {
		t.Errorf("got %d folder shares, want 2", len(folderShares))
	}

	fileShares, err := f.shares.ListFileShares(ctx, file.ID)
	if err != nil {
		t.Fatalf("list file shares: %v", err)
	}
	if len(fileShares) != 1 {
		t.Errorf("got %d file shares, want 1", len(fileShares))
	}
}

func TestCleanupExpiredShares(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	folder, _ := f.folders.Create(ctx, createReq("F", nil))

	// Time-expired share, created directly since the service refuses past
	// expiries
	past := time.Now().Add(-time.Hour)
	expired := &media.MediaShare{
		Token:      "expired0000000000000000000000000",
		FolderID:   &folder.ID,
		ShareType:  media.ShareFolder,
		AccessType: media.AccessView,
		ExpiresAt:  &past,
	}
	if err := f.shareRepo.Create(ctx, expired); err != nil {
		t.Fatalf("seed expired share: %v", err)
	}

	// Count-exhausted share must survive cleanup
	cfg := viewConfig()
	cfg.MaxAccessCount = intPtr(1)
	exhausted, err := f.shares.CreateFolderShare(ctx, folder.ID, cfg)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := f.shares.IncrementAccessCount(ctx, exhausted.Token); err != nil {
		t.Fatalf("increment: %v", err)
	}

	removed, err := f.shares.CleanupExpiredShares(ctx)
	if err != nil {
		t.Fatalf("cleanup: %v", err)
	}
	if removed != 1 {
		t.Errorf("removed = %d, want 1", removed)
	}

	if _, err := f.shares.GetByToken(ctx, expired.Token); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("time-expired share survived cleanup")
	}
	if _, err := f.shares.GetByToken(ctx, exhausted.Token); err != nil {
		t.Errorf("count-exhausted share removed by cleanup: %v", err)
	}
}
