package media

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"mediavault/internal/domain"
	"mediavault/internal/domain/models/media"
	"mediavault/internal/domain/repositories"
	mediaSvc "mediavault/internal/domain/services/media"
)

// In-memory fakes standing in for the postgres repositories. They enforce
// the same constraints the schema does (slug uniqueness per parent scope,
// single grant per pair) so service tests exercise real conflict paths.

type fakeFolderRepo struct {
	mu      sync.Mutex
	folders map[string]*media.Folder
	nextID  int
}

func newFakeFolderRepo() *fakeFolderRepo {
	return &fakeFolderRepo{folders: make(map[string]*media.Folder)}
}

func (r *fakeFolderRepo) Create(_ context.Context, folder *media.Folder) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.folders {
		if existing.Slug == folder.Slug && sameParentRef(existing.ParentID, folder.ParentID) {
			return &domain.ConflictError{
				Message:      fmt.Sprintf("folder slug %q already exists", folder.Slug),
				ResourceType: "folder",
				ResourceID:   existing.ID,
			}
		}
	}

	r.nextID++
	folder.ID = fmt.Sprintf("folder-%d", r.nextID)
	folder.CreatedAt = time.Now()
	folder.UpdatedAt = folder.CreatedAt

	stored := *folder
	r.folders[folder.ID] = &stored
	return nil
}

func (r *fakeFolderRepo) GetByID(_ context.Context, id string) (*media.Folder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	folder, ok := r.folders[id]
	if !ok {
		return nil, &domain.NotFoundError{Message: fmt.Sprintf("folder %s not found", id)}
	}
	copied := *folder
	return &copied, nil
}

func (r *fakeFolderRepo) GetByPath(_ context.Context, path string) (*media.Folder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, folder := range r.folders {
		if folder.Path == path {
			copied := *folder
			return &copied, nil
		}
	}
	return nil, &domain.NotFoundError{Message: fmt.Sprintf("folder at path %s not found", path)}
}

func (r *fakeFolderRepo) Update(_ context.Context, folder *media.Folder) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.folders[folder.ID]; !ok {
		return &domain.NotFoundError{Message: fmt.Sprintf("folder %s not found", folder.ID)}
	}
	folder.UpdatedAt = time.Now()
	stored := *folder
	r.folders[folder.ID] = &stored
	return nil
}

func (r *fakeFolderRepo) UpdateStatistics(_ context.Context, id string, fileCount int, totalSize int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	folder, ok := r.folders[id]
	if !ok {
		return &domain.NotFoundError{Message: fmt.Sprintf("folder %s not found", id)}
	}
	folder.FileCount = fileCount
	folder.TotalSize = totalSize
	return nil
}

func (r *fakeFolderRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.folders[id]; !ok {
		return &domain.NotFoundError{Message: fmt.Sprintf("folder %s not found", id)}
	}
	delete(r.folders, id)
	return nil
}

func (r *fakeFolderRepo) ListChildren(_ context.Context, parentID *string) ([]media.Folder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var children []media.Folder
	for _, folder := range r.folders {
		if sameParentRef(folder.ParentID, parentID) {
			children = append(children, *folder)
		}
	}
	sortFolders(children)
	return children, nil
}

func (r *fakeFolderRepo) GetAll(_ context.Context) ([]media.Folder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	all := make([]media.Folder, 0, len(r.folders))
	for _, folder := range r.folders {
		all = append(all, *folder)
	}
	sortFolders(all)
	return all, nil
}

func (r *fakeFolderRepo) GetAllVisibleToUser(_ context.Context, userID string) ([]media.Folder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var visible []media.Folder
	for _, folder := range r.folders {
		if folder.Visibility == media.VisibilityPublic {
			visible = append(visible, *folder)
			continue
		}
		if folder.OwnerID != nil && *folder.OwnerID == userID {
			visible = append(visible, *folder)
		}
	}
	sortFolders(visible)
	return visible, nil
}

func (r *fakeFolderRepo) ExistsBySlugAndParent(_ context.Context, slug string, parentID *string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, folder := range r.folders {
		if folder.Slug == slug && sameParentRef(folder.ParentID, parentID) {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeFolderRepo) LockTree(_ context.Context) error {
	return nil
}

func sortFolders(folders []media.Folder) {
	sort.SliceStable(folders, func(i, j int) bool {
		if folders[i].SortOrder != folders[j].SortOrder {
			return folders[i].SortOrder < folders[j].SortOrder
		}
		return folders[i].Name < folders[j].Name
	})
}

func sameParentRef(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

type fakeFileRepo struct {
	mu     sync.Mutex
	files  map[string]*media.File
	nextID int
}

func newFakeFileRepo() *fakeFileRepo {
	return &fakeFileRepo{files: make(map[string]*media.File)}
}

func (r *fakeFileRepo) add(folderID string, name, storagePath string, size int64) *media.File {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	file := &media.File{
		ID:          fmt.Sprintf("file-%d", r.nextID),
		FolderID:    &folderID,
		FileName:    name,
		StoragePath: storagePath,
		FileSize:    size,
		CreatedAt:   time.Now(),
	}
	r.files[file.ID] = file
	return file
}

func (r *fakeFileRepo) StatsByFolder(_ context.Context, folderID string) (int, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var count int
	var total int64
	for _, file := range r.files {
		if file.FolderID != nil && *file.FolderID == folderID {
			count++
			total += file.FileSize
		}
	}
	return count, total, nil
}

func (r *fakeFileRepo) ListByFolder(_ context.Context, folderID string) ([]media.File, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var files []media.File
	for _, file := range r.files {
		if file.FolderID != nil && *file.FolderID == folderID {
			files = append(files, *file)
		}
	}
	return files, nil
}

func (r *fakeFileRepo) GetByID(_ context.Context, id string) (*media.File, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	file, ok := r.files[id]
	if !ok {
		return nil, &domain.NotFoundError{Message: fmt.Sprintf("file %s not found", id)}
	}
	copied := *file
	return &copied, nil
}

func (r *fakeFileRepo) DeleteByFolder(_ context.Context, folderID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, file := range r.files {
		if file.FolderID != nil && *file.FolderID == folderID {
			delete(r.files, id)
		}
	}
	return nil
}

type fakePermissionRepo struct {
	mu     sync.Mutex
	grants map[string]*media.FolderPermission // keyed folderID + "/" + userID
	nextID int
}

func newFakePermissionRepo() *fakePermissionRepo {
	return &fakePermissionRepo{grants: make(map[string]*media.FolderPermission)}
}

func grantKey(folderID, userID string) string {
	return folderID + "/" + userID
}

func (r *fakePermissionRepo) GetByFolderAndUser(_ context.Context, folderID, userID string) (*media.FolderPermission, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	grant, ok := r.grants[grantKey(folderID, userID)]
	if !ok {
		return nil, nil
	}
	copied := *grant
	return &copied, nil
}

func (r *fakePermissionRepo) Upsert(_ context.Context, permission *media.FolderPermission) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := grantKey(permission.FolderID, permission.UserID)
	if existing, ok := r.grants[key]; ok {
		permission.ID = existing.ID
		permission.GrantedAt = existing.GrantedAt
	} else {
		r.nextID++
		permission.ID = fmt.Sprintf("grant-%d", r.nextID)
		permission.GrantedAt = time.Now()
	}

	stored := *permission
	r.grants[key] = &stored
	return nil
}

func (r *fakePermissionRepo) Delete(_ context.Context, folderID, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.grants, grantKey(folderID, userID))
	return nil
}

func (r *fakePermissionRepo) ListByFolder(_ context.Context, folderID string) ([]media.FolderPermission, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var grants []media.FolderPermission
	for _, grant := range r.grants {
		if grant.FolderID == folderID {
			grants = append(grants, *grant)
		}
	}
	return grants, nil
}

func (r *fakePermissionRepo) ListByUser(_ context.Context, userID string) ([]media.FolderPermission, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var grants []media.FolderPermission
	for _, grant := range r.grants {
		if grant.UserID == userID {
			grants = append(grants, *grant)
		}
	}
	return grants, nil
}

func (r *fakePermissionRepo) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var removed int64
	for key, grant := range r.grants {
		if grant.IsExpired(now) {
			delete(r.grants, key)
			removed++
		}
	}
	return removed, nil
}

type fakeShareRepo struct {
	mu     sync.Mutex
	shares map[string]*media.MediaShare // keyed by token
	nextID int
}

func newFakeShareRepo() *fakeShareRepo {
	return &fakeShareRepo{shares: make(map[string]*media.MediaShare)}
}

func (r *fakeShareRepo) Create(_ context.Context, share *media.MediaShare) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.shares[share.Token]; ok {
		return &domain.ConflictError{Message: "share token collision", ResourceType: "share"}
	}

	r.nextID++
	share.ID = fmt.Sprintf("share-%d", r.nextID)
	share.CreatedAt = time.Now()

	stored := *share
	r.shares[share.Token] = &stored
	return nil
}

func (r *fakeShareRepo) GetByToken(_ context.Context, token string) (*media.MediaShare, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	share, ok := r.shares[token]
	if !ok {
		return nil, &domain.NotFoundError{Message: fmt.Sprintf("share %s not found", token)}
	}
	copied := *share
	return &copied, nil
}

func (r *fakeShareRepo) ExistsByToken(_ context.Context, token string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.shares[token]
	return ok, nil
}

func (r *fakeShareRepo) IncrementAccessCount(_ context.Context, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	share, ok := r.shares[token]
	if !ok {
		return &domain.NotFoundError{Message: fmt.Sprintf("share %s not found", token)}
	}
	share.AccessCount++
	return nil
}

func (r *fakeShareRepo) Delete(_ context.Context, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.shares, token)
	return nil
}

func (r *fakeShareRepo) ListByCreator(_ context.Context, userID string) ([]media.MediaShare, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var shares []media.MediaShare
	for _, share := range r.shares {
		if share.CreatedBy != nil && *share.CreatedBy == userID {
			shares = append(shares, *share)
		}
	}
	return shares, nil
}

func (r *fakeShareRepo) ListByFile(_ context.Context, fileID string) ([]media.MediaShare, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var shares []media.MediaShare
	for _, share := range r.shares {
		if share.FileID != nil && *share.FileID == fileID {
			shares = append(shares, *share)
		}
	}
	return shares, nil
}

func (r *fakeShareRepo) ListByFolder(_ context.Context, folderID string) ([]media.MediaShare, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var shares []media.MediaShare
	for _, share := range r.shares {
		if share.FolderID != nil && *share.FolderID == folderID {
			shares = append(shares, *share)
		}
	}
	return shares, nil
}

func (r *fakeShareRepo) DeleteTimeExpired(_ context.Context, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var removed int64
	for token, share := range r.shares {
		if share.ExpiresAt != nil && now.After(*share.ExpiresAt) {
			delete(r.shares, token)
			removed++
		}
	}
	return removed, nil
}

type fakeUserDirectory struct {
	users map[string]bool
}

func newFakeUserDirectory(userIDs ...string) *fakeUserDirectory {
	users := make(map[string]bool, len(userIDs))
	for _, id := range userIDs {
		users[id] = true
	}
	return &fakeUserDirectory{users: users}
}

func (d *fakeUserDirectory) Exists(_ context.Context, userID string) (bool, error) {
	return d.users[userID], nil
}

type fakeObjectStore struct {
	mu      sync.Mutex
	removed []string
	failOn  map[string]error
}

func newFakeObjectStore() *fakeObjectStore {
	return &fakeObjectStore{failOn: make(map[string]error)}
}

func (s *fakeObjectStore) Remove(_ context.Context, storagePath string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err, ok := s.failOn[storagePath]; ok {
		return err
	}
	s.removed = append(s.removed, storagePath)
	return nil
}

// fakeTxManager runs the function directly; the fakes have no transactions
// to coordinate.
type fakeTxManager struct{}

func (m *fakeTxManager) ExecTx(ctx context.Context, fn repositories.TxFn) error {
	return fn(ctx)
}

var _ repositories.TransactionManager = (*fakeTxManager)(nil)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fixture wires all media services over shared in-memory state
type fixture struct {
	folderRepo *fakeFolderRepo
	fileRepo   *fakeFileRepo
	permRepo   *fakePermissionRepo
	shareRepo  *fakeShareRepo
	userDir    *fakeUserDirectory
	objects    *fakeObjectStore
	cache      *TreeCache

	folders     mediaSvc.FolderService
	trees       mediaSvc.TreeService
	permissions mediaSvc.PermissionService
	shares      mediaSvc.ShareService
}

func newFixture(userIDs ...string) *fixture {
	f := &fixture{
		folderRepo: newFakeFolderRepo(),
		fileRepo:   newFakeFileRepo(),
		permRepo:   newFakePermissionRepo(),
		shareRepo:  newFakeShareRepo(),
		userDir:    newFakeUserDirectory(userIDs...),
		objects:    newFakeObjectStore(),
		cache:      NewTreeCache(),
	}

	logger := testLogger()
	txManager := &fakeTxManager{}

	f.folders = NewFolderService(f.folderRepo, f.fileRepo, f.userDir, f.objects, txManager, f.cache, logger)
	f.trees = NewTreeService(f.folderRepo, f.cache, logger)
	f.permissions = NewPermissionService(f.permRepo, f.folderRepo, f.userDir, logger)
	f.shares = NewShareService(f.shareRepo, f.fileRepo, f.folderRepo, logger)

	return f
}

func strPtr(s string) *string { return &s }
func intPtr(n int) *int       { return &n }
