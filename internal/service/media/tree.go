package media

import (
	"context"
	"log/slog"
	"sort"

	"mediavault/internal/domain/models/media"
	mediaRepo "mediavault/internal/domain/repositories/media"
	mediaSvc "mediavault/internal/domain/services/media"
)

// BuildTree reconstructs parent->children edges from a flat folder listing
// and returns the root-level nodes with nested children, ordered by sort
// key at every level. Pure function, no I/O; trees render without N
// recursive queries.
func BuildTree(allFolders []media.Folder) []*media.FolderTreeNode {
	if len(allFolders) == 0 {
		return []*media.FolderTreeNode{}
	}

	// First pass: create all nodes (arena+index, no owning references)
	nodeMap := make(map[string]*media.FolderTreeNode, len(allFolders))
	for _, folder := range allFolders {
		nodeMap[folder.ID] = &media.FolderTreeNode{
			Folder:   folder,
			Children: []*media.FolderTreeNode{},
		}
	}

	// Second pass: connect children to parents. A child whose parent is
	// missing from the listing (per-user views elide invisible ancestors)
	// surfaces at the root level rather than vanishing.
	roots := make([]*media.FolderTreeNode, 0)
	for _, folder := range allFolders {
		node := nodeMap[folder.ID]
		if folder.ParentID == nil {
			roots = append(roots, node)
			continue
		}
		if parent, ok := nodeMap[*folder.ParentID]; ok {
			parent.Children = append(parent.Children, node)
		} else {
			roots = append(roots, node)
		}
	}

	// Third pass: order every level by sort key
	sortNodes(roots)
	for _, node := range nodeMap {
		sortNodes(node.Children)
	}

	return roots
}

func sortNodes(nodes []*media.FolderTreeNode) {
	sort.SliceStable(nodes, func(i, j int) bool {
		if nodes[i].SortOrder != nodes[j].SortOrder {
			return nodes[i].SortOrder < nodes[j].SortOrder
		}
		return nodes[i].Name < nodes[j].Name
	})
}

// treeService implements the TreeService interface
type treeService struct {
	folderRepo mediaRepo.FolderRepository
	cache      *TreeCache
	logger     *slog.Logger
}

// NewTreeService creates a new tree service
func NewTreeService(folderRepo mediaRepo.FolderRepository, cache *TreeCache, logger *slog.Logger) mediaSvc.TreeService {
	return &treeService{
		folderRepo: folderRepo,
		cache:      cache,
		logger:     logger,
	}
}

// GetTree returns the full forest of root-level folders with nested children
func (s *treeService) GetTree(ctx context.Context) ([]*media.FolderTreeNode, error) {
	const key = "all"
	if forest, ok := s.cache.Get(key); ok {
		return forest, nil
	}

	allFolders, err := s.folderRepo.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	forest := BuildTree(allFolders)
	s.cache.Put(key, forest)

	s.logger.Debug("folder tree built", "folder_count", len(allFolders))
	return forest, nil
}

// GetTreeForUser returns the forest restricted to folders visible to the user
func (s *treeService) GetTreeForUser(ctx context.Context, userID string) ([]*media.FolderTreeNode, error) {
	key := "user:" + userID
	if forest, ok := s.cache.Get(key); ok {
		return forest, nil
	}

	visible, err := s.folderRepo.GetAllVisibleToUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	forest := BuildTree(visible)
	s.cache.Put(key, forest)

	s.logger.Debug("user folder tree built", "user_id", userID, "folder_count", len(visible))
	return forest, nil
}
