package media

import (
	"sync"

	"mediavault/internal/domain/models/media"
)

// TreeCache caches rendered folder forests keyed by tree scope ("all" or
// a per-user key). Staleness here is a correctness bug, not a performance
// concern: invalidation is triggered synchronously by every structural
// mutation, never by time.
type TreeCache struct {
	mu      sync.RWMutex
	forests map[string][]*media.FolderTreeNode
}

// NewTreeCache creates an empty tree cache
func NewTreeCache() *TreeCache {
	return &TreeCache{
		forests: make(map[string][]*media.FolderTreeNode),
	}
}

// Get returns the cached forest for the scope key, if present
func (c *TreeCache) Get(key string) ([]*media.FolderTreeNode, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	forest, ok := c.forests[key]
	return forest, ok
}

// Put stores a forest under the scope key
func (c *TreeCache) Put(key string, forest []*media.FolderTreeNode) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.forests[key] = forest
}

// Invalidate drops every cached forest. Called after each structural
// mutation commits; per-key invalidation is pointless because any
// mutation can change every scope's view.
func (c *TreeCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.forests = make(map[string][]*media.FolderTreeNode)
}
