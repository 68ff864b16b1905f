package media

import "context"

// ObjectStore is the physical side of the FileStore collaborator. The
// core only removes objects during cascade delete; failures there must
// not block metadata removal.
type ObjectStore interface {
	// Remove deletes the physical object at the given storage path
	Remove(ctx context.Context, storagePath string) error
}
