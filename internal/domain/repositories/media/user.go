package media

import "context"

// UserDirectory resolves user identity for ownership and grant references.
// The user store itself belongs to the surrounding CMS.
type UserDirectory interface {
	// Exists reports whether a user with the given ID exists
	Exists(ctx context.Context, userID string) (bool, error)
}
