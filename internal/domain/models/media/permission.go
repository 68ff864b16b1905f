package media

import (
	"time"
)

// PermissionLevel is a closed, totally ordered set of folder access levels.
type PermissionLevel string

const (
	LevelView   PermissionLevel = "VIEW"
	LevelUpload PermissionLevel = "UPLOAD"
	LevelEdit   PermissionLevel = "EDIT"
	LevelDelete PermissionLevel = "DELETE"
	LevelAdmin  PermissionLevel = "ADMIN"
)

// levelRanks expresses the ordering VIEW < UPLOAD < EDIT < DELETE < ADMIN
// as explicit integer ranks rather than declaration order.
var levelRanks = map[PermissionLevel]int{
	LevelView:   1,
	LevelUpload: 2,
	LevelEdit:   3,
	LevelDelete: 4,
	LevelAdmin:  5,
}

// Valid reports whether l is a known permission level.
func (l PermissionLevel) Valid() bool {
	_, ok := levelRanks[l]
	return ok
}

// Rank returns the integer rank of the level (0 for unknown levels).
func (l PermissionLevel) Rank() int {
	return levelRanks[l]
}

// Satisfies reports whether a grant of l covers the required level.
func (l PermissionLevel) Satisfies(required PermissionLevel) bool {
	return l.Valid() && required.Valid() && l.Rank() >= required.Rank()
}

// FolderPermission is an explicit, per-folder, time-bounded grant.
// Grants do not inherit across the tree; at most one active grant exists
// per (folder, user) pair.
type FolderPermission struct {
	ID        string          `json:"id" db:"id"`
	FolderID  string          `json:"folder_id" db:"folder_id"`
	UserID    string          `json:"user_id" db:"user_id"`
	Level     PermissionLevel `json:"level" db:"permission_level"`
	GrantedBy *string         `json:"granted_by,omitempty" db:"granted_by"`
	GrantedAt time.Time       `json:"granted_at" db:"granted_at"`
	ExpiresAt *time.Time      `json:"expires_at,omitempty" db:"expires_at"` // nil = never expires
}

// IsExpired reports whether the grant is inert at the given instant.
// Expired grants may remain persisted until cleanup; reads treat them as
// absent.
func (p *FolderPermission) IsExpired(now time.Time) bool {
	return p.ExpiresAt != nil && now.After(*p.ExpiresAt)
}
