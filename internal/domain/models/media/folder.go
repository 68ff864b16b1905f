package media

import (
	"time"
)

// Visibility controls who can see a folder without an explicit grant.
type Visibility string

const (
	VisibilityPrivate Visibility = "PRIVATE"
	VisibilityTeam    Visibility = "TEAM"
	VisibilityPublic  Visibility = "PUBLIC"
)

// Valid reports whether v is one of the closed set of visibility values.
func (v Visibility) Valid() bool {
	switch v {
	case VisibilityPrivate, VisibilityTeam, VisibilityPublic:
		return true
	}
	return false
}

// ReservedRootSlug is the slug of the seeded root folder, which can be
// neither deleted nor moved.
const ReservedRootSlug = "root"

// Folder is a node in the media folder tree. Parent/child edges, path and
// depth are owned exclusively by the folder service; nothing else mutates
// them.
type Folder struct {
	ID          string     `json:"id" db:"id"`
	Name        string     `json:"name" db:"name"`
	Slug        string     `json:"slug" db:"slug"`
	Description *string    `json:"description,omitempty" db:"description"`
	ParentID    *string    `json:"parent_id" db:"parent_id"` // NULL = root level
	Path        string     `json:"path" db:"path"`           // materialized: "/" + slug chained through ancestors
	Depth       int        `json:"depth" db:"depth"`         // 0 at root level
	SortOrder   int        `json:"sort_order" db:"sort_order"`
	Color       string     `json:"color,omitempty" db:"color"`
	Icon        string     `json:"icon,omitempty" db:"icon"`
	OwnerID     *string    `json:"owner_id,omitempty" db:"owner_id"`
	Visibility  Visibility `json:"visibility" db:"visibility"`
	FileCount   int        `json:"file_count" db:"file_count"`   // cached aggregate
	TotalSize   int64      `json:"total_size" db:"total_size"`   // cached aggregate, bytes
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
}

// IsRoot reports whether the folder sits at the top level of the tree.
func (f *Folder) IsRoot() bool {
	return f.ParentID == nil && f.Depth == 0
}

// IsReservedRoot reports whether this is the seeded root folder.
func (f *Folder) IsReservedRoot() bool {
	return f.IsRoot() && f.Slug == ReservedRootSlug
}

// UpdatePath recomputes the materialized path and depth from the given
// parent (nil for root level). Invariant: path is always the slug chain
// from root to this node and depth equals the ancestor count.
func (f *Folder) UpdatePath(parent *Folder) {
	if parent == nil {
		f.Path = "/" + f.Slug
		f.Depth = 0
		return
	}
	f.Path = parent.Path + "/" + f.Slug
	f.Depth = parent.Depth + 1
}

// File is the metadata row the folder tree keeps per stored object.
// Physical bytes live behind the object store collaborator.
type File struct {
	ID          string    `json:"id" db:"id"`
	FolderID    *string   `json:"folder_id" db:"folder_id"`
	FileName    string    `json:"file_name" db:"file_name"`
	StoragePath string    `json:"storage_path" db:"storage_path"`
	FileSize    int64     `json:"file_size" db:"file_size"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}
