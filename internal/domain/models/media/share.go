package media

import (
	"time"
)

// ShareType distinguishes file shares from folder (subtree) shares.
type ShareType string

const (
	ShareFile   ShareType = "FILE"
	ShareFolder ShareType = "FOLDER"
)

// AccessType is what the bearer of a share token may do with the target.
type AccessType string

const (
	AccessView     AccessType = "VIEW"
	AccessDownload AccessType = "DOWNLOAD"
)

// Valid reports whether a is a known access type.
func (a AccessType) Valid() bool {
	return a == AccessView || a == AccessDownload
}

// MediaShare is a public bearer grant on a single file or folder subtree.
// Invariant: exactly one of FileID/FolderID is set.
type MediaShare struct {
	ID             string     `json:"id" db:"id"`
	Token          string     `json:"token" db:"share_token"`
	FileID         *string    `json:"file_id,omitempty" db:"media_file_id"`
	FolderID       *string    `json:"folder_id,omitempty" db:"folder_id"`
	ShareType      ShareType  `json:"share_type" db:"share_type"`
	AccessType     AccessType `json:"access_type" db:"access_type"`
	CreatedBy      *string    `json:"created_by,omitempty" db:"created_by"`
	CreatedAt      time.Time  `json:"created_at" db:"created_at"`
	ExpiresAt      *time.Time `json:"expires_at,omitempty" db:"expires_at"`             // nil = never expires
	AccessCount    int        `json:"access_count" db:"access_count"`                   // monotonic
	MaxAccessCount *int       `json:"max_access_count,omitempty" db:"max_access_count"` // nil = unlimited
	PasswordHash   *string    `json:"-" db:"password_hash"`
}

// IsExpired reports whether the share is inert at the given instant,
// either because its expiry time has passed or because its access budget
// is exhausted.
func (s *MediaShare) IsExpired(now time.Time) bool {
	if s.ExpiresAt != nil && now.After(*s.ExpiresAt) {
		return true
	}
	return s.MaxAccessCount != nil && s.AccessCount >= *s.MaxAccessCount
}
