package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ApplySchema creates the media tables if they do not exist. The folders
// table is indexed on (parent_id, sort_order) and unique on
// (parent_id, slug), with a separate partial unique index covering the
// root scope where parent_id is NULL.
func ApplySchema(ctx context.Context, pool *pgxpool.Pool, tables *TableNames) error {
	statements := []string{
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				id UUID PRIMARY KEY,
				display_name VARCHAR(100),
				created_at TIMESTAMPTZ NOT NULL DEFAULT now()
			)
		`, tables.Users),
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				id UUID PRIMARY KEY,
				name VARCHAR(100) NOT NULL,
				slug VARCHAR(100) NOT NULL,
				description TEXT,
				parent_id UUID REFERENCES %s(id),
				path VARCHAR(1000) NOT NULL UNIQUE,
				depth INT NOT NULL DEFAULT 0,
				sort_order INT NOT NULL DEFAULT 0,
				color VARCHAR(20) NOT NULL DEFAULT '#6366f1',
				icon VARCHAR(50) NOT NULL DEFAULT 'Folder',
				owner_id UUID,
				visibility VARCHAR(20) NOT NULL DEFAULT 'PRIVATE',
				file_count INT NOT NULL DEFAULT 0,
				total_size BIGINT NOT NULL DEFAULT 0,
				created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
				updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
			)
		`, tables.Folders, tables.Folders),
		fmt.Sprintf(`
			CREATE UNIQUE INDEX IF NOT EXISTS idx_%s_parent_slug
			ON %s (parent_id, slug) WHERE parent_id IS NOT NULL
		`, tables.Folders, tables.Folders),
		fmt.Sprintf(`
			CREATE UNIQUE INDEX IF NOT EXISTS idx_%s_root_slug
			ON %s (slug) WHERE parent_id IS NULL
		`, tables.Folders, tables.Folders),
		fmt.Sprintf(`
			CREATE INDEX IF NOT EXISTS idx_%s_parent_sort
			ON %s (parent_id, sort_order)
		`, tables.Folders, tables.Folders),
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				id UUID PRIMARY KEY,
				folder_id UUID REFERENCES %s(id),
				file_name VARCHAR(255) NOT NULL,
				storage_path VARCHAR(1000) NOT NULL,
				file_size BIGINT NOT NULL DEFAULT 0,
				created_at TIMESTAMPTZ NOT NULL DEFAULT now()
			)
		`, tables.Files, tables.Folders),
		fmt.Sprintf(`
			CREATE INDEX IF NOT EXISTS idx_%s_folder
			ON %s (folder_id)
		`, tables.Files, tables.Files),
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				id UUID PRIMARY KEY,
				folder_id UUID NOT NULL REFERENCES %s(id) ON DELETE CASCADE,
				user_id UUID NOT NULL,
				permission_level VARCHAR(20) NOT NULL,
				granted_by UUID,
				granted_at TIMESTAMPTZ NOT NULL DEFAULT now(),
				expires_at TIMESTAMPTZ,
				UNIQUE (folder_id, user_id)
			)
		`, tables.Permissions, tables.Folders),
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				id UUID PRIMARY KEY,
				share_token VARCHAR(64) NOT NULL UNIQUE,
				media_file_id UUID REFERENCES %s(id) ON DELETE CASCADE,
				folder_id UUID REFERENCES %s(id) ON DELETE CASCADE,
				share_type VARCHAR(20) NOT NULL,
				access_type VARCHAR(20) NOT NULL DEFAULT 'VIEW',
				created_by UUID,
				created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
				expires_at TIMESTAMPTZ,
				access_count INT NOT NULL DEFAULT 0,
				max_access_count INT,
				password_hash VARCHAR(255),
				CHECK ((media_file_id IS NULL) <> (folder_id IS NULL))
			)
		`, tables.Shares, tables.Files, tables.Folders),
	}

	for _, stmt := range statements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}

	return nil
}

// EnsureRootFolder seeds the reserved root folder (slug "root", depth 0)
// if it does not exist. The reserved root can be neither deleted nor
// moved.
func EnsureRootFolder(ctx context.Context, pool *pgxpool.Pool, tables *TableNames) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, name, slug, path, depth, visibility, created_at, updated_at)
		VALUES ($1, 'Root', 'root', '/root', 0, 'PUBLIC', $2, $2)
		ON CONFLICT DO NOTHING
	`, tables.Folders)

	if _, err := pool.Exec(ctx, query, uuid.NewString(), time.Now()); err != nil {
		return fmt.Errorf("seed root folder: %w", err)
	}

	return nil
}
