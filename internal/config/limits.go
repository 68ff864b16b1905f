package config

const (
	// MaxFolderNameLength is the maximum length for folder display names.
	// Limited to 100 to fit in PostgreSQL VARCHAR(100) and provide
	// reasonable UX (names should be short and descriptive).
	MaxFolderNameLength = 100

	// MaxFolderDepth is the maximum nesting depth of the folder tree.
	// Root-level folders sit at depth 0. Deeper hierarchies indicate an
	// anti-pattern and blow up cascade cost.
	MaxFolderDepth = 10

	// MaxFolderPathLength is the maximum length for materialized paths.
	// Eleven levels of 100-character slugs fit comfortably.
	MaxFolderPathLength = 1000

	// MaxSlugAttempts bounds the counter search when a slug uniqueness
	// race is lost repeatedly; beyond this the Conflict surfaces.
	MaxSlugAttempts = 100

	// MaxTokenAttempts bounds the share token collision loop. UUID
	// collisions are effectively impossible; the bound exists so a broken
	// random source cannot spin forever.
	MaxTokenAttempts = 10
)
