package media

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"mediavault/internal/config"
	"mediavault/internal/domain"
	mediaRepo "mediavault/internal/domain/repositories/media"
)

const fallbackSlug = "folder"

var (
	whitespacePattern = regexp.MustCompile(`\s+`)
	nonWordPattern    = regexp.MustCompile(`[^\w-]`)
	hyphenRunPattern  = regexp.MustCompile(`-+`)
)

// slugify transliterates a display name to a URL-safe lowercase token:
// whitespace becomes hyphens, diacritics are stripped, everything outside
// [\w-] is dropped, hyphen runs collapse, edge hyphens are trimmed.
// Empty results fall back to a fixed placeholder.
func slugify(input string) string {
	s := whitespacePattern.ReplaceAllString(input, "-")
	s = stripDiacritics(s)
	s = nonWordPattern.ReplaceAllString(s, "")
	s = strings.ToLower(s)
	s = hyphenRunPattern.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")

	if s == "" {
		return fallbackSlug
	}
	return s
}

// stripDiacritics decomposes to NFD, drops combining marks, recomposes
func stripDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// generateUniqueSlug derives a slug from the name and disambiguates it
// with -1, -2, ... counters until it is free within the target parent
// scope (root scope when parentID is nil). keepSlug, when non-empty, is
// treated as already belonging to the caller (a folder keeping its own
// slug on rename).
func generateUniqueSlug(ctx context.Context, repo mediaRepo.FolderRepository, name string, parentID *string, keepSlug string) (string, error) {
	base := slugify(name)
	slug := base

	for counter := 1; counter <= config.MaxSlugAttempts; counter++ {
		if slug == keepSlug {
			return slug, nil
		}

		exists, err := repo.ExistsBySlugAndParent(ctx, slug, parentID)
		if err != nil {
			return "", err
		}
		if !exists {
			return slug, nil
		}

		slug = fmt.Sprintf("%s-%d", base, counter)
	}

	return "", fmt.Errorf("slug %q: no free counter after %d attempts: %w", base, config.MaxSlugAttempts, domain.ErrConflict)
}
