package shortcode

import (
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// GeneratedLength is the length of server-generated short codes.
const GeneratedLength = 8

var (
	codeRe = regexp.MustCompile(`^[A-Za-z0-9_-]{3,20}$`)
	slugRe = regexp.MustCompile(`^[a-z0-9-]{3,50}$`)
)

// ValidCode reports whether code is an acceptable short link identifier:
// 3-20 characters of letters, digits, hyphens and underscores.
func ValidCode(code string) bool {
	return codeRe.MatchString(code)
}

// NormalizeSlug lowercases and trims a candidate portal slug. Callers must
// normalize before validating, matching how slugs are stored.
func NormalizeSlug(slug string) string {
	return strings.ToLower(strings.TrimSpace(slug))
}

// ValidSlug reports whether slug is an acceptable portal identifier:
// 3-50 characters of lowercase letters, digits and hyphens.
func ValidSlug(slug string) bool {
	return slugRe.MatchString(slug)
}

// Generate returns a random 8-character code. The value is a candidate only:
// uniqueness is decided by the store's unique constraint at insert time, and
// callers retry with a fresh code on conflict.
func Generate() string {
	return uuid.NewString()[:GeneratedLength]
}
