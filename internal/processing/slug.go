package processing

import (
	"strings"

	"github.com/google/uuid"
)

const maxSlugBaseLength = 60

// Slugify derives a URL-safe slug from a human-readable title: lowercase,
// non-alphanumerics stripped, whitespace collapsed to single hyphens, the
// base truncated, and an 8-character uniqueness token appended so two
// videos with the same title never collide.
func Slugify(title string) string {
	lowered := strings.ToLower(strings.TrimSpace(title))

	var b strings.Builder
	for _, r := range lowered {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ', r == '\t', r == '-', r == '_':
			b.WriteRune(' ')
		}
	}

	base := strings.Join(strings.Fields(b.String()), "-")
	if len(base) > maxSlugBaseLength {
		base = strings.Trim(base[:maxSlugBaseLength], "-")
	}

	token := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	if base == "" {
		return token
	}
	return base + "-" + token
}
