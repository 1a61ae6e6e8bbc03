package simplecms

import (
	"regexp"
	"strings"
)

var (
	slugWhitespace = regexp.MustCompile(`\s+`)
	slugInvalid    = regexp.MustCompile(`[^a-z0-9-]`)
)

// Slugify derives a slug from a title: trim, lower-case, collapse whitespace
// runs to single dashes, strip everything outside [a-z0-9-], prefix with "/".
// A title with no usable characters yields "/".
func Slugify(title string) string {
	s := strings.ToLower(strings.TrimSpace(title))
	s = slugWhitespace.ReplaceAllString(s, "-")
	s = slugInvalid.ReplaceAllString(s, "")
	return "/" + s
}
