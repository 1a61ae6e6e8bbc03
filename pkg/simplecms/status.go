package simplecms

import "strings"

// isComplete reports whether a content record is eligible for Published:
// title, body, category and asset URL all present.
func isComplete(c *Content) bool {
	return strings.TrimSpace(c.Title) != "" &&
		strings.TrimSpace(c.RichContent) != "" &&
		c.CategoryID != nil &&
		strings.TrimSpace(c.AssetURL) != ""
}

// recomputeStatus derives Draft/Published from completeness. Unpublished and
// Deleted are preserved: a save or asset update never silently revives a
// record the owner took down. refsResolved is false when a referenced
// category or tag could not be resolved, which blocks Published regardless of
// field completeness.
func recomputeStatus(c *Content, refsResolved bool) {
	if c.Status == ContentStatusDeleted || c.Status == ContentStatusUnpublished {
		return
	}

	if refsResolved && isComplete(c) {
		c.Status = ContentStatusPublished
	} else {
		c.Status = ContentStatusDraft
	}
}
