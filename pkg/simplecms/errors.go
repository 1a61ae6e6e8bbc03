package simplecms

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Error types
var (
	// ErrContentNotFound indicates content was not found or is not visible to
	// the caller's scope
	ErrContentNotFound = errors.New("content not found")

	// ErrCategoryNotFound indicates a category was not found
	ErrCategoryNotFound = errors.New("category not found")

	// ErrTagNotFound indicates a tag was not found
	ErrTagNotFound = errors.New("tag not found")

	// ErrAPIKeyNotFound indicates an API key was not found
	ErrAPIKeyNotFound = errors.New("api key not found")

	// ErrConflict indicates a title or slug collision within the same owner's
	// non-deleted content
	ErrConflict = errors.New("title or slug already in use")

	// ErrInvalidAPIKey indicates a public credential does not resolve to an
	// active key
	ErrInvalidAPIKey = errors.New("invalid api key")

	// ErrInvalidContentStatus indicates an invalid content status
	ErrInvalidContentStatus = errors.New("invalid content status")
)

// ContentError represents an error related to content operations
type ContentError struct {
	ContentID uuid.UUID
	Op        string
	Err       error
}

func (e *ContentError) Error() string {
	return fmt.Sprintf("content operation %s failed for content %s: %v", e.Op, e.ContentID, e.Err)
}

func (e *ContentError) Unwrap() error {
	return e.Err
}
