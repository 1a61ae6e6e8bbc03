package simplecms

import (
	"time"

	"github.com/google/uuid"
)

// Request/Response DTOs

// SaveContentRequest contains the mutable fields applied on a content save.
//
// Category may be referenced by id or by name. A by-name reference that does
// not resolve is created on the fly; a by-id reference that does not resolve
// degrades completeness instead of failing. Tags referenced by id degrade the
// same way; tags referenced by name must exist.
type SaveContentRequest struct {
	Title        string
	RichContent  string
	AssetURL     string
	CategoryID   *uuid.UUID
	CategoryName string
	TagIDs       []uuid.UUID
	TagNames     []string
}

// FilterContentsRequest contains parameters for owner-scoped filtered listing.
// Page is 1-based; a zero Page or PageSize falls back to defaults.
type FilterContentsRequest struct {
	Query    string
	Tag      string
	Category string
	Status   *ContentStatus
	FromDate *time.Time
	ToDate   *time.Time
	Page     int
	PageSize int
}

// PublicContentsRequest contains parameters for the public filtered listing.
// Status is always forced to Published. A valid APIKey narrows results to the
// key owner's content; an unknown key leaves the listing unscoped.
type PublicContentsRequest struct {
	Query    string
	Tag      string
	Category string
	FromDate *time.Time
	ToDate   *time.Time
	Page     int
	PageSize int
	APIKey   string
}

// CreateCategoryRequest contains parameters for creating a category
type CreateCategoryRequest struct {
	UserID      uuid.UUID
	Name        string
	Description string
}

// UpdateCategoryRequest contains parameters for updating a category
type UpdateCategoryRequest struct {
	UserID      uuid.UUID
	CategoryID  uuid.UUID
	Name        string
	Description string
}

// CreateTagRequest contains parameters for creating a tag
type CreateTagRequest struct {
	UserID uuid.UUID
	Name   string
}

// UpdateTagRequest contains parameters for updating a tag
type UpdateTagRequest struct {
	UserID uuid.UUID
	TagID  uuid.UUID
	Name   string
}
