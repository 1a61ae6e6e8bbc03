package simplecms

import (
	"time"

	"github.com/google/uuid"
)

// ContentStatus is the domain type for content lifecycle states.
type ContentStatus string

// Content status constants (typed).
const (
	ContentStatusNew         ContentStatus = "New"
	ContentStatusDraft       ContentStatus = "Draft"
	ContentStatusPublished   ContentStatus = "Published"
	ContentStatusUnpublished ContentStatus = "Unpublished"
	ContentStatusDeleted     ContentStatus = "Deleted"
)

// IsValid returns true if the status is one of the known lifecycle states.
func (s ContentStatus) IsValid() bool {
	switch s {
	case ContentStatusNew, ContentStatusDraft, ContentStatusPublished,
		ContentStatusUnpublished, ContentStatusDeleted:
		return true
	}
	return false
}

// Content represents a content entry owned by a single user.
//
// Status is derived from completeness on every save and is never set directly
// by a caller. Slug is assigned once, on the first save that carries a title,
// and is immutable afterwards.
type Content struct {
	ID          uuid.UUID     `json:"id"`
	UserID      uuid.UUID     `json:"user_id"`
	Title       string        `json:"title,omitempty"`
	RichContent string        `json:"rich_content,omitempty"`
	AssetURL    string        `json:"asset_url,omitempty"`
	Slug        string        `json:"slug,omitempty"`
	CategoryID  *uuid.UUID    `json:"category_id,omitempty"`
	Category    *Category     `json:"category,omitempty"`
	Tags        []Tag         `json:"tags,omitempty"`
	Status      ContentStatus `json:"status"`
	CreatedOn   time.Time     `json:"created_on"`
	UpdatedOn   time.Time     `json:"updated_on"`
}

// Category is an owned reference entity with a unique name per owner.
type Category struct {
	ID          uuid.UUID `json:"id"`
	UserID      uuid.UUID `json:"user_id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
}

// Tag is an owned reference entity with a unique name per owner.
type Tag struct {
	ID     uuid.UUID `json:"id"`
	UserID uuid.UUID `json:"user_id"`
	Name   string    `json:"name"`
}

// APIKey is a credential that resolves a public caller to a user scope.
type APIKey struct {
	ID          uuid.UUID `json:"id"`
	UserID      uuid.UUID `json:"user_id"`
	Key         string    `json:"key"`
	Description string    `json:"description,omitempty"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
}

// ContentDocument is the denormalized shape indexed per content record and
// cached for public reads. Category and tags are embedded so search filters
// never need the record store.
type ContentDocument struct {
	ID          uuid.UUID         `json:"id"`
	Title       string            `json:"title,omitempty"`
	RichContent string            `json:"rich_content,omitempty"`
	AssetURL    string            `json:"asset_url,omitempty"`
	Slug        string            `json:"slug,omitempty"`
	Status      ContentStatus     `json:"status"`
	UserID      uuid.UUID         `json:"user_id"`
	CategoryID  *uuid.UUID        `json:"category_id,omitempty"`
	Category    *CategoryDocument `json:"category,omitempty"`
	Tags        []TagDocument     `json:"tags,omitempty"`
	CreatedOn   time.Time         `json:"created_on"`
	UpdatedOn   time.Time         `json:"updated_on"`
}

// CategoryDocument is the denormalized category embedded in a ContentDocument.
type CategoryDocument struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
}

// TagDocument is the denormalized tag embedded in a ContentDocument.
type TagDocument struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// NewContentDocument builds the indexable document for a content record.
func NewContentDocument(c *Content) ContentDocument {
	doc := ContentDocument{
		ID:          c.ID,
		Title:       c.Title,
		RichContent: c.RichContent,
		AssetURL:    c.AssetURL,
		Slug:        c.Slug,
		Status:      c.Status,
		UserID:      c.UserID,
		CategoryID:  c.CategoryID,
		CreatedOn:   c.CreatedOn,
		UpdatedOn:   c.UpdatedOn,
	}
	if c.Category != nil {
		doc.Category = &CategoryDocument{
			ID:          c.Category.ID,
			Name:        c.Category.Name,
			Description: c.Category.Description,
		}
	}
	for _, t := range c.Tags {
		doc.Tags = append(doc.Tags, TagDocument{ID: t.ID, Name: t.Name})
	}
	return doc
}

// Content reconstructs a content record from an indexed document.
func (d ContentDocument) Content() *Content {
	c := &Content{
		ID:          d.ID,
		UserID:      d.UserID,
		Title:       d.Title,
		RichContent: d.RichContent,
		AssetURL:    d.AssetURL,
		Slug:        d.Slug,
		CategoryID:  d.CategoryID,
		Status:      d.Status,
		CreatedOn:   d.CreatedOn,
		UpdatedOn:   d.UpdatedOn,
	}
	if d.Category != nil {
		c.Category = &Category{
			ID:          d.Category.ID,
			UserID:      d.UserID,
			Name:        d.Category.Name,
			Description: d.Category.Description,
		}
	}
	for _, t := range d.Tags {
		c.Tags = append(c.Tags, Tag{ID: t.ID, UserID: d.UserID, Name: t.Name})
	}
	return c
}

// ContentFilter defines filtering options for listing content from the record
// store. A nil Status means any non-deleted status; deleted records are always
// excluded.
type ContentFilter struct {
	UserID   *uuid.UUID
	Query    string
	Tag      string
	Category string
	Status   *ContentStatus
	FromDate *time.Time
	ToDate   *time.Time
	Page     int
	PageSize int
}

// SearchQuery defines filtering options for the search index. Semantics match
// ContentFilter except Query is a fuzzy multi-field match instead of a
// substring match.
type SearchQuery struct {
	UserID   *uuid.UUID
	Query    string
	Tag      string
	Category string
	Status   *ContentStatus
	FromDate *time.Time
	ToDate   *time.Time
	Page     int
	PageSize int
}
