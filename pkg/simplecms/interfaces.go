package simplecms

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines the interface for content, category, tag and API key
// persistence. It is the single source of truth; the search index and cache
// are projections derived from it.
type Repository interface {
	// Content operations. Reads eager-load the related category and tags and
	// never return tombstoned (deleted) records.
	CreateContent(ctx context.Context, content *Content) error
	GetContent(ctx context.Context, userID, id uuid.UUID) (*Content, error)
	GetContentByID(ctx context.Context, id uuid.UUID) (*Content, error)
	GetPublishedBySlug(ctx context.Context, slug string) (*Content, error)
	FindNewContent(ctx context.Context, userID uuid.UUID) (*Content, error)
	UpdateContent(ctx context.Context, content *Content) error
	ListContents(ctx context.Context, filter ContentFilter) ([]*Content, error)

	// HasTitleOrSlugConflict reports whether another non-deleted record owned
	// by userID already holds the given title or slug. An empty slug only
	// probes the title.
	HasTitleOrSlugConflict(ctx context.Context, userID, excludeID uuid.UUID, title, slug string) (bool, error)

	// Category operations
	CreateCategory(ctx context.Context, category *Category) error
	GetCategory(ctx context.Context, id uuid.UUID) (*Category, error)
	GetCategoryByName(ctx context.Context, userID uuid.UUID, name string) (*Category, error)
	ListCategories(ctx context.Context, userID uuid.UUID) ([]*Category, error)
	UpdateCategory(ctx context.Context, category *Category) error
	DeleteCategory(ctx context.Context, userID, id uuid.UUID) error

	// Tag operations
	CreateTag(ctx context.Context, tag *Tag) error
	GetTag(ctx context.Context, id uuid.UUID) (*Tag, error)
	GetTagByName(ctx context.Context, userID uuid.UUID, name string) (*Tag, error)
	ListTags(ctx context.Context, userID uuid.UUID) ([]*Tag, error)
	UpdateTag(ctx context.Context, tag *Tag) error
	DeleteTag(ctx context.Context, userID, id uuid.UUID) error

	// API key operations
	CreateAPIKey(ctx context.Context, key *APIKey) error
	GetActiveAPIKey(ctx context.Context, key string) (*APIKey, error)
	ListAPIKeys(ctx context.Context, userID uuid.UUID) ([]*APIKey, error)
	DeleteAPIKey(ctx context.Context, userID, id uuid.UUID) error
}

// SearchIndex defines the interface for the full-text search projection.
// All writes through it are best-effort from the caller's perspective.
type SearchIndex interface {
	// Index upserts the document for a content record, keyed by its id.
	Index(ctx context.Context, doc ContentDocument) error

	// Delete removes the document for a content record.
	Delete(ctx context.Context, id uuid.UUID) error

	// Search returns matching documents sorted by creation time descending.
	// Tombstoned records never match.
	Search(ctx context.Context, q SearchQuery) ([]ContentDocument, error)
}

// ContentCache defines the interface for the expiring public-read cache.
// Entries are keyed by slug and expire after the TTL fixed at construction.
type ContentCache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}

// EventSink defines the interface for lifecycle event handling. Sink failures
// are logged and never fail the triggering operation.
type EventSink interface {
	// ContentCreated is fired when an empty draft record is created
	ContentCreated(ctx context.Context, content *Content) error

	// ContentSaved is fired after a successful save
	ContentSaved(ctx context.Context, content *Content) error

	// ContentUnpublished is fired when content is unpublished
	ContentUnpublished(ctx context.Context, content *Content) error

	// ContentDeleted is fired when content is tombstoned
	ContentDeleted(ctx context.Context, contentID uuid.UUID) error

	// AssetURLUpdated is fired when an asset URL lands, on either path
	AssetURLUpdated(ctx context.Context, content *Content) error
}
