package simplecms

import (
	"context"

	"github.com/google/uuid"
)

// Service defines the main interface for the simple-cms library
type Service interface {
	// Content lifecycle operations
	EnsureDraft(ctx context.Context, userID uuid.UUID) (uuid.UUID, error)
	GetContent(ctx context.Context, userID, contentID uuid.UUID) (*Content, error)
	SaveContent(ctx context.Context, userID, contentID uuid.UUID, req SaveContentRequest) (*Content, error)
	UnpublishContent(ctx context.Context, userID, contentID uuid.UUID) error
	DeleteContent(ctx context.Context, userID, contentID uuid.UUID) error
	SetAssetURL(ctx context.Context, userID, contentID uuid.UUID, assetURL string) error
	ApplyAssetURL(ctx context.Context, contentID uuid.UUID, assetURL string) error

	// Query operations
	FilterContents(ctx context.Context, userID uuid.UUID, req FilterContentsRequest) ([]*Content, error)
	PublicContents(ctx context.Context, req PublicContentsRequest) ([]*Content, error)
	PublicContentBySlug(ctx context.Context, slug, apiKey string) (*Content, error)

	// Category operations
	CreateCategory(ctx context.Context, req CreateCategoryRequest) (*Category, error)
	GetCategory(ctx context.Context, userID, id uuid.UUID) (*Category, error)
	ListCategories(ctx context.Context, userID uuid.UUID) ([]*Category, error)
	UpdateCategory(ctx context.Context, req UpdateCategoryRequest) error
	DeleteCategory(ctx context.Context, userID, id uuid.UUID) error

	// Tag operations
	CreateTag(ctx context.Context, req CreateTagRequest) (*Tag, error)
	GetTag(ctx context.Context, userID, id uuid.UUID) (*Tag, error)
	ListTags(ctx context.Context, userID uuid.UUID) ([]*Tag, error)
	UpdateTag(ctx context.Context, req UpdateTagRequest) error
	DeleteTag(ctx context.Context, userID, id uuid.UUID) error

	// API key operations
	GenerateAPIKey(ctx context.Context, userID uuid.UUID, description string) (*APIKey, error)
	RevokeAPIKey(ctx context.Context, userID, keyID uuid.UUID) error
	ListAPIKeys(ctx context.Context, userID uuid.UUID) ([]*APIKey, error)
	ValidateAPIKey(ctx context.Context, key string) (*APIKey, error)
}
