package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/tendant/simple-cms/pkg/simplecms"
)

// Repository implements simplecms.Repository using in-memory storage
type Repository struct {
	mu         sync.RWMutex
	contents   map[uuid.UUID]*simplecms.Content
	categories map[uuid.UUID]*simplecms.Category
	tags       map[uuid.UUID]*simplecms.Tag
	apiKeys    map[uuid.UUID]*simplecms.APIKey
}

// New creates a new in-memory repository
func New() *Repository {
	return &Repository{
		contents:   make(map[uuid.UUID]*simplecms.Content),
		categories: make(map[uuid.UUID]*simplecms.Category),
		tags:       make(map[uuid.UUID]*simplecms.Tag),
		apiKeys:    make(map[uuid.UUID]*simplecms.APIKey),
	}
}

// copyContent returns a deep copy so callers cannot mutate stored state.
func copyContent(c *simplecms.Content) *simplecms.Content {
	contentCopy := *c
	if c.CategoryID != nil {
		id := *c.CategoryID
		contentCopy.CategoryID = &id
	}
	if c.Category != nil {
		categoryCopy := *c.Category
		contentCopy.Category = &categoryCopy
	}
	if c.Tags != nil {
		contentCopy.Tags = append([]simplecms.Tag(nil), c.Tags...)
	}
	return &contentCopy
}

// Content operations

func (r *Repository) CreateContent(ctx context.Context, content *simplecms.Content) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.hasConflictLocked(content.UserID, content.ID, content.Title, content.Slug) {
		return simplecms.ErrConflict
	}

	r.contents[content.ID] = copyContent(content)
	return nil
}

func (r *Repository) GetContent(ctx context.Context, userID, id uuid.UUID) (*simplecms.Content, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	content, exists := r.contents[id]
	if !exists || content.UserID != userID || content.Status == simplecms.ContentStatusDeleted {
		return nil, simplecms.ErrContentNotFound
	}
	return copyContent(content), nil
}

func (r *Repository) GetContentByID(ctx context.Context, id uuid.UUID) (*simplecms.Content, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	content, exists := r.contents[id]
	if !exists || content.Status == simplecms.ContentStatusDeleted {
		return nil, simplecms.ErrContentNotFound
	}
	return copyContent(content), nil
}

func (r *Repository) GetPublishedBySlug(ctx context.Context, slug string) (*simplecms.Content, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, content := range r.contents {
		if content.Slug == slug && content.Status == simplecms.ContentStatusPublished {
			return copyContent(content), nil
		}
	}
	return nil, simplecms.ErrContentNotFound
}

func (r *Repository) FindNewContent(ctx context.Context, userID uuid.UUID) (*simplecms.Content, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, content := range r.contents {
		if content.UserID == userID && content.Status == simplecms.ContentStatusNew {
			return copyContent(content), nil
		}
	}
	return nil, simplecms.ErrContentNotFound
}

func (r *Repository) UpdateContent(ctx context.Context, content *simplecms.Content) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.contents[content.ID]; !exists {
		return simplecms.ErrContentNotFound
	}
	if content.Status != simplecms.ContentStatusDeleted &&
		r.hasConflictLocked(content.UserID, content.ID, content.Title, content.Slug) {
		return simplecms.ErrConflict
	}

	r.contents[content.ID] = copyContent(content)
	return nil
}

// hasConflictLocked mirrors the store-level partial unique indexes: title and
// slug are unique among a single owner's non-deleted content.
func (r *Repository) hasConflictLocked(userID, excludeID uuid.UUID, title, slug string) bool {
	for _, other := range r.contents {
		if other.ID == excludeID || other.UserID != userID || other.Status == simplecms.ContentStatusDeleted {
			continue
		}
		if title != "" && other.Title == title {
			return true
		}
		if slug != "" && other.Slug == slug {
			return true
		}
	}
	return false
}

func (r *Repository) HasTitleOrSlugConflict(ctx context.Context, userID, excludeID uuid.UUID, title, slug string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.hasConflictLocked(userID, excludeID, title, slug), nil
}

func (r *Repository) ListContents(ctx context.Context, filter simplecms.ContentFilter) ([]*simplecms.Content, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*simplecms.Content
	for _, content := range r.contents {
		if content.Status == simplecms.ContentStatusDeleted {
			continue
		}
		if !matchesFilter(content, filter) {
			continue
		}
		result = append(result, copyContent(content))
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedOn.After(result[j].CreatedOn)
	})

	return paginate(result, filter.Page, filter.PageSize), nil
}

func matchesFilter(content *simplecms.Content, filter simplecms.ContentFilter) bool {
	if filter.UserID != nil && content.UserID != *filter.UserID {
		return false
	}
	if filter.Status != nil && content.Status != *filter.Status {
		return false
	}
	if filter.Query != "" &&
		!strings.Contains(content.Title, filter.Query) &&
		!strings.Contains(content.RichContent, filter.Query) {
		return false
	}
	if filter.Tag != "" {
		found := false
		for _, tag := range content.Tags {
			if tag.Name == filter.Tag {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if filter.Category != "" {
		if content.Category == nil || content.Category.Name != filter.Category {
			return false
		}
	}
	if filter.FromDate != nil && content.CreatedOn.Before(*filter.FromDate) {
		return false
	}
	if filter.ToDate != nil && content.CreatedOn.After(*filter.ToDate) {
		return false
	}
	return true
}

func paginate(contents []*simplecms.Content, page, pageSize int) []*simplecms.Content {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		return contents
	}
	offset := (page - 1) * pageSize
	if offset >= len(contents) {
		return []*simplecms.Content{}
	}
	end := offset + pageSize
	if end > len(contents) {
		end = len(contents)
	}
	return contents[offset:end]
}

// Category operations

func (r *Repository) CreateCategory(ctx context.Context, category *simplecms.Category) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, other := range r.categories {
		if other.UserID == category.UserID && other.Name == category.Name {
			return simplecms.ErrConflict
		}
	}

	categoryCopy := *category
	r.categories[category.ID] = &categoryCopy
	return nil
}

func (r *Repository) GetCategory(ctx context.Context, id uuid.UUID) (*simplecms.Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	category, exists := r.categories[id]
	if !exists {
		return nil, simplecms.ErrCategoryNotFound
	}
	categoryCopy := *category
	return &categoryCopy, nil
}

func (r *Repository) GetCategoryByName(ctx context.Context, userID uuid.UUID, name string) (*simplecms.Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, category := range r.categories {
		if category.UserID == userID && category.Name == name {
			categoryCopy := *category
			return &categoryCopy, nil
		}
	}
	return nil, simplecms.ErrCategoryNotFound
}

func (r *Repository) ListCategories(ctx context.Context, userID uuid.UUID) ([]*simplecms.Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*simplecms.Category
	for _, category := range r.categories {
		if category.UserID == userID {
			categoryCopy := *category
			result = append(result, &categoryCopy)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Name < result[j].Name
	})
	return result, nil
}

func (r *Repository) UpdateCategory(ctx context.Context, category *simplecms.Category) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.categories[category.ID]; !exists {
		return simplecms.ErrCategoryNotFound
	}
	for _, other := range r.categories {
		if other.ID != category.ID && other.UserID == category.UserID && other.Name == category.Name {
			return simplecms.ErrConflict
		}
	}

	categoryCopy := *category
	r.categories[category.ID] = &categoryCopy
	return nil
}

func (r *Repository) DeleteCategory(ctx context.Context, userID, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	category, exists := r.categories[id]
	if !exists || category.UserID != userID {
		return simplecms.ErrCategoryNotFound
	}
	delete(r.categories, id)

	// Detach from referencing content, like a relational ON DELETE SET NULL.
	for _, content := range r.contents {
		if content.CategoryID != nil && *content.CategoryID == id {
			content.CategoryID = nil
			content.Category = nil
		}
	}
	return nil
}

// Tag operations

func (r *Repository) CreateTag(ctx context.Context, tag *simplecms.Tag) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, other := range r.tags {
		if other.UserID == tag.UserID && other.Name == tag.Name {
			return simplecms.ErrConflict
		}
	}

	tagCopy := *tag
	r.tags[tag.ID] = &tagCopy
	return nil
}

func (r *Repository) GetTag(ctx context.Context, id uuid.UUID) (*simplecms.Tag, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tag, exists := r.tags[id]
	if !exists {
		return nil, simplecms.ErrTagNotFound
	}
	tagCopy := *tag
	return &tagCopy, nil
}

func (r *Repository) GetTagByName(ctx context.Context, userID uuid.UUID, name string) (*simplecms.Tag, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, tag := range r.tags {
		if tag.UserID == userID && tag.Name == name {
			tagCopy := *tag
			return &tagCopy, nil
		}
	}
	return nil, simplecms.ErrTagNotFound
}

func (r *Repository) ListTags(ctx context.Context, userID uuid.UUID) ([]*simplecms.Tag, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*simplecms.Tag
	for _, tag := range r.tags {
		if tag.UserID == userID {
			tagCopy := *tag
			result = append(result, &tagCopy)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Name < result[j].Name
	})
	return result, nil
}

func (r *Repository) UpdateTag(ctx context.Context, tag *simplecms.Tag) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tags[tag.ID]; !exists {
		return simplecms.ErrTagNotFound
	}
	for _, other := range r.tags {
		if other.ID != tag.ID && other.UserID == tag.UserID && other.Name == tag.Name {
			return simplecms.ErrConflict
		}
	}

	tagCopy := *tag
	r.tags[tag.ID] = &tagCopy
	return nil
}

func (r *Repository) DeleteTag(ctx context.Context, userID, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tag, exists := r.tags[id]
	if !exists || tag.UserID != userID {
		return simplecms.ErrTagNotFound
	}
	delete(r.tags, id)

	for _, content := range r.contents {
		for i, t := range content.Tags {
			if t.ID == id {
				content.Tags = append(content.Tags[:i], content.Tags[i+1:]...)
				break
			}
		}
	}
	return nil
}

// API key operations

func (r *Repository) CreateAPIKey(ctx context.Context, key *simplecms.APIKey) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	keyCopy := *key
	r.apiKeys[key.ID] = &keyCopy
	return nil
}

func (r *Repository) GetActiveAPIKey(ctx context.Context, key string) (*simplecms.APIKey, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, apiKey := range r.apiKeys {
		if apiKey.Key == key && apiKey.IsActive {
			keyCopy := *apiKey
			return &keyCopy, nil
		}
	}
	return nil, simplecms.ErrAPIKeyNotFound
}

func (r *Repository) ListAPIKeys(ctx context.Context, userID uuid.UUID) ([]*simplecms.APIKey, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*simplecms.APIKey
	for _, apiKey := range r.apiKeys {
		if apiKey.UserID == userID {
			keyCopy := *apiKey
			result = append(result, &keyCopy)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func (r *Repository) DeleteAPIKey(ctx context.Context, userID, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	apiKey, exists := r.apiKeys[id]
	if !exists || apiKey.UserID != userID {
		return simplecms.ErrAPIKeyNotFound
	}
	delete(r.apiKeys, id)
	return nil
}
