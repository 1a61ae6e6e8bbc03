// Package memory provides an in-memory search index for testing and
// single-process deployments. It mirrors the filter semantics of the
// Elasticsearch index: term filters are exact, the free-text query matches
// title and rich content case-insensitively, deleted documents are never
// returned, and results sort by creation time descending.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/tendant/simple-cms/pkg/simplecms"
)

// Index is an in-memory implementation of simplecms.SearchIndex.
type Index struct {
	mu   sync.RWMutex
	docs map[uuid.UUID]simplecms.ContentDocument
}

// New creates a new in-memory search index.
func New() *Index {
	return &Index{docs: make(map[uuid.UUID]simplecms.ContentDocument)}
}

func (i *Index) Index(ctx context.Context, doc simplecms.ContentDocument) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.docs[doc.ID] = doc
	return nil
}

func (i *Index) Delete(ctx context.Context, id uuid.UUID) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	delete(i.docs, id)
	return nil
}

func (i *Index) Search(ctx context.Context, q simplecms.SearchQuery) ([]simplecms.ContentDocument, error) {
	i.mu.RLock()
	defer i.mu.RUnlock()

	var matched []simplecms.ContentDocument
	for _, doc := range i.docs {
		if matches(doc, q) {
			matched = append(matched, doc)
		}
	}

	sort.Slice(matched, func(a, b int) bool {
		return matched[a].CreatedOn.After(matched[b].CreatedOn)
	})

	page, pageSize := q.Page, q.PageSize
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	start := (page - 1) * pageSize
	if start >= len(matched) {
		return nil, nil
	}
	end := start + pageSize
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], nil
}

func matches(doc simplecms.ContentDocument, q simplecms.SearchQuery) bool {
	if doc.Status == simplecms.ContentStatusDeleted {
		return false
	}
	if q.UserID != nil && doc.UserID != *q.UserID {
		return false
	}
	if q.Status != nil && doc.Status != *q.Status {
		return false
	}
	if q.Category != "" {
		if doc.Category == nil || doc.Category.Name != q.Category {
			return false
		}
	}
	if q.Tag != "" && !hasTag(doc, q.Tag) {
		return false
	}
	if q.FromDate != nil && doc.CreatedOn.Before(*q.FromDate) {
		return false
	}
	if q.ToDate != nil && doc.CreatedOn.After(*q.ToDate) {
		return false
	}
	if q.Query != "" {
		needle := strings.ToLower(q.Query)
		if !strings.Contains(strings.ToLower(doc.Title), needle) &&
			!strings.Contains(strings.ToLower(doc.RichContent), needle) {
			return false
		}
	}
	return true
}

func hasTag(doc simplecms.ContentDocument, name string) bool {
	for _, t := range doc.Tags {
		if t.Name == name {
			return true
		}
	}
	return false
}
