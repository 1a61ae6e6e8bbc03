package simplecms

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

const defaultPageSize = 20

// FilterContents implements the owner-scoped dual-path listing: search index
// first when acceleration is on, record store otherwise or on any index
// error. Both paths exclude tombstoned records and sort by creation time
// descending; only the free-text match differs (fuzzy vs substring).
func (s *service) FilterContents(ctx context.Context, userID uuid.UUID, req FilterContentsRequest) ([]*Content, error) {
	page, pageSize := normalizePage(req.Page, req.PageSize)

	if s.searchEnabled && s.searchIndex != nil {
		docs, err := s.searchIndex.Search(ctx, SearchQuery{
			UserID:   &userID,
			Query:    req.Query,
			Tag:      req.Tag,
			Category: req.Category,
			Status:   req.Status,
			FromDate: req.FromDate,
			ToDate:   req.ToDate,
			Page:     page,
			PageSize: pageSize,
		})
		if err == nil {
			return documentsToContents(docs), nil
		}
		s.logger.Error().Err(err).Msg("search index query failed, falling back to record store")
	}

	return s.repository.ListContents(ctx, ContentFilter{
		UserID:   &userID,
		Query:    req.Query,
		Tag:      req.Tag,
		Category: req.Category,
		Status:   req.Status,
		FromDate: req.FromDate,
		ToDate:   req.ToDate,
		Page:     page,
		PageSize: pageSize,
	})
}

// PublicContents is the public listing: status forced to Published, optionally
// narrowed to the owner resolved from an API key. An unknown key leaves the
// listing unscoped rather than failing.
func (s *service) PublicContents(ctx context.Context, req PublicContentsRequest) ([]*Content, error) {
	var userID *uuid.UUID
	if req.APIKey != "" {
		key, err := s.repository.GetActiveAPIKey(ctx, req.APIKey)
		if err == nil {
			userID = &key.UserID
		} else if !errors.Is(err, ErrAPIKeyNotFound) {
			return nil, err
		}
	}

	page, pageSize := normalizePage(req.Page, req.PageSize)
	published := ContentStatusPublished

	if s.searchEnabled && s.searchIndex != nil {
		docs, err := s.searchIndex.Search(ctx, SearchQuery{
			UserID:   userID,
			Query:    req.Query,
			Tag:      req.Tag,
			Category: req.Category,
			Status:   &published,
			FromDate: req.FromDate,
			ToDate:   req.ToDate,
			Page:     page,
			PageSize: pageSize,
		})
		if err == nil {
			return documentsToContents(docs), nil
		}
		s.logger.Error().Err(err).Msg("search index query failed, falling back to record store")
	}

	return s.repository.ListContents(ctx, ContentFilter{
		UserID:   userID,
		Query:    req.Query,
		Tag:      req.Tag,
		Category: req.Category,
		Status:   &published,
		FromDate: req.FromDate,
		ToDate:   req.ToDate,
		Page:     page,
		PageSize: pageSize,
	})
}

// PublicContentBySlug resolves the caller from the API key, consults the
// cache, and falls through to the record store on a miss. The cache is not
// partitioned by owner, so a hit owned by someone else is dropped and treated
// as a miss. Only an owner-matched fetch is ever cached; not-found and
// cross-owner results never are.
func (s *service) PublicContentBySlug(ctx context.Context, slug, apiKey string) (*Content, error) {
	key, err := s.repository.GetActiveAPIKey(ctx, apiKey)
	if err != nil {
		if errors.Is(err, ErrAPIKeyNotFound) {
			return nil, ErrInvalidAPIKey
		}
		return nil, err
	}

	if s.cache != nil {
		raw, ok, err := s.cache.Get(ctx, cacheKey(slug))
		if err != nil {
			s.logger.Error().Err(err).Str("slug", slug).Msg("cache read failed")
		} else if ok {
			cached, err := unmarshalCached(raw)
			if err == nil {
				if cached.UserID == key.UserID {
					return cached, nil
				}
				// Slug collision across owners: drop the stale entry and
				// fall through to the record store.
				s.invalidateCache(ctx, slug)
			} else {
				s.logger.Error().Err(err).Str("slug", slug).Msg("discarding undecodable cache entry")
				s.invalidateCache(ctx, slug)
			}
		}
	}

	content, err := s.repository.GetPublishedBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if content.UserID != key.UserID {
		return nil, ErrContentNotFound
	}

	if s.cache != nil {
		raw, err := marshalCached(content)
		if err == nil {
			if err := s.cache.Set(ctx, cacheKey(slug), raw); err != nil {
				s.logger.Error().Err(err).Str("slug", slug).Msg("cache write failed")
			}
		}
	}

	return content, nil
}

func normalizePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	return page, pageSize
}

func documentsToContents(docs []ContentDocument) []*Content {
	contents := make([]*Content, 0, len(docs))
	for _, doc := range docs {
		contents = append(contents, doc.Content())
	}
	return contents
}
