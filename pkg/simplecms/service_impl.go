package simplecms

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// service implements the Service interface
type service struct {
	repository    Repository
	searchIndex   SearchIndex
	cache         ContentCache
	eventSink     EventSink
	logger        zerolog.Logger
	searchEnabled bool
}

// Option represents a functional option for configuring the service
type Option func(*service)

// WithRepository sets the repository for the service
func WithRepository(repo Repository) Option {
	return func(s *service) {
		s.repository = repo
	}
}

// WithSearchIndex sets the search index projection and enables the
// search-accelerated query path.
func WithSearchIndex(index SearchIndex) Option {
	return func(s *service) {
		s.searchIndex = index
		s.searchEnabled = true
	}
}

// WithSearchAcceleration toggles the search-first query path without removing
// the index projection. Index writes still happen while disabled.
func WithSearchAcceleration(enabled bool) Option {
	return func(s *service) {
		s.searchEnabled = enabled
	}
}

// WithContentCache sets the public-read cache for the service
func WithContentCache(cache ContentCache) Option {
	return func(s *service) {
		s.cache = cache
	}
}

// WithEventSink sets the event sink for the service
func WithEventSink(sink EventSink) Option {
	return func(s *service) {
		s.eventSink = sink
	}
}

// WithLogger sets the logger used for best-effort failure reporting
func WithLogger(logger zerolog.Logger) Option {
	return func(s *service) {
		s.logger = logger
	}
}

// New creates a new service instance with the given options
func New(options ...Option) (Service, error) {
	s := &service{
		logger: zerolog.Nop(),
	}

	for _, option := range options {
		option(s)
	}

	if s.repository == nil {
		return nil, fmt.Errorf("repository is required")
	}

	return s, nil
}

// Content lifecycle operations

func (s *service) EnsureDraft(ctx context.Context, userID uuid.UUID) (uuid.UUID, error) {
	existing, err := s.repository.FindNewContent(ctx, userID)
	if err == nil {
		return existing.ID, nil
	}
	if !errors.Is(err, ErrContentNotFound) {
		return uuid.Nil, err
	}

	now := time.Now().UTC()
	content := &Content{
		ID:        uuid.New(),
		UserID:    userID,
		Status:    ContentStatusNew,
		CreatedOn: now,
		UpdatedOn: now,
	}

	if err := s.repository.CreateContent(ctx, content); err != nil {
		return uuid.Nil, &ContentError{ContentID: content.ID, Op: "ensure_draft", Err: err}
	}

	s.indexContent(ctx, content)
	s.fireEvent(ctx, func(sink EventSink) error { return sink.ContentCreated(ctx, content) })

	return content.ID, nil
}

func (s *service) GetContent(ctx context.Context, userID, contentID uuid.UUID) (*Content, error) {
	return s.repository.GetContent(ctx, userID, contentID)
}

func (s *service) SaveContent(ctx context.Context, userID, contentID uuid.UUID, req SaveContentRequest) (*Content, error) {
	content, err := s.repository.GetContent(ctx, userID, contentID)
	if err != nil {
		return nil, err
	}

	content.Title = req.Title

	title := strings.TrimSpace(req.Title)
	if content.Slug == "" && title != "" {
		slug := Slugify(req.Title)
		conflict, err := s.repository.HasTitleOrSlugConflict(ctx, userID, contentID, req.Title, slug)
		if err != nil {
			return nil, &ContentError{ContentID: contentID, Op: "save", Err: err}
		}
		if conflict {
			return nil, ErrConflict
		}
		content.Slug = slug
	} else if title != "" {
		// Slug already assigned and immutable; only the new title can collide.
		conflict, err := s.repository.HasTitleOrSlugConflict(ctx, userID, contentID, req.Title, "")
		if err != nil {
			return nil, &ContentError{ContentID: contentID, Op: "save", Err: err}
		}
		if conflict {
			return nil, ErrConflict
		}
	}

	content.RichContent = req.RichContent
	content.AssetURL = req.AssetURL

	refsResolved, err := s.resolveReferences(ctx, userID, content, req)
	if err != nil {
		return nil, err
	}

	recomputeStatus(content, refsResolved)
	content.UpdatedOn = time.Now().UTC()

	if err := s.repository.UpdateContent(ctx, content); err != nil {
		return nil, &ContentError{ContentID: contentID, Op: "save", Err: err}
	}

	s.indexContent(ctx, content)
	s.invalidateCache(ctx, content.Slug)
	s.fireEvent(ctx, func(sink EventSink) error { return sink.ContentSaved(ctx, content) })

	return content, nil
}

// resolveReferences applies the category and tag references from a save
// request. Missing by-id references degrade completeness (false return);
// missing by-name tag references are hard errors; a missing by-name category
// is created on the fly.
func (s *service) resolveReferences(ctx context.Context, userID uuid.UUID, content *Content, req SaveContentRequest) (bool, error) {
	resolved := true

	switch {
	case req.CategoryID != nil:
		category, err := s.repository.GetCategory(ctx, *req.CategoryID)
		if err != nil || category.UserID != userID {
			if err != nil && !errors.Is(err, ErrCategoryNotFound) {
				return false, err
			}
			resolved = false
			content.CategoryID = nil
			content.Category = nil
		} else {
			content.CategoryID = &category.ID
			content.Category = category
		}
	case strings.TrimSpace(req.CategoryName) != "":
		category, err := s.repository.GetCategoryByName(ctx, userID, req.CategoryName)
		if errors.Is(err, ErrCategoryNotFound) {
			category = &Category{
				ID:     uuid.New(),
				UserID: userID,
				Name:   req.CategoryName,
			}
			if err := s.repository.CreateCategory(ctx, category); err != nil {
				return false, err
			}
		} else if err != nil {
			return false, err
		}
		content.CategoryID = &category.ID
		content.Category = category
	default:
		content.CategoryID = nil
		content.Category = nil
	}

	content.Tags = nil
	for _, tagID := range req.TagIDs {
		tag, err := s.repository.GetTag(ctx, tagID)
		if err != nil || tag.UserID != userID {
			if err != nil && !errors.Is(err, ErrTagNotFound) {
				return false, err
			}
			resolved = false
			continue
		}
		content.Tags = append(content.Tags, *tag)
	}
	for _, name := range req.TagNames {
		tag, err := s.repository.GetTagByName(ctx, userID, name)
		if err != nil {
			return false, fmt.Errorf("resolving tag %q: %w", name, err)
		}
		content.Tags = append(content.Tags, *tag)
	}

	return resolved, nil
}

func (s *service) UnpublishContent(ctx context.Context, userID, contentID uuid.UUID) error {
	content, err := s.repository.GetContent(ctx, userID, contentID)
	if err != nil {
		return err
	}

	content.Status = ContentStatusUnpublished
	content.UpdatedOn = time.Now().UTC()

	if err := s.repository.UpdateContent(ctx, content); err != nil {
		return &ContentError{ContentID: contentID, Op: "unpublish", Err: err}
	}

	s.indexContent(ctx, content)
	s.invalidateCache(ctx, content.Slug)
	s.fireEvent(ctx, func(sink EventSink) error { return sink.ContentUnpublished(ctx, content) })

	return nil
}

func (s *service) DeleteContent(ctx context.Context, userID, contentID uuid.UUID) error {
	content, err := s.repository.GetContent(ctx, userID, contentID)
	if err != nil {
		return err
	}

	content.Status = ContentStatusDeleted
	content.UpdatedOn = time.Now().UTC()

	if err := s.repository.UpdateContent(ctx, content); err != nil {
		return &ContentError{ContentID: contentID, Op: "delete", Err: err}
	}

	s.removeFromIndex(ctx, contentID)
	s.invalidateCache(ctx, content.Slug)
	s.fireEvent(ctx, func(sink EventSink) error { return sink.ContentDeleted(ctx, contentID) })

	return nil
}

func (s *service) SetAssetURL(ctx context.Context, userID, contentID uuid.UUID, assetURL string) error {
	content, err := s.repository.GetContent(ctx, userID, contentID)
	if err != nil {
		return err
	}
	return s.applyAssetURL(ctx, content, assetURL)
}

// ApplyAssetURL is the system-scoped variant used by the async update worker.
// It matches by id alone, without an owner check.
func (s *service) ApplyAssetURL(ctx context.Context, contentID uuid.UUID, assetURL string) error {
	content, err := s.repository.GetContentByID(ctx, contentID)
	if err != nil {
		return err
	}
	return s.applyAssetURL(ctx, content, assetURL)
}

func (s *service) applyAssetURL(ctx context.Context, content *Content, assetURL string) error {
	content.AssetURL = assetURL
	recomputeStatus(content, true)
	content.UpdatedOn = time.Now().UTC()

	if err := s.repository.UpdateContent(ctx, content); err != nil {
		return &ContentError{ContentID: content.ID, Op: "set_asset_url", Err: err}
	}

	s.indexContent(ctx, content)
	s.invalidateCache(ctx, content.Slug)
	s.fireEvent(ctx, func(sink EventSink) error { return sink.AssetURLUpdated(ctx, content) })

	return nil
}

// Projection helpers. The record store write has already committed by the
// time these run; failures here are logged and absorbed, never surfaced.

func (s *service) indexContent(ctx context.Context, content *Content) {
	if s.searchIndex == nil {
		return
	}
	if err := s.searchIndex.Index(ctx, NewContentDocument(content)); err != nil {
		s.logger.Error().Err(err).Str("content_id", content.ID.String()).Msg("failed to index content")
	}
}

func (s *service) removeFromIndex(ctx context.Context, contentID uuid.UUID) {
	if s.searchIndex == nil {
		return
	}
	if err := s.searchIndex.Delete(ctx, contentID); err != nil {
		s.logger.Error().Err(err).Str("content_id", contentID.String()).Msg("failed to remove content from index")
	}
}

// invalidateCache drops the public cache entry for a slug. The write path
// only ever invalidates; the cache is repopulated lazily by public reads.
func (s *service) invalidateCache(ctx context.Context, slug string) {
	if s.cache == nil || slug == "" {
		return
	}
	if err := s.cache.Remove(ctx, cacheKey(slug)); err != nil {
		s.logger.Error().Err(err).Str("slug", slug).Msg("failed to invalidate cache entry")
	}
}

func (s *service) fireEvent(ctx context.Context, fire func(EventSink) error) {
	if s.eventSink == nil {
		return
	}
	if err := fire(s.eventSink); err != nil {
		s.logger.Error().Err(err).Msg("event sink failed")
	}
}

func cacheKey(slug string) string {
	return "public-content:" + slug
}

func marshalCached(content *Content) (string, error) {
	raw, err := json.Marshal(NewContentDocument(content))
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

func unmarshalCached(raw string) (*Content, error) {
	var doc ContentDocument
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return nil, err
	}
	return doc.Content(), nil
}
