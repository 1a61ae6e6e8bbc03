package simplecms

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Category operations

func (s *service) CreateCategory(ctx context.Context, req CreateCategoryRequest) (*Category, error) {
	category := &Category{
		ID:          uuid.New(),
		UserID:      req.UserID,
		Name:        req.Name,
		Description: req.Description,
	}
	if err := s.repository.CreateCategory(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

func (s *service) GetCategory(ctx context.Context, userID, id uuid.UUID) (*Category, error) {
	category, err := s.repository.GetCategory(ctx, id)
	if err != nil {
		return nil, err
	}
	if category.UserID != userID {
		return nil, ErrCategoryNotFound
	}
	return category, nil
}

func (s *service) ListCategories(ctx context.Context, userID uuid.UUID) ([]*Category, error) {
	return s.repository.ListCategories(ctx, userID)
}

func (s *service) UpdateCategory(ctx context.Context, req UpdateCategoryRequest) error {
	category, err := s.GetCategory(ctx, req.UserID, req.CategoryID)
	if err != nil {
		return err
	}
	category.Name = req.Name
	category.Description = req.Description
	return s.repository.UpdateCategory(ctx, category)
}

func (s *service) DeleteCategory(ctx context.Context, userID, id uuid.UUID) error {
	return s.repository.DeleteCategory(ctx, userID, id)
}

// Tag operations

func (s *service) CreateTag(ctx context.Context, req CreateTagRequest) (*Tag, error) {
	tag := &Tag{
		ID:     uuid.New(),
		UserID: req.UserID,
		Name:   req.Name,
	}
	if err := s.repository.CreateTag(ctx, tag); err != nil {
		return nil, err
	}
	return tag, nil
}

func (s *service) GetTag(ctx context.Context, userID, id uuid.UUID) (*Tag, error) {
	tag, err := s.repository.GetTag(ctx, id)
	if err != nil {
		return nil, err
	}
	if tag.UserID != userID {
		return nil, ErrTagNotFound
	}
	return tag, nil
}

func (s *service) ListTags(ctx context.Context, userID uuid.UUID) ([]*Tag, error) {
	return s.repository.ListTags(ctx, userID)
}

func (s *service) UpdateTag(ctx context.Context, req UpdateTagRequest) error {
	tag, err := s.GetTag(ctx, req.UserID, req.TagID)
	if err != nil {
		return err
	}
	tag.Name = req.Name
	return s.repository.UpdateTag(ctx, tag)
}

func (s *service) DeleteTag(ctx context.Context, userID, id uuid.UUID) error {
	return s.repository.DeleteTag(ctx, userID, id)
}

// API key operations

func (s *service) GenerateAPIKey(ctx context.Context, userID uuid.UUID, description string) (*APIKey, error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return nil, fmt.Errorf("generating api key: %w", err)
	}

	key := &APIKey{
		ID:          uuid.New(),
		UserID:      userID,
		Key:         base64.RawURLEncoding.EncodeToString(raw),
		Description: description,
		IsActive:    true,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.repository.CreateAPIKey(ctx, key); err != nil {
		return nil, err
	}
	return key, nil
}

func (s *service) RevokeAPIKey(ctx context.Context, userID, keyID uuid.UUID) error {
	return s.repository.DeleteAPIKey(ctx, userID, keyID)
}

func (s *service) ListAPIKeys(ctx context.Context, userID uuid.UUID) ([]*APIKey, error) {
	return s.repository.ListAPIKeys(ctx, userID)
}

func (s *service) ValidateAPIKey(ctx context.Context, key string) (*APIKey, error) {
	apiKey, err := s.repository.GetActiveAPIKey(ctx, key)
	if err != nil {
		if errors.Is(err, ErrAPIKeyNotFound) {
			return nil, ErrInvalidAPIKey
		}
		return nil, err
	}
	return apiKey, nil
}
