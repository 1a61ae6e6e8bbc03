package simplecms_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/simple-cms/pkg/simplecms"
	repomemory "github.com/tendant/simple-cms/pkg/simplecms/repo/memory"
	searchmemory "github.com/tendant/simple-cms/pkg/simplecms/search/memory"
)

func TestServiceCreation(t *testing.T) {
	tests := []struct {
		name        string
		options     []simplecms.Option
		expectError bool
	}{
		{
			name:        "no options should fail",
			options:     []simplecms.Option{},
			expectError: true,
		},
		{
			name: "with repository should succeed",
			options: []simplecms.Option{
				simplecms.WithRepository(repomemory.New()),
			},
			expectError: false,
		},
		{
			name: "with repository and search index should succeed",
			options: []simplecms.Option{
				simplecms.WithRepository(repomemory.New()),
				simplecms.WithSearchIndex(searchmemory.New()),
			},
			expectError: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, err := simplecms.New(tt.options...)

			if tt.expectError {
				assert.Error(t, err)
				assert.Nil(t, svc)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, svc)
			}
		})
	}
}

func setupTestService(t *testing.T, extra ...simplecms.Option) simplecms.Service {
	t.Helper()

	options := append([]simplecms.Option{
		simplecms.WithRepository(repomemory.New()),
		simplecms.WithSearchIndex(searchmemory.New()),
		simplecms.WithEventSink(simplecms.NewNoopEventSink()),
	}, extra...)

	svc, err := simplecms.New(options...)
	require.NoError(t, err)
	require.NotNil(t, svc)

	return svc
}

// completeSave returns a request carrying every field required for Published.
func completeSave(title string) simplecms.SaveContentRequest {
	return simplecms.SaveContentRequest{
		Title:        title,
		RichContent:  "body of " + title,
		AssetURL:     "https://assets.example.com/cover.png",
		CategoryName: "news",
	}
}

func TestEnsureDraftReusesOpenRecord(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()
	userID := uuid.New()

	first, err := svc.EnsureDraft(ctx, userID)
	require.NoError(t, err)

	second, err := svc.EnsureDraft(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, first, second, "an open empty record should be reused")

	// Once the record progresses past New, the next call opens a fresh one.
	_, err = svc.SaveContent(ctx, userID, first, simplecms.SaveContentRequest{Title: "First Post"})
	require.NoError(t, err)

	third, err := svc.EnsureDraft(ctx, userID)
	require.NoError(t, err)
	assert.NotEqual(t, first, third)
}

func TestSaveContentLifecycle(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()
	userID := uuid.New()

	id, err := svc.EnsureDraft(ctx, userID)
	require.NoError(t, err)

	// Title only: slug assigned, record incomplete, so Draft.
	content, err := svc.SaveContent(ctx, userID, id, simplecms.SaveContentRequest{Title: "My First Post"})
	require.NoError(t, err)
	assert.Equal(t, simplecms.ContentStatusDraft, content.Status)
	assert.Equal(t, "/my-first-post", content.Slug)

	// All fields present: Published.
	content, err = svc.SaveContent(ctx, userID, id, completeSave("My First Post"))
	require.NoError(t, err)
	assert.Equal(t, simplecms.ContentStatusPublished, content.Status)
	require.NotNil(t, content.Category)
	assert.Equal(t, "news", content.Category.Name)

	// Clearing the body demotes back to Draft.
	req := completeSave("My First Post")
	req.RichContent = ""
	content, err = svc.SaveContent(ctx, userID, id, req)
	require.NoError(t, err)
	assert.Equal(t, simplecms.ContentStatusDraft, content.Status)
}

func TestContentLifecycleEndToEnd(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()
	userID := uuid.New()

	id, err := svc.EnsureDraft(ctx, userID)
	require.NoError(t, err)

	content, err := svc.GetContent(ctx, userID, id)
	require.NoError(t, err)
	assert.Equal(t, simplecms.ContentStatusNew, content.Status)

	content, err = svc.SaveContent(ctx, userID, id, simplecms.SaveContentRequest{Title: "Hello World"})
	require.NoError(t, err)
	assert.Equal(t, simplecms.ContentStatusDraft, content.Status)
	assert.Equal(t, "/hello-world", content.Slug)

	content, err = svc.SaveContent(ctx, userID, id, simplecms.SaveContentRequest{
		Title:        "Hello World",
		RichContent:  "a proper body",
		AssetURL:     "https://assets.example.com/hello.png",
		CategoryName: "greetings",
	})
	require.NoError(t, err)
	assert.Equal(t, simplecms.ContentStatusPublished, content.Status)
	assert.Equal(t, "/hello-world", content.Slug)

	require.NoError(t, svc.UnpublishContent(ctx, userID, id))

	// An asset update arriving afterwards must not revive the record.
	require.NoError(t, svc.ApplyAssetURL(ctx, id, "https://assets.example.com/hello-v2.png"))

	content, err = svc.GetContent(ctx, userID, id)
	require.NoError(t, err)
	assert.Equal(t, "https://assets.example.com/hello-v2.png", content.AssetURL)
	assert.Equal(t, simplecms.ContentStatusUnpublished, content.Status)
}

func TestSlugAssignedOnceAndImmutable(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()
	userID := uuid.New()

	id, err := svc.EnsureDraft(ctx, userID)
	require.NoError(t, err)

	content, err := svc.SaveContent(ctx, userID, id, simplecms.SaveContentRequest{Title: "Original Title"})
	require.NoError(t, err)
	assert.Equal(t, "/original-title", content.Slug)

	content, err = svc.SaveContent(ctx, userID, id, simplecms.SaveContentRequest{Title: "Renamed Title"})
	require.NoError(t, err)
	assert.Equal(t, "Renamed Title", content.Title)
	assert.Equal(t, "/original-title", content.Slug, "slug must not change after assignment")
}

func TestSaveContentTitleConflict(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()
	userID := uuid.New()

	first, err := svc.EnsureDraft(ctx, userID)
	require.NoError(t, err)
	_, err = svc.SaveContent(ctx, userID, first, simplecms.SaveContentRequest{Title: "Duplicate"})
	require.NoError(t, err)

	second, err := svc.EnsureDraft(ctx, userID)
	require.NoError(t, err)
	_, err = svc.SaveContent(ctx, userID, second, simplecms.SaveContentRequest{Title: "Duplicate"})
	assert.ErrorIs(t, err, simplecms.ErrConflict)

	// A different owner may use the same title.
	otherUser := uuid.New()
	otherID, err := svc.EnsureDraft(ctx, otherUser)
	require.NoError(t, err)
	_, err = svc.SaveContent(ctx, otherUser, otherID, simplecms.SaveContentRequest{Title: "Duplicate"})
	assert.NoError(t, err)

	// Deleting the original frees the title for its owner.
	require.NoError(t, err)
	require.NoError(t, svc.DeleteContent(ctx, userID, first))
	_, err = svc.SaveContent(ctx, userID, second, simplecms.SaveContentRequest{Title: "Duplicate"})
	assert.NoError(t, err)
}

func TestUnpublishedSurvivesSaves(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()
	userID := uuid.New()

	id, err := svc.EnsureDraft(ctx, userID)
	require.NoError(t, err)
	_, err = svc.SaveContent(ctx, userID, id, completeSave("Taken Down"))
	require.NoError(t, err)

	require.NoError(t, svc.UnpublishContent(ctx, userID, id))

	// A fully complete save must not revive an unpublished record.
	content, err := svc.SaveContent(ctx, userID, id, completeSave("Taken Down"))
	require.NoError(t, err)
	assert.Equal(t, simplecms.ContentStatusUnpublished, content.Status)

	err = svc.SetAssetURL(ctx, userID, id, "https://assets.example.com/new.png")
	require.NoError(t, err)
	content, err = svc.GetContent(ctx, userID, id)
	require.NoError(t, err)
	assert.Equal(t, simplecms.ContentStatusUnpublished, content.Status)
}

func TestDeleteIsTerminal(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()
	userID := uuid.New()

	id, err := svc.EnsureDraft(ctx, userID)
	require.NoError(t, err)
	_, err = svc.SaveContent(ctx, userID, id, completeSave("Gone Soon"))
	require.NoError(t, err)

	require.NoError(t, svc.DeleteContent(ctx, userID, id))

	_, err = svc.GetContent(ctx, userID, id)
	assert.ErrorIs(t, err, simplecms.ErrContentNotFound)

	_, err = svc.SaveContent(ctx, userID, id, completeSave("Gone Soon"))
	assert.ErrorIs(t, err, simplecms.ErrContentNotFound)

	err = svc.DeleteContent(ctx, userID, id)
	assert.ErrorIs(t, err, simplecms.ErrContentNotFound)
}

func TestCrossOwnerAccessDenied(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()
	owner := uuid.New()
	intruder := uuid.New()

	id, err := svc.EnsureDraft(ctx, owner)
	require.NoError(t, err)
	_, err = svc.SaveContent(ctx, owner, id, completeSave("Private"))
	require.NoError(t, err)

	_, err = svc.GetContent(ctx, intruder, id)
	assert.ErrorIs(t, err, simplecms.ErrContentNotFound)

	err = svc.DeleteContent(ctx, intruder, id)
	assert.ErrorIs(t, err, simplecms.ErrContentNotFound)
}

func TestReferenceResolutionPolicies(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()
	userID := uuid.New()

	t.Run("missing category id degrades to draft", func(t *testing.T) {
		id, err := svc.EnsureDraft(ctx, userID)
		require.NoError(t, err)

		missing := uuid.New()
		req := completeSave("Dangling Category")
		req.CategoryName = ""
		req.CategoryID = &missing

		content, err := svc.SaveContent(ctx, userID, id, req)
		require.NoError(t, err)
		assert.Equal(t, simplecms.ContentStatusDraft, content.Status)
		assert.Nil(t, content.CategoryID)
	})

	t.Run("missing tag id is skipped and degrades", func(t *testing.T) {
		id, err := svc.EnsureDraft(ctx, userID)
		require.NoError(t, err)

		req := completeSave("Dangling Tag")
		req.TagIDs = []uuid.UUID{uuid.New()}

		content, err := svc.SaveContent(ctx, userID, id, req)
		require.NoError(t, err)
		assert.Equal(t, simplecms.ContentStatusDraft, content.Status)
		assert.Empty(t, content.Tags)
	})

	t.Run("unknown tag name is a hard error", func(t *testing.T) {
		id, err := svc.EnsureDraft(ctx, userID)
		require.NoError(t, err)

		req := completeSave("Unknown Tag Name")
		req.TagNames = []string{"no-such-tag"}

		_, err = svc.SaveContent(ctx, userID, id, req)
		require.Error(t, err)
		assert.ErrorIs(t, err, simplecms.ErrTagNotFound)
	})

	t.Run("category by name is created on the fly", func(t *testing.T) {
		id, err := svc.EnsureDraft(ctx, userID)
		require.NoError(t, err)

		req := completeSave("Fresh Category")
		req.CategoryName = "brand-new"

		content, err := svc.SaveContent(ctx, userID, id, req)
		require.NoError(t, err)
		assert.Equal(t, simplecms.ContentStatusPublished, content.Status)
		require.NotNil(t, content.Category)
		assert.Equal(t, "brand-new", content.Category.Name)

		categories, err := svc.ListCategories(ctx, userID)
		require.NoError(t, err)
		names := make([]string, 0, len(categories))
		for _, c := range categories {
			names = append(names, c.Name)
		}
		assert.Contains(t, names, "brand-new")
	})

	t.Run("cross owner tag id is skipped", func(t *testing.T) {
		otherUser := uuid.New()
		foreign, err := svc.CreateTag(ctx, simplecms.CreateTagRequest{UserID: otherUser, Name: "foreign"})
		require.NoError(t, err)

		id, err := svc.EnsureDraft(ctx, userID)
		require.NoError(t, err)

		req := completeSave("Foreign Tag")
		req.TagIDs = []uuid.UUID{foreign.ID}

		content, err := svc.SaveContent(ctx, userID, id, req)
		require.NoError(t, err)
		assert.Empty(t, content.Tags)
		assert.Equal(t, simplecms.ContentStatusDraft, content.Status)
	})
}

func TestApplyAssetURLPublishesCompleteRecord(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()
	userID := uuid.New()

	id, err := svc.EnsureDraft(ctx, userID)
	require.NoError(t, err)

	req := completeSave("Awaiting Upload")
	req.AssetURL = ""
	content, err := svc.SaveContent(ctx, userID, id, req)
	require.NoError(t, err)
	assert.Equal(t, simplecms.ContentStatusDraft, content.Status)

	// The async path matches by id alone.
	require.NoError(t, svc.ApplyAssetURL(ctx, id, "https://assets.example.com/final.png"))

	content, err = svc.GetContent(ctx, userID, id)
	require.NoError(t, err)
	assert.Equal(t, simplecms.ContentStatusPublished, content.Status)
	assert.Equal(t, "https://assets.example.com/final.png", content.AssetURL)
}

func TestApplyAssetURLMissingContent(t *testing.T) {
	svc := setupTestService(t)

	err := svc.ApplyAssetURL(context.Background(), uuid.New(), "https://assets.example.com/x.png")
	assert.ErrorIs(t, err, simplecms.ErrContentNotFound)
}

// failingIndex always errors on search but accepts writes, to exercise the
// record-store fallback.
type failingIndex struct{}

func (failingIndex) Index(ctx context.Context, doc simplecms.ContentDocument) error { return nil }
func (failingIndex) Delete(ctx context.Context, id uuid.UUID) error                 { return nil }
func (failingIndex) Search(ctx context.Context, q simplecms.SearchQuery) ([]simplecms.ContentDocument, error) {
	return nil, errors.New("index unavailable")
}

func TestFilterContentsFallsBackOnIndexFailure(t *testing.T) {
	svc, err := simplecms.New(
		simplecms.WithRepository(repomemory.New()),
		simplecms.WithSearchIndex(failingIndex{}),
	)
	require.NoError(t, err)

	ctx := context.Background()
	userID := uuid.New()

	id, err := svc.EnsureDraft(ctx, userID)
	require.NoError(t, err)
	_, err = svc.SaveContent(ctx, userID, id, completeSave("Fallback Post"))
	require.NoError(t, err)

	contents, err := svc.FilterContents(ctx, userID, simplecms.FilterContentsRequest{Query: "Fallback"})
	require.NoError(t, err)
	require.Len(t, contents, 1)
	assert.Equal(t, "Fallback Post", contents[0].Title)
}

func TestFilterContentsExcludesOtherOwners(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()
	alice := uuid.New()
	bob := uuid.New()

	aliceID, err := svc.EnsureDraft(ctx, alice)
	require.NoError(t, err)
	_, err = svc.SaveContent(ctx, alice, aliceID, completeSave("Alice Post"))
	require.NoError(t, err)

	bobID, err := svc.EnsureDraft(ctx, bob)
	require.NoError(t, err)
	_, err = svc.SaveContent(ctx, bob, bobID, completeSave("Bob Post"))
	require.NoError(t, err)

	contents, err := svc.FilterContents(ctx, alice, simplecms.FilterContentsRequest{})
	require.NoError(t, err)
	require.Len(t, contents, 1)
	assert.Equal(t, "Alice Post", contents[0].Title)
}
