package memory_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/simple-cms/pkg/simplecms"
	"github.com/tendant/simple-cms/pkg/simplecms/search/memory"
)

func doc(userID uuid.UUID, title, body string, status simplecms.ContentStatus, createdOn time.Time) simplecms.ContentDocument {
	return simplecms.ContentDocument{
		ID:          uuid.New(),
		UserID:      userID,
		Title:       title,
		RichContent: body,
		Status:      status,
		CreatedOn:   createdOn,
		UpdatedOn:   createdOn,
	}
}

func TestSearchMatching(t *testing.T) {
	index := memory.New()
	ctx := context.Background()
	userID := uuid.New()
	now := time.Now().UTC()

	target := doc(userID, "Go Concurrency", "channels and goroutines", simplecms.ContentStatusPublished, now)
	target.Tags = []simplecms.TagDocument{{ID: uuid.New(), Name: "golang"}}
	target.Category = &simplecms.CategoryDocument{ID: uuid.New(), Name: "tech"}
	require.NoError(t, index.Index(ctx, target))

	require.NoError(t, index.Index(ctx,
		doc(userID, "Gardening", "tomatoes", simplecms.ContentStatusPublished, now.Add(-time.Hour))))
	require.NoError(t, index.Index(ctx,
		doc(uuid.New(), "Go Concurrency Elsewhere", "other owner", simplecms.ContentStatusPublished, now)))

	t.Run("query is case insensitive over title and body", func(t *testing.T) {
		docs, err := index.Search(ctx, simplecms.SearchQuery{UserID: &userID, Query: "goroutines"})
		require.NoError(t, err)
		require.Len(t, docs, 1)
		assert.Equal(t, target.ID, docs[0].ID)

		docs, err = index.Search(ctx, simplecms.SearchQuery{UserID: &userID, Query: "GO CONCURRENCY"})
		require.NoError(t, err)
		require.Len(t, docs, 1)
	})

	t.Run("owner scope", func(t *testing.T) {
		docs, err := index.Search(ctx, simplecms.SearchQuery{UserID: &userID})
		require.NoError(t, err)
		assert.Len(t, docs, 2)
	})

	t.Run("tag and category filters", func(t *testing.T) {
		docs, err := index.Search(ctx, simplecms.SearchQuery{UserID: &userID, Tag: "golang"})
		require.NoError(t, err)
		require.Len(t, docs, 1)

		docs, err = index.Search(ctx, simplecms.SearchQuery{UserID: &userID, Category: "tech"})
		require.NoError(t, err)
		require.Len(t, docs, 1)
	})

	t.Run("sorted by creation time descending", func(t *testing.T) {
		docs, err := index.Search(ctx, simplecms.SearchQuery{UserID: &userID})
		require.NoError(t, err)
		require.Len(t, docs, 2)
		assert.Equal(t, "Go Concurrency", docs[0].Title)
		assert.Equal(t, "Gardening", docs[1].Title)
	})
}

func TestSearchExcludesDeleted(t *testing.T) {
	index := memory.New()
	ctx := context.Background()
	userID := uuid.New()
	now := time.Now().UTC()

	require.NoError(t, index.Index(ctx, doc(userID, "Tombstone", "", simplecms.ContentStatusDeleted, now)))

	docs, err := index.Search(ctx, simplecms.SearchQuery{UserID: &userID})
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestSearchDelete(t *testing.T) {
	index := memory.New()
	ctx := context.Background()
	userID := uuid.New()

	d := doc(userID, "Removable", "", simplecms.ContentStatusPublished, time.Now().UTC())
	require.NoError(t, index.Index(ctx, d))
	require.NoError(t, index.Delete(ctx, d.ID))

	docs, err := index.Search(ctx, simplecms.SearchQuery{UserID: &userID})
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestSearchPagination(t *testing.T) {
	index := memory.New()
	ctx := context.Background()
	userID := uuid.New()
	base := time.Now().UTC()

	for i := 0; i < 25; i++ {
		require.NoError(t, index.Index(ctx,
			doc(userID, "Post", "", simplecms.ContentStatusPublished, base.Add(time.Duration(i)*time.Second))))
	}

	page1, err := index.Search(ctx, simplecms.SearchQuery{UserID: &userID})
	require.NoError(t, err)
	assert.Len(t, page1, 20)

	page2, err := index.Search(ctx, simplecms.SearchQuery{UserID: &userID, Page: 2})
	require.NoError(t, err)
	assert.Len(t, page2, 5)

	beyond, err := index.Search(ctx, simplecms.SearchQuery{UserID: &userID, Page: 3})
	require.NoError(t, err)
	assert.Empty(t, beyond)
}
