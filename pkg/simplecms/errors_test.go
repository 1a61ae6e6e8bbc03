package simplecms_test

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/tendant/simple-cms/pkg/simplecms"
)

func TestContentErrorUnwrap(t *testing.T) {
	wrapped := &simplecms.ContentError{
		ContentID: uuid.New(),
		Op:        "save",
		Err:       simplecms.ErrConflict,
	}

	assert.True(t, errors.Is(wrapped, simplecms.ErrConflict))
	assert.Contains(t, wrapped.Error(), "save")

	var contentErr *simplecms.ContentError
	assert.True(t, errors.As(error(wrapped), &contentErr))
}

func TestContentStatusIsValid(t *testing.T) {
	valid := []simplecms.ContentStatus{
		simplecms.ContentStatusNew,
		simplecms.ContentStatusDraft,
		simplecms.ContentStatusPublished,
		simplecms.ContentStatusUnpublished,
		simplecms.ContentStatusDeleted,
	}
	for _, status := range valid {
		assert.True(t, status.IsValid(), string(status))
	}
	assert.False(t, simplecms.ContentStatus("Archived").IsValid())
	assert.False(t, simplecms.ContentStatus("").IsValid())
}
