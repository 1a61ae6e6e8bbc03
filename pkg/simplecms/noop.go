package simplecms

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// NoopEventSink is a no-operation implementation of EventSink
// Useful for production when you don't need event handling or for testing
type NoopEventSink struct{}

// NewNoopEventSink creates a new no-operation event sink
func NewNoopEventSink() EventSink {
	return &NoopEventSink{}
}

// ContentCreated does nothing and returns nil
func (n *NoopEventSink) ContentCreated(ctx context.Context, content *Content) error {
	return nil
}

// ContentSaved does nothing and returns nil
func (n *NoopEventSink) ContentSaved(ctx context.Context, content *Content) error {
	return nil
}

// ContentUnpublished does nothing and returns nil
func (n *NoopEventSink) ContentUnpublished(ctx context.Context, content *Content) error {
	return nil
}

// ContentDeleted does nothing and returns nil
func (n *NoopEventSink) ContentDeleted(ctx context.Context, contentID uuid.UUID) error {
	return nil
}

// AssetURLUpdated does nothing and returns nil
func (n *NoopEventSink) AssetURLUpdated(ctx context.Context, content *Content) error {
	return nil
}

// LoggingEventSink is an event sink that logs events but takes no other action
// Useful for development and debugging
type LoggingEventSink struct {
	logger zerolog.Logger
}

// NewLoggingEventSink creates a new logging event sink
func NewLoggingEventSink(logger zerolog.Logger) EventSink {
	return &LoggingEventSink{logger: logger}
}

// ContentCreated logs the draft creation event
func (l *LoggingEventSink) ContentCreated(ctx context.Context, content *Content) error {
	l.logger.Info().
		Str("content_id", content.ID.String()).
		Str("user_id", content.UserID.String()).
		Msg("content created")
	return nil
}

// ContentSaved logs the save event
func (l *LoggingEventSink) ContentSaved(ctx context.Context, content *Content) error {
	l.logger.Info().
		Str("content_id", content.ID.String()).
		Str("status", string(content.Status)).
		Str("slug", content.Slug).
		Msg("content saved")
	return nil
}

// ContentUnpublished logs the unpublish event
func (l *LoggingEventSink) ContentUnpublished(ctx context.Context, content *Content) error {
	l.logger.Info().
		Str("content_id", content.ID.String()).
		Msg("content unpublished")
	return nil
}

// ContentDeleted logs the delete event
func (l *LoggingEventSink) ContentDeleted(ctx context.Context, contentID uuid.UUID) error {
	l.logger.Info().
		Str("content_id", contentID.String()).
		Msg("content deleted")
	return nil
}

// AssetURLUpdated logs the asset URL update event
func (l *LoggingEventSink) AssetURLUpdated(ctx context.Context, content *Content) error {
	l.logger.Info().
		Str("content_id", content.ID.String()).
		Str("status", string(content.Status)).
		Msg("asset url updated")
	return nil
}
