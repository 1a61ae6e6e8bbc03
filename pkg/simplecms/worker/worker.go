// Package worker consumes upload-completion events and applies asset URLs to
// content records.
//
// Delivery is at least once: a message is committed only after the asset URL
// has been applied successfully. Malformed messages are committed and logged
// so they cannot wedge the partition; every other failure leaves the offset
// uncommitted, so the broker redelivers the message after a short backoff.
package worker

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// UploadedEvent is the payload published when an asset upload finishes.
type UploadedEvent struct {
	EntryID uuid.UUID `json:"entry_id"`
	URL     string    `json:"url"`
}

// Message is a raw message fetched from the event stream, with enough
// position information to commit it afterwards.
type Message struct {
	Topic     string
	Partition int
	Offset    int64
	Key       []byte
	Value     []byte
}

// Consumer abstracts the event stream the worker reads from.
type Consumer interface {
	// Fetch blocks until a message is available or ctx is done.
	Fetch(ctx context.Context) (Message, error)

	// Commit marks the message as processed.
	Commit(ctx context.Context, msg Message) error

	Close() error
}

// AssetApplier is the part of the content service the worker needs.
type AssetApplier interface {
	ApplyAssetURL(ctx context.Context, contentID uuid.UUID, assetURL string) error
}

// Worker runs the consume loop.
type Worker struct {
	consumer Consumer
	applier  AssetApplier
	logger   zerolog.Logger
	backoff  time.Duration
}

// Option configures a Worker.
type Option func(*Worker)

// WithLogger sets the worker logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(w *Worker) { w.logger = logger }
}

// WithBackoff sets the delay after a failed apply before fetching again.
func WithBackoff(d time.Duration) Option {
	return func(w *Worker) { w.backoff = d }
}

// New creates a worker reading from consumer and applying events via applier.
func New(consumer Consumer, applier AssetApplier, options ...Option) *Worker {
	w := &Worker{
		consumer: consumer,
		applier:  applier,
		logger:   zerolog.Nop(),
		backoff:  time.Second,
	}
	for _, opt := range options {
		opt(w)
	}
	return w
}

// Run consumes until ctx is cancelled, then closes the consumer. It returns
// nil on cancellation. A fetch error before the first message is fatal (the
// subscription itself is broken); fetch errors after that are logged and
// retried so a broker hiccup does not stop the worker.
func (w *Worker) Run(ctx context.Context) error {
	defer w.consumer.Close()

	fetched := false
	for {
		msg, err := w.consumer.Fetch(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil
			}
			if !fetched {
				return err
			}
			w.logger.Error().Err(err).Msg("fetch failed, retrying")
			select {
			case <-time.After(w.backoff):
			case <-ctx.Done():
				return nil
			}
			continue
		}
		fetched = true

		if err := w.handle(ctx, msg); err != nil {
			w.logger.Error().Err(err).
				Str("topic", msg.Topic).
				Int("partition", msg.Partition).
				Int64("offset", msg.Offset).
				Msg("processing failed, message will be redelivered")

			// No commit: the offset stays put and the broker redelivers.
			select {
			case <-time.After(w.backoff):
			case <-ctx.Done():
				return nil
			}
			continue
		}

		if err := w.consumer.Commit(ctx, msg); err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			w.logger.Error().Err(err).
				Int64("offset", msg.Offset).
				Msg("commit failed")
		}
	}
}

// handle applies one message. A nil return means the message is done and must
// be committed; poison messages return nil after logging so they are skipped.
func (w *Worker) handle(ctx context.Context, msg Message) error {
	var event UploadedEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		w.logger.Warn().Err(err).
			Int64("offset", msg.Offset).
			Msg("skipping malformed upload event")
		return nil
	}
	if event.EntryID == uuid.Nil {
		w.logger.Warn().
			Int64("offset", msg.Offset).
			Msg("skipping upload event without entry id")
		return nil
	}

	if err := w.applier.ApplyAssetURL(ctx, event.EntryID, event.URL); err != nil {
		return err
	}

	w.logger.Info().
		Str("entry_id", event.EntryID.String()).
		Msg("asset url applied")
	return nil
}
