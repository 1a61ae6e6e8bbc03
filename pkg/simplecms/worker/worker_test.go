package worker_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/simple-cms/pkg/simplecms"
	"github.com/tendant/simple-cms/pkg/simplecms/worker"
)

// fakeConsumer replays a fixed message sequence and records commits. Errors
// pushed onto fetchErrs are returned by Fetch ahead of any queued message.
type fakeConsumer struct {
	mu        sync.Mutex
	messages  chan worker.Message
	fetchErrs chan error
	committed []int64
	closed    bool
}

func newFakeConsumer(messages ...worker.Message) *fakeConsumer {
	ch := make(chan worker.Message, len(messages))
	for _, m := range messages {
		ch <- m
	}
	return &fakeConsumer{messages: ch, fetchErrs: make(chan error, 1)}
}

func (c *fakeConsumer) Fetch(ctx context.Context) (worker.Message, error) {
	select {
	case err := <-c.fetchErrs:
		return worker.Message{}, err
	case msg := <-c.messages:
		return msg, nil
	case <-ctx.Done():
		return worker.Message{}, ctx.Err()
	}
}

func (c *fakeConsumer) Commit(ctx context.Context, msg worker.Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.committed = append(c.committed, msg.Offset)
	return nil
}

func (c *fakeConsumer) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *fakeConsumer) committedOffsets() []int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]int64(nil), c.committed...)
}

func (c *fakeConsumer) requeue(msg worker.Message) {
	c.messages <- msg
}

// fakeApplier records applied events and can fail a configurable number of
// times per entry.
type fakeApplier struct {
	mu        sync.Mutex
	applied   map[uuid.UUID]string
	attempts  map[uuid.UUID]int
	failures  map[uuid.UUID]int
	permanent map[uuid.UUID]error
}

func newFakeApplier() *fakeApplier {
	return &fakeApplier{
		applied:   make(map[uuid.UUID]string),
		attempts:  make(map[uuid.UUID]int),
		failures:  make(map[uuid.UUID]int),
		permanent: make(map[uuid.UUID]error),
	}
}

func (a *fakeApplier) ApplyAssetURL(ctx context.Context, contentID uuid.UUID, assetURL string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.attempts[contentID]++
	if err, ok := a.permanent[contentID]; ok {
		return err
	}
	if a.failures[contentID] > 0 {
		a.failures[contentID]--
		return errors.New("transient failure")
	}
	a.applied[contentID] = assetURL
	return nil
}

func (a *fakeApplier) attemptCount(id uuid.UUID) int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.attempts[id]
}

func (a *fakeApplier) appliedURL(id uuid.UUID) (string, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	url, ok := a.applied[id]
	return url, ok
}

func eventMessage(t *testing.T, offset int64, entryID uuid.UUID, url string) worker.Message {
	t.Helper()
	raw, err := json.Marshal(worker.UploadedEvent{EntryID: entryID, URL: url})
	require.NoError(t, err)
	return worker.Message{Topic: "asset-uploads", Offset: offset, Value: raw}
}

func runWorker(t *testing.T, w *worker.Worker, wait func() bool) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	deadline := time.After(5 * time.Second)
	for !wait() {
		select {
		case <-deadline:
			cancel()
			t.Fatal("condition not reached before deadline")
		case <-time.After(5 * time.Millisecond):
		}
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("worker did not stop on cancellation")
	}
}

func TestWorkerAppliesAndCommits(t *testing.T) {
	entryID := uuid.New()
	consumer := newFakeConsumer(eventMessage(t, 1, entryID, "https://cdn.example.com/a.png"))
	applier := newFakeApplier()
	w := worker.New(consumer, applier)

	runWorker(t, w, func() bool {
		return len(consumer.committedOffsets()) == 1
	})

	url, ok := applier.appliedURL(entryID)
	require.True(t, ok)
	assert.Equal(t, "https://cdn.example.com/a.png", url)
	assert.Equal(t, []int64{1}, consumer.committedOffsets())
	assert.True(t, consumer.closed)
}

func TestWorkerCommitsPoisonMessages(t *testing.T) {
	badJSON := worker.Message{Topic: "asset-uploads", Offset: 1, Value: []byte("{not json")}
	nilID := eventMessage(t, 2, uuid.Nil, "https://cdn.example.com/b.png")
	goodID := uuid.New()
	good := eventMessage(t, 3, goodID, "https://cdn.example.com/c.png")

	consumer := newFakeConsumer(badJSON, nilID, good)
	applier := newFakeApplier()
	w := worker.New(consumer, applier)

	runWorker(t, w, func() bool {
		return len(consumer.committedOffsets()) == 3
	})

	assert.Equal(t, []int64{1, 2, 3}, consumer.committedOffsets())
	_, ok := applier.appliedURL(goodID)
	assert.True(t, ok, "the valid message after the poison ones must still be applied")
}

func TestWorkerRedeliversTransientFailures(t *testing.T) {
	entryID := uuid.New()
	msg := eventMessage(t, 7, entryID, "https://cdn.example.com/retry.png")

	consumer := newFakeConsumer(msg)
	applier := newFakeApplier()
	applier.failures[entryID] = 1
	w := worker.New(consumer, applier, worker.WithBackoff(time.Millisecond))

	// Simulate broker redelivery of the uncommitted message.
	go func() {
		time.Sleep(20 * time.Millisecond)
		consumer.requeue(msg)
	}()

	runWorker(t, w, func() bool {
		return len(consumer.committedOffsets()) == 1
	})

	url, ok := applier.appliedURL(entryID)
	require.True(t, ok)
	assert.Equal(t, "https://cdn.example.com/retry.png", url)
}

func TestWorkerRetainsMissingEntryEvents(t *testing.T) {
	entryID := uuid.New()
	msg := eventMessage(t, 9, entryID, "https://cdn.example.com/gone.png")

	consumer := newFakeConsumer(msg)
	applier := newFakeApplier()
	applier.permanent[entryID] = simplecms.ErrContentNotFound
	w := worker.New(consumer, applier, worker.WithBackoff(time.Millisecond))

	// Broker redelivery of the uncommitted message.
	go func() {
		time.Sleep(20 * time.Millisecond)
		consumer.requeue(msg)
	}()

	runWorker(t, w, func() bool {
		return applier.attemptCount(entryID) >= 2
	})

	_, ok := applier.appliedURL(entryID)
	assert.False(t, ok)
	assert.Empty(t, consumer.committedOffsets(),
		"an event for a missing entry must not be acknowledged")
}

func TestWorkerSurvivesFetchErrorsAfterFirstMessage(t *testing.T) {
	firstID := uuid.New()
	secondID := uuid.New()
	first := eventMessage(t, 1, firstID, "https://cdn.example.com/a.png")
	second := eventMessage(t, 2, secondID, "https://cdn.example.com/b.png")

	consumer := newFakeConsumer(first)
	applier := newFakeApplier()
	w := worker.New(consumer, applier, worker.WithBackoff(time.Millisecond))

	// A broker hiccup between the two messages must only be logged.
	go func() {
		for len(consumer.committedOffsets()) == 0 {
			time.Sleep(time.Millisecond)
		}
		consumer.fetchErrs <- errors.New("broker unavailable")
		time.Sleep(5 * time.Millisecond)
		consumer.requeue(second)
	}()

	runWorker(t, w, func() bool {
		return len(consumer.committedOffsets()) == 2
	})

	url, ok := applier.appliedURL(secondID)
	require.True(t, ok, "the worker must keep consuming after a fetch error")
	assert.Equal(t, "https://cdn.example.com/b.png", url)
}

func TestWorkerStopsWhenFirstFetchFails(t *testing.T) {
	consumer := newFakeConsumer()
	consumer.fetchErrs <- errors.New("group join failed")
	w := worker.New(consumer, newFakeApplier())

	err := w.Run(context.Background())
	require.EqualError(t, err, "group join failed")
	assert.True(t, consumer.closed)
}
