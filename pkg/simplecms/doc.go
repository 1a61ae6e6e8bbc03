// Package simplecms is a content lifecycle library: it owns the status state
// machine for content entries (New, Draft, Published, Unpublished, Deleted),
// slug assignment, and the synchronization of each entry across three stores:
// an authoritative record store, a full-text search index, and an expiring
// public-read cache.
//
// The record store is the single source of truth. Index and cache writes
// happen strictly after the record store commit and are best-effort: failures
// are logged, never surfaced, and never rolled back. Both projections
// converge on the next write.
//
// Construct a service with functional options:
//
//	svc, err := simplecms.New(
//		simplecms.WithRepository(memory.New()),
//		simplecms.WithSearchIndex(searchmemory.New()),
//		simplecms.WithContentCache(sturdy.New(10_000, 256, 10*time.Minute)),
//	)
//
// The same service instance serves synchronous API calls and the asynchronous
// upload-completion worker, so every status transition flows through one code
// path.
package simplecms
