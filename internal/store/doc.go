// Package store provides SQLite-backed durable storage for the corpus
// journal.
//
// The journal is an append-only log of corpus lifecycle events:
//   - Testcases: one row per known testcase (content-addressed)
//   - Events: add/remove/load records with a logical sequence number
//
// Patterns carried throughout:
//
//   - Content-addressed idempotency: testcase rows key on the input's
//     content hash, so re-importing the same seed directory is a no-op.
//   - Logical ordering: events order by seq INTEGER, never timestamps,
//     so a campaign's history reads back deterministically.
//   - Single writer: the corpus model is single-owner, so the pool is
//     capped at one connection to avoid SQLITE_BUSY surprises.
package store
