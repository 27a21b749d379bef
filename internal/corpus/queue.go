package corpus

import "github.com/karstfuzz/karst/internal/rand"

// QueueCorpus wraps a storage backend with a cyclic-queue traversal
// policy: Next walks the entries in insertion order and wraps back to
// the first after the last, counting completed cycles. Every entry is
// revisited within one cycle.
//
// Only selection order changes. Storage mutation (Add, Remove,
// Replace) and RandomEntry delegate transparently to the wrapped
// backend, which the queue owns exclusively.
type QueueCorpus struct {
	corpus Corpus
	pos    int    // 1-based cursor; 0 means not started
	cycles uint64 // completed full traversals
}

// NewQueue wraps the given backend. The queue takes ownership; the
// caller must not keep using the backend directly.
func NewQueue(c Corpus) *QueueCorpus {
	return &QueueCorpus{corpus: c}
}

// Count returns the number of entries in the wrapped backend.
func (q *QueueCorpus) Count() int {
	return q.corpus.Count()
}

// Add delegates to the wrapped backend.
func (q *QueueCorpus) Add(tc *Testcase) error {
	return q.corpus.Add(tc)
}

// Replace delegates to the wrapped backend.
func (q *QueueCorpus) Replace(idx int, tc *Testcase) error {
	return q.corpus.Replace(idx, tc)
}

// Get delegates to the wrapped backend.
func (q *QueueCorpus) Get(idx int) *Testcase {
	return q.corpus.Get(idx)
}

// Remove delegates to the wrapped backend.
func (q *QueueCorpus) Remove(tc *Testcase) (*Testcase, bool) {
	return q.corpus.Remove(tc)
}

// RandomEntry delegates to the wrapped backend.
func (q *QueueCorpus) RandomEntry(src rand.Source) (*Testcase, int, error) {
	return q.corpus.RandomEntry(src)
}

// LoadTestcase delegates to the wrapped backend.
func (q *QueueCorpus) LoadTestcase(idx int) error {
	return q.corpus.LoadTestcase(idx)
}

// Next advances the cursor and returns the entry under it. On an empty
// corpus it fails without touching cursor state. When the cursor walks
// past the last entry it wraps to the first and one more full
// traversal is counted. The randomness source is unused; traversal
// order is the whole point.
func (q *QueueCorpus) Next(_ rand.Source) (*Testcase, int, error) {
	if q.corpus.Count() == 0 {
		return nil, 0, newEmptyError()
	}
	q.pos++
	if q.pos > q.corpus.Count() {
		q.pos = 1
		q.cycles++
	}
	return q.corpus.Get(q.pos - 1), q.pos - 1, nil
}

// CurrentTestcase returns the entry under the cursor. Calling it
// before the first Next is rejected with an illegal-state error rather
// than underflowing the cursor arithmetic.
func (q *QueueCorpus) CurrentTestcase() (*Testcase, int, error) {
	if q.pos == 0 {
		return nil, 0, newIllegalStateError("queue not started, call Next first")
	}
	if q.pos > q.corpus.Count() {
		return nil, 0, newIllegalStateError("current position invalidated by removal")
	}
	return q.corpus.Get(q.pos - 1), q.pos - 1, nil
}

// Cycles returns how many full traversals have completed.
func (q *QueueCorpus) Cycles() uint64 {
	return q.cycles
}

// Pos returns the 1-based cursor position; 0 before the first Next.
func (q *QueueCorpus) Pos() int {
	return q.pos
}
