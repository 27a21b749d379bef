// Package corpus owns the set of known testcases of a fuzzing
// campaign: how they are stored, how the next one to execute is
// chosen, and how unloaded entries are materialized from disk.
//
// Storage backends (InMemoryCorpus, OnDiskCorpus) implement the full
// Corpus contract; QueueCorpus wraps any backend and replaces only the
// selection order, leaving storage untouched. The whole package
// assumes exclusive single-owner access; callers wanting parallelism
// shard or lock outside this layer.
package corpus

import (
	"fmt"
	"os"
	"time"

	"github.com/couchbase/ghistogram"

	"github.com/karstfuzz/karst/internal/input"
	"github.com/karstfuzz/karst/internal/rand"
)

// Corpus is the capability set every backend provides.
//
// Index validity: indices are only valid between consecutive
// structural mutations. Remove shifts subsequent indices down by one,
// so any cached index must be treated as invalidated by a removal
// before it.
type Corpus interface {
	// Count returns the current number of entries. O(1).
	Count() int

	// Add appends a testcase. Disk-backed storage assigns a filename
	// when absent and persists the input bytes synchronously; the
	// returned error is always nil for purely in-memory storage.
	Add(tc *Testcase) error

	// Replace overwrites the entry at idx. Fails with a key-not-found
	// error when idx is out of bounds. Used to upgrade an entry without
	// disturbing index-based references held by a scheduler.
	Replace(idx int, tc *Testcase) error

	// Get returns the entry at idx. Panics if idx is out of bounds:
	// scheduling layers must only pass validated indices, so an invalid
	// one is a programming error, not a runtime condition.
	Get(idx int) *Testcase

	// Remove removes the entry whose identity handle matches tc,
	// returning it, or (nil, false) if no entry matches. O(n).
	Remove(tc *Testcase) (*Testcase, bool)

	// RandomEntry returns a uniformly drawn entry and its index.
	// Fails with an empty-corpus error when Count() == 0.
	RandomEntry(src rand.Source) (*Testcase, int, error)

	// LoadTestcase ensures the entry at idx has a materialized input,
	// reading it from the entry's filename if absent. This is the sole
	// implicit-I/O point of the corpus layer. Fails with an
	// illegal-state error if the entry has neither input nor filename,
	// or a persistence error if the read fails; the entry is unmodified
	// on failure.
	LoadTestcase(idx int) error

	// Next returns the entry to fuzz next and its index. Backends pick
	// uniformly at random; scheduling overlays replace exactly this
	// seam. Fails with an empty-corpus error when the corpus is empty.
	Next(src rand.Source) (*Testcase, int, error)

	// CurrentTestcase returns whatever entry the last Next selected.
	// Fails with an illegal-state error before the first Next, or when
	// a removal has invalidated the recorded position.
	CurrentTestcase() (*Testcase, int, error)
}

// Histogram names tracked by backends.
const (
	histInputSize = "InputSize(B)"
	histLoadUsecs = "LoadTestcaseUsecs"
)

// entryList is the shared storage base for backends: an ordered,
// exclusively owned sequence of testcases plus operation histograms.
// Everything except Add/Next/CurrentTestcase is defined here in terms
// of raw entry access.
type entryList struct {
	entries    []*Testcase
	histograms ghistogram.Histograms
}

func newEntryList() entryList {
	return entryList{
		histograms: ghistogram.Histograms{
			histInputSize: ghistogram.NewNamedHistogram(histInputSize, 10, 4, 4),
			histLoadUsecs: ghistogram.NewNamedHistogram(histLoadUsecs, 10, 4, 4),
		},
	}
}

// Count returns the number of entries.
func (l *entryList) Count() int {
	return len(l.entries)
}

// push appends an entry and records its size if materialized.
// Backends wrap this in their Add.
func (l *entryList) push(tc *Testcase) {
	l.entries = append(l.entries, tc)
	if tc.HasInput() {
		l.histograms[histInputSize].Add(uint64(tc.Input().Len()), 1)
	}
}

// Replace overwrites the entry at idx.
func (l *entryList) Replace(idx int, tc *Testcase) error {
	if idx < 0 || idx >= len(l.entries) {
		return newKeyNotFoundError(idx, len(l.entries))
	}
	l.entries[idx] = tc
	return nil
}

// Get returns the entry at idx, panicking on an invalid index.
func (l *entryList) Get(idx int) *Testcase {
	return l.entries[idx]
}

// Remove scans for the entry with the same identity handle and removes
// it, preserving the order of the remaining entries.
func (l *entryList) Remove(tc *Testcase) (*Testcase, bool) {
	for i, e := range l.entries {
		if e.ID() == tc.ID() {
			l.entries = append(l.entries[:i], l.entries[i+1:]...)
			return e, true
		}
	}
	return nil, false
}

// RandomEntry draws a uniform index in [0, Count()) from src.
func (l *entryList) RandomEntry(src rand.Source) (*Testcase, int, error) {
	if len(l.entries) == 0 {
		return nil, 0, newEmptyError()
	}
	idx := int(src.Below(uint64(len(l.entries))))
	return l.entries[idx], idx, nil
}

// LoadTestcase materializes the input of the entry at idx in place.
// The identity handle and metadata survive the load; only the missing
// half of the input/filename pair is filled in.
func (l *entryList) LoadTestcase(idx int) error {
	if idx < 0 || idx >= len(l.entries) {
		return newKeyNotFoundError(idx, len(l.entries))
	}
	tc := l.entries[idx]
	if tc.HasInput() {
		return nil
	}
	if tc.Filename() == "" {
		return newIllegalStateError("neither input nor filename specified for testcase")
	}

	started := time.Now()
	data, err := os.ReadFile(tc.Filename())
	if err != nil {
		return newPersistenceError(fmt.Sprintf("loading testcase from %q", tc.Filename()), err)
	}
	tc.SetInput(input.Deserialize(data))

	l.histograms[histLoadUsecs].Add(uint64(time.Since(started).Microseconds()), 1)
	l.histograms[histInputSize].Add(uint64(tc.Input().Len()), 1)
	return nil
}

// Histograms returns a snapshot of the operation histograms, the same
// way a storage engine exposes its timing stats.
func (l *entryList) Histograms() ghistogram.Histograms {
	snapshot := make(ghistogram.Histograms)
	snapshot.AddAll(l.histograms)
	return snapshot
}
