package corpus

import (
	"fmt"
	"os"

	"github.com/google/uuid"

	"github.com/karstfuzz/karst/internal/input"
	"github.com/karstfuzz/karst/internal/meta"
)

// Well-known metadata kinds. The map is open-ended; collaborators may
// attach anything, these are just the kinds the engine itself reads.
const (
	// MetaOrigin records how the entry was produced ("seed", "havoc",
	// "splice", ...).
	MetaOrigin = "origin"

	// MetaExecTimeUS records the last observed execution time in
	// microseconds.
	MetaExecTimeUS = "exec_time_us"

	// MetaParent records the uuid of the entry this one was mutated from.
	MetaParent = "parent"
)

// Metadata is an open-ended kind-to-value annotation map. Feedback and
// mutation collaborators read and write it without knowing how the
// entry is stored. Values must be canonical-JSON friendly (strings,
// integers, bools, nested maps/slices of those) if the entry is to be
// content-hashed or journaled.
type Metadata map[string]any

// Testcase is a single fuzzing input plus its metadata and an optional
// materialized-input/on-disk-path duality.
//
// At least one of input or filename must be set by the time the
// testcase enters a corpus that may need to reload it. A testcase with
// neither is unusable; constructors do not enforce this so a testcase
// may be transiently incomplete while being built.
//
// Each testcase carries a stable uuid handle assigned at construction.
// Corpus removal matches on the handle, never on content or storage
// position, so a caller's reference stays valid across index shifts.
type Testcase struct {
	id       uuid.UUID
	input    input.Input // nil means not currently loaded into memory
	filename string      // "" means no persisted location assigned yet
	metadata Metadata
}

// WithInput creates a testcase holding a materialized input and no
// persisted location.
func WithInput(in input.Input) *Testcase {
	return &Testcase{id: uuid.New(), input: in, metadata: Metadata{}}
}

// WithFilename creates an unloaded testcase referencing a persisted
// location. The input stays absent until LoadTestcase materializes it.
func WithFilename(filename string) *Testcase {
	return &Testcase{id: uuid.New(), filename: filename, metadata: Metadata{}}
}

// WithBoth creates a testcase holding both a materialized input and
// its persisted location.
func WithBoth(in input.Input, filename string) *Testcase {
	return &Testcase{id: uuid.New(), input: in, filename: filename, metadata: Metadata{}}
}

// LoadFromDisk reads and deserializes an input from the given location
// and returns a testcase holding both halves of the duality.
func LoadFromDisk(filename string) (*Testcase, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, newPersistenceError(fmt.Sprintf("reading testcase from %q", filename), err)
	}
	return WithBoth(input.Deserialize(data), filename), nil
}

// ID returns the stable identity handle assigned at construction.
func (t *Testcase) ID() uuid.UUID {
	return t.id
}

// Input returns the materialized input, or nil if the entry is not
// loaded. Accessing the input never triggers I/O; loading is always an
// explicit corpus-level operation so call sites can reason about when
// disk access happens.
func (t *Testcase) Input() input.Input {
	return t.input
}

// HasInput reports whether the input is currently materialized.
func (t *Testcase) HasInput() bool {
	return t.input != nil
}

// Filename returns the persisted location, or "" if none is assigned.
func (t *Testcase) Filename() string {
	return t.filename
}

// SetFilename assigns a persisted location. Disk-backed storage calls
// this lazily on first persist.
func (t *Testcase) SetFilename(filename string) {
	t.filename = filename
}

// SetInput fills in the materialized input. Used by LoadTestcase to
// complete the input/filename pair in place, keeping the identity
// handle and metadata intact.
func (t *Testcase) SetInput(in input.Input) {
	t.input = in
}

// Metadata returns the annotation map. The map is shared, not copied;
// collaborators mutate it directly.
func (t *Testcase) Metadata() Metadata {
	return t.metadata
}

// SetMeta attaches an annotation.
func (t *Testcase) SetMeta(kind string, value any) {
	t.metadata[kind] = value
}

// Meta reads an annotation.
func (t *Testcase) Meta(kind string) (any, bool) {
	v, ok := t.metadata[kind]
	return v, ok
}

// ContentHash computes the content-addressed identity of the
// materialized input. Fails with an illegal-state error if the input
// is not loaded.
func (t *Testcase) ContentHash() (string, error) {
	if t.input == nil {
		return "", newIllegalStateError("content hash requires a materialized input")
	}
	data, err := t.input.Serialize()
	if err != nil {
		return "", newPersistenceError("serializing input for hashing", err)
	}
	return meta.InputHash(data), nil
}
