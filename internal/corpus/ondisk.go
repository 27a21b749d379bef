package corpus

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/karstfuzz/karst/internal/rand"
)

// OnDiskCorpus stores entries in the owned sequence like
// InMemoryCorpus, and additionally roots them in a directory: Add
// assigns a deterministic filename when absent and write-through
// persists the input bytes to it, so every materialized entry can be
// evicted and later reloaded through LoadTestcase.
type OnDiskCorpus struct {
	entryList
	dirPath  string
	nextID   int
	pos      int
	selected bool
}

// NewOnDisk creates a corpus rooted at dirPath, creating the directory
// if needed.
func NewOnDisk(dirPath string) (*OnDiskCorpus, error) {
	if err := os.MkdirAll(dirPath, 0o755); err != nil {
		return nil, newPersistenceError(fmt.Sprintf("creating corpus directory %q", dirPath), err)
	}
	return &OnDiskCorpus{entryList: newEntryList(), dirPath: dirPath}, nil
}

// DirPath returns the corpus root directory.
func (c *OnDiskCorpus) DirPath() string {
	return c.dirPath
}

// Add appends the testcase, assigning an id_<n> filename under the
// corpus directory when the entry has none, and persists the input
// bytes to that location when they are materialized. Entries that
// arrive with only a filename (seed references) are appended as-is and
// loaded lazily later.
func (c *OnDiskCorpus) Add(tc *Testcase) error {
	if tc.Filename() == "" {
		tc.SetFilename(c.assignFilename())
	}
	if tc.HasInput() {
		if err := c.persist(tc); err != nil {
			return err
		}
	}
	c.push(tc)
	return nil
}

// assignFilename picks the next free id_<n> name. The counter is
// monotonic so removals never cause a number to be reused, and names
// already present on disk from an earlier campaign are skipped.
func (c *OnDiskCorpus) assignFilename() string {
	for {
		name := filepath.Join(c.dirPath, fmt.Sprintf("id_%d", c.nextID))
		c.nextID++
		if _, err := os.Stat(name); os.IsNotExist(err) {
			return name
		}
	}
}

// persist serializes the input to the entry's filename.
func (c *OnDiskCorpus) persist(tc *Testcase) error {
	data, err := tc.Input().Serialize()
	if err != nil {
		return newPersistenceError("serializing input for persistence", err)
	}
	if err := os.WriteFile(tc.Filename(), data, 0o644); err != nil {
		return newPersistenceError(fmt.Sprintf("persisting testcase to %q", tc.Filename()), err)
	}
	return nil
}

// Next draws a uniform entry and records it as current.
func (c *OnDiskCorpus) Next(src rand.Source) (*Testcase, int, error) {
	tc, idx, err := c.RandomEntry(src)
	if err != nil {
		return nil, 0, err
	}
	c.pos = idx
	c.selected = true
	return tc, idx, nil
}

// CurrentTestcase returns the entry the last Next selected.
func (c *OnDiskCorpus) CurrentTestcase() (*Testcase, int, error) {
	if !c.selected {
		return nil, 0, newIllegalStateError("no testcase selected yet, call Next first")
	}
	if c.pos >= c.Count() {
		return nil, 0, newIllegalStateError("current position invalidated by removal")
	}
	return c.Get(c.pos), c.pos, nil
}
