package corpus

import "github.com/karstfuzz/karst/internal/rand"

// InMemoryCorpus keeps every entry purely in the owned sequence.
// Nothing is persisted; entries added without a filename can never be
// evicted-and-reloaded. Next picks uniformly at random.
type InMemoryCorpus struct {
	entryList
	pos      int
	selected bool
}

// NewInMemory creates an empty in-memory corpus.
func NewInMemory() *InMemoryCorpus {
	return &InMemoryCorpus{entryList: newEntryList()}
}

// Add appends the testcase. Never fails for in-memory storage.
func (c *InMemoryCorpus) Add(tc *Testcase) error {
	c.push(tc)
	return nil
}

// Next draws a uniform entry and records it as current.
func (c *InMemoryCorpus) Next(src rand.Source) (*Testcase, int, error) {
	tc, idx, err := c.RandomEntry(src)
	if err != nil {
		return nil, 0, err
	}
	c.pos = idx
	c.selected = true
	return tc, idx, nil
}

// CurrentTestcase returns the entry the last Next selected.
func (c *InMemoryCorpus) CurrentTestcase() (*Testcase, int, error) {
	if !c.selected {
		return nil, 0, newIllegalStateError("no testcase selected yet, call Next first")
	}
	if c.pos >= c.Count() {
		return nil, 0, newIllegalStateError("current position invalidated by removal")
	}
	return c.Get(c.pos), c.pos, nil
}
