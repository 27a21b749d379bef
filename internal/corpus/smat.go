package corpus

import (
	"bytes"
	"fmt"

	"github.com/google/uuid"
	"github.com/mschoch/smat"

	"github.com/karstfuzz/karst/internal/input"
	"github.com/karstfuzz/karst/internal/rand"
)

// Byte-stream-driven state machine fuzzing of the corpus API.
//
// A QueueCorpus over an InMemoryCorpus is driven through arbitrary
// action sequences while a mirror model tracks the expected entry
// handles in insertion order. Any divergence between corpus and mirror
// is a bug in the storage or scheduling layer.

// FuzzOps runs the state machine over data. Exposed for the native
// fuzz driver in smat_test.go.
func FuzzOps(data []byte) int {
	return smat.Fuzz(&smatContext{}, smat.ActionID('S'), smat.ActionID('T'),
		smatActionMap, data)
}

type smatContext struct {
	queue  *QueueCorpus
	mirror []uuid.UUID // expected handles, insertion order
	src    rand.Source

	curIdx  int // cursor the remove/replace actions address entries with
	nextSeq int // feeds generated input payloads

	expectPos    int // queue cursor the mirror predicts
	expectCycles uint64
}

var smatActionMap = smat.ActionMap{
	smat.ActionID('.'): smatDelta(func(c *smatContext) { c.curIdx++ }),
	smat.ActionID(','): smatDelta(func(c *smatContext) { c.curIdx-- }),
	smat.ActionID('a'): smatAdd,
	smat.ActionID('d'): smatRemove,
	smat.ActionID('n'): smatNext,
	smat.ActionID('r'): smatRandomEntry,
	smat.ActionID('p'): smatReplace,
	smat.ActionID('l'): smatLoad,
	smat.ActionID('c'): smatCheck,
}

var smatRunningActions []smat.ActionID

func init() {
	for id := range smatActionMap {
		smatRunningActions = append(smatRunningActions, id)
	}
	smatActionMap[smat.ActionID('S')] = smatSetup
	smatActionMap[smat.ActionID('T')] = smatTeardown
}

// We only have one state: running.
func smatRunning(next byte) smat.ActionID {
	return smatRunningActions[int(next)%len(smatRunningActions)]
}

func smatDelta(cb func(c *smatContext)) func(ctx smat.Context) (smat.State, error) {
	return func(ctx smat.Context) (smat.State, error) {
		c := ctx.(*smatContext)
		cb(c)
		if c.curIdx < 0 {
			c.curIdx = 1000
		}
		return smatRunning, nil
	}
}

func smatSetup(ctx smat.Context) (smat.State, error) {
	c := ctx.(*smatContext)
	c.queue = NewQueue(NewInMemory())
	c.src = rand.NewStdSource(0)
	return smatRunning, nil
}

func smatTeardown(ctx smat.Context) (smat.State, error) {
	return nil, ctx.(*smatContext).verify()
}

func smatAdd(ctx smat.Context) (smat.State, error) {
	c := ctx.(*smatContext)
	payload := fmt.Appendf(nil, "payload-%d", c.nextSeq)
	c.nextSeq++
	tc := WithInput(input.NewBytes(payload))
	if err := c.queue.Add(tc); err != nil {
		return nil, err
	}
	c.mirror = append(c.mirror, tc.ID())
	return smatRunning, c.verify()
}

func smatRemove(ctx smat.Context) (smat.State, error) {
	c := ctx.(*smatContext)
	if len(c.mirror) == 0 {
		return smatRunning, nil
	}
	idx := c.curIdx % len(c.mirror)
	target := c.queue.Get(idx)
	removed, ok := c.queue.Remove(target)
	if !ok {
		return nil, fmt.Errorf("remove of live entry %s reported not found", target.ID())
	}
	if removed.ID() != c.mirror[idx] {
		return nil, fmt.Errorf("removed %s, mirror expected %s", removed.ID(), c.mirror[idx])
	}
	// A second removal of the same handle must report not found.
	if _, again := c.queue.Remove(target); again {
		return nil, fmt.Errorf("double removal of %s succeeded", target.ID())
	}
	c.mirror = append(c.mirror[:idx], c.mirror[idx+1:]...)
	// Removal invalidates the predicted cursor; resync from the queue.
	c.expectPos = c.queue.Pos()
	return smatRunning, c.verify()
}

func smatNext(ctx smat.Context) (smat.State, error) {
	c := ctx.(*smatContext)
	tc, idx, err := c.queue.Next(c.src)
	if len(c.mirror) == 0 {
		if !IsEmpty(err) {
			return nil, fmt.Errorf("next on empty corpus: got %v, want empty-corpus error", err)
		}
		return smatRunning, nil
	}
	if err != nil {
		return nil, err
	}
	c.expectPos++
	if c.expectPos > len(c.mirror) {
		c.expectPos = 1
		c.expectCycles++
	}
	if idx != c.expectPos-1 {
		return nil, fmt.Errorf("next returned index %d, mirror predicted %d", idx, c.expectPos-1)
	}
	if tc.ID() != c.mirror[idx] {
		return nil, fmt.Errorf("next returned %s at %d, mirror expected %s", tc.ID(), idx, c.mirror[idx])
	}
	return smatRunning, nil
}

func smatRandomEntry(ctx smat.Context) (smat.State, error) {
	c := ctx.(*smatContext)
	tc, idx, err := c.queue.RandomEntry(c.src)
	if len(c.mirror) == 0 {
		if !IsEmpty(err) {
			return nil, fmt.Errorf("random entry on empty corpus: got %v, want empty-corpus error", err)
		}
		return smatRunning, nil
	}
	if err != nil {
		return nil, err
	}
	if idx >= len(c.mirror) {
		return nil, fmt.Errorf("random entry index %d out of range (count=%d)", idx, len(c.mirror))
	}
	if tc.ID() != c.mirror[idx] {
		return nil, fmt.Errorf("random entry %s at %d, mirror expected %s", tc.ID(), idx, c.mirror[idx])
	}
	return smatRunning, nil
}

func smatReplace(ctx smat.Context) (smat.State, error) {
	c := ctx.(*smatContext)
	if len(c.mirror) == 0 {
		// Out-of-bounds replace must fail with key-not-found.
		if err := c.queue.Replace(0, WithInput(input.NewBytes(nil))); !IsKeyNotFound(err) {
			return nil, fmt.Errorf("replace on empty corpus: got %v, want key-not-found error", err)
		}
		return smatRunning, nil
	}
	idx := c.curIdx % len(c.mirror)
	payload := fmt.Appendf(nil, "replacement-%d", c.nextSeq)
	c.nextSeq++
	tc := WithInput(input.NewBytes(payload))
	if err := c.queue.Replace(idx, tc); err != nil {
		return nil, err
	}
	c.mirror[idx] = tc.ID()
	got, err := c.queue.Get(idx).Input().Serialize()
	if err != nil {
		return nil, err
	}
	if !bytes.Equal(got, payload) {
		return nil, fmt.Errorf("replace at %d not observable through get", idx)
	}
	return smatRunning, c.verify()
}

func smatLoad(ctx smat.Context) (smat.State, error) {
	c := ctx.(*smatContext)
	if len(c.mirror) == 0 {
		return smatRunning, nil
	}
	// Every in-memory entry is materialized, so load must be a no-op.
	if err := c.queue.LoadTestcase(c.curIdx % len(c.mirror)); err != nil {
		return nil, err
	}
	return smatRunning, nil
}

func smatCheck(ctx smat.Context) (smat.State, error) {
	return smatRunning, ctx.(*smatContext).verify()
}

// verify compares corpus contents against the mirror model.
func (c *smatContext) verify() error {
	if c.queue.Count() != len(c.mirror) {
		return fmt.Errorf("count %d, mirror has %d", c.queue.Count(), len(c.mirror))
	}
	for i, want := range c.mirror {
		if got := c.queue.Get(i).ID(); got != want {
			return fmt.Errorf("entry %d is %s, mirror expected %s", i, got, want)
		}
	}
	if c.queue.Cycles() != c.expectCycles {
		return fmt.Errorf("cycles %d, mirror predicted %d", c.queue.Cycles(), c.expectCycles)
	}
	return nil
}
