package corpus

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/karstfuzz/karst/internal/input"
	"github.com/karstfuzz/karst/internal/testutil"
)

func TestOnDisk_AddAssignsFilename(t *testing.T) {
	dir := t.TempDir()
	c, err := NewOnDisk(dir)
	require.NoError(t, err)

	tc := WithInput(input.NewBytes([]byte{0, 0, 0, 0}))
	require.NoError(t, c.Add(tc))

	assert.Equal(t, filepath.Join(dir, "id_0"), tc.Filename())
}

func TestOnDisk_AddWriteThroughPersists(t *testing.T) {
	dir := t.TempDir()
	c, err := NewOnDisk(dir)
	require.NoError(t, err)

	require.NoError(t, c.Add(WithInput(input.NewBytes([]byte("persist me")))))

	data, err := os.ReadFile(filepath.Join(dir, "id_0"))
	require.NoError(t, err)
	assert.Equal(t, []byte("persist me"), data)
}

func TestOnDisk_AddKeepsExistingFilename(t *testing.T) {
	dir := t.TempDir()
	c, err := NewOnDisk(dir)
	require.NoError(t, err)

	path := filepath.Join(dir, "fancyfile")
	tc := WithBoth(input.NewBytes([]byte{0, 0, 0, 0}), path)
	require.NoError(t, c.Add(tc))

	assert.Equal(t, path, tc.Filename())
	_, statErr := os.Stat(path)
	assert.NoError(t, statErr, "write-through persists under the caller's name")
}

func TestOnDisk_FilenamesNeverCollide(t *testing.T) {
	dir := t.TempDir()
	c, err := NewOnDisk(dir)
	require.NoError(t, err)

	first := WithInput(input.NewBytes([]byte("first")))
	require.NoError(t, c.Add(first))
	second := WithInput(input.NewBytes([]byte("second")))
	require.NoError(t, c.Add(second))

	// Remove the first entry, then add again: the freed number must
	// not be handed out a second time.
	_, ok := c.Remove(first)
	require.True(t, ok)

	third := WithInput(input.NewBytes([]byte("third")))
	require.NoError(t, c.Add(third))

	assert.Equal(t, filepath.Join(dir, "id_1"), second.Filename())
	assert.Equal(t, filepath.Join(dir, "id_2"), third.Filename())
}

func TestOnDisk_SkipsNamesLeftByEarlierCampaign(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "id_0"), []byte("stale"), 0o644))

	c, err := NewOnDisk(dir)
	require.NoError(t, err)
	tc := WithInput(input.NewBytes([]byte("fresh")))
	require.NoError(t, c.Add(tc))

	assert.Equal(t, filepath.Join(dir, "id_1"), tc.Filename())
	stale, readErr := os.ReadFile(filepath.Join(dir, "id_0"))
	require.NoError(t, readErr)
	assert.Equal(t, []byte("stale"), stale, "stale file left untouched")
}

func TestOnDisk_SeedReferenceAddedUnloaded(t *testing.T) {
	dir := t.TempDir()
	seed := filepath.Join(dir, "seed_a")
	require.NoError(t, os.WriteFile(seed, []byte("seed bytes"), 0o644))

	c, err := NewOnDisk(dir)
	require.NoError(t, err)
	require.NoError(t, c.Add(WithFilename(seed)))

	assert.False(t, c.Get(0).HasInput())

	require.NoError(t, c.LoadTestcase(0))
	data, err := c.Get(0).Input().Serialize()
	require.NoError(t, err)
	assert.Equal(t, []byte("seed bytes"), data)
}

func TestOnDisk_RoundTripThroughDisk(t *testing.T) {
	dir := t.TempDir()
	c, err := NewOnDisk(dir)
	require.NoError(t, err)

	original := WithInput(input.NewBytes([]byte{0xde, 0xad, 0xbe, 0xef}))
	require.NoError(t, c.Add(original))

	// Simulate eviction: forget the materialized input, then reload
	// from the write-through copy.
	reference := WithFilename(original.Filename())
	require.NoError(t, c.Replace(0, reference))
	require.False(t, c.Get(0).HasInput())

	require.NoError(t, c.LoadTestcase(0))
	data, err := c.Get(0).Input().Serialize()
	require.NoError(t, err)
	assert.Equal(t, []byte{0xde, 0xad, 0xbe, 0xef}, data)
}

func TestOnDisk_NextAndCurrent(t *testing.T) {
	dir := t.TempDir()
	c, err := NewOnDisk(dir)
	require.NoError(t, err)

	_, _, err = c.CurrentTestcase()
	assert.True(t, IsIllegalState(err))

	var entries []*Testcase
	for i := 0; i < 3; i++ {
		tc := WithInput(input.NewBytes([]byte{byte(i)}))
		require.NoError(t, c.Add(tc))
		entries = append(entries, tc)
	}

	tc, idx, err := c.Next(testutil.NewScriptedRand(1))
	require.NoError(t, err)
	assert.Equal(t, 1, idx)
	assert.Equal(t, entries[1].ID(), tc.ID())

	cur, curIdx, err := c.CurrentTestcase()
	require.NoError(t, err)
	assert.Equal(t, 1, curIdx)
	assert.Equal(t, tc.ID(), cur.ID())
}

func TestSnapshot(t *testing.T) {
	dir := t.TempDir()
	seed := filepath.Join(dir, "seed_a")
	require.NoError(t, os.WriteFile(seed, []byte("12345"), 0o644))

	c, err := NewOnDisk(dir)
	require.NoError(t, err)
	require.NoError(t, c.Add(WithInput(input.NewBytes([]byte("abc")))))
	require.NoError(t, c.Add(WithFilename(seed)))

	s := Snapshot(c)
	assert.Equal(t, 2, s.Entries)
	assert.Equal(t, 1, s.Loaded)
	assert.Equal(t, 1, s.Unloaded)
	assert.Equal(t, uint64(3), s.TotalBytes)
}
