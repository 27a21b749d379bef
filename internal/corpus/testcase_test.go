package corpus

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/karstfuzz/karst/internal/input"
)

func TestTestcase_Constructors(t *testing.T) {
	withInput := WithInput(input.NewBytes([]byte{1, 2, 3}))
	assert.True(t, withInput.HasInput())
	assert.Empty(t, withInput.Filename())

	withFilename := WithFilename("seeds/seed_1")
	assert.False(t, withFilename.HasInput())
	assert.Nil(t, withFilename.Input())
	assert.Equal(t, "seeds/seed_1", withFilename.Filename())

	withBoth := WithBoth(input.NewBytes([]byte{4}), "seeds/seed_2")
	assert.True(t, withBoth.HasInput())
	assert.Equal(t, "seeds/seed_2", withBoth.Filename())
}

func TestTestcase_IdentityHandlesAreUnique(t *testing.T) {
	a := WithInput(input.NewBytes([]byte("same")))
	b := WithInput(input.NewBytes([]byte("same")))
	assert.NotEqual(t, a.ID(), b.ID(), "equal content must not mean equal identity")
}

func TestTestcase_Metadata(t *testing.T) {
	tc := WithInput(input.NewBytes([]byte{0}))

	tc.SetMeta(MetaOrigin, "splice")
	tc.SetMeta(MetaExecTimeUS, int64(1250))

	origin, ok := tc.Meta(MetaOrigin)
	require.True(t, ok)
	assert.Equal(t, "splice", origin)

	_, ok = tc.Meta(MetaParent)
	assert.False(t, ok)

	assert.Len(t, tc.Metadata(), 2)
}

func TestLoadFromDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "persisted")
	require.NoError(t, os.WriteFile(path, []byte("persisted content"), 0o644))

	tc, err := LoadFromDisk(path)
	require.NoError(t, err)
	require.True(t, tc.HasInput())
	assert.Equal(t, path, tc.Filename())

	data, err := tc.Input().Serialize()
	require.NoError(t, err)
	assert.Equal(t, []byte("persisted content"), data)
}

func TestLoadFromDisk_Unreadable(t *testing.T) {
	_, err := LoadFromDisk(filepath.Join(t.TempDir(), "does-not-exist"))
	require.Error(t, err)
	assert.True(t, IsPersistence(err))
	assert.False(t, IsIllegalState(err))
}

func TestTestcase_ContentHash(t *testing.T) {
	a := WithInput(input.NewBytes([]byte("same")))
	b := WithInput(input.NewBytes([]byte("same")))

	ha, err := a.ContentHash()
	require.NoError(t, err)
	hb, err := b.ContentHash()
	require.NoError(t, err)
	assert.Equal(t, ha, hb, "content hash ignores identity")

	unloaded := WithFilename("somewhere")
	_, err = unloaded.ContentHash()
	assert.True(t, IsIllegalState(err))
}
