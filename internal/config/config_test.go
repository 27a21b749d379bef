package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_MinimalConfig(t *testing.T) {
	c, err := Parse("campaign.yaml", []byte("corpus_dir: ./corpus\n"))
	require.NoError(t, err)

	assert.Equal(t, "./corpus", c.CorpusDir)
	assert.Equal(t, SchedulerQueue, c.Scheduler, "scheduler defaults to queue")
	assert.Equal(t, DefaultMaxInputSize, c.MaxInputSize)
	assert.Empty(t, c.Journal, "journaling is off unless configured")
}

func TestParse_FullConfig(t *testing.T) {
	doc := []byte(`corpus_dir: /var/corpus
journal: /var/karst.db
scheduler: random
seed: 42
max_input_size: 4096
`)
	c, err := Parse("campaign.yaml", doc)
	require.NoError(t, err)

	assert.Equal(t, "/var/corpus", c.CorpusDir)
	assert.Equal(t, "/var/karst.db", c.Journal)
	assert.Equal(t, SchedulerRandom, c.Scheduler)
	assert.Equal(t, uint64(42), c.Seed)
	assert.Equal(t, 4096, c.MaxInputSize)
}

func TestParse_MissingCorpusDir(t *testing.T) {
	_, err := Parse("campaign.yaml", []byte("scheduler: queue\n"))
	require.Error(t, err)

	var le *LoadError
	require.ErrorAs(t, err, &le)
	assert.Equal(t, ErrCodeSchema, le.Code)
}

func TestParse_UnknownScheduler(t *testing.T) {
	doc := []byte("corpus_dir: ./corpus\nscheduler: cyclic\n")
	_, err := Parse("campaign.yaml", doc)
	require.Error(t, err)

	var le *LoadError
	require.ErrorAs(t, err, &le)
	assert.Equal(t, ErrCodeSchema, le.Code)
	assert.True(t, le.Pos.IsValid(), "schema violations carry a position")
}

func TestParse_NegativeSeed(t *testing.T) {
	doc := []byte("corpus_dir: ./corpus\nseed: -1\n")
	_, err := Parse("campaign.yaml", doc)
	require.Error(t, err)
}

func TestParse_ZeroMaxInputSize(t *testing.T) {
	doc := []byte("corpus_dir: ./corpus\nmax_input_size: 0\n")
	_, err := Parse("campaign.yaml", doc)
	require.Error(t, err)
}

func TestParse_MalformedYAML(t *testing.T) {
	_, err := Parse("campaign.yaml", []byte("corpus_dir: [unclosed\n"))
	require.Error(t, err)
}

func TestLoad_FromDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "campaign.yaml")
	require.NoError(t, os.WriteFile(path, []byte("corpus_dir: ./corpus\n"), 0o644))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "./corpus", c.CorpusDir)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)

	var le *LoadError
	require.ErrorAs(t, err, &le)
	assert.Equal(t, ErrCodeNotFound, le.Code)
}
