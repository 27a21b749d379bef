package cli

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runStatsCmd(t *testing.T, format string, args ...string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	cmd := NewStatsCommand(&RootOptions{Format: format})
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestStats_JournalCounts(t *testing.T) {
	seeds := writeSeeds(t, map[string][]byte{
		"a": []byte("1234"),
		"b": []byte("56"),
	})
	corpusDir := filepath.Join(t.TempDir(), "corpus")
	journalPath := filepath.Join(t.TempDir(), "karst.db")
	runSeedCmd(t, "text", "--dir", corpusDir, "--journal", journalPath, seeds)

	out, err := runStatsCmd(t, "text", "--journal", journalPath)
	require.NoError(t, err)
	assert.Contains(t, out, "journal: 2 testcase(s), 6 bytes")
	assert.Contains(t, out, "events:  2 add(s), 0 load(s), 0 remove(s)")
}

func TestStats_DirHistogram(t *testing.T) {
	dir := writeSeeds(t, map[string][]byte{
		"a": []byte("1234"),
		"b": bytes.Repeat([]byte("x"), 64),
	})

	out, err := runStatsCmd(t, "text", "--dir", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "corpus dir: "+dir+", 2 file(s), 68 bytes")
	assert.Contains(t, out, "InputSizes(B)")
}

func TestStats_JSONOutput(t *testing.T) {
	seeds := writeSeeds(t, map[string][]byte{"a": []byte("1234")})
	corpusDir := filepath.Join(t.TempDir(), "corpus")
	journalPath := filepath.Join(t.TempDir(), "karst.db")
	runSeedCmd(t, "text", "--dir", corpusDir, "--journal", journalPath, seeds)

	out, err := runStatsCmd(t, "json", "--journal", journalPath, "--dir", corpusDir)
	require.NoError(t, err)

	var resp Response
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.Equal(t, "ok", resp.Status)

	raw, err := json.Marshal(resp.Data)
	require.NoError(t, err)
	var result StatsResult
	require.NoError(t, json.Unmarshal(raw, &result))
	require.NotNil(t, result.Journal)
	assert.Equal(t, int64(1), result.Journal.Testcases)
	assert.Equal(t, int64(4), result.Journal.TotalBytes)
	assert.Equal(t, 1, result.DirFiles)
	assert.Equal(t, int64(4), result.DirBytes)
}

func TestStats_NothingToSummarize(t *testing.T) {
	_, err := runStatsCmd(t, "text")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
