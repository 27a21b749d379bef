package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/couchbase/ghistogram"
	"github.com/spf13/cobra"

	"github.com/karstfuzz/karst/internal/config"
	"github.com/karstfuzz/karst/internal/store"
)

// StatsOptions holds flags for the stats command.
type StatsOptions struct {
	*RootOptions
	Config  string
	Journal string
	Dir     string
}

// StatsResult aggregates journal counts and, when a corpus directory
// is given, the on-disk view of it.
type StatsResult struct {
	Journal   *store.Counts `json:"journal,omitempty"`
	DirFiles  int           `json:"dir_files,omitempty"`
	DirBytes  int64         `json:"dir_bytes,omitempty"`
	CorpusDir string        `json:"corpus_dir,omitempty"`
}

// NewStatsCommand creates the stats command.
func NewStatsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &StatsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Summarize a campaign's corpus",
		Long: `Summarize the campaign journal and, with --dir, the on-disk corpus:
entry counts, event counts, byte totals, and an input-size histogram.

Examples:
  karst stats --journal karst.db
  karst stats --journal karst.db --dir ./corpus
  karst stats --config campaign.yaml --format json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStats(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Config, "config", "", "campaign config file")
	cmd.Flags().StringVar(&opts.Journal, "journal", "", "journal database path (overrides config)")
	cmd.Flags().StringVar(&opts.Dir, "dir", "", "corpus directory to size up")

	return cmd
}

func runStats(opts *StatsOptions, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	campaign, err := resolveOptionalCampaign(opts.Config)
	if err != nil {
		return err
	}
	journalPath := opts.Journal
	if journalPath == "" && campaign != nil {
		journalPath = campaign.Journal
	}
	dir := opts.Dir
	if dir == "" && campaign != nil {
		dir = campaign.CorpusDir
	}
	if journalPath == "" && dir == "" {
		return NewExitError(ExitCommandError, "nothing to summarize: pass --journal, --dir, or a config")
	}

	result := StatsResult{}

	if journalPath != "" {
		journal, err := store.Open(journalPath)
		if err != nil {
			return WrapExitError(ExitCommandError, "opening journal", err)
		}
		defer journal.Close()

		counts, err := journal.CountAll(context.Background())
		if err != nil {
			return WrapExitError(ExitCommandError, "reading journal", err)
		}
		result.Journal = &counts
	}

	var sizes *ghistogram.Histogram
	if dir != "" {
		result.CorpusDir = dir
		sizes = ghistogram.NewNamedHistogram("InputSizes(B) ", 10, 4, 4)

		files, err := scanInputFiles(dir)
		if err != nil {
			return WrapExitError(ExitCommandError, "scanning corpus directory", err)
		}
		for _, file := range files {
			fi, err := os.Stat(file)
			if err != nil {
				return WrapExitError(ExitCommandError, fmt.Sprintf("sizing %q", file), err)
			}
			sizes.Add(uint64(fi.Size()), 1)
			result.DirFiles++
			result.DirBytes += fi.Size()
		}
	}

	if opts.Format == "json" {
		return formatter.Success(result)
	}

	if result.Journal != nil {
		fmt.Fprintf(formatter.Writer, "journal: %d testcase(s), %d bytes\n",
			result.Journal.Testcases, result.Journal.TotalBytes)
		fmt.Fprintf(formatter.Writer, "events:  %d add(s), %d load(s), %d remove(s)\n",
			result.Journal.Adds, result.Journal.Loads, result.Journal.Removes)
	}
	if sizes != nil {
		fmt.Fprintf(formatter.Writer, "corpus dir: %s, %d file(s), %d bytes\n",
			result.CorpusDir, result.DirFiles, result.DirBytes)
		fmt.Fprintln(formatter.Writer, sizes.EmitGraph(nil, nil).String())
	}
	return nil
}

// resolveOptionalCampaign loads a config when one was named, quietly
// returning nil otherwise.
func resolveOptionalCampaign(configPath string) (*config.Campaign, error) {
	if configPath == "" {
		return nil, nil
	}
	c, err := resolveCampaign(configPath, "", "", 0)
	if err != nil {
		return nil, err
	}
	return c, nil
}
