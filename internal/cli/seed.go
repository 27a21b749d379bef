package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/karstfuzz/karst/internal/config"
	"github.com/karstfuzz/karst/internal/corpus"
	"github.com/karstfuzz/karst/internal/input"
	"github.com/karstfuzz/karst/internal/store"
)

// SeedOptions holds flags for the seed command.
type SeedOptions struct {
	*RootOptions
	Config  string
	Dir     string
	Journal string
	MaxSize int
	Origin  string
}

// SeedResult summarizes a seed import.
type SeedResult struct {
	CorpusDir  string `json:"corpus_dir"`
	Imported   int    `json:"imported"`
	Duplicates int    `json:"duplicates"`
	Oversize   int    `json:"oversize"`
	TotalBytes int64  `json:"total_bytes"`
}

// NewSeedCommand creates the seed command.
func NewSeedCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SeedOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "seed [files-or-dirs...]",
		Short: "Import seed inputs into an on-disk corpus",
		Long: `Import raw seed files into an on-disk corpus.

Each file becomes one testcase. Entries without a caller-assigned name
are persisted under id_<n> in the corpus directory. With a journal
configured, imports are idempotent per content hash: re-running seed
over the same files adds nothing.

Examples:
  karst seed --dir ./corpus ./seeds
  karst seed --config campaign.yaml ./seeds extra_seed.bin
  karst seed --dir ./corpus --journal karst.db ./seeds --format json`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(opts, cmd, args)
		},
	}

	cmd.Flags().StringVar(&opts.Config, "config", "", "campaign config file")
	cmd.Flags().StringVar(&opts.Dir, "dir", "", "corpus directory (overrides config)")
	cmd.Flags().StringVar(&opts.Journal, "journal", "", "journal database path (overrides config)")
	cmd.Flags().IntVar(&opts.MaxSize, "max-size", 0, "max seed size in bytes (overrides config)")
	cmd.Flags().StringVar(&opts.Origin, "origin", "seed", "origin annotation for imported entries")

	return cmd
}

// resolveCampaign merges config file and flag settings; flags win.
func resolveCampaign(configPath, dir, journal string, maxSize int) (*config.Campaign, error) {
	c := &config.Campaign{
		Scheduler:    config.SchedulerQueue,
		MaxInputSize: config.DefaultMaxInputSize,
	}
	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			return nil, WrapExitError(ExitFailure, "invalid campaign config", err)
		}
		c = loaded
	}
	if dir != "" {
		c.CorpusDir = dir
	}
	if journal != "" {
		c.Journal = journal
	}
	if maxSize > 0 {
		c.MaxInputSize = maxSize
	}
	if c.CorpusDir == "" {
		return nil, NewExitError(ExitCommandError, "corpus directory required: pass --dir or --config")
	}
	return c, nil
}

func runSeed(opts *SeedOptions, cmd *cobra.Command, args []string) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	campaign, err := resolveCampaign(opts.Config, opts.Dir, opts.Journal, opts.MaxSize)
	if err != nil {
		return err
	}

	files, err := scanInputFiles(args...)
	if err != nil {
		return WrapExitError(ExitCommandError, "scanning seed inputs", err)
	}

	c, err := corpus.NewOnDisk(campaign.CorpusDir)
	if err != nil {
		return WrapExitError(ExitCommandError, "opening corpus directory", err)
	}

	var journal *store.Store
	if campaign.Journal != "" {
		journal, err = store.Open(campaign.Journal)
		if err != nil {
			return WrapExitError(ExitCommandError, "opening journal", err)
		}
		defer journal.Close()
	}

	ctx := context.Background()
	result := SeedResult{CorpusDir: campaign.CorpusDir}

	for _, file := range files {
		data, err := os.ReadFile(file)
		if err != nil {
			return WrapExitError(ExitCommandError, fmt.Sprintf("reading seed %q", file), err)
		}
		if len(data) > campaign.MaxInputSize {
			formatter.VerboseLog("skipping %s: %d bytes exceeds max %d", file, len(data), campaign.MaxInputSize)
			result.Oversize++
			continue
		}

		tc := corpus.WithInput(input.Deserialize(data))
		tc.SetMeta(corpus.MetaOrigin, opts.Origin)

		hash, err := tc.ContentHash()
		if err != nil {
			return WrapExitError(ExitCommandError, fmt.Sprintf("hashing seed %q", file), err)
		}

		if journal != nil {
			known, err := journal.Has(ctx, hash)
			if err != nil {
				return WrapExitError(ExitCommandError, "querying journal", err)
			}
			if known {
				formatter.VerboseLog("skipping %s: content already journaled", file)
				result.Duplicates++
				continue
			}
		}

		if err := c.Add(tc); err != nil {
			return WrapExitError(ExitCommandError, fmt.Sprintf("adding seed %q", file), err)
		}
		result.Imported++
		result.TotalBytes += int64(len(data))
		formatter.VerboseLog("imported %s as %s", file, tc.Filename())

		if journal != nil {
			_, err := journal.RecordAdd(ctx, store.Record{
				ContentHash: hash,
				Handle:      tc.ID().String(),
				Filename:    tc.Filename(),
				Size:        int64(len(data)),
				Origin:      opts.Origin,
				Metadata:    tc.Metadata(),
			})
			if err != nil {
				return WrapExitError(ExitCommandError, "journaling seed", err)
			}
		}
	}

	if opts.Format == "json" {
		return formatter.Success(result)
	}
	fmt.Fprintf(formatter.Writer, "imported %d testcase(s) into %s (%d bytes)\n",
		result.Imported, result.CorpusDir, result.TotalBytes)
	if result.Duplicates > 0 {
		fmt.Fprintf(formatter.Writer, "skipped %d duplicate(s)\n", result.Duplicates)
	}
	if result.Oversize > 0 {
		fmt.Fprintf(formatter.Writer, "skipped %d oversize input(s)\n", result.Oversize)
	}
	return nil
}
