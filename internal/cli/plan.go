package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/karstfuzz/karst/internal/config"
	"github.com/karstfuzz/karst/internal/corpus"
	"github.com/karstfuzz/karst/internal/rand"
)

// PlanOptions holds flags for the plan command.
type PlanOptions struct {
	*RootOptions
	Config    string
	Dir       string
	Scheduler string
	Seed      uint64
	Picks     int
}

// Pick is one scheduled selection in the preview.
type Pick struct {
	Pick  int    `json:"pick"`
	Index int    `json:"index"`
	Cycle uint64 `json:"cycle"`
	File  string `json:"file"`
}

// NewPlanCommand creates the plan command.
func NewPlanCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &PlanOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Preview scheduler traversal order",
		Long: `Preview which testcases the scheduler would pick, in order,
without executing anything.

Entries are the files of the corpus directory in sorted order. The
queue scheduler walks them round-robin and reports cycle boundaries;
the random scheduler draws from the seeded source, so the preview is
reproducible.

Examples:
  karst plan --dir ./corpus --picks 8
  karst plan --config campaign.yaml
  karst plan --dir ./corpus --scheduler random --seed 7`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlan(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Config, "config", "", "campaign config file")
	cmd.Flags().StringVar(&opts.Dir, "dir", "", "corpus directory (overrides config)")
	cmd.Flags().StringVar(&opts.Scheduler, "scheduler", "", "queue or random (overrides config)")
	cmd.Flags().Uint64Var(&opts.Seed, "seed", 0, "randomness seed (overrides config)")
	cmd.Flags().IntVar(&opts.Picks, "picks", 10, "number of picks to preview")

	return cmd
}

func runPlan(opts *PlanOptions, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	campaign, err := resolveCampaign(opts.Config, opts.Dir, "", 0)
	if err != nil {
		return err
	}
	scheduler := campaign.Scheduler
	if opts.Scheduler != "" {
		scheduler = opts.Scheduler
	}
	seed := campaign.Seed
	if cmd.Flags().Changed("seed") {
		seed = opts.Seed
	}

	c, err := buildScheduled(campaign.CorpusDir, scheduler)
	if err != nil {
		return err
	}
	if c.Count() == 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("corpus directory %q holds no entries", campaign.CorpusDir))
	}

	src := rand.NewStdSource(seed)
	picks := make([]Pick, 0, opts.Picks)
	for i := 0; i < opts.Picks; i++ {
		tc, idx, err := c.Next(src)
		if err != nil {
			return WrapExitError(ExitFailure, "scheduling next pick", err)
		}
		picks = append(picks, Pick{
			Pick:  i + 1,
			Index: idx,
			Cycle: cycleOf(c),
			File:  filepath.Base(tc.Filename()),
		})
	}

	if opts.Format == "json" {
		return formatter.Success(picks)
	}
	fmt.Fprintf(formatter.Writer, "schedule preview (%s, %d entries):\n", scheduler, c.Count())
	for _, p := range picks {
		fmt.Fprintf(formatter.Writer, "pick %2d: idx=%d cycle=%d file=%s\n", p.Pick, p.Index, p.Cycle, p.File)
	}
	return nil
}

// buildScheduled lists the corpus directory and wraps the entries in
// the selected scheduler. Entries stay unloaded; planning never reads
// input bytes.
func buildScheduled(dir, scheduler string) (corpus.Corpus, error) {
	files, err := scanInputFiles(dir)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "scanning corpus directory", err)
	}

	backend, err := corpus.NewOnDisk(dir)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "opening corpus directory", err)
	}
	for _, file := range files {
		if err := backend.Add(corpus.WithFilename(file)); err != nil {
			return nil, WrapExitError(ExitCommandError, fmt.Sprintf("adding %q", file), err)
		}
	}

	switch scheduler {
	case config.SchedulerRandom:
		return backend, nil
	case config.SchedulerQueue, "":
		return corpus.NewQueue(backend), nil
	default:
		return nil, NewExitError(ExitCommandError, fmt.Sprintf("unknown scheduler %q", scheduler))
	}
}

// cycleOf reads the cycle counter when the scheduler has one.
func cycleOf(c corpus.Corpus) uint64 {
	if q, ok := c.(*corpus.QueueCorpus); ok {
		return q.Cycles()
	}
	return 0
}
