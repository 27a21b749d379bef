package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/karstfuzz/karst/internal/store"
)

// LsOptions holds flags for the ls command.
type LsOptions struct {
	*RootOptions
	Config  string
	Journal string
}

// NewLsCommand creates the ls command.
func NewLsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &LsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "ls",
		Short: "List journaled testcases",
		Long: `List every testcase the campaign journal knows about, in logical
add order.

Examples:
  karst ls --journal karst.db
  karst ls --config campaign.yaml --format json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLs(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Config, "config", "", "campaign config file")
	cmd.Flags().StringVar(&opts.Journal, "journal", "", "journal database path (overrides config)")

	return cmd
}

func runLs(opts *LsOptions, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	journalPath, err := resolveJournal(opts.Config, opts.Journal)
	if err != nil {
		return err
	}

	journal, err := store.Open(journalPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "opening journal", err)
	}
	defer journal.Close()

	list, err := journal.ListTestcases(context.Background())
	if err != nil {
		return WrapExitError(ExitCommandError, "reading journal", err)
	}

	if opts.Format == "json" {
		return formatter.Success(list)
	}

	if len(list) == 0 {
		fmt.Fprintln(formatter.Writer, "journal is empty")
		return nil
	}
	fmt.Fprintf(formatter.Writer, "%-5s %-14s %8s %-8s %s\n", "SEQ", "HASH", "SIZE", "ORIGIN", "FILENAME")
	for _, j := range list {
		fmt.Fprintf(formatter.Writer, "%-5d %-14s %8d %-8s %s\n",
			j.AddedSeq, shortHash(j.ContentHash), j.Size, j.Origin, j.Filename)
	}
	return nil
}

// resolveJournal merges config file and flag settings; the flag wins.
func resolveJournal(configPath, journal string) (string, error) {
	if journal != "" {
		return journal, nil
	}
	if configPath != "" {
		c, err := resolveCampaign(configPath, "", "", 0)
		if err != nil {
			return "", err
		}
		if c.Journal != "" {
			return c.Journal, nil
		}
	}
	return "", NewExitError(ExitCommandError, "journal required: pass --journal or a config with one")
}

// shortHash abbreviates a content hash for table output.
func shortHash(h string) string {
	if len(h) <= 12 {
		return h
	}
	return h[:12]
}
