package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/karstfuzz/karst/internal/config"
)

// ValidateOptions holds flags for the validate command.
type ValidateOptions struct {
	*RootOptions
	Config string
}

// ValidationResult reports the outcome of config validation.
type ValidationResult struct {
	Valid     bool   `json:"valid"`
	CorpusDir string `json:"corpus_dir,omitempty"`
	Scheduler string `json:"scheduler,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ValidateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate a campaign config",
		Long: `Validate a campaign config file against the schema without running
anything.

Examples:
  karst validate --config campaign.yaml
  karst validate --config campaign.yaml --format json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Config, "config", "", "campaign config file (required)")
	_ = cmd.MarkFlagRequired("config")

	return cmd
}

func runValidate(opts *ValidateOptions, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	campaign, err := config.Load(opts.Config)
	if err != nil {
		code := "C000"
		var le *config.LoadError
		if errors.As(err, &le) {
			code = le.Code
		}
		_ = formatter.Error(code, err.Error(), nil)
		return NewExitError(ExitFailure, "config is invalid")
	}

	result := ValidationResult{
		Valid:     true,
		CorpusDir: campaign.CorpusDir,
		Scheduler: campaign.Scheduler,
	}
	if opts.Format == "json" {
		return formatter.Success(result)
	}
	fmt.Fprintf(formatter.Writer, "%s is valid (corpus_dir=%s, scheduler=%s)\n",
		opts.Config, campaign.CorpusDir, campaign.Scheduler)
	return nil
}
