package commands

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	domain "github.com/vsinha/vantax/pkg/domain/services"
	"github.com/vsinha/vantax/pkg/infrastructure/repositories/csv"
	"github.com/vsinha/vantax/pkg/interfaces/cli"
	"github.com/vsinha/vantax/pkg/interfaces/cli/output"
)

// ErrInvalidScenario is returned by validate after the report is printed
var ErrInvalidScenario = errors.New("scenario has validation errors")

// ValidateConfig holds configuration for the validate command
type ValidateConfig struct {
	Scenario string
	Format   string
	Verbose  bool
}

func (c *ValidateConfig) opts() []cli.Opt {
	return []cli.Opt{
		cli.NewOpt(&c.Scenario, "scenario", "scenarios/demo", "directory of the CSV seed scenario"),
		cli.NewOpt(&c.Format, "format", "text", "output format: text, json or csv"),
		cli.NewOpt(&c.Verbose, "verbose", false, "list every warning"),
	}
}

// NewValidateCommand creates the validate command
func NewValidateCommand() *cobra.Command {
	cfg := &ValidateConfig{}
	opts := cfg.opts()
	v := cli.NewViper()

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Load a seed scenario, check its integrity and print a summary",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cli.Resolve(v, opts)
			return Validate(*cfg, cmd.OutOrStdout())
		},
	}
	cli.BindOptions(v, cmd, opts)
	return cmd
}

// Validate loads cfg.Scenario and writes its summary to w
func Validate(cfg ValidateConfig, w io.Writer) error {
	if cfg.Scenario == "" {
		return fmt.Errorf("scenario directory is required")
	}

	dataset, err := csv.NewLoader().LoadScenario(cfg.Scenario)
	if err != nil {
		return fmt.Errorf("error loading scenario: %w", err)
	}
	result := domain.ValidateDataset(dataset)

	summary := output.Summarize(cfg.Scenario, dataset, result)
	if err := output.Generate(w, summary, output.Config{Format: cfg.Format, Verbose: cfg.Verbose}); err != nil {
		return err
	}
	if !result.Valid() {
		return ErrInvalidScenario
	}
	return nil
}
