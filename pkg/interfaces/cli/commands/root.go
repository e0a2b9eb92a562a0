// Package commands holds the vantax sub-commands.
package commands

import "github.com/spf13/cobra"

// NewRootCommand assembles the vantax command tree
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "vantax",
		Short:         "Multi-tenant trade promotion and sales analytics backend",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(NewServeCommand(), NewValidateCommand())
	return root
}
