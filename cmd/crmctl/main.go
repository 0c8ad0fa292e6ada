// Command crmctl is the operator CLI: demo data, offline imports and user
// administration against the configured database.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

type rootOptions struct {
	logLevel string
	tenant   string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:           "crmctl",
		Short:         "Operate the CRM backend from the command line",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&opts.tenant, "tenant", "", "tenant id (default: the development tenant)")

	root.AddCommand(
		newSeedCmd(opts),
		newImportCmd(opts),
		newUserCmd(opts),
	)
	return root
}
