package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Execute runs the root command. It is called by main.main().
func Execute() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "server",
		Short: "DevEvent server - developer event listings and bookings",
		Long: `DevEvent server publishes developer events and records email bookings.

Configuration comes from environment variables; a .env file is read outside
production. DATABASE_URL is required.`,
		SilenceUsage: true,
	}
	serve := newServeCommand()
	// Run serve when no subcommand is given.
	root.RunE = serve.RunE
	root.Flags().AddFlagSet(serve.Flags())

	root.AddCommand(serve)
	root.AddCommand(newMigrateCommand())
	return root
}
