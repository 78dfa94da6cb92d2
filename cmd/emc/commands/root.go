// Package commands defines the CLI command structure and flag bindings.
//
// This package contains cobra command definitions that handle argument parsing,
// flag binding, and validation. Command execution is delegated to handler
// functions in the handlers package.
package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/emc/cmd/emc/handlers"
)

// Root returns the root command for the emc CLI.
func Root() *cobra.Command {
	g := &handlers.Globals{}

	cmd := &cobra.Command{
		Use:           "emc",
		Short:         "Ephemeral Minecraft servers on Hetzner Cloud",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := cmd.PersistentFlags()
	flags.StringVarP(&g.ConfigPath, "config", "c", "", "Path to configuration file (default: $XDG_CONFIG_HOME/emc/config.yaml)")
	flags.BoolVar(&g.DryRun, "dry-run", false, "Simulate cloud and DNS calls without changing anything")
	flags.BoolVarP(&g.Verbose, "verbose", "v", false, "Enable debug logging")
	flags.StringVar(&g.MetricsFile, "metrics-file", "", "Write Prometheus metrics to this file on exit")

	// Server lifecycle
	cmd.AddCommand(Launch(g))
	cmd.AddCommand(List(g))
	cmd.AddCommand(Info(g))
	cmd.AddCommand(Terminate(g))

	// Remote access
	cmd.AddCommand(SSH(g))
	cmd.AddCommand(Exec(g))
	cmd.AddCommand(MC(g))

	// Bookkeeping
	cmd.AddCommand(DDNS(g))
	cmd.AddCommand(Registry(g))
	cmd.AddCommand(Version())

	return cmd
}
