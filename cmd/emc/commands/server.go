package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/emc/cmd/emc/handlers"
)

// Launch returns the launch command.
func Launch(g *handlers.Globals) *cobra.Command {
	var opts handlers.LaunchOptions

	cmd := &cobra.Command{
		Use:   "launch NAME",
		Short: "Launch a new game server",
		Long: `Launch creates a Hetzner Cloud server that starts a Minecraft container
on boot and records it in the local registry under NAME.

The estimated cost for the server type is shown first and must be
confirmed. Without a terminal, pass --yes.

Example:
  emc launch survival --type cx42 --ops alice,bob --ddns mc.example.com`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Name = args[0]
			return handlers.Launch(cmd.Context(), *g, opts)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.Region, "region", "r", "", "Hetzner location (default from config: fsn1)")
	f.StringVarP(&opts.InstanceType, "type", "t", "", "Server type (default from config: cx32)")
	f.StringVar(&opts.Image, "image", "", "Image name (default from config: docker-ce)")
	f.StringVar(&opts.DDNS, "ddns", "", "Link the server to this DDNS entry")
	f.StringVar(&opts.Memory, "memory", "", "JVM heap size, e.g. 6G (default derived from the server type)")
	f.StringVar(&opts.MOTD, "motd", "", "Server list message")
	f.StringVar(&opts.Icon, "icon", "", "Server list icon URL")
	f.StringSliceVar(&opts.Ops, "ops", nil, "Player names granted operator rights")
	f.BoolVarP(&opts.Yes, "yes", "y", false, "Skip the cost confirmation")

	return cmd
}

// List returns the list command.
func List(g *handlers.Globals) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List tracked servers",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.List(cmd.Context(), *g)
		},
	}
}

// Info returns the info command.
func Info(g *handlers.Globals) *cobra.Command {
	var refresh, jsonOutput bool

	cmd := &cobra.Command{
		Use:   "info NAME",
		Short: "Show a tracked server",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return handlers.Info(cmd.Context(), *g, args[0], refresh, jsonOutput)
		},
	}

	cmd.Flags().BoolVar(&refresh, "refresh", false, "Query the provider for the current address first")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")

	return cmd
}

// Terminate returns the terminate command.
func Terminate(g *handlers.Globals) *cobra.Command {
	return &cobra.Command{
		Use:     "terminate NAME",
		Aliases: []string{"rm"},
		Short:   "Delete a server and forget it",
		Long: `Terminate removes NAME from the registry and deletes the server and its
SSH key. A linked DDNS entry is pointed at 127.0.0.1.

Save the world first with "emc mc save NAME"; it is gone afterwards.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return handlers.Terminate(cmd.Context(), *g, args[0])
		},
	}
}
