package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/emc/cmd/emc/handlers"
)

// SSH returns the ssh command.
func SSH(g *handlers.Globals) *cobra.Command {
	return &cobra.Command{
		Use:   "ssh NAME",
		Short: "Open a shell on a server",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return handlers.SSH(cmd.Context(), *g, args[0])
		},
	}
}

// Exec returns the exec command.
func Exec(g *handlers.Globals) *cobra.Command {
	return &cobra.Command{
		Use:   "exec NAME -- COMMAND [ARGS...]",
		Short: "Run a command on a server",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return handlers.Exec(cmd.Context(), *g, args[0], args[1:])
		},
	}
}

// MC returns the mc command group controlling the game service.
func MC(g *handlers.Globals) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mc",
		Short: "Control the Minecraft service on a server",
	}

	actions := []struct {
		name  string
		short string
	}{
		{handlers.MCStatus, "Show the service status"},
		{handlers.MCStart, "Start the service"},
		{handlers.MCStop, "Stop the service"},
		{handlers.MCRestart, "Restart the service"},
		{handlers.MCConsole, "Attach to the server console"},
		{handlers.MCSave, "Download the world archive"},
	}
	for _, a := range actions {
		action := a.name
		cmd.AddCommand(&cobra.Command{
			Use:   action + " NAME",
			Short: a.short,
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return handlers.MC(cmd.Context(), *g, args[0], action)
			},
		})
	}

	return cmd
}
