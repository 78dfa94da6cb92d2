package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/emc/cmd/emc/handlers"
)

// Registry returns the registry command group.
func Registry(g *handlers.Globals) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "registry",
		Short: "Inspect and back up the local registry",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Print the registry location",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return handlers.RegistryPath()
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "backup",
		Short: "Upload the registry to the configured S3 bucket",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.RegistryBackup(cmd.Context(), *g)
		},
	})

	var key string
	restore := &cobra.Command{
		Use:   "restore",
		Short: "Replace the registry with the copy in the S3 bucket",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.RegistryRestore(cmd.Context(), *g, key)
		},
	}
	restore.Flags().StringVar(&key, "key", "", "Restore this snapshot key instead of the latest copy")
	cmd.AddCommand(restore)

	return cmd
}
