package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/emc/cmd/emc/handlers"
)

// DDNS returns the ddns command group.
func DDNS(g *handlers.Globals) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ddns",
		Short: "Manage dynamic DNS entries",
	}

	cmd.AddCommand(ddnsAdd(g))
	cmd.AddCommand(&cobra.Command{
		Use:   "remove DOMAIN",
		Short: "Remove a DDNS entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return handlers.DDNSRemove(cmd.Context(), *g, args[0])
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List DDNS entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.DDNSList(cmd.Context(), *g)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "link NAME DOMAIN",
		Short: "Point a DDNS entry at a server",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return handlers.DDNSLink(cmd.Context(), *g, args[0], args[1])
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "unlink NAME",
		Short: "Remove the DDNS link of a server",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return handlers.DDNSUnlink(cmd.Context(), *g, args[0])
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "update NAME",
		Short: "Push the current address of a server to its DDNS entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return handlers.DDNSUpdate(cmd.Context(), *g, args[0])
		},
	})
	cmd.AddCommand(ddnsCheck(g))

	return cmd
}

func ddnsAdd(g *handlers.Globals) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a DDNS entry",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "custom DOMAIN URL",
		Short: "Add an entry updated through a URL template",
		Long: `Every 0.0.0.0 in URL is replaced with the server address and the
result is requested with GET.

Example:
  emc ddns add custom mc.example.com 'https://dyn.example.com/update?host=mc&ip=0.0.0.0'`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return handlers.DDNSAdd(cmd.Context(), *g, handlers.DDNSAddOptions{
				Provider: handlers.ProviderCustom, Domain: args[0], URL: args[1],
			})
		},
	})

	var password string
	namecheap := &cobra.Command{
		Use:   "namecheap DOMAIN",
		Short: "Add a namecheap dynamic DNS entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return handlers.DDNSAdd(cmd.Context(), *g, handlers.DDNSAddOptions{
				Provider: handlers.ProviderNamecheap, Domain: args[0], Password: password,
			})
		},
	}
	namecheap.Flags().StringVar(&password, "password", "", "Dynamic DNS password from the namecheap dashboard (required)")
	_ = namecheap.MarkFlagRequired("password")
	cmd.AddCommand(namecheap)

	var record string
	cf := &cobra.Command{
		Use:   "cloudflare DOMAIN",
		Short: "Add an entry updated through the Cloudflare API",
		Long: `The A/AAAA records of DOMAIN (or --record) are replaced with the server
address. CLOUDFLARE_API_TOKEN must hold a token with DNS edit rights.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return handlers.DDNSAdd(cmd.Context(), *g, handlers.DDNSAddOptions{
				Provider: handlers.ProviderCloudflare, Domain: args[0], Record: record,
			})
		},
	}
	cf.Flags().StringVar(&record, "record", "", "Record name to update (default: DOMAIN)")
	cmd.AddCommand(cf)

	return cmd
}

func ddnsCheck(g *handlers.Globals) *cobra.Command {
	var server string

	cmd := &cobra.Command{
		Use:   "check DOMAIN",
		Short: "Resolve a DDNS entry and compare it with its servers",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return handlers.DDNSCheck(cmd.Context(), *g, args[0], server)
		},
	}
	cmd.Flags().StringVar(&server, "server", "", "DNS server to ask, host:port (default from config: 1.1.1.1:53)")

	return cmd
}
