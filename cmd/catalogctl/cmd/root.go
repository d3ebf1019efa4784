package cmd

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"sgci.io/catalog/sdk"
)

var (
	// Version information (set at build time via ldflags)
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

// defaultServer is used when neither --server nor CATALOG_SERVER is set.
const defaultServer = "http://localhost:8080"

// globalOptions holds the flags shared by every subcommand.
type globalOptions struct {
	servers []string
	timeout time.Duration
	retries int
}

// client builds an SDK client for the configured servers.
func (o *globalOptions) client() (*sdk.Client, error) {
	return sdk.NewClient(sdk.ClientConfig{
		BaseURLs:      o.servers,
		Timeout:       o.timeout,
		RetryAttempts: o.retries,
		UserAgent:     "catalogctl/" + Version,
	})
}

// NewRootCmd builds the catalogctl command tree.
func NewRootCmd() *cobra.Command {
	opts := &globalOptions{}

	root := &cobra.Command{
		Use:   "catalogctl",
		Short: "catalogctl - query the SGCI resource catalog",
		Long: `catalogctl queries an SGCI resource catalog server.

Resources are storage systems or compute clusters. Each one is printed with
the variant its payload resolved to. Several --server values may be given;
the client fails over between them.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	servers := defaultServer
	if env := os.Getenv("CATALOG_SERVER"); env != "" {
		servers = env
	}

	root.PersistentFlags().StringSliceVarP(&opts.servers, "server", "s", strings.Split(servers, ","),
		"catalog server URL (repeatable, env CATALOG_SERVER)")
	root.PersistentFlags().DurationVar(&opts.timeout, "timeout", 30*time.Second, "HTTP request timeout")
	root.PersistentFlags().IntVar(&opts.retries, "retries", 3, "retry attempts per server (negative disables)")

	root.AddCommand(newVersionCmd())
	root.AddCommand(newResourcesCmd(opts))
	root.AddCommand(newHealthCmd(opts))

	return root
}

// Execute runs the root command
func Execute() error {
	root := NewRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(root.ErrOrStderr(), "Error:", err)
		return err
	}
	return nil
}

// versionString returns formatted version information
func versionString() string {
	return fmt.Sprintf("catalogctl %s (commit: %s, built: %s)",
		Version, Commit, BuildDate)
}
