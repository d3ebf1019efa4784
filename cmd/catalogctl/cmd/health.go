package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newHealthCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check that a catalog server is ready",
		Long:  `Query the readiness probe of the first server that answers.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := opts.client()
			if err != nil {
				return err
			}

			status, err := client.Health(cmd.Context())
			if err != nil {
				return fmt.Errorf("catalog not ready: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s (instance %s, store %s)\n",
				status.Status, status.InstanceID, status.Store)
			return nil
		},
	}
}
