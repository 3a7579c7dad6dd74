package commands

import (
	"github.com/spf13/cobra"

	"smallbasket/internal/connectivity"
)

// agent: run connectivity reporting, location sync and the control API
// until interrupted.
func agentCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "agent",
		Short: "Run the background agent and local control API",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			manager := connectivity.Instance(appCtx.ConnectivityOptions(ctx))
			return appCtx.Run(ctx, manager)
		},
	}
}
