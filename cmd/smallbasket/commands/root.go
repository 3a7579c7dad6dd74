// Package commands holds the smallbasket command tree.
package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"smallbasket/internal/agent"
	"smallbasket/internal/config"
	"smallbasket/internal/logging"
	"smallbasket/internal/services"
)

var (
	configPath string
	logLevel   string
	jsonOutput bool

	appCtx *agent.Agent
)

// Execute runs the root command. Failures are printed to stderr in the
// wording shown to users.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := newRootCmd().ExecuteContext(ctx)
	if appCtx != nil {
		_ = appCtx.Close()
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, errorText(err))
	}
	return err
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "smallbasket",
		Short:         "SmallBasket delivery marketplace agent and client",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if logLevel != "" {
				cfg.Log.Level = logLevel
			}
			logger, err := logging.New(cfg.Log)
			if err != nil {
				return err
			}
			if cmd.Name() != "agent" && logLevel == "" {
				logger.SetLevel(logrus.WarnLevel)
			}

			appCtx, err = agent.New(cmd.Context(), cfg, logger)
			return err
		},
	}

	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML config file")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (overrides config)")
	root.PersistentFlags().BoolVar(&jsonOutput, "json", false, "print raw JSON")

	root.AddCommand(
		agentCmd(),
		ordersCmd(),
		profileCmd(),
		statsCmd(),
		areasCmd(),
		nearbyCmd(),
		reachableCmd(),
		locationCmd(),
		rateCmd(),
		notificationsCmd(),
		tokenCmd(),
	)
	return root
}

func errorText(err error) string {
	var f *services.Failure
	if errors.As(err, &f) {
		return f.Message
	}
	return err.Error()
}
