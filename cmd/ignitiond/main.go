// Command ignitiond runs the infrastructure-driver daemon: it exposes
// the create/delete/query/find infrastructure API over HTTP and, when
// configured, polls provisioning tasks in the background.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"ignition/internal/config"
	"ignition/internal/logging"
	"ignition/internal/server"
)

var version = "dev"

var configPath string

var rootCmd = &cobra.Command{
	Use:   "ignitiond",
	Short: "Infrastructure-driver service daemon",
	Long: `ignitiond serves the infrastructure create/delete/query/find API,
dispatching each request to a driver either synchronously, through a
request queue, or through asynchronous task monitoring, depending on
how the configuration file enables those modes.`,
	SilenceUsage: true,
	RunE:         runServe,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the ignitiond version",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Fprintf(cmd.OutOrStdout(), "ignitiond version %s\n", version)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "config.yaml", "path to the YAML configuration file")
	rootCmd.AddCommand(versionCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	logging.Init(os.Stderr)

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	app, err := server.New(cfg)
	if err != nil {
		return fmt.Errorf("bootstrap application: %w", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := config.Watch(ctx, configPath, func(reloaded config.Config) {
		if err := app.ApplyConfig(reloaded); err != nil {
			logging.Warn(ctx, "main", "configuration file changed but could not be applied: %v", err)
			return
		}
		logging.Info(ctx, "main", "configuration file changed; infrastructure_task_events topic is now %q (other settings still require a restart)", reloaded.Messaging.InfrastructureTaskEventsTopic)
	}); err != nil {
		logging.Warn(ctx, "main", "configuration hot-reload disabled: %v", err)
	}

	return app.Run(ctx)
}

func main() {
	rootCmd.Version = version
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
