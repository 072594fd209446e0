package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/danmuck/sonicctl/internal/logging"
)

func main() {
	logging.ConfigureRuntime()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "sonicctl: %v\n", err)
		os.Exit(1)
	}
}

type rootFlags struct {
	configPath    string
	inventoryPath string
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}
	cmd := &cobra.Command{
		Use:           "sonicctl",
		Short:         "Reconcile switch configuration from desired-state documents",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&flags.configPath, "config", "", "Service config file (TOML)")
	cmd.PersistentFlags().StringVar(&flags.inventoryPath, "inventory", "", "Device inventory file, overrides the config value")

	cmd.AddCommand(
		newRunCmd(flags, "plan", "Show the requests a document would send", true),
		newRunCmd(flags, "apply", "Apply a document to one or more devices", false),
		newServeCmd(flags),
		newResourcesCmd(),
		newInitCmd(),
	)
	return cmd
}

func (f *rootFlags) load() (serviceConfig, error) {
	cfg, err := loadServiceConfig(f.configPath)
	if err != nil {
		return serviceConfig{}, err
	}
	if f.inventoryPath != "" {
		cfg.Inventory = f.inventoryPath
	}
	return cfg, nil
}
