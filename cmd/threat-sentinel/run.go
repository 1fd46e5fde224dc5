package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"threat-sentinel/internal/app"
	"threat-sentinel/internal/supervisor"

	"github.com/prometheus/common/version"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the packet stream, classify each tick and print alerts",
	RunE: func(cmd *cobra.Command, args []string) error {
		config, logger, err := loadConfig()
		if err != nil {
			return err
		}

		sentinel, err := app.New(config, logger)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "\n=============== THREAT SENTINEL %s ===============\n\n", version.Version)
		logger.Infof("Tick interval: %v, event window: %d, alert window: %d",
			config.Stream.TickInterval(), config.Stream.EventWindow, config.Stream.AlertWindow)
		for _, rule := range sentinel.Engine.Rules() {
			logger.Infof("Rule %d: %s (enabled: %v)", rule.Priority, rule.Name, rule.Enabled)
		}

		tree := supervisor.NewTree(logger, supervisor.DefaultTreeConfig())
		sentinel.AddServices(tree, out)

		err = tree.Serve(ctx)
		sentinel.Scheduler.Stop()

		final := sentinel.Processor.Stats()
		fmt.Fprintf(out, "\nStopped after %d events, %d alerts\n", final.ItemsProcessed, final.AlertsRaised)

		if err != nil && ctx.Err() == nil {
			return err
		}
		return nil
	},
}
