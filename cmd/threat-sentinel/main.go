package main

import (
	"fmt"
	"os"

	"threat-sentinel/internal/utils"

	"github.com/prometheus/common/version"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var configFile string

var rootCmd = &cobra.Command{
	Use:           "threat-sentinel",
	Short:         "Instruction detection for text and threat classification for a synthetic packet stream",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print build information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), version.Print("threat-sentinel"))
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", utils.DefaultConfigFile, "Configuration file path (YAML)")
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(versionCmd)
}

func loadConfig() (*utils.Config, *logrus.Logger, error) {
	config, err := utils.LoadConfigOrDefault(configFile)
	if err != nil {
		return nil, nil, err
	}

	logger, err := utils.NewLoggerFromConfig(config.Logging)
	if err != nil {
		return nil, nil, err
	}
	return config, logger, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
