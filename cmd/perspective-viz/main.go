package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/gilchrisn/perspective-viz/pkg/config"
)

var (
	cfgFile string
	verbose bool
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "perspective-viz",
		Short: "Layout engine for community perspectives",
		Long: `perspective-viz lays out the users of a clustering perspective around their
community medoids, colors them by explicit attributes and serves the
resulting scene over HTTP.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file path")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	root.AddCommand(newServeCmd())
	root.AddCommand(newLayoutCmd())
	return root
}

// loadConfig reads the optional config file and installs the global logger
func loadConfig() (*config.Config, error) {
	cfg := config.NewConfig()
	if cfgFile != "" {
		if err := cfg.LoadFromFile(cfgFile); err != nil {
			return nil, fmt.Errorf("loading config: %w", err)
		}
	}
	if verbose {
		cfg.Set("logging.level", "debug")
	}

	log.Logger = cfg.CreateLogger()
	return cfg, nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
