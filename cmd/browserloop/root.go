package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kamilturan/browserloop/internal/browser"
)

var (
	cfgFile     string
	flagEnv     string
	flagVerbose int
	flagModel   string
	flagHeadless bool
	flagConnectURL string
)

var rootCmd = &cobra.Command{
	Use:   "browserloop",
	Short: "Drive a browser through act/extract/observe, backed by an LLM.",
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default: none)")
	rootCmd.PersistentFlags().StringVar(&flagEnv, "env", string(browser.Local), "LOCAL or REMOTE")
	rootCmd.PersistentFlags().IntVar(&flagVerbose, "verbose", 0, "log verbosity (0, 1, or 2)")
	rootCmd.PersistentFlags().StringVar(&flagModel, "model", "gpt-4o-mini", "LLM model name")
	rootCmd.PersistentFlags().BoolVar(&flagHeadless, "headless", true, "run the browser headless")
	rootCmd.PersistentFlags().StringVar(&flagConnectURL, "connect-url", "", "CDP endpoint for REMOTE environment")

	rootCmd.AddCommand(newActCmd())
	rootCmd.AddCommand(newExtractCmd())
	rootCmd.AddCommand(newObserveCmd())
	rootCmd.AddCommand(newServeMetricsCmd())
}

