package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kamilturan/browserloop/internal/config"
)

// buildConfig loads a config.Config from (in increasing precedence)
// defaults, cfgFile, BROWSERLOOP_-prefixed env vars, and cmd's own flags,
// per SPEC_FULL.md §4.13.
func buildConfig(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return config.Config{}, err
	}
	if cfg.OpenAIAPIKey == "" {
		cfg.OpenAIAPIKey = os.Getenv("OPENAI_API_KEY")
	}
	if cfg.OpenAIAPIKey == "" {
		return config.Config{}, fmt.Errorf("OPENAI_API_KEY is not set")
	}
	return cfg, nil
}
