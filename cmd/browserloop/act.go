package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kamilturan/browserloop"
)

func newActCmd() *cobra.Command {
	var startURL string

	cmd := &cobra.Command{
		Use:   "act <instruction>",
		Short: "Drive a single natural-language action to completion",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := buildConfig(cmd)
			if err != nil {
				return err
			}

			ctx := context.Background()
			sess, err := browserloop.NewSession(ctx, cfg)
			if err != nil {
				return err
			}
			defer sess.Close()

			if startURL != "" {
				if err := sess.Goto(startURL); err != nil {
					return err
				}
			}

			result, err := sess.Act(ctx, args[0])
			if err != nil {
				return err
			}
			return printJSON(result)
		},
	}

	cmd.Flags().StringVar(&startURL, "url", "", "navigate here before acting")
	return cmd
}

func printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
