package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/kamilturan/browserloop"
)

func newObserveCmd() *cobra.Command {
	var startURL, instruction string
	var useVision, fullPage bool

	cmd := &cobra.Command{
		Use:   "observe",
		Short: "List interactive elements currently on the page",
		Args:  cobra.NoArgs,
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

			results, err := sess.Observe(ctx,
				browserloop.WithObserveInstruction(instruction),
				browserloop.WithObserveVision(useVision),
				browserloop.WithObserveFullPage(fullPage),
			)
			if err != nil {
				return err
			}
			return printJSON(results)
		},
	}

	cmd.Flags().StringVar(&startURL, "url", "", "navigate here before observing")
	cmd.Flags().StringVar(&instruction, "instruction", "", "what to look for; defaults to every element")
	cmd.Flags().BoolVar(&useVision, "vision", false, "use a screenshot pass")
	cmd.Flags().BoolVar(&fullPage, "full-page", false, "serialize the whole page instead of one chunk")
	return cmd
}
