package main

import (
	"context"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/kamilturan/browserloop"
)

func newServeMetricsCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve-metrics",
		Short: "Open a session and serve its prometheus metrics over HTTP",
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

			mux := http.NewServeMux()
			mux.Handle("/metrics", sess.Metrics().Handler())
			return http.ListenAndServe(addr, mux)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":9090", "address to serve /metrics on")
	return cmd
}
