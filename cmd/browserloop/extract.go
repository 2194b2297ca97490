package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kamilturan/browserloop"
	"github.com/kamilturan/browserloop/internal/schema"
)

func newExtractCmd() *cobra.Command {
	var startURL, schemaPath string

	cmd := &cobra.Command{
		Use:   "extract <instruction>",
		Short: "Extract a schema-shaped value from the page",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := buildConfig(cmd)
			if err != nil {
				return err
			}

			sch, err := loadSchema(schemaPath)
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

			result, err := sess.Extract(ctx, args[0], sch)
			if err != nil {
				return err
			}
			return printJSON(result)
		},
	}

	cmd.Flags().StringVar(&startURL, "url", "", "navigate here before extracting")
	cmd.Flags().StringVar(&schemaPath, "schema", "", "path to a JSON file describing the schema.Schema")
	return cmd
}

func loadSchema(path string) (schema.Schema, error) {
	if path == "" {
		return schema.Field(schema.String, "the requested value"), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return schema.Schema{}, fmt.Errorf("read schema file: %w", err)
	}
	var sch schema.Schema
	if err := json.Unmarshal(data, &sch); err != nil {
		return schema.Schema{}, fmt.Errorf("parse schema file: %w", err)
	}
	return sch, nil
}
