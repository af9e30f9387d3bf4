package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

func newIndexCmd(global *globalOptions) *cobra.Command {
	var (
		corpusPath string
		scope      string
	)

	cmd := &cobra.Command{
		Use:   "index",
		Short: "Load a candidate corpus into Redis",
		Long:  "Reads a corpus YAML file, embeds profiles when an embedding model is configured, and writes candidates and corpus statistics for one user scope.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if global.redisAddr == "" {
				return errors.New("--redis is required for index")
			}

			s, cands, err := loadCandidates(corpusPath, scope)
			if err != nil {
				return fmt.Errorf("failed to load corpus: %w", err)
			}

			ctx := cmd.Context()
			client, err := newClient(ctx, global)
			if err != nil {
				return err
			}
			defer client.Close()

			if err := client.Index(ctx, s, cands); err != nil {
				return fmt.Errorf("failed to index corpus: %w", err)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Indexed %d candidates for scope %q\n", len(cands), s)
			return nil
		},
	}

	cmd.Flags().StringVarP(&corpusPath, "corpus", "c", "", "Path to corpus YAML file (required)")
	cmd.Flags().StringVarP(&scope, "scope", "s", "", "User scope (overrides the corpus file)")
	if err := cmd.MarkFlagRequired("corpus"); err != nil {
		panic(fmt.Sprintf("failed to mark corpus flag as required: %v", err))
	}
	return cmd
}
