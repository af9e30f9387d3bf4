package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/talentsearch"
)

type queryOptions struct {
	corpusPath string
	scope      string
	limit      int
	location   string
	minYears   float64
	maxYears   float64
	jsonOutput bool
	timeout    time.Duration
}

func newQueryCmd(global *globalOptions) *cobra.Command {
	opts := &queryOptions{}

	cmd := &cobra.Command{
		Use:   "query <text>",
		Short: "Run a progressive search and print every stage",
		Long:  "Runs a search against Redis, or against an in-memory corpus when --redis is empty, and prints each stage as it arrives.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(cmd, global, opts, strings.Join(args, " "))
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.corpusPath, "corpus", "c", "", "Corpus YAML file to search in memory (required without --redis)")
	f.StringVarP(&opts.scope, "scope", "s", "", "User scope (defaults to the corpus scope)")
	f.IntVarP(&opts.limit, "limit", "n", 10, "Results per stage (1-50)")
	f.StringVar(&opts.location, "location", "", "Location filter")
	f.Float64Var(&opts.minYears, "min-years", 0, "Minimum years of experience")
	f.Float64Var(&opts.maxYears, "max-years", 0, "Maximum years of experience")
	f.BoolVar(&opts.jsonOutput, "json", false, "Print one JSON object per stage")
	f.DurationVar(&opts.timeout, "timeout", 30*time.Second, "Overall search timeout")
	return cmd
}

func runQuery(cmd *cobra.Command, global *globalOptions, opts *queryOptions, text string) error {
	if global.redisAddr == "" && opts.corpusPath == "" {
		return errors.New("either --redis or --corpus is required")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client, err := newClient(ctx, global)
	if err != nil {
		return err
	}
	defer client.Close()

	scope := opts.scope
	if opts.corpusPath != "" && global.redisAddr == "" {
		corpusScope, cands, err := loadCandidates(opts.corpusPath, scope)
		if err != nil {
			return fmt.Errorf("failed to load corpus: %w", err)
		}
		if err := client.Index(ctx, corpusScope, cands); err != nil {
			return fmt.Errorf("failed to load corpus: %w", err)
		}
		scope = corpusScope
	}

	params := talentsearch.SearchParams{
		Query:     text,
		Limit:     opts.limit,
		UserScope: scope,
		Location:  opts.location,
	}
	if cmd.Flags().Changed("min-years") {
		params.MinYears = &opts.minYears
	}
	if cmd.Flags().Changed("max-years") {
		params.MaxYears = &opts.maxYears
	}

	searchCtx, cancel := context.WithTimeout(ctx, opts.timeout)
	defer cancel()

	stream, err := client.Search(searchCtx, params)
	if err != nil {
		return err
	}

	printer := newStagePrinter(cmd.OutOrStdout(), opts.jsonOutput)
	var delivered int
	for st := range stream.All() {
		delivered++
		if err := printer.Print(&st); err != nil {
			return fmt.Errorf("failed to print stage: %w", err)
		}
	}
	if err := searchCtx.Err(); err != nil && delivered < 3 {
		return fmt.Errorf("search ended after %d of 3 stages: %w", delivered, err)
	}
	return nil
}
