// Package main implements searchctl, a command line client for indexing
// candidate corpora and running progressive searches.
package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/kailas-cloud/talentsearch"
	"github.com/kailas-cloud/talentsearch/internal/corpus"
	logpkg "github.com/kailas-cloud/talentsearch/internal/logger"
)

// globalOptions are the connection flags shared by every subcommand.
type globalOptions struct {
	redisAddr      string
	redisPassword  string
	apiKey         string
	baseURL        string
	embeddingModel string
	dimensions     int
	vocabulary     string
	logLevel       string
}

func newRootCmd(out io.Writer) *cobra.Command {
	opts := &globalOptions{}

	root := &cobra.Command{
		Use:           "searchctl",
		Short:         "Index candidates and run progressive searches",
		Long:          "searchctl loads candidate corpora into Redis and streams the instant, enhanced and intelligent stages of a search to the terminal.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(out)

	f := root.PersistentFlags()
	f.StringVar(&opts.redisAddr, "redis", os.Getenv("REDIS_ADDR"), "Redis address; empty searches an in-memory corpus")
	f.StringVar(&opts.redisPassword, "password", os.Getenv("REDIS_PASSWORD"), "Redis password")
	f.StringVar(&opts.apiKey, "api-key", os.Getenv("OPENAI_API_KEY"), "OpenAI-compatible API key")
	f.StringVar(&opts.baseURL, "base-url", os.Getenv("OPENAI_BASE_URL"), "OpenAI-compatible base URL")
	f.StringVar(&opts.embeddingModel, "embedding-model", os.Getenv("EMBEDDING_MODEL"), "Embedding model; empty disables semantic search")
	f.IntVar(&opts.dimensions, "dimensions", 1536, "Embedding vector dimensions")
	f.StringVar(&opts.vocabulary, "vocabulary", "", "Path to a skill vocabulary YAML file")
	f.StringVar(&opts.logLevel, "log-level", "", "Log level override (debug, info, warn, error)")

	root.AddCommand(newIndexCmd(opts), newQueryCmd(opts))
	return root
}

// clientOptions translates the global flags into SDK options. Redis mode is
// selected by a non-empty --redis.
func (o *globalOptions) clientOptions() ([]talentsearch.Option, error) {
	logger, err := logpkg.NewLogger("cli", o.logLevel)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	opts := []talentsearch.Option{talentsearch.WithLogger(logger)}
	if o.redisAddr != "" {
		opts = append(opts, talentsearch.WithRedis(o.redisAddr, o.redisPassword))
		if o.embeddingModel != "" {
			opts = append(opts, talentsearch.WithOpenAI(o.apiKey, o.baseURL, o.embeddingModel, o.dimensions))
		}
	}
	if o.vocabulary != "" {
		opts = append(opts, talentsearch.WithVocabularyFile(o.vocabulary))
	}
	return opts, nil
}

// loadCandidates reads a corpus file and converts it to SDK candidates.
func loadCandidates(path, scope string) (string, []talentsearch.Candidate, error) {
	c, err := corpus.Load(path, scope)
	if err != nil {
		return "", nil, err
	}
	out := make([]talentsearch.Candidate, len(c.Candidates))
	for i := range c.Candidates {
		d := &c.Candidates[i]
		out[i] = talentsearch.Candidate{
			ID:              d.ID(),
			Name:            d.Name(),
			Title:           d.Title(),
			Summary:         d.Summary(),
			Resume:          d.RawText(),
			Location:        d.Location(),
			Skills:          d.Skills(),
			YearsExperience: d.YearsExperience(),
		}
	}
	return c.Scope, out, nil
}

func newClient(ctx context.Context, o *globalOptions) (*talentsearch.Client, error) {
	opts, err := o.clientOptions()
	if err != nil {
		return nil, err
	}
	c, err := talentsearch.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}
	return c, nil
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
