// Package openai adapts OpenAI-compatible APIs (embeddings and chat
// completions) to the search engine's ports.
package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	openai "github.com/sashabaranov/go-openai"

	"github.com/kailas-cloud/talentsearch/internal/domain"
)

func newClient(apiKey, baseURL string) *openai.Client {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return openai.NewClientWithConfig(cfg)
}

func healthCheck(ctx context.Context, client *openai.Client) error {
	if _, err := client.ListModels(ctx); err != nil {
		return fmt.Errorf("list models: %w", err)
	}
	return nil
}

// parseAPIError extracts a human-readable error from the API response and
// wraps it with the given sentinel. HTTP 429 additionally wraps
// domain.ErrRateLimited.
func parseAPIError(api string, err, wrap error) error {
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		detail := extractDetail(reqErr.Body)
		if detail == "" {
			detail = string(reqErr.Body)
		}
		return statusError(api, reqErr.HTTPStatusCode, detail, wrap)
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return statusError(api, apiErr.HTTPStatusCode, apiErr.Message, wrap)
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s request: %w: %w", api, wrap, err)
	}
	return fmt.Errorf("%s request failed: %w", api, wrap)
}

func statusError(api string, status int, detail string, wrap error) error {
	if status == http.StatusTooManyRequests {
		return fmt.Errorf("%s API error %d: %s: %w: %w", api, status, detail, wrap, domain.ErrRateLimited)
	}
	return fmt.Errorf("%s API error %d: %s: %w", api, status, detail, wrap)
}

// extractDetail reads the "detail" field of a JSON error body (Nebius format).
func extractDetail(body []byte) string {
	var parsed struct {
		Detail string `json:"detail"`
	}
	if json.Unmarshal(body, &parsed) == nil && parsed.Detail != "" {
		return parsed.Detail
	}
	return ""
}
