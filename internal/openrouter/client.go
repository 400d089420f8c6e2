// Package openrouter is a minimal client for the OpenRouter chat-completions
// API. It exposes a single-model query and a parallel fan-out over a set of
// models; callers above this package never see transport details, only a
// completion or its absence.
package openrouter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// DefaultTimeout bounds a single completion call unless the caller overrides it.
const DefaultTimeout = 120 * time.Second

// Message is one role/content turn sent to a model.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Completion carries the generated text of a successful call. ReasoningDetails
// is an opaque pass-through of whatever the model attached; it is kept as raw
// JSON so its internal ordering survives a round trip.
type Completion struct {
	Content          string          `json:"content"`
	ReasoningDetails json.RawMessage `json:"reasoning_details,omitempty"`
}

type completionRequest struct {
	Model    string    `json:"model"`
	Messages []Message `json:"messages"`
}

type completionResponse struct {
	Choices []struct {
		Message struct {
			Content          string          `json:"content"`
			ReasoningDetails json.RawMessage `json:"reasoning_details,omitempty"`
		} `json:"message"`
	} `json:"choices"`
}

// Client issues completion requests against one OpenRouter-compatible endpoint.
type Client struct {
	baseURL string
	apiKey  string
	httpc   *http.Client
	logger  *slog.Logger
}

// NewClient returns a client for the given endpoint. A nil logger falls back
// to slog.Default.
func NewClient(baseURL, apiKey string, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpc:   &http.Client{},
		logger:  logger,
	}
}

// Complete sends one generation request to a single model and returns its
// completion. Transport errors, non-2xx statuses, malformed bodies, empty
// choice lists and timeouts all collapse into a plain error; the caller can
// only observe success or failure, not the cause.
func (c *Client) Complete(ctx context.Context, model string, messages []Message, timeout time.Duration) (*Completion, error) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	payload, err := json.Marshal(completionRequest{Model: model, Messages: messages})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("api returned status %d: %s", resp.StatusCode, string(body))
	}

	var parsed completionResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return nil, fmt.Errorf("no choices in response")
	}

	msg := parsed.Choices[0].Message
	return &Completion{
		Content:          msg.Content,
		ReasoningDetails: msg.ReasoningDetails,
	}, nil
}

// FanOut sends the same message list to every model concurrently and collects
// the results into a map keyed by model identifier. Every requested model gets
// an entry: a completion on success, nil on failure. One slow or failing model
// never blocks or fails the others; FanOut returns once every call has
// individually resolved.
func (c *Client) FanOut(ctx context.Context, models []string, messages []Message) map[string]*Completion {
	g, ctx := errgroup.WithContext(ctx)

	results := make(map[string]*Completion, len(models))
	var mu sync.Mutex

	for _, model := range models {
		g.Go(func() error {
			completion, err := c.Complete(ctx, model, messages, DefaultTimeout)
			if err != nil {
				c.logger.Warn("model query failed", "model", model, "error", err)
				completion = nil
			}
			mu.Lock()
			results[model] = completion
			mu.Unlock()
			return nil
		})
	}

	// Workers never return errors; Wait only synchronizes.
	_ = g.Wait()

	return results
}
