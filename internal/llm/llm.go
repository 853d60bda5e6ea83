// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package llm talks to an OpenAI-compatible chat completion service.
package llm

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/pdiddy/paper-engine/pkg/types"
)

// ErrEmptyResponse is returned when the service answers without any content.
var ErrEmptyResponse = errors.New("empty response from language model")

// Chat roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one chat message.
type Message struct {
	Role    string
	Content string
}

// Model generates text from a conversation.
type Model interface {
	// Complete returns the full reply.
	Complete(ctx context.Context, messages []Message) (string, error)

	// Stream delivers the reply in chunks. The content channel closes when
	// the reply ends; at most one error is sent on the error channel, which
	// closes after the content channel.
	Stream(ctx context.Context, messages []Message) (<-chan string, <-chan error)
}

// Client implements Model with github.com/sashabaranov/go-openai.
type Client struct {
	api    *openai.Client
	cfg    types.AIConfig
	logger *zap.Logger
}

// New builds a client for cfg. BaseURL and Model must be set; the API key
// may be empty for local services that do not check it.
func New(cfg types.AIConfig, logger *zap.Logger) (*Client, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, fmt.Errorf("llm base URL is required")
	}
	if strings.TrimSpace(cfg.Model) == "" {
		return nil, fmt.Errorf("llm model is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	oc := openai.DefaultConfig(cfg.APIKey)
	oc.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	oc.HTTPClient = &http.Client{}
	return &Client{api: openai.NewClientWithConfig(oc), cfg: cfg, logger: logger}, nil
}

// Complete sends messages and returns the reply. With Stream enabled the
// reply is read as server-sent events and the deltas are concatenated.
// Failed attempts are retried up to MaxRetries times with exponential
// backoff starting at RetryDelay.
func (c *Client) Complete(ctx context.Context, messages []Message) (string, error) {
	var lastErr error
	for attempt := 0; attempt <= c.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := time.Duration(math.Pow(2, float64(attempt-1))) * c.cfg.RetryDelay
			c.logger.Warn("llm request failed, retrying",
				zap.Int("attempt", attempt),
				zap.Duration("backoff", delay),
				zap.Error(lastErr))
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(delay):
			}
		}

		text, err := c.completeOnce(ctx, messages)
		if err == nil {
			return text, nil
		}
		lastErr = err
		if !retryable(err) || ctx.Err() != nil {
			break
		}
	}
	return "", lastErr
}

func (c *Client) completeOnce(ctx context.Context, messages []Message) (string, error) {
	if c.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.Timeout)
		defer cancel()
	}
	start := time.Now()

	if c.cfg.Stream {
		var b strings.Builder
		err := c.stream(ctx, messages, func(chunk string) error {
			b.WriteString(chunk)
			return nil
		})
		if err != nil {
			return "", err
		}
		if strings.TrimSpace(b.String()) == "" {
			return "", ErrEmptyResponse
		}
		c.logger.Debug("llm stream complete",
			zap.String("model", c.cfg.Model),
			zap.Int("chars", b.Len()),
			zap.Duration("elapsed", time.Since(start)))
		return b.String(), nil
	}

	resp, err := c.api.CreateChatCompletion(ctx, c.request(messages))
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return "", ErrEmptyResponse
	}
	c.logger.Debug("llm completion",
		zap.String("model", c.cfg.Model),
		zap.Int("total_tokens", resp.Usage.TotalTokens),
		zap.Duration("elapsed", time.Since(start)))
	return resp.Choices[0].Message.Content, nil
}

// Stream implements Model. It does not retry.
func (c *Client) Stream(ctx context.Context, messages []Message) (<-chan string, <-chan error) {
	content := make(chan string, 16)
	errc := make(chan error, 1)

	go func() {
		defer close(errc)
		defer close(content)

		if c.cfg.Timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, c.cfg.Timeout)
			defer cancel()
		}
		err := c.stream(ctx, messages, func(chunk string) error {
			select {
			case content <- chunk:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		})
		if err != nil {
			errc <- err
		}
	}()
	return content, errc
}

// stream opens a streaming completion and hands each non-empty delta to emit.
func (c *Client) stream(ctx context.Context, messages []Message, emit func(string) error) error {
	s, err := c.api.CreateChatCompletionStream(ctx, c.request(messages))
	if err != nil {
		return fmt.Errorf("opening chat stream: %w", err)
	}
	defer s.Close()

	for {
		resp, err := s.Recv()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("reading chat stream: %w", err)
		}
		if len(resp.Choices) == 0 {
			continue
		}
		if delta := resp.Choices[0].Delta.Content; delta != "" {
			if err := emit(delta); err != nil {
				return err
			}
		}
	}
}

func (c *Client) request(messages []Message) openai.ChatCompletionRequest {
	msgs := make([]openai.ChatCompletionMessage, len(messages))
	for i, m := range messages {
		msgs[i] = openai.ChatCompletionMessage{Role: m.Role, Content: m.Content}
	}
	return openai.ChatCompletionRequest{
		Model:       c.cfg.Model,
		Messages:    msgs,
		MaxTokens:   c.cfg.MaxTokens,
		Temperature: c.cfg.Temperature,
	}
}

// retryable reports whether a failed attempt is worth repeating: transport
// errors, empty replies, throttling, and server errors.
func retryable(err error) bool {
	if errors.Is(err, context.Canceled) {
		return false
	}
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return statusRetryable(apiErr.HTTPStatusCode)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return statusRetryable(reqErr.HTTPStatusCode)
	}
	return true
}

func statusRetryable(code int) bool {
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError || code == 0
}
