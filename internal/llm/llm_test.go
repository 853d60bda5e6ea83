// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/paper-engine/pkg/types"
)

func testConfig(baseURL string, stream bool) types.AIConfig {
	return types.AIConfig{
		BaseURL:     baseURL + "/v1",
		Model:       "test-model",
		APIKey:      "sk-test",
		MaxRetries:  2,
		RetryDelay:  time.Millisecond,
		Timeout:     5 * time.Second,
		Temperature: 0.7,
		Stream:      stream,
	}
}

type chatRequest struct {
	Model    string `json:"model"`
	Stream   bool   `json:"stream"`
	Messages []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
}

func completionJSON(content string) string {
	return fmt.Sprintf(`{"id":"c1","object":"chat.completion","created":1,"model":"test-model",`+
		`"choices":[{"index":0,"message":{"role":"assistant","content":%q},"finish_reason":"stop"}],`+
		`"usage":{"prompt_tokens":3,"completion_tokens":2,"total_tokens":5}}`, content)
}

func writeSSE(w http.ResponseWriter, chunks ...string) {
	w.Header().Set("Content-Type", "text/event-stream")
	for _, c := range chunks {
		fmt.Fprintf(w, "data: {\"id\":\"c1\",\"object\":\"chat.completion.chunk\",\"created\":1,\"model\":\"test-model\","+
			"\"choices\":[{\"index\":0,\"delta\":{\"content\":%q}}]}\n\n", c)
	}
	fmt.Fprint(w, "data: [DONE]\n\n")
}

func TestNewValidates(t *testing.T) {
	_, err := New(types.AIConfig{Model: "m"}, nil)
	assert.Error(t, err)
	_, err = New(types.AIConfig{BaseURL: "http://x"}, nil)
	assert.Error(t, err)
	_, err = New(types.AIConfig{BaseURL: "http://x", Model: "m"}, nil)
	assert.NoError(t, err)
}

func TestCompleteNonStreaming(t *testing.T) {
	var got chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, completionJSON("A generated paper."))
	}))
	defer srv.Close()

	c, err := New(testConfig(srv.URL, false), nil)
	require.NoError(t, err)

	text, err := c.Complete(context.Background(), []Message{
		{Role: RoleSystem, Content: "be a scholar"},
		{Role: RoleUser, Content: "write"},
	})
	require.NoError(t, err)
	assert.Equal(t, "A generated paper.", text)
	assert.Equal(t, "test-model", got.Model)
	assert.False(t, got.Stream)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "system", got.Messages[0].Role)
	assert.Equal(t, "write", got.Messages[1].Content)
}

func TestCompleteStreamingConcatenatesDeltas(t *testing.T) {
	var got chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		writeSSE(w, "Deep ", "learning ", "works.")
	}))
	defer srv.Close()

	c, err := New(testConfig(srv.URL, true), nil)
	require.NoError(t, err)

	text, err := c.Complete(context.Background(), []Message{{Role: RoleUser, Content: "x"}})
	require.NoError(t, err)
	assert.Equal(t, "Deep learning works.", text)
	assert.True(t, got.Stream)
}

func TestCompleteEmptyResponse(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		writeSSE(w)
	}))
	defer srv.Close()

	cfg := testConfig(srv.URL, true)
	cfg.MaxRetries = 0
	c, err := New(cfg, nil)
	require.NoError(t, err)

	_, err = c.Complete(context.Background(), []Message{{Role: RoleUser, Content: "x"}})
	assert.ErrorIs(t, err, ErrEmptyResponse)
	assert.Equal(t, int32(1), calls.Load())
}

func TestCompleteRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			fmt.Fprint(w, `{"error":{"message":"overloaded","type":"server_error"}}`)
			return
		}
		fmt.Fprint(w, completionJSON("ok"))
	}))
	defer srv.Close()

	c, err := New(testConfig(srv.URL, false), nil)
	require.NoError(t, err)

	text, err := c.Complete(context.Background(), []Message{{Role: RoleUser, Content: "x"}})
	require.NoError(t, err)
	assert.Equal(t, "ok", text)
	assert.Equal(t, int32(3), calls.Load())
}

func TestCompleteGivesUpAfterMaxRetries(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprint(w, `{"error":{"message":"boom","type":"server_error"}}`)
	}))
	defer srv.Close()

	c, err := New(testConfig(srv.URL, true), nil)
	require.NoError(t, err)

	_, err = c.Complete(context.Background(), []Message{{Role: RoleUser, Content: "x"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
	assert.Equal(t, int32(3), calls.Load())
}

func TestCompleteDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"error":{"message":"bad key","type":"invalid_request_error"}}`)
	}))
	defer srv.Close()

	c, err := New(testConfig(srv.URL, false), nil)
	require.NoError(t, err)

	_, err = c.Complete(context.Background(), []Message{{Role: RoleUser, Content: "x"}})
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestCompleteCancelledDuringBackoff(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	cfg := testConfig(srv.URL, false)
	cfg.RetryDelay = time.Hour
	c, err := New(cfg, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = c.Complete(ctx, []Message{{Role: RoleUser, Content: "x"}})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestStream(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeSSE(w, "一", "二", "三")
	}))
	defer srv.Close()

	c, err := New(testConfig(srv.URL, true), nil)
	require.NoError(t, err)

	content, errc := c.Stream(context.Background(), []Message{{Role: RoleUser, Content: "x"}})
	var chunks []string
	for chunk := range content {
		chunks = append(chunks, chunk)
	}
	assert.NoError(t, <-errc)
	assert.Equal(t, []string{"一", "二", "三"}, chunks)
}

func TestStreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"error":{"message":"bad request","type":"invalid_request_error"}}`)
	}))
	defer srv.Close()

	c, err := New(testConfig(srv.URL, true), nil)
	require.NoError(t, err)

	content, errc := c.Stream(context.Background(), []Message{{Role: RoleUser, Content: "x"}})
	for range content {
		t.Fatal("no content expected")
	}
	err = <-errc
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "bad request"))
}

func TestRetryable(t *testing.T) {
	assert.False(t, retryable(context.Canceled))
	assert.True(t, retryable(ErrEmptyResponse))
	assert.True(t, retryable(fmt.Errorf("wrapped: %w", context.DeadlineExceeded)))
	assert.True(t, statusRetryable(http.StatusTooManyRequests))
	assert.True(t, statusRetryable(http.StatusBadGateway))
	assert.False(t, statusRetryable(http.StatusNotFound))
}
