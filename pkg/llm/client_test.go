package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/umputun/keyscope/pkg/config"
	"github.com/umputun/keyscope/pkg/domain"
)

func testItem() domain.Item {
	return domain.Item{
		URL:         "https://ai.gitcode.com/hf_mirrors/deepseek/DeepSeek-R1",
		Name:        "deepseek/DeepSeek-R1",
		Description: "Reasoning model trained with large scale reinforcement learning.",
		Tags:        []string{"reasoning", "moe"},
	}
}

func chatResponse(content string) openai.ChatCompletionResponse {
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Content: content}},
		},
	}
}

func TestClient_Extract(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req openai.ChatCompletionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "glm-4", req.Model)
		require.Len(t, req.Messages, 2)
		assert.Equal(t, "system", req.Messages[0].Role)
		assert.Contains(t, req.Messages[1].Content, "deepseek/DeepSeek-R1")
		assert.Contains(t, req.Messages[1].Content, "reasoning, moe")

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(chatResponse(cleanResponse))
	}))
	defer server.Close()

	client := NewClient(
		config.Provider{Name: "zhipu", Endpoint: server.URL + "/v1", APIKey: "test-key", Model: "glm-4"},
		config.ExtractionConfig{Temperature: 0.3, MaxTokens: 1200, Timeout: 5 * time.Second},
	)

	res, err := client.Extract(context.Background(), testItem(), nil)
	require.NoError(t, err)
	assert.Equal(t, "zhipu", res.Provider)
	assert.Equal(t, "deepseek/DeepSeek-R1", res.ItemName)
	require.Len(t, res.Keywords, 4)
	assert.Equal(t, "DeepSeek-LLM", res.Keywords[0].Keyword)
	assert.Positive(t, res.Elapsed)
}

func TestClient_ExtractSendsExclusions(t *testing.T) {
	var prompt string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req openai.ChatCompletionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		prompt = req.Messages[1].Content

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(chatResponse(cleanResponse))
	}))
	defer server.Close()

	client := NewClient(
		config.Provider{Name: "kimi", Endpoint: server.URL + "/v1", APIKey: "k", Model: "moonshot-v1"},
		config.ExtractionConfig{Timeout: 5 * time.Second},
	)

	_, err := client.Extract(context.Background(), testItem(), []string{"MoE", "Transformer"})
	require.NoError(t, err)
	assert.Contains(t, prompt, "forbidden")
	assert.Contains(t, prompt, "MoE, Transformer")
}

func TestClient_ExtractRateLimited(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error": {"message": "rate limit exceeded", "type": "rate_limit_error"}}`))
	}))
	defer server.Close()

	client := NewClient(
		config.Provider{Name: "hunyuan", Endpoint: server.URL + "/v1", APIKey: "k", Model: "hunyuan-turbo"},
		config.ExtractionConfig{Timeout: 5 * time.Second},
	)

	_, err := client.Extract(context.Background(), testItem(), nil)
	require.Error(t, err)
	assert.Equal(t, FailureRateLimited, Classify(err))
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls), "rate limits reroute, not retry in place")
}

func TestClient_ExtractRetriesTransient(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&calls, 1)
		if n < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte(`{"error": {"message": "upstream overloaded", "type": "server_error"}}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(chatResponse(cleanResponse))
	}))
	defer server.Close()

	client := NewClient(
		config.Provider{Name: "glm", Endpoint: server.URL + "/v1", APIKey: "k", Model: "glm-4"},
		config.ExtractionConfig{Timeout: 5 * time.Second},
	)
	client.transientPause = time.Millisecond

	res, err := client.Extract(context.Background(), testItem(), nil)
	require.NoError(t, err)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
	assert.Len(t, res.Keywords, 4)
}

func TestClient_ExtractTransientExhausted(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewClient(
		config.Provider{Name: "glm", Endpoint: server.URL + "/v1", APIKey: "k", Model: "glm-4"},
		config.ExtractionConfig{Timeout: 5 * time.Second},
	)
	client.transientPause = time.Millisecond

	_, err := client.Extract(context.Background(), testItem(), nil)
	require.Error(t, err)
	assert.Equal(t, FailureTransient, Classify(err))
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls), "transient failures retry up to the attempt cap")
}

func TestClient_ExtractNoKeywords(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(chatResponse("I could not find anything notable here."))
	}))
	defer server.Close()

	client := NewClient(
		config.Provider{Name: "glm", Endpoint: server.URL + "/v1", APIKey: "k", Model: "glm-4"},
		config.ExtractionConfig{Timeout: 5 * time.Second},
	)

	_, err := client.Extract(context.Background(), testItem(), nil)
	require.ErrorIs(t, err, ErrNoKeywords)
	assert.Equal(t, FailureOther, Classify(err))
}

func TestClient_ExtractJSONMode(t *testing.T) {
	var rawReq map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&rawReq))
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(chatResponse(cleanResponse))
	}))
	defer server.Close()

	client := NewClient(
		config.Provider{Name: "glm", Endpoint: server.URL + "/v1", APIKey: "k", Model: "glm-4", JSONMode: true},
		config.ExtractionConfig{Timeout: 5 * time.Second},
	)

	_, err := client.Extract(context.Background(), testItem(), nil)
	require.NoError(t, err)
	format, ok := rawReq["response_format"].(map[string]any)
	require.True(t, ok, "request carries response_format")
	assert.Equal(t, "json_object", format["type"])
}

func TestClient_ExtractContextCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	client := NewClient(
		config.Provider{Name: "glm", Endpoint: server.URL + "/v1", APIKey: "k", Model: "glm-4"},
		config.ExtractionConfig{Timeout: 5 * time.Second},
	)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	_, err := client.Extract(ctx, testItem(), nil)
	require.ErrorIs(t, err, context.Canceled)
}
