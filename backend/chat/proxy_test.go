package chat

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/priyotosh-27/CodeMaster/backend/config"
	"github.com/priyotosh-27/CodeMaster/backend/errs"
)

func testConfig(openaiURL, openrouterURL string) *config.Config {
	return &config.Config{
		OpenAIAPIKey:      "sk-test",
		OpenAIBaseURL:     openaiURL,
		OpenAIModel:       "gpt-3.5-turbo",
		OpenRouterAPIKey:  "or-test",
		OpenRouterBaseURL: openrouterURL,
		OpenRouterModel:   "anthropic/claude-3-haiku",
		ChatReferer:       "https://example.test",
		ChatTitle:         "CodeMaster Assistant",
		ChatTimeout:       5 * time.Second,
	}
}

func TestSendReturnsReply(t *testing.T) {
	var gotAuth string
	var gotBody map[string]interface{}
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[{"message":{"content":"hello"}}]}`))
	}))
	defer upstream.Close()

	p := NewProxy(testConfig(upstream.URL, upstream.URL))
	reply, err := p.Send(context.Background(), "hi", "")
	require.NoError(t, err)
	assert.Equal(t, "hello", reply)
	assert.Equal(t, "Bearer sk-test", gotAuth)
	assert.Equal(t, "gpt-3.5-turbo", gotBody["model"])
}

func TestSendOpenRouterHeaders(t *testing.T) {
	var gotAuth, gotReferer, gotTitle string
	var gotBody map[string]interface{}
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotReferer = r.Header.Get("HTTP-Referer")
		gotTitle = r.Header.Get("X-Title")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Write([]byte(`{"choices":[{"message":{"content":"bonjour"}}]}`))
	}))
	defer upstream.Close()

	p := NewProxy(testConfig("http://unused.invalid", upstream.URL))
	reply, err := p.Send(context.Background(), "hi", "openrouter")
	require.NoError(t, err)
	assert.Equal(t, "bonjour", reply)
	assert.Equal(t, "Bearer or-test", gotAuth)
	assert.Equal(t, "https://example.test", gotReferer)
	assert.Equal(t, "CodeMaster Assistant", gotTitle)
	assert.Equal(t, "anthropic/claude-3-haiku", gotBody["model"])
}

func TestSendUnknownProviderFallsThroughToOpenAI(t *testing.T) {
	var gotAuth string
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{"choices":[{"message":{"content":"ok"}}]}`))
	}))
	defer upstream.Close()

	p := NewProxy(testConfig(upstream.URL, "http://unused.invalid"))
	_, err := p.Send(context.Background(), "hi", "some-future-provider")
	require.NoError(t, err)
	assert.Equal(t, "Bearer sk-test", gotAuth)
}

func TestSendForwardsUpstreamErrorMessage(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":{"message":"Rate limit reached"}}`))
	}))
	defer upstream.Close()

	p := NewProxy(testConfig(upstream.URL, upstream.URL))
	_, err := p.Send(context.Background(), "hi", "")

	var upstreamErr *errs.UpstreamError
	require.True(t, errors.As(err, &upstreamErr))
	assert.Equal(t, "Rate limit reached", upstreamErr.Message)
}

func TestSendUnparseableBody(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>bad gateway</html>"))
	}))
	defer upstream.Close()

	p := NewProxy(testConfig(upstream.URL, upstream.URL))
	_, err := p.Send(context.Background(), "hi", "")

	var upstreamErr *errs.UpstreamError
	assert.True(t, errors.As(err, &upstreamErr))
}

func TestSendEmptyChoicesUsesDefaultReply(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[]}`))
	}))
	defer upstream.Close()

	p := NewProxy(testConfig(upstream.URL, upstream.URL))
	reply, err := p.Send(context.Background(), "hi", "")
	require.NoError(t, err)
	assert.Equal(t, "No response from AI.", reply)
}

func TestSendConnectionFailure(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	upstream.Close()

	p := NewProxy(testConfig(upstream.URL, upstream.URL))
	_, err := p.Send(context.Background(), "hi", "")

	var upstreamErr *errs.UpstreamError
	assert.True(t, errors.As(err, &upstreamErr))
	assert.Empty(t, upstreamErr.Message)
}
