// Package chat forwards a single user message to a configured model provider
// and returns the assistant's reply. One request, one response: no retries,
// no streaming.
package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/priyotosh-27/CodeMaster/backend/config"
	"github.com/priyotosh-27/CodeMaster/backend/errs"
)

const defaultReply = "No response from AI."

type Proxy struct {
	client *http.Client
	cfg    *config.Config
}

func NewProxy(cfg *config.Config) *Proxy {
	timeout := cfg.ChatTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Proxy{
		client: &http.Client{Timeout: timeout},
		cfg:    cfg,
	}
}

type target struct {
	url     string
	key     string
	model   string
	headers map[string]string
}

// resolve picks the upstream for a provider name. Unknown values fall
// through to the openai branch.
func (p *Proxy) resolve(provider string) target {
	if provider == "openrouter" {
		return target{
			url:   p.cfg.OpenRouterBaseURL,
			key:   p.cfg.OpenRouterAPIKey,
			model: p.cfg.OpenRouterModel,
			headers: map[string]string{
				"HTTP-Referer": p.cfg.ChatReferer,
				"X-Title":      p.cfg.ChatTitle,
			},
		}
	}
	return target{
		url:   p.cfg.OpenAIBaseURL,
		key:   p.cfg.OpenAIAPIKey,
		model: p.cfg.OpenAIModel,
	}
}

type upstreamRequest struct {
	Model       string            `json:"model"`
	Messages    []upstreamMessage `json:"messages"`
	Temperature float64           `json:"temperature"`
}

type upstreamMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type upstreamResponse struct {
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Send forwards message to the provider's chat completion endpoint and
// returns the reply text. Upstream failures and unparseable bodies surface
// as UpstreamError; an upstream error payload's message is carried through.
func (p *Proxy) Send(ctx context.Context, message, provider string) (string, error) {
	t := p.resolve(provider)

	payload, err := json.Marshal(upstreamRequest{
		Model:       t.model,
		Messages:    []upstreamMessage{{Role: "user", Content: message}},
		Temperature: 0.7,
	})
	if err != nil {
		return "", &errs.UpstreamError{Provider: provider, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.url, bytes.NewReader(payload))
	if err != nil {
		return "", &errs.UpstreamError{Provider: provider, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+t.key)
	for k, v := range t.headers {
		req.Header.Set(k, v)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return "", &errs.UpstreamError{Provider: provider, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &errs.UpstreamError{Provider: provider, Err: err}
	}

	// Raw upstream body is logged for diagnostics before classification.
	log.WithFields(log.Fields{
		"provider": provider,
		"status":   resp.StatusCode,
	}).Debug(string(body))

	var parsed upstreamResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", &errs.UpstreamError{Provider: provider, Err: err}
	}
	if parsed.Error != nil {
		return "", &errs.UpstreamError{Provider: provider, Message: parsed.Error.Message}
	}

	if len(parsed.Choices) == 0 || parsed.Choices[0].Message.Content == "" {
		return defaultReply, nil
	}
	return parsed.Choices[0].Message.Content, nil
}
