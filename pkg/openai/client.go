package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/dskvich/artloop/pkg/domain"
	"github.com/dskvich/artloop/pkg/telemetry"
)

// KeyResolver supplies the API key; it is asked on every request.
type KeyResolver interface {
	Resolve() (string, error)
}

type client struct {
	keys    KeyResolver
	baseURL string
	hc      *http.Client
}

// NewClient returns a chat completions client. A zero timeout leaves the
// request bounded only by ctx.
func NewClient(keys KeyResolver, baseURL string, timeout time.Duration) *client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &client{
		keys:    keys,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		hc:      &http.Client{Timeout: timeout},
	}
}

// Complete sends one system message and one user message and returns
// choices[0].message.content. There is no retry.
func (c *client) Complete(ctx context.Context, systemPrompt string, content domain.UserContent) (text string, err error) {
	ctx, span := telemetry.StartSpan(ctx, "openai.chat_completion",
		attribute.String("model", ChatModel),
		attribute.Bool("image", content.ImageURL != ""),
	)
	defer func() { telemetry.End(span, err) }()

	token, err := c.keys.Resolve()
	if err != nil {
		return "", err
	}

	req := &chatCompletionsRequest{
		Model: ChatModel,
		Messages: []domain.ChatMessage{
			{Role: domain.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: domain.ChatMessageRoleUser, Content: content.MessageContent()},
		},
		MaxTokens: ChatMaxTokens,
	}

	slog.DebugContext(ctx, "Calling OpenAI for chat completion", "model", req.Model, "image", content.ImageURL != "")

	body, err := c.send(ctx, token, "/chat/completions", req)
	if err != nil {
		return "", err
	}

	return extractContent(body)
}

func (c *client) send(ctx context.Context, token, path string, payload any) ([]byte, error) {
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("creating HTTP request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	started := time.Now()
	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading response: %v", ErrNetwork, err)
	}

	slog.DebugContext(ctx, "OpenAI responded", "status", resp.StatusCode, "size", len(body), "elapsed", time.Since(started))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &HTTPError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	return body, nil
}

func extractContent(body []byte) (string, error) {
	var resp chatCompletionsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("%w: decoding response: %v", ErrMalformedResponse, err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices in response", ErrMalformedResponse)
	}

	var content string
	raw := resp.Choices[0].Message.Content
	if len(raw) == 0 || json.Unmarshal(raw, &content) != nil || string(raw) == "null" {
		return "", fmt.Errorf("%w: no content in response", ErrMalformedResponse)
	}

	return content, nil
}
