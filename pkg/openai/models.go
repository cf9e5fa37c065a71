package openai

import (
	"encoding/json"

	"github.com/dskvich/artloop/pkg/domain"
)

const (
	DefaultBaseURL = "https://api.openai.com/v1"

	ChatModel     = "gpt-4o"
	ChatMaxTokens = 1000
)

type chatCompletionsRequest struct {
	Model     string               `json:"model"`
	Messages  []domain.ChatMessage `json:"messages"`
	MaxTokens int                  `json:"max_tokens"`
}

// chatCompletionsResponse keeps content raw so a missing or non-string value
// can be told apart from an empty answer.
type chatCompletionsResponse struct {
	Choices []struct {
		Message struct {
			Content json.RawMessage `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}
