package llm

import (
	"context"
	"fmt"
	"os"
	"strings"
)

// GenerationParams tunes a single generation. Nil fields use provider
// defaults.
type GenerationParams struct {
	Temperature *float32 `json:"temperature"`
	TopK        *int     `json:"top_k"`
	TopP        *float32 `json:"top_p"`
	MaxTokens   *int     `json:"max_tokens"`
	Stop        []string `json:"stop"`
}

// LLMClient defines the standard interface for any text generation backend.
type LLMClient interface {
	Generate(ctx context.Context, prompt string, params GenerationParams) (string, error)
}

// NewFromEnv builds the backend selected by LLM_PROVIDER: "openai"
// (default, also covers any OpenAI-compatible endpoint via
// OPENAI_BASE_URL) or "gemini".
func NewFromEnv() (LLMClient, error) {
	provider := strings.ToLower(os.Getenv("LLM_PROVIDER"))
	switch provider {
	case "", "openai":
		return NewOpenAIClient()
	case "gemini":
		return NewGeminiClient()
	default:
		return nil, fmt.Errorf("unknown LLM_PROVIDER %q", provider)
	}
}

// readSecretFile returns the trimmed contents of a mounted secret, or ""
// when the file does not exist.
func readSecretFile(path string) string {
	content, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(content))
}
