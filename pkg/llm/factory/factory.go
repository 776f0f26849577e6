package factory

import (
	"fmt"

	"news-chatter-be/pkg/llm"
	"news-chatter-be/pkg/llm/gemini"
	"news-chatter-be/pkg/llm/ollama"
)

// New selects the language model backend by name ("gemini" or "ollama").
func New(provider, model, geminiAPIKey, ollamaBaseURL string) (llm.IProvider, error) {
	switch provider {
	case "gemini", "":
		if geminiAPIKey == "" {
			return nil, fmt.Errorf("gemini llm provider requires an API key")
		}
		return gemini.NewProvider(geminiAPIKey, model), nil
	case "ollama":
		return ollama.NewProvider(ollamaBaseURL, model), nil
	default:
		return nil, fmt.Errorf("unknown llm provider: %s", provider)
	}
}
