package embedding

import "fmt"

// NewProvider selects the embedding backend by name ("gemini" or "ollama").
func NewProvider(provider, geminiAPIKey, ollamaBaseURL, ollamaModel string) (IProvider, error) {
	switch provider {
	case "gemini", "":
		if geminiAPIKey == "" {
			return nil, fmt.Errorf("gemini embedding provider requires an API key")
		}
		return NewGeminiProvider(geminiAPIKey, ""), nil
	case "ollama":
		return NewOllamaProvider(ollamaBaseURL, ollamaModel), nil
	default:
		return nil, fmt.Errorf("unknown embedding provider: %s", provider)
	}
}
