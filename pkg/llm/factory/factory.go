package factory

import (
	"fmt"

	"github.com/MarkerAnn/wine-backend/pkg/llm"
	"github.com/MarkerAnn/wine-backend/pkg/llm/ollama"
	"github.com/MarkerAnn/wine-backend/pkg/llm/openai"
)

func NewLLMProvider(providerType, modelName, baseURL, apiKey string) (llm.LLMProvider, error) {
	switch providerType {
	case "openai":
		return openai.NewOpenAIProvider(apiKey, baseURL, modelName), nil
	case "ollama":
		if baseURL == "" {
			baseURL = "http://localhost:11434" // Default
		}
		return ollama.NewOllamaProvider(baseURL, modelName), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", providerType)
	}
}
