//go:build ignore

package main

import (
	"context"
	"fmt"
	"log"
	"math"

	"github.com/MarkerAnn/wine-backend/internal/config"
	"github.com/MarkerAnn/wine-backend/pkg/embedding"
)

// CosineSimilarity calculates similarity between two vectors
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0.0
	}
	var dotProduct, normA, normB float64
	for i := range a {
		dotProduct += float64(a[i] * b[i])
		normA += float64(a[i] * a[i])
		normB += float64(b[i] * b[i])
	}
	if normA == 0 || normB == 0 {
		return 0.0
	}
	return dotProduct / (math.Sqrt(normA) * math.Sqrt(normB))
}

func main() {
	cfg := config.Load()
	ctx := context.Background()

	// 1. Initialize Providers
	fmt.Println("--- Initializing Providers ---")
	openai := embedding.NewOpenAIProvider(cfg.Ai.OpenAIAPIKey, cfg.Ai.OpenAIBaseURL, cfg.Ai.EmbeddingModel, cfg.Ai.EmbeddingDimensions)
	ollama := embedding.NewOllamaProvider(cfg.Ai.OllamaBaseURL, cfg.Ai.EmbeddingModel)

	// 2. Define Test Cases: two tasting notes that should land close
	// together, one that should not.
	text1 := "Ripe black cherry and plum with firm tannins and a long spicy finish"
	text2 := "Dark cherry fruit, chewy tannins and a lingering peppery close"
	text3 := "Crisp citrus and green apple with bracing acidity and a saline edge"

	fmt.Println("\n--- Generating Embeddings ---")

	// Helper to generate and print info
	generate := func(name string, p embedding.EmbeddingProvider, t1, t2, t3 string) ([]float32, []float32, []float32) {
		fmt.Printf("\n[%s] Generating with %s...\n", name, p.ModelName())

		v1, err := p.Generate(ctx, t1, embedding.TaskTypeDocument)
		if err != nil {
			log.Printf("Error %s (Text 1): %v", name, err)
			return nil, nil, nil
		}
		fmt.Printf("[%s] Text 1 Dimensions: %d\n", name, len(v1.Embedding.Values))

		v2, err := p.Generate(ctx, t2, embedding.TaskTypeDocument)
		if err != nil {
			log.Printf("Error %s (Text 2): %v", name, err)
			return nil, nil, nil
		}

		v3, err := p.Generate(ctx, t3, embedding.TaskTypeDocument)
		if err != nil {
			log.Printf("Error %s (Text 3): %v", name, err)
			return nil, nil, nil
		}

		return v1.Embedding.Values, v2.Embedding.Values, v3.Embedding.Values
	}

	// 3. Run OpenAI-compatible provider
	o1, o2, o3 := generate("OPENAI", openai, text1, text2, text3)

	// 4. Run Ollama
	n1, n2, n3 := generate("OLLAMA", ollama, text1, text2, text3)

	// 5. Compare Similarity
	fmt.Println("\n--- Semantic Similarity Comparison ---")
	fmt.Println("(Higher is better, 1.0 = identical)")

	if o1 != nil && o2 != nil && o3 != nil {
		fmt.Printf("\n[OPENAI]\n")
		fmt.Printf("Similarity (Text 1 vs Text 2 - Similar): %.4f\n", CosineSimilarity(o1, o2))
		fmt.Printf("Similarity (Text 1 vs Text 3 - Different): %.4f\n", CosineSimilarity(o1, o3))
	}

	if n1 != nil && n2 != nil && n3 != nil {
		fmt.Printf("\n[OLLAMA]\n")
		fmt.Printf("Similarity (Text 1 vs Text 2 - Similar): %.4f\n", CosineSimilarity(n1, n2))
		fmt.Printf("Similarity (Text 1 vs Text 3 - Different): %.4f\n", CosineSimilarity(n1, n3))
	}

	fmt.Println("\n--- Conclusion ---")
	fmt.Println("Both providers should score Text 1 & 2 well above Text 1 & 3.")
	fmt.Println("If dimensions differ from vector(384) in the schema, fix EMBEDDING_DIMENSIONS before ingesting.")
}
