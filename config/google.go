// config/google.go
package config

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

var (
	// GeminiClient é o modelo de texto usado para planos de aula, questões e chat.
	GeminiClient *genai.GenerativeModel
	// GeminiImageModel gera as ilustrações pedagógicas.
	GeminiImageModel *genai.GenerativeModel
)

// InitGoogleServices inicializa os clientes da API Gemini.
func InitGoogleServices() error {
	ctx := context.Background()

	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		return fmt.Errorf("GEMINI_API_KEY environment variable not set")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return fmt.Errorf("unable to create Gemini client: %v", err)
	}
	GeminiClient = client.GenerativeModel("gemini-1.5-flash")
	GeminiImageModel = client.GenerativeModel("gemini-2.0-flash-exp-image-generation")
	slog.Info("Gemini API client initialized successfully.")

	return nil
}
