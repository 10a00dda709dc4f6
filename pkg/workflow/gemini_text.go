package workflow

import (
	"context"
	"fmt"

	"github.com/shouni/go-gemini-client/gemini"
	"google.golang.org/genai"
)

// geminiTextGenerator は go-gemini-client のクライアントを
// planner / summary が要求する TextGenerator の形に適合させます。
type geminiTextGenerator struct {
	client gemini.GenerativeModel
	model  string
}

// GenerateText はプロンプトを送信し、応答テキストを返します。
func (g *geminiTextGenerator) GenerateText(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.GenerateContent(ctx, prompt, g.model)
	if err != nil {
		return "", err
	}
	return resp.Text, nil
}

// initializeAIClient は gemini クライアントを初期化します。
func initializeAIClient(ctx context.Context, apiKey string) (gemini.GenerativeModel, error) {
	clientConfig := gemini.Config{
		APIKey:      apiKey,
		Temperature: genai.Ptr(defaultGeminiTemperature),
	}
	aiClient, err := gemini.NewClient(ctx, clientConfig)
	if err != nil {
		return nil, fmt.Errorf("AIクライアントの初期化に失敗しました: %w", err)
	}
	return aiClient, nil
}
