package generator

import (
	"context"
	"fmt"

	imagedom "github.com/shouni/gemini-image-kit/ports"
	"github.com/shouni/go-educomic-kit/pkg/domain"
	"google.golang.org/genai"
)

const defaultImageMimeType = "image/png"

// GeminiSessionFactory は Gemini のチャットセッションを画像専用モードで開きます。
type GeminiSessionFactory struct {
	client *genai.Client
	model  string
}

// NewGeminiSessionFactory は genai クライアントを初期化してファクトリを返します。
func NewGeminiSessionFactory(ctx context.Context, apiKey, model string) (*GeminiSessionFactory, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("genai クライアントの初期化に失敗しました: %w", err)
	}

	return &GeminiSessionFactory{
		client: client,
		model:  model,
	}, nil
}

// NewSession は応答モダリティを画像に限定したチャットセッションを開きます。
// ページ列全体で1つのセッションを共有することで、モデル側の会話コンテキストも
// 連続性の補強として働きます（ただし契約としては grounding 画像が正なのだ）。
func (f *GeminiSessionFactory) NewSession(ctx context.Context) (PageImageSession, error) {
	cfg := &genai.GenerateContentConfig{
		ResponseModalities: []string{"IMAGE"},
	}

	chat, err := f.client.Chats.Create(ctx, f.model, cfg, nil)
	if err != nil {
		return nil, fmt.Errorf("画像チャットセッションの作成に失敗しました: %w", err)
	}

	return &geminiChatSession{chat: chat}, nil
}

// geminiChatSession は genai のチャットを PageImageSession に適合させます。
type geminiChatSession struct {
	chat *genai.Chat
}

// RenderPage は台本テキストと（あれば）直前の成功画像を送信し、
// 応答のコンテンツパートから最初のインライン画像を取り出します。
func (s *geminiChatSession) RenderPage(ctx context.Context, script string, grounding *imagedom.ImageResponse) (*imagedom.ImageResponse, error) {
	parts := []genai.Part{{Text: script}}
	if grounding != nil {
		mime := grounding.MimeType
		if mime == "" {
			mime = defaultImageMimeType
		}
		parts = append(parts, genai.Part{
			InlineData: &genai.Blob{
				MIMEType: mime,
				Data:     grounding.Data,
			},
		})
	}

	resp, err := s.chat.SendMessage(ctx, parts...)
	if err != nil {
		return nil, fmt.Errorf("ページ生成リクエストの送信に失敗しました: %w", err)
	}

	return extractInlineImage(resp)
}

// extractInlineImage は応答のパート群からインライン画像データを走査します。
// 画像が1つも無い応答は、ページ失敗としてそのまま呼び出し側に返します。
func extractInlineImage(resp *genai.GenerateContentResponse) (*imagedom.ImageResponse, error) {
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if part.InlineData != nil && len(part.InlineData.Data) > 0 {
				mime := part.InlineData.MIMEType
				if mime == "" {
					mime = defaultImageMimeType
				}
				return &imagedom.ImageResponse{
					Data:     part.InlineData.Data,
					MimeType: mime,
				}, nil
			}
		}
	}
	return nil, domain.ErrNoImagePart
}
