package workflow

import (
	"context"

	"github.com/shouni/go-educomic-kit/pkg/compositor"
	"github.com/shouni/go-educomic-kit/pkg/domain"
)

const defaultGeminiTemperature = float32(0.2)

// PagePlanner は、リクエストからページ番号付きの台本を導出する責務を持ちます。
type PagePlanner interface {
	Plan(ctx context.Context, req domain.ScriptRequest) (domain.PageScript, error)
}

// PageImageGenerator は、台本の各ページを順序どおりに画像化する責務を持ちます。
// ページ単位の失敗は outcome として返し、全滅時のみエラーを返します。
type PageImageGenerator interface {
	Generate(ctx context.Context, req domain.ScriptRequest, script domain.PageScript) ([]domain.PageImage, []domain.PageOutcome, error)
}

// ArtifactCompositor は、順序付きのページ画像パス列を1枚の最終画像へ合成する責務を持ちます。
type ArtifactCompositor interface {
	Compose(ctx context.Context, orderedPaths []string, outPath string) (*compositor.Result, error)
}
