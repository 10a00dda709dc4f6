// Package workflow はコミック生成パイプライン全体を
// Planning → Generating → Compositing の直線的な流れで統括します。
package workflow

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shouni/go-educomic-kit/internal/config"
	"github.com/shouni/go-educomic-kit/pkg/asset"
	"github.com/shouni/go-educomic-kit/pkg/compositor"
	"github.com/shouni/go-educomic-kit/pkg/domain"
	"github.com/shouni/go-educomic-kit/pkg/generator"
	"github.com/shouni/go-educomic-kit/pkg/planner"
	"github.com/shouni/go-educomic-kit/pkg/prompts"
	"github.com/shouni/go-educomic-kit/pkg/summary"
)

// Manager は、パイプラインの各工程を担うコンポーネント群を構築・保持します。
type Manager struct {
	cfg *config.Config

	planner    PagePlanner
	generator  PageImageGenerator
	compositor ArtifactCompositor
	summaries  *summary.Provider
}

// New は、設定を基に新しい Manager を初期化します。
func New(ctx context.Context, cfg *config.Config) (*Manager, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config は必須です")
	}
	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY が設定されていません")
	}

	aiClient, err := initializeAIClient(ctx, cfg.GeminiAPIKey)
	if err != nil {
		return nil, err
	}
	textGen := &geminiTextGenerator{client: aiClient, model: cfg.GeminiModel}

	pb, err := prompts.NewTextPromptBuilder()
	if err != nil {
		return nil, fmt.Errorf("プロンプトビルダーの作成に失敗しました: %w", err)
	}

	sessionFactory, err := generator.NewGeminiSessionFactory(ctx, cfg.GeminiAPIKey, cfg.GeminiImageModel)
	if err != nil {
		return nil, fmt.Errorf("画像生成エンジンの初期化に失敗しました: %w", err)
	}

	return &Manager{
		cfg:        cfg,
		planner:    planner.NewScriptPlanner(textGen, pb, cfg.ContextLimit, cfg.TruncatePolicy),
		generator:  generator.NewContinuityGenerator(sessionFactory, cfg.RateInterval, cfg.OutputDir),
		compositor: compositor.NewVerticalCompositor(),
		summaries:  summary.NewProvider(textGen, pb, nil, cfg.TranscriptLimit),
	}, nil
}

// Summaries はコンテキスト解決・要約プロバイダを返します。
func (m *Manager) Summaries() *summary.Provider {
	return m.summaries
}

// PlanScript は画像生成を行わず、台本の導出だけを実行します。
// 生成前に台本の内容を確認したい場合や、台本だけを保存したい場合に使います。
func (m *Manager) PlanScript(ctx context.Context, req domain.ScriptRequest) (domain.PageScript, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	return m.planner.Plan(ctx, req)
}

// Run はリクエスト1件分のパイプラインを実行し、合成済みコミックを返します。
//
// 状態遷移は Planning → Generating → Compositing → Done の一方向のみです。
// Planning の失敗は画像生成が始まる前にパイプラインを中断します。
// Generating 内のページ失敗はページ単位で吸収され、1ページでも描画できれば
// 欠けのあるコミックを正常な成果物として返します。ErrNoPagesProduced に
// なるのは合成対象が1枚も無いときだけです。
func (m *Manager) Run(ctx context.Context, req domain.ScriptRequest) (*domain.ComicArtifact, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	// --- Phase 1: Planning ---
	slog.InfoContext(ctx, "Phase 1: 台本を生成するのだ", "topic", req.Topic, "pages", req.PageCount)
	script, err := m.planner.Plan(ctx, req)
	if err != nil {
		return nil, err
	}

	// --- Phase 2: Generating ---
	slog.InfoContext(ctx, "Phase 2: 画像生成セッションを開始するのだ", "recognized_pages", len(script))
	images, outcomes, err := m.generator.Generate(ctx, req, script)
	if err != nil {
		return nil, err
	}
	logOutcomes(ctx, outcomes)

	// --- Phase 3: Compositing ---
	slog.InfoContext(ctx, "Phase 3: ページ画像を1枚に合成するのだ", "rendered", len(images))
	paths := make([]string, 0, len(images))
	indices := make([]int, 0, len(images))
	for _, img := range images {
		paths = append(paths, img.Path)
		indices = append(indices, img.PageIndex)
	}

	outPath := asset.FinalImagePath(m.cfg.OutputDir, req)
	res, err := m.compositor.Compose(ctx, paths, outPath)
	if err != nil {
		return nil, fmt.Errorf("最終画像の合成に失敗しました: %w", err)
	}
	if res == nil {
		return nil, fmt.Errorf("合成対象がありませんでした: %w", domain.ErrNoPagesProduced)
	}

	return &domain.ComicArtifact{
		Path:        res.Path,
		Width:       res.Width,
		Height:      res.Height,
		PageIndices: indices,
	}, nil
}

// validateRequest はページ数と年齢層の制約を入口で強制します。
func validateRequest(req domain.ScriptRequest) error {
	if req.Topic == "" {
		return fmt.Errorf("トピックを指定してほしいのだ")
	}
	if req.PageCount < 1 {
		return fmt.Errorf("ページ数は1以上を指定してほしいのだ: %d", req.PageCount)
	}
	if !req.AgeTier.Valid() {
		return fmt.Errorf("不明な年齢層です: %q", req.AgeTier)
	}
	return nil
}

// logOutcomes はページ単位の結果の集計をログに残します。
func logOutcomes(ctx context.Context, outcomes []domain.PageOutcome) {
	var rendered, skipped, failed int
	for _, o := range outcomes {
		switch {
		case o.Skipped:
			skipped++
		case o.Err != nil:
			failed++
		default:
			rendered++
		}
	}
	slog.InfoContext(ctx, "画像生成の結果なのだ", "rendered", rendered, "skipped", skipped, "failed", failed)
}
