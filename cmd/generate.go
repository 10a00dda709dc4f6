package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shouni/go-educomic-kit/internal/config"
	"github.com/shouni/go-educomic-kit/pkg/domain"
	"github.com/shouni/go-educomic-kit/pkg/workflow"

	"github.com/spf13/cobra"
)

// generateCmd は、台本生成から最終画像の合成までを一気に実行するのだ。
var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "トピックから教育コミックを1枚の画像として生成するのだ。",
	Long: `トピックと教育コンテキストから年齢層に合わせた台本を作り、
ページ画像を順番に生成して、最後に縦1枚のコミック画像へ合成するのだ。`,
	RunE: generateCommand,
}

func generateCommand(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, req, err := buildRunInputs()
	if err != nil {
		return err
	}

	slog.Info("コミック生成パイプラインを起動するのだ！",
		"topic", req.Topic,
		"age_tier", req.AgeTier,
		"pages", req.PageCount,
		"text_model", cfg.GeminiModel,
		"image_model", cfg.GeminiImageModel,
		"output_dir", cfg.OutputDir)

	m, err := workflow.New(ctx, cfg)
	if err != nil {
		return err
	}

	req.Context, err = resolveContext(ctx, m, req.AgeTier)
	if err != nil {
		return fmt.Errorf("教育コンテキストの解決に失敗したのだ: %w", err)
	}

	art, err := m.Run(ctx, req)
	if err != nil {
		return fmt.Errorf("パイプライン実行中にエラーが発生したのだ: %w", err)
	}

	slog.Info("すべての生成工程が完了したのだ！",
		"path", art.Path,
		"pages", len(art.PageIndices),
		"size", fmt.Sprintf("%dx%d", art.Width, art.Height))
	return nil
}

// buildConfig は、環境設定をロードしてフラグによる上書きを適用するのだ。
func buildConfig() (*config.Config, error) {
	policy, err := domain.ParseTruncatePolicy(opts.TruncatePolicy)
	if err != nil {
		return nil, err
	}

	cfg := config.LoadConfig()
	cfg.Options = opts
	cfg.TruncatePolicy = policy
	if opts.AIModel != "" {
		cfg.GeminiModel = opts.AIModel
	}
	if opts.ImageModel != "" {
		cfg.GeminiImageModel = opts.ImageModel
	}
	if opts.OutputDir != "" {
		cfg.OutputDir = opts.OutputDir
	}
	if opts.RateInterval > 0 {
		cfg.RateInterval = opts.RateInterval
	}
	return cfg, nil
}

// buildRunInputs は、フラグと環境設定を突き合わせて実行用の設定とリクエストを組み立てるのだ。
func buildRunInputs() (*config.Config, domain.ScriptRequest, error) {
	var req domain.ScriptRequest

	if opts.Topic == "" {
		return nil, req, fmt.Errorf("トピック（--topic）を指定してほしいのだ")
	}

	tier, err := domain.ParseAgeTier(opts.AgeTier)
	if err != nil {
		return nil, req, err
	}

	cfg, err := buildConfig()
	if err != nil {
		return nil, req, err
	}

	req = domain.ScriptRequest{
		Topic:     opts.Topic,
		PageCount: opts.PageCount,
		AgeTier:   tier,
		RunID:     opts.RunID,
	}
	return cfg, req, nil
}

// resolveContext はソース指定を教育コンテキストへ変換するのだ。
// --summarize が指定されていれば、解決したテキストを年齢層向けに要約してから使うのだ。
func resolveContext(ctx context.Context, m *workflow.Manager, tier domain.AgeTier) (string, error) {
	resolved, err := m.Summaries().Resolve(ctx, opts.Source)
	if err != nil {
		return "", err
	}

	if !opts.Summarize || opts.Source == "" {
		return resolved, nil
	}

	slog.Info("文字起こしを年齢層向けに要約するのだ", "source", opts.Source, "age_tier", tier)
	return m.Summaries().Summarize(ctx, opts.Source, resolved, tier)
}
