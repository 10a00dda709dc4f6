package cmd

import (
	"fmt"
	"log/slog"

	"github.com/shouni/go-educomic-kit/pkg/workflow"

	"github.com/spf13/cobra"
)

// scriptCmd は、台本の生成のみを実行して標準出力へ表示するのだ。
var scriptCmd = &cobra.Command{
	Use:   "script",
	Short: "台本のみを生成して表示するのだ。",
	Long: `トピックと教育コンテキストから年齢層に合わせたページ台本を生成し、
ページ番号順に標準出力へ表示するのだ。画像生成は行わないのだよ。`,
	RunE: scriptCommand,
}

func scriptCommand(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, req, err := buildRunInputs()
	if err != nil {
		return err
	}

	slog.Info("台本生成モードを起動するのだ！",
		"topic", req.Topic,
		"age_tier", req.AgeTier,
		"pages", req.PageCount,
		"text_model", cfg.GeminiModel)

	m, err := workflow.New(ctx, cfg)
	if err != nil {
		return err
	}

	req.Context, err = resolveContext(ctx, m, req.AgeTier)
	if err != nil {
		return fmt.Errorf("教育コンテキストの解決に失敗したのだ: %w", err)
	}

	script, err := m.PlanScript(ctx, req)
	if err != nil {
		return fmt.Errorf("台本生成中にエラーが発生したのだ: %w", err)
	}

	out := cmd.OutOrStdout()
	for _, i := range script.Indices() {
		fmt.Fprintln(out, script[i])
		fmt.Fprintln(out)
	}

	slog.Info("台本の生成が完了したのだ！", "recognized_pages", len(script))
	return nil
}
